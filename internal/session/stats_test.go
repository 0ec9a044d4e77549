package session

import (
	"context"
	"testing"
	"time"

	"github.com/claude/gymbuddy/internal/models"
	"github.com/google/uuid"
)

// TestWeekStart verifies the Monday 00:00 UTC week boundary.
func TestWeekStart(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "midweek",
			in:   time.Date(2026, 8, 26, 17, 30, 0, 0, time.UTC), // Wednesday
			want: time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "monday morning stays in the same week",
			in:   time.Date(2026, 8, 24, 0, 0, 1, 0, time.UTC),
			want: time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "sunday belongs to the previous monday",
			in:   time.Date(2026, 8, 30, 23, 59, 0, 0, time.UTC),
			want: time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := weekStart(tt.in); !got.Equal(tt.want) {
				t.Errorf("weekStart(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

// TestWeeklyStatsCounters verifies that only sessions started this week
// count, and that their pr_count values are summed: two sessions this
// week with 1 and 0 PRs plus one last week with 2 PRs yield 2 workouts
// and 1 PR.
func TestWeeklyStatsCounters(t *testing.T) {
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC) // Wednesday
	store := newFakeStore()
	svc := newTestService(&fakeEvents{}, store, now)

	addSession := func(start time.Time, prCount int, closed bool) {
		row := models.SessionRow{ID: uuid.New(), UserID: 1, Split: "A", StartTime: start, PRCount: prCount}
		if closed {
			end := start.Add(45 * time.Minute)
			row.EndTime = &end
		}
		store.sessions[row.ID] = &row
	}

	addSession(now.Add(-24*time.Hour), 1, true)     // Tuesday, this week
	addSession(now.Add(-2*time.Hour), 0, true)      // Wednesday, this week
	addSession(now.Add(-7*24*time.Hour), 2, true)   // last week

	stats, err := svc.WeeklyStats(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.WorkoutsThisWeek != 2 {
		t.Errorf("workoutsThisWeek = %d, want 2", stats.WorkoutsThisWeek)
	}
	if stats.PRsThisWeek != 1 {
		t.Errorf("prsThisWeek = %d, want 1", stats.PRsThisWeek)
	}
}

// TestWeeklyStatsRecentActivity verifies the activity feed: five most
// recent sessions, workout label with split, zero duration for open
// sessions, and PR details only when PRs were set.
func TestWeeklyStatsRecentActivity(t *testing.T) {
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()
	store.workouts["Push"] = 1
	svc := newTestService(&fakeEvents{}, store, now)

	// Closed session with PRs.
	wid := 1
	start1 := now.Add(-3 * time.Hour)
	end1 := start1.Add(52 * time.Minute)
	closed := models.SessionRow{
		ID: uuid.New(), UserID: 1, WorkoutID: &wid, Split: "A",
		StartTime: start1, EndTime: &end1,
		TotalVolume: 1120, PRCount: 1, PRDetails: "Bench Press",
	}
	store.sessions[closed.ID] = &closed
	// Still-open session of a workout that was deleted.
	open := models.SessionRow{ID: uuid.New(), UserID: 1, Split: "B", StartTime: now.Add(-10 * time.Minute)}
	store.sessions[open.ID] = &open

	stats, err := svc.WeeklyStats(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stats.RecentActivity) != 2 {
		t.Fatalf("activity entries = %d, want 2", len(stats.RecentActivity))
	}

	// Newest first: the open session.
	got := stats.RecentActivity[0]
	if got.Workout != "Unknown (B)" {
		t.Errorf("open session label = %q, want %q", got.Workout, "Unknown (B)")
	}
	if got.Duration != 0 {
		t.Errorf("open session duration = %d, want 0", got.Duration)
	}
	if got.PRDetails != "" {
		t.Errorf("open session pr_details = %q, want empty", got.PRDetails)
	}

	got = stats.RecentActivity[1]
	if got.Workout != "Push (A)" {
		t.Errorf("label = %q, want %q", got.Workout, "Push (A)")
	}
	if got.Duration != 52 {
		t.Errorf("duration = %d, want 52", got.Duration)
	}
	if got.Volume != 1120 {
		t.Errorf("volume = %v, want 1120", got.Volume)
	}
	if got.PRCount != 1 || got.PRDetails != "Bench Press" {
		t.Errorf("pr fields = %d %q, want 1 %q", got.PRCount, got.PRDetails, "Bench Press")
	}
	if got.Date != start1.Format("2006-01-02") {
		t.Errorf("date = %q, want %q", got.Date, start1.Format("2006-01-02"))
	}
}

// TestWeeklyStatsLimit verifies that the feed is capped at five sessions.
func TestWeeklyStatsLimit(t *testing.T) {
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	store := newFakeStore()
	svc := newTestService(&fakeEvents{}, store, now)

	for i := 0; i < 8; i++ {
		row := models.SessionRow{ID: uuid.New(), UserID: 1, Split: "A", StartTime: now.Add(-time.Duration(i) * time.Hour)}
		store.sessions[row.ID] = &row
	}

	stats, err := svc.WeeklyStats(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stats.RecentActivity) != 5 {
		t.Errorf("activity entries = %d, want 5", len(stats.RecentActivity))
	}
}
