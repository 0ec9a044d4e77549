package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/claude/gymbuddy/internal/models"
	"github.com/claude/gymbuddy/internal/session"
	"github.com/mark3labs/mcp-go/mcp"
)

// TestUserIDFromContextDefault verifies the default user ID (1) when no value
// is set in the context.
func TestUserIDFromContextDefault(t *testing.T) {
	ctx := context.Background()
	if id := UserIDFromContext(ctx); id != 1 {
		t.Errorf("UserIDFromContext(empty) = %d, want 1", id)
	}
}

// TestUserIDFromContextSet verifies the user ID is extracted from context
// after being set by WithUserID.
func TestUserIDFromContextSet(t *testing.T) {
	ctx := WithUserID(context.Background(), 42)
	if id := UserIDFromContext(ctx); id != 42 {
		t.Errorf("UserIDFromContext = %d, want 42", id)
	}
}

// TestDefaultTimeRange verifies time range defaults (last 7 days) and parsing.
func TestDefaultTimeRange(t *testing.T) {
	// Both empty → defaults to last 7 days
	start, end, err := defaultTimeRange("", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	diff := end.Sub(start)
	if diff.Hours() < 167 || diff.Hours() > 169 { // ~168 hours = 7 days
		t.Errorf("default range = %.0f hours, want ~168", diff.Hours())
	}

	// Explicit dates
	start, end, err = defaultTimeRange("2026-01-01", "2026-01-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Year() != 2026 || start.Month() != 1 || start.Day() != 1 {
		t.Errorf("start = %v, want 2026-01-01", start)
	}
	if end.Year() != 2026 || end.Month() != 1 || end.Day() != 31 {
		t.Errorf("end = %v, want 2026-01-31", end)
	}

	// RFC3339
	start, _, err = defaultTimeRange("2026-06-15T10:30:00Z", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start.Hour() != 10 || start.Minute() != 30 {
		t.Errorf("start = %v, want 10:30", start)
	}

	// Invalid
	_, _, err = defaultTimeRange("not-a-date", "")
	if err == nil {
		t.Error("expected error for invalid date")
	}
}

// fakeData backs tool handlers without a database.
type fakeData struct {
	sets  []models.SetLogRow
	names map[int]string
}

func (f *fakeData) SetsInWindow(_ context.Context, _ int, start, end time.Time) ([]models.SetLogRow, error) {
	var out []models.SetLogRow
	for _, s := range f.sets {
		if !s.CreatedAt.Before(start) && !s.CreatedAt.After(end) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeData) ExerciseNames(_ context.Context, ids []int) (map[int]string, error) {
	out := make(map[int]string, len(ids))
	for _, id := range ids {
		if name, ok := f.names[id]; ok {
			out[id] = name
		}
	}
	return out, nil
}

func (f *fakeData) ListWorkoutNames(context.Context) ([]string, error) {
	return []string{"Push", "Pull"}, nil
}

func (f *fakeData) FindWorkout(_ context.Context, name string) (*models.WorkoutRow, error) {
	if name == "Push" {
		return &models.WorkoutRow{ID: 1, Name: "Push"}, nil
	}
	return nil, nil
}

func (f *fakeData) ExercisesForWorkout(context.Context, int, string) ([]models.ExerciseRow, error) {
	return []models.ExerciseRow{{ID: 1, Name: "Bench Press"}}, nil
}

func (f *fakeData) RecentSessions(context.Context, int, int) ([]models.SessionRow, []string, error) {
	return nil, nil, nil
}

type fakeStats struct{}

func (fakeStats) WeeklyStats(context.Context, int) (session.Stats, error) {
	return session.Stats{WorkoutsThisWeek: 2, PRsThisWeek: 1}, nil
}

func toolRequest(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("content length = %d, want 1", len(res.Content))
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type = %T, want TextContent", res.Content[0])
	}
	return text.Text
}

// TestGetWorkoutSetsFilter verifies that sets are joined with exercise names
// and the exercise filter matches case-insensitively on partial names.
func TestGetWorkoutSetsFilter(t *testing.T) {
	now := time.Now()
	h := &handlers{
		ds: &fakeData{
			sets: []models.SetLogRow{
				{ExerciseID: 1, Weight: 60, Reps: 10, SetNumber: 1, CreatedAt: now.Add(-time.Hour)},
				{ExerciseID: 2, Weight: 100, Reps: 5, SetNumber: 1, CreatedAt: now.Add(-time.Hour)},
			},
			names: map[int]string{1: "Bench Press", 2: "Squat"},
		},
		log: slog.New(slog.DiscardHandler),
	}

	res, err := h.getWorkoutSets(context.Background(), toolRequest(map[string]any{"exercise": "bench"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %s", resultText(t, res))
	}

	var entries []setEntry
	if err := json.Unmarshal([]byte(resultText(t, res)), &entries); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	if entries[0].Exercise != "Bench Press" || entries[0].Weight != 60 {
		t.Errorf("entry = %+v, want Bench Press 60kg", entries[0])
	}
}

// TestGetWeeklyStatsTool verifies the weekly stats tool serializes the
// projection from the stats source.
func TestGetWeeklyStatsTool(t *testing.T) {
	h := &handlers{ds: &fakeData{}, stats: fakeStats{}, log: slog.New(slog.DiscardHandler)}

	res, err := h.getWeeklyStats(context.Background(), toolRequest(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var stats session.Stats
	if err := json.Unmarshal([]byte(resultText(t, res)), &stats); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if stats.WorkoutsThisWeek != 2 || stats.PRsThisWeek != 1 {
		t.Errorf("stats = %+v, want 2 workouts / 1 PR", stats)
	}
}

// TestListExercisesUnknownWorkout verifies a tool error (not a transport
// error) for a workout name that does not exist.
func TestListExercisesUnknownWorkout(t *testing.T) {
	h := &handlers{ds: &fakeData{}, log: slog.New(slog.DiscardHandler)}

	res, err := h.listExercises(context.Background(), toolRequest(map[string]any{"workout": "Yoga"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected tool error for unknown workout")
	}
	if !strings.Contains(resultText(t, res), "Yoga") {
		t.Errorf("error text = %q, want workout name included", resultText(t, res))
	}
}
