package session

import (
	"context"
	"time"
)

// recentActivityLimit caps the dashboard activity feed.
const recentActivityLimit = 5

// Activity is one entry in the dashboard's recent-activity feed.
type Activity struct {
	Date      string  `json:"date"`
	Workout   string  `json:"workout"`
	Duration  int     `json:"duration"`
	Volume    float64 `json:"volume"`
	PRCount   int     `json:"pr_count"`
	PRDetails string  `json:"pr_details,omitempty"`
}

// Stats is the weekly dashboard summary for one user.
type Stats struct {
	WorkoutsThisWeek int        `json:"workouts_this_week"`
	PRsThisWeek      int        `json:"prs_this_week"`
	RecentActivity   []Activity `json:"recent_activity"`
}

// WeeklyStats builds the dashboard projection: sessions started since
// Monday 00:00 UTC, the PRs they recorded, and the most recent activity.
// Pure read; open sessions are tolerated and report a duration of 0.
func (s *Service) WeeklyStats(ctx context.Context, userID int) (Stats, error) {
	since := weekStart(s.now())

	workouts, err := s.sessions.CountSessionsSince(ctx, userID, since)
	if err != nil {
		return Stats{}, err
	}
	prs, err := s.sessions.SumPRsSince(ctx, userID, since)
	if err != nil {
		return Stats{}, err
	}

	recent, names, err := s.sessions.RecentSessions(ctx, userID, recentActivityLimit)
	if err != nil {
		return Stats{}, err
	}

	activity := make([]Activity, 0, len(recent))
	for i, sess := range recent {
		label := names[i]
		if label == "" {
			label = "Unknown"
		}
		if sess.Split != "" {
			label += " (" + sess.Split + ")"
		}

		duration := 0
		if sess.EndTime != nil {
			duration = int(sess.EndTime.Sub(sess.StartTime) / time.Minute)
		}

		a := Activity{
			Date:     sess.StartTime.UTC().Format("2006-01-02"),
			Workout:  label,
			Duration: duration,
			Volume:   sess.TotalVolume,
			PRCount:  sess.PRCount,
		}
		if sess.PRCount > 0 {
			a.PRDetails = sess.PRDetails
		}
		activity = append(activity, a)
	}

	return Stats{
		WorkoutsThisWeek: workouts,
		PRsThisWeek:      prs,
		RecentActivity:   activity,
	}, nil
}

// weekStart returns Monday 00:00:00 UTC of the week containing t.
func weekStart(t time.Time) time.Time {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(t.Weekday()) + 6) % 7 // Monday = 0
	return day.AddDate(0, 0, -offset)
}
