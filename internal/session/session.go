// Package session implements the workout session lifecycle and the
// progressive-overload analytics derived from it: per-session volume,
// personal record detection against prior history, and weekly stats.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/claude/gymbuddy/internal/models"
	"github.com/google/uuid"
)

var (
	// ErrNotFound means the session does not exist or belongs to another user.
	ErrNotFound = errors.New("session not found")
	// ErrSessionClosed means the session was already closed; a session
	// closes exactly once.
	ErrSessionClosed = errors.New("session already closed")
	// ErrInvalidWindow means the computed end time precedes the start time.
	ErrInvalidWindow = errors.New("session end time precedes start time")
)

// EventSource reads the append-only set log. The aggregator only ever
// reads from it; sets are written by the logging path independently of
// any session.
type EventSource interface {
	SetsInWindow(ctx context.Context, userID int, start, end time.Time) ([]models.SetLogRow, error)
	MaxWeightsBefore(ctx context.Context, userID int, exerciseIDs []int, before time.Time) (map[int]float64, error)
	ExerciseNames(ctx context.Context, ids []int) (map[int]string, error)
}

// SessionStore owns session rows. Close must only match open sessions.
type SessionStore interface {
	InsertSession(ctx context.Context, s models.SessionRow) error
	GetSessionForUser(ctx context.Context, id uuid.UUID, userID int) (*models.SessionRow, error)
	CloseSession(ctx context.Context, id uuid.UUID, end time.Time, volume float64, prCount int, prDetails string, notes *string) (bool, error)
	CountSessionsSince(ctx context.Context, userID int, since time.Time) (int, error)
	SumPRsSince(ctx context.Context, userID int, since time.Time) (int, error)
	RecentSessions(ctx context.Context, userID, limit int) ([]models.SessionRow, []string, error)
}

// Directory resolves workout type references for session labelling.
type Directory interface {
	FindWorkout(ctx context.Context, name string) (*models.WorkoutRow, error)
}

// Summary is the result of closing a session.
type Summary struct {
	DurationMinutes int      `json:"duration_minutes"`
	TotalVolume     float64  `json:"total_volume"`
	PRMessages      []string `json:"prs"`
}

// Service runs the session lifecycle. Sessions are created open and
// transition to closed exactly once; closed sessions are never mutated.
type Service struct {
	events   EventSource
	sessions SessionStore
	dir      Directory
	log      *slog.Logger
	now      func() time.Time
}

// New creates a session Service.
func New(events EventSource, sessions SessionStore, dir Directory, log *slog.Logger) *Service {
	return &Service{
		events:   events,
		sessions: sessions,
		dir:      dir,
		log:      log,
		now:      time.Now,
	}
}

// Start opens a new session for the user. The workout type is resolved
// by name; an unknown name is permitted and leaves the reference empty,
// so a session can still start after its workout was deleted.
func (s *Service) Start(ctx context.Context, userID int, workoutName, split string) (models.SessionRow, error) {
	var workoutID *int
	if workoutName != "" {
		w, err := s.dir.FindWorkout(ctx, workoutName)
		if err != nil {
			return models.SessionRow{}, err
		}
		if w != nil {
			workoutID = &w.ID
		}
	}
	if split == "" {
		split = "A"
	}

	row := models.SessionRow{
		ID:        uuid.New(),
		UserID:    userID,
		WorkoutID: workoutID,
		Split:     split,
		StartTime: s.now().UTC(),
	}
	if err := s.sessions.InsertSession(ctx, row); err != nil {
		return models.SessionRow{}, err
	}

	s.log.Info("session started", "session", row.ID, "user", userID, "workout", workoutName, "split", split)
	return row, nil
}

// End closes a session and aggregates every set the user logged inside
// the session's time window into a volume total and PR detections. The
// session row is written once; nothing is persisted if aggregation fails.
func (s *Service) End(ctx context.Context, sessionID uuid.UUID, userID int, notes *string) (Summary, error) {
	sess, err := s.sessions.GetSessionForUser(ctx, sessionID, userID)
	if err != nil {
		return Summary{}, err
	}
	if sess == nil {
		return Summary{}, ErrNotFound
	}
	if !sess.Open() {
		return Summary{}, ErrSessionClosed
	}

	end := s.now().UTC()
	if end.Before(sess.StartTime) {
		return Summary{}, fmt.Errorf("%w: start %s, end %s", ErrInvalidWindow, sess.StartTime, end)
	}

	entries, err := s.events.SetsInWindow(ctx, userID, sess.StartTime, end)
	if err != nil {
		return Summary{}, err
	}

	ids := exerciseOrder(entries)
	history, err := s.events.MaxWeightsBefore(ctx, userID, ids, sess.StartTime)
	if err != nil {
		return Summary{}, err
	}

	result := Aggregate(entries, history)

	names, err := s.events.ExerciseNames(ctx, prExerciseIDs(result.PRs))
	if err != nil {
		return Summary{}, err
	}

	messages := make([]string, 0, len(result.PRs))
	prNames := make([]string, 0, len(result.PRs))
	for _, pr := range result.PRs {
		name := names[pr.ExerciseID]
		if name == "" {
			name = "Unknown"
		}
		messages = append(messages, pr.Message(name))
		prNames = append(prNames, name)
	}

	closed, err := s.sessions.CloseSession(ctx, sessionID, end, result.TotalVolume,
		len(result.PRs), strings.Join(prNames, ", "), notes)
	if err != nil {
		return Summary{}, err
	}
	if !closed {
		// Lost a race against another close of the same session.
		return Summary{}, ErrSessionClosed
	}

	duration := int(end.Sub(sess.StartTime) / time.Minute)
	s.log.Info("session closed",
		"session", sessionID, "user", userID,
		"duration_min", duration, "volume", result.TotalVolume, "prs", len(result.PRs))

	return Summary{
		DurationMinutes: duration,
		TotalVolume:     result.TotalVolume,
		PRMessages:      messages,
	}, nil
}

// exerciseOrder returns the distinct exercise IDs of the entries in
// first-encounter order.
func exerciseOrder(entries []models.SetLogRow) []int {
	seen := make(map[int]bool, len(entries))
	var order []int
	for _, e := range entries {
		if !seen[e.ExerciseID] {
			seen[e.ExerciseID] = true
			order = append(order, e.ExerciseID)
		}
	}
	return order
}

func prExerciseIDs(prs []PR) []int {
	ids := make([]int, len(prs))
	for i, pr := range prs {
		ids[i] = pr.ExerciseID
	}
	return ids
}
