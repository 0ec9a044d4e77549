package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/claude/gymbuddy/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// InsertSession creates a new open session row.
func (db *DB) InsertSession(ctx context.Context, s models.SessionRow) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO workout_sessions (id, user_id, workout_id, split, start_time)
		 VALUES ($1, $2, $3, $4, $5)`,
		s.ID, s.UserID, s.WorkoutID, s.Split, s.StartTime)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

// GetSessionForUser retrieves a session by ID, checking that it belongs
// to the given user. Returns nil if no such session exists.
func (db *DB) GetSessionForUser(ctx context.Context, id uuid.UUID, userID int) (*models.SessionRow, error) {
	var s models.SessionRow
	err := db.Pool.QueryRow(ctx,
		`SELECT id, user_id, workout_id, split, start_time, end_time,
		        total_volume, pr_count, pr_details, notes
		 FROM workout_sessions
		 WHERE id = $1 AND user_id = $2`,
		id, userID).Scan(&s.ID, &s.UserID, &s.WorkoutID, &s.Split, &s.StartTime,
		&s.EndTime, &s.TotalVolume, &s.PRCount, &s.PRDetails, &s.Notes)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", err)
	}
	return &s, nil
}

// CloseSession writes the end-of-session fields. The WHERE clause only
// matches open sessions, so a session can be closed at most once even
// under concurrent close calls. Returns false if the session was not
// open (already closed or missing).
func (db *DB) CloseSession(ctx context.Context, id uuid.UUID, end time.Time, volume float64, prCount int, prDetails string, notes *string) (bool, error) {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE workout_sessions
		 SET end_time = $2, total_volume = $3, pr_count = $4, pr_details = $5, notes = $6
		 WHERE id = $1 AND end_time IS NULL`,
		id, end, volume, prCount, prDetails, notes)
	if err != nil {
		return false, fmt.Errorf("closing session: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// CountSessionsSince counts a user's sessions started at or after the
// given time, open or closed.
func (db *DB) CountSessionsSince(ctx context.Context, userID int, since time.Time) (int, error) {
	var n int
	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM workout_sessions WHERE user_id = $1 AND start_time >= $2`,
		userID, since).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting sessions: %w", err)
	}
	return n, nil
}

// SumPRsSince sums pr_count over a user's sessions started at or after
// the given time.
func (db *DB) SumPRsSince(ctx context.Context, userID int, since time.Time) (int, error) {
	var n int
	err := db.Pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(pr_count), 0) FROM workout_sessions
		 WHERE user_id = $1 AND start_time >= $2`,
		userID, since).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("summing session PRs: %w", err)
	}
	return n, nil
}

// RecentSessions returns the user's most recently started sessions,
// newest first, joined with the workout name ("" when the workout was
// deleted after the session started).
func (db *DB) RecentSessions(ctx context.Context, userID, limit int) ([]models.SessionRow, []string, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT s.id, s.user_id, s.workout_id, s.split, s.start_time, s.end_time,
		        s.total_volume, s.pr_count, s.pr_details, s.notes,
		        COALESCE(w.name, '')
		 FROM workout_sessions s
		 LEFT JOIN workouts w ON w.id = s.workout_id
		 WHERE s.user_id = $1
		 ORDER BY s.start_time DESC
		 LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, nil, fmt.Errorf("querying recent sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.SessionRow
	var names []string
	for rows.Next() {
		var s models.SessionRow
		var name string
		if err := rows.Scan(&s.ID, &s.UserID, &s.WorkoutID, &s.Split, &s.StartTime,
			&s.EndTime, &s.TotalVolume, &s.PRCount, &s.PRDetails, &s.Notes, &name); err != nil {
			return nil, nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, s)
		names = append(names, name)
	}
	return sessions, names, rows.Err()
}
