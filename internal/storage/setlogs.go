package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/claude/gymbuddy/internal/models"
	"github.com/jackc/pgx/v5"
)

// InsertSetLog appends one performed set. The set number is assigned as
// the next ordinal within the user+exercise+week group.
func (db *DB) InsertSetLog(ctx context.Context, userID, exerciseID, week int, weight float64, reps int) (models.SetLogRow, error) {
	var row models.SetLogRow
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO sets (user_id, exercise_id, week, set_number, weight, reps)
		VALUES ($1, $2, $3,
			(SELECT COALESCE(MAX(set_number), 0) + 1 FROM sets
			 WHERE user_id = $1 AND exercise_id = $2 AND week = $3),
			$4, $5)
		RETURNING id, user_id, exercise_id, week, set_number, weight, reps, created_at
	`, userID, exerciseID, week, weight, reps).Scan(
		&row.ID, &row.UserID, &row.ExerciseID, &row.Week, &row.SetNumber,
		&row.Weight, &row.Reps, &row.CreatedAt)
	if err != nil {
		return models.SetLogRow{}, fmt.Errorf("inserting set: %w", err)
	}
	return row, nil
}

// InsertSetHistory bulk-inserts historical sets with explicit set numbers
// and timestamps. Used by the importer; duplicates on the
// user+exercise+week+set_number key are silently skipped.
func (db *DB) InsertSetHistory(ctx context.Context, rows []models.SetLogRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	query := `INSERT INTO sets (user_id, exercise_id, week, set_number, weight, reps, created_at)
VALUES `
	args := make([]any, 0, len(rows)*7)
	valueStrings := make([]string, 0, len(rows))

	for i, r := range rows {
		base := i * 7
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7,
		))
		args = append(args, r.UserID, r.ExerciseID, r.Week, r.SetNumber, r.Weight, r.Reps, r.CreatedAt)
	}

	query += strings.Join(valueStrings, ",") + " ON CONFLICT DO NOTHING"

	tag, err := db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting set history: %w", err)
	}
	return tag.RowsAffected(), nil
}

// SetsForWeek returns a user's sets for one exercise and training week,
// ordered by set number.
func (db *DB) SetsForWeek(ctx context.Context, userID, exerciseID, week int) ([]models.SetLogRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, exercise_id, week, set_number, weight, reps, created_at
		 FROM sets
		 WHERE user_id = $1 AND exercise_id = $2 AND week = $3
		 ORDER BY set_number ASC`,
		userID, exerciseID, week)
	if err != nil {
		return nil, fmt.Errorf("querying sets: %w", err)
	}
	defer rows.Close()

	return scanSetRows(rows)
}

// SetsInWindow returns a user's sets with creation time inside
// [start, end], both bounds inclusive, in creation order. This is the
// range read the session aggregator runs over.
func (db *DB) SetsInWindow(ctx context.Context, userID int, start, end time.Time) ([]models.SetLogRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, exercise_id, week, set_number, weight, reps, created_at
		 FROM sets
		 WHERE user_id = $1 AND created_at >= $2 AND created_at <= $3
		 ORDER BY created_at ASC, id ASC`,
		userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying sets in window: %w", err)
	}
	defer rows.Close()

	return scanSetRows(rows)
}

// MaxWeightsBefore returns, per exercise ID, the maximum weight the user
// ever logged strictly before the given time. Exercises with no prior
// history are absent from the map. One query for the whole batch.
func (db *DB) MaxWeightsBefore(ctx context.Context, userID int, exerciseIDs []int, before time.Time) (map[int]float64, error) {
	maxes := make(map[int]float64, len(exerciseIDs))
	if len(exerciseIDs) == 0 {
		return maxes, nil
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT exercise_id, MAX(weight)
		 FROM sets
		 WHERE user_id = $1 AND exercise_id = ANY($2) AND created_at < $3
		 GROUP BY exercise_id`,
		userID, exerciseIDs, before)
	if err != nil {
		return nil, fmt.Errorf("querying max weights: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int
		var weight float64
		if err := rows.Scan(&id, &weight); err != nil {
			return nil, fmt.Errorf("scanning max weight: %w", err)
		}
		maxes[id] = weight
	}
	return maxes, rows.Err()
}

// UpdateSet changes the weight and reps of one set, checking ownership.
// Returns false if the set does not exist or belongs to another user.
func (db *DB) UpdateSet(ctx context.Context, setID, userID int, weight float64, reps int) (bool, error) {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE sets SET weight = $3, reps = $4 WHERE id = $1 AND user_id = $2`,
		setID, userID, weight, reps)
	if err != nil {
		return false, fmt.Errorf("updating set: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteSet removes one set, checking ownership, and renumbers the
// remaining sets of the same user+exercise+week group so set numbers
// stay contiguous.
func (db *DB) DeleteSet(ctx context.Context, setID, userID int) (bool, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("beginning delete: %w", err)
	}
	defer tx.Rollback(ctx)

	var exerciseID, week int
	err = tx.QueryRow(ctx,
		`DELETE FROM sets WHERE id = $1 AND user_id = $2 RETURNING exercise_id, week`,
		setID, userID).Scan(&exerciseID, &week)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("deleting set: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE sets SET set_number = renumbered.rn
		FROM (
			SELECT id, ROW_NUMBER() OVER (ORDER BY set_number ASC) AS rn
			FROM sets
			WHERE user_id = $1 AND exercise_id = $2 AND week = $3
		) renumbered
		WHERE sets.id = renumbered.id
	`, userID, exerciseID, week)
	if err != nil {
		return false, fmt.Errorf("renumbering sets: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("committing delete: %w", err)
	}
	return true, nil
}

func scanSetRows(rows pgx.Rows) ([]models.SetLogRow, error) {
	var result []models.SetLogRow
	for rows.Next() {
		var r models.SetLogRow
		if err := rows.Scan(&r.ID, &r.UserID, &r.ExerciseID, &r.Week, &r.SetNumber,
			&r.Weight, &r.Reps, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning set: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
