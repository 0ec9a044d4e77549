package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/gymbuddy/internal/models"
	"github.com/jackc/pgx/v5"
)

// FindWorkout looks up a workout type by name. Returns nil if absent.
func (db *DB) FindWorkout(ctx context.Context, name string) (*models.WorkoutRow, error) {
	var w models.WorkoutRow
	err := db.Pool.QueryRow(ctx,
		`SELECT id, name, created_by_user_id FROM workouts WHERE name = $1`,
		name).Scan(&w.ID, &w.Name, &w.CreatedByUserID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying workout %q: %w", name, err)
	}
	return &w, nil
}

// ListWorkoutNames returns the names of all workout types.
func (db *DB) ListWorkoutNames(ctx context.Context) ([]string, error) {
	rows, err := db.Pool.Query(ctx, `SELECT name FROM workouts ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scanning workout name: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// CreateWorkout inserts a new workout type. Returns false if the name is taken.
func (db *DB) CreateWorkout(ctx context.Context, name string, createdBy *int) (bool, error) {
	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO workouts (name, created_by_user_id) VALUES ($1, $2)
		 ON CONFLICT (name) DO NOTHING`, name, createdBy)
	if err != nil {
		return false, fmt.Errorf("inserting workout: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteWorkout removes a workout type with its exercises and their sets.
// Sessions that referenced the workout keep running; their workout_id is
// cleared so history still renders (as "Unknown").
func (db *DB) DeleteWorkout(ctx context.Context, name string) (bool, error) {
	w, err := db.FindWorkout(ctx, name)
	if err != nil {
		return false, err
	}
	if w == nil {
		return false, nil
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("beginning delete: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, q := range []string{
		`DELETE FROM sets WHERE exercise_id IN (SELECT id FROM exercises WHERE workout_id = $1)`,
		`DELETE FROM exercises WHERE workout_id = $1`,
		`UPDATE workout_sessions SET workout_id = NULL WHERE workout_id = $1`,
		`DELETE FROM workouts WHERE id = $1`,
	} {
		if _, err := tx.Exec(ctx, q, w.ID); err != nil {
			return false, fmt.Errorf("deleting workout data: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("committing delete: %w", err)
	}
	return true, nil
}
