package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/gymbuddy/internal/models"
	"github.com/jackc/pgx/v5"
)

// ExercisesForWorkout returns the exercises of a workout, optionally
// filtered by split label.
func (db *DB) ExercisesForWorkout(ctx context.Context, workoutID int, split string) ([]models.ExerciseRow, error) {
	query := `SELECT id, workout_id, user_id, name, default_sets, split, setup_notes
	          FROM exercises WHERE workout_id = $1`
	args := []any{workoutID}
	if split != "" {
		query += ` AND split = $2`
		args = append(args, split)
	}
	query += ` ORDER BY id ASC`

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	var result []models.ExerciseRow
	for rows.Next() {
		var e models.ExerciseRow
		if err := rows.Scan(&e.ID, &e.WorkoutID, &e.UserID, &e.Name, &e.DefaultSets, &e.Split, &e.SetupNotes); err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// AddExercise inserts an exercise into a workout. Returns false if an
// exercise with the same name already exists in that workout and split.
func (db *DB) AddExercise(ctx context.Context, e models.ExerciseRow) (bool, error) {
	var exists bool
	err := db.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM exercises WHERE workout_id = $1 AND name = $2 AND split = $3)`,
		e.WorkoutID, e.Name, e.Split).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking exercise: %w", err)
	}
	if exists {
		return false, nil
	}

	_, err = db.Pool.Exec(ctx,
		`INSERT INTO exercises (workout_id, user_id, name, default_sets, split, setup_notes)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		e.WorkoutID, e.UserID, e.Name, e.DefaultSets, e.Split, e.SetupNotes)
	if err != nil {
		return false, fmt.Errorf("inserting exercise: %w", err)
	}
	return true, nil
}

// UpdateExerciseNotes sets the setup notes of an exercise identified by
// workout, name and split. Returns false if no matching exercise exists.
func (db *DB) UpdateExerciseNotes(ctx context.Context, workoutID int, name, split string, notes *string) (bool, error) {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE exercises SET setup_notes = $4 WHERE workout_id = $1 AND name = $2 AND split = $3`,
		workoutID, name, split, notes)
	if err != nil {
		return false, fmt.Errorf("updating exercise notes: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteExercise removes an exercise and all its logged sets. When
// userID is non-nil only exercises owned by that user match; otherwise
// global (unowned) exercises match.
func (db *DB) DeleteExercise(ctx context.Context, workoutID int, name string, userID *int) (bool, error) {
	query := `SELECT id FROM exercises WHERE workout_id = $1 AND name = $2`
	args := []any{workoutID, name}
	if userID != nil {
		query += ` AND user_id = $3`
		args = append(args, *userID)
	} else {
		query += ` AND user_id IS NULL`
	}

	var id int
	err := db.Pool.QueryRow(ctx, query, args...).Scan(&id)
	if err != nil {
		// No matching row is not an error for the caller.
		return false, nil
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("beginning delete: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM sets WHERE exercise_id = $1`, id); err != nil {
		return false, fmt.Errorf("deleting exercise sets: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM exercises WHERE id = $1`, id); err != nil {
		return false, fmt.Errorf("deleting exercise: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("committing delete: %w", err)
	}
	return true, nil
}

// FindExerciseID looks up an exercise by display name, case-insensitive.
// Returns false when no exercise with that name exists.
func (db *DB) FindExerciseID(ctx context.Context, name string) (int, bool, error) {
	var id int
	err := db.Pool.QueryRow(ctx,
		`SELECT id FROM exercises WHERE LOWER(name) = LOWER($1) ORDER BY id ASC LIMIT 1`,
		name).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("finding exercise: %w", err)
	}
	return id, true, nil
}

// ExerciseNames returns a map of exercise ID to display name for the
// given IDs. Missing IDs are simply absent from the map.
func (db *DB) ExerciseNames(ctx context.Context, ids []int) (map[int]string, error) {
	names := make(map[int]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT id, name FROM exercises WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("querying exercise names: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scanning exercise name: %w", err)
		}
		names[id] = name
	}
	return names, rows.Err()
}
