package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/claude/gymbuddy/internal/models"
	"github.com/jackc/pgx/v5"
)

// GetOrCreateUser finds or creates a user by username and returns its ID.
func (db *DB) GetOrCreateUser(ctx context.Context, username string) (int, error) {
	var id int
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO users (username)
		VALUES ($1)
		ON CONFLICT (username) DO UPDATE SET username = EXCLUDED.username
		RETURNING id
	`, username).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("ensuring user %q: %w", username, err)
	}
	return id, nil
}

// ListUsers returns all users ordered by creation time.
func (db *DB) ListUsers(ctx context.Context) ([]models.UserRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, username, is_admin, created_at FROM users ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	var result []models.UserRow
	for rows.Next() {
		var u models.UserRow
		var isAdmin int
		if err := rows.Scan(&u.ID, &u.Username, &isAdmin, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		u.IsAdmin = isAdmin != 0
		result = append(result, u)
	}
	return result, rows.Err()
}

// DeleteUser removes a user and all of their logged sets and sessions.
// Returns false if no such user exists.
func (db *DB) DeleteUser(ctx context.Context, username string) (bool, error) {
	var id int
	err := db.Pool.QueryRow(ctx,
		`SELECT id FROM users WHERE username = $1`, username).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("looking up user %q: %w", username, err)
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("beginning delete: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, q := range []string{
		`DELETE FROM sets WHERE user_id = $1`,
		`DELETE FROM workout_sessions WHERE user_id = $1`,
		`DELETE FROM users WHERE id = $1`,
	} {
		if _, err := tx.Exec(ctx, q, id); err != nil {
			return false, fmt.Errorf("deleting user data: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("committing delete: %w", err)
	}
	return true, nil
}
