package models

import (
	"time"

	"github.com/google/uuid"
)

// UserRow is a row from the users table.
type UserRow struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// WorkoutRow is a row from the workouts table (a workout type like "Push").
type WorkoutRow struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	CreatedByUserID *int   `json:"created_by_user_id,omitempty"`
}

// ExerciseRow is a row from the exercises table.
type ExerciseRow struct {
	ID          int     `json:"id"`
	WorkoutID   int     `json:"workout_id"`
	UserID      *int    `json:"user_id,omitempty"`
	Name        string  `json:"name"`
	DefaultSets int     `json:"default_sets"`
	Split       string  `json:"split"`
	SetupNotes  *string `json:"setup_notes,omitempty"`
}

// SetLogRow is one performed set from the append-only sets log.
type SetLogRow struct {
	ID         int       `json:"id"`
	UserID     int       `json:"user_id"`
	ExerciseID int       `json:"exercise_id"`
	Week       int       `json:"week"`
	SetNumber  int       `json:"set_number"`
	Weight     float64   `json:"weight"`
	Reps       int       `json:"reps"`
	CreatedAt  time.Time `json:"created_at"`
}

// SessionRow is a row from the workout_sessions table. A session is open
// while EndTime is nil and closed (immutable) once it is set.
type SessionRow struct {
	ID          uuid.UUID  `json:"id"`
	UserID      int        `json:"user_id"`
	WorkoutID   *int       `json:"workout_id,omitempty"`
	Split       string     `json:"split"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	TotalVolume float64    `json:"total_volume"`
	PRCount     int        `json:"pr_count"`
	PRDetails   string     `json:"pr_details"`
	Notes       *string    `json:"notes,omitempty"`
}

// Open reports whether the session has not been closed yet.
func (s SessionRow) Open() bool {
	return s.EndTime == nil
}
