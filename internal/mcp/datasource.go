package mcp

import (
	"context"
	"time"

	"github.com/claude/gymbuddy/internal/models"
	"github.com/claude/gymbuddy/internal/session"
	"github.com/claude/gymbuddy/internal/storage"
)

// DataSource abstracts the data layer for MCP tools.
type DataSource interface {
	SetsInWindow(ctx context.Context, userID int, start, end time.Time) ([]models.SetLogRow, error)
	ExerciseNames(ctx context.Context, ids []int) (map[int]string, error)
	ListWorkoutNames(ctx context.Context) ([]string, error)
	FindWorkout(ctx context.Context, name string) (*models.WorkoutRow, error)
	ExercisesForWorkout(ctx context.Context, workoutID int, split string) ([]models.ExerciseRow, error)
	RecentSessions(ctx context.Context, userID, limit int) ([]models.SessionRow, []string, error)
}

// StatsSource provides the weekly dashboard projection.
type StatsSource interface {
	WeeklyStats(ctx context.Context, userID int) (session.Stats, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)

// Compile-time check: *session.Service satisfies StatsSource.
var _ StatsSource = (*session.Service)(nil)
