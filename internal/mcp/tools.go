package mcp

import (
	"context"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

// defaultTimeRange returns start/end defaulting to the last 7 days.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -7)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// --- Tool definitions ---

var toolGetWorkoutSets = mcp.NewTool("get_workout_sets",
	mcp.WithDescription("Query logged strength training sets. Returns exercise name, weight, reps, and set number for each set in the time range."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 7 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
	mcp.WithString("exercise", mcp.Description("Filter by exercise name (partial match, e.g. 'bench press')")),
)

var toolGetWeeklyStats = mcp.NewTool("get_weekly_stats",
	mcp.WithDescription("Get this week's workout count, PR count, and the most recent session activity including volume, duration, and PR details."),
)

var toolGetRecentSessions = mcp.NewTool("get_recent_sessions",
	mcp.WithDescription("List the most recent workout sessions with start/end times, total volume, PR count, and notes."),
	mcp.WithNumber("limit", mcp.Description("Maximum number of sessions to return. Defaults to 5.")),
)

var toolListWorkouts = mcp.NewTool("list_workouts",
	mcp.WithDescription("List all defined workout plan names (e.g. Push, Pull, Legs)."),
)

var toolListExercises = mcp.NewTool("list_exercises",
	mcp.WithDescription("List the exercises of a workout plan, including target sets/reps and notes."),
	mcp.WithString("workout", mcp.Required(), mcp.Description("Workout plan name (e.g. 'Push')")),
	mcp.WithString("split", mcp.Description("Filter by split variant (e.g. 'A' or 'B')")),
)

// --- Tool handlers ---

type setEntry struct {
	Exercise  string    `json:"exercise"`
	Weight    float64   `json:"weight"`
	Reps      int       `json:"reps"`
	SetNumber int       `json:"set_number"`
	LoggedAt  time.Time `json:"logged_at"`
}

func (h *handlers) getWorkoutSets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	uid := UserIDFromContext(ctx)
	exerciseFilter := strings.ToLower(req.GetString("exercise", ""))

	sets, err := h.ds.SetsInWindow(ctx, uid, start, end)
	if err != nil {
		h.log.Error("mcp get_workout_sets", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	ids := make([]int, 0, len(sets))
	seen := make(map[int]bool)
	for _, set := range sets {
		if !seen[set.ExerciseID] {
			seen[set.ExerciseID] = true
			ids = append(ids, set.ExerciseID)
		}
	}
	names, err := h.ds.ExerciseNames(ctx, ids)
	if err != nil {
		h.log.Error("mcp get_workout_sets names", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	entries := make([]setEntry, 0, len(sets))
	for _, set := range sets {
		name := names[set.ExerciseID]
		if name == "" {
			name = "Unknown"
		}
		if exerciseFilter != "" && !strings.Contains(strings.ToLower(name), exerciseFilter) {
			continue
		}
		entries = append(entries, setEntry{
			Exercise:  name,
			Weight:    set.Weight,
			Reps:      set.Reps,
			SetNumber: set.SetNumber,
			LoggedAt:  set.CreatedAt,
		})
	}

	result, err := mcp.NewToolResultJSON(entries)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWeeklyStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := h.stats.WeeklyStats(ctx, UserIDFromContext(ctx))
	if err != nil {
		h.log.Error("mcp get_weekly_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(stats)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

type sessionEntry struct {
	ID          string     `json:"id"`
	Workout     string     `json:"workout"`
	Split       string     `json:"split"`
	StartTime   time.Time  `json:"start_time"`
	EndTime     *time.Time `json:"end_time,omitempty"`
	TotalVolume float64    `json:"total_volume"`
	PRCount     int        `json:"pr_count"`
	PRDetails   string     `json:"pr_details,omitempty"`
	Notes       string     `json:"notes,omitempty"`
}

func (h *handlers) getRecentSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 5)
	if limit < 1 {
		limit = 5
	}

	uid := UserIDFromContext(ctx)
	rows, names, err := h.ds.RecentSessions(ctx, uid, limit)
	if err != nil {
		h.log.Error("mcp get_recent_sessions", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	entries := make([]sessionEntry, 0, len(rows))
	for i, row := range rows {
		name := names[i]
		if name == "" {
			name = "Unknown"
		}
		entry := sessionEntry{
			ID:          row.ID.String(),
			Workout:     name,
			Split:       row.Split,
			StartTime:   row.StartTime,
			EndTime:     row.EndTime,
			TotalVolume: row.TotalVolume,
			PRCount:     row.PRCount,
			PRDetails:   row.PRDetails,
		}
		if row.Notes != nil {
			entry.Notes = *row.Notes
		}
		entries = append(entries, entry)
	}

	result, err := mcp.NewToolResultJSON(entries)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listWorkouts(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names, err := h.ds.ListWorkoutNames(ctx)
	if err != nil {
		h.log.Error("mcp list_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(names)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	workoutName, err := req.RequireString("workout")
	if err != nil {
		return mcp.NewToolResultError("workout parameter is required"), nil
	}

	workout, err := h.ds.FindWorkout(ctx, workoutName)
	if err != nil {
		h.log.Error("mcp list_exercises", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if workout == nil {
		return mcp.NewToolResultError("unknown workout: " + workoutName), nil
	}

	exercises, err := h.ds.ExercisesForWorkout(ctx, workout.ID, req.GetString("split", ""))
	if err != nil {
		h.log.Error("mcp list_exercises", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(exercises)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
