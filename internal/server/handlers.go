package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/claude/gymbuddy/internal/models"
	"github.com/go-chi/chi/v5"
)

type genericResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.db.ListUsers(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	deleted, err := s.db.DeleteUser(r.Context(), username)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if !deleted {
		writeJSON(w, http.StatusOK, genericResponse{Success: false, Message: "User not found"})
		return
	}
	writeJSON(w, http.StatusOK, genericResponse{Success: true, Message: fmt.Sprintf("User %s deleted", username)})
}

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	names, err := s.db.ListWorkoutNames(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"workouts": names})
}

func (s *Server) handleCreateWorkout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
		User string `json:"user"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	var createdBy *int
	if req.User != "" {
		id, err := s.db.GetOrCreateUser(r.Context(), req.User)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		createdBy = &id
	}

	created, err := s.db.CreateWorkout(r.Context(), req.Name, createdBy)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if !created {
		writeJSON(w, http.StatusOK, genericResponse{Success: false, Message: fmt.Sprintf("Workout '%s' already exists", req.Name)})
		return
	}
	writeJSON(w, http.StatusOK, genericResponse{Success: true, Message: fmt.Sprintf("Workout '%s' created", req.Name)})
}

func (s *Server) handleDeleteWorkout(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	deleted, err := s.db.DeleteWorkout(r.Context(), name)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if !deleted {
		writeJSON(w, http.StatusOK, genericResponse{Success: false, Message: "Workout type not found"})
		return
	}
	writeJSON(w, http.StatusOK, genericResponse{Success: true, Message: fmt.Sprintf("Workout '%s' deleted successfully", name)})
}

// exerciseView is one exercise with the user's sets for the active week
// and a summary of the previous week's sets.
type exerciseView struct {
	ID              int              `json:"id"`
	Name            string           `json:"name"`
	SetupNotes      *string          `json:"setup_notes,omitempty"`
	Sets            []setView        `json:"sets"`
	PrevWeekSummary *string          `json:"prev_week_summary,omitempty"`
}

type setView struct {
	ID        int     `json:"id"`
	SetNumber int     `json:"set_number"`
	Weight    float64 `json:"weight"`
	Reps      int     `json:"reps"`
}

func (s *Server) handleWorkoutData(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	username := r.URL.Query().Get("user")
	if username == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "user parameter required"})
		return
	}
	week := 1
	if v := r.URL.Query().Get("week"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			week = n
		}
	}
	split := r.URL.Query().Get("split")
	if split == "" {
		split = "A"
	}

	ctx := r.Context()
	workout, err := s.db.FindWorkout(ctx, name)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	views := []exerciseView{}
	if workout != nil {
		userID, err := s.db.GetOrCreateUser(ctx, username)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}

		exercises, err := s.db.ExercisesForWorkout(ctx, workout.ID, split)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}

		for _, ex := range exercises {
			view := exerciseView{ID: ex.ID, Name: ex.Name, SetupNotes: ex.SetupNotes, Sets: []setView{}}

			sets, err := s.db.SetsForWeek(ctx, userID, ex.ID, week)
			if err != nil {
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
				return
			}
			for _, set := range sets {
				view.Sets = append(view.Sets, setView{ID: set.ID, SetNumber: set.SetNumber, Weight: set.Weight, Reps: set.Reps})
			}

			if week > 1 {
				prev, err := s.db.SetsForWeek(ctx, userID, ex.ID, week-1)
				if err != nil {
					writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
					return
				}
				if len(prev) > 0 {
					summary := prevWeekSummary(prev)
					view.PrevWeekSummary = &summary
				}
			}
			views = append(views, view)
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"workout_type": name,
		"exercises":    views,
		"active_week":  week,
	})
}

// prevWeekSummary renders last week's sets as "60x10, 65x8".
func prevWeekSummary(sets []models.SetLogRow) string {
	parts := make([]string, len(sets))
	for i, s := range sets {
		parts[i] = fmt.Sprintf("%sx%d", formatWeight(s.Weight), s.Reps)
	}
	return strings.Join(parts, ", ")
}

func (s *Server) handleAddExercise(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WorkoutType string  `json:"workout_type"`
		Name        string  `json:"name"`
		DefaultSets int     `json:"default_sets"`
		User        string  `json:"user"`
		Split       string  `json:"split"`
		SetupNotes  *string `json:"setup_notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" || req.WorkoutType == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "workout_type and name are required"})
		return
	}
	if req.DefaultSets == 0 {
		req.DefaultSets = 3
	}
	if req.Split == "" {
		req.Split = "A"
	}

	ctx := r.Context()
	workout, err := s.db.FindWorkout(ctx, req.WorkoutType)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if workout == nil {
		writeJSON(w, http.StatusOK, genericResponse{Success: false, Message: "Workout type not found"})
		return
	}

	var userID *int
	if req.User != "" {
		id, err := s.db.GetOrCreateUser(ctx, req.User)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		userID = &id
	}

	added, err := s.db.AddExercise(ctx, models.ExerciseRow{
		WorkoutID:   workout.ID,
		UserID:      userID,
		Name:        req.Name,
		DefaultSets: req.DefaultSets,
		Split:       req.Split,
		SetupNotes:  req.SetupNotes,
	})
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if !added {
		writeJSON(w, http.StatusOK, genericResponse{Success: false, Message: fmt.Sprintf("Exercise '%s' already exists in %s", req.Name, req.WorkoutType)})
		return
	}
	writeJSON(w, http.StatusOK, genericResponse{Success: true, Message: fmt.Sprintf("Added '%s' to %s", req.Name, req.WorkoutType)})
}

func (s *Server) handleUpdateExerciseNotes(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WorkoutType  string  `json:"workout_type"`
		ExerciseName string  `json:"exercise_name"`
		SetupNotes   *string `json:"setup_notes"`
		Split        string  `json:"split"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ExerciseName == "" || req.WorkoutType == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "workout_type and exercise_name are required"})
		return
	}
	if req.Split == "" {
		req.Split = "A"
	}

	ctx := r.Context()
	workout, err := s.db.FindWorkout(ctx, req.WorkoutType)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if workout == nil {
		writeJSON(w, http.StatusOK, genericResponse{Success: false, Message: "Workout type not found"})
		return
	}

	updated, err := s.db.UpdateExerciseNotes(ctx, workout.ID, req.ExerciseName, req.Split, req.SetupNotes)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if !updated {
		writeJSON(w, http.StatusOK, genericResponse{Success: false, Message: fmt.Sprintf("Exercise '%s' not found", req.ExerciseName)})
		return
	}
	writeJSON(w, http.StatusOK, genericResponse{Success: true, Message: "Notes updated"})
}

func (s *Server) handleDeleteExercise(w http.ResponseWriter, r *http.Request) {
	workoutType := r.URL.Query().Get("workout_type")
	exerciseName := r.URL.Query().Get("exercise_name")
	username := r.URL.Query().Get("user")
	if workoutType == "" || exerciseName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "workout_type and exercise_name are required"})
		return
	}

	ctx := r.Context()
	workout, err := s.db.FindWorkout(ctx, workoutType)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if workout == nil {
		writeJSON(w, http.StatusOK, genericResponse{Success: false, Message: "Workout type not found"})
		return
	}

	// Admins delete global (unowned) exercises, users their own.
	var userID *int
	if username != "" && username != "admin" {
		id, err := s.db.GetOrCreateUser(ctx, username)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		userID = &id
	}

	deleted, err := s.db.DeleteExercise(ctx, workout.ID, exerciseName, userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if !deleted {
		writeJSON(w, http.StatusOK, genericResponse{Success: false, Message: fmt.Sprintf("Exercise '%s' not found or you don't have permission", exerciseName)})
		return
	}
	writeJSON(w, http.StatusOK, genericResponse{Success: true, Message: fmt.Sprintf("Exercise '%s' deleted successfully", exerciseName)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// formatWeight renders a weight without trailing zeros (60, not 60.0).
func formatWeight(weight float64) string {
	return strconv.FormatFloat(weight, 'f', -1, 64)
}
