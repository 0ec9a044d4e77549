package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/claude/gymbuddy/internal/parse"
)

func (s *Server) handleLogSet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WorkoutType  string  `json:"workout_type"`
		ExerciseName string  `json:"exercise_name"`
		Weight       float64 `json:"weight"`
		Reps         int     `json:"reps"`
		Week         int     `json:"week"`
		User         string  `json:"user"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.User == "" || req.ExerciseName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "user and exercise_name are required"})
		return
	}

	ctx := r.Context()
	userID, err := s.db.GetOrCreateUser(ctx, req.User)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	workout, err := s.db.FindWorkout(ctx, req.WorkoutType)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if workout == nil {
		writeJSON(w, http.StatusOK, genericResponse{Success: false, Message: "Workout type not found"})
		return
	}

	exercises, err := s.db.ExercisesForWorkout(ctx, workout.ID, "")
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	names := make([]string, len(exercises))
	for i, ex := range exercises {
		names[i] = ex.Name
	}

	matched, ok := parse.MatchExercise(req.ExerciseName, names)
	if !ok {
		writeJSON(w, http.StatusOK, genericResponse{Success: false, Message: fmt.Sprintf("Exercise '%s' not found.", req.ExerciseName)})
		return
	}
	var exerciseID int
	for _, ex := range exercises {
		if ex.Name == matched {
			exerciseID = ex.ID
			break
		}
	}

	week := req.Week
	if week == 0 {
		week = 1
	}

	if _, err := s.db.InsertSetLog(ctx, userID, exerciseID, week, req.Weight, req.Reps); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, genericResponse{
		Success: true,
		Message: fmt.Sprintf("Logged %sx%d for %s", formatWeight(req.Weight), req.Reps, matched),
	})
}

func (s *Server) handleUpdateSet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SetID  int     `json:"set_id"`
		Weight float64 `json:"weight"`
		Reps   int     `json:"reps"`
		User   string  `json:"user"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.User == "" || req.SetID == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "user and set_id are required"})
		return
	}

	ctx := r.Context()
	userID, err := s.db.GetOrCreateUser(ctx, req.User)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	updated, err := s.db.UpdateSet(ctx, req.SetID, userID, req.Weight, req.Reps)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if !updated {
		writeJSON(w, http.StatusOK, genericResponse{Success: false, Message: "Set not found or unauthorized"})
		return
	}
	writeJSON(w, http.StatusOK, genericResponse{Success: true, Message: "Set updated"})
}

func (s *Server) handleDeleteSet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SetID int    `json:"set_id"`
		User  string `json:"user"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.User == "" || req.SetID == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "user and set_id are required"})
		return
	}

	ctx := r.Context()
	userID, err := s.db.GetOrCreateUser(ctx, req.User)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	deleted, err := s.db.DeleteSet(ctx, req.SetID, userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if !deleted {
		writeJSON(w, http.StatusOK, genericResponse{Success: false, Message: "Set not found or unauthorized"})
		return
	}
	writeJSON(w, http.StatusOK, genericResponse{Success: true, Message: "Set deleted"})
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text        string `json:"text"`
		WorkoutType string `json:"workout_type"`
		User        string `json:"user"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "text is required"})
		return
	}

	ctx := r.Context()
	var names []string
	if workout, err := s.db.FindWorkout(ctx, req.WorkoutType); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	} else if workout != nil {
		exercises, err := s.db.ExercisesForWorkout(ctx, workout.ID, "")
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		for _, ex := range exercises {
			names = append(names, ex.Name)
		}
	}

	cmd, err := parse.ParseCommand(req.Text, names)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": cmd})
}
