package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/claude/gymbuddy/internal/session"
	"github.com/google/uuid"
)

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		User        string `json:"user"`
		WorkoutType string `json:"workout_type"`
		Split       string `json:"split"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.User == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "user is required"})
		return
	}

	ctx := r.Context()
	userID, err := s.db.GetOrCreateUser(ctx, req.User)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "message": err.Error()})
		return
	}

	row, err := s.sessions.Start(ctx, userID, req.WorkoutType, req.Split)
	if err != nil {
		s.log.Error("session start", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "message": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "session_id": row.ID})
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string  `json:"session_id"`
		User      string  `json:"user"`
		Notes     *string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.User == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "user and session_id are required"})
		return
	}
	sessionID, err := uuid.Parse(req.SessionID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session ID"})
		return
	}

	ctx := r.Context()
	userID, err := s.db.GetOrCreateUser(ctx, req.User)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "message": err.Error()})
		return
	}

	summary, err := s.sessions.End(ctx, sessionID, userID, req.Notes)
	switch {
	case errors.Is(err, session.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Session not found"})
		return
	case errors.Is(err, session.ErrSessionClosed):
		writeJSON(w, http.StatusConflict, map[string]any{"success": false, "message": "Session already closed"})
		return
	case err != nil:
		s.log.Error("session end", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "message": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"message":          "Session ended",
		"duration_minutes": summary.DurationMinutes,
		"total_volume":     summary.TotalVolume,
		"prs":              summary.PRMessages,
	})
}

func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("user")
	if username == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "user parameter required"})
		return
	}

	ctx := r.Context()
	userID, err := s.db.GetOrCreateUser(ctx, username)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "message": err.Error()})
		return
	}

	stats, err := s.sessions.WeeklyStats(ctx, userID)
	if err != nil {
		s.log.Error("dashboard stats", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "message": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": stats})
}
