package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dmoraes/driver-finance/internal/api/middleware"
	"github.com/dmoraes/driver-finance/internal/domain"
	"github.com/dmoraes/driver-finance/internal/store"
)

// WorkSessionsHandler handles the work-sessions endpoints.
type WorkSessionsHandler struct {
	store *store.Store
	log   zerolog.Logger
}

// NewWorkSessionsHandler creates a work-sessions handler.
func NewWorkSessionsHandler(s *store.Store, log zerolog.Logger) *WorkSessionsHandler {
	return &WorkSessionsHandler{store: s, log: log}
}

// List handles GET /api/work-sessions
func (h *WorkSessionsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.UserFromContext(ctx)

	sessions, err := h.store.ListWorkSessions(ctx, user.ID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list work sessions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list work sessions")
		return
	}
	if sessions == nil {
		sessions = []domain.WorkSession{}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"work_sessions": sessions,
		"count":         len(sessions),
	})
}

// Create handles POST /api/work-sessions
func (h *WorkSessionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.UserFromContext(ctx)

	var req struct {
		StartTime    time.Time  `json:"start_time"`
		EndTime      *time.Time `json:"end_time"`
		TotalMinutes int        `json:"total_minutes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.StartTime.IsZero() {
		middleware.WriteError(w, http.StatusBadRequest, "start_time is required")
		return
	}
	if req.EndTime != nil && req.EndTime.Before(req.StartTime) {
		middleware.WriteError(w, http.StatusBadRequest, "end_time precedes start_time")
		return
	}
	if req.TotalMinutes == 0 && req.EndTime != nil {
		req.TotalMinutes = int(req.EndTime.Sub(req.StartTime).Minutes())
	}

	ws := &domain.WorkSession{
		UserID:       user.ID,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		TotalMinutes: req.TotalMinutes,
		Date:         req.StartTime.UTC().Format("2006-01-02"),
	}
	if err := h.store.CreateWorkSession(ctx, ws); err != nil {
		h.log.Error().Err(err).Msg("Failed to create work session")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to create work session")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, ws)
}
