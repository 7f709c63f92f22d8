package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dmoraes/driver-finance/internal/api/middleware"
	"github.com/dmoraes/driver-finance/internal/domain"
	"github.com/dmoraes/driver-finance/internal/store"
)

// GoalsHandler handles the goals endpoints.
type GoalsHandler struct {
	store *store.Store
	log   zerolog.Logger
}

// NewGoalsHandler creates a goals handler.
func NewGoalsHandler(s *store.Store, log zerolog.Logger) *GoalsHandler {
	return &GoalsHandler{store: s, log: log}
}

// List handles GET /api/goals
func (h *GoalsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.UserFromContext(ctx)

	goals, err := h.store.ListGoals(ctx, user.ID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list goals")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list goals")
		return
	}
	if goals == nil {
		goals = []domain.Goal{}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"goals": goals,
		"count": len(goals),
	})
}

// Create handles POST /api/goals
func (h *GoalsHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.UserFromContext(ctx)

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Type        string `json:"type"`
		Category    string `json:"category"`
		Target      string `json:"target"`
		Deadline    string `json:"deadline"`
		Priority    string `json:"priority"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Title == "" {
		middleware.WriteError(w, http.StatusBadRequest, "title is required")
		return
	}
	target, err := decimal.NewFromString(req.Target)
	if err != nil || !target.IsPositive() {
		middleware.WriteError(w, http.StatusBadRequest, "target must be a positive decimal")
		return
	}

	goal := &domain.Goal{
		UserID:      user.ID,
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		Category:    req.Category,
		Target:      target,
		Current:     decimal.Zero,
		Deadline:    req.Deadline,
		Priority:    req.Priority,
		IsActive:    true,
	}
	if err := h.store.CreateGoal(ctx, goal); err != nil {
		h.log.Error().Err(err).Msg("Failed to create goal")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to create goal")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, goal)
}
