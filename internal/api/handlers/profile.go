package handlers

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dmoraes/driver-finance/internal/api/middleware"
	"github.com/dmoraes/driver-finance/internal/profile"
	"github.com/dmoraes/driver-finance/internal/store"
)

// ProfileHandler serves the aggregated driver profile.
type ProfileHandler struct {
	store *store.Store
	log   zerolog.Logger
}

// NewProfileHandler creates a profile handler.
func NewProfileHandler(s *store.Store, log zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{store: s, log: log}
}

// Comprehensive handles GET /api/profile/comprehensive
func (h *ProfileHandler) Comprehensive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.UserFromContext(ctx)

	txs, err := h.store.ListAllTransactions(ctx, user.ID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to build profile")
		return
	}
	sessions, err := h.store.ListWorkSessions(ctx, user.ID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load work sessions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to build profile")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, profile.Build(user, txs, sessions, time.Now()))
}
