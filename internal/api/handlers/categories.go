package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dmoraes/driver-finance/internal/api/middleware"
	"github.com/dmoraes/driver-finance/internal/domain"
	"github.com/dmoraes/driver-finance/internal/store"
)

// CategoriesHandler handles the categories endpoints.
type CategoriesHandler struct {
	store *store.Store
	log   zerolog.Logger
}

// NewCategoriesHandler creates a categories handler.
func NewCategoriesHandler(s *store.Store, log zerolog.Logger) *CategoriesHandler {
	return &CategoriesHandler{store: s, log: log}
}

// List handles GET /api/categories
func (h *CategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.UserFromContext(ctx)

	categories, err := h.store.ListCategories(ctx, user.ID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list categories")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list categories")
		return
	}
	if categories == nil {
		categories = []domain.Category{}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"categories": categories,
		"count":      len(categories),
	})
}

// Create handles POST /api/categories
func (h *CategoriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.UserFromContext(ctx)

	var req struct {
		Name  string `json:"name"`
		Type  string `json:"type"`
		Icon  string `json:"icon"`
		Color string `json:"color"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		middleware.WriteError(w, http.StatusBadRequest, "name is required")
		return
	}
	if !domain.TransactionType(req.Type).Valid() {
		middleware.WriteError(w, http.StatusBadRequest, "type must be income or expense")
		return
	}

	category := &domain.Category{
		UserID: user.ID,
		Name:   req.Name,
		Type:   domain.TransactionType(req.Type),
		Icon:   req.Icon,
		Color:  req.Color,
	}
	if err := h.store.CreateCategory(ctx, category); err != nil {
		h.log.Error().Err(err).Msg("Failed to create category")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to create category")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, category)
}
