// Package handlers implements the HTTP API: authentication, CRUD over the
// driver's data and the statement upload flow feeding the ingestion worker.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dmoraes/driver-finance/internal/api/middleware"
	"github.com/dmoraes/driver-finance/internal/auth"
	"github.com/dmoraes/driver-finance/internal/domain"
	"github.com/dmoraes/driver-finance/internal/store"
)

// trialDays is how long a fresh account stays active without paying.
const trialDays = 7

// AuthHandler handles registration and login.
type AuthHandler struct {
	store *store.Store
	auth  *auth.Manager
	log   zerolog.Logger
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(s *store.Store, a *auth.Manager, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{store: s, auth: a, log: log}
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Email    string `json:"email"`
		FullName string `json:"full_name"`
		Phone    string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Password == "" || req.Email == "" {
		middleware.WriteError(w, http.StatusBadRequest, "username, password and email are required")
		return
	}

	if _, err := h.store.GetUserByUsername(ctx, req.Username); err == nil {
		middleware.WriteError(w, http.StatusBadRequest, "Username already registered")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		h.log.Error().Err(err).Msg("Failed to check username")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to register")
		return
	}
	if _, err := h.store.GetUserByEmail(ctx, req.Email); err == nil {
		middleware.WriteError(w, http.StatusBadRequest, "Email already registered")
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		h.log.Error().Err(err).Msg("Failed to check email")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	hash, err := h.auth.HashPassword(req.Password)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to hash password")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	trialEnds := time.Now().AddDate(0, 0, trialDays)
	user := &domain.User{
		Username:     req.Username,
		PasswordHash: hash,
		Email:        req.Email,
		FullName:     req.FullName,
		Phone:        req.Phone,
		TrialEndsAt:  &trialEnds,
	}
	if err := h.store.CreateUser(ctx, user); err != nil {
		h.log.Error().Err(err).Msg("Failed to create user")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to register")
		return
	}

	h.log.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("User registered")
	middleware.WriteJSON(w, http.StatusCreated, user)
}

// Token handles POST /api/auth/token
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.store.GetUserByUsername(ctx, req.Username)
	if errors.Is(err, store.ErrNotFound) {
		middleware.WriteError(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load user")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to log in")
		return
	}
	if !h.auth.VerifyPassword(req.Password, user.PasswordHash) {
		middleware.WriteError(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}

	token, err := h.auth.IssueToken(user.Username, time.Now())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to issue token")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to log in")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"access_token": token,
		"token_type":   "bearer",
	})
}

// CurrentUser handles GET /api/auth/user
func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		middleware.WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"id":          user.ID,
		"username":    user.Username,
		"email":       user.Email,
		"full_name":   user.FullName,
		"phone":       user.Phone,
		"plan_status": user.PlanStatus(time.Now()),
	})
}
