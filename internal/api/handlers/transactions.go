package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dmoraes/driver-finance/internal/api/middleware"
	"github.com/dmoraes/driver-finance/internal/domain"
	"github.com/dmoraes/driver-finance/internal/store"
)

// TransactionsHandler handles the transactions endpoints.
type TransactionsHandler struct {
	store *store.Store
	log   zerolog.Logger
}

// NewTransactionsHandler creates a transactions handler.
func NewTransactionsHandler(s *store.Store, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{store: s, log: log}
}

// List handles GET /api/transactions with optional limit/offset.
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.UserFromContext(ctx)

	limit := queryInt(r, "limit", 0)
	offset := queryInt(r, "offset", 0)

	txs, err := h.store.ListTransactions(ctx, user.ID, limit, offset)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list transactions")
		return
	}
	if txs == nil {
		txs = []domain.Transaction{}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": txs,
		"count":        len(txs),
	})
}

// ListByDateRange handles GET /api/transactions/date-range with start_date
// and end_date query parameters. Dates are YYYY-MM-DD; the end date is
// inclusive.
func (h *TransactionsHandler) ListByDateRange(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.UserFromContext(ctx)

	start, err := time.Parse("2006-01-02", r.URL.Query().Get("start_date"))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
		return
	}
	end, err := time.Parse("2006-01-02", r.URL.Query().Get("end_date"))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "end_date must be YYYY-MM-DD")
		return
	}
	end = end.AddDate(0, 0, 1).Add(-time.Nanosecond)

	txs, err := h.store.ListTransactionsByDateRange(ctx, user.ID, start, end)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list transactions by date range")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list transactions")
		return
	}
	if txs == nil {
		txs = []domain.Transaction{}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": txs,
		"count":        len(txs),
	})
}

// Create handles POST /api/transactions for manually entered records.
func (h *TransactionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := middleware.UserFromContext(ctx)

	var req struct {
		CategoryID  *int64 `json:"category_id"`
		Amount      string `json:"amount"`
		Description string `json:"description"`
		Type        string `json:"type"`
		Source      string `json:"source"`
		Date        string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		middleware.WriteError(w, http.StatusBadRequest, "amount must be a positive decimal")
		return
	}
	txType := domain.TransactionType(req.Type)
	if !txType.Valid() {
		middleware.WriteError(w, http.StatusBadRequest, "type must be income or expense")
		return
	}
	date := time.Now()
	if req.Date != "" {
		date, err = time.Parse("2006-01-02", req.Date)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
	}
	if req.CategoryID != nil {
		if _, err := h.store.GetCategory(ctx, user.ID, *req.CategoryID); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, "Unknown category")
			return
		}
	}

	tx := &domain.Transaction{
		UserID:      user.ID,
		CategoryID:  req.CategoryID,
		Amount:      amount,
		Description: req.Description,
		Type:        txType,
		Source:      req.Source,
		Date:        date,
	}
	if err := h.store.InsertTransaction(ctx, tx); err != nil {
		h.log.Error().Err(err).Msg("Failed to create transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to create transaction")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, tx)
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
