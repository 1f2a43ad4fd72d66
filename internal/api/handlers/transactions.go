package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/finman-app/backend/internal/api/middleware"
	"github.com/finman-app/backend/internal/domain"
	"github.com/finman-app/backend/internal/store"
)

// TransactionsHandler handles transaction CRUD, search and balance totals.
type TransactionsHandler struct {
	store store.Store
	log   zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(st store.Store, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{store: st, log: log}
}

// Create handles POST /api/v1/transactions
func (h *TransactionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var tx domain.Transaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !tx.Type.Valid() {
		middleware.WriteError(w, http.StatusBadRequest, "Type must be income or expense")
		return
	}
	if !tx.Amount.IsPositive() {
		middleware.WriteError(w, http.StatusBadRequest, "Amount must be greater than zero")
		return
	}
	if tx.Category == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Category is required")
		return
	}

	now := time.Now()
	tx.ID = uuid.New().String()
	tx.UserID = userID
	tx.Fixed = false
	if tx.Date.IsZero() {
		tx.Date = now
	}
	tx.CreatedAt = now
	tx.UpdatedAt = now

	if err := h.store.Transactions().Create(r.Context(), &tx); err != nil {
		h.log.Error().Err(err).Msg("Failed to create transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to create transaction")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, tx)
}

// List handles GET /api/v1/transactions
func (h *TransactionsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	transactions, err := h.store.Transactions().ListByUser(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list transactions")
		return
	}

	if transactions == nil {
		transactions = []domain.Transaction{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": transactions,
		"count":        len(transactions),
	})
}

// Search handles POST /api/v1/transactions/search
//
// Filtering happens in application code over the user's full list, matching
// the rest of the aggregation endpoints.
func (h *TransactionsHandler) Search(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var filter domain.TransactionFilter
	if err := json.NewDecoder(r.Body).Decode(&filter); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if filter.Type != "" && !filter.Type.Valid() {
		middleware.WriteError(w, http.StatusBadRequest, "Type must be income or expense")
		return
	}

	transactions, err := h.store.Transactions().ListByUser(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to search transactions")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to search transactions")
		return
	}

	matched := []domain.Transaction{}
	for _, tx := range transactions {
		if filter.Matches(tx) {
			matched = append(matched, tx)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Date.After(matched[j].Date)
	})

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": matched,
		"count":        len(matched),
	})
}

// Get handles GET /api/v1/transactions/{id}
func (h *TransactionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	tx, ok := h.ownedTransaction(w, r, userID)
	if !ok {
		return
	}
	middleware.WriteJSON(w, http.StatusOK, tx)
}

// Update handles PATCH /api/v1/transactions/{id}
func (h *TransactionsHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var update domain.TransactionUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if update.Empty() {
		middleware.WriteError(w, http.StatusBadRequest, "No updatable fields provided")
		return
	}
	if update.Type != nil && !update.Type.Valid() {
		middleware.WriteError(w, http.StatusBadRequest, "Type must be income or expense")
		return
	}
	if update.Amount != nil && !update.Amount.IsPositive() {
		middleware.WriteError(w, http.StatusBadRequest, "Amount must be greater than zero")
		return
	}

	tx, ok := h.ownedTransaction(w, r, userID)
	if !ok {
		return
	}

	if err := h.store.Transactions().Update(r.Context(), tx.ID, update); err != nil {
		h.log.Error().Err(err).Str("transaction_id", tx.ID).Msg("Failed to update transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to update transaction")
		return
	}

	updated, err := h.store.Transactions().GetByID(r.Context(), tx.ID)
	if err != nil {
		h.log.Error().Err(err).Str("transaction_id", tx.ID).Msg("Failed to reload transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to update transaction")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/v1/transactions/{id}
func (h *TransactionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	tx, ok := h.ownedTransaction(w, r, userID)
	if !ok {
		return
	}

	if err := h.store.Transactions().Delete(r.Context(), tx.ID); err != nil {
		h.log.Error().Err(err).Str("transaction_id", tx.ID).Msg("Failed to delete transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to delete transaction")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Transaction deleted",
	})
}

// Balance handles GET /api/v1/transactions/balance
func (h *TransactionsHandler) Balance(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	transactions, err := h.store.Transactions().ListByUser(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to compute balance")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to compute balance")
		return
	}

	income, expense := decimal.Zero, decimal.Zero
	for _, tx := range transactions {
		if tx.Type == domain.TransactionIncome {
			income = income.Add(tx.Amount)
		} else {
			expense = expense.Add(tx.Amount)
		}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]decimal.Decimal{
		"income":  income,
		"expense": expense,
		"balance": income.Sub(expense),
	})
}

// ownedTransaction loads the path transaction and enforces ownership.
// A transaction belonging to another user reads as absent.
func (h *TransactionsHandler) ownedTransaction(w http.ResponseWriter, r *http.Request, userID string) (*domain.Transaction, bool) {
	id := mux.Vars(r)["id"]
	tx, err := h.store.Transactions().GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Transaction not found")
			return nil, false
		}
		h.log.Error().Err(err).Str("transaction_id", id).Msg("Failed to load transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load transaction")
		return nil, false
	}
	if tx.UserID != userID {
		middleware.WriteError(w, http.StatusNotFound, "Transaction not found")
		return nil, false
	}
	return tx, true
}
