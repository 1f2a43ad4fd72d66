package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/finman-app/backend/internal/api/middleware"
	"github.com/finman-app/backend/internal/domain"
	"github.com/finman-app/backend/internal/store"
)

// GoalsHandler handles savings goal endpoints.
type GoalsHandler struct {
	store store.Store
	log   zerolog.Logger
}

// NewGoalsHandler creates a new goals handler.
func NewGoalsHandler(st store.Store, log zerolog.Logger) *GoalsHandler {
	return &GoalsHandler{store: st, log: log}
}

// Create handles POST /api/v1/goals
func (h *GoalsHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var goal domain.Goal
	if err := json.NewDecoder(r.Body).Decode(&goal); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if goal.Name == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Name is required")
		return
	}
	if !goal.TargetAmount.IsPositive() {
		middleware.WriteError(w, http.StatusBadRequest, "Target amount must be greater than zero")
		return
	}

	now := time.Now()
	goal.ID = uuid.New().String()
	goal.UserID = userID
	goal.CurrentAmount = decimal.Zero
	goal.CreatedAt = now
	goal.UpdatedAt = now

	if err := h.store.Goals().Create(r.Context(), &goal); err != nil {
		h.log.Error().Err(err).Msg("Failed to create goal")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to create goal")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, goal)
}

// List handles GET /api/v1/goals
func (h *GoalsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	goals, err := h.store.Goals().ListByUser(r.Context(), userID)
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

// Deposit handles POST /api/v1/goals/{id}/deposit
//
// Moves money from the user's balance into the goal. The balance debit, the
// goal update and the expense transaction commit as one unit.
func (h *GoalsHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !req.Amount.IsPositive() {
		middleware.WriteError(w, http.StatusBadRequest, "Amount must be greater than zero")
		return
	}

	goalID := mux.Vars(r)["id"]

	var errInsufficient = errors.New("insufficient balance")
	var errOvershoot = errors.New("amount exceeds the goal target")

	var updated *domain.Goal
	err := h.store.WithTransaction(r.Context(), func(ctx context.Context) error {
		user, err := h.store.Users().GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if req.Amount.GreaterThan(user.Balance) {
			return errInsufficient
		}

		goal, err := h.store.Goals().GetByID(ctx, goalID)
		if err != nil {
			return err
		}
		if goal.UserID != userID {
			return store.ErrNotFound
		}

		newAmount := goal.CurrentAmount.Add(req.Amount)
		if newAmount.GreaterThan(goal.TargetAmount) {
			return errOvershoot
		}

		now := time.Now()
		tx := &domain.Transaction{
			ID:          uuid.New().String(),
			UserID:      userID,
			Type:        domain.TransactionExpense,
			Amount:      req.Amount,
			Category:    "Goals",
			Subcategory: goal.Name,
			Date:        now,
			Paid:        true,
			Note:        fmt.Sprintf("Deposit into goal: %s", goal.Name),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := h.store.Transactions().Create(ctx, tx); err != nil {
			return err
		}
		if err := h.store.Users().SetBalance(ctx, userID, user.Balance.Sub(req.Amount)); err != nil {
			return err
		}
		if err := h.store.Goals().SetCurrentAmount(ctx, goal.ID, newAmount); err != nil {
			return err
		}

		goal.CurrentAmount = newAmount
		updated = goal
		return nil
	})

	switch {
	case errors.Is(err, errInsufficient):
		middleware.WriteError(w, http.StatusBadRequest, "Insufficient balance")
	case errors.Is(err, errOvershoot):
		middleware.WriteError(w, http.StatusBadRequest, "Amount exceeds the goal target")
	case errors.Is(err, store.ErrNotFound):
		middleware.WriteError(w, http.StatusNotFound, "Goal not found")
	case err != nil:
		h.log.Error().Err(err).Str("goal_id", goalID).Msg("Failed to deposit into goal")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to deposit into goal")
	default:
		middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"goal":     updated,
			"progress": updated.Progress(),
		})
	}
}
