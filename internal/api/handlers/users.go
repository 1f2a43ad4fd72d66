package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/finman-app/backend/internal/api/middleware"
	"github.com/finman-app/backend/internal/domain"
	"github.com/finman-app/backend/internal/store"
)

// UsersHandler handles profile, balance and account deletion endpoints.
type UsersHandler struct {
	store store.Store
	log   zerolog.Logger
}

// NewUsersHandler creates a new users handler.
func NewUsersHandler(st store.Store, log zerolog.Logger) *UsersHandler {
	return &UsersHandler{store: st, log: log}
}

// GetProfile handles GET /api/v1/users/profile
func (h *UsersHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	user, err := h.store.Users().GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "User not found")
			return
		}
		h.log.Error().Err(err).Msg("Failed to load profile")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load profile")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, user)
}

// UpdateProfile handles PUT /api/v1/users/profile
func (h *UsersHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var update domain.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if update.Name != nil && *update.Name == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Name cannot be empty")
		return
	}

	if err := h.store.Users().UpdateProfile(r.Context(), userID, update); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "User not found")
			return
		}
		h.log.Error().Err(err).Msg("Failed to update profile")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	user, err := h.store.Users().GetByID(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to reload profile")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, user)
}

// GetBalance handles GET /api/v1/users/balance
func (h *UsersHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	user, err := h.store.Users().GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "User not found")
			return
		}
		h.log.Error().Err(err).Msg("Failed to load balance")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load balance")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]decimal.Decimal{
		"balance": user.Balance,
	})
}

// SetBalance handles PUT /api/v1/users/balance
//
// Direct balance edits reject negatives and values above the ceiling. The
// fixed-expense scheduler is exempt from the floor: its debits may drive the
// balance below zero.
func (h *UsersHandler) SetBalance(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req struct {
		Balance decimal.Decimal `json:"balance"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Balance.IsNegative() {
		middleware.WriteError(w, http.StatusBadRequest, "Balance cannot be negative")
		return
	}
	if req.Balance.GreaterThan(domain.MaxBalance) {
		middleware.WriteError(w, http.StatusBadRequest, "Balance exceeds the allowed maximum")
		return
	}

	if err := h.store.Users().SetBalance(r.Context(), userID, req.Balance); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "User not found")
			return
		}
		h.log.Error().Err(err).Msg("Failed to set balance")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to set balance")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]decimal.Decimal{
		"balance": req.Balance,
	})
}

// Delete handles DELETE /api/v1/users
//
// Removes the account and every document it owns in one transaction.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	err := h.store.WithTransaction(r.Context(), func(ctx context.Context) error {
		if err := h.store.Transactions().DeleteByUser(ctx, userID); err != nil {
			return err
		}
		if err := h.store.Categories().DeleteByUser(ctx, userID); err != nil {
			return err
		}
		if err := h.store.Reminders().DeleteByUser(ctx, userID); err != nil {
			return err
		}
		if err := h.store.Goals().DeleteByUser(ctx, userID); err != nil {
			return err
		}
		if err := h.store.ExecutionLogs().DeleteByUser(ctx, userID); err != nil {
			return err
		}
		return h.store.Users().Delete(ctx, userID)
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "User not found")
			return
		}
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to delete account")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to delete account")
		return
	}

	h.log.Info().Str("user_id", userID).Msg("Account deleted")

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Account deleted",
	})
}
