package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/finman-app/backend/internal/api/middleware"
	"github.com/finman-app/backend/internal/stats"
	"github.com/finman-app/backend/internal/store"
)

// StatsHandler serves derived statistics over the user's transactions.
type StatsHandler struct {
	store store.Store
	log   zerolog.Logger
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(st store.Store, log zerolog.Logger) *StatsHandler {
	return &StatsHandler{store: st, log: log}
}

// Summary handles GET /api/v1/stats/summary
func (h *StatsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	transactions, err := h.store.Transactions().ListByUser(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load transactions for summary")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to build summary")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, stats.Summarize(transactions))
}

// Monthly handles GET /api/v1/stats/monthly
func (h *StatsHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	transactions, err := h.store.Transactions().ListByUser(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load transactions for monthly stats")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to build monthly stats")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, stats.SummarizeMonthly(transactions))
}
