package handlers

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/finman-app/backend/internal/api/middleware"
	"github.com/finman-app/backend/internal/scheduler"
)

// SchedulerHandler exposes the fixed-expense charge run over HTTP.
type SchedulerHandler struct {
	sched *scheduler.Scheduler
	log   zerolog.Logger
}

// NewSchedulerHandler creates a new scheduler handler.
func NewSchedulerHandler(sched *scheduler.Scheduler, log zerolog.Logger) *SchedulerHandler {
	return &SchedulerHandler{sched: sched, log: log}
}

// Process handles POST /api/v1/fixed-expenses/process
//
// Runs a charge pass for the authenticated user. A user with no category
// configuration gets a zero-processed success, not an error.
func (h *SchedulerHandler) Process(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	result, err := h.sched.ProcessFixedExpenses(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Fixed expense run failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to process fixed expenses")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"processed": result.Processed,
		"message":   fmt.Sprintf("Processed %d fixed expenses", result.Processed),
	})
}
