package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/finman-app/backend/internal/api/middleware"
	"github.com/finman-app/backend/internal/domain"
	"github.com/finman-app/backend/internal/store"
)

// RemindersHandler handles reminder CRUD endpoints.
type RemindersHandler struct {
	store store.Store
	log   zerolog.Logger
}

// NewRemindersHandler creates a new reminders handler.
func NewRemindersHandler(st store.Store, log zerolog.Logger) *RemindersHandler {
	return &RemindersHandler{store: st, log: log}
}

// Create handles POST /api/v1/reminders
func (h *RemindersHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var reminder domain.Reminder
	if err := json.NewDecoder(r.Body).Decode(&reminder); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if reminder.Title == "" || reminder.DueDate.IsZero() {
		middleware.WriteError(w, http.StatusBadRequest, "Title and due date are required")
		return
	}
	if reminder.DueDate.Before(time.Now()) {
		middleware.WriteError(w, http.StatusBadRequest, "Due date must be in the future")
		return
	}
	if reminder.Priority != "" && !reminder.Priority.Valid() {
		middleware.WriteError(w, http.StatusBadRequest, "Priority must be low, medium or high")
		return
	}

	exists, err := h.store.Reminders().TitleExists(r.Context(), userID, reminder.Title)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to check reminder title")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to create reminder")
		return
	}
	if exists {
		middleware.WriteError(w, http.StatusConflict, "A reminder with this title already exists")
		return
	}

	now := time.Now()
	reminder.ID = uuid.New().String()
	reminder.UserID = userID
	reminder.IsCompleted = false
	reminder.CreatedAt = now
	reminder.UpdatedAt = now

	if err := h.store.Reminders().Create(r.Context(), &reminder); err != nil {
		h.log.Error().Err(err).Msg("Failed to create reminder")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to create reminder")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, reminder)
}

// List handles GET /api/v1/reminders
func (h *RemindersHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	query := r.URL.Query()
	var filter domain.ReminderFilter

	if completed := query.Get("completed"); completed == "true" || completed == "false" {
		value := completed == "true"
		filter.Completed = &value
	}
	if priority := domain.ReminderPriority(query.Get("priority")); priority.Valid() {
		filter.Priority = priority
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			filter.Limit = limit
		}
	}

	reminders, err := h.store.Reminders().ListByUser(r.Context(), userID, filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list reminders")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list reminders")
		return
	}

	if reminders == nil {
		reminders = []domain.Reminder{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"reminders": reminders,
		"count":     len(reminders),
	})
}

// Get handles GET /api/v1/reminders/{id}
func (h *RemindersHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	reminder, ok := h.ownedReminder(w, r, userID)
	if !ok {
		return
	}
	middleware.WriteJSON(w, http.StatusOK, reminder)
}

// Update handles PATCH /api/v1/reminders/{id}
func (h *RemindersHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var update domain.ReminderUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if update.Empty() {
		middleware.WriteError(w, http.StatusBadRequest, "No updatable fields provided")
		return
	}
	if update.Title != nil && *update.Title == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Title cannot be empty")
		return
	}
	if update.Priority != nil && !update.Priority.Valid() {
		middleware.WriteError(w, http.StatusBadRequest, "Priority must be low, medium or high")
		return
	}

	reminder, ok := h.ownedReminder(w, r, userID)
	if !ok {
		return
	}

	if err := h.store.Reminders().Update(r.Context(), reminder.ID, update); err != nil {
		h.log.Error().Err(err).Str("reminder_id", reminder.ID).Msg("Failed to update reminder")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to update reminder")
		return
	}

	updated, err := h.store.Reminders().GetByID(r.Context(), reminder.ID)
	if err != nil {
		h.log.Error().Err(err).Str("reminder_id", reminder.ID).Msg("Failed to reload reminder")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to update reminder")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/v1/reminders/{id}
func (h *RemindersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	reminder, ok := h.ownedReminder(w, r, userID)
	if !ok {
		return
	}

	if err := h.store.Reminders().Delete(r.Context(), reminder.ID); err != nil {
		h.log.Error().Err(err).Str("reminder_id", reminder.ID).Msg("Failed to delete reminder")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to delete reminder")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Reminder deleted",
	})
}

// ownedReminder loads the path reminder and enforces ownership.
func (h *RemindersHandler) ownedReminder(w http.ResponseWriter, r *http.Request, userID string) (*domain.Reminder, bool) {
	id := mux.Vars(r)["id"]
	reminder, err := h.store.Reminders().GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Reminder not found")
			return nil, false
		}
		h.log.Error().Err(err).Str("reminder_id", id).Msg("Failed to load reminder")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load reminder")
		return nil, false
	}
	if reminder.UserID != userID {
		middleware.WriteError(w, http.StatusNotFound, "Reminder not found")
		return nil, false
	}
	return reminder, true
}
