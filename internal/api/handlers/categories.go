package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/finman-app/backend/internal/api/middleware"
	"github.com/finman-app/backend/internal/categories"
	"github.com/finman-app/backend/internal/domain"
	"github.com/finman-app/backend/internal/store"
)

// CategoriesHandler handles the budget configuration endpoints.
type CategoriesHandler struct {
	svc *categories.Service
	log zerolog.Logger
}

// NewCategoriesHandler creates a new categories handler.
func NewCategoriesHandler(svc *categories.Service, log zerolog.Logger) *CategoriesHandler {
	return &CategoriesHandler{svc: svc, log: log}
}

// Get handles GET /api/v1/categories
func (h *CategoriesHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	cfg, cached, err := h.svc.Get(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load categories")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to load categories")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"data":   cfg,
		"cached": cached,
	})
}

// Save handles PUT /api/v1/categories
func (h *CategoriesHandler) Save(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var cfg domain.CategoryConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.svc.Save(r.Context(), userID, &cfg); err != nil {
		h.log.Error().Err(err).Msg("Failed to save categories")
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Categories saved",
		"data":    cfg,
	})
}

// UpdateSubcategory handles PATCH /api/v1/categories/subcategory
func (h *CategoriesHandler) UpdateSubcategory(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req struct {
		CategoryID      string                       `json:"categoryId"`
		SubcategoryName string                       `json:"subcategoryName"`
		Updates         categories.SubcategoryUpdate `json:"updates"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.CategoryID == "" || req.SubcategoryName == "" {
		middleware.WriteError(w, http.StatusBadRequest, "categoryId and subcategoryName are required")
		return
	}

	err := h.svc.UpdateSubcategory(r.Context(), userID, req.CategoryID, req.SubcategoryName, req.Updates)
	switch {
	case errors.Is(err, store.ErrNotFound):
		middleware.WriteError(w, http.StatusNotFound, "Categories not configured")
	case errors.Is(err, categories.ErrCategoryNotFound):
		middleware.WriteError(w, http.StatusNotFound, "Category not found")
	case errors.Is(err, categories.ErrSubcategoryNotFound):
		middleware.WriteError(w, http.StatusNotFound, "Subcategory not found")
	case err != nil:
		h.log.Error().Err(err).Msg("Failed to update subcategory")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to update subcategory")
	default:
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"message": "Subcategory updated",
		})
	}
}

// CheckSalary handles GET /api/v1/categories/salary
func (h *CategoriesHandler) CheckSalary(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	status, err := h.svc.CheckSalary(r.Context(), userID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to check salary")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to check salary")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, status)
}

// ConfirmSalary handles POST /api/v1/categories/salary/confirm
func (h *CategoriesHandler) ConfirmSalary(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		middleware.WriteError(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	if err := h.svc.ConfirmSalary(r.Context(), userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			middleware.WriteError(w, http.StatusNotFound, "Categories not configured")
			return
		}
		h.log.Error().Err(err).Msg("Failed to confirm salary")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to confirm salary")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Salary payment recorded",
	})
}
