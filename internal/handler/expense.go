package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/expensio/expensio/internal/auth"
	"github.com/expensio/expensio/internal/filter"
	"github.com/expensio/expensio/internal/handler/dto"
	"github.com/expensio/expensio/internal/model"
	"github.com/expensio/expensio/internal/service"
)

// ExpenseHandler handles HTTP requests for expense CRUD and listing.
type ExpenseHandler struct {
	svc    *service.ExpenseService
	logger *slog.Logger
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(svc *service.ExpenseService, logger *slog.Logger) *ExpenseHandler {
	return &ExpenseHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /api/v1/expenses.
func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustIdentityFromContext(r.Context())

	var req dto.CreateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body", nil)
		return
	}

	date, err := time.ParseInLocation(filter.DateLayout, req.Date, time.UTC)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", "Invalid expense data", []string{"date"})
		return
	}

	expense, err := h.svc.CreateExpense(r.Context(), identity.UserID, service.CreateExpenseInput{
		Description: req.Description,
		Amount:      req.Amount,
		Category:    model.Category(req.Category),
		Date:        date,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("expense_created", "expense_id", expense.ID, "user_id", identity.UserID)

	writeJSON(w, http.StatusCreated, dto.ToExpenseResponse(expense))
}

// List handles GET /api/v1/expenses.
func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustIdentityFromContext(r.Context())

	q := r.URL.Query()
	params := filter.Params{
		Filter:      q.Get("filter"),
		StartDate:   q.Get("startDate"),
		EndDate:     q.Get("endDate"),
		Category:    q.Get("category"),
		MinAmount:   q.Get("minAmount"),
		MaxAmount:   q.Get("maxAmount"),
		Description: q.Get("description"),
	}

	criteria, err := filter.Resolve(params, time.Now())
	if err != nil {
		if errors.Is(err, filter.ErrInvalidRange) {
			writeError(w, http.StatusBadRequest, "INVALID_RANGE", err.Error(), nil)
			return
		}
		h.handleServiceError(w, err)
		return
	}

	expenses, err := h.svc.ListExpenses(r.Context(), identity.UserID, criteria)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToExpenseListResponse(expenses))
}

// Get handles GET /api/v1/expenses/{id}.
func (h *ExpenseHandler) Get(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustIdentityFromContext(r.Context())
	id := chi.URLParam(r, "id")

	expense, err := h.svc.GetExpense(r.Context(), identity.UserID, id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToExpenseResponse(expense))
}

// Update handles PUT /api/v1/expenses/{id}.
func (h *ExpenseHandler) Update(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustIdentityFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req dto.UpdateExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body", nil)
		return
	}

	input := service.UpdateExpenseInput{
		Description: req.Description,
		Amount:      req.Amount,
	}
	if req.Category != nil {
		category := model.Category(*req.Category)
		input.Category = &category
	}
	if req.Date != nil {
		date, err := time.ParseInLocation(filter.DateLayout, *req.Date, time.UTC)
		if err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", "Invalid expense data", []string{"date"})
			return
		}
		input.Date = &date
	}

	expense, err := h.svc.UpdateExpense(r.Context(), identity.UserID, id, input)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("expense_updated", "expense_id", expense.ID, "user_id", identity.UserID)

	writeJSON(w, http.StatusOK, dto.ToExpenseResponse(expense))
}

// Delete handles DELETE /api/v1/expenses/{id}.
func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	identity := auth.MustIdentityFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.svc.DeleteExpense(r.Context(), identity.UserID, id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("expense_deleted", "expense_id", id, "user_id", identity.UserID)

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Expense removed"})
}

// handleServiceError maps expense service errors to HTTP responses.
func (h *ExpenseHandler) handleServiceError(w http.ResponseWriter, err error) {
	var verr *service.ValidationError

	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, "VALIDATION_FAILED", "Invalid expense data", verr.Fields)
	case errors.Is(err, service.ErrExpenseNotFound):
		writeError(w, http.StatusNotFound, "EXPENSE_NOT_FOUND", "Expense not found", nil)
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred", nil)
	}
}
