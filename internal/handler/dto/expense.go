// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/expensio/expensio/internal/filter"
	"github.com/expensio/expensio/internal/model"
)

// CreateExpenseRequest represents the request body for creating an expense.
type CreateExpenseRequest struct {
	Description *string `json:"description,omitempty"`
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Date        string  `json:"date"`
}

// UpdateExpenseRequest represents the request body for a partial update.
// Absent fields retain their stored value; a field sent as empty is
// applied as empty.
type UpdateExpenseRequest struct {
	Description *string  `json:"description,omitempty"`
	Amount      *float64 `json:"amount,omitempty"`
	Category    *string  `json:"category,omitempty"`
	Date        *string  `json:"date,omitempty"`
}

// ExpenseResponse represents an expense in API responses.
type ExpenseResponse struct {
	ID          string    `json:"id"`
	Description *string   `json:"description,omitempty"`
	Amount      float64   `json:"amount"`
	Category    string    `json:"category"`
	Date        string    `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ExpenseListResponse represents a list of expenses.
type ExpenseListResponse struct {
	Data  []ExpenseResponse `json:"data"`
	Count int               `json:"count"`
}

// MessageResponse carries a bare confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error  string   `json:"error"`
	Code   string   `json:"code"`
	Fields []string `json:"fields,omitempty"`
}

// ToExpenseResponse converts an Expense model to its response DTO.
func ToExpenseResponse(expense *model.Expense) *ExpenseResponse {
	return &ExpenseResponse{
		ID:          expense.ID,
		Description: expense.Description,
		Amount:      expense.Amount,
		Category:    string(expense.Category),
		Date:        expense.Date.Format(filter.DateLayout),
		CreatedAt:   expense.CreatedAt,
		UpdatedAt:   expense.UpdatedAt,
	}
}

// ToExpenseListResponse converts a slice of expenses to a list response.
func ToExpenseListResponse(expenses []*model.Expense) *ExpenseListResponse {
	data := make([]ExpenseResponse, 0, len(expenses))
	for _, expense := range expenses {
		data = append(data, *ToExpenseResponse(expense))
	}
	return &ExpenseListResponse{
		Data:  data,
		Count: len(data),
	}
}
