// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/expensio/expensio/internal/filter"
	"github.com/expensio/expensio/internal/metrics"
	"github.com/expensio/expensio/internal/model"
	"github.com/expensio/expensio/internal/repository"
)

// ErrExpenseNotFound is returned when a record is absent or owned by
// another user; callers cannot tell the two cases apart.
var ErrExpenseNotFound = errors.New("expense not found")

// ValidationError reports payload fields that violate their constraints.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Fields, ", ")
}

// ExpenseStore is the persistence interface the expense service needs.
// *repository.Repository satisfies it.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, expense *model.Expense) error
	GetExpense(ctx context.Context, ownerID, id string) (*model.Expense, error)
	ListExpenses(ctx context.Context, ownerID string, c filter.Criteria) ([]*model.Expense, error)
	UpdateExpense(ctx context.Context, expense *model.Expense) error
	DeleteExpense(ctx context.Context, ownerID, id string) error
}

// ExpenseService enforces ownership and field constraints on every
// expense operation. The owner id always comes from the resolved
// request identity, never from the payload.
type ExpenseService struct {
	store   ExpenseStore
	metrics metrics.Recorder
}

// NewExpenseService creates a new ExpenseService.
func NewExpenseService(store ExpenseStore, recorder metrics.Recorder) *ExpenseService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ExpenseService{
		store:   store,
		metrics: recorder,
	}
}

// CreateExpenseInput defines input for creating an expense.
type CreateExpenseInput struct {
	Description *string
	Amount      float64
	Category    model.Category
	Date        time.Time
}

// CreateExpense validates the payload and persists a new expense owned
// by the caller.
func (s *ExpenseService) CreateExpense(ctx context.Context, ownerID string, input CreateExpenseInput) (*model.Expense, error) {
	var invalid []string
	if !validAmount(input.Amount) {
		invalid = append(invalid, "amount")
	}
	if !input.Category.IsValid() {
		invalid = append(invalid, "category")
	}
	if input.Date.IsZero() {
		invalid = append(invalid, "date")
	}
	if len(invalid) > 0 {
		return nil, &ValidationError{Fields: invalid}
	}

	now := time.Now().UTC()
	expense := &model.Expense{
		ID:          ulid.Make().String(),
		UserID:      ownerID,
		Description: input.Description,
		Amount:      input.Amount,
		Category:    input.Category,
		Date:        dateOnly(input.Date),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	s.metrics.IncExpenseCreated()

	return expense, nil
}

// ListExpenses returns the caller's expenses matching the criteria.
func (s *ExpenseService) ListExpenses(ctx context.Context, ownerID string, c filter.Criteria) ([]*model.Expense, error) {
	expenses, err := s.store.ListExpenses(ctx, ownerID, c)
	if err != nil {
		return nil, err
	}

	s.metrics.IncExpenseListed()

	return expenses, nil
}

// GetExpense returns the expense only if it exists and the caller owns it.
func (s *ExpenseService) GetExpense(ctx context.Context, ownerID, id string) (*model.Expense, error) {
	expense, err := s.store.GetExpense(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrExpenseNotFound) {
			return nil, ErrExpenseNotFound
		}
		return nil, err
	}

	return expense, nil
}

// UpdateExpenseInput defines input for a partial update. Nil fields
// retain their prior value; a field explicitly set to its zero value is
// still applied.
type UpdateExpenseInput struct {
	Description *string
	Amount      *float64
	Category    *model.Category
	Date        *time.Time
}

// UpdateExpense applies the present fields to an owned expense.
func (s *ExpenseService) UpdateExpense(ctx context.Context, ownerID, id string, input UpdateExpenseInput) (*model.Expense, error) {
	expense, err := s.store.GetExpense(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrExpenseNotFound) {
			return nil, ErrExpenseNotFound
		}
		return nil, err
	}

	if input.Description != nil {
		expense.Description = input.Description
	}
	if input.Amount != nil {
		expense.Amount = *input.Amount
	}
	if input.Category != nil {
		expense.Category = *input.Category
	}
	if input.Date != nil {
		expense.Date = dateOnly(*input.Date)
	}

	var invalid []string
	if !validAmount(expense.Amount) {
		invalid = append(invalid, "amount")
	}
	if !expense.Category.IsValid() {
		invalid = append(invalid, "category")
	}
	if expense.Date.IsZero() {
		invalid = append(invalid, "date")
	}
	if len(invalid) > 0 {
		return nil, &ValidationError{Fields: invalid}
	}

	expense.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateExpense(ctx, expense); err != nil {
		// A concurrent delete between the read and the write lands here.
		if errors.Is(err, repository.ErrExpenseNotFound) {
			return nil, ErrExpenseNotFound
		}
		return nil, err
	}

	s.metrics.IncExpenseUpdated()

	return expense, nil
}

// DeleteExpense removes an owned expense.
func (s *ExpenseService) DeleteExpense(ctx context.Context, ownerID, id string) error {
	if err := s.store.DeleteExpense(ctx, ownerID, id); err != nil {
		if errors.Is(err, repository.ErrExpenseNotFound) {
			return ErrExpenseNotFound
		}
		return err
	}

	s.metrics.IncExpenseDeleted()

	return nil
}

// validAmount reports whether the amount is positive with at most two
// fractional digits.
func validAmount(amount float64) bool {
	if amount <= 0 {
		return false
	}
	cents := amount * 100
	return math.Abs(cents-math.Round(cents)) < 1e-6
}

// dateOnly truncates a timestamp to its calendar day in UTC.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
