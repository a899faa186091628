package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/expensio/expensio/internal/filter"
	"github.com/expensio/expensio/internal/model"
)

// ErrExpenseNotFound is returned when no expense matches both the id and
// the owner. A record owned by someone else is indistinguishable from an
// absent one.
var ErrExpenseNotFound = errors.New("expense not found")

const expenseColumns = "id, user_id, description, amount, category, date, created_at, updated_at"

// CreateExpense inserts a new expense into the database.
func (r *Repository) CreateExpense(ctx context.Context, expense *model.Expense) error {
	query := `
		INSERT INTO expenses (id, user_id, description, amount, category, date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		expense.ID,
		expense.UserID,
		expense.Description,
		expense.Amount,
		expense.Category,
		expense.Date,
		expense.CreatedAt,
		expense.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}

	return nil
}

// GetExpense retrieves an expense by id, scoped to its owner.
func (r *Repository) GetExpense(ctx context.Context, ownerID, id string) (*model.Expense, error) {
	query := `
		SELECT ` + expenseColumns + `
		FROM expenses
		WHERE id = $1 AND user_id = $2
	`

	expense, err := scanExpense(r.pool.QueryRow(ctx, query, id, ownerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExpenseNotFound
		}
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	return expense, nil
}

// ListExpenses retrieves the owner's expenses matching the criteria,
// ordered by date descending. Within a date, ULID ids preserve insertion
// order. All present constraints are ANDed; an empty result is not an
// error.
func (r *Repository) ListExpenses(ctx context.Context, ownerID string, c filter.Criteria) ([]*model.Expense, error) {
	q := psql.Select(expenseColumns).
		From("expenses").
		Where(sq.Eq{"user_id": ownerID})

	if c.DateFrom != nil {
		q = q.Where(sq.GtOrEq{"date": *c.DateFrom})
	}
	if c.DateTo != nil {
		q = q.Where(sq.LtOrEq{"date": *c.DateTo})
	}
	if len(c.Categories) > 0 {
		q = q.Where(sq.Eq{"category": c.Categories})
	}
	if c.MinAmount != nil {
		q = q.Where(sq.GtOrEq{"amount": *c.MinAmount})
	}
	if c.MaxAmount != nil {
		q = q.Where(sq.LtOrEq{"amount": *c.MaxAmount})
	}
	if c.Description != "" {
		q = q.Where(sq.ILike{"description": "%" + escapeLike(c.Description) + "%"})
	}

	q = q.OrderBy("date DESC", "id ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	expenses := make([]*model.Expense, 0)
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expenses: %w", err)
	}

	return expenses, nil
}

// UpdateExpense overwrites an expense's mutable fields, scoped to its
// owner. The scoped UPDATE is atomic with respect to a concurrent
// delete: losing the race surfaces as ErrExpenseNotFound.
func (r *Repository) UpdateExpense(ctx context.Context, expense *model.Expense) error {
	query := `
		UPDATE expenses
		SET description = $3, amount = $4, category = $5, date = $6, updated_at = $7
		WHERE id = $1 AND user_id = $2
	`

	result, err := r.pool.Exec(ctx, query,
		expense.ID,
		expense.UserID,
		expense.Description,
		expense.Amount,
		expense.Category,
		expense.Date,
		expense.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrExpenseNotFound
	}

	return nil
}

// DeleteExpense removes an expense, scoped to its owner.
func (r *Repository) DeleteExpense(ctx context.Context, ownerID, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM expenses WHERE id = $1 AND user_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrExpenseNotFound
	}

	return nil
}

// scanExpense scans a single row into an Expense model.
func scanExpense(row pgx.Row) (*model.Expense, error) {
	var expense model.Expense
	err := row.Scan(
		&expense.ID,
		&expense.UserID,
		&expense.Description,
		&expense.Amount,
		&expense.Category,
		&expense.Date,
		&expense.CreatedAt,
		&expense.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
