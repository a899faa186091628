// Package testutil provides helpers for integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/expensio/expensio/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 540540

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// resetSchema applies a migration's down script followed by its up script.
func resetSchema(ctx context.Context, pool *pgxpool.Pool, name string) error {
	root, err := ProjectRoot()
	if err != nil {
		return err
	}

	downPath := filepath.Join(root, "migrations", name+".down.sql")
	upPath := filepath.Join(root, "migrations", name+".up.sql")

	downSQL, err := os.ReadFile(downPath)
	if err != nil {
		return fmt.Errorf("read down migration: %w", err)
	}
	if _, err := pool.Exec(ctx, string(downSQL)); err != nil {
		return fmt.Errorf("apply down migration: %w", err)
	}

	upSQL, err := os.ReadFile(upPath)
	if err != nil {
		return fmt.Errorf("read up migration: %w", err)
	}
	if _, err := pool.Exec(ctx, string(upSQL)); err != nil {
		return fmt.Errorf("apply up migration: %w", err)
	}

	return nil
}

// ResetUsersSchema drops and recreates the users schema for tests.
// Dropping users cascades to expenses, so reset expenses afterwards.
func ResetUsersSchema(ctx context.Context, pool *pgxpool.Pool) error {
	return resetSchema(ctx, pool, "000001_users")
}

// ResetExpensesSchema drops and recreates the expenses schema for tests.
func ResetExpensesSchema(ctx context.Context, pool *pgxpool.Pool) error {
	return resetSchema(ctx, pool, "000002_expenses")
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	return root, nil
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestUser creates a test user with sensible defaults.
func NewTestUser(t testing.TB, username string) *model.User {
	t.Helper()
	now := time.Now().UTC()
	return &model.User{
		ID:           UniqueID("user"),
		Username:     username,
		SecretDigest: "$argon2id$v=19$m=65536,t=3,p=4$dGVzdHNhbHQ$dGVzdGRpZ2VzdA",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewTestExpense creates a test expense with sensible defaults.
func NewTestExpense(t testing.TB, userID string) *model.Expense {
	t.Helper()
	now := time.Now().UTC()
	description := "test expense"
	return &model.Expense{
		ID:          UniqueID("expense"),
		UserID:      userID,
		Description: &description,
		Amount:      12.50,
		Category:    model.CategoryGroceries,
		Date:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
