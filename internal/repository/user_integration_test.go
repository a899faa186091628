//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/expensio/expensio/internal/testutil"
)

// ============================================================================
// User Repository Integration Tests
// ============================================================================

func TestIntegrationUserRepository_CreateUser(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	user := testutil.NewTestUser(t, "alice")

	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	retrieved, err := repo.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}

	if retrieved.Username != "alice" {
		t.Errorf("Username mismatch: got %q, want %q", retrieved.Username, "alice")
	}
	if retrieved.SecretDigest != user.SecretDigest {
		t.Error("SecretDigest mismatch")
	}
	if retrieved.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestIntegrationUserRepository_CreateUser_DuplicateUsername(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	user1 := testutil.NewTestUser(t, "bob")
	user2 := testutil.NewTestUser(t, "bob")
	user2.ID = testutil.UniqueID("user") // Different ID, same username

	if err := repo.CreateUser(ctx, user1); err != nil {
		t.Fatalf("CreateUser (first) failed: %v", err)
	}

	err := repo.CreateUser(ctx, user2)
	if !errors.Is(err, ErrUsernameExists) {
		t.Errorf("Expected ErrUsernameExists, got: %v", err)
	}
}

func TestIntegrationUserRepository_GetUserByUsername(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	user := testutil.NewTestUser(t, "carol")

	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	retrieved, err := repo.GetUserByUsername(ctx, "carol")
	if err != nil {
		t.Fatalf("GetUserByUsername failed: %v", err)
	}

	if retrieved.ID != user.ID {
		t.Errorf("ID mismatch: got %q, want %q", retrieved.ID, user.ID)
	}
}

func TestIntegrationUserRepository_GetUserByUsername_NotFound(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	_, err := repo.GetUserByUsername(ctx, "nonexistent")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got: %v", err)
	}
}

func TestIntegrationUserRepository_DeleteUser_CascadesToExpenses(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	user := testutil.NewTestUser(t, "dave")
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	expense := testutil.NewTestExpense(t, user.ID)
	if err := repo.CreateExpense(ctx, expense); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	if err := repo.DeleteUser(ctx, user.ID); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}

	if _, err := repo.GetUserByID(ctx, user.ID); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound after delete, got: %v", err)
	}

	if _, err := repo.GetExpense(ctx, user.ID, expense.ID); !errors.Is(err, ErrExpenseNotFound) {
		t.Errorf("Expected ErrExpenseNotFound after cascade delete, got: %v", err)
	}
}

// ============================================================================
// Test Environment Setup
// ============================================================================

func newUserTestEnv(t *testing.T) (context.Context, *Repository) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	repo, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetUsersSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset users schema: %v", err)
	}
	if err := testutil.ResetExpensesSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset expenses schema: %v", err)
	}

	return ctx, repo
}
