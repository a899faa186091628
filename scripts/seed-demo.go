package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/expensio/expensio/internal/auth"
	"github.com/expensio/expensio/internal/model"
	"github.com/expensio/expensio/internal/repository"
)

type output struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Password string `json:"password"`
	Expenses int    `json:"expenses"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		username    = flag.String("username", "demo", "Username for the demo user")
		password    = flag.String("password", "demo-password", "Password for the demo user")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	user, err := ensureUser(ctx, repo, *username, *password)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	count, err := seedExpenses(ctx, repo, user.ID)
	if err != nil {
		fmt.Fprintln(os.Stderr, "seed expenses:", err)
		os.Exit(1)
	}

	out := output{
		UserID:   user.ID,
		Username: *username,
		Password: *password,
		Expenses: count,
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Printf("%s / %s (%d expenses)\n", out.Username, out.Password, out.Expenses)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

func ensureUser(ctx context.Context, repo *repository.Repository, username, password string) (*model.User, error) {
	existing, err := repo.GetUserByUsername(ctx, username)
	if err == nil {
		return existing, nil
	}

	digest, err := auth.HashSecret(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           ulid.Make().String(),
		Username:     username,
		SecretDigest: digest,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := repo.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func seedExpenses(ctx context.Context, repo *repository.Repository, userID string) (int, error) {
	today := time.Now().UTC().Truncate(24 * time.Hour)

	samples := []struct {
		description string
		amount      float64
		category    model.Category
		daysAgo     int
	}{
		{"weekly groceries", 64.20, model.CategoryGroceries, 2},
		{"cinema tickets", 24.00, model.CategoryLeisure, 5},
		{"usb-c hub", 39.99, model.CategoryElectronics, 9},
		{"electricity bill", 82.50, model.CategoryUtilities, 14},
		{"winter jacket", 120.00, model.CategoryClothing, 20},
		{"dentist visit", 55.00, model.CategoryHealth, 28},
		{"birthday gift", 30.00, model.CategoryOthers, 40},
	}

	now := time.Now().UTC()
	for _, s := range samples {
		description := s.description
		expense := &model.Expense{
			ID:          ulid.Make().String(),
			UserID:      userID,
			Description: &description,
			Amount:      s.amount,
			Category:    s.category,
			Date:        today.AddDate(0, 0, -s.daysAgo),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := repo.CreateExpense(ctx, expense); err != nil {
			return 0, err
		}
	}
	return len(samples), nil
}
