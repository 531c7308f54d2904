package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestSQLiteStore(t *testing.T) {
	// Create temp directory for test database
	tempDir, err := os.MkdirTemp("", "splitledger-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	dbPath := filepath.Join(tempDir, "test.db")
	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	var john, alice *models.User

	t.Run("CreateUser generates ID", func(t *testing.T) {
		john = &models.User{Name: "John", Email: "john@email.com"}
		if err := store.CreateUser(ctx, john); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
		alice = &models.User{Name: "Alice"}
		if err := store.CreateUser(ctx, alice); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
		if john.ID == "" || alice.ID == "" {
			t.Fatal("Expected user IDs to be generated")
		}
		if john.ID == alice.ID {
			t.Error("Expected unique user IDs")
		}
	})

	t.Run("GetUser and UserExists", func(t *testing.T) {
		got, err := store.GetUser(ctx, john.ID)
		if err != nil {
			t.Fatalf("GetUser failed: %v", err)
		}
		if got.Name != "John" || got.Email != "john@email.com" {
			t.Errorf("GetUser returned %+v", got)
		}

		got, err = store.GetUser(ctx, alice.ID)
		if err != nil {
			t.Fatalf("GetUser failed: %v", err)
		}
		if got.Email != "" {
			t.Errorf("Expected empty email, got %q", got.Email)
		}

		exists, err := store.UserExists(ctx, john.ID)
		if err != nil || !exists {
			t.Errorf("UserExists(john) = %v, %v", exists, err)
		}
		exists, err = store.UserExists(ctx, "nonexistent-id")
		if err != nil || exists {
			t.Errorf("UserExists(nonexistent) = %v, %v", exists, err)
		}

		missing, err := store.GetUser(ctx, "nonexistent-id")
		if err != nil || missing != nil {
			t.Errorf("GetUser(nonexistent) = %v, %v; want nil, nil", missing, err)
		}
	})

	t.Run("ListUsers keeps registration order", func(t *testing.T) {
		users, err := store.ListUsers(ctx)
		if err != nil {
			t.Fatalf("ListUsers failed: %v", err)
		}
		if len(users) != 2 || users[0].ID != john.ID || users[1].ID != alice.ID {
			t.Errorf("ListUsers returned %+v", users)
		}
	})

	t.Run("CreateExpense and GetExpense round trip shares exactly", func(t *testing.T) {
		original, err := models.NewExpense("", john.ID, "Dinner", d("100"), models.SplitEqual, []string{alice.ID, john.ID})
		if err != nil {
			t.Fatalf("NewExpense failed: %v", err)
		}
		if err := original.FinalizeShares(models.ShareMap{alice.ID: d("33.34"), john.ID: d("66.66")}); err != nil {
			t.Fatalf("FinalizeShares failed: %v", err)
		}
		if err := store.CreateExpense(ctx, original); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}
		if original.ID == "" || original.CreatedAt == 0 {
			t.Fatal("Expected ID and CreatedAt to be set")
		}

		retrieved, err := store.GetExpense(ctx, original.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if retrieved.PayerID != john.ID || retrieved.Description != "Dinner" {
			t.Errorf("Header mismatch: %+v", retrieved)
		}
		if !retrieved.Total.Equal(d("100")) {
			t.Errorf("Total mismatch: got %s", retrieved.Total)
		}
		if retrieved.Strategy != models.SplitEqual || retrieved.State != models.StateSharesFinalized {
			t.Errorf("Strategy/State mismatch: %s/%s", retrieved.Strategy, retrieved.State)
		}
		if len(retrieved.Participants) != 2 || retrieved.Participants[0] != alice.ID {
			t.Errorf("Participants order lost: %v", retrieved.Participants)
		}
		if !retrieved.Shares[alice.ID].Equal(d("33.34")) || !retrieved.Shares[john.ID].Equal(d("66.66")) {
			t.Errorf("Shares mismatch: %v", retrieved.Shares)
		}
	})

	t.Run("Created expense has no shares until updated", func(t *testing.T) {
		e, err := models.NewExpense("", alice.ID, "Movie", d("100"), models.SplitExact, []string{john.ID, alice.ID})
		if err != nil {
			t.Fatalf("NewExpense failed: %v", err)
		}
		if err := store.CreateExpense(ctx, e); err != nil {
			t.Fatalf("CreateExpense failed: %v", err)
		}

		got, err := store.GetExpense(ctx, e.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if got.State != models.StateCreated || len(got.Shares) != 0 {
			t.Fatalf("Expected created expense without shares, got %s %v", got.State, got.Shares)
		}

		if err := got.FinalizeShares(models.ShareMap{john.ID: d("60"), alice.ID: d("40")}); err != nil {
			t.Fatalf("FinalizeShares failed: %v", err)
		}
		if err := got.MarkSettled(1700000000); err != nil {
			t.Fatalf("MarkSettled failed: %v", err)
		}
		if err := store.UpdateExpense(ctx, got); err != nil {
			t.Fatalf("UpdateExpense failed: %v", err)
		}

		updated, err := store.GetExpense(ctx, e.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if updated.State != models.StateSettled || updated.SettledAt != 1700000000 {
			t.Errorf("State not updated: %s at %d", updated.State, updated.SettledAt)
		}
		if !updated.Shares[john.ID].Equal(d("60")) {
			t.Errorf("Shares not updated: %v", updated.Shares)
		}
	})

	t.Run("ListExpenses keeps creation order", func(t *testing.T) {
		expenses, err := store.ListExpenses(ctx)
		if err != nil {
			t.Fatalf("ListExpenses failed: %v", err)
		}
		if len(expenses) != 2 || expenses[0].Description != "Dinner" || expenses[1].Description != "Movie" {
			t.Errorf("ListExpenses returned %d expenses", len(expenses))
		}
	})

	t.Run("GetExpense returns error for nonexistent expense", func(t *testing.T) {
		_, err := store.GetExpense(ctx, "nonexistent-id")
		if !errors.Is(err, models.ErrExpenseNotFound) {
			t.Errorf("Expected ErrExpenseNotFound, got %v", err)
		}
	})

	t.Run("UpdateExpense returns error for nonexistent expense", func(t *testing.T) {
		err := store.UpdateExpense(ctx, &models.Expense{ID: "nonexistent-id", State: models.StateSettled})
		if !errors.Is(err, models.ErrExpenseNotFound) {
			t.Errorf("Expected ErrExpenseNotFound, got %v", err)
		}
	})
}
