// Package storage provides abstractions for the user directory and expense
// records that sit around the ledger.
package storage

import (
	"context"

	"github.com/mmynk/splitledger/internal/models"
)

// UserDirectory allocates and looks up user identities.
type UserDirectory interface {
	// CreateUser persists a new user. The user.ID and user.CreatedAt fields
	// are populated by the store when empty.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUser retrieves a user by ID.
	// Returns nil, nil if the user does not exist.
	GetUser(ctx context.Context, userID string) (*models.User, error)

	// UserExists reports whether a user with the given ID is registered.
	UserExists(ctx context.Context, userID string) (bool, error)

	// ListUsers returns all users in registration order.
	ListUsers(ctx context.Context) ([]*models.User, error)
}

// ExpenseStore keeps expense records and their lifecycle state.
type ExpenseStore interface {
	// CreateExpense persists a new expense. The expense.ID and
	// expense.CreatedAt fields are populated by the store when empty.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense by ID.
	// Returns an error wrapping models.ErrExpenseNotFound if it does not exist.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// UpdateExpense replaces the shares and lifecycle fields of an existing expense.
	UpdateExpense(ctx context.Context, expense *models.Expense) error

	// ListExpenses returns all expenses in creation order.
	ListExpenses(ctx context.Context) ([]*models.Expense, error)
}

// Store is a complete backend for the service layer.
// This abstraction allows swapping backends (memory, SQLite)
// without changing the service layer.
type Store interface {
	UserDirectory
	ExpenseStore

	// Close releases any resources held by the store.
	Close() error
}
