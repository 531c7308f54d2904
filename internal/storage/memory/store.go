// Package memory provides an in-memory implementation of storage.Store.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Store keeps users and expenses in maps. Records are copied on the way in
// and out, so callers never share state with the store.
type Store struct {
	mu sync.RWMutex

	users     map[string]*models.User
	userOrder []string

	expenses     map[string]*models.Expense
	expenseOrder []string
}

// New creates an empty store.
func New() *Store {
	return &Store{
		users:    make(map[string]*models.User),
		expenses: make(map[string]*models.Expense),
	}
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

func (s *Store) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt == 0 {
		user.CreatedAt = time.Now().Unix()
	}
	if _, exists := s.users[user.ID]; exists {
		return fmt.Errorf("user already exists: %s", user.ID)
	}
	u := *user
	s.users[user.ID] = &u
	s.userOrder = append(s.userOrder, user.ID)
	return nil
}

func (s *Store) GetUser(_ context.Context, userID string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

func (s *Store) UserExists(_ context.Context, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[userID]
	return ok, nil
}

func (s *Store) ListUsers(_ context.Context) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*models.User, 0, len(s.userOrder))
	for _, id := range s.userOrder {
		c := *s.users[id]
		users = append(users, &c)
	}
	return users, nil
}

func (s *Store) CreateExpense(_ context.Context, expense *models.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}
	if _, exists := s.expenses[expense.ID]; exists {
		return fmt.Errorf("expense already exists: %s", expense.ID)
	}
	s.expenses[expense.ID] = expense.Clone()
	s.expenseOrder = append(s.expenseOrder, expense.ID)
	return nil
}

func (s *Store) GetExpense(_ context.Context, expenseID string) (*models.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.expenses[expenseID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrExpenseNotFound, expenseID)
	}
	return e.Clone(), nil
}

func (s *Store) UpdateExpense(_ context.Context, expense *models.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.expenses[expense.ID]; !ok {
		return fmt.Errorf("%w: %s", models.ErrExpenseNotFound, expense.ID)
	}
	s.expenses[expense.ID] = expense.Clone()
	return nil
}

func (s *Store) ListExpenses(_ context.Context) ([]*models.Expense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	expenses := make([]*models.Expense, 0, len(s.expenseOrder))
	for _, id := range s.expenseOrder {
		expenses = append(expenses, s.expenses[id].Clone())
	}
	return expenses, nil
}
