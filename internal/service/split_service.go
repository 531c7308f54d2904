// Package service exposes the expense-splitting engine to host applications.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// SplitService wires the user directory, expense store, split calculator and
// ledger together. All collaborators are injected; there is no global state.
type SplitService struct {
	store   storage.Store
	ledger  *ledger.Ledger
	metrics *metrics.Metrics
	logger  *slog.Logger
	now     func() time.Time

	// mu serializes expense lifecycle transitions (finalize, settle) so that
	// a record and the ledger never disagree about an expense.
	mu sync.Mutex
}

// NewSplitService creates a SplitService backed by store.
// A nil m gets a fresh metrics set; a nil logger falls back to slog.Default().
func NewSplitService(store storage.Store, m *metrics.Metrics, logger *slog.Logger) *SplitService {
	if m == nil {
		m = metrics.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SplitService{
		store:   store,
		ledger:  ledger.New(store),
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// CreateExpenseParams describes a new expense.
type CreateExpenseParams struct {
	PayerID      string
	Description  string
	Total        decimal.Decimal
	Strategy     models.SplitStrategy
	Participants []string

	// Shares holds amounts for EXACT or percentages for PERCENT. When set,
	// the expense is finalized right after creation. Must be empty for EQUAL.
	Shares models.ShareMap
}

// RegisterUser adds a user to the directory and returns it with its new ID.
func (s *SplitService) RegisterUser(ctx context.Context, name, email string) (*models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, models.Invalid("name", "must not be empty")
	}

	user := &models.User{Name: name, Email: strings.TrimSpace(email)}
	if err := s.store.CreateUser(ctx, user); err != nil {
		s.logger.Error("Failed to register user", "name", name, "error", err)
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.metrics.UsersRegistered.Inc()
	s.logger.Info("User registered", "user_id", user.ID, "name", user.Name)
	return user, nil
}

// CreateExpense records a new expense. EQUAL expenses get their shares
// computed immediately and come back finalized; EXACT and PERCENT expenses
// stay in StateCreated unless params.Shares is supplied.
//
// CreateExpense never settles; call SettleExpense for that.
func (s *SplitService) CreateExpense(ctx context.Context, params CreateExpenseParams) (*models.Expense, error) {
	expense, err := models.NewExpense("", params.PayerID, params.Description, params.Total, params.Strategy, params.Participants)
	if err != nil {
		return nil, s.reject("Invalid expense", err, "payer_id", params.PayerID)
	}

	if err := s.requireUsers(ctx, append([]string{params.PayerID}, params.Participants...)...); err != nil {
		return nil, s.reject("Expense references unknown user", err, "payer_id", params.PayerID)
	}

	if params.Strategy == models.SplitEqual || len(params.Shares) > 0 {
		shares, err := calculator.ComputeShares(expense.Total, expense.Strategy, expense.Participants, params.Shares)
		if err != nil {
			return nil, s.reject("Invalid shares", err, "payer_id", params.PayerID, "strategy", params.Strategy)
		}
		if err := expense.FinalizeShares(shares); err != nil {
			return nil, err
		}
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		s.logger.Error("Failed to store expense", "error", err)
		return nil, fmt.Errorf("failed to create expense: %w", err)
	}

	s.metrics.ExpensesCreated.WithLabelValues(string(expense.Strategy)).Inc()
	s.logger.Info("Expense created",
		"expense_id", expense.ID,
		"payer_id", expense.PayerID,
		"strategy", expense.Strategy,
		"total", expense.Total.String(),
		"state", expense.State,
	)
	return expense, nil
}

// FinalizeShares computes and attaches shares for an EXACT or PERCENT expense
// from explicit amounts or percentages. It is allowed once, on an expense in
// StateCreated; any later attempt fails with a StateError.
func (s *SplitService) FinalizeShares(ctx context.Context, expenseID string, explicit models.ShareMap) (*models.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, s.reject("Cannot finalize shares", err, "expense_id", expenseID)
	}
	if expense.State != models.StateCreated {
		err := &models.StateError{ExpenseID: expense.ID, State: expense.State, Op: "finalize shares of"}
		return nil, s.reject("Cannot finalize shares", err, "expense_id", expenseID)
	}

	shares, err := calculator.ComputeShares(expense.Total, expense.Strategy, expense.Participants, explicit)
	if err != nil {
		return nil, s.reject("Invalid shares", err, "expense_id", expenseID, "strategy", expense.Strategy)
	}
	if err := expense.FinalizeShares(shares); err != nil {
		return nil, s.reject("Cannot finalize shares", err, "expense_id", expenseID)
	}

	if err := s.store.UpdateExpense(ctx, expense); err != nil {
		s.logger.Error("Failed to store finalized shares", "expense_id", expenseID, "error", err)
		return nil, fmt.Errorf("failed to update expense: %w", err)
	}

	s.logger.Info("Shares finalized", "expense_id", expense.ID, "strategy", expense.Strategy)
	return expense, nil
}

// SettleExpense applies a finalized expense to the ledger and marks it settled.
// A second call for the same expense fails with models.ErrAlreadySettled and
// leaves every balance unchanged.
func (s *SplitService) SettleExpense(ctx context.Context, expenseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return s.settleFailed(expenseID, err)
	}

	if err := s.ledger.Settle(ctx, expense); err != nil {
		return s.settleFailed(expenseID, err)
	}

	if err := expense.MarkSettled(s.now().Unix()); err != nil {
		return s.settleFailed(expenseID, err)
	}
	if err := s.store.UpdateExpense(ctx, expense); err != nil {
		// The ledger already holds the expense and will refuse to apply it
		// again, so balances stay correct; only the stored state lags.
		s.logger.Error("Expense settled but record not updated", "expense_id", expenseID, "error", err)
		s.metrics.SettlementsTotal.WithLabelValues(metrics.ResultError).Inc()
		return fmt.Errorf("failed to update settled expense: %w", err)
	}

	s.metrics.SettlementsTotal.WithLabelValues(metrics.ResultOK).Inc()
	s.metrics.SettledAmount.Add(expense.Total.InexactFloat64())
	s.metrics.LedgerPairs.Set(float64(s.ledger.Pairs()))
	s.logger.Info("Expense settled",
		"expense_id", expense.ID,
		"payer_id", expense.PayerID,
		"total", expense.Total.String(),
		"payer_share", expense.PayerShare().String(),
	)
	return nil
}

// CreateAndSettle creates an expense and settles it in one call, the way an
// EQUAL expense behaves when the host wants it applied on creation.
func (s *SplitService) CreateAndSettle(ctx context.Context, params CreateExpenseParams) (*models.Expense, error) {
	expense, err := s.CreateExpense(ctx, params)
	if err != nil {
		return nil, err
	}
	if err := s.SettleExpense(ctx, expense.ID); err != nil {
		return expense, err
	}
	return s.store.GetExpense(ctx, expense.ID)
}

// Restore replays every settled expense from the store into the ledger.
// Hosts with a durable store call it once at startup, before serving.
func (s *SplitService) Restore(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	expenses, err := s.store.ListExpenses(ctx)
	if err != nil {
		return fmt.Errorf("failed to list expenses: %w", err)
	}

	restored := 0
	for _, e := range expenses {
		if e.State != models.StateSettled || s.ledger.IsSettled(e.ID) {
			continue
		}
		replay := e.Clone()
		replay.State = models.StateSharesFinalized
		if err := s.ledger.Settle(ctx, replay); err != nil {
			return fmt.Errorf("failed to replay expense %s: %w", e.ID, err)
		}
		restored++
	}

	s.metrics.LedgerPairs.Set(float64(s.ledger.Pairs()))
	s.logger.Info("Ledger restored", "expenses", restored, "pairs", s.ledger.Pairs())
	return nil
}

// GetBalance returns how much b owes a; negative means a owes b.
func (s *SplitService) GetBalance(ctx context.Context, a, b string) (decimal.Decimal, error) {
	if err := s.requireUsers(ctx, a, b); err != nil {
		return decimal.Zero, err
	}
	return s.ledger.NetBalance(a, b), nil
}

// GetAllBalances returns userID's non-zero balances keyed by counterpart.
// Positive values are owed to userID.
func (s *SplitService) GetAllBalances(ctx context.Context, userID string) (map[string]decimal.Decimal, error) {
	if err := s.requireUsers(ctx, userID); err != nil {
		return nil, err
	}
	return s.ledger.BalancesFor(userID), nil
}

// GetNetPosition returns what userID is owed overall across all counterparts.
func (s *SplitService) GetNetPosition(ctx context.Context, userID string) (decimal.Decimal, error) {
	if err := s.requireUsers(ctx, userID); err != nil {
		return decimal.Zero, err
	}
	return s.ledger.NetPosition(userID), nil
}

// Positions returns each user's paid-minus-consumed totals computed from the
// settled expense records, independently of the ledger.
func (s *SplitService) Positions(ctx context.Context) (map[string]*calculator.MemberPosition, error) {
	expenses, err := s.store.ListExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	return calculator.NetPositions(expenses), nil
}

// BalanceSheet returns every outstanding debt in the ledger.
func (s *SplitService) BalanceSheet(_ context.Context) []models.BalanceEntry {
	return s.ledger.Sheet()
}

// ListUsers returns all registered users.
func (s *SplitService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.store.ListUsers(ctx)
}

// ListExpenses returns all expenses in creation order.
func (s *SplitService) ListExpenses(ctx context.Context) ([]*models.Expense, error) {
	return s.store.ListExpenses(ctx)
}

// ListExpensesForUser returns the expenses userID paid for or participates in.
func (s *SplitService) ListExpensesForUser(ctx context.Context, userID string) ([]*models.Expense, error) {
	if err := s.requireUsers(ctx, userID); err != nil {
		return nil, err
	}
	all, err := s.store.ListExpenses(ctx)
	if err != nil {
		return nil, err
	}
	var out []*models.Expense
	for _, e := range all {
		if e.Involves(userID) {
			out = append(out, e)
		}
	}
	return out, nil
}

// requireUsers returns an UnknownUserError for the first unregistered ID.
func (s *SplitService) requireUsers(ctx context.Context, ids ...string) error {
	for _, id := range ids {
		ok, err := s.store.UserExists(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to look up user %s: %w", id, err)
		}
		if !ok {
			return &models.UnknownUserError{UserID: id}
		}
	}
	return nil
}

// reject logs a refused operation and returns err unchanged.
func (s *SplitService) reject(msg string, err error, attrs ...any) error {
	attrs = append(attrs, "error", err)
	if models.IsRejected(err) {
		s.logger.Warn(msg, attrs...)
	} else {
		s.logger.Error(msg, attrs...)
	}
	return err
}

func (s *SplitService) settleFailed(expenseID string, err error) error {
	result := metrics.ResultError
	if models.IsRejected(err) {
		result = metrics.ResultRejected
	}
	s.metrics.SettlementsTotal.WithLabelValues(result).Inc()
	return s.reject("Settlement rejected", err, "expense_id", expenseID)
}
