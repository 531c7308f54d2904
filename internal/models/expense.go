package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// SplitStrategy is the rule used to derive shares from an expense total.
type SplitStrategy string

const (
	// SplitEqual divides the total evenly across participants.
	SplitEqual SplitStrategy = "EQUAL"
	// SplitExact takes caller-supplied amounts that must add up to the total.
	SplitExact SplitStrategy = "EXACT"
	// SplitPercent takes caller-supplied percentages that must add up to 100.
	SplitPercent SplitStrategy = "PERCENT"
)

// ParseSplitStrategy converts a case-insensitive name into a SplitStrategy.
func ParseSplitStrategy(s string) (SplitStrategy, error) {
	st := SplitStrategy(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", Invalid("strategy", "unknown split strategy %q", s)
	}
	return st, nil
}

// Valid reports whether s is one of the known strategies.
func (s SplitStrategy) Valid() bool {
	switch s {
	case SplitEqual, SplitExact, SplitPercent:
		return true
	}
	return false
}

// NeedsExplicitShares reports whether the caller must provide per-participant input.
func (s SplitStrategy) NeedsExplicitShares() bool {
	return s == SplitExact || s == SplitPercent
}

// ExpenseState is the lifecycle stage of an expense.
type ExpenseState string

const (
	StateCreated         ExpenseState = "CREATED"
	StateSharesFinalized ExpenseState = "SHARES_FINALIZED"
	StateSettled         ExpenseState = "SETTLED"
)

// ShareMap maps participant ID to the amount that participant owes.
// For PERCENT input it holds percentages instead.
type ShareMap map[string]decimal.Decimal

// Sum returns the total of all values in the map.
func (m ShareMap) Sum() decimal.Decimal {
	total := decimal.Zero
	for _, v := range m {
		total = total.Add(v)
	}
	return total
}

// Clone returns an independent copy of the map.
func (m ShareMap) Clone() ShareMap {
	if m == nil {
		return nil
	}
	out := make(ShareMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Expense represents one shared expense and its computed shares.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// PayerID is the user who paid the full amount.
	PayerID string

	// Description is a free-form label (e.g. "Dinner").
	Description string

	// Total is the full amount paid. Always positive.
	Total decimal.Decimal

	// Strategy is how Total is divided among Participants.
	Strategy SplitStrategy

	// Participants is the ordered list of users sharing the expense.
	// The payer may or may not be one of them.
	Participants []string

	// Shares is the finalized amount each participant owes.
	// Empty until the expense reaches StateSharesFinalized.
	Shares ShareMap

	// State is the lifecycle stage.
	State ExpenseState

	// CreatedAt is the Unix timestamp when the expense was created.
	CreatedAt int64

	// SettledAt is the Unix timestamp when the ledger applied the expense.
	// Zero until settled.
	SettledAt int64
}

// NewExpense validates the header fields and returns an expense in StateCreated.
// Shares are attached separately through FinalizeShares.
func NewExpense(id, payerID, description string, total decimal.Decimal, strategy SplitStrategy, participants []string) (*Expense, error) {
	if payerID == "" {
		return nil, Invalid("payer_id", "must not be empty")
	}
	if !total.IsPositive() {
		return nil, Invalid("total", "must be greater than 0, got %s", total)
	}
	if !strategy.Valid() {
		return nil, Invalid("strategy", "unknown split strategy %q", strategy)
	}
	if len(participants) == 0 {
		return nil, Invalid("participants", "must have at least one participant")
	}
	seen := make(map[string]bool, len(participants))
	for _, p := range participants {
		if p == "" {
			return nil, Invalid("participants", "participant id must not be empty")
		}
		if seen[p] {
			return nil, Invalid("participants", "duplicate participant %q", p)
		}
		seen[p] = true
	}

	return &Expense{
		ID:           id,
		PayerID:      payerID,
		Description:  description,
		Total:        total,
		Strategy:     strategy,
		Participants: append([]string(nil), participants...),
		State:        StateCreated,
	}, nil
}

// FinalizeShares attaches computed shares. Allowed exactly once, from StateCreated.
func (e *Expense) FinalizeShares(shares ShareMap) error {
	if e.State != StateCreated {
		return &StateError{ExpenseID: e.ID, State: e.State, Op: "finalize shares of"}
	}
	if len(shares) == 0 {
		return Invalid("shares", "must not be empty")
	}
	e.Shares = shares.Clone()
	e.State = StateSharesFinalized
	return nil
}

// MarkSettled moves a finalized expense to its terminal state.
func (e *Expense) MarkSettled(at int64) error {
	switch e.State {
	case StateSettled:
		return ErrAlreadySettled
	case StateSharesFinalized:
		e.State = StateSettled
		e.SettledAt = at
		return nil
	default:
		return ErrNotReady
	}
}

// Involves reports whether userID paid for or participates in the expense.
func (e *Expense) Involves(userID string) bool {
	if e.PayerID == userID {
		return true
	}
	for _, p := range e.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// PayerShare returns the part of the expense the payer consumed themselves.
func (e *Expense) PayerShare() decimal.Decimal {
	return e.Shares[e.PayerID]
}

// Clone returns a deep copy so stores never hand out aliased records.
func (e *Expense) Clone() *Expense {
	if e == nil {
		return nil
	}
	c := *e
	c.Participants = append([]string(nil), e.Participants...)
	c.Shares = e.Shares.Clone()
	return &c
}
