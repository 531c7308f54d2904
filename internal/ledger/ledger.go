// Package ledger keeps the pairwise net balances between users and applies
// settled expenses to them.
//
// Each unordered pair of users is stored once under a canonical key, so
// NetBalance(a, b) == -NetBalance(b, a) holds by construction.
package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// Directory is the user lookup the ledger needs to validate a settlement.
type Directory interface {
	UserExists(ctx context.Context, userID string) (bool, error)
}

// pair is an unordered pair of users with lo < hi.
type pair struct {
	lo, hi string
}

// orient returns the canonical pair for (a, b) and whether a is the low side.
func orient(a, b string) (pair, bool) {
	if a < b {
		return pair{lo: a, hi: b}, true
	}
	return pair{lo: b, hi: a}, false
}

// Ledger holds net balances between every pair of users that has shared a
// settled expense. It is safe for concurrent use.
type Ledger struct {
	users Directory

	mu sync.RWMutex
	// balances[p] is the amount p.hi owes p.lo; negative means p.lo owes p.hi.
	balances map[pair]decimal.Decimal
	settled  map[string]struct{}
}

// New creates an empty ledger that validates users against dir.
func New(dir Directory) *Ledger {
	return &Ledger{
		users:    dir,
		balances: make(map[pair]decimal.Decimal),
		settled:  make(map[string]struct{}),
	}
}

// Settle applies an expense's shares: every participant other than the payer
// ends up owing the payer their share more than before. The payer's own share
// is not recorded.
//
// Either every pair update becomes visible or none does. Settling the same
// expense ID twice fails with models.ErrAlreadySettled and changes nothing.
func (l *Ledger) Settle(ctx context.Context, e *models.Expense) error {
	if err := l.checkSettleable(e); err != nil {
		return err
	}

	// User lookups may hit the database, so they run without the lock.
	if err := l.checkUser(ctx, e.PayerID); err != nil {
		return err
	}
	participants := make([]string, 0, len(e.Shares))
	for p := range e.Shares {
		participants = append(participants, p)
	}
	sort.Strings(participants)
	for _, p := range participants {
		if err := l.checkUser(ctx, p); err != nil {
			return err
		}
	}

	deltas := make(map[pair]decimal.Decimal, len(participants))
	for _, p := range participants {
		if p == e.PayerID {
			continue
		}
		key, payerIsLo := orient(e.PayerID, p)
		share := e.Shares[p]
		if !payerIsLo {
			share = share.Neg()
		}
		deltas[key] = deltas[key].Add(share)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	// Another caller may have settled the same expense while users were checked.
	if _, done := l.settled[e.ID]; done {
		return fmt.Errorf("%w: %s", models.ErrAlreadySettled, e.ID)
	}
	for key, delta := range deltas {
		l.balances[key] = l.balances[key].Add(delta)
	}
	l.settled[e.ID] = struct{}{}
	return nil
}

func (l *Ledger) checkSettleable(e *models.Expense) error {
	l.mu.RLock()
	_, done := l.settled[e.ID]
	l.mu.RUnlock()
	if done || e.State == models.StateSettled {
		return fmt.Errorf("%w: %s", models.ErrAlreadySettled, e.ID)
	}
	if e.State != models.StateSharesFinalized || len(e.Shares) == 0 {
		return fmt.Errorf("%w: %s is %s", models.ErrNotReady, e.ID, e.State)
	}
	return nil
}

func (l *Ledger) checkUser(ctx context.Context, userID string) error {
	ok, err := l.users.UserExists(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to look up user %s: %w", userID, err)
	}
	if !ok {
		return &models.UnknownUserError{UserID: userID}
	}
	return nil
}

// IsSettled reports whether the expense has been applied to this ledger.
func (l *Ledger) IsSettled(expenseID string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.settled[expenseID]
	return ok
}

// NetBalance returns how much b owes a. Negative means a owes b.
// Pairs that never transacted return zero.
func (l *Ledger) NetBalance(a, b string) decimal.Decimal {
	if a == b {
		return decimal.Zero
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.netBalance(a, b)
}

func (l *Ledger) netBalance(a, b string) decimal.Decimal {
	key, aIsLo := orient(a, b)
	v := l.balances[key]
	if aIsLo {
		return v
	}
	return v.Neg()
}

// BalancesFor returns user's non-zero balances keyed by counterpart.
// A positive value means the counterpart owes user.
func (l *Ledger) BalancesFor(user string) map[string]decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make(map[string]decimal.Decimal)
	for key := range l.balances {
		var other string
		switch user {
		case key.lo:
			other = key.hi
		case key.hi:
			other = key.lo
		default:
			continue
		}
		if v := l.netBalance(user, other); !v.IsZero() {
			out[other] = v
		}
	}
	return out
}

// NetPosition returns the sum of user's pairwise balances: what everyone
// else owes user overall, minus what user owes them.
func (l *Ledger) NetPosition(user string) decimal.Decimal {
	total := decimal.Zero
	for _, v := range l.BalancesFor(user) {
		total = total.Add(v)
	}
	return total
}

// Sheet returns every outstanding debt, ordered by creditor then debtor.
func (l *Ledger) Sheet() []models.BalanceEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var entries []models.BalanceEntry
	for key, v := range l.balances {
		switch {
		case v.IsPositive():
			entries = append(entries, models.BalanceEntry{Creditor: key.lo, Debtor: key.hi, Amount: v})
		case v.IsNegative():
			entries = append(entries, models.BalanceEntry{Creditor: key.hi, Debtor: key.lo, Amount: v.Neg()})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Creditor != entries[j].Creditor {
			return entries[i].Creditor < entries[j].Creditor
		}
		return entries[i].Debtor < entries[j].Debtor
	})
	return entries
}

// Pairs returns how many user pairs have ever transacted.
func (l *Ledger) Pairs() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.balances)
}
