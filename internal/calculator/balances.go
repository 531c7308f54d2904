package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

// MemberPosition summarizes what one user has paid and consumed across expenses.
type MemberPosition struct {
	UserID    string
	TotalPaid decimal.Decimal // Sum of totals of expenses this user paid for
	TotalOwed decimal.Decimal // Sum of this user's shares, including their own expenses
	Net       decimal.Decimal // TotalPaid - TotalOwed; positive = owed money
}

// NetPositions computes each user's position across the given settled expenses.
//
// Algorithm:
//   - For each settled expense: payer contributed +total, each participant owes their share
//   - Net = total paid - total owed
//
// Expenses that are not settled are skipped. The result is the reference the
// pairwise ledger must agree with: a user's net position equals the sum of
// their pairwise balances.
func NetPositions(expenses []*models.Expense) map[string]*MemberPosition {
	positions := make(map[string]*MemberPosition)
	get := func(id string) *MemberPosition {
		if pos, ok := positions[id]; ok {
			return pos
		}
		pos := &MemberPosition{UserID: id}
		positions[id] = pos
		return pos
	}

	for _, e := range expenses {
		if e.State != models.StateSettled {
			continue
		}
		payer := get(e.PayerID)
		payer.TotalPaid = payer.TotalPaid.Add(e.Total)
		for participant, share := range e.Shares {
			pos := get(participant)
			pos.TotalOwed = pos.TotalOwed.Add(share)
		}
	}

	for _, pos := range positions {
		pos.Net = pos.TotalPaid.Sub(pos.TotalOwed)
	}
	return positions
}
