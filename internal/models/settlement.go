package models

import "github.com/shopspring/decimal"

// BalanceEntry represents an outstanding debt between two users.
// It is a read model produced from the ledger; Amount is always positive.
type BalanceEntry struct {
	// Creditor is the user who is owed money.
	Creditor string

	// Debtor is the user who owes money.
	Debtor string

	// Amount is how much Debtor owes Creditor.
	Amount decimal.Decimal
}
