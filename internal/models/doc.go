// Package models defines the core domain models for splitledger.
//
// # Models
//
//   - User: a registered participant, identified by an opaque ID
//   - Expense: one shared expense, its split strategy and computed shares
//   - BalanceEntry: one non-zero pairwise debt as reported by the ledger
//
// All amounts are decimal.Decimal so share sums are exact.
//
// # Expense lifecycle
//
// An expense moves through Created, SharesFinalized and Settled, in that
// order and never backwards. EQUAL expenses compute their shares on creation
// and start out finalized. EXACT and PERCENT expenses start in Created and
// need an explicit FinalizeShares call before they can be settled.
//
// # Relationships
//
// Models reference each other by ID strings, never by pointer.
package models
