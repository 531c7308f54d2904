package models

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestNewExpense(t *testing.T) {
	ten := decimal.NewFromInt(10)
	tests := []struct {
		name         string
		payer        string
		total        decimal.Decimal
		strategy     SplitStrategy
		participants []string
		wantErr      bool
	}{
		{name: "valid", payer: "U1", total: ten, strategy: SplitEqual, participants: []string{"U1", "U2"}},
		{name: "payer not a participant", payer: "U3", total: ten, strategy: SplitExact, participants: []string{"U1", "U2"}},
		{name: "empty payer", payer: "", total: ten, strategy: SplitEqual, participants: []string{"U1"}, wantErr: true},
		{name: "zero total", payer: "U1", total: decimal.Zero, strategy: SplitEqual, participants: []string{"U1"}, wantErr: true},
		{name: "bad strategy", payer: "U1", total: ten, strategy: "RANDOM", participants: []string{"U1"}, wantErr: true},
		{name: "no participants", payer: "U1", total: ten, strategy: SplitEqual, wantErr: true},
		{name: "duplicate participant", payer: "U1", total: ten, strategy: SplitEqual, participants: []string{"U1", "U1"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewExpense("E1", tt.payer, "Dinner", tt.total, tt.strategy, tt.participants)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewExpense() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrValidation) {
					t.Errorf("expected ErrValidation, got %v", err)
				}
				return
			}
			if e.State != StateCreated {
				t.Errorf("State = %s, want %s", e.State, StateCreated)
			}
		})
	}
}

func TestExpenseLifecycle(t *testing.T) {
	e, err := NewExpense("E1", "U1", "Movie", decimal.NewFromInt(100), SplitExact, []string{"U1", "U2"})
	if err != nil {
		t.Fatalf("NewExpense failed: %v", err)
	}

	if err := e.MarkSettled(1); !errors.Is(err, ErrNotReady) {
		t.Fatalf("MarkSettled on created expense = %v, want ErrNotReady", err)
	}

	shares := ShareMap{"U1": decimal.NewFromInt(60), "U2": decimal.NewFromInt(40)}
	if err := e.FinalizeShares(shares); err != nil {
		t.Fatalf("FinalizeShares failed: %v", err)
	}
	if e.State != StateSharesFinalized {
		t.Fatalf("State = %s, want %s", e.State, StateSharesFinalized)
	}
	shares["U1"] = decimal.Zero
	if !e.Shares["U1"].Equal(decimal.NewFromInt(60)) {
		t.Error("FinalizeShares kept a reference to the caller's map")
	}

	err = e.FinalizeShares(ShareMap{"U1": decimal.NewFromInt(100)})
	var stateErr *StateError
	if !errors.As(err, &stateErr) || !errors.Is(err, ErrState) {
		t.Fatalf("second FinalizeShares = %v, want StateError", err)
	}

	if err := e.MarkSettled(1700000000); err != nil {
		t.Fatalf("MarkSettled failed: %v", err)
	}
	if e.State != StateSettled || e.SettledAt != 1700000000 {
		t.Errorf("unexpected settled state %s at %d", e.State, e.SettledAt)
	}
	if err := e.MarkSettled(1); !errors.Is(err, ErrAlreadySettled) {
		t.Errorf("MarkSettled twice = %v, want ErrAlreadySettled", err)
	}
	if err := e.FinalizeShares(shares); !errors.Is(err, ErrState) {
		t.Errorf("FinalizeShares after settle = %v, want ErrState", err)
	}
}

func TestExpenseInvolves(t *testing.T) {
	e := &Expense{PayerID: "U3", Participants: []string{"U1", "U2"}}
	for user, want := range map[string]bool{"U1": true, "U2": true, "U3": true, "U4": false} {
		if got := e.Involves(user); got != want {
			t.Errorf("Involves(%s) = %v, want %v", user, got, want)
		}
	}
}

func TestParseSplitStrategy(t *testing.T) {
	for in, want := range map[string]SplitStrategy{"equal": SplitEqual, " Exact ": SplitExact, "PERCENT": SplitPercent} {
		got, err := ParseSplitStrategy(in)
		if err != nil || got != want {
			t.Errorf("ParseSplitStrategy(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseSplitStrategy("shares"); !errors.Is(err, ErrValidation) {
		t.Errorf("ParseSplitStrategy(shares) error = %v, want ErrValidation", err)
	}
}
