package main

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/service"
)

// demo registers three users, splits a dinner equally and a movie by exact
// amounts, then prints expenses and balances.
func (c *cli) demo(ctx context.Context) error {
	john, err := c.svc.RegisterUser(ctx, "John", "john@email.com")
	if err != nil {
		return err
	}
	alice, err := c.svc.RegisterUser(ctx, "Alice", "alice@email.com")
	if err != nil {
		return err
	}
	bob, err := c.svc.RegisterUser(ctx, "Bob", "bob@email.com")
	if err != nil {
		return err
	}

	fmt.Fprintln(c.out, "Registered users:")
	if err := c.printUsers(ctx); err != nil {
		return err
	}

	// EQUAL expenses are settled as soon as they are created.
	if _, err := c.svc.CreateAndSettle(ctx, service.CreateExpenseParams{
		PayerID:      john.ID,
		Description:  "Dinner",
		Total:        decimal.NewFromInt(300),
		Strategy:     models.SplitEqual,
		Participants: []string{john.ID, alice.ID, bob.ID},
	}); err != nil {
		return err
	}

	movie, err := c.svc.CreateExpense(ctx, service.CreateExpenseParams{
		PayerID:      alice.ID,
		Description:  "Movie",
		Total:        decimal.NewFromInt(100),
		Strategy:     models.SplitExact,
		Participants: []string{john.ID, alice.ID},
	})
	if err != nil {
		return err
	}
	if _, err := c.svc.FinalizeShares(ctx, movie.ID, models.ShareMap{
		john.ID:  decimal.NewFromInt(60),
		alice.ID: decimal.NewFromInt(40),
	}); err != nil {
		return err
	}
	if err := c.svc.SettleExpense(ctx, movie.ID); err != nil {
		return err
	}

	fmt.Fprintln(c.out, "\nAll expenses:")
	if err := c.listExpenses(ctx, nil); err != nil {
		return err
	}

	fmt.Fprintln(c.out, "\nBalances after expenses:")
	for _, u := range []string{john.ID, alice.ID, bob.ID} {
		if err := c.printBalances(ctx, u); err != nil {
			return err
		}
	}

	fmt.Fprintln(c.out, "\nOutstanding debts:")
	if err := c.printSheet(ctx); err != nil {
		return err
	}

	fmt.Fprintln(c.out, "\nJohn's expenses:")
	return c.listExpenses(ctx, []string{"-user", john.ID})
}
