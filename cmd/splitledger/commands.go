package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/service"
)

type cli struct {
	svc *service.SplitService
	out io.Writer
}

func (c *cli) dispatch(ctx context.Context, args []string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "demo":
		return c.demo(ctx)
	case "user":
		if len(rest) < 2 || rest[0] != "add" {
			return fmt.Errorf("usage: user add NAME [EMAIL]")
		}
		email := ""
		if len(rest) > 2 {
			email = rest[2]
		}
		u, err := c.svc.RegisterUser(ctx, rest[1], email)
		if err != nil {
			return err
		}
		fmt.Fprintln(c.out, u.ID)
		return nil
	case "users":
		return c.printUsers(ctx)
	case "expense":
		if len(rest) == 0 {
			return fmt.Errorf("usage: expense add|finalize ...")
		}
		switch rest[0] {
		case "add":
			return c.addExpense(ctx, rest[1:])
		case "finalize":
			return c.finalize(ctx, rest[1:])
		}
		return fmt.Errorf("unknown expense command %q", rest[0])
	case "expenses":
		return c.listExpenses(ctx, rest)
	case "settle":
		if len(rest) != 1 {
			return fmt.Errorf("usage: settle ID")
		}
		return c.svc.SettleExpense(ctx, rest[0])
	case "balance":
		if len(rest) != 2 {
			return fmt.Errorf("usage: balance A B")
		}
		amount, err := c.svc.GetBalance(ctx, rest[0], rest[1])
		if err != nil {
			return err
		}
		fmt.Fprintln(c.out, amount.StringFixed(2))
		return nil
	case "balances":
		if len(rest) != 1 {
			return fmt.Errorf("usage: balances USER")
		}
		return c.printBalances(ctx, rest[0])
	case "sheet":
		return c.printSheet(ctx)
	}
	return fmt.Errorf("unknown command %q", cmd)
}

func (c *cli) addExpense(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("expense add", flag.ContinueOnError)
	fs.SetOutput(c.out)
	payer := fs.String("payer", "", "user ID of the payer")
	total := fs.String("total", "", "amount paid")
	strategy := fs.String("strategy", "EQUAL", "EQUAL, EXACT or PERCENT")
	with := fs.String("with", "", "comma-separated participant IDs")
	shares := fs.String("shares", "", "ID=VALUE pairs for EXACT or PERCENT")
	desc := fs.String("desc", "", "description")
	settle := fs.Bool("settle", false, "settle right after creating")
	if err := fs.Parse(args); err != nil {
		return err
	}

	amount, err := decimal.NewFromString(*total)
	if err != nil {
		return models.Invalid("total", "not a number: %q", *total)
	}
	st, err := models.ParseSplitStrategy(*strategy)
	if err != nil {
		return err
	}
	explicit, err := parseShares(*shares)
	if err != nil {
		return err
	}

	params := service.CreateExpenseParams{
		PayerID:      *payer,
		Description:  *desc,
		Total:        amount,
		Strategy:     st,
		Participants: splitList(*with),
		Shares:       explicit,
	}

	var expense *models.Expense
	if *settle {
		expense, err = c.svc.CreateAndSettle(ctx, params)
	} else {
		expense, err = c.svc.CreateExpense(ctx, params)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, expense.ID)
	return nil
}

func (c *cli) finalize(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: expense finalize ID ID=AMOUNT,...")
	}
	shares, err := parseShares(args[1])
	if err != nil {
		return err
	}
	_, err = c.svc.FinalizeShares(ctx, args[0], shares)
	return err
}

func (c *cli) listExpenses(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("expenses", flag.ContinueOnError)
	fs.SetOutput(c.out)
	user := fs.String("user", "", "only expenses paid by or shared with this user")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var expenses []*models.Expense
	var err error
	if *user != "" {
		expenses, err = c.svc.ListExpensesForUser(ctx, *user)
	} else {
		expenses, err = c.svc.ListExpenses(ctx)
	}
	if err != nil {
		return err
	}
	names, err := c.names(ctx)
	if err != nil {
		return err
	}
	for _, e := range expenses {
		printExpense(c.out, e, names)
	}
	return nil
}

func (c *cli) printUsers(ctx context.Context) error {
	users, err := c.svc.ListUsers(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\t%s\n", u.ID, u.Name, u.Email)
	}
	return w.Flush()
}

func (c *cli) printBalances(ctx context.Context, userID string) error {
	balances, err := c.svc.GetAllBalances(ctx, userID)
	if err != nil {
		return err
	}
	names, err := c.names(ctx)
	if err != nil {
		return err
	}
	counterparts := make([]string, 0, len(balances))
	for id := range balances {
		counterparts = append(counterparts, id)
	}
	sort.Strings(counterparts)

	fmt.Fprintf(c.out, "Balance sheet for %s:\n", nameOf(names, userID))
	for _, id := range counterparts {
		amount := balances[id]
		if amount.IsPositive() {
			fmt.Fprintf(c.out, "  %s owes %s\n", nameOf(names, id), amount.StringFixed(2))
		} else {
			fmt.Fprintf(c.out, "  owes %s %s\n", nameOf(names, id), amount.Neg().StringFixed(2))
		}
	}
	return nil
}

func (c *cli) printSheet(ctx context.Context) error {
	names, err := c.names(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DEBTOR\tCREDITOR\tAMOUNT")
	for _, entry := range c.svc.BalanceSheet(ctx) {
		fmt.Fprintf(w, "%s\t%s\t%s\n", nameOf(names, entry.Debtor), nameOf(names, entry.Creditor), entry.Amount.StringFixed(2))
	}
	return w.Flush()
}

func (c *cli) names(ctx context.Context) (map[string]string, error) {
	users, err := c.svc.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}
	return names, nil
}

func nameOf(names map[string]string, id string) string {
	if n, ok := names[id]; ok {
		return n
	}
	return id
}

func printExpense(w io.Writer, e *models.Expense, names map[string]string) {
	fmt.Fprintf(w, "Expense %s: %q paid by %s, %s %s [%s]\n",
		e.ID, e.Description, nameOf(names, e.PayerID), e.Total.StringFixed(2), e.Strategy, e.State)
	for _, p := range e.Participants {
		if share, ok := e.Shares[p]; ok {
			fmt.Fprintf(w, "  %s: %s\n", nameOf(names, p), share.StringFixed(2))
		} else {
			fmt.Fprintf(w, "  %s: pending\n", nameOf(names, p))
		}
	}
}

// parseShares reads "id=value,id=value".
func parseShares(s string) (models.ShareMap, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	shares := make(models.ShareMap)
	for _, part := range splitList(s) {
		id, value, ok := strings.Cut(part, "=")
		if !ok || strings.TrimSpace(id) == "" {
			return nil, models.Invalid("shares", "expected ID=VALUE, got %q", part)
		}
		amount, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return nil, models.Invalid("shares", "not a number for %s: %q", id, value)
		}
		shares[strings.TrimSpace(id)] = amount
	}
	return shares, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
