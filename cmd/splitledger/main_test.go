package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/models"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	err := run(context.Background(), append([]string{"-env", ""}, args...), &buf)
	return buf.String(), err
}

func TestDemo(t *testing.T) {
	t.Setenv("STORE", "memory")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("METRICS", "true")

	out, err := runCLI(t, "demo")
	if err != nil {
		t.Fatalf("demo failed: %v", err)
	}
	for _, want := range []string{
		"Balance sheet for John:",
		"  Alice owes 40.00",
		"  Bob owes 100.00",
		"  owes John 40.00",
		`splitledger_settlements_total{result="ok"} 2`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("demo output missing %q:\n%s", want, out)
		}
	}
}

func TestSQLiteSession(t *testing.T) {
	t.Setenv("STORE", "sqlite")
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "cli.db"))
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("METRICS", "false")

	mustRun := func(args ...string) string {
		t.Helper()
		out, err := runCLI(t, args...)
		if err != nil {
			t.Fatalf("%v failed: %v", args, err)
		}
		return strings.TrimSpace(out)
	}

	u1 := mustRun("user", "add", "John")
	u2 := mustRun("user", "add", "Alice")

	expenseID := mustRun("expense", "add", "-payer", u2, "-total", "100", "-strategy", "exact", "-with", u1+","+u2, "-desc", "Movie")

	if _, err := runCLI(t, "settle", expenseID); !errors.Is(err, models.ErrNotReady) {
		t.Fatalf("settle before finalize = %v, want ErrNotReady", err)
	}

	mustRun("expense", "finalize", expenseID, u1+"=60,"+u2+"=40")
	mustRun("settle", expenseID)

	// Each invocation rebuilds the ledger from the database.
	if got := mustRun("balance", u2, u1); got != "60.00" {
		t.Errorf("balance = %q, want 60.00", got)
	}
	if _, err := runCLI(t, "settle", expenseID); !errors.Is(err, models.ErrAlreadySettled) {
		t.Errorf("second settle = %v, want ErrAlreadySettled", err)
	}

	sheet := mustRun("sheet")
	if !strings.Contains(sheet, "John") || !strings.Contains(sheet, "60.00") {
		t.Errorf("sheet output:\n%s", sheet)
	}
}

func TestDefaultStorePersistsBetweenCommands(t *testing.T) {
	t.Setenv("STORE", "")
	os.Unsetenv("STORE")
	dbPath := filepath.Join(t.TempDir(), "default.db")
	t.Setenv("DB_PATH", dbPath)
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("METRICS", "false")

	out, err := runCLI(t, "user", "add", "John")
	if err != nil {
		t.Fatalf("user add failed: %v", err)
	}
	id := strings.TrimSpace(out)

	out, err = runCLI(t, "users")
	if err != nil {
		t.Fatalf("users failed: %v", err)
	}
	if !strings.Contains(out, id) {
		t.Errorf("user %s missing from later invocation:\n%s", id, out)
	}
	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("expected database at %s: %v", dbPath, err)
	}
}

func TestParseShares(t *testing.T) {
	shares, err := parseShares(" a=60, b = 40.5 ")
	if err != nil {
		t.Fatalf("parseShares failed: %v", err)
	}
	if !shares["a"].Equal(decimal.NewFromInt(60)) || !shares["b"].Equal(decimal.RequireFromString("40.5")) {
		t.Errorf("parseShares = %v", shares)
	}

	if shares, err := parseShares(""); err != nil || shares != nil {
		t.Errorf("parseShares(\"\") = %v, %v", shares, err)
	}
	for _, bad := range []string{"a", "=5", "a=x"} {
		if _, err := parseShares(bad); !errors.Is(err, models.ErrValidation) {
			t.Errorf("parseShares(%q) error = %v, want ErrValidation", bad, err)
		}
	}
}

func TestUnknownCommand(t *testing.T) {
	t.Setenv("STORE", "memory")
	if _, err := runCLI(t, "frobnicate"); err == nil {
		t.Error("expected error for unknown command")
	}
}
