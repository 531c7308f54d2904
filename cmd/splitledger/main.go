package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mmynk/splitledger/internal/config"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/service"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/internal/storage/memory"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
	"github.com/mmynk/splitledger/pkg/logging"
)

const usage = `usage: splitledger [-env FILE] <command> [args]

commands:
  demo                                   run the dinner/movie example
  user add NAME [EMAIL]                  register a user
  users                                  list users
  expense add [flags]                    create an expense (see expense add -h)
  expense finalize ID ID=AMOUNT,...      set EXACT amounts or PERCENT values
  expenses [-user ID]                    list expenses
  settle ID                              apply an expense to the ledger
  balance A B                            how much B owes A
  balances USER                          all non-zero balances of USER
  sheet                                  every outstanding debt

environment: LOG_LEVEL, STORE (memory|sqlite), DB_PATH, METRICS

Without STORE, demo runs in memory and every other command reads and writes
the SQLite database at DB_PATH so state carries over between invocations.
`

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		if models.IsRejected(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("splitledger", flag.ContinueOnError)
	envFile := fs.String("env", ".env", "dotenv file to load before reading the environment")
	fs.Usage = func() { fmt.Fprint(fs.Output(), usage) }
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return flag.ErrHelp
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		return err
	}
	logger := logging.Setup(cfg.LogLevel)

	backend := cfg.StoreFor(fs.Arg(0))
	store, err := openStore(backend, cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()
	logger.Debug("Storage initialized", "store", backend, "database", cfg.DBPath)

	m := metrics.New()
	svc := service.NewSplitService(store, m, logger)
	if err := svc.Restore(ctx); err != nil {
		return err
	}

	if cfg.Metrics {
		defer func() {
			if err := m.WriteText(out); err != nil {
				slog.Error("Failed to write metrics", "error", err)
			}
		}()
	}

	cli := &cli{svc: svc, out: out}
	return cli.dispatch(ctx, fs.Args())
}

func openStore(backend, dbPath string) (storage.Store, error) {
	switch backend {
	case config.StoreSQLite:
		return sqlite.New(dbPath)
	default:
		return memory.New(), nil
	}
}
