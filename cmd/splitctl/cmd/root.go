// Package cmd provides the splitctl commands.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitledger/internal/config"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/rates"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
	"github.com/mmynk/splitledger/pkg/logging"
)

// app holds the state shared by all subcommands of one invocation.
type app struct {
	envFile string
	dbPath  string
	debug   bool

	store  *sqlite.SQLiteStore
	ledger *ledger.Ledger
}

// NewRootCmd builds the splitctl command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "splitctl",
		Short: "Record shared expenses and settle group debts",
		Long: `splitctl manages a group expense ledger stored in SQLite.

It supports:
- Groups and participants
- Expenses split by share or by fixed amount, in any currency
- Balances and a settlement plan in a chosen currency
- Recording payments made between participants

Example:
  splitctl group create Trip
  splitctl participant add <group> Anna
  splitctl expense add <group> --payer Anna --amount 900 --currency SEK --desc Hotel
  splitctl settle <group> --currency SEK`,
		SilenceUsage:       true,
		PersistentPreRunE:  a.open,
		PersistentPostRunE: a.close,
	}

	root.PersistentFlags().StringVar(&a.envFile, "config", "", "config file (default is .env)")
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "SQLite database path (default from DB_PATH)")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		a.groupCmd(),
		a.participantCmd(),
		a.expenseCmd(),
		a.balancesCmd(),
		a.settleCmd(),
		a.payCmd(),
		a.statsCmd(),
		a.rateCmd(),
	)
	return root
}

// Execute runs the CLI. It is called by main.main().
func Execute() error {
	return NewRootCmd().Execute()
}

func (a *app) open(cmd *cobra.Command, args []string) error {
	logLevel := slog.LevelWarn
	if a.debug {
		logLevel = slog.LevelDebug
	}
	logging.SetupWithLevel(logLevel)

	cfg, err := config.Load(a.envFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if a.dbPath != "" {
		cfg.DBPath = a.dbPath
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	slog.Debug("Opening database", "path", cfg.DBPath)

	a.store, err = sqlite.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	provider, err := rates.NewProvider(cfg.Rates, a.store)
	if err != nil {
		a.store.Close()
		return err
	}
	a.ledger = ledger.New(a.store, provider)
	return nil
}

func (a *app) close(cmd *cobra.Command, args []string) error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

// resolveParticipant accepts a participant ID or a name. Active participants
// win over removed ones with the same name.
func (a *app) resolveParticipant(ctx context.Context, groupID, ref string) (string, error) {
	ps, err := a.ledger.ListParticipants(ctx, groupID, true)
	if err != nil {
		return "", err
	}
	var removedMatch string
	for _, p := range ps {
		if p.ID == ref {
			return p.ID, nil
		}
		if strings.EqualFold(p.Name, ref) {
			if p.Active() {
				return p.ID, nil
			}
			removedMatch = p.ID
		}
	}
	if removedMatch != "" {
		return removedMatch, nil
	}
	return "", models.NotFound("participant", ref)
}

// resolveParticipants resolves a comma-separated list of references.
func (a *app) resolveParticipants(ctx context.Context, groupID, refs string) ([]string, error) {
	var ids []string
	for _, ref := range strings.Split(refs, ",") {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}
		id, err := a.resolveParticipant(ctx, groupID, ref)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
