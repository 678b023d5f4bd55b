// Package cli implements eduverifyctl, the admin CLI over the sqlite store.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/garnizeh/eduverify/internal/config"
	"github.com/garnizeh/eduverify/internal/store"
)

type options struct {
	configPath string
	dbPath     string
	jsonOut    bool
	verbose    bool
}

// NewRootCmd builds the command tree. Each call returns independent flag
// state.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "eduverifyctl",
		Short:        "Admin CLI for the eduverify directory",
		SilenceUsage: true, // don't print usage on operational errors
		Long: `eduverifyctl searches candidates, records verifications and seeds the
sqlite directory used by the eduverify server.`,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config YAML file")
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "Database path (overrides config)")
	root.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "Print JSON instead of tables")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log to stderr")

	root.AddCommand(
		newSeedCmd(opts),
		newSearchCmd(opts),
		newVerifyCmd(opts),
		newPendingCmd(opts),
		newSuggestCmd(opts),
	)
	return root
}

// Execute is called by main.go.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (o *options) logger() *slog.Logger {
	if !o.verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func (o *options) config() (*config.Config, error) {
	cfg, err := config.LoadConfig(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("cannot load config: %w", err)
	}
	cfg.Store.Backend = config.BackendSQLite
	if o.dbPath != "" {
		cfg.Store.DatabasePath = o.dbPath
	}
	return cfg, nil
}

// open returns the sqlite store. Seeding is left to the seed command.
func (o *options) open(ctx context.Context) (*config.Config, *store.Handle, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, nil, err
	}
	sc := cfg.Store
	sc.Seed = false
	h, err := store.Open(ctx, sc, o.logger())
	if err != nil {
		return nil, nil, fmt.Errorf("open store %s: %w", sc.DatabasePath, err)
	}
	return cfg, h, nil
}
