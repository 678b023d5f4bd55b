package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	dbfs "github.com/garnizeh/eduverify/db"
	"github.com/garnizeh/eduverify/internal/db"
	"github.com/garnizeh/eduverify/internal/store"
)

func newSeedCmd(opts *options) *cobra.Command {
	var fixture string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Migrate the database and load a directory fixture",
		Long: `Seed applies pending migrations and inserts the users, profiles, projects
and jobs of the fixture. Existing rows are left untouched, so seeding twice
keeps verifications recorded in between.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			if fixture != "" {
				if _, err := os.Stat(fixture); err != nil {
					return fmt.Errorf("fixture: %w", err)
				}
				cfg.Store.FixturePath = fixture
			}
			cfg.Store.Seed = true

			unlock, err := db.Lock(cmd.Context(), cfg.Store.DatabasePath, 5*time.Second)
			if err != nil {
				return err
			}
			defer unlock()

			h, err := store.Open(cmd.Context(), cfg.Store, opts.logger())
			if err != nil {
				return err
			}
			defer h.Close()

			source := cfg.Store.FixturePath
			if source == "" {
				source = "embedded " + dbfs.DirectoryFixture
			}
			profiles, err := h.Directory.ListProfiles(cmd.Context())
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return printJSON(cmd.OutOrStdout(), map[string]any{"database": cfg.Store.DatabasePath, "fixture": source, "profiles": len(profiles)})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %s from %s (%d profiles)\n", cfg.Store.DatabasePath, source, len(profiles))
			return nil
		},
	}
	cmd.Flags().StringVar(&fixture, "fixture", "", "Directory JSON to load instead of the embedded demo data")
	return cmd
}
