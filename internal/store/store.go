// Package store opens the configured Directory Store backend.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	dbfs "github.com/garnizeh/eduverify/db"
	"github.com/garnizeh/eduverify/internal/config"
	"github.com/garnizeh/eduverify/internal/db"
	"github.com/garnizeh/eduverify/internal/directory"
	"github.com/garnizeh/eduverify/internal/repository/sqlite"
	"github.com/garnizeh/eduverify/pkg/models"
	"github.com/garnizeh/eduverify/pkg/repository"
)

// Prompts is the prompt storage available on the sqlite backend.
type Prompts interface {
	repository.SchemaRepo
	repository.TemplateRepo
}

type Handle struct {
	Directory repository.Directory
	// Prompts is nil for the memory backend.
	Prompts   Prompts

	closeFn func() error
}

func (h *Handle) Close() error {
	if h.closeFn == nil {
		return nil
	}
	return h.closeFn()
}

// Open builds the backend named by cfg.Backend. The sqlite backend is
// migrated, and seeded from the fixture when cfg.Seed is set.
func Open(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (*Handle, error) {
	if logger == nil {
		logger = slog.Default()
	}

	switch cfg.Backend {
	case "", config.BackendMemory:
		d, err := fixture(cfg.FixturePath)
		if err != nil {
			return nil, err
		}
		s, err := directory.New(d, directory.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("build directory: %w", err)
		}
		return &Handle{Directory: s}, nil

	case config.BackendSQLite:
		conn, err := db.New(ctx, db.FileDSN(cfg.DatabasePath))
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx, conn, dbfs.Migrations, dbfs.SeedFiles); err != nil {
			conn.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		repo := sqlite.New(conn, logger)
		if cfg.Seed {
			d, err := fixture(cfg.FixturePath)
			if err != nil {
				conn.Close()
				return nil, err
			}
			if err := repo.Seed(ctx, d); err != nil {
				conn.Close()
				return nil, fmt.Errorf("seed: %w", err)
			}
		}
		return &Handle{Directory: repo, Prompts: repo, closeFn: conn.Close}, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

func fixture(path string) (*models.Directory, error) {
	if path == "" {
		return dbfs.Fixture()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixture: %w", err)
	}
	defer f.Close()

	return models.DecodeDirectory(f)
}
