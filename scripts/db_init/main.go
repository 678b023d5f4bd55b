package main

import (
	"context"
	"fmt"
	"os"
	"time"

	dbfs "github.com/garnizeh/eduverify/db"
	"github.com/garnizeh/eduverify/internal/config"
	"github.com/garnizeh/eduverify/internal/db"
	"github.com/garnizeh/eduverify/internal/repository/sqlite"
)

func main() {
	ctx := context.Background()
	cfg, err := config.LoadConfig("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	path := cfg.Store.DatabasePath

	unlock, err := db.Lock(ctx, path, 5*time.Second)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Lock error: %v\n", err)
		os.Exit(1)
	}
	defer unlock()

	database, err := db.New(ctx, db.FileDSN(path))
	if err != nil {
		fmt.Fprintf(os.Stderr, "DB init error: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	// run migrations and prompt seeds using internal/db.Migrate
	if err := db.Migrate(ctx, database, dbfs.Migrations, dbfs.SeedFiles); err != nil {
		fmt.Fprintf(os.Stderr, "Migration runner error: %v\n", err)
		os.Exit(1)
	}

	d, err := dbfs.Fixture()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Fixture error: %v\n", err)
		os.Exit(1)
	}
	if err := sqlite.New(database, nil).Seed(ctx, d); err != nil {
		fmt.Fprintf(os.Stderr, "Seed error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Database %s initialized successfully.\n", path)
}
