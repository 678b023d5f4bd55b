package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/garnizeh/eduverify/internal/config"
	"github.com/garnizeh/eduverify/internal/db"
)

func main() {
	ctx := context.Background()
	cfg, err := config.LoadConfig("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	src := cfg.Store.DatabasePath
	dst := src + ".bak"

	unlock, err := db.Lock(ctx, src, 5*time.Second)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Backup error: %v\n", err)
		os.Exit(1)
	}
	defer unlock()

	// fold the WAL into the main file so the copy is complete
	database, err := db.New(ctx, db.FileDSN(src))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Backup error: %v\n", err)
		os.Exit(1)
	}
	if _, err := database.Exec(ctx, `PRAGMA wal_checkpoint(TRUNCATE)`); err != nil {
		database.Close()
		fmt.Fprintf(os.Stderr, "Backup error: checkpoint: %v\n", err)
		os.Exit(1)
	}
	database.Close()

	if err := db.CopyFile(src, dst); err != nil {
		fmt.Fprintf(os.Stderr, "Backup error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Database backup completed: %s\n", dst)
}
