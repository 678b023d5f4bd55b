package main

import (
	"context"
	"errors"
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
	dst := cfg.Store.DatabasePath
	src := dst + ".bak"

	unlock, err := db.Lock(ctx, dst, 5*time.Second)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Restore error: %v\n", err)
		os.Exit(1)
	}
	defer unlock()

	if err := db.CopyFile(src, dst); err != nil {
		fmt.Fprintf(os.Stderr, "Restore error: %v\n", err)
		os.Exit(1)
	}
	// stale WAL pages belong to the replaced database
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(dst + suffix); err != nil && !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "Restore error: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("Database restore completed from %s\n", src)
}
