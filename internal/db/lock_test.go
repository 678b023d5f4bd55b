package db_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/garnizeh/eduverify/internal/db"
)

func TestLock_Exclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eduverify.db")
	ctx := context.Background()

	unlock, err := db.Lock(ctx, path, time.Second)
	if err != nil {
		t.Fatalf("first lock: %v", err)
	}

	if _, err := db.Lock(ctx, path, 300*time.Millisecond); err == nil {
		t.Fatalf("expected second lock to fail while held")
	}

	unlock()
	unlock2, err := db.Lock(ctx, path, time.Second)
	if err != nil {
		t.Fatalf("lock after release: %v", err)
	}
	unlock2()
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.db")
	dst := filepath.Join(dir, "b.db")
	if err := os.WriteFile(src, []byte("payload"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(dst, []byte("old contents that are longer"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := db.CopyFile(src, dst); err != nil {
		t.Fatalf("CopyFile: %v", err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "payload" {
		t.Fatalf("unexpected copy %q", got)
	}

	if err := db.CopyFile(filepath.Join(dir, "missing"), dst); err == nil {
		t.Fatalf("expected error for missing source")
	}
}
