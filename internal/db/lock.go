package db

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gofrs/flock"
)

// LockPath is the advisory lock file guarding the database at path.
func LockPath(path string) string {
	return path + ".lock"
}

// Lock takes the exclusive advisory lock for the database file at path,
// retrying until timeout elapses. The returned function releases it.
func Lock(ctx context.Context, path string, timeout time.Duration) (func(), error) {
	l := flock.New(LockPath(path))

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	locked, err := l.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil && ctx.Err() == nil {
		return func() {}, fmt.Errorf("acquire lock %s: %w", l.Path(), err)
	}
	if !locked {
		return func() {}, fmt.Errorf("database %s is locked by another process (lock: %s)", path, l.Path())
	}
	return func() { _ = l.Unlock() }, nil
}

// CopyFile copies src to dst, overwriting dst, and syncs dst to disk.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
