package fs

import (
	"context"
	"fmt"
	"os"
)

// renameWithRetry moves oldPath to newPath, retrying transient failures.
// It never replaces an existing newPath; that case wraps os.ErrExist.

func renameWithRetry(ctx context.Context, oldPath, newPath string) error {
	return retry(ctx, "rename", func() error {
		if _, err := os.Lstat(newPath); err == nil {
			return fmt.Errorf("%s: %w", newPath, os.ErrExist)
		}
		return os.Rename(oldPath, newPath)
	})
}
