package job

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"quranreel/logger"
)

// SweepScratch removes job directories under root older than maxAge,
// skipping any job active reports as still running. It returns the
// number of directories removed.
func SweepScratch(root string, maxAge time.Duration, active func(id string) bool) (int, error) {
	entries, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if active != nil && active(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		if err := os.RemoveAll(dir); err != nil {
			logger.Errorf("Failed to remove stale scratch directory %s: %v", dir, err)
			continue
		}
		removed++
	}
	if removed > 0 {
		logger.Infof("Removed %d stale scratch directories from %s", removed, root)
	}
	return removed, nil
}

// StartCleanupRoutine runs fn every interval until ctx is done.
func StartCleanupRoutine(ctx context.Context, interval time.Duration, fn func()) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
}
