package cache

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Clear removes every cached page and recreates the empty cache directory.
func (c *HTTPCache) Clear() error {
	if c == nil || strings.TrimSpace(c.Dir) == "" {
		return errors.New("cache dir not configured")
	}
	if err := os.RemoveAll(c.Dir); err != nil {
		return err
	}
	return c.ensureDir()
}

// PurgeOlderThan deletes entries whose SavedAt is older than maxAge and
// reports how many were removed. A missing cache directory is not an error.
func (c *HTTPCache) PurgeOlderThan(maxAge time.Duration) (int, error) {
	if c == nil || maxAge <= 0 {
		return 0, nil
	}
	if _, err := os.Stat(c.Dir); errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	cutoff := time.Now().UTC().Add(-maxAge)
	removed := 0
	err := filepath.WalkDir(c.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".meta.json") {
			return nil
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		var e HTTPEntry
		if err := json.Unmarshal(b, &e); err != nil {
			return nil
		}
		if !e.SavedAt.Before(cutoff) {
			return nil
		}
		removed++
		_ = os.Remove(path)
		_ = os.Remove(strings.TrimSuffix(path, ".meta.json") + ".body")
		return nil
	})
	return removed, err
}
