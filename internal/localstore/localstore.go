package localstore

import (
	"fmt"
	"os"
	"path/filepath"

	"Quackito/internal/model"

	"github.com/pelletier/go-toml/v2"
)

// Cache is the client's offline copy of its duck: the last known snapshot and
// the server-assigned code. Either may be missing.
type Cache struct {
	Code     string          `toml:"code,omitempty"`
	Snapshot *model.Snapshot `toml:"snapshot,omitempty"`
}

// Load reads the cache file. A missing file yields an empty cache.
func Load(path string) (*Cache, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Cache{}, nil
		}
		return nil, fmt.Errorf("read cache: %w", err)
	}
	var c Cache
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse cache: %w", err)
	}
	return &c, nil
}

// Save writes the cache through a temp file so a crash never leaves it half written.
func Save(path string, c *Cache) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace cache: %w", err)
	}
	return nil
}

// Clear deletes the cache file. Clearing a missing cache is not an error.
func Clear(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear cache: %w", err)
	}
	return nil
}
