package summarize

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Cache is an on-disk LLM response cache keyed by page id + version (plus
// persona and context, which change the output). Entries expire after a TTL.
// The cache is an optimization only: every failure path degrades to a miss.
type Cache struct {
	dir    string
	ttl    time.Duration
	logger *slog.Logger
}

// cacheEntry is the stored format of one cached summary.
type cacheEntry struct {
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}

// NewCache creates a cache under dir with the given TTL.
// A nil *Cache is valid and always misses.
func NewCache(dir string, ttl time.Duration, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{dir: dir, ttl: ttl, logger: logger}
}

// Get returns the cached summary for key, if present and fresh.
func (c *Cache) Get(key string) (string, bool) {
	if c == nil {
		return "", false
	}

	data, err := os.ReadFile(c.path(key))
	if err != nil {
		return "", false
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		c.logger.Debug("Discarding unreadable cache entry", "key", key, "error", err)
		return "", false
	}

	if time.Since(entry.CreatedAt) > c.ttl {
		// Expired entries are removed lazily on access.
		_ = os.Remove(c.path(key))
		return "", false
	}

	return entry.Summary, true
}

// Put stores a summary under key. Write failures are logged and ignored.
func (c *Cache) Put(key, summary string) {
	if c == nil {
		return
	}

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		c.logger.Debug("Cache directory unavailable", "error", err)
		return
	}

	entry := cacheEntry{Summary: summary, CreatedAt: time.Now()}
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}

	if err := os.WriteFile(c.path(key), data, 0644); err != nil {
		c.logger.Debug("Cache write failed", "key", key, "error", err)
	}
}

// path maps a key to a filename, hashing to stay filesystem-safe.
func (c *Cache) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:16])+".json")
}
