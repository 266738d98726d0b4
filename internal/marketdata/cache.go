package marketdata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Category buckets cached entries by how quickly they go stale.
type Category string

const (
	CategoryPrices       Category = "prices"
	CategoryFundamentals Category = "fundamentals"
	CategoryNews         Category = "news"
	CategoryInsider      Category = "insider"
)

// ttl returns the staleness window for a category. Unknown categories get
// the shortest window so nothing lingers by accident.
func (c Category) ttl() time.Duration {
	switch c {
	case CategoryPrices:
		return 5 * time.Minute
	case CategoryFundamentals:
		return 12 * time.Hour
	case CategoryNews, CategoryInsider:
		return 24 * time.Hour
	default:
		return 5 * time.Minute
	}
}

type entry struct {
	FetchedAt time.Time       `json:"fetched_at"`
	Data      json.RawMessage `json:"data"`
}

// Cache is a read-through TTL cache persisted as a single JSON file.
// An expired entry is simply a miss; the caller fetches fresh and calls
// Set. Instances are constructor-injected, never shared globals.
type Cache struct {
	path    string
	mu      sync.RWMutex
	entries map[string]entry
}

// NewCache creates a cache persisting to path.
func NewCache(path string) *Cache {
	return &Cache{
		path:    path,
		entries: make(map[string]entry),
	}
}

// Load reads the persisted entries. A missing file is an empty cache.
func (c *Cache) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read cache file: %w", err)
	}

	entries := make(map[string]entry)
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to parse cache file: %w", err)
	}

	c.entries = entries
	return nil
}

// Save writes the entries to disk atomically.
func (c *Cache) Save() error {
	c.mu.RLock()
	data, err := json.MarshalIndent(c.entries, "", "  ")
	c.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}

	if dir := filepath.Dir(c.path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	tempFile := c.path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp cache file: %w", err)
	}
	if err := os.Rename(tempFile, c.path); err != nil {
		return fmt.Errorf("failed to move cache file: %w", err)
	}
	return nil
}

// Get unmarshals a fresh entry into out and reports whether it was found
// and within its category's staleness window.
func (c *Cache) Get(category Category, key string, out interface{}) bool {
	c.mu.RLock()
	e, ok := c.entries[cacheKey(category, key)]
	c.mu.RUnlock()

	if !ok || time.Since(e.FetchedAt) > category.ttl() {
		return false
	}
	if err := json.Unmarshal(e.Data, out); err != nil {
		return false
	}
	return true
}

// Set stores a value with the current time as its fetch time.
func (c *Cache) Set(category Category, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[cacheKey(category, key)] = entry{
		FetchedAt: time.Now(),
		Data:      data,
	}
	return nil
}

// Len returns the number of entries, fresh or stale.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

func cacheKey(category Category, key string) string {
	return string(category) + "/" + key
}
