// Package assets handles model asset loading and caching.
package assets

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Loader reads raw asset bytes by path. Paths are relative to the model
// bundle root, with forward slashes regardless of platform.
type Loader interface {
	Read(path string) ([]byte, error)
}

// Dir loads assets from a directory on disk.
type Dir struct {
	root  string
	cache *Cache
}

// NewDir creates a loader rooted at the given directory.
func NewDir(root string) *Dir {
	return &Dir{
		root:  root,
		cache: NewCache(),
	}
}

// Read loads a file relative to the loader's root.
func (d *Dir) Read(path string) ([]byte, error) {
	if data, ok := d.cache.Get(path); ok {
		return data, nil
	}

	full := filepath.Join(d.root, filepath.FromSlash(path))
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("reading asset %s: %w", path, err)
	}

	d.cache.Set(path, data)
	return data, nil
}

// Clear drops all cached assets.
func (d *Dir) Clear() {
	d.cache.Clear()
}

// Mem loads assets from an in-memory map. Useful in tests.
type Mem map[string][]byte

// Read returns the bytes stored under path.
func (m Mem) Read(path string) ([]byte, error) {
	data, ok := m[path]
	if !ok {
		return nil, fmt.Errorf("asset not found: %s", path)
	}
	return data, nil
}

// Cache is a simple in-memory cache for loaded assets.
type Cache struct {
	data map[string][]byte
	mu   sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string][]byte),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
