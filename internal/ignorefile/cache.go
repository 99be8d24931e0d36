package ignorefile

import (
	"fmt"
	"os"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Aman-CERP/dropignore/internal/pathinfo"
)

// DefaultCacheSize is the number of loaded ignore files kept in memory.
const DefaultCacheSize = 128

// cacheEntry is a loaded set and the file state it was loaded from.
type cacheEntry struct {
	set      *Set
	lineErrs []*LineError
	modTime  time.Time
	size     int64
}

// Cache keeps compiled sets keyed by ignore file path. An entry is reloaded
// when the file's modification time or size changes.
type Cache struct {
	entries   *lru.Cache[string, *cacheEntry]
	inspector pathinfo.Inspector
	mu        sync.Mutex
}

// NewCache creates a cache holding up to size ignore files.
func NewCache(size int, insp pathinfo.Inspector) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := lru.New[string, *cacheEntry](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create ignore file cache: %w", err)
	}
	return &Cache{
		entries:   entries,
		inspector: insp,
	}, nil
}

// Get returns the set compiled from the ignore file at path, anchored at
// the file's directory.
func (c *Cache) Get(path string) (*Set, []*LineError, error) {
	info, err := os.Stat(path)
	if err != nil {
		c.entries.Remove(path)
		return nil, nil, openError(path, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries.Get(path); ok && e.modTime.Equal(info.ModTime()) && e.size == info.Size() {
		return e.set, e.lineErrs, nil
	}

	set, lineErrs, err := Load(path, "", c.inspector)
	if err != nil {
		return nil, lineErrs, err
	}
	c.entries.Add(path, &cacheEntry{
		set:      set,
		lineErrs: lineErrs,
		modTime:  info.ModTime(),
		size:     info.Size(),
	})
	return set, lineErrs, nil
}

// Len returns the number of cached ignore files.
func (c *Cache) Len() int {
	return c.entries.Len()
}

// Purge drops every cached set.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries.Purge()
}
