// Package cache keeps the result sets of previous searches in a bounded,
// file-backed store.
//
// Entries are keyed by the exact keyword and the full options value. The
// store holds at most Capacity entries; when an insert overflows it, the
// first entry with the lowest hit count is evicted. The whole collection is
// rewritten on every update under an inter-process file lock, so a CLI
// search and a running server can share one cache file. A missing, unreadable
// or corrupt file reads as an empty cache.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/dshills/filescout-mcp/pkg/types"
)

// DefaultCapacity is the maximum number of cached searches
const DefaultCapacity = 50

// Entry is one cached search
type Entry struct {
	Keyword string              `json:"name"`
	Results []string            `json:"result"`
	Hit     uint32              `json:"hit"`
	Options types.SearchOptions `json:"search_options"`
}

func (e Entry) matches(keyword string, opts types.SearchOptions) bool {
	return e.Keyword == keyword && e.Options == opts
}

// Cache is the file-backed result cache
type Cache struct {
	path     string
	capacity int
	lock     *fileLock
	mu       sync.Mutex // serialises access within the process
}

// Open returns a cache stored at path. The file is created lazily on the
// first update.
func Open(path string, capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		path:     path,
		capacity: capacity,
		lock:     newFileLock(path),
	}
}

// Path returns the cache file location
func (c *Cache) Path() string {
	return c.path
}

// Capacity returns the maximum number of entries
func (c *Cache) Capacity() int {
	return c.capacity
}

// Lookup returns the cached result paths for keyword and opts
func (c *Cache) Lookup(keyword string, opts types.SearchOptions) ([]string, bool, error) {
	var (
		results []string
		found   bool
	)
	err := c.shared(func(entries []Entry) {
		for _, e := range entries {
			if e.matches(keyword, opts) {
				results = append([]string(nil), e.Results...)
				found = true
				return
			}
		}
	})
	return results, found, err
}

// Update records a completed search. An existing entry has its hit count
// incremented and its results replaced; otherwise a new entry with one hit
// is appended and, if that overflows capacity, the first entry with the
// lowest hit count is evicted.
func (c *Cache) Update(keyword string, opts types.SearchOptions, results []string) error {
	return c.exclusive(func(entries []Entry) []Entry {
		stored := append([]string(nil), results...)
		for i := range entries {
			if entries[i].matches(keyword, opts) {
				entries[i].Hit++
				entries[i].Results = stored
				return entries
			}
		}

		entries = append(entries, Entry{
			Keyword: keyword,
			Results: stored,
			Hit:     1,
			Options: opts,
		})
		for len(entries) > c.capacity {
			entries = evictLeastHit(entries)
		}
		return entries
	})
}

// Entries returns a snapshot of all cached searches in store order
func (c *Cache) Entries() ([]Entry, error) {
	var out []Entry
	err := c.shared(func(entries []Entry) {
		out = entries
	})
	return out, err
}

// Clear removes every entry
func (c *Cache) Clear() error {
	return c.exclusive(func([]Entry) []Entry {
		return []Entry{}
	})
}

// evictLeastHit removes the first entry holding the minimum hit count
func evictLeastHit(entries []Entry) []Entry {
	if len(entries) == 0 {
		return entries
	}
	victim := 0
	for i := 1; i < len(entries); i++ {
		if entries[i].Hit < entries[victim].Hit {
			victim = i
		}
	}
	return append(entries[:victim], entries[victim+1:]...)
}

func (c *Cache) shared(fn func([]Entry)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lock.withShared(func() error {
		fn(c.read())
		return nil
	})
}

func (c *Cache) exclusive(fn func([]Entry) []Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lock.withExclusive(func() error {
		entries := fn(c.read())
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode cache: %w", err)
		}
		return atomicWrite(c.path, data)
	})
}

// read loads the stored entries; any read or decode failure yields an empty
// collection
func (c *Cache) read() []Entry {
	data, err := os.ReadFile(c.path)
	if err != nil || len(data) == 0 {
		return []Entry{}
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return []Entry{}
	}
	return entries
}
