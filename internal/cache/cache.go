package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
)

// Cache memoizes answer strings keyed on the exact (document, question)
// pair. Bounded with least-recently-used eviction; only successful results
// are stored, so a transient failure never sticks. Concurrent calls for the
// same key share one computation.
type Cache struct {
	mu         sync.Mutex
	entries    map[string]string
	order      []string // least recently used first
	inflight   map[string]*inflight
	maxEntries int
	disabled   bool
}

type inflight struct {
	done chan struct{}
	val  string
	err  error
}

type Config struct {
	Disabled   bool
	MaxEntries int
}

func New(cfg Config) *Cache {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 128
	}
	return &Cache{
		entries:    make(map[string]string, cfg.MaxEntries),
		inflight:   make(map[string]*inflight),
		maxEntries: cfg.MaxEntries,
		disabled:   cfg.Disabled,
	}
}

// Key hashes the document name and question. No normalization: the pair is
// case- and whitespace-sensitive.
func Key(documentName, question string) string {
	h := sha256.New()
	_, _ = h.Write([]byte(documentName))
	_, _ = h.Write([]byte{0}) // separator
	_, _ = h.Write([]byte(question))
	return hex.EncodeToString(h.Sum(nil))
}

// Do returns the cached value for key, or runs fn exactly once to compute
// it. Errors are returned but never cached. Concurrent callers with the same
// key block on the first computation instead of duplicating it.
func (c *Cache) Do(key string, fn func() (string, error)) (string, error) {
	if c.disabled {
		return fn()
	}

	c.mu.Lock()
	if val, ok := c.entries[key]; ok {
		c.touch(key)
		c.mu.Unlock()
		return val, nil
	}
	if fl, ok := c.inflight[key]; ok {
		c.mu.Unlock()
		<-fl.done
		return fl.val, fl.err
	}
	fl := &inflight{done: make(chan struct{})}
	c.inflight[key] = fl
	c.mu.Unlock()

	fl.val, fl.err = fn()
	close(fl.done)

	c.mu.Lock()
	delete(c.inflight, key)
	if fl.err == nil {
		c.put(key, fl.val)
	}
	c.mu.Unlock()
	return fl.val, fl.err
}

// Get looks up a cached value without computing.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	val, ok := c.entries[key]
	if ok {
		c.touch(key)
	}
	return val, ok
}

// Len returns the current number of entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// put stores a value, evicting the least recently used entry at capacity.
// Must be called with mu held.
func (c *Cache) put(key, val string) {
	if _, exists := c.entries[key]; exists {
		c.entries[key] = val
		c.touch(key)
		return
	}
	for len(c.entries) >= c.maxEntries && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[key] = val
	c.order = append(c.order, key)
}

// touch moves key to the most recently used position. Must be called with
// mu held.
func (c *Cache) touch(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			c.order = append(c.order, key)
			return
		}
	}
}
