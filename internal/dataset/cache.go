package dataset

import (
	"sync"

	"supplydash/internal/config"
)

// Cache guarantees at-most-one Load per distinct path for its lifetime.
//
// The dashboard constructs one Cache at startup and injects it where a
// dataset handle is needed; there is no package-level singleton. Concurrent
// first access is safe: one caller wins the load, the rest observe the
// winner's dataset or error.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry

	// loadFn is a test seam; production uses Load.
	loadFn func(path string) (*Dataset, error)
}

type cacheEntry struct {
	once sync.Once
	ds   *Dataset
	err  error
}

func NewCache() *Cache {
	return &Cache{
		entries: make(map[string]*cacheEntry),
		loadFn:  Load,
	}
}

// NewCacheOptions builds a cache whose loads apply the given reader options.
func NewCacheOptions(opt config.Options) *Cache {
	return &Cache{
		entries: make(map[string]*cacheEntry),
		loadFn: func(path string) (*Dataset, error) {
			return LoadOptions(path, opt)
		},
	}
}

// Load returns the dataset for path, reading the file at most once.
// A failed load is also cached: the file will not be re-read on retry.
func (c *Cache) Load(path string) (*Dataset, error) {
	c.mu.Lock()
	e, ok := c.entries[path]
	if !ok {
		e = &cacheEntry{}
		c.entries[path] = e
	}
	c.mu.Unlock()

	e.once.Do(func() {
		e.ds, e.err = c.loadFn(path)
	})
	return e.ds, e.err
}
