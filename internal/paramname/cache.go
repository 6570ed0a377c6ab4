package paramname

import (
	"fmt"
	"reflect"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is used when a non-positive size is requested.
const DefaultCacheSize = 256

// Caching memoizes another resolver's answers, keyed by function entry point.
// Failures are not cached.
type Caching struct {
	next  Resolver
	cache *lru.Cache[uintptr, []string]
}

// NewCaching wraps next with an LRU cache of the given size.
func NewCaching(next Resolver, size int) (*Caching, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}

	cache, err := lru.New[uintptr, []string](size)
	if err != nil {
		return nil, fmt.Errorf("creating parameter name cache: %w", err)
	}

	return &Caching{next: next, cache: cache}, nil
}

func (c *Caching) ParameterNames(fn reflect.Value) ([]string, error) {
	if err := checkFunc(fn); err != nil {
		return nil, err
	}

	key := fn.Pointer()
	if names, ok := c.cache.Get(key); ok {
		return append([]string(nil), names...), nil
	}

	names, err := c.next.ParameterNames(fn)
	if err != nil {
		return nil, err
	}

	c.cache.Add(key, append([]string(nil), names...))

	return names, nil
}

// Len returns the number of cached entries.
func (c *Caching) Len() int {
	return c.cache.Len()
}

// Purge drops every cached entry.
func (c *Caching) Purge() {
	c.cache.Purge()
}
