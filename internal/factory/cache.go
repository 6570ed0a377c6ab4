package factory

import (
	"context"
	"reflect"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"objectfactory/internal/compile"
	"objectfactory/internal/diagnostic"
)

// Cache holds one factory per target type. Concurrent requests for the
// same target share a single build. A Cache belongs to the runtime that
// created it; nothing is shared between caches.
type Cache struct {
	generator *Generator
	rt        compile.Runtime

	mu        sync.RWMutex
	factories map[reflect.Type]*Generated
	keys      map[reflect.Type]string
	epoch     uint64 // bumped by Invalidate and Reset
	closed    bool

	flight singleflight.Group
}

// NewCache returns an empty cache building with g and binding factories to rt.
func NewCache(g *Generator, rt compile.Runtime) *Cache {
	return &Cache{
		generator: g,
		rt:        rt,
		factories: map[reflect.Type]*Generated{},
		keys:      map[reflect.Type]string{},
	}
}

// FactoryFor returns the factory for target, building it on first use.
// Failed builds are not cached.
func (c *Cache) FactoryFor(target reflect.Type) (*Generated, error) {
	f, key, epoch, err := c.lookup(target)
	if err != nil || f != nil {
		return f, err
	}

	v, err, _ := c.flight.Do(key, func() (any, error) {
		if f, _, _, err := c.lookup(target); err != nil || f != nil {
			return f, err
		}

		f, err := c.generator.Build(target, c.rt)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		defer c.mu.Unlock()

		if c.closed {
			return nil, ErrClosed
		}

		// a build started before an invalidation serves its callers only
		if c.epoch == epoch {
			c.factories[target] = f
		}

		return f, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*Generated), nil
}

// lookup returns the cached factory, or the flight key to build it under.
// Keys change with the epoch so that builds after an invalidation never
// join one that started before it.
func (c *Cache) lookup(target reflect.Type) (*Generated, string, uint64, error) {
	c.mu.RLock()
	f, ok := c.factories[target]
	id, known := c.keys[target]
	epoch := c.epoch
	closed := c.closed
	c.mu.RUnlock()

	switch {
	case closed:
		return nil, "", 0, ErrClosed
	case ok:
		return f, "", epoch, nil
	case known:
		return nil, flightKey(id, epoch), epoch, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if id, known = c.keys[target]; !known {
		id = strconv.Itoa(len(c.keys))
		c.keys[target] = id
	}

	return nil, flightKey(id, c.epoch), c.epoch, nil
}

func flightKey(id string, epoch uint64) string {
	return id + "@" + strconv.FormatUint(epoch, 10)
}

// Invalidate drops the factories of targets so that the next FactoryFor
// rebuilds them from the current metadata. It returns how many were cached.
func (c *Cache) Invalidate(targets ...reflect.Type) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.epoch++

	n := 0

	for _, t := range targets {
		if _, ok := c.factories[t]; ok {
			delete(c.factories, t)
			n++
		}
	}

	return n
}

// Reset drops every cached factory, for changes that can affect any of them
// such as newly enabled converters.
func (c *Cache) Reset() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.epoch++

	n := len(c.factories)
	c.factories = map[reflect.Type]*Generated{}

	return n
}

// Warm builds the factories of targets in parallel. It stops starting new
// builds once one fails or ctx is done.
func (c *Cache) Warm(ctx context.Context, targets ...reflect.Type) error {
	g, ctx := errgroup.WithContext(ctx)

	for _, t := range targets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			_, err := c.FactoryFor(t)

			return err
		})
	}

	return g.Wait()
}

// Diagnostics returns the build diagnostics of a cached factory.
func (c *Cache) Diagnostics(target reflect.Type) (diagnostic.Diagnostics, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, ok := c.factories[target]
	if !ok {
		return diagnostic.Diagnostics{}, false
	}

	return f.Diagnostics(), true
}

// Len returns the number of cached factories.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.factories)
}

// Close drops every factory. Later calls to FactoryFor return ErrClosed.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	c.factories = map[reflect.Type]*Generated{}

	return nil
}
