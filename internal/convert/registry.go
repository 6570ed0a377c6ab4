package convert

import (
	"fmt"
	"reflect"
	"sync"

	"objectfactory/primitive"
)

// Registry stores converters by type pair. It is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	converters map[Pair]Converter
	builtins   map[Pair]Converter
	categories primitive.CategoryEnum
}

// NewRegistry returns an empty registry with the given built-in categories enabled.
func NewRegistry(categories primitive.CategoryEnum) *Registry {
	return &Registry{
		converters: make(map[Pair]Converter),
		builtins:   make(map[Pair]Converter),
		categories: categories,
	}
}

// Register adds c, replacing any converter previously registered for the same pair.
func (r *Registry) Register(c Converter) error {
	if c == nil || c.Source() == nil || c.Destination() == nil {
		return fmt.Errorf("converter must have both source and destination types")
	}

	pair := Pair{Source: c.Source(), Destination: c.Destination()}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.converters[pair] = c

	return nil
}

// Register is a shorthand for r.Register(Func(fn)).
func Register[S, D any](r *Registry, fn func(S) (D, error)) error {
	return r.Register(Func(fn))
}

// EnableBuiltin adds categories to the set of built-in conversions served by Lookup.
func (r *Registry) EnableBuiltin(categories primitive.CategoryEnum) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.categories |= categories
	// categories only grow, memoized builtins stay valid
}

// Categories returns the enabled built-in categories.
func (r *Registry) Categories() primitive.CategoryEnum {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.categories
}

// Lookup returns the converter for (src, dst). Registered converters win over
// built-in ones; built-in conversions never apply between identical types.
func (r *Registry) Lookup(src, dst reflect.Type) (Converter, bool) {
	if src == nil || dst == nil {
		return nil, false
	}

	pair := Pair{Source: src, Destination: dst}

	r.mu.RLock()
	c, ok := r.converters[pair]
	if !ok {
		c, ok = r.builtins[pair]
	}
	categories := r.categories
	r.mu.RUnlock()

	if ok {
		return c, true
	}

	if src == dst || categories == primitive.CategoryNone {
		return nil, false
	}

	fn, ok := primitive.Lookup(src, dst, categories)
	if !ok {
		return nil, false
	}

	c = &builtin{pair: pair, fn: fn}

	r.mu.Lock()
	r.builtins[pair] = c
	r.mu.Unlock()

	return c, true
}

// Convert converts src into a value of type dst.
func (r *Registry) Convert(src any, dst reflect.Type) (any, error) {
	if src == nil {
		return nil, fmt.Errorf("converting nil to %s: %w", dst, ErrNoConverter)
	}

	v := reflect.ValueOf(src)

	c, ok := r.Lookup(v.Type(), dst)
	if !ok {
		return nil, fmt.Errorf("%s -> %s: %w", v.Type(), dst, ErrNoConverter)
	}

	out, err := c.Convert(v)
	if err != nil {
		return nil, fmt.Errorf("converting %s -> %s: %w", v.Type(), dst, err)
	}

	if !out.IsValid() {
		return reflect.Zero(dst).Interface(), nil
	}

	return out.Interface(), nil
}

// Pairs returns the explicitly registered pairs.
func (r *Registry) Pairs() []Pair {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pairs := make([]Pair, 0, len(r.converters))
	for p := range r.converters {
		pairs = append(pairs, p)
	}

	return pairs
}
