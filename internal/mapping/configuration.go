package mapping

import (
	"fmt"
	"reflect"
	"sync"

	"objectfactory/internal/metadata"
	"objectfactory/primitive"
)

// Configuration stores class maps by type pair. It is the metadata provider
// the factory generator reads from, and is safe for concurrent use.
type Configuration struct {
	mu       sync.RWMutex
	maps     map[metadata.MapperKey]*metadata.ClassMap
	order    []metadata.MapperKey
	builtins primitive.CategoryEnum
}

// NewConfiguration returns an empty configuration.
func NewConfiguration() *Configuration {
	return &Configuration{maps: make(map[metadata.MapperKey]*metadata.ClassMap)}
}

// Register adds cm. A second class map for the same pair is rejected.
func (c *Configuration) Register(cm *metadata.ClassMap) error {
	return c.register([]*metadata.ClassMap{cm}, primitive.CategoryNone)
}

// register adds maps and builtins together: when any pair is already
// known, or repeats within maps, nothing changes.
func (c *Configuration) register(maps []*metadata.ClassMap, builtins primitive.CategoryEnum) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[metadata.MapperKey]bool, len(maps))

	for _, cm := range maps {
		if cm == nil {
			return fmt.Errorf("nil class map")
		}

		key := cm.Key()
		if _, ok := c.maps[key]; ok || seen[key] {
			return fmt.Errorf("class map %s already registered", key)
		}

		seen[key] = true
	}

	for _, cm := range maps {
		key := cm.Key()
		c.maps[key] = cm
		c.order = append(c.order, key)
	}

	c.builtins |= builtins

	return nil
}

// Apply validates mf against types, then registers every class map it
// declares. Nothing is registered when validation fails or when one of its
// pairs is already registered.
func (c *Configuration) Apply(mf *MappingFile, types *Types) error {
	diags := Validate(mf, types)
	if err := diags.Error(); err != nil {
		return err
	}

	builtins, _ := primitive.ParseCategories(mf.Converters.Builtin...)

	maps := make([]*metadata.ClassMap, 0, len(mf.Mappings))

	for i := range mf.Mappings {
		cm, err := buildClassMap(&mf.Mappings[i], types)
		if err != nil {
			return err
		}

		maps = append(maps, cm)
	}

	return c.register(maps, builtins)
}

func buildClassMap(tm *TypeMapping, types *Types) (*metadata.ClassMap, error) {
	a, err := types.Resolve(tm.A)
	if err != nil {
		return nil, err
	}

	b, err := types.Resolve(tm.B)
	if err != nil {
		return nil, err
	}

	direction, err := metadata.ParseDirection(tm.Direction)
	if err != nil {
		return nil, err
	}

	builder := NewClassMap(a, b).Direction(direction)

	for _, fm := range tm.Expanded() {
		d, err := tm.EffectiveDirection(fm)
		if err != nil {
			return nil, err
		}

		builder.field(fm.A, fm.B, d)
	}

	return builder.Build()
}

// ClassMap returns the class map between a and b, in either order.
func (c *Configuration) ClassMap(a, b reflect.Type) (*metadata.ClassMap, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cm, ok := c.maps[metadata.NewMapperKey(a, b)]

	return cm, ok
}

// MappedSourceTypes returns every type with a class map allowing target to
// be produced from it, in registration order.
func (c *Configuration) MappedSourceTypes(target reflect.Type) []reflect.Type {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []reflect.Type

	for _, key := range c.order {
		cm := c.maps[key]
		if other := cm.Other(target); other != nil && cm.Allows(target) {
			out = append(out, other)
		}
	}

	return out
}

// Targets returns every type that can be produced from some other type.
func (c *Configuration) Targets() []reflect.Type {
	c.mu.RLock()
	defer c.mu.RUnlock()

	seen := map[reflect.Type]bool{}

	var out []reflect.Type

	for _, key := range c.order {
		cm := c.maps[key]
		for _, t := range []reflect.Type{cm.BType, cm.AType} {
			if !seen[t] && cm.Allows(t) {
				seen[t] = true
				out = append(out, t)
			}
		}
	}

	return out
}

// ClassMaps returns every class map in registration order.
func (c *Configuration) ClassMaps() []*metadata.ClassMap {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*metadata.ClassMap, len(c.order))
	for i, key := range c.order {
		out[i] = c.maps[key]
	}

	return out
}

// BuiltinConverters returns the built-in conversion categories enabled by applied mapping files.
func (c *Configuration) BuiltinConverters() primitive.CategoryEnum {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.builtins
}
