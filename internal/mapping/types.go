package mapping

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"objectfactory/internal/common"
)

// Types resolves the type names used in mapping files to runtime types.
type Types struct {
	mu    sync.RWMutex
	types map[string]reflect.Type // keyed by fully qualified name
}

// NewTypes returns a registry holding types.
func NewTypes(types ...reflect.Type) *Types {
	t := &Types{types: make(map[string]reflect.Type)}
	t.Add(types...)

	return t
}

// Register adds T to the registry.
func Register[T any](t *Types) {
	t.Add(reflect.TypeFor[T]())
}

// Add registers named types; pointer types register their element.
func (t *Types) Add(types ...reflect.Type) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, rt := range types {
		rt = common.Deref(rt)
		if rt == nil || rt.Name() == "" {
			continue
		}

		t.types[FullName(rt)] = rt
	}
}

// Resolve resolves a type name like:
// - "store.Order" (short)
// - "objectfactory/store.Order" (full)
// - "Order" (name only, when unambiguous).
func (t *Types) Resolve(name string) (reflect.Type, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if name == "" {
		return nil, fmt.Errorf("empty type name")
	}

	// 1) exact match (for fully qualified import path)
	if rt, ok := t.types[name]; ok {
		return rt, nil
	}

	var matches []reflect.Type

	lastDot := strings.LastIndex(name, ".")

	for full, rt := range t.types {
		switch {
		case lastDot < 0:
			// name-only: best-effort match by type name
			if rt.Name() == name {
				matches = append(matches, rt)
			}
		case strings.HasSuffix(full, "/"+name):
			// suffix match (for short forms like "store.Order" vs "objectfactory/store.Order")
			matches = append(matches, rt)
		}
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("type %q not registered", name)
	case 1:
		return matches[0], nil
	default:
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = FullName(m)
		}

		sort.Strings(names)

		return nil, fmt.Errorf("type %q is ambiguous: %s", name, strings.Join(names, ", "))
	}
}

// All returns the registered types ordered by full name.
func (t *Types) All() []reflect.Type {
	t.mu.RLock()
	defer t.mu.RUnlock()

	names := make([]string, 0, len(t.types))
	for n := range t.types {
		names = append(names, n)
	}

	sort.Strings(names)

	out := make([]reflect.Type, len(names))
	for i, n := range names {
		out[i] = t.types[n]
	}

	return out
}

// FullName returns "pkg/path.Name" for named types and the type string otherwise.
func FullName(rt reflect.Type) string {
	if rt.PkgPath() == "" {
		return rt.String()
	}

	return rt.PkgPath() + "." + rt.Name()
}

// ShortName returns "pkg.Name".
func ShortName(rt reflect.Type) string {
	if rt.PkgPath() == "" {
		return rt.String()
	}

	return common.PkgAlias(rt.PkgPath()) + "." + rt.Name()
}
