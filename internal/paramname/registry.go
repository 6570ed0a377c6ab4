package paramname

import (
	"fmt"
	"reflect"
	"sync"
)

// Registry holds explicitly annotated parameter names.
// Closures created from the same function literal share one entry.
type Registry struct {
	mu    sync.RWMutex
	names map[uintptr][]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[uintptr][]string)}
}

// Annotate records the parameter names of fn.
func (r *Registry) Annotate(fn any, names ...string) error {
	v := reflect.ValueOf(fn)
	if err := checkFunc(v); err != nil {
		return err
	}

	if err := validNames(v, names); err != nil {
		return fmt.Errorf("annotating: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.names[v.Pointer()] = append([]string(nil), names...)

	return nil
}

func (r *Registry) ParameterNames(fn reflect.Value) ([]string, error) {
	if err := checkFunc(fn); err != nil {
		return nil, err
	}

	r.mu.RLock()
	names, ok := r.names[fn.Pointer()]
	r.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}

	return append([]string(nil), names...), nil
}
