package constructor

import (
	"fmt"
	"reflect"
	"sync"

	"objectfactory/internal/common"
	"objectfactory/internal/paramname"
)

// Set holds the registered function constructors of every target type.
type Set struct {
	mu       sync.RWMutex
	resolver paramname.Resolver
	byTarget map[reflect.Type][]*Constructor
}

// NewSet returns an empty set resolving parameter names with resolver.
func NewSet(resolver paramname.Resolver) *Set {
	return &Set{
		resolver: resolver,
		byTarget: make(map[reflect.Type][]*Constructor),
	}
}

// Register adds fn as a constructor of the type it returns.
func (s *Set) Register(fn any) error {
	c, err := FromFunc(fn, s.resolver)
	if err != nil {
		return fmt.Errorf("registering constructor: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.byTarget[c.Target] = append(s.byTarget[c.Target], c)

	return nil
}

// MustRegister is like Register but panics on error.
func (s *Set) MustRegister(fns ...any) {
	for _, fn := range fns {
		if err := s.Register(fn); err != nil {
			panic(err)
		}
	}
}

// Candidates returns the constructors of target: registered ones in
// registration order, followed by the composite literal when the target
// (or its pointer element) is a struct with exported fields.
func (s *Set) Candidates(target reflect.Type) []*Constructor {
	base := common.Deref(target)

	s.mu.RLock()
	registered := s.byTarget[base]
	out := make([]*Constructor, 0, len(registered)+1)
	out = append(out, registered...)
	s.mu.RUnlock()

	if lit := Literal(base); lit != nil {
		out = append(out, lit)
	}

	return out
}
