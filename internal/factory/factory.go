package factory

import (
	"fmt"
	"reflect"

	"objectfactory/internal/compile"
	"objectfactory/internal/diagnostic"
)

// Factory creates values of one target type from any supported source value.
type Factory interface {
	Create(source any) (any, error)
	Target() reflect.Type
}

// Generated is a built factory. It holds no mutable state.
type Generated struct {
	target  reflect.Type
	call    compile.Callable
	rt      compile.Runtime
	program string
	sources []reflect.Type
	diags   diagnostic.Diagnostics
}

var _ Factory = (*Generated)(nil)

// Create runs the branch matching the runtime type of source.
func (g *Generated) Create(source any) (any, error) {
	if source == nil {
		return nil, fmt.Errorf("creating %s: %w: nil source", g.target, ErrInvalidArgument)
	}

	out, err := g.call(g.rt, source)

	switch {
	case err == nil:
		return out, nil
	case err == compile.ErrNullInput:
		return nil, fmt.Errorf("creating %s: %w: nil %T", g.target, ErrInvalidArgument, source)
	case err == compile.ErrNoBranch:
		return nil, &UnsupportedSourceError{Target: g.target, Source: reflect.TypeOf(source)}
	default:
		return nil, fmt.Errorf("creating %s from %T: %w", g.target, source, err)
	}
}

// Target returns the type the factory creates.
func (g *Generated) Target() reflect.Type {
	return g.target
}

// Program returns the factory program rendered as Go source.
func (g *Generated) Program() string {
	return g.program
}

// Sources returns the source types accepted, in branch order.
func (g *Generated) Sources() []reflect.Type {
	return append([]reflect.Type(nil), g.sources...)
}

// Diagnostics returns what was reported while building the factory.
func (g *Generated) Diagnostics() diagnostic.Diagnostics {
	return g.diags
}
