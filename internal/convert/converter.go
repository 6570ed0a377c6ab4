package convert

import (
	"errors"
	"fmt"
	"reflect"

	"objectfactory/primitive"
)

// ErrNoConverter is returned when no converter is registered for a type pair.
var ErrNoConverter = errors.New("no converter")

// Converter converts values of Source into values of Destination.
type Converter interface {
	Source() reflect.Type
	Destination() reflect.Type
	Convert(src reflect.Value) (reflect.Value, error)
}

// Pair is the lookup key of a converter.
type Pair struct {
	Source      reflect.Type
	Destination reflect.Type
}

func (p Pair) String() string {
	return fmt.Sprintf("%s -> %s", p.Source, p.Destination)
}

// typed adapts a plain Go function to the Converter interface.
type typed[S, D any] struct {
	src, dst reflect.Type
	fn       func(S) (D, error)
}

// Func wraps fn as a Converter from S to D.
func Func[S, D any](fn func(S) (D, error)) Converter {
	return &typed[S, D]{
		src: reflect.TypeFor[S](),
		dst: reflect.TypeFor[D](),
		fn:  fn,
	}
}

// Infallible wraps a conversion that cannot fail.
func Infallible[S, D any](fn func(S) D) Converter {
	return Func(func(s S) (D, error) {
		return fn(s), nil
	})
}

func (c *typed[S, D]) Source() reflect.Type      { return c.src }
func (c *typed[S, D]) Destination() reflect.Type { return c.dst }

func (c *typed[S, D]) Convert(src reflect.Value) (reflect.Value, error) {
	s, ok := src.Interface().(S)
	if !ok {
		return reflect.Value{}, fmt.Errorf("converter %s -> %s: unexpected source %s", c.src, c.dst, src.Type())
	}

	d, err := c.fn(s)
	if err != nil {
		return reflect.Value{}, err
	}

	out := reflect.New(c.dst).Elem()
	out.Set(reflect.ValueOf(&d).Elem())

	return out, nil
}

// builtin serves a primitive conversion through the Converter interface.
type builtin struct {
	pair Pair
	fn   primitive.Func
}

func (c *builtin) Source() reflect.Type      { return c.pair.Source }
func (c *builtin) Destination() reflect.Type { return c.pair.Destination }

func (c *builtin) Convert(src reflect.Value) (reflect.Value, error) {
	return c.fn(src)
}
