package compile

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"objectfactory/internal/program"
)

var (
	// ErrInvalidProgram is wrapped by every compile failure.
	ErrInvalidProgram = errors.New("invalid program")
	// ErrNullInput is returned by a callable given a nil source.
	ErrNullInput = errors.New("null input")
	// ErrNoBranch is returned by the fallback of a callable.
	ErrNoBranch = errors.New("no branch accepts the source")
)

// Callable creates a target value from source.
type Callable func(rt Runtime, source any) (any, error)

// Runtime maps values the compiled program cannot build itself.
type Runtime interface {
	Map(src any, dst reflect.Type) (any, error)
}

// RuntimeFunc adapts a function to Runtime.
type RuntimeFunc func(src any, dst reflect.Type) (any, error)

func (f RuntimeFunc) Map(src any, dst reflect.Type) (any, error) {
	return f(src, dst)
}

// Backend compiles programs and releases what it kept while compiling them.
type Backend interface {
	Compile(p *program.Program) (Callable, error)
	Release(p *program.Program)
}

// Error lists every structural problem found in one program.
type Error struct {
	Target   reflect.Type
	Problems []error
}

func (e *Error) Error() string {
	msgs := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		msgs[i] = p.Error()
	}

	return fmt.Sprintf("invalid program for %s: %s", e.Target, strings.Join(msgs, "; "))
}

func (e *Error) Unwrap() error {
	return ErrInvalidProgram
}
