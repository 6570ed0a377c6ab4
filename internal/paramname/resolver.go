package paramname

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"strings"
)

// ErrNotFound is returned when a resolver has no names for a function.
var ErrNotFound = errors.New("parameter names not found")

// Resolver returns the parameter names of a function value, in order.
type Resolver interface {
	ParameterNames(fn reflect.Value) ([]string, error)
}

// ResolverFunc adapts a plain function to Resolver.
type ResolverFunc func(fn reflect.Value) ([]string, error)

func (f ResolverFunc) ParameterNames(fn reflect.Value) ([]string, error) {
	return f(fn)
}

// Adaptive tries each resolver in turn and returns the first answer.
type Adaptive []Resolver

// NewAdaptive chains resolvers, skipping nil ones.
func NewAdaptive(resolvers ...Resolver) Adaptive {
	chain := make(Adaptive, 0, len(resolvers))

	for _, r := range resolvers {
		if r != nil {
			chain = append(chain, r)
		}
	}

	return chain
}

func (a Adaptive) ParameterNames(fn reflect.Value) ([]string, error) {
	if err := checkFunc(fn); err != nil {
		return nil, err
	}

	var errs []error

	for _, r := range a {
		names, err := r.ParameterNames(fn)
		if err == nil {
			return names, nil
		}

		if !errors.Is(err, ErrNotFound) {
			errs = append(errs, err)
		}
	}

	return nil, fmt.Errorf("%s: %w", FuncName(fn), errors.Join(append([]error{ErrNotFound}, errs...)...))
}

// FuncName returns the fully qualified name of the function behind fn,
// such as "objectfactory/warehouse.NewCustomer".
func FuncName(fn reflect.Value) string {
	if fn.Kind() != reflect.Func || fn.IsNil() {
		return "<nil>"
	}

	f := runtime.FuncForPC(fn.Pointer())
	if f == nil {
		return "<unknown>"
	}

	return f.Name()
}

// SplitFuncName splits a runtime function name such as "path/to/pkg.Func"
// into its package path and identifier.
// Methods, closures and generic instances report ok == false.
func SplitFuncName(name string) (pkgPath, ident string, ok bool) {
	lastSlash := strings.LastIndex(name, "/")

	dot := strings.Index(name[lastSlash+1:], ".")
	if dot < 0 {
		return "", "", false
	}

	pkgPath = name[:lastSlash+1+dot]
	ident = name[lastSlash+1+dot+1:]

	if ident == "" || strings.ContainsAny(ident, ".[]()*") {
		return "", "", false
	}

	return pkgPath, ident, true
}

func checkFunc(fn reflect.Value) error {
	if !fn.IsValid() || fn.Kind() != reflect.Func {
		return fmt.Errorf("not a function: %v", fn)
	}

	if fn.IsNil() {
		return errors.New("nil function")
	}

	return nil
}

// validNames rejects missing, blank and duplicate names.
func validNames(fn reflect.Value, names []string) error {
	if len(names) != fn.Type().NumIn() {
		return fmt.Errorf("%s takes %d parameters, got %d names", FuncName(fn), fn.Type().NumIn(), len(names))
	}

	seen := make(map[string]struct{}, len(names))

	for _, n := range names {
		if n == "" || n == "_" {
			return fmt.Errorf("%s: unnamed parameter", FuncName(fn))
		}

		if _, dup := seen[n]; dup {
			return fmt.Errorf("%s: duplicate parameter name %q", FuncName(fn), n)
		}

		seen[n] = struct{}{}
	}

	return nil
}
