package constructor

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"objectfactory/internal/paramname"
)

var errorType = reflect.TypeFor[error]()

// Constructor is one way of creating a Target value from positional arguments.
type Constructor struct {
	Target     reflect.Type
	Name       string
	ParamNames []string
	ParamTypes []reflect.Type

	fn       reflect.Value // zero for composite literals
	indirect bool          // fn returns *Target
	fallible bool          // fn returns a trailing error
	fields   []int         // field indices for composite literals
}

// FromFunc describes fn as a constructor. fn must return T, *T, (T, error)
// or (*T, error); the target is T. Parameter names come from resolver.
func FromFunc(fn any, resolver paramname.Resolver) (*Constructor, error) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return nil, fmt.Errorf("constructor must be a non-nil function, got %T", fn)
	}

	ft := v.Type()
	if ft.IsVariadic() {
		return nil, fmt.Errorf("%s: variadic constructors are not supported", paramname.FuncName(v))
	}

	c := &Constructor{fn: v, Name: paramname.FuncName(v)}

	switch {
	case ft.NumOut() == 1:
	case ft.NumOut() == 2 && ft.Out(1) == errorType:
		c.fallible = true
	default:
		return nil, fmt.Errorf("%s: constructor must return T, *T or add a trailing error", c.Name)
	}

	c.Target = ft.Out(0)
	if c.Target.Kind() == reflect.Ptr && c.Target.Elem().Kind() == reflect.Struct {
		c.Target = c.Target.Elem()
		c.indirect = true
	}

	names, err := resolver.ParameterNames(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.Name, err)
	}

	if len(names) != ft.NumIn() {
		return nil, fmt.Errorf("%s: %d parameters but %d names", c.Name, ft.NumIn(), len(names))
	}

	c.ParamNames = names
	c.ParamTypes = make([]reflect.Type, ft.NumIn())

	for i := range c.ParamTypes {
		c.ParamTypes[i] = ft.In(i)
	}

	return c, nil
}

// Literal describes the composite literal of struct t: one parameter per
// exported field, named after the field. It returns nil when t has no
// exported fields.
func Literal(t reflect.Type) *Constructor {
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}

	c := &Constructor{Target: t, Name: t.String() + "{}"}

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}

		c.ParamNames = append(c.ParamNames, f.Name)
		c.ParamTypes = append(c.ParamTypes, f.Type)
		c.fields = append(c.fields, i)
	}

	if len(c.fields) == 0 {
		return nil
	}

	return c
}

// IsLiteral reports whether c is a composite literal constructor.
func (c *Constructor) IsLiteral() bool {
	return !c.fn.IsValid()
}

// Arity returns the number of parameters.
func (c *Constructor) Arity() int {
	return len(c.ParamTypes)
}

// Invoke calls the constructor. The result always has type Target; a nil
// pointer returned without an error is reported as an error.
func (c *Constructor) Invoke(args []reflect.Value) (reflect.Value, error) {
	if len(args) != len(c.ParamTypes) {
		return reflect.Value{}, fmt.Errorf("%s: expected %d arguments, got %d", c.Name, len(c.ParamTypes), len(args))
	}

	if c.IsLiteral() {
		out := reflect.New(c.Target).Elem()
		for i, idx := range c.fields {
			if args[i].IsValid() {
				out.Field(idx).Set(args[i])
			}
		}

		return out, nil
	}

	in := make([]reflect.Value, len(args))
	for i, a := range args {
		if !a.IsValid() {
			a = reflect.Zero(c.ParamTypes[i])
		}

		in[i] = a
	}

	out := c.fn.Call(in)

	if c.fallible && !out[1].IsNil() {
		return reflect.Value{}, out[1].Interface().(error)
	}

	result := out[0]
	if c.indirect {
		if result.IsNil() {
			return reflect.Value{}, errors.New(c.Name + " returned nil")
		}

		result = result.Elem()
	}

	return result, nil
}

// Qualified splits the constructor name into import path and identifier.
// For composite literals the identifier is the type name. ok is false for
// closures and methods, which cannot be referenced by name.
func (c *Constructor) Qualified() (pkgPath, ident string, ok bool) {
	if c.IsLiteral() {
		return c.Target.PkgPath(), c.Target.Name(), c.Target.Name() != ""
	}

	return paramname.SplitFuncName(c.Name)
}

// Fallible reports whether the constructor can return an error.
func (c *Constructor) Fallible() bool {
	return c.fallible
}

// String returns "Name(p1 T1, p2 T2)".
func (c *Constructor) String() string {
	params := make([]string, len(c.ParamNames))
	for i, n := range c.ParamNames {
		params[i] = n + " " + c.ParamTypes[i].String()
	}

	return c.Name + "(" + strings.Join(params, ", ") + ")"
}
