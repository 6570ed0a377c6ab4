package metadata

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// step is a single resolved segment of a property path.
type step struct {
	name     string
	index    int
	deref    bool // dereference a pointer before reading the field
	exported bool
}

// Property is a named, typed access path on a struct type.
type Property struct {
	// Owner is the struct type the path starts from.
	Owner reflect.Type
	// Expression is the dotted path as written, e.g. "Address.Street".
	Expression string
	// Name is the path with separators removed; it is matched against constructor parameters.
	Name string
	// Type is the type of the leaf value.
	Type reflect.Type

	steps []step
}

// NewProperty resolves expr against owner. Pointers between segments are
// dereferenced automatically; the owner itself may be a pointer to a struct.
func NewProperty(owner reflect.Type, expr string) (Property, error) {
	if owner == nil {
		return Property{}, errors.New("nil owner type")
	}

	if expr == "" {
		return Property{}, errors.New("empty property path")
	}

	current := owner
	deref := false

	for current.Kind() == reflect.Ptr {
		current = current.Elem()
		deref = true
	}

	segments := strings.Split(expr, ".")
	steps := make([]step, 0, len(segments))

	for i, seg := range segments {
		if seg == "" {
			return Property{}, fmt.Errorf("invalid path %q: empty segment", expr)
		}

		if i > 0 {
			deref = false

			for current.Kind() == reflect.Ptr {
				current = current.Elem()
				deref = true
			}
		}

		if current.Kind() != reflect.Struct {
			return Property{}, fmt.Errorf("invalid path %q: %s is not a struct", expr, current)
		}

		field, ok := current.FieldByName(seg)
		if !ok || len(field.Index) != 1 {
			return Property{}, fmt.Errorf("invalid path %q: %s has no field %q", expr, current, seg)
		}

		steps = append(steps, step{
			name:     seg,
			index:    field.Index[0],
			deref:    deref,
			exported: field.IsExported(),
		})
		current = field.Type
	}

	return Property{
		Owner:      owner,
		Expression: expr,
		Name:       strings.ReplaceAll(expr, ".", ""),
		Type:       current,
		steps:      steps,
	}, nil
}

// MustProperty is like NewProperty but panics on error. Intended for tests and static setup.
func MustProperty(owner reflect.Type, expr string) Property {
	p, err := NewProperty(owner, expr)
	if err != nil {
		panic(err)
	}

	return p
}

// WithType returns a copy of p whose leaf type is t.
func (p Property) WithType(t reflect.Type) Property {
	p.Type = t
	return p
}

// IsZero reports whether p was never resolved.
func (p Property) IsZero() bool {
	return p.Owner == nil && p.Expression == ""
}

// Exported reports whether every segment of the path is an exported field.
func (p Property) Exported() bool {
	for _, s := range p.steps {
		if !s.exported {
			return false
		}
	}

	return len(p.steps) > 0
}

// Nullable reports whether reading p can yield "no value": either a pointer
// on the way is nil, or the leaf itself is a nil-able kind.
func (p Property) Nullable() bool {
	for i, s := range p.steps {
		// the first deref belongs to the owner itself, which is checked by the caller
		if i > 0 && s.deref {
			return true
		}
	}

	return isNilable(p.Type)
}

// NilChecks returns the path prefixes that must be non-nil for p to yield
// a value, shortest first. The whole expression is last when the leaf is nilable.
func (p Property) NilChecks() []string {
	var out []string

	for i, s := range p.steps {
		if i > 0 && s.deref {
			out = append(out, strings.Join(p.Segments()[:i], "."))
		}
	}

	if isNilable(p.Type) {
		out = append(out, p.Expression)
	}

	return out
}

// Segments returns the field names along the path.
func (p Property) Segments() []string {
	names := make([]string, len(p.steps))
	for i, s := range p.steps {
		names[i] = s.name
	}

	return names
}

// Get reads the property from v. It reports false when a nil pointer was met
// on the way, or when the leaf is a nil pointer, slice, map or interface.
func (p Property) Get(v reflect.Value) (reflect.Value, bool) {
	for _, s := range p.steps {
		for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
			if v.IsNil() {
				return reflect.Value{}, false
			}

			v = v.Elem()
		}

		if v.Kind() != reflect.Struct {
			return reflect.Value{}, false
		}

		v = v.Field(s.index)
	}

	if isNilable(v.Type()) && v.IsNil() {
		return v, false
	}

	return v, true
}

// String returns "Owner.Expression".
func (p Property) String() string {
	if p.Owner == nil {
		return p.Expression
	}

	return p.Owner.String() + "." + p.Expression
}

func isNilable(t reflect.Type) bool {
	if t == nil {
		return false
	}

	switch t.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Interface, reflect.Func, reflect.Chan:
		return true
	default:
		return false
	}
}
