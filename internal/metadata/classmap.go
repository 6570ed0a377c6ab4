package metadata

import (
	"errors"
	"fmt"
	"reflect"
)

// ClassMap is the registered field-mapping relationship between two types.
// Fields are stored in the A to B orientation; BType is the canonical destination.
// Direction restricts the whole map on top of each field's own direction.
type ClassMap struct {
	AType     reflect.Type
	BType     reflect.Type
	Fields    []FieldMap
	Direction Direction
}

// NewClassMap validates that every field map is oriented from a to b.
func NewClassMap(a, b reflect.Type, fields []FieldMap) (*ClassMap, error) {
	if a == nil || b == nil {
		return nil, errors.New("class map needs two types")
	}

	for i, f := range fields {
		if f.Source.Owner != a {
			return nil, fmt.Errorf("field %d: source %s is not a property of %s", i, f.Source, a)
		}

		if f.Destination.Owner != b {
			return nil, fmt.Errorf("field %d: destination %s is not a property of %s", i, f.Destination, b)
		}
	}

	return &ClassMap{
		AType:  a,
		BType:  b,
		Fields: append([]FieldMap(nil), fields...),
	}, nil
}

// Key returns the lookup key of the class map.
func (c *ClassMap) Key() MapperKey {
	return NewMapperKey(c.AType, c.BType)
}

// Other returns the type on the opposite side of t, or nil if t is not part of the map.
func (c *ClassMap) Other(t reflect.Type) reflect.Type {
	switch t {
	case c.AType:
		return c.BType
	case c.BType:
		return c.AType
	default:
		return nil
	}
}

// Allows reports whether values of target may be produced from the other side.
func (c *ClassMap) Allows(target reflect.Type) bool {
	switch target {
	case c.BType:
		return c.Direction != BToA
	case c.AType:
		return c.Direction != AToB
	default:
		return false
	}
}

// FieldsTowards returns the field maps oriented so that Destination always
// belongs to target. Stored fields are never modified; flipped copies are
// returned when target is the A side. One-way field maps that do not allow
// the requested direction are left out.
func (c *ClassMap) FieldsTowards(target reflect.Type) []FieldMap {
	var out []FieldMap

	if !c.Allows(target) {
		return nil
	}

	switch target {
	case c.BType:
		for _, f := range c.Fields {
			if f.AllowsAToB() {
				out = append(out, f)
			}
		}
	case c.AType:
		for _, f := range c.Fields {
			if f.AllowsBToA() {
				out = append(out, f.Flip())
			}
		}
	}

	return out
}

// String returns "A<->B".
func (c *ClassMap) String() string {
	return c.Key().String()
}
