package mapping

import (
	"errors"
	"fmt"
	"reflect"

	"objectfactory/internal/metadata"
)

// ClassMapBuilder declares a class map in code.
//
//	cm, err := mapping.NewClassMap(dtoType, personType).
//		Field("FullName", "Name").
//		FieldAToB("Age", "Age").
//		ByDefault().
//		Build()
type ClassMapBuilder struct {
	a, b      reflect.Type
	direction metadata.Direction
	fields    []metadata.FieldMap
	byDefault bool
	errs      []error
}

// NewClassMap starts a bidirectional class map between a and b.
func NewClassMap(a, b reflect.Type) *ClassMapBuilder {
	return &ClassMapBuilder{a: a, b: b}
}

// Field maps aExpr onto bExpr in both directions.
func (cb *ClassMapBuilder) Field(aExpr, bExpr string) *ClassMapBuilder {
	return cb.field(aExpr, bExpr, metadata.Bidirectional)
}

// FieldAToB maps aExpr onto bExpr only when B is produced.
func (cb *ClassMapBuilder) FieldAToB(aExpr, bExpr string) *ClassMapBuilder {
	return cb.field(aExpr, bExpr, metadata.AToB)
}

// FieldBToA maps bExpr onto aExpr only when A is produced.
func (cb *ClassMapBuilder) FieldBToA(aExpr, bExpr string) *ClassMapBuilder {
	return cb.field(aExpr, bExpr, metadata.BToA)
}

// Direction restricts the whole class map.
func (cb *ClassMapBuilder) Direction(d metadata.Direction) *ClassMapBuilder {
	cb.direction = d
	return cb
}

// ByDefault maps every exported field present under the same name on both
// sides and not already mapped on the B side.
func (cb *ClassMapBuilder) ByDefault() *ClassMapBuilder {
	cb.byDefault = true
	return cb
}

func (cb *ClassMapBuilder) field(aExpr, bExpr string, d metadata.Direction) *ClassMapBuilder {
	src, err := metadata.NewProperty(cb.a, aExpr)
	if err != nil {
		cb.errs = append(cb.errs, err)
		return cb
	}

	dst, err := metadata.NewProperty(cb.b, bExpr)
	if err != nil {
		cb.errs = append(cb.errs, err)
		return cb
	}

	cb.fields = append(cb.fields, metadata.FieldMap{Source: src, Destination: dst, Direction: d})

	return cb
}

// Build returns the class map, or every error met while declaring it.
func (cb *ClassMapBuilder) Build() (*metadata.ClassMap, error) {
	if cb.a == nil || cb.b == nil {
		return nil, errors.New("class map needs two types")
	}

	if cb.byDefault {
		cb.addDefaults()
	}

	if len(cb.errs) > 0 {
		return nil, fmt.Errorf("class map %s<->%s: %w", cb.a, cb.b, errors.Join(cb.errs...))
	}

	cm, err := metadata.NewClassMap(cb.a, cb.b, cb.fields)
	if err != nil {
		return nil, err
	}

	cm.Direction = cb.direction

	return cm, nil
}

func (cb *ClassMapBuilder) addDefaults() {
	mapped := make(map[string]bool, len(cb.fields))
	for _, f := range cb.fields {
		mapped[f.Destination.Expression] = true
	}

	at, bt := derefStruct(cb.a), derefStruct(cb.b)
	if at == nil || bt == nil {
		return
	}

	for i := 0; i < bt.NumField(); i++ {
		f := bt.Field(i)
		if !f.IsExported() || mapped[f.Name] {
			continue
		}

		if af, ok := at.FieldByName(f.Name); ok && af.IsExported() && len(af.Index) == 1 {
			cb.field(f.Name, f.Name, metadata.Bidirectional)
		}
	}
}

func derefStruct(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if t.Kind() != reflect.Struct {
		return nil
	}

	return t
}
