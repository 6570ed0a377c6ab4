// Package classify picks the copy strategy for a single field mapping.
package classify

import (
	"reflect"
	"time"

	"objectfactory/internal/common"
	"objectfactory/internal/convert"
	"objectfactory/internal/metadata"
	"objectfactory/primitive"
)

// Strategy is the way a source value is turned into a constructor argument.
type Strategy int

const (
	Immutable Strategy = iota
	Array
	Collection
	PrimitiveToWrapper
	WrapperToPrimitive
	Converter
	Object
)

var strategyNames = [...]string{
	Immutable:          "immutable",
	Array:              "array",
	Collection:         "collection",
	PrimitiveToWrapper: "primitive-to-wrapper",
	WrapperToPrimitive: "wrapper-to-primitive",
	Converter:          "converter",
	Object:             "object",
}

func (s Strategy) String() string {
	if s >= 0 && int(s) < len(strategyNames) {
		return strategyNames[s]
	}

	return common.UnknownStr
}

// All returns every strategy in declaration order.
func All() []Strategy {
	return []Strategy{Immutable, Array, Collection, PrimitiveToWrapper, WrapperToPrimitive, Converter, Object}
}

// ConverterLookup finds a converter for a type pair.
type ConverterLookup interface {
	Lookup(src, dst reflect.Type) (convert.Converter, bool)
}

// Classify returns the strategy for fm. The first matching rule wins:
// registered converter, array destination, slice or map destination,
// boxing, unboxing, identical immutable types, and finally nested object mapping.
func Classify(fm metadata.FieldMap, converters ConverterLookup) Strategy {
	src, dst := fm.Source.Type, fm.Destination.Type

	if converters != nil {
		if _, ok := converters.Lookup(src, dst); ok {
			return Converter
		}
	}

	switch dst.Kind() {
	case reflect.Array:
		return Array
	case reflect.Slice, reflect.Map:
		return Collection
	}

	switch {
	case IsImmutable(src) && dst.Kind() == reflect.Ptr && dst.Elem() == src:
		return PrimitiveToWrapper
	case src.Kind() == reflect.Ptr && src.Elem() == dst && IsImmutable(dst):
		return WrapperToPrimitive
	case src == dst && IsImmutable(src):
		return Immutable
	default:
		return Object
	}
}

// IsImmutable reports whether values of t can be shared without copying:
// numbers, booleans, strings, named basic types, time.Time and time.Duration.
func IsImmutable(t reflect.Type) bool {
	if t == nil {
		return false
	}

	if primitive.FromReflectType(t) != 0 || t == timeType {
		return true
	}

	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128,
		reflect.String:
		return true
	default:
		return false
	}
}

var timeType = reflect.TypeFor[time.Time]()

// Convertible reports whether a value of src can be turned into dst with a
// plain Go conversion without losing information: both immutable and either
// of the same kind or a widening numeric pair of primitive.CategorySafeNumber.
// Narrowing and float to integer pairs need a registered converter.
func Convertible(src, dst reflect.Type) bool {
	if !IsImmutable(src) || !IsImmutable(dst) || !src.ConvertibleTo(dst) {
		return false
	}

	if src.Kind() == dst.Kind() {
		return true
	}

	_, ok := primitive.CategorySafeNumber.Allows(primitive.ConversionPair{
		From: primitive.FromReflectKind(src.Kind()),
		To:   primitive.FromReflectKind(dst.Kind()),
	})

	return ok
}
