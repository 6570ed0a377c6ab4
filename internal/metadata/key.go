package metadata

import (
	"reflect"
)

// MapperKey identifies a ClassMap by an unordered pair of types.
// Keys built from (a, b) and (b, a) are equal and can be used as map keys.
type MapperKey struct {
	first, second reflect.Type
}

// NewMapperKey returns the normalized key for the pair.
func NewMapperKey(a, b reflect.Type) MapperKey {
	if less(b, a) {
		a, b = b, a
	}

	return MapperKey{first: a, second: b}
}

// Types returns the two types of the key in normalized order.
func (k MapperKey) Types() (reflect.Type, reflect.Type) {
	return k.first, k.second
}

// Contains reports whether t is one of the two types.
func (k MapperKey) Contains(t reflect.Type) bool {
	return k.first == t || k.second == t
}

// Equal reports whether both keys name the same pair.
func (k MapperKey) Equal(other MapperKey) bool {
	return k == other
}

// String returns "A<->B".
func (k MapperKey) String() string {
	return typeString(k.first) + "<->" + typeString(k.second)
}

// less orders types by package path, then by string form. Distinct types with
// the same name (declared in different functions) fall back to the address of
// their runtime type descriptor.
func less(a, b reflect.Type) bool {
	if a == nil || b == nil {
		return b != nil
	}

	if a.PkgPath() != b.PkgPath() {
		return a.PkgPath() < b.PkgPath()
	}

	if a.String() != b.String() {
		return a.String() < b.String()
	}

	return reflect.ValueOf(a).Pointer() < reflect.ValueOf(b).Pointer()
}

func typeString(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}

	return t.String()
}
