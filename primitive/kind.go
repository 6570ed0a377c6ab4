package primitive

import (
	"reflect"
	"strconv"
	"time"
)

// KindEnum classifies the value types that can be converted without
// introspection: numbers, booleans, strings, time values and enum-like named types.
type KindEnum int

const (
	_ KindEnum = iota // zero means "not a primitive"

	KindInt
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindBool
	KindString
	KindTime
	KindDuration
	KindPrimitiveEnum // named type over an int or a string

	// KindTotal bounds loops over every kind.
	KindTotal = int(iota)
)

type kindInfo struct {
	name string
	rt   reflect.Type
}

// kinds is indexed by KindEnum; KindPrimitiveEnum has no single reflect type.
var kinds = [...]kindInfo{
	KindInt:           {"KindInt", reflect.TypeFor[int]()},
	KindInt8:          {"KindInt8", reflect.TypeFor[int8]()},
	KindInt16:         {"KindInt16", reflect.TypeFor[int16]()},
	KindInt32:         {"KindInt32", reflect.TypeFor[int32]()},
	KindInt64:         {"KindInt64", reflect.TypeFor[int64]()},
	KindUint:          {"KindUint", reflect.TypeFor[uint]()},
	KindUint8:         {"KindUint8", reflect.TypeFor[uint8]()},
	KindUint16:        {"KindUint16", reflect.TypeFor[uint16]()},
	KindUint32:        {"KindUint32", reflect.TypeFor[uint32]()},
	KindUint64:        {"KindUint64", reflect.TypeFor[uint64]()},
	KindFloat32:       {"KindFloat32", reflect.TypeFor[float32]()},
	KindFloat64:       {"KindFloat64", reflect.TypeFor[float64]()},
	KindBool:          {"KindBool", reflect.TypeFor[bool]()},
	KindString:        {"KindString", reflect.TypeFor[string]()},
	KindTime:          {"KindTime", reflect.TypeFor[time.Time]()},
	KindDuration:      {"KindDuration", reflect.TypeFor[time.Duration]()},
	KindPrimitiveEnum: {"KindPrimitiveEnum", nil},
}

var byType = func() map[reflect.Type]KindEnum {
	m := make(map[reflect.Type]KindEnum, len(kinds))
	for k, info := range kinds {
		if info.rt != nil {
			m[info.rt] = KindEnum(k)
		}
	}

	return m
}()

func (k KindEnum) String() string {
	if k > 0 && int(k) < len(kinds) {
		return kinds[k].name
	}

	return "KindEnum(" + strconv.Itoa(int(k)) + ")"
}

func (k KindEnum) IsNumber() bool {
	return k >= KindInt && k <= KindFloat64
}

func (k KindEnum) IsInteger() bool {
	return k >= KindInt && k <= KindUint64
}

func (k KindEnum) IsSigned() bool {
	return k >= KindInt && k <= KindInt64
}

func (k KindEnum) IsUnsigned() bool {
	return k >= KindUint && k <= KindUint64
}

// Bits returns the size of a numeric kind, as strconv expects it.
// It panics for non-numeric kinds.
func (k KindEnum) Bits() int {
	if !k.IsNumber() {
		panic("primitive: Bits of non-numeric kind " + k.String())
	}

	return kinds[k].rt.Bits()
}

// FromReflectType returns the kind of rtype, or 0 when rtype is not a primitive.
func FromReflectType(rtype reflect.Type) KindEnum {
	if rtype == nil {
		return 0
	}

	if k, ok := byType[rtype]; ok {
		return k
	}

	switch rtype.Kind() {
	case reflect.Int, reflect.String:
		return KindPrimitiveEnum
	default:
		return 0
	}
}

// FromReflectKind returns the plain numeric, bool or string kind for k,
// ignoring any type name; 0 for every other kind.
func FromReflectKind(k reflect.Kind) KindEnum {
	for kind := KindInt; kind <= KindString; kind++ {
		if kinds[kind].rt.Kind() == k {
			return kind
		}
	}

	return 0
}
