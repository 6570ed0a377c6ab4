package primitive

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Func converts a primitive value into the destination type it was built for.
type Func func(src reflect.Value) (reflect.Value, error)

var (
	stringerType = reflect.TypeOf((*interface{ String() string })(nil)).Elem()
	validType    = reflect.TypeOf((*interface{ IsValid() bool })(nil)).Elem()
)

// Lookup returns a conversion from src to dst when both are primitives and
// the pair belongs to one of the allowed categories.
func Lookup(src, dst reflect.Type, allowed CategoryEnum) (Func, bool) {
	srcKind := FromReflectType(src)
	dstKind := FromReflectType(dst)

	if srcKind == 0 || dstKind == 0 {
		return nil, false
	}

	category, ok := allowed.Allows(ConversionPair{srcKind, dstKind})
	if !ok {
		return nil, false
	}

	fn := build(category, src, dst, srcKind, dstKind)

	return fn, fn != nil
}

func build(category CategoryEnum, src, dst reflect.Type, srcKind, dstKind KindEnum) Func {
	switch category {
	case CategorySafeNumber, CategoryUnsafeNumber:
		return func(v reflect.Value) (reflect.Value, error) {
			return v.Convert(dst), nil
		}
	case CategoryTextNumber:
		if dstKind == KindString {
			return formatNumber(srcKind, dst)
		}

		return parseNumber(dstKind, dst)
	case CategoryNumericBool:
		if dstKind == KindBool {
			return func(v reflect.Value) (reflect.Value, error) {
				return reflect.ValueOf(!v.IsZero()).Convert(dst), nil
			}
		}

		return func(v reflect.Value) (reflect.Value, error) {
			n := 0
			if v.Bool() {
				n = 1
			}

			return reflect.ValueOf(n).Convert(dst), nil
		}
	case CategoryTextualBool:
		if dstKind == KindBool {
			return func(v reflect.Value) (reflect.Value, error) {
				b, err := parseTextualBool(v.String())
				if err != nil {
					return reflect.Value{}, err
				}

				return reflect.ValueOf(b).Convert(dst), nil
			}
		}

		return func(v reflect.Value) (reflect.Value, error) {
			return reflect.ValueOf(strconv.FormatBool(v.Bool())).Convert(dst), nil
		}
	case CategoryDatetime:
		if dstKind == KindTime {
			return func(v reflect.Value) (reflect.Value, error) {
				t, err := time.Parse(time.RFC3339Nano, v.String())
				if err != nil {
					return reflect.Value{}, fmt.Errorf("parsing datetime: %w", err)
				}

				return reflect.ValueOf(t), nil
			}
		}

		return func(v reflect.Value) (reflect.Value, error) {
			t := v.Interface().(time.Time)
			return reflect.ValueOf(t.Format(time.RFC3339Nano)).Convert(dst), nil
		}
	case CategoryTimestamp:
		if dstKind == KindTime {
			return func(v reflect.Value) (reflect.Value, error) {
				return reflect.ValueOf(time.Unix(asInt64(v), 0).UTC()), nil
			}
		}

		return func(v reflect.Value) (reflect.Value, error) {
			t := v.Interface().(time.Time)
			return reflect.ValueOf(t.Unix()).Convert(dst), nil
		}
	case CategoryDuration:
		if dstKind == KindDuration {
			return func(v reflect.Value) (reflect.Value, error) {
				d, err := time.ParseDuration(v.String())
				if err != nil {
					return reflect.Value{}, fmt.Errorf("parsing duration: %w", err)
				}

				return reflect.ValueOf(d), nil
			}
		}

		return func(v reflect.Value) (reflect.Value, error) {
			return reflect.ValueOf(time.Duration(v.Int()).String()).Convert(dst), nil
		}
	case CategoryNanoseconds:
		if dstKind == KindDuration {
			return func(v reflect.Value) (reflect.Value, error) {
				return reflect.ValueOf(time.Duration(asInt64(v))), nil
			}
		}

		return func(v reflect.Value) (reflect.Value, error) {
			return reflect.ValueOf(v.Int()).Convert(dst), nil
		}
	case CategorySeconds:
		if dstKind == KindDuration {
			return func(v reflect.Value) (reflect.Value, error) {
				return reflect.ValueOf(time.Duration(v.Float() * float64(time.Second))), nil
			}
		}

		return func(v reflect.Value) (reflect.Value, error) {
			return reflect.ValueOf(time.Duration(v.Int()).Seconds()).Convert(dst), nil
		}
	case CategoryEnumString:
		return enumString(src, dst)
	default:
		return nil
	}
}

func formatNumber(srcKind KindEnum, dst reflect.Type) Func {
	return func(v reflect.Value) (reflect.Value, error) {
		var s string

		switch {
		case srcKind.IsSigned():
			s = strconv.FormatInt(v.Int(), 10)
		case srcKind.IsUnsigned():
			s = strconv.FormatUint(v.Uint(), 10)
		default:
			s = strconv.FormatFloat(v.Float(), 'f', -1, srcKind.Bits())
		}

		return reflect.ValueOf(s).Convert(dst), nil
	}
}

func parseNumber(dstKind KindEnum, dst reflect.Type) Func {
	return func(v reflect.Value) (reflect.Value, error) {
		text := strings.TrimSpace(v.String())

		switch {
		case dstKind.IsSigned():
			n, err := strconv.ParseInt(text, 10, dstKind.Bits())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("parsing %s: %w", dst, err)
			}

			return reflect.ValueOf(n).Convert(dst), nil
		case dstKind.IsUnsigned():
			n, err := strconv.ParseUint(text, 10, dstKind.Bits())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("parsing %s: %w", dst, err)
			}

			return reflect.ValueOf(n).Convert(dst), nil
		default:
			n, err := strconv.ParseFloat(text, dstKind.Bits())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("parsing %s: %w", dst, err)
			}

			return reflect.ValueOf(n).Convert(dst), nil
		}
	}
}

// enumString converts between strings and enum-like named types. String
// enums convert by value; other enums need a String method to be rendered.
// Destinations implementing IsValid are checked after conversion.
func enumString(src, dst reflect.Type) Func {
	if dst.Kind() != reflect.String && src.Kind() != dst.Kind() {
		return nil
	}

	return func(v reflect.Value) (reflect.Value, error) {
		var out reflect.Value

		switch {
		case src.Kind() == dst.Kind():
			out = v.Convert(dst)
		case src.Implements(stringerType):
			out = reflect.ValueOf(v.Interface().(interface{ String() string }).String()).Convert(dst)
		default:
			return reflect.Value{}, fmt.Errorf("%s has no textual representation", src)
		}

		if dst.Implements(validType) && !out.Interface().(interface{ IsValid() bool }).IsValid() {
			return reflect.Value{}, fmt.Errorf("%v is not a valid value for %s", v.Interface(), dst)
		}

		return out, nil
	}
}

func parseTextualBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0", "":
		return false, nil
	default:
		return false, fmt.Errorf("%q is not a boolean", s)
	}
}

func asInt64(v reflect.Value) int64 {
	if v.CanInt() {
		return v.Int()
	}

	return int64(v.Uint())
}
