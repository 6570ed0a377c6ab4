package paramname

import (
	"reflect"
	"unicode"

	"objectfactory/internal/common"
)

// FieldOrder guesses names from the struct the function returns: when the
// parameter types equal the types of the leading exported fields, in order,
// the parameters are named after those fields in lowerCamel case.
type FieldOrder struct{}

func (FieldOrder) ParameterNames(fn reflect.Value) ([]string, error) {
	if err := checkFunc(fn); err != nil {
		return nil, err
	}

	ft := fn.Type()
	if ft.NumOut() == 0 {
		return nil, ErrNotFound
	}

	target := common.Deref(ft.Out(0))
	if target.Kind() != reflect.Struct {
		return nil, ErrNotFound
	}

	fields := reflect.VisibleFields(target)
	names := make([]string, 0, ft.NumIn())

	for _, f := range fields {
		if len(names) == ft.NumIn() {
			break
		}

		if !f.IsExported() || len(f.Index) != 1 {
			continue
		}

		if f.Type != ft.In(len(names)) {
			return nil, ErrNotFound
		}

		names = append(names, LowerCamel(f.Name))
	}

	if len(names) != ft.NumIn() {
		return nil, ErrNotFound
	}

	return names, nil
}

// LowerCamel lowercases the leading upper-case run of an identifier:
// "ID" -> "id", "FullName" -> "fullName", "URLPath" -> "urlPath".
func LowerCamel(s string) string {
	runes := []rune(s)

	i := 0
	for i < len(runes) && unicode.IsUpper(runes[i]) {
		i++
	}

	switch {
	case i == 0:
		return s
	case i > 1 && i < len(runes):
		i-- // keep the first letter of the next word
	}

	for j := 0; j < i; j++ {
		runes[j] = unicode.ToLower(runes[j])
	}

	return string(runes)
}
