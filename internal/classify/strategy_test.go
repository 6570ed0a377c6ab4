package classify

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"objectfactory/internal/convert"
	"objectfactory/internal/metadata"
	"objectfactory/primitive"
)

type Status string

type Address struct {
	Street string
}

type source struct {
	Name     string
	Age      int
	AgeText  string
	AgePtr   *int
	Tags     []string
	Scores   []int
	Labels   map[string]string
	Status   Status
	Home     Address
	HomePtr  *Address
	Created  time.Time
	Duration time.Duration
}

type dest struct {
	Name     string
	Age      int
	AgePtr   *int
	Tags     []string
	Fixed    [3]int
	Labels   map[string]string
	Status   Status
	Home     Address
	Created  time.Time
	Duration time.Duration
}

// field builds a field map from source.s to dest.d, re-typed to typ when given.
func field(s, d string, typ reflect.Type) metadata.FieldMap {
	dst := metadata.MustProperty(reflect.TypeFor[dest](), d)
	if typ != nil {
		dst = dst.WithType(typ)
	}

	return metadata.FieldMap{
		Source:      metadata.MustProperty(reflect.TypeFor[source](), s),
		Destination: dst,
	}
}

func TestClassify(t *testing.T) {
	none := convert.NewRegistry(primitive.CategoryNone)

	tests := []struct {
		name     string
		fm       metadata.FieldMap
		expected Strategy
	}{
		{"same string", field("Name", "Name", nil), Immutable},
		{"same int", field("Age", "Age", nil), Immutable},
		{"named string", field("Status", "Status", nil), Immutable},
		{"time", field("Created", "Created", nil), Immutable},
		{"duration", field("Duration", "Duration", nil), Immutable},
		{"slice", field("Tags", "Tags", nil), Collection},
		{"map", field("Labels", "Labels", nil), Collection},
		{"array", field("Scores", "Fixed", nil), Array},
		{"boxing", field("Age", "AgePtr", nil), PrimitiveToWrapper},
		{"unboxing", field("AgePtr", "Age", nil), WrapperToPrimitive},
		{"pointer to pointer", field("AgePtr", "AgePtr", nil), Object},
		{"struct", field("Home", "Home", nil), Object},
		{"struct pointer", field("HomePtr", "Home", nil), Object},
		{"no converter for string to int", field("AgeText", "Age", nil), Object},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Classify(tt.fm, none))
		})
	}
}

func TestClassify_ConverterTakesPrecedence(t *testing.T) {
	registry := convert.NewRegistry(primitive.CategoryNone)
	fm := field("AgeText", "Age", nil)

	assert.Equal(t, Object, Classify(fm, registry))

	registry.EnableBuiltin(primitive.CategoryTextNumber)
	assert.Equal(t, Converter, Classify(fm, registry))

	// even collection destinations go through a registered converter
	tags := field("Name", "Tags", nil)
	assert.NoError(t, convert.Register(registry, func(s string) ([]string, error) { return []string{s}, nil }))
	assert.Equal(t, Converter, Classify(tags, registry))
}

func TestClassify_ConverterReplacesPassthrough(t *testing.T) {
	registry := convert.NewRegistry(primitive.CategoryNone)
	fm := field("Name", "Name", nil)

	assert.Equal(t, Immutable, Classify(fm, registry))

	require.NoError(t, convert.Register(registry, func(s string) (string, error) { return strings.TrimSpace(s), nil }))
	assert.Equal(t, Converter, Classify(fm, registry))
}

func TestClassify_RetypedDestination(t *testing.T) {
	fm := field("Age", "Age", reflect.TypeFor[*int]())

	assert.Equal(t, PrimitiveToWrapper, Classify(fm, nil))
}

func TestClassify_Deterministic(t *testing.T) {
	fm := field("Tags", "Tags", nil)

	for i := 0; i < 10; i++ {
		assert.Equal(t, Collection, Classify(fm, nil))
	}
}

func TestStrategy_String(t *testing.T) {
	seen := map[string]bool{}

	for _, s := range All() {
		name := s.String()
		assert.NotEqual(t, "unknown", name)
		assert.False(t, seen[name], "duplicate name %q", name)
		seen[name] = true
	}

	assert.Len(t, All(), 7)
	assert.Equal(t, "unknown", Strategy(99).String())
}

func TestIsImmutable(t *testing.T) {
	assert.True(t, IsImmutable(reflect.TypeFor[int]()))
	assert.True(t, IsImmutable(reflect.TypeFor[string]()))
	assert.True(t, IsImmutable(reflect.TypeFor[Status]()))
	assert.True(t, IsImmutable(reflect.TypeFor[time.Time]()))
	assert.True(t, IsImmutable(reflect.TypeFor[time.Duration]()))
	assert.False(t, IsImmutable(reflect.TypeFor[*int]()))
	assert.False(t, IsImmutable(reflect.TypeFor[Address]()))
	assert.False(t, IsImmutable(reflect.TypeFor[[]int]()))
	assert.False(t, IsImmutable(nil))
}

func TestConvertible(t *testing.T) {
	assert.True(t, Convertible(reflect.TypeFor[Status](), reflect.TypeFor[string]()))
	assert.True(t, Convertible(reflect.TypeFor[int32](), reflect.TypeFor[int64]()))
	assert.True(t, Convertible(reflect.TypeFor[uint16](), reflect.TypeFor[float32]()))
	assert.False(t, Convertible(reflect.TypeFor[int64](), reflect.TypeFor[int8]()), "narrowing")
	assert.False(t, Convertible(reflect.TypeFor[float64](), reflect.TypeFor[int]()), "truncation")
	assert.False(t, Convertible(reflect.TypeFor[int](), reflect.TypeFor[float64]()), "int64 does not fit a float64 mantissa")
	assert.False(t, Convertible(reflect.TypeFor[int](), reflect.TypeFor[string]()))
	assert.False(t, Convertible(reflect.TypeFor[Address](), reflect.TypeFor[Address]()))
	assert.False(t, Convertible(reflect.TypeFor[[]int](), reflect.TypeFor[[]int]()))
}
