package convert

import (
	"errors"
	"reflect"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"objectfactory/primitive"
)

type Celsius float64

type Fahrenheit float64

func TestRegistry_RegisteredConverter(t *testing.T) {
	r := NewRegistry(primitive.CategoryNone)

	require.NoError(t, Register(r, func(c Celsius) (Fahrenheit, error) {
		return Fahrenheit(c*9/5 + 32), nil
	}))

	c, ok := r.Lookup(reflect.TypeFor[Celsius](), reflect.TypeFor[Fahrenheit]())
	require.True(t, ok)
	assert.Equal(t, reflect.TypeFor[Celsius](), c.Source())
	assert.Equal(t, reflect.TypeFor[Fahrenheit](), c.Destination())

	out, err := c.Convert(reflect.ValueOf(Celsius(100)))
	require.NoError(t, err)
	assert.Equal(t, Fahrenheit(212), out.Interface())

	_, ok = r.Lookup(reflect.TypeFor[Fahrenheit](), reflect.TypeFor[Celsius]())
	assert.False(t, ok, "converters are directional")
}

func TestRegistry_ConverterError(t *testing.T) {
	r := NewRegistry(primitive.CategoryNone)
	boom := errors.New("boom")

	require.NoError(t, Register(r, func(string) (int, error) { return 0, boom }))

	_, err := r.Convert("x", reflect.TypeFor[int]())
	require.ErrorIs(t, err, boom)
}

func TestRegistry_Builtin(t *testing.T) {
	r := NewRegistry(primitive.CategoryTextNumber)

	out, err := r.Convert("42", reflect.TypeFor[int]())
	require.NoError(t, err)
	assert.Equal(t, 42, out)

	_, err = r.Convert("2024-01-02T03:04:05Z", reflect.TypeFor[time.Time]())
	require.ErrorIs(t, err, ErrNoConverter)

	r.EnableBuiltin(primitive.CategoryDatetime)

	out, err = r.Convert("2024-01-02T03:04:05Z", reflect.TypeFor[time.Time]())
	require.NoError(t, err)
	assert.Equal(t, 2024, out.(time.Time).Year())
}

// blank converts into nothing.
type blank struct{}

func (blank) Source() reflect.Type                         { return reflect.TypeFor[string]() }
func (blank) Destination() reflect.Type                    { return reflect.TypeFor[Celsius]() }
func (blank) Convert(reflect.Value) (reflect.Value, error) { return reflect.Value{}, nil }

func TestRegistry_InvalidResultIsZero(t *testing.T) {
	r := NewRegistry(primitive.CategoryNone)
	require.NoError(t, r.Register(blank{}))

	out, err := r.Convert("20", reflect.TypeFor[Celsius]())
	require.NoError(t, err)
	assert.Equal(t, Celsius(0), out)
}

func TestRegistry_BuiltinSkipsIdenticalTypes(t *testing.T) {
	r := NewRegistry(primitive.CategoryAll)

	_, ok := r.Lookup(reflect.TypeFor[int](), reflect.TypeFor[int]())
	assert.False(t, ok)
}

func TestRegistry_RegisteredWinsOverBuiltin(t *testing.T) {
	r := NewRegistry(primitive.CategoryTextNumber)

	require.NoError(t, Register(r, func(s string) (int, error) {
		n, err := strconv.Atoi(s)
		return n * 10, err
	}))

	out, err := r.Convert("4", reflect.TypeFor[int]())
	require.NoError(t, err)
	assert.Equal(t, 40, out)
}

func TestRegistry_RegisterInvalid(t *testing.T) {
	r := NewRegistry(primitive.CategoryNone)

	require.Error(t, r.Register(nil))
}

func TestRegistry_ConvertNil(t *testing.T) {
	r := NewRegistry(primitive.CategoryAll)

	_, err := r.Convert(nil, reflect.TypeFor[int]())
	require.ErrorIs(t, err, ErrNoConverter)
}

func TestRegistry_InterfaceDestination(t *testing.T) {
	r := NewRegistry(primitive.CategoryNone)

	require.NoError(t, r.Register(Infallible(func(n int) any { return n + 1 })))

	c, ok := r.Lookup(reflect.TypeFor[int](), reflect.TypeFor[any]())
	require.True(t, ok)

	out, err := c.Convert(reflect.ValueOf(1))
	require.NoError(t, err)
	assert.Equal(t, 2, out.Interface())
}

func TestRegistry_Concurrent(t *testing.T) {
	r := NewRegistry(primitive.CategoryTextNumber)

	var wg sync.WaitGroup

	for i := 0; i < 16; i++ {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			out, err := r.Convert(strconv.Itoa(i), reflect.TypeFor[int64]())
			assert.NoError(t, err)
			assert.Equal(t, int64(i), out)
		}(i)
	}

	wg.Wait()

	assert.Len(t, r.Pairs(), 0)
}
