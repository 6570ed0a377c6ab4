package paramname

import (
	"errors"
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"objectfactory/warehouse"
)

type point struct {
	X, Y int
	note string
}

func newPoint(x, y int) point { return point{X: x, Y: y} }

func newPointSwapped(label string, x int) point { return point{X: x, note: label} }

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	_, err := r.ParameterNames(reflect.ValueOf(newPoint))
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, r.Annotate(newPoint, "x", "y"))

	names, err := r.ParameterNames(reflect.ValueOf(newPoint))
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, names)

	assert.Error(t, r.Annotate(newPoint, "x"), "wrong count")
	assert.Error(t, r.Annotate(newPoint, "x", "x"), "duplicate")
	assert.Error(t, r.Annotate(newPoint, "x", "_"), "blank")
	assert.Error(t, r.Annotate(42, "x"), "not a function")
}

func TestFieldOrder(t *testing.T) {
	tests := []struct {
		name     string
		fn       any
		expected []string
	}{
		{"address", warehouse.NewAddress, []string{"street", "city", "postalCode", "country"}},
		{"customer", warehouse.NewCustomer, []string{"id", "name", "email", "address", "active"}},
		{"order item prefix", warehouse.NewOrderItem, []string{"productID", "quantity", "unitPrice"}},
		{"local struct", newPoint, []string{"x", "y"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			names, err := FieldOrder{}.ParameterNames(reflect.ValueOf(tt.fn))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, names)
		})
	}
}

func TestFieldOrder_Mismatch(t *testing.T) {
	_, err := FieldOrder{}.ParameterNames(reflect.ValueOf(newPointSwapped))
	require.ErrorIs(t, err, ErrNotFound)

	_, err = FieldOrder{}.ParameterNames(reflect.ValueOf(func(int) int { return 0 }))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLowerCamel(t *testing.T) {
	assert.Equal(t, "id", LowerCamel("ID"))
	assert.Equal(t, "fullName", LowerCamel("FullName"))
	assert.Equal(t, "urlPath", LowerCamel("URLPath"))
	assert.Equal(t, "productID", LowerCamel("ProductID"))
	assert.Equal(t, "already", LowerCamel("already"))
	assert.Equal(t, "", LowerCamel(""))
}

func TestSplitFuncName(t *testing.T) {
	pkg, ident, ok := SplitFuncName("objectfactory/warehouse.NewCustomer")
	require.True(t, ok)
	assert.Equal(t, "objectfactory/warehouse", pkg)
	assert.Equal(t, "NewCustomer", ident)

	pkg, ident, ok = SplitFuncName("main.newThing")
	require.True(t, ok)
	assert.Equal(t, "main", pkg)
	assert.Equal(t, "newThing", ident)

	_, _, ok = SplitFuncName("objectfactory/warehouse.(*Order).Total")
	assert.False(t, ok)

	_, _, ok = SplitFuncName("objectfactory/warehouse.NewCustomer.func1")
	assert.False(t, ok)
}

func TestSource_LoadsDeclaration(t *testing.T) {
	src := NewSource("")

	names, err := src.ParameterNames(reflect.ValueOf(warehouse.NewOrder))
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "customerID", "status", "totalAmount", "items", "tags", "placedAt"}, names)

	names, err = src.ParameterNames(reflect.ValueOf(warehouse.NewGuestCustomer))
	require.NoError(t, err)
	assert.Equal(t, []string{"email"}, names)
}

func TestSource_Closure(t *testing.T) {
	_, err := NewSource("").ParameterNames(reflect.ValueOf(func(a int) int { return a }))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAdaptive(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Annotate(newPoint, "left", "top"))

	chain := NewAdaptive(registry, nil, FieldOrder{})

	names, err := chain.ParameterNames(reflect.ValueOf(newPoint))
	require.NoError(t, err)
	assert.Equal(t, []string{"left", "top"}, names, "annotations win")

	names, err = chain.ParameterNames(reflect.ValueOf(warehouse.NewAddress))
	require.NoError(t, err)
	assert.Equal(t, "street", names[0])

	_, err = chain.ParameterNames(reflect.ValueOf(newPointSwapped))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAdaptive_KeepsUnexpectedErrors(t *testing.T) {
	boom := errors.New("boom")
	chain := NewAdaptive(ResolverFunc(func(reflect.Value) ([]string, error) { return nil, boom }))

	_, err := chain.ParameterNames(reflect.ValueOf(newPoint))
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, err, boom)
}

func TestCaching(t *testing.T) {
	var calls atomic.Int32

	counting := ResolverFunc(func(fn reflect.Value) ([]string, error) {
		calls.Add(1)
		return FieldOrder{}.ParameterNames(fn)
	})

	c, err := NewCaching(counting, 1)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		names, err := c.ParameterNames(reflect.ValueOf(newPoint))
		require.NoError(t, err)
		assert.Equal(t, []string{"x", "y"}, names)
	}

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, c.Len())

	// size 1: a second function evicts the first
	_, err = c.ParameterNames(reflect.ValueOf(warehouse.NewAddress))
	require.NoError(t, err)
	_, err = c.ParameterNames(reflect.ValueOf(newPoint))
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())

	// failures are not cached
	_, err = c.ParameterNames(reflect.ValueOf(newPointSwapped))
	require.ErrorIs(t, err, ErrNotFound)
	_, err = c.ParameterNames(reflect.ValueOf(newPointSwapped))
	require.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int32(5), calls.Load())

	c.Purge()
	assert.Equal(t, 0, c.Len())
}

func TestCaching_ReturnsCopies(t *testing.T) {
	c, err := NewCaching(FieldOrder{}, 0)
	require.NoError(t, err)

	names, err := c.ParameterNames(reflect.ValueOf(newPoint))
	require.NoError(t, err)
	names[0] = "mutated"

	again, err := c.ParameterNames(reflect.ValueOf(newPoint))
	require.NoError(t, err)
	assert.Equal(t, "x", again[0])
}
