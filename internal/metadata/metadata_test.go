package metadata

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type address struct {
	Street string
	City   *string
}

type customer struct {
	Name    string
	Address *address
	Tags    []string
	secret  int
}

type customerDTO struct {
	FullName string
	Street   string
}

func TestNewProperty_Nested(t *testing.T) {
	p, err := NewProperty(reflect.TypeOf(customer{}), "Address.Street")
	require.NoError(t, err)

	assert.Equal(t, "AddressStreet", p.Name)
	assert.Equal(t, reflect.TypeOf(""), p.Type)
	assert.Equal(t, []string{"Address", "Street"}, p.Segments())
	assert.True(t, p.Exported())
	assert.True(t, p.Nullable(), "path crosses a pointer")
}

func TestNewProperty_Errors(t *testing.T) {
	_, err := NewProperty(reflect.TypeOf(customer{}), "")
	require.Error(t, err)

	_, err = NewProperty(reflect.TypeOf(customer{}), "Missing")
	require.Error(t, err)

	_, err = NewProperty(reflect.TypeOf(customer{}), "Name.Length")
	require.Error(t, err)

	_, err = NewProperty(reflect.TypeOf(customer{}), "Address..Street")
	require.Error(t, err)

	// interfaces expose methods, not fields
	_, err = NewProperty(reflect.TypeFor[interface{ Name() string }](), "Name")
	require.ErrorContains(t, err, "is not a struct")
}

func TestProperty_UnexportedAndNullable(t *testing.T) {
	secret := MustProperty(reflect.TypeOf(customer{}), "secret")
	assert.False(t, secret.Exported())
	assert.False(t, secret.Nullable())

	tags := MustProperty(reflect.TypeOf(customer{}), "Tags")
	assert.True(t, tags.Nullable())

	name := MustProperty(reflect.TypeOf(&customer{}), "Name")
	assert.False(t, name.Nullable(), "dereferencing the owner does not make a field nullable")
}

func TestProperty_Get(t *testing.T) {
	street := MustProperty(reflect.TypeOf(customer{}), "Address.Street")

	v, ok := street.Get(reflect.ValueOf(customer{Address: &address{Street: "Main"}}))
	require.True(t, ok)
	assert.Equal(t, "Main", v.String())

	_, ok = street.Get(reflect.ValueOf(customer{}))
	assert.False(t, ok, "nil pointer on the path")

	city := MustProperty(reflect.TypeOf(customer{}), "Address.City")
	_, ok = city.Get(reflect.ValueOf(&customer{Address: &address{}}))
	assert.False(t, ok, "nil leaf pointer")

	v, ok = MustProperty(reflect.TypeOf(customer{}), "Name").Get(reflect.ValueOf(&customer{Name: "Ann"}))
	require.True(t, ok)
	assert.Equal(t, "Ann", v.String())
}

func TestFieldMap_FlipRoundTrip(t *testing.T) {
	for _, dir := range []Direction{Bidirectional, AToB, BToA} {
		fm := FieldMap{
			Source:      MustProperty(reflect.TypeOf(customerDTO{}), "FullName"),
			Destination: MustProperty(reflect.TypeOf(customer{}), "Name"),
			Direction:   dir,
		}

		flipped := fm.Flip()
		assert.Equal(t, fm.Destination, flipped.Source)
		assert.Equal(t, fm.Source, flipped.Destination)
		assert.Equal(t, fm, flipped.Flip(), dir.String())
	}
}

func TestFieldMap_FlipDirection(t *testing.T) {
	fm := FieldMap{Direction: AToB}
	assert.Equal(t, BToA, fm.Flip().Direction)
	assert.True(t, fm.AllowsAToB())
	assert.False(t, fm.AllowsBToA())
}

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection("")
	require.NoError(t, err)
	assert.Equal(t, Bidirectional, d)

	d, err = ParseDirection("b-to-a")
	require.NoError(t, err)
	assert.Equal(t, BToA, d)

	_, err = ParseDirection("sideways")
	require.Error(t, err)
}

func TestMapperKey_OrderInsensitive(t *testing.T) {
	a := reflect.TypeOf(customer{})
	b := reflect.TypeOf(customerDTO{})

	assert.Equal(t, NewMapperKey(a, b), NewMapperKey(b, a))
	assert.True(t, NewMapperKey(a, b).Equal(NewMapperKey(b, a)))
	assert.True(t, NewMapperKey(a, b).Contains(a))
	assert.False(t, NewMapperKey(a, a).Contains(b))

	index := map[MapperKey]int{NewMapperKey(a, b): 1}
	assert.Equal(t, 1, index[NewMapperKey(b, a)])
}

func TestMapperKey_SameNameDifferentTypes(t *testing.T) {
	first := func() reflect.Type {
		type thing struct{ A int }
		return reflect.TypeOf(thing{})
	}()
	second := func() reflect.Type {
		type thing struct{ B int }
		return reflect.TypeOf(thing{})
	}()

	require.Equal(t, first.String(), second.String())
	assert.Equal(t, NewMapperKey(first, second), NewMapperKey(second, first))
}

func TestClassMap_FieldsTowards(t *testing.T) {
	a := reflect.TypeOf(customerDTO{})
	b := reflect.TypeOf(customer{})

	cm, err := NewClassMap(a, b, []FieldMap{
		{
			Source:      MustProperty(a, "FullName"),
			Destination: MustProperty(b, "Name"),
		},
		{
			Source:      MustProperty(a, "Street"),
			Destination: MustProperty(b, "Address.Street"),
			Direction:   AToB,
		},
	})
	require.NoError(t, err)

	towardsB := cm.FieldsTowards(b)
	require.Len(t, towardsB, 2)
	assert.Equal(t, "Name", towardsB[0].Destination.Name)

	towardsA := cm.FieldsTowards(a)
	require.Len(t, towardsA, 1, "one-way field is not flipped")
	assert.Equal(t, a, towardsA[0].Destination.Owner)
	assert.Equal(t, "FullName", towardsA[0].Destination.Name)

	// stored orientation is untouched
	assert.Equal(t, a, cm.Fields[0].Source.Owner)

	assert.Nil(t, cm.FieldsTowards(reflect.TypeOf(0)))
	assert.Equal(t, b, cm.Other(a))
	assert.Nil(t, cm.Other(reflect.TypeOf(0)))
}

func TestNewClassMap_RejectsMisorientedFields(t *testing.T) {
	a := reflect.TypeOf(customerDTO{})
	b := reflect.TypeOf(customer{})

	_, err := NewClassMap(a, b, []FieldMap{{
		Source:      MustProperty(b, "Name"),
		Destination: MustProperty(a, "FullName"),
	}})
	require.Error(t, err)
}

func TestClassMap_Direction(t *testing.T) {
	a := reflect.TypeOf(customerDTO{})
	b := reflect.TypeOf(customer{})

	cm, err := NewClassMap(a, b, []FieldMap{{
		Source:      MustProperty(a, "FullName"),
		Destination: MustProperty(b, "Name"),
	}})
	require.NoError(t, err)

	cm.Direction = AToB

	assert.True(t, cm.Allows(b))
	assert.False(t, cm.Allows(a))
	assert.Len(t, cm.FieldsTowards(b), 1)
	assert.Nil(t, cm.FieldsTowards(a))
	assert.False(t, cm.Allows(reflect.TypeOf(0)))
}

func TestProperty_NilChecks(t *testing.T) {
	owner := reflect.TypeOf(customerDTO{})

	assert.Empty(t, MustProperty(owner, "FullName").NilChecks())

	c := reflect.TypeOf(customer{})
	assert.Equal(t, []string{"Address"}, MustProperty(c, "Address.Street").NilChecks())
	assert.Equal(t, []string{"Address", "Address.City"}, MustProperty(c, "Address.City").NilChecks())
	assert.Equal(t, []string{"Tags"}, MustProperty(c, "Tags").NilChecks())
}
