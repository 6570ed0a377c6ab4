package compile

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"objectfactory/internal/classify"
	"objectfactory/internal/constructor"
	"objectfactory/internal/convert"
	"objectfactory/internal/metadata"
	"objectfactory/internal/paramname"
	"objectfactory/internal/program"
)

type LineDTO struct {
	SKU string
}

type Line struct {
	SKU string
}

type InnerDTO struct {
	Street string
}

type Inner struct {
	Street string
}

type PersonDTO struct {
	Name   string
	Age    string
	Tags   []string
	Scores []int
	Limits map[string]int
	Lines  []LineDTO
	Inner  *InnerDTO
	Count  *int
	Level  int
}

type Person struct {
	Name   string
	Age    int
	Tags   []string
	Scores [2]int
	Limits map[string]int64
	Lines  []Line
	Inner  Inner
	Count  int
	Level  *int
}

type Greeting struct {
	Text string
}

func NewGreeting() Greeting {
	return Greeting{Text: "hello"}
}

func NewNamedPerson(name string) (*Person, error) {
	if name == "" {
		return nil, errors.New("name is required")
	}

	return &Person{Name: name}, nil
}

var (
	dtoType    = reflect.TypeFor[PersonDTO]()
	personType = reflect.TypeFor[Person]()
)

// runtime maps the nested types used by the tests.
var runtime = RuntimeFunc(func(src any, dst reflect.Type) (any, error) {
	switch s := src.(type) {
	case InnerDTO:
		return Inner{Street: s.Street}, nil
	case LineDTO:
		return Line{SKU: s.SKU}, nil
	default:
		return nil, fmt.Errorf("cannot map %T into %s", src, dst)
	}
})

func prop(expr string) metadata.Property {
	return metadata.MustProperty(dtoType, expr)
}

func ageConverter() convert.Converter {
	return convert.Func(func(s string) (int, error) { return strconv.Atoi(s) })
}

// personProgram builds a literal-constructor program touching every strategy.
func personProgram(t *testing.T) *program.Program {
	t.Helper()

	ctor := constructor.Literal(personType)
	require.NotNil(t, ctor)

	b := program.NewBuilder(personType).GuardNullInput()
	blk := b.BeginSourceTypeBranch(dtoType)

	locals := make([]string, ctor.Arity())
	for i, name := range ctor.ParamNames {
		locals[i] = paramname.LowerCamel(name)
		require.NoError(t, blk.DeclareLocal(ctor.ParamTypes[i], locals[i]))
	}

	require.NoError(t, blk.AssignImmutable("name", prop("Name")))
	require.NoError(t, blk.AssignConverted("age", prop("Age"), ageConverter()))
	require.NoError(t, blk.GuardNotNull(prop("Tags")).AssignCollectionCopy("tags", prop("Tags")))
	require.NoError(t, blk.GuardNotNull(prop("Scores")).AssignArrayCopy("scores", prop("Scores")))
	require.NoError(t, blk.GuardNotNull(prop("Limits")).AssignCollectionCopy("limits", prop("Limits")))
	require.NoError(t, blk.GuardNotNull(prop("Lines")).AssignCollectionCopy("lines", prop("Lines")))
	require.NoError(t, blk.GuardNotNull(prop("Inner")).AssignNested("inner", prop("Inner")))
	require.NoError(t, blk.GuardNotNull(prop("Count")).AssignUnboxed("count", prop("Count")))
	require.NoError(t, blk.AssignBoxed("level", prop("Level")))
	require.NoError(t, blk.EmitConstructorCall(ctor, locals))
	blk.EndBranch().EmitUnsupportedSourceFallback()

	p, err := b.Program()
	require.NoError(t, err)

	return p
}

func compilePerson(t *testing.T) Callable {
	t.Helper()

	p := personProgram(t)

	fn, err := NewClosureCompiler().Compile(p)
	require.NoError(t, err, "sources %v", p.Sources())

	return fn
}

func TestCompile_AllStrategies(t *testing.T) {
	fn := compilePerson(t)
	count := 7

	out, err := fn(runtime, &PersonDTO{
		Name:   "Ada",
		Age:    "36",
		Tags:   []string{"math"},
		Scores: []int{1, 2, 3},
		Limits: map[string]int{"daily": 5},
		Lines:  []LineDTO{{SKU: "A-1"}},
		Inner:  &InnerDTO{Street: "Main"},
		Count:  &count,
		Level:  3,
	})
	require.NoError(t, err)

	p, ok := out.(Person)
	require.True(t, ok, spew.Sdump(out))
	assert.Equal(t, "Ada", p.Name)
	assert.Equal(t, 36, p.Age)
	assert.Equal(t, []string{"math"}, p.Tags)
	assert.Equal(t, [2]int{1, 2}, p.Scores)
	assert.Equal(t, map[string]int64{"daily": 5}, p.Limits)
	assert.Equal(t, []Line{{SKU: "A-1"}}, p.Lines)
	assert.Equal(t, Inner{Street: "Main"}, p.Inner)
	assert.Equal(t, 7, p.Count)
	require.NotNil(t, p.Level)
	assert.Equal(t, 3, *p.Level)
}

func TestCompile_CopiesCollections(t *testing.T) {
	fn := compilePerson(t)
	dto := PersonDTO{Age: "1", Tags: []string{"a"}}

	out, err := fn(runtime, dto)
	require.NoError(t, err)

	dto.Tags[0] = "changed"
	assert.Equal(t, []string{"a"}, out.(Person).Tags)
}

func TestCompile_NilPropertiesKeepZeroValues(t *testing.T) {
	fn := compilePerson(t)

	out, err := fn(runtime, PersonDTO{Name: "Bob", Age: "2"})
	require.NoError(t, err)

	p := out.(Person)
	assert.Nil(t, p.Tags)
	assert.Nil(t, p.Limits)
	assert.Equal(t, Inner{}, p.Inner)
	assert.Zero(t, p.Count)
	assert.Equal(t, [2]int{}, p.Scores)
}

func TestCompile_NullAndUnsupportedInput(t *testing.T) {
	fn := compilePerson(t)

	_, err := fn(runtime, nil)
	require.ErrorIs(t, err, ErrNullInput)

	_, err = fn(runtime, (*PersonDTO)(nil))
	require.ErrorIs(t, err, ErrNullInput)

	_, err = fn(runtime, 42)
	require.ErrorIs(t, err, ErrNoBranch)

	_, err = fn(runtime, &Person{})
	require.ErrorIs(t, err, ErrNoBranch)
}

func TestCompile_PropagatesErrors(t *testing.T) {
	fn := compilePerson(t)

	_, err := fn(runtime, PersonDTO{Age: "not a number"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PersonDTO.Age")

	failing := RuntimeFunc(func(any, reflect.Type) (any, error) {
		return nil, errors.New("boom")
	})

	_, err = fn(failing, PersonDTO{Age: "1", Inner: &InnerDTO{}})
	require.ErrorContains(t, err, "boom")
}

func TestCompile_FallibleConstructor(t *testing.T) {
	ctor, err := constructor.FromFunc(NewNamedPerson, paramname.FieldOrder{})
	require.NoError(t, err)

	b := program.NewBuilder(personType).GuardNullInput()
	blk := b.BeginSourceTypeBranch(dtoType)
	require.NoError(t, blk.DeclareLocal(reflect.TypeFor[string](), "name"))
	require.NoError(t, blk.AssignImmutable("name", prop("Name")))
	require.NoError(t, blk.EmitConstructorCall(ctor, []string{"name"}))
	blk.EndBranch().EmitUnsupportedSourceFallback()

	p, err := b.Program()
	require.NoError(t, err)

	fn, err := NewClosureCompiler().Compile(p)
	require.NoError(t, err)

	out, err := fn(runtime, PersonDTO{Name: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, Person{Name: "Ada"}, out)

	_, err = fn(runtime, PersonDTO{})
	require.ErrorContains(t, err, "name is required")
}

func TestCompile_InterfaceBranch(t *testing.T) {
	none := paramname.ResolverFunc(func(reflect.Value) ([]string, error) { return nil, nil })
	ctor, err := constructor.FromFunc(NewGreeting, none)
	require.NoError(t, err)

	stringer := reflect.TypeFor[fmt.Stringer]()

	b := program.NewBuilder(reflect.TypeFor[Greeting]()).GuardNullInput()
	blk := b.BeginSourceTypeBranch(stringer)
	require.NoError(t, blk.EmitConstructorCall(ctor, nil))
	blk.EndBranch().EmitUnsupportedSourceFallback()

	p, err := b.Program()
	require.NoError(t, err)

	fn, err := NewClosureCompiler().Compile(p)
	require.NoError(t, err)

	out, err := fn(nil, classify.Converter)
	require.NoError(t, err)
	assert.Equal(t, Greeting{Text: "hello"}, out)

	_, err = fn(nil, struct{}{})
	require.ErrorIs(t, err, ErrNoBranch)
}

func TestCompile_InvalidPrograms(t *testing.T) {
	ctor := constructor.Literal(reflect.TypeFor[Line]())
	lineDTO := reflect.TypeFor[LineDTO]()
	sku := metadata.MustProperty(lineDTO, "SKU")
	str := reflect.TypeFor[string]()
	target := reflect.TypeFor[Line]()

	tests := []struct {
		name    string
		nodes   []program.Node
		problem string
	}{
		{
			name:    "empty",
			problem: "empty program",
		},
		{
			name:    "missing guard",
			nodes:   []program.Node{program.UnsupportedSource{}},
			problem: "null input guard",
		},
		{
			name:    "missing fallback",
			nodes:   []program.Node{program.NullInputGuard{}},
			problem: "fallback",
		},
		{
			name: "branch without constructor",
			nodes: []program.Node{
				program.NullInputGuard{},
				&program.Branch{Source: lineDTO, Body: []program.Node{program.DeclareLocal{Name: "sku", Type: str}}},
				program.UnsupportedSource{},
			},
			problem: "must end with a constructor call",
		},
		{
			name: "undeclared local",
			nodes: []program.Node{
				program.NullInputGuard{},
				&program.Branch{Source: lineDTO, Body: []program.Node{
					program.Assign{Local: "sku", Strategy: classify.Immutable, Source: sku},
					program.Construct{Constructor: ctor, Args: []string{"sku"}},
				}},
				program.UnsupportedSource{},
			},
			problem: "before its declaration",
		},
		{
			name: "node after constructor",
			nodes: []program.Node{
				program.NullInputGuard{},
				&program.Branch{Source: lineDTO, Body: []program.Node{
					program.DeclareLocal{Name: "sku", Type: str},
					program.Construct{Constructor: ctor, Args: []string{"sku"}},
					program.Assign{Local: "sku", Strategy: classify.Immutable, Source: sku},
				}},
				program.UnsupportedSource{},
			},
			problem: "must end with a constructor call",
		},
		{
			name: "argument type mismatch",
			nodes: []program.Node{
				program.NullInputGuard{},
				&program.Branch{Source: lineDTO, Body: []program.Node{
					program.DeclareLocal{Name: "sku", Type: reflect.TypeFor[int]()},
					program.Construct{Constructor: ctor, Args: []string{"sku"}},
				}},
				program.UnsupportedSource{},
			},
			problem: "parameter is string",
		},
		{
			name: "duplicate branch",
			nodes: []program.Node{
				program.NullInputGuard{},
				&program.Branch{Source: lineDTO, Body: []program.Node{
					program.DeclareLocal{Name: "sku", Type: str},
					program.Construct{Constructor: ctor, Args: []string{"sku"}},
				}},
				&program.Branch{Source: lineDTO, Body: []program.Node{
					program.DeclareLocal{Name: "sku", Type: str},
					program.Construct{Constructor: ctor, Args: []string{"sku"}},
				}},
				program.UnsupportedSource{},
			},
			problem: "appears twice",
		},
		{
			name: "foreign property",
			nodes: []program.Node{
				program.NullInputGuard{},
				&program.Branch{Source: lineDTO, Body: []program.Node{
					program.DeclareLocal{Name: "sku", Type: str},
					program.Assign{Local: "sku", Strategy: classify.Immutable, Source: prop("Name")},
					program.Construct{Constructor: ctor, Args: []string{"sku"}},
				}},
				program.UnsupportedSource{},
			},
			problem: "is not a property of",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClosureCompiler()

			_, err := c.Compile(&program.Program{Target: target, Nodes: tt.nodes})
			require.ErrorIs(t, err, ErrInvalidProgram)

			var perr *Error
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, target, perr.Target)
			assert.Contains(t, err.Error(), tt.problem)
			assert.Zero(t, c.Compiled())
		})
	}
}

func TestClosureCompiler_ReleaseAndCount(t *testing.T) {
	c := NewClosureCompiler()
	p := personProgram(t)

	_, err := c.Compile(p)
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.Compiled())
	assert.Equal(t, 1, c.Pending())

	c.Release(p)
	assert.Zero(t, c.Pending())

	_, err = c.Compile(nil)
	require.ErrorIs(t, err, ErrInvalidProgram)
}
