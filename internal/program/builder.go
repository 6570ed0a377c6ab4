package program

import (
	"errors"
	"fmt"
	"go/token"
	"reflect"

	"objectfactory/internal/classify"
	"objectfactory/internal/common"
	"objectfactory/internal/constructor"
	"objectfactory/internal/convert"
	"objectfactory/internal/metadata"
)

// Builder emits a Program in order: guard, branches, fallback.
type Builder struct {
	target   reflect.Type
	nodes    []Node
	guarded  bool
	fallback bool
	open     *Block
	errs     []error
}

// NewBuilder starts an empty program for target.
func NewBuilder(target reflect.Type) *Builder {
	return &Builder{target: target}
}

// GuardNullInput emits the null-input guard. It must come first.
func (b *Builder) GuardNullInput() *Builder {
	if b.guarded || len(b.nodes) > 0 {
		b.errs = append(b.errs, errors.New("null input guard must be emitted once, first"))
		return b
	}

	b.guarded = true
	b.nodes = append(b.nodes, NullInputGuard{})

	return b
}

// BeginSourceTypeBranch opens the branch for values of src.
func (b *Builder) BeginSourceTypeBranch(src reflect.Type) *Block {
	switch {
	case b.open != nil:
		b.errs = append(b.errs, fmt.Errorf("branch %s opened before branch %s was ended", src, b.open.scope.source))
	case b.fallback:
		b.errs = append(b.errs, fmt.Errorf("branch %s opened after the fallback", src))
	}

	blk := &Block{
		builder: b,
		scope:   &scope{source: src, locals: map[string]reflect.Type{}},
		body:    new([]Node),
	}
	b.open = blk

	return blk
}

// EmitUnsupportedSourceFallback emits the final fallback.
func (b *Builder) EmitUnsupportedSourceFallback() *Builder {
	if b.fallback {
		b.errs = append(b.errs, errors.New("fallback emitted twice"))
		return b
	}

	b.fallback = true
	b.nodes = append(b.nodes, UnsupportedSource{})

	return b
}

// Program returns the emitted program, or the structural errors met while
// emitting it.
func (b *Builder) Program() (*Program, error) {
	errs := append([]error(nil), b.errs...)

	if b.open != nil {
		errs = append(errs, fmt.Errorf("branch %s was not ended", b.open.scope.source))
	}

	if !b.guarded {
		errs = append(errs, errors.New("missing null input guard"))
	}

	if !b.fallback {
		errs = append(errs, errors.New("missing unsupported source fallback"))
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("program for %s: %w", b.target, errors.Join(errs...))
	}

	return &Program{Target: b.target, Nodes: append([]Node(nil), b.nodes...)}, nil
}

// scope is shared by every block of one branch.
type scope struct {
	source      reflect.Type
	locals      map[string]reflect.Type
	constructed bool
}

// Block is the body of a branch or of a nil guard inside it.
type Block struct {
	builder *Builder
	parent  *Block
	scope   *scope
	body    *[]Node
}

// DeclareLocal declares a branch local of type t. Locals are declared in
// the branch body, before any guard, and names are unique per branch.
func (blk *Block) DeclareLocal(t reflect.Type, name string) error {
	switch {
	case blk.parent != nil:
		return fmt.Errorf("local %s: locals must be declared in the branch body", name)
	case !token.IsIdentifier(name) || token.IsKeyword(name):
		return fmt.Errorf("local %q is not a valid identifier", name)
	case t == nil:
		return fmt.Errorf("local %s: nil type", name)
	}

	if _, dup := blk.scope.locals[name]; dup {
		return fmt.Errorf("local %s declared twice", name)
	}

	blk.scope.locals[name] = t
	blk.append(DeclareLocal{Name: name, Type: t})

	return nil
}

// GuardNotNull opens a nested block that only runs when p yields a value.
func (blk *Block) GuardNotNull(p metadata.Property) *Block {
	guard := &IfNotNil{Property: p}
	blk.append(guard)

	return &Block{
		builder: blk.builder,
		parent:  blk,
		scope:   blk.scope,
		body:    &guard.Body,
	}
}

// End closes a guard block and returns its parent. On the branch body it
// is a no-op returning the body itself.
func (blk *Block) End() *Block {
	if blk.parent == nil {
		return blk
	}

	return blk.parent
}

// EndBranch closes any open guards and the branch itself.
func (blk *Block) EndBranch() *Builder {
	root := blk
	for root.parent != nil {
		root = root.parent
	}

	b := root.builder
	if b.open == root {
		b.open = nil
	}

	if !root.scope.constructed {
		b.errs = append(b.errs, fmt.Errorf("branch %s ends without a constructor call", root.scope.source))
	}

	b.nodes = append(b.nodes, &Branch{Source: root.scope.source, Body: *root.body})

	return b
}

// AssignImmutable shares the source value: types must be identical or assignable.
func (blk *Block) AssignImmutable(local string, src metadata.Property) error {
	dst, err := blk.prepare(local, src)
	if err != nil {
		return err
	}

	if !src.Type.AssignableTo(dst) {
		return fmt.Errorf("%s: %s is not assignable to %s", local, src.Type, dst)
	}

	return blk.emit(local, classify.Immutable, src, nil)
}

// AssignArrayCopy copies a slice or array element by element into an array local.
func (blk *Block) AssignArrayCopy(local string, src metadata.Property) error {
	dst, err := blk.prepare(local, src)
	if err != nil {
		return err
	}

	if dst.Kind() != reflect.Array {
		return fmt.Errorf("%s: array copy needs an array local, got %s", local, dst)
	}

	if k := src.Type.Kind(); k != reflect.Slice && k != reflect.Array {
		return fmt.Errorf("%s: array copy needs a slice or array source, got %s", local, src.Type)
	}

	return blk.emit(local, classify.Array, src, nil)
}

// AssignCollectionCopy builds a new slice or map from the source collection.
func (blk *Block) AssignCollectionCopy(local string, src metadata.Property) error {
	dst, err := blk.prepare(local, src)
	if err != nil {
		return err
	}

	sk := src.Type.Kind()

	switch dst.Kind() {
	case reflect.Slice:
		if sk != reflect.Slice && sk != reflect.Array {
			return fmt.Errorf("%s: slice copy needs a slice or array source, got %s", local, src.Type)
		}
	case reflect.Map:
		if sk != reflect.Map {
			return fmt.Errorf("%s: map copy needs a map source, got %s", local, src.Type)
		}
	default:
		return fmt.Errorf("%s: collection copy needs a slice or map local, got %s", local, dst)
	}

	return blk.emit(local, classify.Collection, src, nil)
}

// AssignUnboxed dereferences a pointer source.
func (blk *Block) AssignUnboxed(local string, src metadata.Property) error {
	dst, err := blk.prepare(local, src)
	if err != nil {
		return err
	}

	if src.Type.Kind() != reflect.Ptr || !src.Type.Elem().AssignableTo(dst) {
		return fmt.Errorf("%s: cannot unbox %s into %s", local, src.Type, dst)
	}

	return blk.emit(local, classify.WrapperToPrimitive, src, nil)
}

// AssignBoxed stores a pointer to a copy of the source value.
func (blk *Block) AssignBoxed(local string, src metadata.Property) error {
	dst, err := blk.prepare(local, src)
	if err != nil {
		return err
	}

	if dst.Kind() != reflect.Ptr || !src.Type.AssignableTo(dst.Elem()) {
		return fmt.Errorf("%s: cannot box %s into %s", local, src.Type, dst)
	}

	return blk.emit(local, classify.PrimitiveToWrapper, src, nil)
}

// AssignConverted runs the source value through conv.
func (blk *Block) AssignConverted(local string, src metadata.Property, conv convert.Converter) error {
	dst, err := blk.prepare(local, src)
	if err != nil {
		return err
	}

	switch {
	case conv == nil:
		return fmt.Errorf("%s: no converter", local)
	case !src.Type.AssignableTo(conv.Source()):
		return fmt.Errorf("%s: converter takes %s, source is %s", local, conv.Source(), src.Type)
	case !conv.Destination().AssignableTo(dst):
		return fmt.Errorf("%s: converter yields %s, local is %s", local, conv.Destination(), dst)
	}

	return blk.emit(local, classify.Converter, src, conv)
}

// AssignNested maps the source value through the conversion runtime.
func (blk *Block) AssignNested(local string, src metadata.Property) error {
	if _, err := blk.prepare(local, src); err != nil {
		return err
	}

	return blk.emit(local, classify.Object, src, nil)
}

// Assign dispatches to the operation for strategy.
func (blk *Block) Assign(strategy classify.Strategy, local string, src metadata.Property, conv convert.Converter) error {
	switch strategy {
	case classify.Immutable:
		return blk.AssignImmutable(local, src)
	case classify.Array:
		return blk.AssignArrayCopy(local, src)
	case classify.Collection:
		return blk.AssignCollectionCopy(local, src)
	case classify.PrimitiveToWrapper:
		return blk.AssignBoxed(local, src)
	case classify.WrapperToPrimitive:
		return blk.AssignUnboxed(local, src)
	case classify.Converter:
		return blk.AssignConverted(local, src, conv)
	case classify.Object:
		return blk.AssignNested(local, src)
	default:
		return fmt.Errorf("%s: unknown strategy %d", local, strategy)
	}
}

// EmitConstructorCall ends the branch body with a call to ctor.
func (blk *Block) EmitConstructorCall(ctor *constructor.Constructor, locals []string) error {
	switch {
	case blk.parent != nil:
		return errors.New("constructor call must be in the branch body")
	case blk.scope.constructed:
		return errors.New("branch already has a constructor call")
	case ctor == nil:
		return errors.New("nil constructor")
	case len(locals) != ctor.Arity():
		return fmt.Errorf("%s takes %d arguments, got %d", ctor.Name, ctor.Arity(), len(locals))
	}

	for i, name := range locals {
		t, ok := blk.scope.locals[name]
		if !ok {
			return fmt.Errorf("argument %d: local %s not declared", i, name)
		}

		if !t.AssignableTo(ctor.ParamTypes[i]) {
			return fmt.Errorf("argument %d: %s is %s, parameter is %s", i, name, t, ctor.ParamTypes[i])
		}
	}

	blk.scope.constructed = true
	blk.append(Construct{Constructor: ctor, Args: append([]string(nil), locals...)})

	return nil
}

// prepare checks what every assignment needs and returns the local's type.
func (blk *Block) prepare(local string, src metadata.Property) (reflect.Type, error) {
	if blk.scope.constructed {
		return nil, fmt.Errorf("%s: assignment after the constructor call", local)
	}

	dst, ok := blk.scope.locals[local]
	if !ok {
		return nil, fmt.Errorf("local %s not declared", local)
	}

	if src.Type == nil || common.Deref(src.Owner) != common.Deref(blk.scope.source) {
		return nil, fmt.Errorf("%s: %s is not a property of %s", local, src, blk.scope.source)
	}

	if !src.Exported() {
		return nil, fmt.Errorf("%s: source %s is not exported", local, src)
	}

	return dst, nil
}

func (blk *Block) emit(local string, s classify.Strategy, src metadata.Property, conv convert.Converter) error {
	blk.append(Assign{Local: local, Strategy: s, Source: src, Converter: conv})
	return nil
}

func (blk *Block) append(n Node) {
	*blk.body = append(*blk.body, n)
}
