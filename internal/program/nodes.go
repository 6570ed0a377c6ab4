package program

import (
	"reflect"

	"objectfactory/internal/classify"
	"objectfactory/internal/constructor"
	"objectfactory/internal/convert"
	"objectfactory/internal/metadata"
)

// Node is one instruction of a Program. The set of nodes is closed.
type Node interface {
	node()
}

// NullInputGuard rejects a nil source value.
type NullInputGuard struct{}

// Branch runs Body when the source value is of type Source. Concrete
// sources also match a non-nil pointer to Source; interface sources match
// any value implementing them.
type Branch struct {
	Source reflect.Type
	Body   []Node
}

// DeclareLocal introduces a branch-scoped local holding the zero value of Type.
type DeclareLocal struct {
	Name string
	Type reflect.Type
}

// IfNotNil runs Body only when every nil check of Property passes.
type IfNotNil struct {
	Property metadata.Property
	Body     []Node
}

// Assign stores the value of Source into Local using Strategy.
// Converter is set for the converter strategy only.
type Assign struct {
	Local     string
	Strategy  classify.Strategy
	Source    metadata.Property
	Converter convert.Converter
}

// Construct calls Constructor with the locals named by Args and returns the result.
type Construct struct {
	Constructor *constructor.Constructor
	Args        []string
}

// UnsupportedSource reports a source of a type no branch accepts.
type UnsupportedSource struct{}

func (NullInputGuard) node()    {}
func (*Branch) node()           {}
func (DeclareLocal) node()      {}
func (*IfNotNil) node()         {}
func (Assign) node()            {}
func (Construct) node()         {}
func (UnsupportedSource) node() {}

// Program is the complete instruction list of one target's factory.
type Program struct {
	Target reflect.Type
	Nodes  []Node
}

// Branches returns the branch nodes in order.
func (p *Program) Branches() []*Branch {
	var out []*Branch

	for _, n := range p.Nodes {
		if b, ok := n.(*Branch); ok {
			out = append(out, b)
		}
	}

	return out
}

// Sources returns the source type of every branch, in order.
func (p *Program) Sources() []reflect.Type {
	branches := p.Branches()

	out := make([]reflect.Type, len(branches))
	for i, b := range branches {
		out[i] = b.Source
	}

	return out
}
