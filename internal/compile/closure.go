package compile

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"objectfactory/internal/classify"
	"objectfactory/internal/common"
	"objectfactory/internal/constructor"
	"objectfactory/internal/convert"
	"objectfactory/internal/metadata"
	"objectfactory/internal/program"
)

// ClosureCompiler compiles programs into trees of pre-bound closures.
// It is safe for concurrent use.
type ClosureCompiler struct {
	compiled atomic.Int64

	mu      sync.Mutex
	scratch map[*program.Program]*scratch
}

// scratch is what one compilation keeps until the program is released.
type scratch struct {
	elements map[convert.Pair]valueFunc
}

// NewClosureCompiler returns an empty compiler.
func NewClosureCompiler() *ClosureCompiler {
	return &ClosureCompiler{scratch: map[*program.Program]*scratch{}}
}

// Compile validates p and binds every node to a closure.
func (c *ClosureCompiler) Compile(p *program.Program) (Callable, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil program", ErrInvalidProgram)
	}

	cp := &compilation{scratch: c.scratchFor(p)}
	branches := cp.program(p)

	if len(cp.problems) > 0 {
		return nil, &Error{Target: p.Target, Problems: cp.problems}
	}

	c.compiled.Add(1)

	return func(rt Runtime, source any) (any, error) {
		if source == nil {
			return nil, ErrNullInput
		}

		rv := reflect.ValueOf(source)
		if rv.Kind() == reflect.Ptr && rv.IsNil() {
			return nil, ErrNullInput
		}

		for _, b := range branches {
			if v, ok := b.match(rv); ok {
				return b.run(rt, v)
			}
		}

		return nil, ErrNoBranch
	}, nil
}

// Release drops the scratch state kept for p.
func (c *ClosureCompiler) Release(p *program.Program) {
	c.mu.Lock()
	delete(c.scratch, p)
	c.mu.Unlock()
}

// Compiled returns the number of programs compiled successfully.
func (c *ClosureCompiler) Compiled() int64 {
	return c.compiled.Load()
}

// Pending returns the number of programs compiled but not yet released.
func (c *ClosureCompiler) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.scratch)
}

func (c *ClosureCompiler) scratchFor(p *program.Program) *scratch {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.scratch[p]
	if !ok {
		s = &scratch{elements: map[convert.Pair]valueFunc{}}
		c.scratch[p] = s
	}

	return s
}

type (
	valueFunc func(rt Runtime, v reflect.Value) (reflect.Value, error)
	step      func(rt Runtime, f *frame) error
)

// frame holds the source and the locals of one call.
type frame struct {
	src    reflect.Value
	locals []reflect.Value
}

// branch is one compiled source type branch. Interface branches accept any
// implementation; they never carry property steps since properties are
// struct fields.
type branch struct {
	source reflect.Type
	iface  bool
	types  []reflect.Type
	steps  []step
	ctor   *constructor.Constructor
	args   []int
}

// match reports whether v is accepted and returns the value to read from.
func (b *branch) match(v reflect.Value) (reflect.Value, bool) {
	t := v.Type()

	if b.iface {
		return v, t.Implements(b.source)
	}

	switch {
	case t == b.source:
		return v, true
	case t.Kind() == reflect.Ptr && t.Elem() == b.source && !v.IsNil():
		return v.Elem(), true
	default:
		return reflect.Value{}, false
	}
}

func (b *branch) run(rt Runtime, src reflect.Value) (any, error) {
	f := &frame{src: src, locals: make([]reflect.Value, len(b.types))}
	for i, t := range b.types {
		f.locals[i] = reflect.New(t).Elem()
	}

	for _, s := range b.steps {
		if err := s(rt, f); err != nil {
			return nil, err
		}
	}

	args := make([]reflect.Value, len(b.args))
	for i, slot := range b.args {
		args[i] = f.locals[slot]
	}

	out, err := b.ctor.Invoke(args)
	if err != nil {
		return nil, err
	}

	return out.Interface(), nil
}

type compilation struct {
	scratch  *scratch
	problems []error
}

func (cp *compilation) fail(format string, args ...any) {
	cp.problems = append(cp.problems, fmt.Errorf(format, args...))
}

func (cp *compilation) program(p *program.Program) []*branch {
	nodes := p.Nodes

	if len(nodes) == 0 {
		cp.fail("empty program")
		return nil
	}

	if _, ok := nodes[0].(program.NullInputGuard); ok {
		nodes = nodes[1:]
	} else {
		cp.fail("null input guard must be the first node")
	}

	if n := len(nodes); n > 0 {
		if _, ok := nodes[n-1].(program.UnsupportedSource); ok {
			nodes = nodes[:n-1]
		} else {
			cp.fail("unsupported source fallback must be the last node")
		}
	} else {
		cp.fail("unsupported source fallback must be the last node")
	}

	var branches []*branch

	seen := map[reflect.Type]bool{}

	for i, n := range nodes {
		b, ok := n.(*program.Branch)
		if !ok {
			cp.fail("node %d: %T outside a branch", i+1, n)
			continue
		}

		if seen[b.Source] {
			cp.fail("branch %s appears twice", b.Source)
			continue
		}

		seen[b.Source] = true

		if compiled := cp.branch(b); compiled != nil {
			branches = append(branches, compiled)
		}
	}

	return branches
}

func (cp *compilation) branch(b *program.Branch) *branch {
	if b.Source == nil {
		cp.fail("branch without a source type")
		return nil
	}

	before := len(cp.problems)
	bc := &branchCompiler{
		compilation: cp,
		branch:      &branch{source: b.Source, iface: b.Source.Kind() == reflect.Interface},
		slots:       map[string]int{},
	}

	body := b.Body
	if len(body) == 0 {
		cp.fail("branch %s: no constructor call", b.Source)
		return nil
	}

	last, ok := body[len(body)-1].(program.Construct)
	if ok {
		body = body[:len(body)-1]
	} else {
		cp.fail("branch %s must end with a constructor call", b.Source)
	}

	bc.branch.steps = bc.nodes(body, true)

	if ok {
		bc.construct(last)
	}

	if len(cp.problems) > before {
		return nil
	}

	return bc.branch
}

type branchCompiler struct {
	*compilation
	branch *branch
	slots  map[string]int
}

func (bc *branchCompiler) nodes(nodes []program.Node, root bool) []step {
	var steps []step

	for _, n := range nodes {
		switch n := n.(type) {
		case program.DeclareLocal:
			bc.declare(n, root)
		case *program.IfNotNil:
			if s := bc.guard(n); s != nil {
				steps = append(steps, s)
			}
		case program.Assign:
			if s := bc.assign(n); s != nil {
				steps = append(steps, s)
			}
		case program.Construct:
			bc.fail("branch %s: constructor call must be the last node of the branch", bc.branch.source)
		default:
			bc.fail("branch %s: %T is not allowed inside a branch", bc.branch.source, n)
		}
	}

	return steps
}

func (bc *branchCompiler) declare(d program.DeclareLocal, root bool) {
	switch {
	case !root:
		bc.fail("local %s declared inside a guard", d.Name)
	case d.Type == nil:
		bc.fail("local %s has no type", d.Name)
	default:
		if _, dup := bc.slots[d.Name]; dup {
			bc.fail("local %s declared twice", d.Name)
			return
		}

		bc.slots[d.Name] = len(bc.branch.types)
		bc.branch.types = append(bc.branch.types, d.Type)
	}
}

func (bc *branchCompiler) guard(g *program.IfNotNil) step {
	if !bc.owns(g.Property) {
		return nil
	}

	inner := bc.nodes(g.Body, false)
	prop := g.Property

	return func(rt Runtime, f *frame) error {
		if _, ok := prop.Get(f.src); !ok {
			return nil
		}

		for _, s := range inner {
			if err := s(rt, f); err != nil {
				return err
			}
		}

		return nil
	}
}

func (bc *branchCompiler) owns(p metadata.Property) bool {
	switch {
	case p.Type == nil || common.Deref(p.Owner) != common.Deref(bc.branch.source):
		bc.fail("%s is not a property of %s", p, bc.branch.source)
	case !p.Exported():
		bc.fail("%s is not exported", p)
	default:
		return true
	}

	return false
}

func (bc *branchCompiler) assign(a program.Assign) step {
	slot, ok := bc.slots[a.Local]
	if !ok {
		bc.fail("local %s used before its declaration", a.Local)
		return nil
	}

	if !bc.owns(a.Source) {
		return nil
	}

	fn, err := bc.strategy(a, bc.branch.types[slot])
	if err != nil {
		bc.fail("%s: %w", a.Local, err)
		return nil
	}

	prop := a.Source

	return func(rt Runtime, f *frame) error {
		v, ok := prop.Get(f.src)
		if !ok {
			return nil
		}

		out, err := fn(rt, v)
		if err != nil {
			return fmt.Errorf("%s: %w", prop, err)
		}

		f.locals[slot].Set(out)

		return nil
	}
}

func (bc *branchCompiler) construct(c program.Construct) {
	ctor := c.Constructor

	switch {
	case ctor == nil:
		bc.fail("branch %s: nil constructor", bc.branch.source)
		return
	case len(c.Args) != ctor.Arity():
		bc.fail("%s takes %d arguments, got %d", ctor.Name, ctor.Arity(), len(c.Args))
		return
	}

	args := make([]int, len(c.Args))

	for i, name := range c.Args {
		slot, ok := bc.slots[name]
		if !ok {
			bc.fail("%s: argument %d: local %s not declared", ctor.Name, i, name)
			continue
		}

		if t := bc.branch.types[slot]; !t.AssignableTo(ctor.ParamTypes[i]) {
			bc.fail("%s: argument %d: %s is %s, parameter is %s", ctor.Name, i, name, t, ctor.ParamTypes[i])
		}

		args[i] = slot
	}

	bc.branch.ctor = ctor
	bc.branch.args = args
}
