package program

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/dave/jennifer/jen"

	"objectfactory/internal/classify"
	"objectfactory/internal/common"
)

const (
	runtimePkg = "objectfactory/internal/compile"
	factoryPkg = "objectfactory/internal/factory"
)

// Render prints p as Go source. The output documents what the compiled
// factory does; helpers such as mapValue stand for runtime operations.
func Render(p *Program) (string, error) {
	f := jen.NewFile("generated")
	f.HeaderComment("Code generated by objectfactory. DO NOT EDIT.")

	name := FuncName(p.Target)

	f.Commentf("%s creates %s from any supported source value.", name, p.Target)
	f.Func().Id(name).Params(
		jen.Id("rt").Qual(runtimePkg, "Runtime"),
		jen.Id("source").Any(),
	).Params(jen.Any(), jen.Error()).BlockFunc(func(g *jen.Group) {
		for _, n := range p.Nodes {
			renderNode(g, n)
		}
	})

	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return "", fmt.Errorf("rendering program for %s: %w", p.Target, err)
	}

	return buf.String(), nil
}

// FuncName returns the name of the rendered factory function for target,
// such as "createWarehouseCustomer".
func FuncName(target reflect.Type) string {
	base := common.Deref(target)
	name := common.PkgAlias(base.PkgPath()) + "_" + base.Name()

	var b strings.Builder

	b.WriteString("create")

	upper := true

	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}

		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}

		b.WriteRune(r)
	}

	return b.String()
}

func renderNode(g *jen.Group, n Node) {
	switch n := n.(type) {
	case NullInputGuard:
		g.If(jen.Id("source").Op("==").Nil()).Block(
			jen.Return(jen.Nil(), jen.Qual(factoryPkg, "ErrInvalidArgument")),
		)
	case *Branch:
		renderBranch(g, n)
	case DeclareLocal:
		g.Var().Id(n.Name).Add(typeCode(n.Type))
	case *IfNotNil:
		checks := n.Property.NilChecks()
		conds := make([]jen.Code, len(checks))

		for i, c := range checks {
			conds[i] = selector(c).Op("!=").Nil()
		}

		g.If(jen.Add(joinAnd(conds))).BlockFunc(func(inner *jen.Group) {
			for _, child := range n.Body {
				renderNode(inner, child)
			}
		})
	case Assign:
		renderAssign(g, n)
	case Construct:
		renderConstruct(g, n)
	case UnsupportedSource:
		g.Return(jen.Nil(), jen.Qual(factoryPkg, "UnsupportedSource").Call(jen.Id("source")))
	}
}

func renderBranch(g *jen.Group, b *Branch) {
	if b.Source.Kind() == reflect.Interface {
		g.Comment("matches any value implementing " + b.Source.String())
	} else {
		g.Comment("matches " + b.Source.String() + " and non-nil *" + b.Source.String())
	}

	g.If(
		jen.List(jen.Id("src"), jen.Id("ok")).Op(":=").Id("as").Types(typeCode(b.Source)).Call(jen.Id("source")),
		jen.Id("ok"),
	).BlockFunc(func(inner *jen.Group) {
		inner.Var().Id("err").Error()

		for _, n := range b.Body {
			renderNode(inner, n)
		}
	})
}

func renderAssign(g *jen.Group, a Assign) {
	value := selector(a.Source.Expression)

	switch a.Strategy {
	case classify.Immutable:
		g.Id(a.Local).Op("=").Add(value)
	case classify.WrapperToPrimitive:
		g.Id(a.Local).Op("=").Op("*").Add(value)
	case classify.PrimitiveToWrapper:
		g.Id(a.Local).Op("=").Id("ptrTo").Call(value)
	case classify.Array:
		fallible(g, a.Local, jen.Id("copyArray").Call(jen.Id("rt"), jen.Id(a.Local).Index(jen.Empty(), jen.Empty()), value))
	case classify.Collection:
		fallible(g, a.Local, jen.Id("mapCollection").Call(jen.Id("rt"), value))
	case classify.Converter:
		g.Commentf("converter %s -> %s", a.Converter.Source(), a.Converter.Destination())
		fallible(g, a.Local, jen.Id("convert").Call(value))
	case classify.Object:
		fallible(g, a.Local, jen.Id("mapValue").Call(jen.Id("rt"), value))
	}
}

// fallible renders "if local, err = call; err != nil { return nil, err }".
func fallible(g *jen.Group, local string, call *jen.Statement) {
	g.If(
		jen.List(jen.Id(local), jen.Id("err")).Op("=").Add(call),
		jen.Id("err").Op("!=").Nil(),
	).Block(jen.Return(jen.Nil(), jen.Id("err")))
}

func renderConstruct(g *jen.Group, c Construct) {
	args := make([]jen.Code, len(c.Args))
	for i, a := range c.Args {
		args[i] = jen.Id(a)
	}

	ctor := c.Constructor
	pkgPath, ident, ok := ctor.Qualified()

	if ctor.IsLiteral() {
		fields := jen.Dict{}
		for i, a := range c.Args {
			fields[jen.Id(ctor.ParamNames[i])] = jen.Id(a)
		}

		g.Return(typeCode(ctor.Target).Values(fields), jen.Nil())

		return
	}

	var fn *jen.Statement
	if ok {
		fn = jen.Qual(pkgPath, ident)
	} else {
		g.Comment(ctor.Name)
		fn = jen.Id("constructor")
	}

	if ctor.Fallible() {
		g.Return(fn.Call(args...))
	} else {
		g.Return(fn.Call(args...), jen.Nil())
	}
}

// selector renders "src.A.B" for the dotted path expr.
func selector(expr string) *jen.Statement {
	s := jen.Id("src")
	for _, seg := range strings.Split(expr, ".") {
		s = s.Dot(seg)
	}

	return s
}

func joinAnd(conds []jen.Code) *jen.Statement {
	s := jen.Add(conds[0])
	for _, c := range conds[1:] {
		s = s.Op("&&").Add(c)
	}

	return s
}

// typeCode renders t as a type expression.
func typeCode(t reflect.Type) *jen.Statement {
	if t.Name() != "" {
		if t.PkgPath() == "" {
			return jen.Id(t.Name())
		}

		return jen.Qual(t.PkgPath(), t.Name())
	}

	switch t.Kind() {
	case reflect.Ptr:
		return jen.Op("*").Add(typeCode(t.Elem()))
	case reflect.Slice:
		return jen.Index().Add(typeCode(t.Elem()))
	case reflect.Array:
		return jen.Index(jen.Lit(t.Len())).Add(typeCode(t.Elem()))
	case reflect.Map:
		return jen.Map(typeCode(t.Key())).Add(typeCode(t.Elem()))
	case reflect.Interface:
		if t.NumMethod() == 0 {
			return jen.Any()
		}

		return jen.Id(t.String())
	default:
		return jen.Id(t.String())
	}
}
