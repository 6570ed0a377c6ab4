package factory

import (
	"errors"
	"fmt"
	"go/token"
	"reflect"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"objectfactory/internal/classify"
	"objectfactory/internal/compile"
	"objectfactory/internal/constructor"
	"objectfactory/internal/convert"
	"objectfactory/internal/diagnostic"
	"objectfactory/internal/metadata"
	"objectfactory/internal/paramname"
	"objectfactory/internal/program"
)

// Metadata provides the class maps a factory is generated from.
type Metadata interface {
	MappedSourceTypes(target reflect.Type) []reflect.Type
	ClassMap(a, b reflect.Type) (*metadata.ClassMap, bool)
}

// Converters finds registered converters by type pair.
type Converters interface {
	classify.ConverterLookup
}

// Generator builds factories. All fields but Logger are required.
type Generator struct {
	Metadata     Metadata
	Converters   Converters
	Constructors constructor.Strategy
	Backend      compile.Backend
	Logger       *zap.Logger
	// Strict turns per-field emission problems into build errors.
	Strict bool
}

// reserved names are used by the rendered program itself.
var reserved = map[string]bool{
	"src":    true,
	"source": true,
	"rt":     true,
	"err":    true,
	"ok":     true,
}

// Build generates, renders and compiles the factory for target and binds
// it to rt. Source types without a usable constructor are skipped with a
// warning; a factory without any branch is still built.
func (g *Generator) Build(target reflect.Type, rt compile.Runtime) (*Generated, error) {
	if target == nil {
		return nil, fmt.Errorf("%w: nil target type", ErrBuild)
	}

	log := g.logger().With(zap.Stringer("target", target))

	var diags diagnostic.Diagnostics

	b := program.NewBuilder(target).GuardNullInput()

	var (
		sources []reflect.Type
		failed  bool
	)

	for _, src := range OrderSources(g.Metadata.MappedSourceTypes(target)) {
		cm, ok := g.Metadata.ClassMap(src, target)
		if !ok {
			continue
		}

		binding, err := g.Constructors.Pick(cm, target)
		if err != nil {
			diags.Add(noConstructor(src, target, err))
			log.Warn("skipping source type without a usable constructor",
				zap.Stringer("source", src), zap.Error(err))

			continue
		}

		if !g.emitBranch(b, src, target, binding, &diags, log) {
			failed = true
		}

		sources = append(sources, src)
	}

	if len(sources) == 0 {
		diags.AddWarning(diagnostic.CodeNoBranches,
			"no source type can be converted; every call will report an unsupported source",
			target.String(), "")
		log.Warn("factory has no branches")
	}

	b.EmitUnsupportedSourceFallback()

	p, err := b.Program()
	if err != nil {
		return nil, &BuildError{Target: target, Diagnostics: diags, Err: err}
	}

	text, err := program.Render(p)
	if err != nil {
		diags.AddWarning(diagnostic.CodeRender, err.Error(), target.String(), "")
		log.Warn("rendering program", zap.Error(err))
	}

	if failed {
		return nil, &BuildError{Target: target, Program: text, Diagnostics: diags, Err: diags.Error()}
	}

	defer g.Backend.Release(p)

	call, err := g.Backend.Compile(p)
	if err != nil {
		diags.AddError(diagnostic.CodeCompile, err.Error(), target.String(), "")
		log.Error("compiling factory", zap.Error(err), zap.String("program", text))

		return nil, &BuildError{Target: target, Program: text, Diagnostics: diags, Err: err}
	}

	diags.AddInfo(diagnostic.CodeBuilt, fmt.Sprintf("built with %d branches", len(sources)), target.String(), "")
	log.Debug("factory built", zap.Int("branches", len(sources)))

	return &Generated{
		target:  target,
		call:    call,
		rt:      rt,
		program: text,
		sources: sources,
		diags:   diags,
	}, nil
}

// emitBranch emits the branch for src. It reports false when a field
// problem was recorded as an error.
func (g *Generator) emitBranch(
	b *program.Builder,
	src, target reflect.Type,
	binding *constructor.Binding,
	diags *diagnostic.Diagnostics,
	log *zap.Logger,
) bool {
	subject := src.String() + " -> " + target.String()
	ctor := binding.Constructor
	locals := LocalNames(ctor.ParamNames)
	ok := true

	problem := func(field string, err error) {
		if g.Strict {
			diags.AddError(diagnostic.CodeFieldEmitErr, err.Error(), subject, field)
			ok = false

			return
		}

		diags.AddWarning(diagnostic.CodeFieldEmit, err.Error()+"; the parameter keeps its zero value", subject, field)
		log.Warn("field left at its zero value", zap.String("source", subject), zap.String("field", field), zap.Error(err))
	}

	blk := b.BeginSourceTypeBranch(src)

	for i, name := range locals {
		if err := blk.DeclareLocal(ctor.ParamTypes[i], name); err != nil {
			problem(ctor.ParamNames[i], err)
		}
	}

	for i, fm := range binding.Fields {
		strategy := classify.Classify(fm, g.Converters)

		var conv convert.Converter
		if strategy == classify.Converter {
			conv, _ = g.Converters.Lookup(fm.Source.Type, fm.Destination.Type)
		}

		into := blk
		if fm.Source.Nullable() {
			into = blk.GuardNotNull(fm.Source)
		}

		if err := into.Assign(strategy, locals[i], fm.Source, conv); err != nil {
			problem(fm.Source.Expression, fmt.Errorf("%s: %w", strategy, err))
		}
	}

	if err := blk.EmitConstructorCall(ctor, locals); err != nil {
		diags.AddError(diagnostic.CodeFieldEmitErr, err.Error(), subject, "")
		ok = false
	}

	blk.EndBranch()

	return ok
}

func (g *Generator) logger() *zap.Logger {
	if g.Logger == nil {
		return zap.NewNop()
	}

	return g.Logger
}

func noConstructor(src, target reflect.Type, err error) diagnostic.Diagnostic {
	d := diagnostic.Diagnostic{
		Severity: diagnostic.DiagnosticWarning,
		Code:     diagnostic.CodeNoConstructor,
		Message:  err.Error(),
		Subject:  src.String() + " -> " + target.String(),
	}

	var rerr *constructor.ResolutionError
	if errors.As(err, &rerr) {
		seen := map[string]bool{}

		for _, m := range rerr.Missing {
			for _, s := range rerr.Suggestions[m] {
				if !seen[s] {
					seen[s] = true
					d.Suggestions = append(d.Suggestions, s)
				}
			}
		}
	}

	return d
}

// OrderSources returns types deduplicated and ordered for branch emission:
// concrete types before interfaces, each group by type string.
//
// Properties are struct field paths, so a class map with an interface on
// its source side cannot declare fields. Such a branch only matches the
// runtime type and feeds constructors that take no mapped arguments.
func OrderSources(types []reflect.Type) []reflect.Type {
	seen := map[reflect.Type]bool{}
	out := make([]reflect.Type, 0, len(types))

	for _, t := range types {
		if t != nil && !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		ii, ji := out[i].Kind() == reflect.Interface, out[j].Kind() == reflect.Interface
		if ii != ji {
			return !ii
		}

		return out[i].String() < out[j].String()
	})

	return out
}

// LocalNames derives branch local names from parameter names: lowerCamel,
// never a keyword or a name the rendered program uses, and unique.
func LocalNames(params []string) []string {
	out := make([]string, len(params))
	used := map[string]bool{}

	for i, p := range params {
		name := paramname.LowerCamel(p)
		if !token.IsIdentifier(name) || reserved[name] {
			name += "Arg"
		}

		if !token.IsIdentifier(name) {
			name = "arg" + strconv.Itoa(i)
		}

		base := name
		for n := 2; used[name]; n++ {
			name = base + strconv.Itoa(n)
		}

		used[name] = true
		out[i] = name
	}

	return out
}
