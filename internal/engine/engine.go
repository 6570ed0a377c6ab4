package engine

import (
	"context"
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"objectfactory/internal/classify"
	"objectfactory/internal/compile"
	"objectfactory/internal/config"
	"objectfactory/internal/constructor"
	"objectfactory/internal/convert"
	"objectfactory/internal/diagnostic"
	"objectfactory/internal/factory"
	"objectfactory/internal/logging"
	"objectfactory/internal/mapping"
	"objectfactory/internal/paramname"
)

// Engine maps values between configured types. It is safe for concurrent use.
type Engine struct {
	config       *config.Config
	logger       *zap.Logger
	types        *mapping.Types
	mappings     *mapping.Configuration
	converters   *convert.Registry
	names        *paramname.Registry
	constructors *constructor.Set
	cache        *factory.Cache
}

var _ compile.Runtime = (*Engine)(nil)

// New builds an engine and applies the configured mapping files.
func New(opts ...Option) (*Engine, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	cfg := o.config
	if cfg == nil {
		cfg = config.Default()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	policy, _ := cfg.Policy()
	builtin, _ := cfg.BuiltinConverters()

	logger := o.logger
	if logger == nil {
		logger = logging.Must(cfg.Log)
	}

	types := o.types
	if types == nil {
		types = mapping.NewTypes()
	}

	names := paramname.NewRegistry()

	resolver, err := newResolver(cfg.ParamNames, names)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		config:       cfg,
		logger:       logger,
		types:        types,
		mappings:     mapping.NewConfiguration(),
		converters:   convert.NewRegistry(builtin),
		names:        names,
		constructors: constructor.NewSet(resolver),
	}

	strategy, err := constructor.NewStrategy(policy, e.constructors)
	if err != nil {
		return nil, err
	}

	backend := o.backend
	if backend == nil {
		backend = compile.NewClosureCompiler()
	}

	e.cache = factory.NewCache(&factory.Generator{
		Metadata:     e.mappings,
		Converters:   e.converters,
		Constructors: strategy,
		Backend:      backend,
		Logger:       logger.Named("factory"),
		Strict:       cfg.Strict,
	}, e)

	path := o.mappingFile
	if path == "" {
		path = cfg.Mapping.File
	}

	if path != "" {
		mf, err := mapping.LoadFile(path)
		if err != nil {
			return nil, err
		}

		if err := e.ApplyMapping(mf); err != nil {
			return nil, fmt.Errorf("applying %s: %w", path, err)
		}
	}

	for _, data := range o.mappingData {
		mf, err := mapping.Parse(data)
		if err != nil {
			return nil, err
		}

		if err := e.ApplyMapping(mf); err != nil {
			return nil, err
		}
	}

	logger.Debug("engine ready",
		zap.String("policy", string(strategyPolicy(policy))),
		zap.Bool("strict", cfg.Strict),
		zap.Int("class_maps", len(e.mappings.ClassMaps())))

	return e, nil
}

// newResolver chains annotations, package sources when enabled and the
// field order heuristic, behind an LRU cache.
func newResolver(cfg config.ParamNamesConfig, names *paramname.Registry) (paramname.Resolver, error) {
	chain := []paramname.Resolver{names}
	if cfg.Source {
		chain = append(chain, paramname.NewSource(cfg.SourceDir))
	}

	chain = append(chain, paramname.FieldOrder{})

	var resolver paramname.Resolver = paramname.NewAdaptive(chain...)
	if cfg.CacheSize == 0 {
		return resolver, nil
	}

	caching, err := paramname.NewCaching(resolver, cfg.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("parameter name cache: %w", err)
	}

	return caching, nil
}

func strategyPolicy(p constructor.Policy) constructor.Policy {
	if p == "" {
		return constructor.PolicyMostParameters
	}

	return p
}

// ApplyMapping validates and registers every class map of mf, and enables
// the built-in converters it names. Factories already built for types of mf
// are dropped and rebuilt on next use; enabling new converters drops all.
func (e *Engine) ApplyMapping(mf *mapping.MappingFile) error {
	if err := e.mappings.Apply(mf, e.types); err != nil {
		return err
	}

	before := e.converters.Categories()
	e.converters.EnableBuiltin(e.mappings.BuiltinConverters())

	if e.converters.Categories() != before {
		if n := e.cache.Reset(); n > 0 {
			e.logger.Debug("converters changed, factories dropped", zap.Int("factories", n))
		}

		return nil
	}

	affected := make([]reflect.Type, 0, 2*len(mf.Mappings))

	for _, tm := range mf.Mappings {
		for _, name := range []string{tm.A, tm.B} {
			if t, err := e.types.Resolve(name); err == nil {
				affected = append(affected, t)
			}
		}
	}

	if n := e.cache.Invalidate(affected...); n > 0 {
		e.logger.Debug("mapping changed, factories dropped", zap.Int("factories", n))
	}

	return nil
}

// Config returns the engine configuration.
func (e *Engine) Config() *config.Config {
	return e.config
}

// Logger returns the engine logger.
func (e *Engine) Logger() *zap.Logger {
	return e.logger
}

// Types returns the registry mapping files are resolved against.
func (e *Engine) Types() *mapping.Types {
	return e.types
}

// Mappings returns the class map configuration.
func (e *Engine) Mappings() *mapping.Configuration {
	return e.mappings
}

// Converters returns the converter registry.
func (e *Engine) Converters() *convert.Registry {
	return e.converters
}

// Constructors returns the constructor set.
func (e *Engine) Constructors() *constructor.Set {
	return e.constructors
}

// ParamNames returns the parameter name annotations. Annotate a
// constructor before registering it.
func (e *Engine) ParamNames() *paramname.Registry {
	return e.names
}

// FactoryFor returns the factory creating target values, building it on first use.
func (e *Engine) FactoryFor(target reflect.Type) (*factory.Generated, error) {
	return e.cache.FactoryFor(target)
}

// Diagnostics returns the build diagnostics of an already built factory.
func (e *Engine) Diagnostics(target reflect.Type) (diagnostic.Diagnostics, bool) {
	return e.cache.Diagnostics(target)
}

// Map converts src into a value of type dst. A nil source yields the zero
// value of dst. Registered converters come first, then plain assignment
// and lossless conversion of immutable values. Other pairs of immutable
// values fail with convert.ErrNoConverter. Pointer destinations map the
// element and take its address; everything else goes through the factory of dst.
func (e *Engine) Map(src any, dst reflect.Type) (any, error) {
	if dst == nil {
		return nil, fmt.Errorf("mapping %T: %w: nil destination type", src, factory.ErrInvalidArgument)
	}

	if src == nil {
		return reflect.Zero(dst).Interface(), nil
	}

	sv := reflect.ValueOf(src)
	st := sv.Type()

	if c, ok := e.converters.Lookup(st, dst); ok {
		out, err := c.Convert(sv)
		if err != nil {
			return nil, fmt.Errorf("converting %s -> %s: %w", st, dst, err)
		}

		if !out.IsValid() {
			return reflect.Zero(dst).Interface(), nil
		}

		return out.Interface(), nil
	}

	switch {
	case st.AssignableTo(dst):
		return src, nil
	case classify.Convertible(st, dst):
		return sv.Convert(dst).Interface(), nil
	case classify.IsImmutable(st) && classify.IsImmutable(dst):
		return nil, fmt.Errorf("mapping %s -> %s: %w", st, dst, convert.ErrNoConverter)
	case st.Kind() == reflect.Ptr && sv.IsNil():
		return reflect.Zero(dst).Interface(), nil
	case dst.Kind() == reflect.Ptr:
		return e.mapPointer(src, dst)
	}

	f, err := e.FactoryFor(dst)
	if err != nil {
		return nil, err
	}

	return f.Create(src)
}

func (e *Engine) mapPointer(src any, dst reflect.Type) (any, error) {
	out, err := e.Map(src, dst.Elem())
	if err != nil {
		return nil, err
	}

	p := reflect.New(dst.Elem())

	if out != nil {
		v := reflect.ValueOf(out)
		if !v.Type().AssignableTo(dst.Elem()) {
			return nil, fmt.Errorf("mapping %T: got %s for %s", src, v.Type(), dst)
		}

		p.Elem().Set(v)
	}

	return p.Interface(), nil
}

// Map converts src into a T.
func Map[T any](e *Engine, src any) (T, error) {
	var zero T

	out, err := e.Map(src, reflect.TypeFor[T]())
	if err != nil || out == nil {
		return zero, err
	}

	t, ok := out.(T)
	if !ok {
		return zero, fmt.Errorf("mapping %T: got %T, want %T", src, out, zero)
	}

	return t, nil
}

// Warm builds the factories of targets in parallel; without targets it
// builds every type the mapping configuration can produce.
func (e *Engine) Warm(ctx context.Context, targets ...reflect.Type) error {
	if len(targets) == 0 {
		targets = e.mappings.Targets()
	}

	return e.cache.Warm(ctx, targets...)
}

// Close drops every factory. The engine cannot build factories afterwards.
func (e *Engine) Close() error {
	err := e.cache.Close()
	_ = e.logger.Sync()

	return err
}
