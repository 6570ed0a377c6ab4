package engine

import (
	"go.uber.org/zap"

	"objectfactory/internal/compile"
	"objectfactory/internal/config"
	"objectfactory/internal/mapping"
)

// Option configures an Engine.
type Option func(*options)

type options struct {
	config      *config.Config
	logger      *zap.Logger
	backend     compile.Backend
	types       *mapping.Types
	mappingFile string
	mappingData [][]byte
}

// WithConfig replaces the default configuration.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) {
		o.config = cfg
	}
}

// WithLogger replaces the logger built from the configuration.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithBackend replaces the closure compiler.
func WithBackend(b compile.Backend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithTypes sets the registry mapping files are resolved against.
func WithTypes(types *mapping.Types) Option {
	return func(o *options) {
		o.types = types
	}
}

// WithMappingFile applies the mapping file at path, overriding mapping.file
// from the configuration.
func WithMappingFile(path string) Option {
	return func(o *options) {
		o.mappingFile = path
	}
}

// WithMapping applies an in-memory mapping file.
func WithMapping(data []byte) Option {
	return func(o *options) {
		o.mappingData = append(o.mappingData, data)
	}
}
