// Package config loads engine settings from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"objectfactory/internal/constructor"
	"objectfactory/primitive"
)

// EnvPrefix prefixes every environment override, e.g. OBJECTFACTORY_STRICT.
const EnvPrefix = "OBJECTFACTORY"

// Config holds every engine setting.
type Config struct {
	Constructor ConstructorConfig `mapstructure:"constructor"`
	// Strict turns per-field emission problems into build errors.
	Strict     bool             `mapstructure:"strict"`
	ParamNames ParamNamesConfig `mapstructure:"paramnames"`
	Log        LogConfig        `mapstructure:"log"`
	Mapping    MappingConfig    `mapstructure:"mapping"`
	Converters ConvertersConfig `mapstructure:"converters"`
}

// ConstructorConfig selects the constructor picking policy.
type ConstructorConfig struct {
	Policy string `mapstructure:"policy"`
}

// ParamNamesConfig controls parameter name resolution.
type ParamNamesConfig struct {
	// Source enables reading parameter names from package sources.
	Source    bool   `mapstructure:"source"`
	SourceDir string `mapstructure:"source_dir"`
	CacheSize int    `mapstructure:"cache_size"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// MappingConfig points at a mapping file; empty means none.
type MappingConfig struct {
	File string `mapstructure:"file"`
}

// ConvertersConfig enables built-in primitive converters by category name.
type ConvertersConfig struct {
	Builtin []string `mapstructure:"builtin"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("constructor.policy", string(constructor.PolicyMostParameters))
	v.SetDefault("strict", false)
	v.SetDefault("paramnames.source", false)
	v.SetDefault("paramnames.source_dir", ".")
	v.SetDefault("paramnames.cache_size", 256)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("mapping.file", "")
	v.SetDefault("converters.builtin", []string{})
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("unmarshalling defaults: %v", err))
	}

	return &cfg
}

// Load reads path (YAML) when given, applies OBJECTFACTORY_ environment
// overrides and validates the result. A missing file is an error only when
// path was given explicitly; without a path, objectfactory.yaml in the
// working directory is used if present.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("objectfactory")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values viper cannot type-check.
func (c *Config) Validate() error {
	if _, err := c.Policy(); err != nil {
		return err
	}

	if c.ParamNames.CacheSize < 0 {
		return fmt.Errorf("paramnames.cache_size must not be negative, got %d", c.ParamNames.CacheSize)
	}

	if _, err := c.BuiltinConverters(); err != nil {
		return err
	}

	return nil
}

// Policy returns the constructor picking policy.
func (c *Config) Policy() (constructor.Policy, error) {
	switch p := constructor.Policy(c.Constructor.Policy); p {
	case "", constructor.PolicyMostParameters, constructor.PolicyFirstMatch:
		return p, nil
	default:
		return "", fmt.Errorf("constructor.policy must be %q or %q, got %q",
			constructor.PolicyMostParameters, constructor.PolicyFirstMatch, c.Constructor.Policy)
	}
}

// BuiltinConverters returns the enabled built-in converter categories.
func (c *Config) BuiltinConverters() (primitive.CategoryEnum, error) {
	cats, err := primitive.ParseCategories(c.Converters.Builtin...)
	if err != nil {
		return 0, fmt.Errorf("converters.builtin: %w", err)
	}

	return cats, nil
}
