package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"objectfactory/internal/constructor"
	"objectfactory/primitive"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "most-parameters", cfg.Constructor.Policy)
	assert.False(t, cfg.Strict)
	assert.False(t, cfg.ParamNames.Source)
	assert.Equal(t, 256, cfg.ParamNames.CacheSize)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Mapping.File)
	require.NoError(t, cfg.Validate())
}

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "factory.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
constructor:
  policy: first-match
strict: true
paramnames:
  source: true
  cache_size: 16
log:
  level: debug
  development: true
mapping:
  file: mappings.yaml
converters:
  builtin: [text_number, enum_string]
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	policy, err := cfg.Policy()
	require.NoError(t, err)
	assert.Equal(t, constructor.PolicyFirstMatch, policy)
	assert.True(t, cfg.Strict)
	assert.True(t, cfg.ParamNames.Source)
	assert.Equal(t, 16, cfg.ParamNames.CacheSize)
	assert.Equal(t, LogConfig{Level: "debug", Development: true}, cfg.Log)
	assert.Equal(t, "mappings.yaml", cfg.Mapping.File)

	cats, err := cfg.BuiltinConverters()
	require.NoError(t, err)
	assert.Equal(t, primitive.CategoryTextNumber|primitive.CategoryEnumString, cats)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("OBJECTFACTORY_STRICT", "true")
	t.Setenv("OBJECTFACTORY_CONSTRUCTOR_POLICY", "first-match")
	t.Setenv("OBJECTFACTORY_LOG_LEVEL", "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.Strict)
	assert.Equal(t, "first-match", cfg.Constructor.Policy)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	dir := t.TempDir()

	for name, content := range map[string]string{
		"policy.yaml":     "constructor:\n  policy: fastest\n",
		"cache.yaml":      "paramnames:\n  cache_size: -1\n",
		"converters.yaml": "converters:\n  builtin: [telepathy]\n",
	} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		_, err := Load(path)
		assert.Error(t, err, name)
	}
}
