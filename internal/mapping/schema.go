package mapping

import (
	"sort"

	"objectfactory/internal/metadata"
)

// MappingFile represents the root of a YAML mapping definition file.
type MappingFile struct {
	// Version of the mapping schema (for future compatibility).
	Version string `yaml:"version,omitempty"`

	// Mappings is a list of type pair mappings.
	Mappings []TypeMapping `yaml:"mappings"`

	// Converters selects the built-in conversions available to every mapping.
	Converters ConverterSettings `yaml:"converters,omitempty"`
}

// TypeMapping defines the field correspondences between types A and B.
type TypeMapping struct {
	// A type identifier (e.g., "store.Customer" or full path).
	A string `yaml:"a"`

	// B type identifier (e.g., "warehouse.Customer" or full path).
	B string `yaml:"b"`

	// Direction restricts the whole mapping; empty means bidirectional.
	Direction string `yaml:"direction,omitempty"`

	// OneToOne is a simplified mapping syntax where keys are A paths
	// and values are B paths. Entries come before Fields.
	// Example: { "FullName": "Name", "Address.Street": "Street" }
	OneToOne map[string]string `yaml:"121,omitempty"`

	// Fields defines explicit field mappings, each with an optional direction.
	Fields []FieldMapping `yaml:"fields,omitempty"`
}

// FieldMapping maps path A onto path B.
// In YAML a plain string "Name" stands for {a: Name, b: Name}.
type FieldMapping struct {
	A         string `yaml:"a"`
	B         string `yaml:"b"`
	Direction string `yaml:"direction,omitempty"`
}

// ConverterSettings configures converters from the mapping file.
type ConverterSettings struct {
	// Builtin names the enabled primitive conversion categories, e.g. "text_number".
	Builtin StringOrArray `yaml:"builtin,omitempty"`
}

// StringOrArray accepts either a single string or a list of strings.
type StringOrArray []string

// Pair returns "A->B".
func (tm *TypeMapping) Pair() string {
	return tm.A + "->" + tm.B
}

// Expanded returns the field mappings of tm with the 121 shorthand expanded.
// Shorthand entries come first, ordered by A path.
func (tm *TypeMapping) Expanded() []FieldMapping {
	keys := make([]string, 0, len(tm.OneToOne))
	for k := range tm.OneToOne {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	out := make([]FieldMapping, 0, len(keys)+len(tm.Fields))
	for _, k := range keys {
		out = append(out, FieldMapping{A: k, B: tm.OneToOne[k]})
	}

	return append(out, tm.Fields...)
}

// EffectiveDirection returns the direction of fm inside tm: its own when
// set, otherwise the mapping's.
func (tm *TypeMapping) EffectiveDirection(fm FieldMapping) (metadata.Direction, error) {
	if fm.Direction != "" {
		return metadata.ParseDirection(fm.Direction)
	}

	return metadata.ParseDirection(tm.Direction)
}
