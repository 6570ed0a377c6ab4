package mapping

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// --- StringOrArray YAML methods ---

// UnmarshalYAML implements custom YAML unmarshaling for StringOrArray.
// Accepts either a single string or an array of strings.
func (s *StringOrArray) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var str string

		err := node.Decode(&str)
		if err != nil {
			return err
		}

		if str != "" {
			*s = StringOrArray{str}
		} else {
			*s = StringOrArray{}
		}

		return nil

	case yaml.SequenceNode:
		var arr []string

		err := node.Decode(&arr)
		if err != nil {
			return err
		}

		*s = arr

		return nil

	default:
		return fmt.Errorf("expected string or array, got %v", node.Kind)
	}
}

// MarshalYAML outputs a single string if length is 1, otherwise an array.
func (s StringOrArray) MarshalYAML() (any, error) {
	if len(s) == 1 {
		return s[0], nil
	}

	return []string(s), nil
}

// --- FieldMapping YAML methods ---

// UnmarshalYAML accepts a plain path ("Name", meaning the same path on both
// sides) or a mapping with a, b and direction keys.
func (f *FieldMapping) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var path string

		if err := node.Decode(&path); err != nil {
			return err
		}

		*f = FieldMapping{A: path, B: path}

		return nil

	case yaml.MappingNode:
		// plain alias avoids recursing into this method
		type plain FieldMapping

		var p plain

		if err := node.Decode(&p); err != nil {
			return err
		}

		*f = FieldMapping(p)

		return nil

	default:
		return fmt.Errorf("line %d: expected field path or mapping, got %v", node.Line, node.Kind)
	}
}

// MarshalYAML writes same-path bidirectional fields back as a plain string.
func (f FieldMapping) MarshalYAML() (any, error) {
	if f.A == f.B && f.Direction == "" {
		return f.A, nil
	}

	type plain FieldMapping

	return plain(f), nil
}
