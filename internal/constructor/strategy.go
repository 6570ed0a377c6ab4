package constructor

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"objectfactory/internal/match"
	"objectfactory/internal/metadata"
)

// ErrNoUsableConstructor is wrapped by ResolutionError.
var ErrNoUsableConstructor = errors.New("no usable constructor")

// Binding is the constructor chosen for one source type, with one field map
// per parameter. Each destination property is re-typed to its parameter type.
type Binding struct {
	Constructor *Constructor
	Fields      []metadata.FieldMap
}

// Strategy picks the constructor a factory calls for the source side of cm.
type Strategy interface {
	Pick(cm *metadata.ClassMap, target reflect.Type) (*Binding, error)
}

// Policy names a picking policy in configuration.
type Policy string

const (
	PolicyMostParameters Policy = "most-parameters"
	PolicyFirstMatch     Policy = "first-match"
)

// NewStrategy returns the strategy for policy; empty means most-parameters.
func NewStrategy(policy Policy, set *Set) (Strategy, error) {
	switch policy {
	case "", PolicyMostParameters:
		return MostParameters{Set: set}, nil
	case PolicyFirstMatch:
		return FirstMatch{Set: set}, nil
	default:
		return nil, fmt.Errorf("unknown constructor policy %q", policy)
	}
}

// FirstMatch picks the first satisfiable candidate in candidate order.
type FirstMatch struct {
	Set *Set
}

func (s FirstMatch) Pick(cm *metadata.ClassMap, target reflect.Type) (*Binding, error) {
	return pick(s.Set, cm, target, false)
}

// MostParameters picks the satisfiable candidate binding the most fields;
// ties go to the earlier candidate.
type MostParameters struct {
	Set *Set
}

func (s MostParameters) Pick(cm *metadata.ClassMap, target reflect.Type) (*Binding, error) {
	return pick(s.Set, cm, target, true)
}

func pick(set *Set, cm *metadata.ClassMap, target reflect.Type, most bool) (*Binding, error) {
	if cm == nil || cm.Other(target) == nil {
		return nil, fmt.Errorf("%s is not part of the class map", target)
	}

	fields := cm.FieldsTowards(target)
	rerr := &ResolutionError{Target: target, Source: cm.Other(target)}

	var best *Binding

	for _, c := range set.Candidates(target) {
		b, missing := bind(c, fields)
		if b == nil {
			rerr.note(c, missing, fields)
			continue
		}

		if !most {
			return b, nil
		}

		if best == nil || c.Arity() > best.Constructor.Arity() {
			best = b
		}
	}

	if best == nil {
		return nil, rerr
	}

	return best, nil
}

// bind matches every parameter of c to a field map. It returns the missing
// parameter names when some parameter has no field.
func bind(c *Constructor, fields []metadata.FieldMap) (*Binding, []string) {
	b := &Binding{Constructor: c, Fields: make([]metadata.FieldMap, len(c.ParamNames))}

	var missing []string

	for i, name := range c.ParamNames {
		fm, ok := findField(name, fields)
		if !ok {
			missing = append(missing, name)
			continue
		}

		fm.Destination = fm.Destination.WithType(c.ParamTypes[i])
		b.Fields[i] = fm
	}

	if len(missing) > 0 {
		return nil, missing
	}

	return b, nil
}

// findField returns the first field whose destination name equals name,
// preferring an exact match over a normalized one.
func findField(name string, fields []metadata.FieldMap) (metadata.FieldMap, bool) {
	for _, f := range fields {
		if f.Destination.Name == name {
			return f, true
		}
	}

	for _, f := range fields {
		if match.SameIdent(f.Destination.Name, name) {
			return f, true
		}
	}

	return metadata.FieldMap{}, false
}

// ResolutionError reports that no candidate constructor of Target can be
// satisfied by the fields mapped from Source.
type ResolutionError struct {
	Target reflect.Type
	Source reflect.Type
	// Missing lists, per candidate, the unmatched parameter names (deduplicated).
	Missing []string
	// Suggestions maps a missing parameter to the closest mapped destination names.
	Suggestions map[string][]string
	// Tried lists the candidates that were considered.
	Tried []string
}

func (e *ResolutionError) note(c *Constructor, missing []string, fields []metadata.FieldMap) {
	e.Tried = append(e.Tried, c.String())

	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Destination.Name
	}

	for _, m := range missing {
		if e.Suggestions == nil {
			e.Suggestions = make(map[string][]string)
		}

		if _, seen := e.Suggestions[m]; seen {
			continue
		}

		e.Missing = append(e.Missing, m)
		e.Suggestions[m] = match.Suggest(m, names, 3)
	}
}

func (e *ResolutionError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s from %s: %s", e.Target, e.Source, ErrNoUsableConstructor)

	if len(e.Tried) == 0 {
		b.WriteString(": no candidates")
		return b.String()
	}

	missing := append([]string(nil), e.Missing...)
	sort.Strings(missing)

	fmt.Fprintf(&b, ": unmatched parameters [%s]", strings.Join(missing, ", "))

	return b.String()
}

func (e *ResolutionError) Unwrap() error {
	return ErrNoUsableConstructor
}
