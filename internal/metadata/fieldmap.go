package metadata

import (
	"fmt"

	"objectfactory/internal/common"
)

// Direction restricts which way a field map may be applied.
type Direction int

const (
	// Bidirectional field maps apply both from A to B and from B to A.
	Bidirectional Direction = iota
	// AToB field maps only apply when B is the destination.
	AToB
	// BToA field maps only apply when A is the destination.
	BToA
)

// String returns the name used in mapping files.
func (d Direction) String() string {
	switch d {
	case Bidirectional:
		return "bidirectional"
	case AToB:
		return "a-to-b"
	case BToA:
		return "b-to-a"
	default:
		return common.UnknownStr
	}
}

// ParseDirection parses a direction name as written in mapping files.
// An empty string means Bidirectional.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "", "bidirectional":
		return Bidirectional, nil
	case "a-to-b":
		return AToB, nil
	case "b-to-a":
		return BToA, nil
	default:
		return Bidirectional, fmt.Errorf("unknown direction %q", s)
	}
}

// reverse swaps the one-way directions.
func (d Direction) reverse() Direction {
	switch d {
	case AToB:
		return BToA
	case BToA:
		return AToB
	default:
		return d
	}
}

// FieldMap is one source-property-to-destination-property correspondence.
type FieldMap struct {
	Source      Property
	Destination Property
	Direction   Direction
}

// Flip returns the reverse-direction view of f. f itself is not modified,
// and Flip is its own inverse.
func (f FieldMap) Flip() FieldMap {
	return FieldMap{
		Source:      f.Destination,
		Destination: f.Source,
		Direction:   f.Direction.reverse(),
	}
}

// AllowsAToB reports whether f can be applied in its stored orientation.
func (f FieldMap) AllowsAToB() bool {
	return f.Direction != BToA
}

// AllowsBToA reports whether f can be applied in the flipped orientation.
func (f FieldMap) AllowsBToA() bool {
	return f.Direction != AToB
}

// String returns a human-readable description.
func (f FieldMap) String() string {
	return fmt.Sprintf("%s -> %s (%s)", f.Source, f.Destination, f.Direction)
}
