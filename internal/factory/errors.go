package factory

import (
	"errors"
	"fmt"
	"reflect"

	"objectfactory/internal/diagnostic"
)

var (
	// ErrInvalidArgument is returned when Create is given a nil source.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnsupportedSource is wrapped by UnsupportedSourceError.
	ErrUnsupportedSource = errors.New("unsupported source type")
	// ErrBuild is wrapped by BuildError.
	ErrBuild = errors.New("factory build failed")
	// ErrClosed is returned by a closed Cache.
	ErrClosed = errors.New("factory cache closed")
)

// UnsupportedSourceError reports a source value no branch of the factory accepts.
type UnsupportedSourceError struct {
	Target reflect.Type
	Source reflect.Type
}

// UnsupportedSource returns the error a factory reports for source.
func UnsupportedSource(source any) error {
	return &UnsupportedSourceError{Source: reflect.TypeOf(source)}
}

func (e *UnsupportedSourceError) Error() string {
	if e.Target == nil {
		return fmt.Sprintf("%s: %s", ErrUnsupportedSource, e.Source)
	}

	return fmt.Sprintf("cannot create %s from %s: %s", e.Target, e.Source, ErrUnsupportedSource)
}

func (e *UnsupportedSourceError) Unwrap() error {
	return ErrUnsupportedSource
}

// BuildError reports a factory that could not be built. Program holds the
// rendered program when rendering got that far.
type BuildError struct {
	Target      reflect.Type
	Program     string
	Diagnostics diagnostic.Diagnostics
	Err         error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("building factory for %s: %v", e.Target, e.Err)
}

func (e *BuildError) Unwrap() []error {
	return []error{ErrBuild, e.Err}
}
