// Package convert holds the converters the factory generator binds into
// field assignments.
//
// A converter turns a value of one type into a value of another. Converters
// are registered per (source, destination) type pair; the registry can also
// serve the built-in primitive conversions of the primitive package for the
// categories that were enabled.
package convert
