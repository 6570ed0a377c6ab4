// Package program is the intermediate representation of a generated factory.
//
// A Program holds, in order: a null-input guard, one Branch per supported
// source type, and a final UnsupportedSource fallback. Each branch declares
// one local per constructor parameter, assigns it from the source (possibly
// under nil guards) and ends with exactly one Construct.
//
// Programs are produced with a Builder, which checks every operation as it
// is emitted, executed by a compile backend, and printed as Go source by Render.
package program
