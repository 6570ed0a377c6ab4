// Package constructor describes how target values are created and picks the
// constructor a factory calls for a given source type.
//
// Two kinds of constructors exist: Go functions returning the target (or a
// pointer to it, optionally with a trailing error), and the composite literal
// of a struct, whose parameters are its exported fields in declaration order.
package constructor
