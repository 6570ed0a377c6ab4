// Package match compares identifiers written in different conventions.
//
// Constructor parameters are usually lowerCamel ("fullName") while struct
// fields are exported ("FullName") or flattened paths ("Address.Street").
// The factory generator binds them through NormalizeIdent, and uses
// Levenshtein similarity to suggest near misses in diagnostics.
//
// Key functions:
//   - NormalizeIdent: case-folds and strips separators
//   - SameIdent: exact or normalized equality
//   - Suggest: ranks candidate names by similarity
package match
