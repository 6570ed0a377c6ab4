// Package metadata holds the data model the factory generator reads:
// properties, field maps, class maps and the keys used to look them up.
//
// Key types:
//   - Property: a resolved (possibly dotted) access path on a struct type
//   - FieldMap: a source/destination property pair with directionality
//   - ClassMap: the ordered field maps registered between two types
//   - MapperKey: an order-insensitive pair of types
//
// Everything here is immutable once built; the mapping configuration owns it.
package metadata
