// Package diagnostic collects build-time errors, warnings and infos.
//
// Mapping validation and factory generation report problems here instead
// of failing on the first one, so that a single run shows everything that
// is wrong with a mapping or a target type.
//
// Codes are stable identifiers, see the Code* constants.
package diagnostic
