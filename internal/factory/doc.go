// Package factory builds and caches constructor-based object factories.
//
// A Generator reads the class maps registered for a target type, picks a
// constructor per source type, classifies every bound field and emits one
// program branch per source type. The program is compiled by a Backend and
// bound to the conversion runtime. A Cache builds each target at most once.
package factory
