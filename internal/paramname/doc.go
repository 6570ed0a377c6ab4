// Package paramname recovers the parameter names of constructor functions.
//
// Go keeps no parameter names at run time, so names come from one of:
//   - Registry: names annotated explicitly next to the registration
//   - Source: the function's declaration, loaded with golang.org/x/tools/go/packages
//   - FieldOrder: the exported fields of the returned struct, when the
//     parameter types line up with them
//
// Adaptive chains resolvers, Caching memoizes the result in an LRU cache.
package paramname
