// Package compile turns an emitted program into a callable factory.
//
// The ClosureCompiler checks the program structure once, resolves every
// local to a frame slot and binds each assignment to a closure. Calls walk
// pre-resolved field indices only; nested values go through the Runtime.
package compile
