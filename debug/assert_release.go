//go:build !debug

// Package debug provides assertions for programmer errors inside the HAL. They
// are checked in builds with the debug tag and compile to no-ops otherwise.
//
// Preconditions that must hold in release builds too, like the stack check of
// ipc.Port.Send, panic unconditionally and don't use this package.
package debug

// Enabled is true in builds with the debug tag. Guard assertions that need
// extra work to evaluate with `if debug.Enabled {...}`, so they compile to
// nothing in release builds.
const Enabled = false

// Assert panics if b is false.
func Assert(b bool, message string) {}
