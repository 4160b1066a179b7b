//go:build debug

package debug

// Enabled is true in builds with the debug tag. Guard assertions that need
// extra work to evaluate with `if debug.Enabled {...}`, so they compile to
// nothing in release builds.
const Enabled = true

func Assert(b bool, message string) {
	if !b {
		panic("assertion failed: " + message)
	}
}
