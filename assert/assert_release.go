//go:build !debug

// Package assert checks programming contracts (module wiring, enum ranges,
// envelope call discipline). The checks only exist in builds tagged with
// "debug"; in release builds True is a no-op the compiler inlines away.
package assert

const Enabled = false

func True(cond bool, format string, args ...any) {}
