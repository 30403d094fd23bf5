//go:build debug

package assert

import "fmt"

// Enabled reports whether contract checks are compiled in.
const Enabled = true

// True panics with the formatted message if cond does not hold.
func True(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("assertion failed: "+format, args...))
	}
}
