//go:build tinygo

package ring

import "runtime/volatile"

// On target the indices cross the interrupt boundary, so they need volatile
// byte cells; AVR reads and writes bytes atomically.
type cell = volatile.Register8
