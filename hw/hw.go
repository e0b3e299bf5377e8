// Package hw abstracts 8-bit peripheral register access so driver logic can
// run against real AVR registers on target and against plain memory on the
// host. Register banks are assembled once at startup; the drivers never pick
// registers themselves.
package hw

// Reg8 is one 8-bit peripheral register. On TinyGo AVR builds
// *volatile.Register8 satisfies it directly.
type Reg8 interface {
	// Get returns the current register value.
	Get() uint8

	// Set writes the whole register.
	Set(v uint8)

	// SetBits sets the bits in mask, leaving the rest untouched.
	SetBits(mask uint8)

	// ClearBits clears the bits in mask, leaving the rest untouched.
	ClearBits(mask uint8)

	// HasBits reports whether all bits in mask are set.
	HasBits(mask uint8) bool
}
