//go:build tinygo

package usart

import (
	"runtime/interrupt"
	"runtime/volatile"
)

// cell holds a byte shared between interrupt and main context. AVR reads and
// writes bytes atomically, so volatile access is all that is needed.
type cell = volatile.Register8

// critical runs fn with global interrupts masked. Configure uses it so a
// vector armed by an earlier Configure cannot observe half-initialized
// buffers.
func critical(fn func()) {
	state := interrupt.Disable()
	fn()
	interrupt.Restore(state)
}
