//go:build !tinygo

package usart

// Host shims: tests run interrupt handlers and application calls on one
// goroutine, so plain memory and a direct call stand in.

type cell struct {
	v uint8
}

func (c *cell) Get() uint8  { return c.v }
func (c *cell) Set(v uint8) { c.v = v }

func critical(fn func()) { fn() }
