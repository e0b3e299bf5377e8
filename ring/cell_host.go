//go:build !tinygo

package ring

// Host shim: tests drive producer and consumer from one goroutine, so a
// plain byte stands in for the volatile cell.
type cell struct {
	v uint8
}

func (c *cell) Get() uint8  { return c.v }
func (c *cell) Set(v uint8) { c.v = v }
