// Package ring implements the fixed-size circular byte buffer used by the
// USART receive and transmit paths. One buffer has exactly one producer and
// one consumer; the interrupt context takes one role and the main program the
// other, so no locking is needed as long as each index is written by a single
// side. Indices live in volatile cells on TinyGo builds and plain bytes on
// the host.
package ring

// Buffer is a single-producer single-consumer byte queue of N slots, N a
// power of two. One slot stays unused so head==tail always means empty and
// (head+1)&mask==tail always means full; usable capacity is N-1.
type Buffer struct {
	data []cell
	mask uint8
	head cell // next write slot, producer-owned
	tail cell // next read slot, consumer-owned
}

// New returns a buffer with size slots. Size must be a power of two between
// 2 and 256; anything else is a programming error and panics.
func New(size int) *Buffer {
	if size < 2 || size > 256 || size&(size-1) != 0 {
		panic("ring: size must be a power of two in 2..256")
	}
	return &Buffer{data: make([]cell, size), mask: uint8(size - 1)}
}

// Put stores one byte. If the buffer is full it stores nothing, leaves head
// untouched and returns false. It never blocks, so it is safe to call from
// an interrupt handler.
func (b *Buffer) Put(v byte) bool {
	h := b.head.Get()
	next := (h + 1) & b.mask
	if next == b.tail.Get() { // full
		return false
	}
	b.data[h].Set(v) // 1) write data
	b.head.Set(next) // 2) publish
	return true
}

// Get removes and returns the oldest byte. The second result is false when
// the buffer is empty; no stale data is ever returned.
func (b *Buffer) Get() (byte, bool) {
	t := b.tail.Get()
	if t == b.head.Get() { // empty
		return 0, false
	}
	v := b.data[t].Get()         // 1) read current element
	b.tail.Set((t + 1) & b.mask) // 2) publish consumption
	return v, true
}

// Used returns how many bytes are buffered but not yet read.
func (b *Buffer) Used() int {
	n := len(b.data)
	return (n + int(b.head.Get()) - int(b.tail.Get())) % n
}

// Free returns how many more bytes Put can accept.
func (b *Buffer) Free() int { return b.Cap() - b.Used() }

// Size returns the number of slots.
func (b *Buffer) Size() int { return len(b.data) }

// Cap returns the usable capacity, one less than Size.
func (b *Buffer) Cap() int { return len(b.data) - 1 }

// Clear discards everything buffered but not yet read. It is a consumer-side
// operation: tail catches up to head and the producer index is never touched,
// so it is safe against a concurrent Put.
func (b *Buffer) Clear() { b.tail.Set(b.head.Get()) }
