// Package mm74c923 decodes a 12-key matrix keypad behind an MM74C923
// scan-encoder chip wired to one AVR port. The chip raises its DATA AVAILABLE
// line once a key is debounced and stable; the driver polls the port, detects
// edges on that line against the previous sample and, on the rising edge,
// latches the chip's outputs and decodes the scan pattern into a character.
// All of it is synchronous: behavior depends only on the polling rate, and a
// key that rises and falls between two polls is missed rather than queued.
package mm74c923

import "github.com/sergio1020881/avrlib/hw"

// Port bit assignments. The five data outputs plus the extra line form the
// 6-bit table index; OUTPUT ENABLE is the only pin the driver drives.
const (
	DataA         = 0
	DataB         = 1
	DataC         = 2
	DataD         = 3
	DataE         = 4
	OutputEnable  = 5
	DataAvailable = 6
	ExtraData     = 7
)

// NoKey is returned when no new key was captured this poll.
const NoKey byte = 0

// ClearKey resets the entry accumulator when captured.
const ClearKey byte = '*'

const maxEntryLen = 5

// keyCodes maps the 6-bit scan index to a character. Index 52 is the
// terminator slot for "no key".
var keyCodes = [53]byte{
	'A', 'B', 'C', 'E', 'G', 'H', 'I', 'J', 'M', 'N', 'O', 'P', 'Q', 'R', 'S', 'T', 'V', 'X', 'Y', 'Z',
	'0', '0', '0', '0', '0', '0', '0', '0', '0', '0', '0', '0', 'L', '-', '+', 'F', '7', '8', '9', '#',
	'4', '5', '6', 'U', '1', '2', '3', 'D', '0', '/', '.', '*', 0,
}

// Device is one keypad on one port. It keeps two independent previous-sample
// memories so ReadKey and ReadEntry can be interleaved without stealing each
// other's edges.
type Device struct {
	ddr  hw.Reg8 // data direction register
	pin  hw.Reg8 // input register
	port hw.Reg8 // output/pull-up register

	keyMem   uint8 // previous sample for ReadKey
	entryMem uint8 // previous sample for the entry sampler

	entry    [maxEntryLen]byte
	entryLen uint8
}

// New returns a keypad over the three port registers. It touches no hardware;
// Configure does.
func New(ddr, pin, port hw.Reg8) *Device {
	return &Device{ddr: ddr, pin: pin, port: port}
}

// Configure makes OUTPUT ENABLE the port's only output, pulls every line
// high and resets the edge memories and the entry buffer.
func (d *Device) Configure() {
	d.ddr.Set(1 << OutputEnable)
	d.port.Set(0xFF)
	d.keyMem = 0
	d.entryMem = 0
	d.entryLen = 0
}

// ReadKey polls once and returns the freshly captured character, or NoKey
// when the DATA AVAILABLE line did not rise since the previous poll. While a
// key stays held the line stays high, so a held key is reported exactly once.
func (d *Device) ReadKey() byte {
	return d.scan(&d.keyMem)
}

// ReadEntry polls once and folds the captured character into the entry
// buffer: ClearKey empties it, any other character is appended, and when the
// buffer is at maxEntryLen the write index restarts at zero before the
// append. It returns the accumulated entry.
func (d *Device) ReadEntry() string {
	switch c := d.scan(&d.entryMem); {
	case c == ClearKey:
		d.entryLen = 0
	case c != NoKey:
		if d.entryLen == maxEntryLen {
			d.entryLen = 0
		}
		d.entry[d.entryLen] = c
		d.entryLen++
	}
	return string(d.entry[:d.entryLen])
}

// ClearEntry empties the entry buffer, same as capturing ClearKey.
func (d *Device) ClearEntry() {
	d.entryLen = 0
}

// scan reads the port once, runs edge detection against mem and decodes a
// scan pattern when DATA AVAILABLE rose. mem is updated on every poll, so
// edges are always relative to the immediately preceding call.
func (d *Device) scan(mem *uint8) byte {
	c := d.pin.Get()
	rising := ^*mem & c
	falling := *mem & ^c
	*mem = c

	switch {
	case rising&(1<<DataAvailable) != 0:
		// New key is stable: latch the encoder outputs and re-read.
		d.port.ClearBits(1 << OutputEnable)
		return keyCodes[decodeIndex(d.pin.Get())]
	case falling&(1<<DataAvailable) != 0:
		// Key released: release the latch.
		d.port.SetBits(1 << OutputEnable)
		return NoKey
	default:
		return NoKey
	}
}

// decodeIndex assembles the 6-bit table index from the data-out bits. Indexes
// past the table (noise on unused lines) decode as the terminator.
func decodeIndex(c uint8) uint8 {
	var idx uint8
	if c&(1<<DataA) != 0 {
		idx |= 1
	}
	if c&(1<<DataB) != 0 {
		idx |= 2
	}
	if c&(1<<DataC) != 0 {
		idx |= 4
	}
	if c&(1<<DataD) != 0 {
		idx |= 8
	}
	if c&(1<<DataE) != 0 {
		idx |= 16
	}
	if c&(1<<ExtraData) != 0 {
		idx |= 32
	}
	if int(idx) >= len(keyCodes) {
		return uint8(len(keyCodes) - 1)
	}
	return idx
}
