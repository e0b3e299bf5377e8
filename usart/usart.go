// Package usart is an interrupt-driven driver for the AVR USART. Each unit
// owns a receive and a transmit ring buffer: the receive-complete interrupt
// fills the RX ring and the application drains it, the application fills the
// TX ring and the data-register-empty interrupt drains it, disarming itself
// when the ring runs dry. Nothing in the driver blocks; a full ring drops the
// byte and counts it.
//
// Register banks come from the chip files in this package or from board glue
// for parts not bundled here. The core logic is hardware-free and runs on the
// host against memory-backed registers.
package usart

import (
	"errors"

	"tinygo.org/x/drivers"

	"github.com/sergio1020881/avrlib/ring"
)

var (
	// ErrBufferEmpty is returned by ReadByte when no data is buffered.
	ErrBufferEmpty = errors.New("usart: rx buffer empty")
	// ErrTxFull is returned when the transmit ring cannot take more data.
	ErrTxFull = errors.New("usart: tx buffer full")
)

// ErrorMarker is the byte the receive interrupt queues in place of a frame
// received with FE or DOR set, so corruption stays visible in the stream.
const ErrorMarker byte = 'X'

const defaultBufferSize = 64

// Parity defines the parity setting used for USART communication.
type Parity uint8

const (
	// ParityNone disables parity generation and checking (the most common setting).
	ParityNone Parity = iota
	// ParityEven sets even parity (total number of 1 bits is even).
	ParityEven
	// ParityOdd sets odd parity (total number of 1 bits is odd).
	ParityOdd
)

// Config selects the frame format and buffer sizes for one unit.
// Out-of-range frame values fall back to 8 data bits, 1 stop bit, no parity.
type Config struct {
	// Divisor is the UBRR value from BaudSelect or BaudSelectDoubleSpeed.
	// DoubleSpeedFlag in the high bit selects U2X mode.
	Divisor uint16

	DataBits uint8 // 5..9; 9 configures the frame bits but the data path stays 8 bits wide
	StopBits uint8 // 1 or 2
	Parity   Parity

	// Ring sizes in bytes, powers of two in 2..256. Zero means 64.
	RxBufferSize int
	TxBufferSize int
}

// Stats are advisory per-unit counters. They are incremented in interrupt
// context and read from the main program without locking, so treat them as
// diagnostics, not exact accounting.
type Stats struct {
	RxDrops  uint32 // received bytes dropped because the RX ring was full
	TxDrops  uint32 // writes rejected because the TX ring was full
	RxErrors uint32 // frames the hardware flagged with FE or DOR
}

// USART is one hardware unit. Create it with New and a register bank, then
// call Configure before use.
type USART struct {
	regs Regs

	rx *ring.Buffer
	tx *ring.Buffer

	// lastRxErr holds the FE/DOR flags from the most recent receive
	// interrupt; Getc reports it alongside the next byte read.
	lastRxErr cell

	dataBits uint8
	stopBits uint8
	parity   Parity

	stats Stats
}

var _ drivers.UART = (*USART)(nil)

// New returns a unit over the given register bank with default-size buffers.
// It touches no hardware; Configure does.
func New(regs Regs) *USART {
	return &USART{
		regs: regs,
		rx:   ring.New(defaultBufferSize),
		tx:   ring.New(defaultBufferSize),
	}
}

// Configure sets the baud divisor and frame format and enables the receiver,
// the transmitter and the receive-complete interrupt. Buffers are recreated
// empty. On hardware the whole sequence runs with global interrupts masked so
// a previously armed vector cannot observe it half done.
func (u *USART) Configure(cfg Config) error {
	rxSize, err := bufferSize(cfg.RxBufferSize)
	if err != nil {
		return err
	}
	txSize, err := bufferSize(cfg.TxBufferSize)
	if err != nil {
		return err
	}

	critical(func() {
		u.rx = ring.New(rxSize)
		u.tx = ring.New(txSize)
		u.lastRxErr.Set(0)
		u.stats = Stats{}

		// Baud divisor, with the high bit routed to U2X.
		div := cfg.Divisor
		if div&DoubleSpeedFlag != 0 {
			u.regs.Status.Set(statU2X)
			div &^= DoubleSpeedFlag
		} else {
			u.regs.Status.Set(0)
		}
		u.regs.BaudHigh.Set(uint8(div >> 8))
		u.regs.BaudLow.Set(uint8(div))

		u.regs.Control.Set(ctrlRXCIE | ctrlRXEN | ctrlTXEN)
		u.regs.Frame.Set(u.frameBits(cfg))
	})
	return nil
}

// frameBits resolves the UCSRnC value, applies the UCSZ2 control bit for
// 9-bit frames and records the normalized frame parameters on the unit.
func (u *USART) frameBits(cfg Config) uint8 {
	var frame uint8

	switch cfg.DataBits {
	case 9:
		u.regs.Control.SetBits(ctrlUCSZ2)
		frame |= frameUCSZ1 | frameUCSZ0
		u.dataBits = 9
	case 8:
		frame |= frameUCSZ1 | frameUCSZ0
		u.dataBits = 8
	case 7:
		frame |= frameUCSZ1
		u.dataBits = 7
	case 6:
		frame |= frameUCSZ0
		u.dataBits = 6
	case 5:
		u.dataBits = 5
	default:
		frame |= frameUCSZ1 | frameUCSZ0
		u.dataBits = 8
	}

	switch cfg.StopBits {
	case 2:
		frame |= frameUSBS
		u.stopBits = 2
	default:
		u.stopBits = 1
	}

	switch cfg.Parity {
	case ParityEven:
		frame |= frameUPM1
		u.parity = ParityEven
	case ParityOdd:
		frame |= frameUPM1 | frameUPM0
		u.parity = ParityOdd
	default:
		u.parity = ParityNone
	}

	return frame
}

func bufferSize(n int) (int, error) {
	if n == 0 {
		return defaultBufferSize, nil
	}
	if n < 2 || n > 256 || n&(n-1) != 0 {
		return 0, errors.New("usart: buffer size must be a power of two in 2..256")
	}
	return n, nil
}

// Frame returns the frame parameters Configure settled on after fallbacks.
// They are stored, not re-read from hardware.
func (u *USART) Frame() (dataBits, stopBits uint8, parity Parity) {
	return u.dataBits, u.stopBits, u.parity
}

// Getc returns the next received byte together with the error flags recorded
// by the receive interrupt as of this read. ok is false when nothing is
// buffered; the byte and flags are meaningless then.
func (u *USART) Getc() (b byte, st Status, ok bool) {
	b, ok = u.rx.Get()
	if !ok {
		return 0, 0, false
	}
	return b, Status(u.lastRxErr.Get()), true
}

// ReadByte reads a single byte from the RX buffer.
// If there is no data available, it returns ErrBufferEmpty.
func (u *USART) ReadByte() (byte, error) {
	b, ok := u.rx.Get()
	if !ok {
		return 0, ErrBufferEmpty
	}
	return b, nil
}

// Read copies up to len(p) buffered bytes into p. It never blocks and never
// returns an error; n is 0 when nothing is buffered.
func (u *USART) Read(p []byte) (int, error) {
	size := u.Buffered()
	if size == 0 {
		return 0, nil
	}
	if len(p) < size {
		size = len(p)
	}
	for i := 0; i < size; i++ {
		p[i], _ = u.rx.Get()
	}
	return size, nil
}

// Buffered returns the number of bytes currently stored in the RX buffer.
func (u *USART) Buffered() int { return u.rx.Used() }

// Flush discards received-but-unread bytes. It applies to the RX side only;
// bytes already queued for transmit cannot be recalled.
func (u *USART) Flush() { u.rx.Clear() }

// WriteByte queues one byte for transmission and arms the data-register-empty
// interrupt. If the TX ring is full the byte is dropped, counted and ErrTxFull
// returned; WriteByte never waits for space.
func (u *USART) WriteByte(c byte) error {
	if !u.tx.Put(c) {
		u.stats.TxDrops++
		return ErrTxFull
	}
	u.regs.Control.SetBits(ctrlUDRIE)
	return nil
}

// Write queues as much of p as fits. When the TX ring fills first it returns
// the number of bytes accepted and ErrTxFull.
func (u *USART) Write(p []byte) (int, error) {
	for i, b := range p {
		if err := u.WriteByte(b); err != nil {
			return i, err
		}
	}
	return len(p), nil
}

// WriteString queues a string byte by byte, with Write's semantics.
func (u *USART) WriteString(s string) (int, error) {
	for i := 0; i < len(s); i++ {
		if err := u.WriteByte(s[i]); err != nil {
			return i, err
		}
	}
	return len(s), nil
}

// TxFree returns the remaining space in the TX ring in bytes.
func (u *USART) TxFree() int { return u.tx.Free() }

// Stats returns a copy of the unit's counters.
func (u *USART) Stats() Stats { return u.stats }

// HandleRxComplete services the receive-complete vector: it latches the
// FE/DOR flags, reads the data register and queues the byte, or ErrorMarker
// when the frame was flagged. A full ring drops the byte; the handler never
// blocks.
func (u *USART) HandleRxComplete() {
	errFlags := u.regs.Status.Get() & (statFE | statDOR)
	data := u.regs.Data.Get()
	u.lastRxErr.Set(errFlags)
	if errFlags != 0 {
		u.stats.RxErrors++
		data = ErrorMarker
	}
	if !u.rx.Put(data) {
		u.stats.RxDrops++
	}
}

// HandleDataRegisterEmpty services the data-register-empty vector: it moves
// one byte from the TX ring to the data register, or disarms itself when the
// ring is empty. One armed interrupt drains the whole ring across repeated
// invocations and disarms exactly once.
func (u *USART) HandleDataRegisterEmpty() {
	if b, ok := u.tx.Get(); ok {
		u.regs.Data.Set(b)
		return
	}
	u.regs.Control.ClearBits(ctrlUDRIE)
}
