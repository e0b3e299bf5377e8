package usart

import "github.com/sergio1020881/avrlib/hw"

// Regs is one USART register bank. Every ATmega variant carries the same six
// registers with the same bit layout; only the addresses differ between
// chips, so a bank is plain startup configuration handed to New. The chip
// files in this package bundle banks for the parts the library has been used
// on; boards with other parts assemble their own.
type Regs struct {
	Status   hw.Reg8 // UCSRnA
	Control  hw.Reg8 // UCSRnB
	Frame    hw.Reg8 // UCSRnC
	BaudHigh hw.Reg8 // UBRRnH
	BaudLow  hw.Reg8 // UBRRnL
	Data     hw.Reg8 // UDRn
}

// UCSRnA status bits.
const (
	statRXC  = 1 << 7
	statTXC  = 1 << 6
	statUDRE = 1 << 5
	statFE   = 1 << 4
	statDOR  = 1 << 3
	statUPE  = 1 << 2
	statU2X  = 1 << 1
)

// UCSRnB control bits.
const (
	ctrlRXCIE = 1 << 7
	ctrlTXCIE = 1 << 6
	ctrlUDRIE = 1 << 5
	ctrlRXEN  = 1 << 4
	ctrlTXEN  = 1 << 3
	ctrlUCSZ2 = 1 << 2
)

// UCSRnC frame format bits.
const (
	frameUPM1  = 1 << 5
	frameUPM0  = 1 << 4
	frameUSBS  = 1 << 3
	frameUCSZ1 = 1 << 2
	frameUCSZ0 = 1 << 1
)

// Status carries the receive error flags latched by the receive interrupt,
// in their raw UCSRnA positions.
type Status uint8

const (
	// FrameError indicates a stop-bit mismatch on the last received frame.
	FrameError Status = statFE
	// DataOverrun indicates the hardware shift register overwrote a byte
	// before the interrupt could drain it.
	DataOverrun Status = statDOR
)
