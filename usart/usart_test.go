package usart

import (
	"errors"
	"testing"

	"github.com/sergio1020881/avrlib/hw"
)

type testBank struct {
	status, control, frame, baudH, baudL, data hw.MemReg
}

func (b *testBank) regs() Regs {
	return Regs{
		Status:   &b.status,
		Control:  &b.control,
		Frame:    &b.frame,
		BaudHigh: &b.baudH,
		BaudLow:  &b.baudL,
		Data:     &b.data,
	}
}

func newTestUSART(t *testing.T, cfg Config) (*USART, *testBank) {
	t.Helper()
	bank := &testBank{}
	u := New(bank.regs())
	if err := u.Configure(cfg); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	return u, bank
}

func TestConfigureFrameFormats(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		wantFrame uint8
		wantUCSZ2 bool
		wantBits  [3]uint8 // data, stop, parity (parity as uint8)
	}{
		{"default 8N1", Config{}, frameUCSZ1 | frameUCSZ0, false, [3]uint8{8, 1, 0}},
		{"explicit 8N1", Config{DataBits: 8, StopBits: 1}, frameUCSZ1 | frameUCSZ0, false, [3]uint8{8, 1, 0}},
		{"5 data bits", Config{DataBits: 5}, 0, false, [3]uint8{5, 1, 0}},
		{"6 data bits", Config{DataBits: 6}, frameUCSZ0, false, [3]uint8{6, 1, 0}},
		{"7 data bits", Config{DataBits: 7}, frameUCSZ1, false, [3]uint8{7, 1, 0}},
		{"9 data bits", Config{DataBits: 9}, frameUCSZ1 | frameUCSZ0, true, [3]uint8{9, 1, 0}},
		{"unsupported data bits fall back", Config{DataBits: 4}, frameUCSZ1 | frameUCSZ0, false, [3]uint8{8, 1, 0}},
		{"2 stop bits", Config{StopBits: 2}, frameUCSZ1 | frameUCSZ0 | frameUSBS, false, [3]uint8{8, 2, 0}},
		{"unsupported stop bits fall back", Config{StopBits: 3}, frameUCSZ1 | frameUCSZ0, false, [3]uint8{8, 1, 0}},
		{"even parity", Config{Parity: ParityEven}, frameUCSZ1 | frameUCSZ0 | frameUPM1, false, [3]uint8{8, 1, uint8(ParityEven)}},
		{"odd parity", Config{Parity: ParityOdd}, frameUCSZ1 | frameUCSZ0 | frameUPM1 | frameUPM0, false, [3]uint8{8, 1, uint8(ParityOdd)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, bank := newTestUSART(t, tt.cfg)

			if got := bank.frame.Get(); got != tt.wantFrame {
				t.Errorf("frame register = %#02x, want %#02x", got, tt.wantFrame)
			}
			if got := bank.control.HasBits(ctrlUCSZ2); got != tt.wantUCSZ2 {
				t.Errorf("UCSZ2 = %v, want %v", got, tt.wantUCSZ2)
			}
			if !bank.control.HasBits(ctrlRXCIE | ctrlRXEN | ctrlTXEN) {
				t.Errorf("control = %#02x, receiver/transmitter/RX interrupt not all enabled", bank.control.Get())
			}

			data, stop, parity := u.Frame()
			if data != tt.wantBits[0] || stop != tt.wantBits[1] || uint8(parity) != tt.wantBits[2] {
				t.Errorf("Frame() = (%d,%d,%d), want (%d,%d,%d)",
					data, stop, parity, tt.wantBits[0], tt.wantBits[1], tt.wantBits[2])
			}
		})
	}
}

func TestConfigureBaudDivisor(t *testing.T) {
	_, bank := newTestUSART(t, Config{Divisor: 0x0123})
	if bank.status.HasBits(statU2X) {
		t.Error("U2X set without double-speed flag")
	}
	if bank.baudH.Get() != 0x01 || bank.baudL.Get() != 0x23 {
		t.Errorf("divisor registers = %#02x %#02x, want 0x01 0x23", bank.baudH.Get(), bank.baudL.Get())
	}

	_, bank = newTestUSART(t, Config{Divisor: 0x0042 | DoubleSpeedFlag})
	if !bank.status.HasBits(statU2X) {
		t.Error("U2X not set for double-speed divisor")
	}
	if bank.baudH.Get() != 0x00 || bank.baudL.Get() != 0x42 {
		t.Errorf("flag bit leaked into divisor registers: %#02x %#02x", bank.baudH.Get(), bank.baudL.Get())
	}
}

func TestBaudSelect(t *testing.T) {
	// 9600 baud on a 16 MHz clock: classic UBRR value 103.
	if got := BaudSelect(9600, 16000000); got != 103 {
		t.Errorf("BaudSelect(9600, 16MHz) = %d, want 103", got)
	}
	got := BaudSelectDoubleSpeed(9600, 16000000)
	if got&DoubleSpeedFlag == 0 {
		t.Error("BaudSelectDoubleSpeed did not set the flag")
	}
	if got&^DoubleSpeedFlag != 207 {
		t.Errorf("BaudSelectDoubleSpeed(9600, 16MHz) divisor = %d, want 207", got&^DoubleSpeedFlag)
	}
}

func TestConfigureRejectsBadBufferSizes(t *testing.T) {
	bank := &testBank{}
	u := New(bank.regs())
	for _, cfg := range []Config{
		{RxBufferSize: 3},
		{TxBufferSize: 1},
		{RxBufferSize: 512},
	} {
		if err := u.Configure(cfg); err == nil {
			t.Errorf("Configure(%+v) accepted a bad buffer size", cfg)
		}
	}
}

func TestReceivePath(t *testing.T) {
	u, bank := newTestUSART(t, Config{})

	if _, _, ok := u.Getc(); ok {
		t.Fatal("Getc on idle unit reported data")
	}

	// Clean byte.
	bank.status.Set(statRXC)
	bank.data.Set('a')
	u.HandleRxComplete()

	b, st, ok := u.Getc()
	if !ok || b != 'a' || st != 0 {
		t.Fatalf("Getc = (%q, %#02x, %v), want ('a', 0, true)", b, st, ok)
	}

	// Frame error: the marker byte is queued and the flags latched.
	bank.status.Set(statRXC | statFE)
	bank.data.Set('b')
	u.HandleRxComplete()

	b, st, ok = u.Getc()
	if !ok || b != ErrorMarker {
		t.Fatalf("Getc after frame error = (%q, %v), want marker", b, ok)
	}
	if st&FrameError == 0 {
		t.Fatalf("status = %#02x, frame error flag not reported", st)
	}
	if u.Stats().RxErrors != 1 {
		t.Fatalf("RxErrors = %d, want 1", u.Stats().RxErrors)
	}

	// The flag is sticky until the next interrupt overwrites it.
	bank.status.Set(statRXC)
	bank.data.Set('c')
	u.HandleRxComplete()
	if _, st, _ := u.Getc(); st != 0 {
		t.Fatalf("status after clean frame = %#02x, want 0", st)
	}
}

func TestReceiveOverflowDropsAndCounts(t *testing.T) {
	u, bank := newTestUSART(t, Config{RxBufferSize: 8})
	for i := 0; i < 7; i++ { // capacity is size-1
		bank.status.Set(statRXC)
		bank.data.Set(byte('0' + i))
		u.HandleRxComplete()
	}
	if u.Buffered() != 7 {
		t.Fatalf("Buffered = %d, want 7", u.Buffered())
	}

	bank.data.Set('!')
	u.HandleRxComplete() // ring full: dropped, not queued

	if u.Buffered() != 7 {
		t.Fatalf("Buffered after overflow = %d, want 7", u.Buffered())
	}
	if u.Stats().RxDrops != 1 {
		t.Fatalf("RxDrops = %d, want 1", u.Stats().RxDrops)
	}
	// FIFO content intact.
	for i := 0; i < 7; i++ {
		b, err := u.ReadByte()
		if err != nil || b != byte('0'+i) {
			t.Fatalf("entry %d: got (%q, %v)", i, b, err)
		}
	}
}

func TestTransmitPath(t *testing.T) {
	u, bank := newTestUSART(t, Config{TxBufferSize: 8})

	if bank.control.HasBits(ctrlUDRIE) {
		t.Fatal("UDRIE armed before any write")
	}
	if err := u.WriteByte('h'); err != nil {
		t.Fatalf("WriteByte: %v", err)
	}
	if err := u.WriteByte('i'); err != nil {
		t.Fatalf("WriteByte: %v", err)
	}
	if !bank.control.HasBits(ctrlUDRIE) {
		t.Fatal("WriteByte did not arm UDRIE")
	}

	// The armed interrupt drains one byte per invocation.
	u.HandleDataRegisterEmpty()
	if got := bank.data.Get(); got != 'h' {
		t.Fatalf("data register = %q, want 'h'", got)
	}
	if !bank.control.HasBits(ctrlUDRIE) {
		t.Fatal("UDRIE disarmed while data remained")
	}

	u.HandleDataRegisterEmpty()
	if got := bank.data.Get(); got != 'i' {
		t.Fatalf("data register = %q, want 'i'", got)
	}

	// Empty ring: disarm, leave the data register alone.
	u.HandleDataRegisterEmpty()
	if bank.control.HasBits(ctrlUDRIE) {
		t.Fatal("UDRIE still armed after drain")
	}
	if got := bank.data.Get(); got != 'i' {
		t.Fatalf("data register overwritten on empty drain: %q", got)
	}
}

func TestTransmitOverflowIsNonBlocking(t *testing.T) {
	u, _ := newTestUSART(t, Config{TxBufferSize: 8})
	for i := 0; i < 7; i++ {
		if err := u.WriteByte(byte(i)); err != nil {
			t.Fatalf("WriteByte %d: %v", i, err)
		}
	}
	if err := u.WriteByte(0xFF); !errors.Is(err, ErrTxFull) {
		t.Fatalf("WriteByte on full ring: %v, want ErrTxFull", err)
	}
	if u.Stats().TxDrops != 1 {
		t.Fatalf("TxDrops = %d, want 1", u.Stats().TxDrops)
	}
	if u.TxFree() != 0 {
		t.Fatalf("TxFree = %d, want 0", u.TxFree())
	}
}

func TestWritePartial(t *testing.T) {
	u, _ := newTestUSART(t, Config{TxBufferSize: 4})
	n, err := u.Write([]byte("abcdef"))
	if n != 3 || !errors.Is(err, ErrTxFull) {
		t.Fatalf("Write = (%d, %v), want (3, ErrTxFull)", n, err)
	}

	u, _ = newTestUSART(t, Config{TxBufferSize: 16})
	n, err = u.WriteString("hello")
	if n != 5 || err != nil {
		t.Fatalf("WriteString = (%d, %v)", n, err)
	}
}

func TestReadDrainsBuffered(t *testing.T) {
	u, bank := newTestUSART(t, Config{})
	for _, b := range []byte("xyz") {
		bank.status.Set(statRXC)
		bank.data.Set(b)
		u.HandleRxComplete()
	}

	p := make([]byte, 8)
	n, err := u.Read(p)
	if err != nil || n != 3 || string(p[:n]) != "xyz" {
		t.Fatalf("Read = (%d, %v, %q)", n, err, p[:n])
	}
	if n, _ := u.Read(p); n != 0 {
		t.Fatalf("Read on drained unit = %d", n)
	}
}

func TestFlushDiscardsUnread(t *testing.T) {
	u, bank := newTestUSART(t, Config{})
	for _, b := range []byte("junk") {
		bank.status.Set(statRXC)
		bank.data.Set(b)
		u.HandleRxComplete()
	}
	u.Flush()
	if u.Buffered() != 0 {
		t.Fatalf("Buffered after Flush = %d", u.Buffered())
	}
	if _, _, ok := u.Getc(); ok {
		t.Fatal("Getc returned data after Flush")
	}
}
