package usart

// DoubleSpeedFlag marks a divisor as requesting U2X double-speed mode. It is
// the high bit of the 16-bit divisor, which real UBRR values never reach.
const DoubleSpeedFlag uint16 = 0x8000

// BaudSelect returns the UBRR divisor for the given baud rate and CPU clock
// in normal-speed mode.
func BaudSelect(baud, cpuHz uint32) uint16 {
	return uint16(cpuHz/(baud*16) - 1)
}

// BaudSelectDoubleSpeed returns the UBRR divisor for the given baud rate and
// CPU clock with the double-speed flag set. Double speed halves the divisor
// granularity, which keeps the frame error acceptable at high baud rates on
// low clocks.
func BaudSelectDoubleSpeed(baud, cpuHz uint32) uint16 {
	return uint16(cpuHz/(baud*8)-1) | DoubleSpeedFlag
}
