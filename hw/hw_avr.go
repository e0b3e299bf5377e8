//go:build avr

package hw

import "runtime/volatile"

// On target the register banks are built straight from device/avr pointers.
var _ Reg8 = (*volatile.Register8)(nil)
