//go:build avr && atmega328p

package usart

import (
	"device/avr"
	"runtime/interrupt"
)

// USART0 is the only hardware unit on the ATmega328P family.
var USART0 = New(Regs{
	Status:   avr.UCSR0A,
	Control:  avr.UCSR0B,
	Frame:    avr.UCSR0C,
	BaudHigh: avr.UBRR0H,
	BaudLow:  avr.UBRR0L,
	Data:     avr.UDR0,
})

func init() {
	interrupt.New(avr.IRQ_USART_RX, func(interrupt.Interrupt) { USART0.HandleRxComplete() })
	interrupt.New(avr.IRQ_USART_UDRE, func(interrupt.Interrupt) { USART0.HandleDataRegisterEmpty() })
}
