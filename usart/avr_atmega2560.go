//go:build avr && (atmega2560 || atmega1280)

package usart

import (
	"device/avr"
	"runtime/interrupt"
)

// The ATmega1280/2560 carry several USARTs; the first two are bundled here.
var (
	USART0 = New(Regs{
		Status:   avr.UCSR0A,
		Control:  avr.UCSR0B,
		Frame:    avr.UCSR0C,
		BaudHigh: avr.UBRR0H,
		BaudLow:  avr.UBRR0L,
		Data:     avr.UDR0,
	})

	USART1 = New(Regs{
		Status:   avr.UCSR1A,
		Control:  avr.UCSR1B,
		Frame:    avr.UCSR1C,
		BaudHigh: avr.UBRR1H,
		BaudLow:  avr.UBRR1L,
		Data:     avr.UDR1,
	})
)

func init() {
	interrupt.New(avr.IRQ_USART0_RX, func(interrupt.Interrupt) { USART0.HandleRxComplete() })
	interrupt.New(avr.IRQ_USART0_UDRE, func(interrupt.Interrupt) { USART0.HandleDataRegisterEmpty() })
	interrupt.New(avr.IRQ_USART1_RX, func(interrupt.Interrupt) { USART1.HandleRxComplete() })
	interrupt.New(avr.IRQ_USART1_UDRE, func(interrupt.Interrupt) { USART1.HandleDataRegisterEmpty() })
}
