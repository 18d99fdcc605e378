//go:build tinygo

package hal

import "machine"

// Cartridge bus pins. The 16 address lines sit on consecutive GPIOs, the
// ROM3 chip select and the latch strobe on their own pins.
const (
	busAddrFirstPin = machine.GPIO6
	busROM3Pin      = machine.GPIO22
	busStrobePin    = machine.GPIO26
)

// OnBusStrobe attaches the handler to the bus latch strobe. It runs in
// interrupt context with the assembled 17-bit address (bit 16 is the ROM3
// select) and must not block.
func OnBusStrobe(handler func(addr uint32)) error {
	for i := 0; i < 16; i++ {
		p := busAddrFirstPin + machine.Pin(i)
		p.Configure(machine.PinConfig{Mode: machine.PinInput})
	}
	busROM3Pin.Configure(machine.PinConfig{Mode: machine.PinInput})

	strobe := busStrobePin
	strobe.Configure(machine.PinConfig{Mode: machine.PinInput})
	return strobe.SetInterrupt(machine.PinRising, func(machine.Pin) {
		handler(readBusAddr())
	})
}

func readBusAddr() uint32 {
	var addr uint32
	for i := 0; i < 16; i++ {
		if (busAddrFirstPin + machine.Pin(i)).Get() {
			addr |= 1 << uint(i)
		}
	}
	if busROM3Pin.Get() {
		addr |= 1 << 16
	}
	return addr
}
