package tproto

import (
	"fmt"

	"github.com/Chati-SidecarTridge/md-microfirmware-template/hal"
)

// Channel carries frames from interrupt context to the cooperative loop
// through a double buffer. The producer always writes the slot not marked
// active-for-read and publishes by swapping indices; it never blocks. A
// ready frame overwritten before consumption is discarded and counted.
type Channel struct {
	irq    hal.IRQMasker
	log    hal.Logger
	parser *Parser

	buffers    [2]Frame
	readIndex  uint8
	writeIndex uint8
	ready      bool
	overwrites uint32
}

func NewChannel(irq hal.IRQMasker, log hal.Logger) *Channel {
	c := &Channel{
		irq:        irq,
		log:        log,
		writeIndex: 1,
	}
	c.parser = NewParser(c.onFrame, c.onChecksumError)
	return c
}

// OnBusEvent consumes one latched bus address. Interrupt context:
// non-blocking, allocation-free, bounded time. Addresses without the ROM3
// signal bit are not protocol traffic.
func (c *Channel) OnBusEvent(addr uint32) {
	if addr&busSignalBit == 0 {
		return
	}
	// Invert the highest bit of the low word to recover the 16-bit address.
	c.parser.Feed(uint16(addr ^ addressHighBit))
}

func (c *Channel) onFrame(f *Frame) {
	slot := &c.buffers[c.writeIndex]

	slot.CommandID = f.CommandID
	slot.Checksum = f.Checksum

	size := f.PayloadSize
	if size > MaxPayloadSize {
		size = MaxPayloadSize
	}
	slot.PayloadSize = size
	copy(slot.Payload[:size], f.Payload[:size])

	// Publish atomically by swapping read/write roles. On hardware the
	// masked section nests inside the ISR; on the host it excludes Poll.
	state := c.irq.Mask()
	if c.ready {
		c.overwrites++
	}
	c.readIndex, c.writeIndex = c.writeIndex, c.readIndex
	c.ready = true
	c.irq.Restore(state)
}

func (c *Channel) onChecksumError(f *Frame) {
	if c.log != nil {
		c.log.WriteLineString(fmt.Sprintf(
			"tproto: checksum error (id=%d size=%d)", f.CommandID, f.PayloadSize))
	}
}

// Poll snapshots the published slot, if any, under the interrupt-masked
// critical section. Each ready transition is delivered exactly once.
func (c *Channel) Poll() (Frame, uint32, bool) {
	var snap Frame
	var ok bool

	state := c.irq.Mask()
	if c.ready {
		snap = c.buffers[c.readIndex]
		c.ready = false
		ok = true
	}
	overwrites := c.overwrites
	c.irq.Restore(state)

	return snap, overwrites, ok
}
