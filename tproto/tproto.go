// Package tproto implements the cartridge bus command protocol: frames
// reconstructed from latched 16-bit address words, a double-buffered
// interrupt-to-loop channel, and the shared registers used to acknowledge
// commands back to the host computer.
package tproto

import "sync/atomic"

// MaxPayloadSize is the frame payload capacity in bytes. Claims above it
// are clamped on copy, never trusted as indices.
const MaxPayloadSize = 2048

// Command ids understood by the terminal core.
const (
	CmdStart     uint16 = 0x0000
	CmdKeystroke uint16 = 0x0001
)

// Bus constants. The hardware DMA latches a 32-bit address; bit 16 carries
// the ROM3 select signal and the low word is the address with its top bit
// inverted by the level shifters.
const (
	busSignalBit   uint32 = 0x00010000
	addressHighBit uint32 = 0x8000
)

// syncWord opens every frame on the wire.
const syncWord uint16 = 0xABCD

// Frame is one complete, checksummed protocol message.
type Frame struct {
	CommandID   uint16
	PayloadSize uint16
	Payload     [MaxPayloadSize]byte
	Checksum    uint16
}

// BusAddr encodes a protocol word as the latched bus address that carries
// it, for simulators and tests standing in for the hardware.
func BusAddr(word uint16) uint32 {
	return busSignalBit | (uint32(word) ^ addressHighBit)
}

func wordAt(p []byte, i int) uint16 {
	off := i * 2
	if off+1 >= len(p) {
		return 0
	}
	return uint16(p[off]) | uint16(p[off+1])<<8
}

// Token reads the 32-bit correlation token from the first four payload
// bytes (high word first).
func Token(payload []byte) uint32 {
	return uint32(wordAt(payload, 0))<<16 | uint32(wordAt(payload, 1))
}

// Param32 reads the nth 32-bit parameter following the correlation token.
func Param32(payload []byte, n int) uint32 {
	i := 2 + n*2
	return uint32(wordAt(payload, i))<<16 | uint32(wordAt(payload, i+1))
}

// SharedRegs models the fixed shared-memory locations the host computer
// polls: the echoed correlation token and the seed for the next exchange.
// The main loop is the only writer; host-side reads tolerate staleness.
type SharedRegs struct {
	token atomic.Uint32
	seed  atomic.Uint32
}

func (r *SharedRegs) SetToken(v uint32) { r.token.Store(v) }
func (r *SharedRegs) Token() uint32     { return r.token.Load() }
func (r *SharedRegs) SetSeed(v uint32)  { r.seed.Store(v) }
func (r *SharedRegs) Seed() uint32      { return r.seed.Load() }
