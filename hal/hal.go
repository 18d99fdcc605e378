package hal

import (
	"errors"
	"time"
)

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

var ErrNotImplemented = errors.New("not implemented")

// Pin is a single digital IO level. The SELECT button reads high when pressed.
type Pin interface {
	Name() string
	Read() (level bool, err error)
	Write(level bool) error
}

// IRQMasker brackets the firmware's one true critical section: snapshotting
// the command channel's published slot. On hardware it disables interrupts;
// on the host it degrades to a mutex.
type IRQMasker interface {
	Mask() uintptr
	Restore(state uintptr)
}

// Clock provides time to code that blocks for short, bounded intervals
// (debounce waits, press polling). Injectable so tests can run on a fake.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// PixelFormat defines the framebuffer pixel encoding.
type PixelFormat uint8

const (
	// PixelFormatRGB565 is 16bpp: rrrrrggggggbbbbb.
	PixelFormatRGB565 PixelFormat = iota + 1
)

// Framebuffer is a simple pixel buffer plus a "present" hook. On hardware
// this is the RAM window the host computer scans out; Present is a no-op
// there and a repaint request on the host simulator.
type Framebuffer interface {
	Width() int
	Height() int
	Format() PixelFormat
	StrideBytes() int
	Buffer() []byte
	ClearRGB(r, g, b uint8)
	Present() error
}

// KeyCode is a minimal key identifier for the host simulator frontends.
type KeyCode uint16

const (
	KeyUnknown KeyCode = iota
	KeyEnter
	KeyEscape
	KeyBackspace
	// KeySelect stands in for the physical SELECT button (F12 on the host).
	KeySelect
)

// KeyEvent is a simulator keyboard event. On real hardware keystrokes arrive
// as bus frames instead and this stream stays empty.
type KeyEvent struct {
	Code  KeyCode
	Press bool
	Rune  rune
}

// HAL is the only contact point between the firmware and the outside world.
type HAL interface {
	Logger() Logger
	SelectPin() Pin
	IRQ() IRQMasker
	Clock() Clock
	Framebuffer() Framebuffer
	Keys() <-chan KeyEvent
}
