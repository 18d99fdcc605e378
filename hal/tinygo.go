//go:build tinygo

package hal

import (
	"machine"
	"runtime/interrupt"
	"time"
)

const selectPinID = machine.GPIO5

type tinygoHAL struct {
	sel   Pin
	irq   tinygoIRQ
	clock tinygoClock
	fb    *memFramebuffer
	log   serialLogger
}

// New returns the bare-metal HAL. The framebuffer is the RAM window the
// host computer scans out of the cartridge address space.
func New() HAL {
	pin := selectPinID
	pin.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})
	return &tinygoHAL{
		sel: machinePin{name: "SELECT", pin: pin},
		fb:  newMemFramebuffer(320, 240),
	}
}

func (h *tinygoHAL) Logger() Logger           { return h.log }
func (h *tinygoHAL) SelectPin() Pin           { return h.sel }
func (h *tinygoHAL) IRQ() IRQMasker           { return h.irq }
func (h *tinygoHAL) Clock() Clock             { return h.clock }
func (h *tinygoHAL) Framebuffer() Framebuffer { return h.fb }
func (h *tinygoHAL) Keys() <-chan KeyEvent    { return nil }

type machinePin struct {
	name string
	pin  machine.Pin
}

func (p machinePin) Name() string        { return p.name }
func (p machinePin) Read() (bool, error) { return p.pin.Get(), nil }
func (p machinePin) Write(level bool) error {
	p.pin.Set(level)
	return nil
}

type tinygoIRQ struct{}

func (tinygoIRQ) Mask() uintptr         { return uintptr(interrupt.Disable()) }
func (tinygoIRQ) Restore(state uintptr) { interrupt.Restore(interrupt.State(state)) }

type tinygoClock struct{}

func (tinygoClock) Now() time.Time        { return time.Now() }
func (tinygoClock) Sleep(d time.Duration) { time.Sleep(d) }

type serialLogger struct{}

func (serialLogger) WriteLineString(s string) { println(s) }
func (serialLogger) WriteLineBytes(b []byte)  { println(string(b)) }

type memFramebuffer struct {
	width  int
	height int
	stride int
	buf    []byte
}

func newMemFramebuffer(width, height int) *memFramebuffer {
	stride := width * 2
	return &memFramebuffer{
		width:  width,
		height: height,
		stride: stride,
		buf:    make([]byte, stride*height),
	}
}

func (f *memFramebuffer) Width() int          { return f.width }
func (f *memFramebuffer) Height() int         { return f.height }
func (f *memFramebuffer) Format() PixelFormat { return PixelFormatRGB565 }
func (f *memFramebuffer) StrideBytes() int    { return f.stride }
func (f *memFramebuffer) Buffer() []byte      { return f.buf }
func (f *memFramebuffer) Present() error      { return nil }

func (f *memFramebuffer) ClearRGB(r, g, b uint8) {
	pixel := packRGB565(r, g, b)
	lo := byte(pixel)
	hi := byte(pixel >> 8)
	for i := 0; i < len(f.buf); i += 2 {
		f.buf[i] = lo
		f.buf[i+1] = hi
	}
}
