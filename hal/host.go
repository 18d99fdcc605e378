//go:build !tinygo

package hal

import (
	"fmt"
	"os"
	"sync"
	"time"
)

type hostHAL struct {
	logger *hostLogger
	sel    Pin
	irq    *hostIRQ
	clock  hostClock
	fb     *hostFramebuffer
	keys   chan KeyEvent
}

// New returns a host HAL implementation backed by an in-memory framebuffer
// and a virtual SELECT pin.
func New() HAL {
	return &hostHAL{
		logger: &hostLogger{w: os.Stderr},
		sel:    NewVirtualPin("SELECT"),
		irq:    &hostIRQ{},
		fb:     newHostFramebuffer(320, 240),
		keys:   make(chan KeyEvent, 64),
	}
}

func (h *hostHAL) Logger() Logger           { return h.logger }
func (h *hostHAL) SelectPin() Pin           { return h.sel }
func (h *hostHAL) IRQ() IRQMasker           { return h.irq }
func (h *hostHAL) Clock() Clock             { return h.clock }
func (h *hostHAL) Framebuffer() Framebuffer { return h.fb }
func (h *hostHAL) Keys() <-chan KeyEvent    { return h.keys }

// EmitKey injects a simulator key event, dropping it when the queue is
// full. Frontends other than the built-in window use this.
func (h *hostHAL) EmitKey(ev KeyEvent) { h.emitKey(ev) }

func (h *hostHAL) emitKey(ev KeyEvent) {
	select {
	case h.keys <- ev:
	default:
	}
}

type hostLogger struct {
	mu sync.Mutex
	w  *os.File
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.w.Write(b)
	l.w.Write([]byte{'\n'})
}

// hostIRQ stands in for save_and_disable_interrupts on hardware. A mutex
// gives the same exclusion between the simulated bus goroutine and the loop.
type hostIRQ struct {
	mu sync.Mutex
}

func (i *hostIRQ) Mask() uintptr {
	i.mu.Lock()
	return 0
}

func (i *hostIRQ) Restore(uintptr) {
	i.mu.Unlock()
}

type hostClock struct{}

func (hostClock) Now() time.Time        { return time.Now() }
func (hostClock) Sleep(d time.Duration) { time.Sleep(d) }
