package app

import (
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Chati-SidecarTridge/md-microfirmware-template/hal"
	"github.com/Chati-SidecarTridge/md-microfirmware-template/netinfo"
	"github.com/Chati-SidecarTridge/md-microfirmware-template/storage"
	"github.com/Chati-SidecarTridge/md-microfirmware-template/tproto"
)

// gridFake is a do-nothing display with a fixed grid.
type gridFake struct {
	cols, rows int
	commands   []uint8
	sink       func(uint8)
}

func (d *gridFake) GridSize() (int, int)        { return d.cols, d.rows }
func (d *gridFake) StartSurface(cols, rows int) {}
func (d *gridFake) Clear()                      {}
func (d *gridFake) Char(x, y int, ch byte)      {}
func (d *gridFake) Cursor(x, y int)             {}
func (d *gridFake) ScrollUp()                   {}
func (d *gridFake) Refresh()                    {}
func (d *gridFake) SendCommand(id uint8) {
	d.commands = append(d.commands, id)
	if d.sink != nil {
		d.sink(id)
	}
}
func (d *gridFake) SetCommandSink(sink func(uint8)) { d.sink = sink }

type testIRQ struct{ mu sync.Mutex }

func (i *testIRQ) Mask() uintptr   { i.mu.Lock(); return 0 }
func (i *testIRQ) Restore(uintptr) { i.mu.Unlock() }

type testHAL struct {
	log  hal.Logger
	sel  hal.Pin
	irq  *testIRQ
	keys chan hal.KeyEvent
}

func newTestHAL() *testHAL {
	return &testHAL{
		log:  testLogger{},
		sel:  hal.NewVirtualPin("SELECT"),
		irq:  &testIRQ{},
		keys: make(chan hal.KeyEvent, 16),
	}
}

func (h *testHAL) Logger() hal.Logger           { return h.log }
func (h *testHAL) SelectPin() hal.Pin           { return h.sel }
func (h *testHAL) IRQ() hal.IRQMasker           { return h.irq }
func (h *testHAL) Clock() hal.Clock             { return realClock{} }
func (h *testHAL) Framebuffer() hal.Framebuffer { return nil }
func (h *testHAL) Keys() <-chan hal.KeyEvent    { return h.keys }

type realClock struct{}

func (realClock) Now() time.Time        { return time.Now() }
func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

type testLogger struct{}

func (testLogger) WriteLineString(s string) { _, _ = os.Stderr.WriteString(s + "\n") }
func (testLogger) WriteLineBytes(b []byte)  { _, _ = os.Stderr.Write(append(b, '\n')) }

func counterRand() func() uint32 {
	n := uint32(0)
	return func() uint32 { n++; return n }
}

func newTestFirmware(t *testing.T) (*Firmware, *gridFake) {
	t.Helper()
	disp := &gridFake{cols: 60, rows: 25}
	fw, err := New(newTestHAL(), Options{
		Display: disp,
		Net:     &netinfo.StaticProvider{Status: netinfo.Status{SSID: "testnet"}},
		Mount:   &storage.FixedMount{Mounted: true, TotalMB: 4096, FreeMB: 1024},
		Rand:    counterRand(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return fw, disp
}

func screenContains(fw *Firmware, want string) bool {
	te := fw.Terminal()
	for y := 0; y < te.Rows(); y++ {
		var b strings.Builder
		for x := 0; x < te.Cols(); x++ {
			ch := te.CharAt(x, y)
			if ch == 0 {
				ch = ' '
			}
			b.WriteByte(ch)
		}
		if strings.Contains(b.String(), want) {
			return true
		}
	}
	return false
}

func TestStartCommandBootsTerminal(t *testing.T) {
	fw, disp := newTestFirmware(t)
	fw.SendStart()
	if err := fw.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}

	if !screenContains(fw, "SidecarTridge") {
		t.Fatal("banner not rendered")
	}
	if !screenContains(fw, "SSID      : testnet") {
		t.Fatal("status page not rendered")
	}
	if !screenContains(fw, "1024/4096 MB free") {
		t.Fatal("SD line not rendered")
	}
	found := false
	for _, id := range disp.commands {
		if id == 1 {
			found = true
		}
	}
	if !found {
		t.Fatal("terminal mode command not sent to display")
	}
}

func TestStartAcknowledgesToken(t *testing.T) {
	fw, _ := newTestFirmware(t)
	fw.SendStart() // token = 1
	if err := fw.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if got := fw.SharedRegs().Token(); got != 1 {
		t.Fatalf("acknowledged token = %d, want 1", got)
	}
	if fw.SharedRegs().Seed() == 0 {
		t.Fatal("no seed published")
	}
}

func TestKeystrokesFlowThroughBusPipeline(t *testing.T) {
	fw, _ := newTestFirmware(t)
	fw.SendStart()
	if err := fw.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}

	for _, ch := range []byte("help") {
		fw.sendKeystroke(ch)
		if err := fw.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	if got := fw.Terminal().InputLine(); got != "help" {
		t.Fatalf("input line = %q, want %q", got, "help")
	}

	fw.sendKeystroke('\r')
	if err := fw.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if !screenContains(fw, "Available commands:") {
		t.Fatal("help output not rendered")
	}
	if got := fw.Terminal().InputLine(); got != "" {
		t.Fatalf("input line = %q after dispatch, want empty", got)
	}
}

func TestKeystrokeBeforeStartIsIgnored(t *testing.T) {
	fw, _ := newTestFirmware(t)
	fw.sendKeystroke('x')
	if err := fw.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if got := fw.Terminal().InputLine(); got != "" {
		t.Fatalf("input line = %q before start, want empty", got)
	}
}

func TestSimulatorKeyEventsBecomeFrames(t *testing.T) {
	hw := newTestHAL()
	disp := &gridFake{cols: 60, rows: 25}
	fw, err := New(hw, Options{Display: disp, Rand: counterRand()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	fw.SendStart()
	if err := fw.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}

	// A whole burst queued before a single Step: the channel holds one
	// ready frame, so every keystroke must be consumed as it is injected.
	for _, ch := range []byte("hello") {
		hw.keys <- hal.KeyEvent{Press: true, Rune: rune(ch)}
	}
	if err := fw.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if got := fw.Terminal().InputLine(); got != "hello" {
		t.Fatalf("input line = %q, want %q", got, "hello")
	}
}

func TestUnknownCommandStillAcknowledges(t *testing.T) {
	fw, _ := newTestFirmware(t)
	fw.SendStart() // token = 1
	if err := fw.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}

	payload := tproto.AppendToken(nil, 0xCAFEBABE)
	for _, w := range tproto.AppendFrameWords(nil, 0x7777, payload) {
		fw.OnBusEvent(tproto.BusAddr(w))
	}
	if err := fw.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if got := fw.SharedRegs().Token(); got != 0xCAFEBABE {
		t.Fatalf("acknowledged token = %#x, want 0xcafebabe", got)
	}
}

func TestSelectKeyDrivesPin(t *testing.T) {
	hw := newTestHAL()
	fw, err := New(hw, Options{Display: &gridFake{cols: 40, rows: 10}, Rand: counterRand()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	hw.keys <- hal.KeyEvent{Code: hal.KeySelect, Press: true}
	if err := fw.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if level, _ := hw.sel.Read(); !level {
		t.Fatal("SELECT pin not driven high")
	}
	hw.keys <- hal.KeyEvent{Code: hal.KeySelect, Press: false}
	if err := fw.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if level, _ := hw.sel.Read(); level {
		t.Fatal("SELECT pin not released")
	}
}

func TestExitCommandRequestsContinue(t *testing.T) {
	fw, _ := newTestFirmware(t)
	fw.SendStart()
	if err := fw.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	for _, ch := range []byte("exit\n") {
		fw.sendKeystroke(ch)
		if err := fw.Step(); err != nil {
			t.Fatalf("Step: %v", err)
		}
	}
	if !fw.ExitRequested() {
		t.Fatal("exit not requested after 'exit' command")
	}
}
