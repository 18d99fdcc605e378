// Package app assembles the firmware: the bus command channel, the VT52
// terminal, the SELECT button monitor and the collaborators they talk to.
package app

import (
	"fmt"
	"time"

	"github.com/Chati-SidecarTridge/md-microfirmware-template/button"
	"github.com/Chati-SidecarTridge/md-microfirmware-template/display"
	"github.com/Chati-SidecarTridge/md-microfirmware-template/hal"
	"github.com/Chati-SidecarTridge/md-microfirmware-template/internal/buildinfo"
	"github.com/Chati-SidecarTridge/md-microfirmware-template/netinfo"
	"github.com/Chati-SidecarTridge/md-microfirmware-template/settings"
	"github.com/Chati-SidecarTridge/md-microfirmware-template/storage"
	"github.com/Chati-SidecarTridge/md-microfirmware-template/term"
	"github.com/Chati-SidecarTridge/md-microfirmware-template/tproto"
)

// menuRefreshInterval paces the differential status-line repaint.
const menuRefreshInterval = time.Second

// GridDisplay is a term.Display that knows its own cell capacity.
type GridDisplay interface {
	term.Display
	GridSize() (cols, rows int)
}

// Options overrides collaborators, mostly for the host frontends and
// tests. Zero values select the defaults for the target.
type Options struct {
	Display  GridDisplay
	Net      netinfo.Provider
	Mount    storage.Mount
	Backend  settings.Backend
	Rand     func() uint32
	Defaults []settings.Entry
}

// Firmware is the cooperative main-loop state. All methods run on the
// loop goroutine; only the bus event path is interrupt-driven.
type Firmware struct {
	hw  hal.HAL
	log hal.Logger

	channel *tproto.Channel
	shared  *tproto.SharedRegs
	mon     *button.Monitor
	term    *term.Terminal
	disp    GridDisplay
	store   *settings.Store
	rand    func() uint32

	started        bool
	exiting        bool
	lastMenu       time.Time
	lastOverwrites uint32
	resetWant      bool
}

func New(hw hal.HAL, opts Options) (*Firmware, error) {
	log := hw.Logger()
	fw := &Firmware{hw: hw, log: log, shared: &tproto.SharedRegs{}}

	fw.disp = opts.Display
	if fw.disp == nil {
		fw.disp = display.New(hw.Framebuffer(), log, fw.onDisplayCommand)
	} else if fwd, ok := fw.disp.(interface{ SetCommandSink(func(uint8)) }); ok {
		fwd.SetCommandSink(fw.onDisplayCommand)
	}

	defaults := opts.Defaults
	if defaults == nil {
		defaults = DefaultSettings()
	}
	fw.store = settings.NewStore(log, opts.Backend, defaults)

	mon, err := button.New(hw.SelectPin(), hw.Clock(), log, button.Config{})
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	fw.mon = mon

	fw.channel = tproto.NewChannel(hw.IRQ(), log)

	net := opts.Net
	mount := opts.Mount
	if mount == nil {
		mount = storage.Unmounted
	}
	cols, rows := fw.disp.GridSize()
	t, err := term.New(term.Config{
		Cols:          cols,
		Rows:          rows,
		Display:       fw.disp,
		Logger:        log,
		Settings:      fw.store,
		Net:           net,
		Mount:         mount,
		SelectPressed: mon.Pressed,
	})
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	t.SetCommands(t.DefaultCommands())
	fw.term = t

	fw.rand = opts.Rand
	if fw.rand == nil {
		fw.rand = timeSeededRand(hw.Clock())
	}

	mon.StartWatch(fw.onShortPress, fw.onLongPress)
	return fw, nil
}

// DefaultSettings is the factory configuration.
func DefaultSettings() []settings.Entry {
	return []settings.Entry{
		{Key: "hostname", Type: settings.TypeString, Value: "sidecart"},
		{Key: "boot_delay", Type: settings.TypeInt, Value: "0"},
		{Key: "safe_config_reboot", Type: settings.TypeBool, Value: "true"},
		{Key: "wifi_ssid", Type: settings.TypeString, Value: ""},
		{Key: "wifi_auth", Type: settings.TypeString, Value: ""},
	}
}

// OnBusEvent is the interrupt entry point: one latched bus address per
// host computer access.
func (f *Firmware) OnBusEvent(addr uint32) { f.channel.OnBusEvent(addr) }

// SharedRegs exposes the acknowledge registers the host computer polls.
func (f *Firmware) SharedRegs() *tproto.SharedRegs { return f.shared }

// Terminal exposes the emulator core to frontends and tests.
func (f *Firmware) Terminal() *term.Terminal { return f.term }

// ExitRequested reports that the terminal asked the host computer to
// continue booting.
func (f *Firmware) ExitRequested() bool { return f.exiting }

// ResetRequested reports that the SELECT button asked for a reboot. The
// target entry point decides how to reset the MCU.
func (f *Firmware) ResetRequested() bool { return f.resetWant }

// Step runs one iteration of the cooperative main loop.
func (f *Firmware) Step() error {
	f.drainKeys()
	f.pollOnce()

	// The watch context consumes one full press then terminates; after
	// that the latched poll picks up further presses.
	if !f.mon.WatchActive() {
		f.mon.CheckPushReset()
	}

	now := f.hw.Clock().Now()
	if f.started && now.Sub(f.lastMenu) >= menuRefreshInterval {
		f.term.RefreshMenuLive()
		f.lastMenu = now
	}
	return nil
}

// Run loops Step forever; the embedded target entry point.
func (f *Firmware) Run() {
	for {
		if err := f.Step(); err != nil {
			f.log.WriteLineString("app: " + err.Error())
		}
		f.hw.Clock().Sleep(5 * time.Millisecond)
	}
}

// pollOnce consumes at most one command frame from the channel.
func (f *Firmware) pollOnce() {
	if frame, overwrites, ok := f.channel.Poll(); ok {
		if overwrites > f.lastOverwrites {
			f.log.WriteLineString(fmt.Sprintf("app: %d command frames overwritten", overwrites-f.lastOverwrites))
			f.lastOverwrites = overwrites
		}
		f.handleFrame(&frame)
	}
}

// drainKeys converts simulator key events into bus traffic so the host
// build exercises the same receive pipeline as real hardware. The channel
// holds a single ready frame, so each injected keystroke is consumed
// before the next one is produced.
func (f *Firmware) drainKeys() {
	for {
		select {
		case ev := <-f.hw.Keys():
			f.handleKey(ev)
			f.pollOnce()
		default:
			return
		}
	}
}

func (f *Firmware) handleKey(ev hal.KeyEvent) {
	if ev.Code == hal.KeySelect {
		_ = f.hw.SelectPin().Write(ev.Press)
		return
	}
	if !ev.Press {
		return
	}
	switch ev.Code {
	case hal.KeyEnter:
		f.sendKeystroke('\n')
	case hal.KeyBackspace:
		f.sendKeystroke('\b')
	case hal.KeyEscape:
		// No terminal binding.
	default:
		if ev.Rune > 0 && ev.Rune < 0x80 {
			f.sendKeystroke(byte(ev.Rune))
		}
	}
}

// sendKeystroke replays one key as a KEYSTROKE command frame on the bus.
func (f *Firmware) sendKeystroke(ch byte) {
	var payload []byte
	payload = tproto.AppendToken(payload, f.rand())
	payload = tproto.AppendParam32(payload, uint32(ch))
	for _, w := range tproto.AppendFrameWords(nil, tproto.CmdKeystroke, payload) {
		f.OnBusEvent(tproto.BusAddr(w))
	}
}

// SendStart replays the terminal-start command frame.
func (f *Firmware) SendStart() {
	var payload []byte
	payload = tproto.AppendToken(payload, f.rand())
	for _, w := range tproto.AppendFrameWords(nil, tproto.CmdStart, payload) {
		f.OnBusEvent(tproto.BusAddr(w))
	}
}

func (f *Firmware) handleFrame(frame *tproto.Frame) {
	payload := frame.Payload[:frame.PayloadSize]
	token := tproto.Token(payload)

	switch frame.CommandID {
	case tproto.CmdStart:
		f.startTerminal()
	case tproto.CmdKeystroke:
		if f.started {
			ch := byte(tproto.Param32(payload, 0))
			f.term.InputChar(normalizeKey(ch))
		}
	default:
		f.log.WriteLineString(fmt.Sprintf("app: unknown command %#04x", frame.CommandID))
	}

	// Acknowledge every delivered frame, unknown ids included: the host
	// computer polls the echoed token to see the firmware is alive.
	f.shared.SetToken(token)
	f.shared.SetSeed(f.rand())
}

func normalizeKey(ch byte) byte {
	switch ch {
	case '\r':
		return '\n'
	case 0x7F:
		return '\b'
	}
	return ch
}

func (f *Firmware) startTerminal() {
	f.disp.StartSurface(f.term.Cols(), f.term.Rows())
	f.term.ClearScreen()
	f.term.Printf("SidecarTridge Multi-device %s\n\n", buildinfo.Short())
	f.term.PrintStatus()
	f.term.PrintString("\nType 'help' for a list of commands.\n\n> ")
	f.term.MarkPromptCursor()
	f.disp.SendCommand(term.DisplayCmdTerminal)
	f.started = true
	f.lastMenu = f.hw.Clock().Now()
}

func (f *Firmware) onDisplayCommand(id uint8) {
	if id == term.DisplayCmdContinue {
		f.exiting = true
	}
}

func (f *Firmware) onShortPress() {
	f.log.WriteLineString("app: SELECT pressed, reboot requested")
	f.resetWant = true
}

func (f *Firmware) onLongPress() {
	f.log.WriteLineString("app: SELECT held, factory reset")
	if err := f.store.Erase(); err != nil {
		f.log.WriteLineString("app: factory reset: " + err.Error())
	}
	f.resetWant = true
}

// timeSeededRand is a small xorshift PRNG for tokens and seeds; quality
// does not matter, only that consecutive values differ.
func timeSeededRand(clock hal.Clock) func() uint32 {
	state := uint32(clock.Now().UnixNano())
	if state == 0 {
		state = 0x9E3779B9
	}
	return func() uint32 {
		state ^= state << 13
		state ^= state >> 17
		state ^= state << 5
		return state
	}
}
