//go:build !tinygo

// Package console is a text-mode frontend for the host build: the terminal
// grid is drawn straight into the controlling terminal with tcell instead
// of the pixel framebuffer window.
package console

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/Chati-SidecarTridge/md-microfirmware-template/hal"
)

// Display implements the terminal display contract on a tcell screen. It
// keeps a cell cache because the scroll operation has to repaint rows the
// emulator core never rewrites.
type Display struct {
	screen tcell.Screen
	style  tcell.Style

	cols, rows int
	cells      []byte

	selectHeld bool
	onCommand  func(id uint8)
}

func New(onCommand func(uint8)) (*Display, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("console: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("console: init: %w", err)
	}
	return &Display{
		screen:    screen,
		style:     tcell.StyleDefault.Foreground(tcell.ColorSilver).Background(tcell.ColorBlack),
		onCommand: onCommand,
	}, nil
}

// Close restores the controlling terminal.
func (d *Display) Close() { d.screen.Fini() }

// SetCommandSink attaches the receiver for display commands after
// construction; the firmware wires itself in once it exists.
func (d *Display) SetCommandSink(sink func(uint8)) { d.onCommand = sink }

// Interrupt wakes RunEventLoop so another goroutine can shut it down.
func (d *Display) Interrupt() {
	_ = d.screen.PostEvent(tcell.NewEventInterrupt(nil))
}

// GridSize reports the usable cell grid, capped to a sane emulator size.
func (d *Display) GridSize() (cols, rows int) {
	cols, rows = d.screen.Size()
	if cols > 80 {
		cols = 80
	}
	if rows > 40 {
		rows = 40
	}
	return cols, rows
}

func (d *Display) StartSurface(cols, rows int) {
	d.cols, d.rows = cols, rows
	d.cells = make([]byte, cols*rows)
	d.screen.Clear()
}

func (d *Display) Clear() {
	for i := range d.cells {
		d.cells[i] = 0
	}
	d.screen.Clear()
}

func (d *Display) Char(x, y int, ch byte) {
	if x < 0 || x >= d.cols || y < 0 || y >= d.rows {
		return
	}
	d.cells[y*d.cols+x] = ch
	r := rune(ch)
	if ch < ' ' {
		r = ' '
	}
	d.screen.SetContent(x, y, r, nil, d.style)
}

func (d *Display) Cursor(x, y int) {
	d.screen.ShowCursor(x, y)
}

func (d *Display) ScrollUp() {
	if d.rows == 0 {
		return
	}
	copy(d.cells, d.cells[d.cols:])
	bottom := d.cells[len(d.cells)-d.cols:]
	for i := range bottom {
		bottom[i] = 0
	}
	for y := 0; y < d.rows; y++ {
		for x := 0; x < d.cols; x++ {
			ch := d.cells[y*d.cols+x]
			r := rune(ch)
			if ch < ' ' {
				r = ' '
			}
			d.screen.SetContent(x, y, r, nil, d.style)
		}
	}
}

func (d *Display) Refresh() {
	d.screen.Show()
}

func (d *Display) SendCommand(id uint8) {
	if d.onCommand != nil {
		d.onCommand(id)
	}
}

// RunEventLoop polls tcell events and converts them to key events until
// the emit callback returns false or the screen shuts down. F12 stands in
// for the SELECT button; tcell has no key-up events, so F12 toggles: the
// first press holds the pin, the second releases it. The hold must span
// the debounce window or the button monitor never sees the press.
func (d *Display) RunEventLoop(emit func(hal.KeyEvent) bool) {
	for {
		ev := d.screen.PollEvent()
		if ev == nil {
			return
		}
		switch tev := ev.(type) {
		case *tcell.EventKey:
			for _, ke := range d.convertKey(tev) {
				if !emit(ke) {
					return
				}
			}
		case *tcell.EventResize:
			d.screen.Sync()
		case *tcell.EventInterrupt:
			return
		}
	}
}

func (d *Display) convertKey(ev *tcell.EventKey) []hal.KeyEvent {
	switch ev.Key() {
	case tcell.KeyRune:
		return []hal.KeyEvent{{Code: hal.KeyUnknown, Press: true, Rune: ev.Rune()}}
	case tcell.KeyEnter:
		return []hal.KeyEvent{{Code: hal.KeyEnter, Press: true}}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return []hal.KeyEvent{{Code: hal.KeyBackspace, Press: true}}
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return []hal.KeyEvent{{Code: hal.KeyEscape, Press: true}}
	case tcell.KeyF12:
		d.selectHeld = !d.selectHeld
		return []hal.KeyEvent{{Code: hal.KeySelect, Press: d.selectHeld}}
	}
	return nil
}
