// Package term implements the cartridge's interactive terminal: a VT52
// subset over a character grid, a line editor with a command table, and the
// differential status-line refresh the menu uses.
package term

import (
	"fmt"

	"github.com/Chati-SidecarTridge/md-microfirmware-template/hal"
	"github.com/Chati-SidecarTridge/md-microfirmware-template/netinfo"
	"github.com/Chati-SidecarTridge/md-microfirmware-template/settings"
	"github.com/Chati-SidecarTridge/md-microfirmware-template/storage"
)

const (
	escChar         = 0x1B
	escBufferSize   = 8
	inputBufferSize = 64

	// VT52 direct addressing encodes row and column as offsets from 0x20.
	posBase = 0x20
)

// Display realizes the character grid somewhere visible. Implementations
// own the pixel/tile buffer; ScrollUp must shift it by one tile row and
// blank the vacated band, mirroring the grid scroll.
type Display interface {
	StartSurface(cols, rows int)
	Clear()
	Char(x, y int, ch byte)
	Cursor(x, y int)
	ScrollUp()
	Refresh()
	SendCommand(id uint8)
}

// Display command ids forwarded through SendCommand.
const (
	DisplayCmdTerminal uint8 = 1
	DisplayCmdContinue uint8 = 2
)

// Command is one entry of the terminal's command table. An entry with an
// empty Name is the catch-all, invoked only when no exact match exists.
type Command struct {
	Name    string
	Help    string
	Handler func(arg string)
}

// Terminal owns the screen grid and the input line. Single-writer: the
// cooperative main loop.
type Terminal struct {
	disp Display
	log  hal.Logger

	cols, rows int
	screen     []byte

	cursorX, cursorY int
	// prevCursor is where the cursor glyph was last drawn; renderChar
	// erases it there before anything else.
	prevX, prevY int

	input    [inputBufferSize]byte
	inputLen int

	commands []Command

	store      *settings.Store
	net        netinfo.Provider
	mount      storage.Mount
	selPressed func() bool

	rowSSID, rowSelect, rowSD int
	promptRow, promptCol      int
	rowsValid, promptValid    bool

	prevSSIDLine   string
	prevSelectLine string
	prevSDLine     string
}

// Config wires the terminal to its collaborators.
type Config struct {
	Cols, Rows    int
	Display       Display
	Logger        hal.Logger
	Settings      *settings.Store
	Net           netinfo.Provider
	Mount         storage.Mount
	SelectPressed func() bool
}

func New(cfg Config) (*Terminal, error) {
	if cfg.Display == nil {
		return nil, fmt.Errorf("term: nil display")
	}
	if cfg.Cols <= 0 || cfg.Rows <= 0 {
		return nil, fmt.Errorf("term: invalid grid %dx%d", cfg.Cols, cfg.Rows)
	}
	return &Terminal{
		disp:       cfg.Display,
		log:        cfg.Logger,
		cols:       cfg.Cols,
		rows:       cfg.Rows,
		screen:     make([]byte, cfg.Cols*cfg.Rows),
		store:      cfg.Settings,
		net:        cfg.Net,
		mount:      cfg.Mount,
		selPressed: cfg.SelectPressed,
	}, nil
}

func (t *Terminal) Cols() int { return t.cols }
func (t *Terminal) Rows() int { return t.rows }

// Cursor returns the current cursor cell.
func (t *Terminal) Cursor() (x, y int) { return t.cursorX, t.cursorY }

// CharAt returns the grid byte at a cell, zero when empty or out of range.
func (t *Terminal) CharAt(x, y int) byte {
	if x < 0 || x >= t.cols || y < 0 || y >= t.rows {
		return 0
	}
	return t.screen[y*t.cols+x]
}

// SetCommands replaces the command table.
func (t *Terminal) SetCommands(cmds []Command) { t.commands = cmds }

// ClearScreen zeroes the grid, homes the cursor, drops the cached status
// row positions and asks the display for a full clear.
func (t *Terminal) ClearScreen() {
	for i := range t.screen {
		t.screen[i] = 0
	}
	t.cursorX, t.cursorY = 0, 0
	t.rowsValid = false
	t.promptValid = false
	t.disp.Clear()
}

// scrollUp shifts the grid one row up and clears the bottom row. The
// display shifts its pixel buffer by the matching tile-row footprint.
func (t *Terminal) scrollUp() {
	copy(t.screen, t.screen[t.cols:])
	bottom := t.screen[len(t.screen)-t.cols:]
	for i := range bottom {
		bottom[i] = 0
	}
	t.disp.ScrollUp()
}

// putChar writes at the cursor and advances, scrolling on wrap.
func (t *Terminal) putChar(ch byte) {
	t.screen[t.cursorY*t.cols+t.cursorX] = ch
	t.disp.Char(t.cursorX, t.cursorY, ch)
	t.cursorX++
	if t.cursorX >= t.cols {
		t.cursorX = 0
		t.cursorY++
		if t.cursorY >= t.rows {
			t.scrollUp()
			t.cursorY = t.rows - 1
		}
	}
}

// renderChar is the shared rendering primitive. The order is load-bearing:
// erase the cursor glyph at the previous position, move/write, draw the
// cursor at the new position, remember it.
func (t *Terminal) renderChar(ch byte) {
	t.disp.Char(t.prevX, t.prevY, ' ')
	if ch == '\n' || ch == '\r' {
		t.cursorX = 0
		t.cursorY++
		if t.cursorY >= t.rows {
			t.scrollUp()
			t.cursorY = t.rows - 1
		}
	} else if ch != 0 {
		t.putChar(ch)
	}
	t.disp.Cursor(t.cursorX, t.cursorY)
	t.prevX, t.prevY = t.cursorX, t.cursorY
}

// PrintString renders text, interpreting the VT52 escape subset. Overlong
// or unterminated sequences flush as literal text; grid state is never
// corrupted by malformed input.
func (t *Terminal) PrintString(s string) {
	var escBuf [escBufferSize]byte
	escLen := 0
	inEscape := false

	for i := 0; i < len(s); i++ {
		ch := s[i]
		if !inEscape {
			if ch == escChar {
				inEscape = true
				escLen = 0
				escBuf[escLen] = ch
				escLen++
			} else {
				t.renderChar(ch)
			}
			continue
		}

		escBuf[escLen] = ch
		escLen++
		if escLen == 2 {
			if escBuf[1] != 'Y' {
				t.processEscape(escBuf[:escLen])
				inEscape = false
			}
			// ESC Y needs two more bytes for row and column.
		} else if escBuf[1] == 'Y' && escLen == 4 {
			t.processEscape(escBuf[:escLen])
			inEscape = false
		}
		if inEscape && escLen >= len(escBuf) {
			for _, b := range escBuf[:escLen] {
				t.renderChar(b)
			}
			inEscape = false
		}
	}

	if inEscape {
		for _, b := range escBuf[:escLen] {
			t.renderChar(b)
		}
	}
	t.disp.Refresh()
}

// Printf formats through the VT52 renderer.
func (t *Terminal) Printf(format string, args ...any) {
	t.PrintString(fmt.Sprintf(format, args...))
}

func (t *Terminal) logf(s string) {
	if t.log != nil {
		t.log.WriteLineString(s)
	}
}
