// Package display renders the terminal's character grid onto a framebuffer
// with a bitmap font, one fixed-size tile per cell.
package display

import (
	"image/color"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"

	"github.com/Chati-SidecarTridge/md-microfirmware-template/hal"
)

var (
	colorBG     = color.RGBA{R: 0x08, G: 0x0B, B: 0x10, A: 0xFF}
	colorFG     = color.RGBA{R: 0xC8, G: 0xD2, B: 0xDC, A: 0xFF}
	colorCursor = color.RGBA{R: 0x50, G: 0xD1, B: 0xFF, A: 0xFF}
)

// TileDisplay draws characters into fixed cells and scrolls by whole tile
// rows. SendCommand is forwarded to the owner of the screen mode.
type TileDisplay struct {
	fb   *fbDisplayer
	log  hal.Logger
	font tinyfont.Fonter

	cellW, cellH int16
	// baseline is the glyph baseline offset from the cell top.
	baseline int16

	onCommand func(id uint8)
}

func New(fb hal.Framebuffer, log hal.Logger, onCommand func(uint8)) *TileDisplay {
	font := tinyfont.Fonter(&proggy.TinySZ8pt7b)
	_, outbox := tinyfont.LineWidth(font, "0")
	cellW := int16(outbox)
	cellH := int16(font.GetYAdvance())
	if cellW <= 0 {
		cellW = 6
	}
	if cellH <= 0 {
		cellH = 8
	}
	return &TileDisplay{
		fb:        newFBDisplayer(fb),
		log:       log,
		font:      font,
		cellW:     cellW,
		cellH:     cellH,
		baseline:  cellH - 2,
		onCommand: onCommand,
	}
}

// GridSize reports how many whole cells fit on the framebuffer.
func (d *TileDisplay) GridSize() (cols, rows int) {
	w, h := d.fb.Size()
	return int(w / d.cellW), int(h / d.cellH)
}

func (d *TileDisplay) StartSurface(cols, rows int) {
	d.fb.fillRect(0, 0, d.fb.width(), d.fb.height(), colorBG)
}

func (d *TileDisplay) Clear() {
	d.fb.fillRect(0, 0, d.fb.width(), d.fb.height(), colorBG)
}

func (d *TileDisplay) Char(x, y int, ch byte) {
	px := int16(x) * d.cellW
	py := int16(y) * d.cellH
	d.fb.fillRect(px, py, d.cellW, d.cellH, colorBG)
	if ch <= ' ' {
		return
	}
	tinyfont.DrawChar(d.fb, d.font, px, py+d.baseline, rune(ch), colorFG)
}

func (d *TileDisplay) Cursor(x, y int) {
	px := int16(x) * d.cellW
	py := int16(y)*d.cellH + d.cellH - 2
	d.fb.fillRect(px, py, d.cellW, 2, colorCursor)
}

func (d *TileDisplay) ScrollUp() {
	d.fb.scrollUp(d.cellH, colorBG)
}

func (d *TileDisplay) Refresh() {
	if err := d.fb.present(); err != nil && d.log != nil {
		d.log.WriteLineString("display: present: " + err.Error())
	}
}

func (d *TileDisplay) SendCommand(id uint8) {
	if d.onCommand != nil {
		d.onCommand(id)
	}
}
