package display

import (
	"errors"
	"image/color"

	"tinygo.org/x/drivers"

	"github.com/Chati-SidecarTridge/md-microfirmware-template/hal"
)

var _ drivers.Displayer = (*fbDisplayer)(nil)

// fbDisplayer adapts a hal.Framebuffer to drivers.Displayer so tinyfont can
// draw into it, plus the rectangle and scroll primitives the tile renderer
// needs. Only RGB565 buffers are supported.
type fbDisplayer struct {
	fb hal.Framebuffer
}

func newFBDisplayer(fb hal.Framebuffer) *fbDisplayer {
	return &fbDisplayer{fb: fb}
}

func (d *fbDisplayer) width() int16  { return int16(d.fb.Width()) }
func (d *fbDisplayer) height() int16 { return int16(d.fb.Height()) }

func (d *fbDisplayer) Size() (x, y int16) {
	return d.width(), d.height()
}

func (d *fbDisplayer) SetPixel(x, y int16, c color.RGBA) {
	if d.fb.Format() != hal.PixelFormatRGB565 {
		return
	}
	buf := d.fb.Buffer()
	ix, iy := int(x), int(y)
	if buf == nil || ix < 0 || ix >= d.fb.Width() || iy < 0 || iy >= d.fb.Height() {
		return
	}
	pixel := rgb565From888(c.R, c.G, c.B)
	off := iy*d.fb.StrideBytes() + ix*2
	if off+1 >= len(buf) {
		return
	}
	buf[off] = byte(pixel)
	buf[off+1] = byte(pixel >> 8)
}

func (d *fbDisplayer) Display() error { return d.fb.Present() }

func (d *fbDisplayer) present() error {
	if d.fb.Format() != hal.PixelFormatRGB565 {
		return errors.New("unsupported pixel format")
	}
	return d.fb.Present()
}

func (d *fbDisplayer) fillRect(x, y, w, h int16, c color.RGBA) {
	if d.fb.Format() != hal.PixelFormatRGB565 {
		return
	}
	buf := d.fb.Buffer()
	if buf == nil {
		return
	}
	fbW, fbH := d.fb.Width(), d.fb.Height()
	x0 := clampInt(int(x), 0, fbW)
	y0 := clampInt(int(y), 0, fbH)
	x1 := clampInt(int(x)+int(w), 0, fbW)
	y1 := clampInt(int(y)+int(h), 0, fbH)
	if x0 >= x1 || y0 >= y1 {
		return
	}

	pixel := rgb565From888(c.R, c.G, c.B)
	lo, hi := byte(pixel), byte(pixel>>8)
	stride := d.fb.StrideBytes()
	for py := y0; py < y1; py++ {
		row := py * stride
		for px := x0; px < x1; px++ {
			off := row + px*2
			if off+1 >= len(buf) {
				continue
			}
			buf[off] = lo
			buf[off+1] = hi
		}
	}
}

// scrollUp shifts the whole buffer up by n pixel lines and repaints the
// exposed band at the bottom.
func (d *fbDisplayer) scrollUp(n int16, bg color.RGBA) {
	if d.fb.Format() != hal.PixelFormatRGB565 || n <= 0 {
		return
	}
	buf := d.fb.Buffer()
	if buf == nil {
		return
	}
	h := d.fb.Height()
	if int(n) >= h {
		d.fillRect(0, 0, d.width(), d.height(), bg)
		return
	}
	stride := d.fb.StrideBytes()
	srcStart := int(n) * stride
	dstLen := (h - int(n)) * stride
	if srcStart+dstLen > len(buf) {
		dstLen = len(buf) - srcStart
	}
	if dstLen <= 0 {
		return
	}
	copy(buf[:dstLen], buf[srcStart:srcStart+dstLen])
	d.fillRect(0, int16(h-int(n)), d.width(), n, bg)
}

func rgb565From888(r, g, b uint8) uint16 {
	return uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
