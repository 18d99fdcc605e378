//go:build !tinygo

package hal

import (
	"image"

	"github.com/Chati-SidecarTridge/md-microfirmware-template/internal/buildinfo"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// RunWindow starts a desktop window that displays the framebuffer and
// forwards typed keys as simulator key events. It blocks until the window
// closes.
func RunWindow(newApp func(HAL) func() error) error {
	h := New().(*hostHAL)
	step := newApp(h)

	g := &hostGame{h: h, step: step}
	ebiten.SetWindowTitle("md-microfirmware (" + buildinfo.Short() + ")")
	ebiten.SetWindowSize(h.fb.width*2, h.fb.height*2)
	ebiten.SetTPS(60)
	return ebiten.RunGame(g)
}

type hostGame struct {
	h       *hostHAL
	img     *image.RGBA
	fbImg   *ebiten.Image
	scratch []byte
	step    func() error
}

func (g *hostGame) Update() error {
	g.pollKeys()
	if g.step != nil {
		if err := g.step(); err != nil {
			return err
		}
	}
	return nil
}

func (g *hostGame) pollKeys() {
	h := g.h

	for _, r := range ebiten.AppendInputChars(nil) {
		h.emitKey(KeyEvent{Press: true, Rune: r})
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		h.emitKey(KeyEvent{Code: KeyEnter, Press: true})
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		h.emitKey(KeyEvent{Code: KeyBackspace, Press: true})
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		h.emitKey(KeyEvent{Code: KeyEscape, Press: true})
	}

	// F12 is the SELECT button. Press/release drive the pin level so the
	// debounce logic sees a real-looking signal.
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		h.emitKey(KeyEvent{Code: KeySelect, Press: true})
	}
	if inpututil.IsKeyJustReleased(ebiten.KeyF12) {
		h.emitKey(KeyEvent{Code: KeySelect, Press: false})
	}
}

func (g *hostGame) Draw(screen *ebiten.Image) {
	fb := g.h.fb
	if g.img == nil || g.img.Bounds().Dx() != fb.width || g.img.Bounds().Dy() != fb.height {
		g.img = image.NewRGBA(image.Rect(0, 0, fb.width, fb.height))
		g.scratch = make([]byte, len(fb.buf))
		if g.fbImg != nil {
			g.fbImg.Deallocate()
		}
		g.fbImg = ebiten.NewImage(fb.width, fb.height)
	}

	fb.snapshotRGB565(g.scratch)

	src := g.scratch
	dst := g.img.Pix
	for i := 0; i+1 < len(src) && i/2*4+3 < len(dst); i += 2 {
		r, gg, b := unpackRGB565(uint16(src[i]) | uint16(src[i+1])<<8)
		j := (i / 2) * 4
		dst[j+0] = r
		dst[j+1] = gg
		dst[j+2] = b
		dst[j+3] = 0xFF
	}

	g.fbImg.ReplacePixels(g.img.Pix)
	screen.DrawImage(g.fbImg, nil)
}

func (g *hostGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.h.fb.width, g.h.fb.height
}
