package term

// processEscape executes one complete escape sequence. Unknown finals are
// discarded; the cursor glyph is still repainted so a sequence can never
// leave a stale glyph behind.
func (t *Terminal) processEscape(seq []byte) {
	switch seq[1] {
	case 'A': // cursor up
		if t.cursorY > 0 {
			t.cursorY--
		}
		t.renderChar(0)
	case 'B': // cursor down
		if t.cursorY < t.rows-1 {
			t.cursorY++
		}
		t.renderChar(0)
	case 'C': // cursor right
		if t.cursorX < t.cols-1 {
			t.cursorX++
		}
		t.renderChar(0)
	case 'D': // cursor left
		if t.cursorX > 0 {
			t.cursorX--
		}
		t.renderChar(0)
	case 'H': // home
		t.cursorX, t.cursorY = 0, 0
		t.renderChar(0)
	case 'Y': // direct addressing: ESC Y <row+0x20> <col+0x20>
		row := int(seq[2]) - posBase
		col := int(seq[3]) - posBase
		if row >= 0 && row < t.rows && col >= 0 && col < t.cols {
			t.cursorX, t.cursorY = col, row
		}
		t.renderChar(0)
	case 'E': // clear screen and home
		t.cursorX, t.cursorY = 0, 0
		t.renderChar(0)
		for i := range t.screen {
			t.screen[i] = 0
		}
		t.disp.Clear()
	case 'K': // erase to end of line
		for x := t.cursorX; x < t.cols; x++ {
			t.screen[t.cursorY*t.cols+x] = 0
			t.disp.Char(x, t.cursorY, ' ')
		}
		t.renderChar(0)
	case 'J': // erase to end of screen
		for x := t.cursorX; x < t.cols; x++ {
			t.screen[t.cursorY*t.cols+x] = 0
			t.disp.Char(x, t.cursorY, ' ')
		}
		for y := t.cursorY + 1; y < t.rows; y++ {
			for x := 0; x < t.cols; x++ {
				t.screen[y*t.cols+x] = 0
				t.disp.Char(x, y, ' ')
			}
		}
		t.renderChar(0)
	default:
		t.logf("term: unsupported escape " + string(seq[1]))
	}
}
