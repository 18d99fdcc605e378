package term

// InputLine returns the current contents of the line editor.
func (t *Terminal) InputLine() string { return string(t.input[:t.inputLen]) }

// ClearInput empties the line editor without touching the screen.
func (t *Terminal) ClearInput() {
	for i := 0; i < t.inputLen; i++ {
		t.input[i] = 0
	}
	t.inputLen = 0
}

// InputChar feeds one keystroke to the line editor.
//
// Backspace erases one character, wrapping to the previous row when the
// cursor sits at column zero; at the true origin it does nothing further.
// Newline dispatches the accumulated line and reprints the prompt. Any
// other byte is appended and echoed, or dropped silently when the buffer
// is full.
func (t *Terminal) InputChar(ch byte) {
	switch ch {
	case '\b', 0x7F:
		t.disp.Char(t.prevX, t.prevY, ' ')
		if t.inputLen > 0 {
			t.inputLen--
			t.input[t.inputLen] = 0
			if t.cursorX == 0 {
				if t.cursorY == 0 {
					return
				}
				t.cursorY--
				t.cursorX = t.cols - 1
			} else {
				t.cursorX--
			}
			t.screen[t.cursorY*t.cols+t.cursorX] = 0
			t.disp.Char(t.cursorX, t.cursorY, ' ')
		}
		t.disp.Cursor(t.cursorX, t.cursorY)
		t.prevX, t.prevY = t.cursorX, t.cursorY
		t.disp.Refresh()

	case '\n', '\r':
		t.renderChar('\n')
		line := string(t.input[:t.inputLen])
		t.dispatchLine(line)
		t.ClearInput()
		t.PrintString("> ")
		t.MarkPromptCursor()
		t.disp.Refresh()

	default:
		if t.inputLen >= inputBufferSize-1 {
			return
		}
		t.input[t.inputLen] = ch
		t.inputLen++
		t.renderChar(ch)
		t.disp.Refresh()
	}
}
