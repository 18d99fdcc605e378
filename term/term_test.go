package term

import (
	"strings"
	"testing"

	"github.com/Chati-SidecarTridge/md-microfirmware-template/netinfo"
	"github.com/Chati-SidecarTridge/md-microfirmware-template/settings"
	"github.com/Chati-SidecarTridge/md-microfirmware-template/storage"
)

// fakeDisplay counts operations; the grid under test lives in Terminal.
type fakeDisplay struct {
	chars     int
	clears    int
	scrolls   int
	refreshes int
	commands  []uint8
}

func (d *fakeDisplay) StartSurface(cols, rows int) {}
func (d *fakeDisplay) Clear()                      { d.clears++ }
func (d *fakeDisplay) Char(x, y int, ch byte)      { d.chars++ }
func (d *fakeDisplay) Cursor(x, y int)             {}
func (d *fakeDisplay) ScrollUp()                   { d.scrolls++ }
func (d *fakeDisplay) Refresh()                    { d.refreshes++ }
func (d *fakeDisplay) SendCommand(id uint8)        { d.commands = append(d.commands, id) }

func newTestTerminal(t *testing.T, cols, rows int) (*Terminal, *fakeDisplay) {
	t.Helper()
	disp := &fakeDisplay{}
	term, err := New(Config{Cols: cols, Rows: rows, Display: disp})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return term, disp
}

// rowText reads one grid row as a string with empty cells as spaces,
// trailing blanks trimmed.
func rowText(term *Terminal, y int) string {
	var b strings.Builder
	for x := 0; x < term.Cols(); x++ {
		ch := term.CharAt(x, y)
		if ch == 0 {
			ch = ' '
		}
		b.WriteByte(ch)
	}
	return strings.TrimRight(b.String(), " ")
}

func TestPrintStringPlainText(t *testing.T) {
	term, _ := newTestTerminal(t, 10, 4)
	term.PrintString("A\nB")

	if got := term.CharAt(0, 0); got != 'A' {
		t.Fatalf("cell (0,0) = %q, want 'A'", got)
	}
	if got := term.CharAt(0, 1); got != 'B' {
		t.Fatalf("cell (0,1) = %q, want 'B'", got)
	}
	if x, y := term.Cursor(); x != 1 || y != 1 {
		t.Fatalf("cursor = (%d,%d), want (1,1)", x, y)
	}
}

func TestPrintStringWrapsAtRightEdge(t *testing.T) {
	term, _ := newTestTerminal(t, 4, 3)
	term.PrintString("abcde")

	if got := rowText(term, 0); got != "abcd" {
		t.Fatalf("row 0 = %q, want %q", got, "abcd")
	}
	if got := term.CharAt(0, 1); got != 'e' {
		t.Fatalf("cell (0,1) = %q, want 'e'", got)
	}
}

func TestScrollEvictsTopRow(t *testing.T) {
	term, disp := newTestTerminal(t, 10, 3)
	term.PrintString("one\ntwo\nthree\nfour")

	if got := rowText(term, 0); got != "two" {
		t.Fatalf("row 0 = %q, want %q", got, "two")
	}
	if got := rowText(term, 2); got != "four" {
		t.Fatalf("row 2 = %q, want %q", got, "four")
	}
	if disp.scrolls == 0 {
		t.Fatal("display never scrolled")
	}
}

func TestEscapeSequences(t *testing.T) {
	tcs := []struct {
		name  string
		input string
		wantX int
		wantY int
	}{
		{"home", "hello\x1bH", 0, 0},
		{"direct addressing", "\x1bY\x22\x25", 5, 2},
		{"direct addressing out of range ignored", "ab\x1bY\x7f\x7f", 2, 0},
		{"cursor up clamps at top", "\x1bA\x1bA", 0, 0},
		{"cursor right", "\x1bC\x1bC", 2, 0},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			term, _ := newTestTerminal(t, 20, 5)
			term.PrintString(tc.input)
			if x, y := term.Cursor(); x != tc.wantX || y != tc.wantY {
				t.Fatalf("cursor = (%d,%d), want (%d,%d)", x, y, tc.wantX, tc.wantY)
			}
		})
	}
}

func TestEscapeClearScreen(t *testing.T) {
	term, disp := newTestTerminal(t, 10, 3)
	term.PrintString("hello\nworld")
	term.PrintString("\x1bE")

	for y := 0; y < 3; y++ {
		if got := rowText(term, y); got != "" {
			t.Fatalf("row %d = %q after clear, want empty", y, got)
		}
	}
	if x, y := term.Cursor(); x != 0 || y != 0 {
		t.Fatalf("cursor = (%d,%d) after clear, want (0,0)", x, y)
	}
	if disp.clears == 0 {
		t.Fatal("display never cleared")
	}
}

func TestEscapeEraseToEndOfLine(t *testing.T) {
	term, _ := newTestTerminal(t, 10, 2)
	term.PrintString("abcdef\x1bY\x20\x23\x1bK")

	if got := rowText(term, 0); got != "abc" {
		t.Fatalf("row 0 = %q, want %q", got, "abc")
	}
}

func TestMalformedEscapeFlushesAsText(t *testing.T) {
	// ESC Y with only one follow byte at end of string cannot complete;
	// the buffered bytes render as literals instead of being lost.
	term, _ := newTestTerminal(t, 20, 3)
	term.PrintString("\x1bYz")

	if got := rowText(term, 0); !strings.Contains(got, "Yz") {
		t.Fatalf("row 0 = %q, want buffered escape flushed as text", got)
	}
}

func TestDispatchExactMatchGetsTrimmedArg(t *testing.T) {
	term, _ := newTestTerminal(t, 40, 5)
	var got string
	term.SetCommands([]Command{
		{Name: "get", Handler: func(arg string) { got = arg }},
	})
	for _, ch := range []byte("get   foo\n") {
		term.InputChar(ch)
	}
	if got != "foo" {
		t.Fatalf("arg = %q, want %q", got, "foo")
	}
}

func TestDispatchCatchAll(t *testing.T) {
	tcs := []struct {
		name     string
		catchAll bool
		line     string
		wantRaw  string
		wantHit  bool
	}{
		{"no catch-all, unknown command", false, "bogus arg", "", false},
		{"catch-all receives raw line", true, "bogus   arg", "bogus   arg", true},
		{"empty line never reaches catch-all fallback", true, "", "", true},
	}
	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			term, _ := newTestTerminal(t, 40, 5)
			hit := false
			raw := ""
			cmds := []Command{{Name: "noop", Handler: func(string) {}}}
			if tc.catchAll {
				cmds = append(cmds, Command{Name: "", Handler: func(arg string) {
					hit = true
					raw = arg
				}})
			}
			term.SetCommands(cmds)
			term.dispatchLine(tc.line)
			if hit != tc.wantHit {
				t.Fatalf("catch-all hit = %v, want %v", hit, tc.wantHit)
			}
			if raw != tc.wantRaw {
				t.Fatalf("catch-all arg = %q, want %q", raw, tc.wantRaw)
			}
		})
	}
}

func TestParseIntStrict(t *testing.T) {
	tcs := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"42", 42, true},
		{"-7", -7, true},
		{"  42  ", 42, true},
		{"12abc", 0, false},
		{"12 34", 0, false},
		{"", 0, false},
		{"abc", 0, false},
	}
	for _, tc := range tcs {
		got, ok := parseIntStrict(tc.in)
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("parseIntStrict(%q) = (%d,%v), want (%d,%v)", tc.in, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestParseBoolToken(t *testing.T) {
	tcs := []struct {
		in     string
		want   bool
		wantOK bool
	}{
		{"true", true, true},
		{"T", true, true},
		{"1", true, true},
		{"FALSE", false, true},
		{"f", false, true},
		{"0", false, true},
		{"yes", false, false},
		{"", false, false},
	}
	for _, tc := range tcs {
		got, ok := parseBoolToken(tc.in)
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("parseBoolToken(%q) = (%v,%v), want (%v,%v)", tc.in, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestBackspace(t *testing.T) {
	t.Run("erases within a row", func(t *testing.T) {
		term, _ := newTestTerminal(t, 10, 3)
		term.InputChar('a')
		term.InputChar('b')
		term.InputChar('\b')
		if got := term.InputLine(); got != "a" {
			t.Fatalf("input = %q, want %q", got, "a")
		}
		if x, y := term.Cursor(); x != 1 || y != 0 {
			t.Fatalf("cursor = (%d,%d), want (1,0)", x, y)
		}
		if got := term.CharAt(1, 0); got != 0 {
			t.Fatalf("cell (1,0) = %q, want empty", got)
		}
	})

	t.Run("wraps to previous row", func(t *testing.T) {
		term, _ := newTestTerminal(t, 4, 3)
		for _, ch := range []byte("abcd") {
			term.InputChar(ch)
		}
		// Cursor wrapped to (0,1); backspace must climb back to (3,0).
		term.InputChar('\b')
		if x, y := term.Cursor(); x != 3 || y != 0 {
			t.Fatalf("cursor = (%d,%d), want (3,0)", x, y)
		}
		if got := term.InputLine(); got != "abc" {
			t.Fatalf("input = %q, want %q", got, "abc")
		}
	})

	t.Run("stops at the origin", func(t *testing.T) {
		term, _ := newTestTerminal(t, 4, 3)
		term.InputChar('\b')
		if x, y := term.Cursor(); x != 0 || y != 0 {
			t.Fatalf("cursor = (%d,%d), want (0,0)", x, y)
		}
	})
}

func TestInputBufferFullDropsSilently(t *testing.T) {
	term, _ := newTestTerminal(t, 80, 25)
	for i := 0; i < inputBufferSize+10; i++ {
		term.InputChar('x')
	}
	if got := len(term.InputLine()); got != inputBufferSize-1 {
		t.Fatalf("input length = %d, want %d", got, inputBufferSize-1)
	}
}

func TestNewlineDispatchesAndReprintsPrompt(t *testing.T) {
	term, _ := newTestTerminal(t, 40, 5)
	ran := false
	term.SetCommands([]Command{{Name: "go", Handler: func(string) { ran = true }}})
	for _, ch := range []byte("go\n") {
		term.InputChar(ch)
	}
	if !ran {
		t.Fatal("command did not run")
	}
	if got := term.InputLine(); got != "" {
		t.Fatalf("input = %q after dispatch, want empty", got)
	}
	_, y := term.Cursor()
	if got := rowText(term, y); got != ">" {
		t.Fatalf("prompt row = %q, want %q", got, ">")
	}
}

func TestRefreshMenuLive(t *testing.T) {
	net := &netinfo.StaticProvider{Status: netinfo.Status{SSID: "alpha", SignalDB: "-40 dBm"}}
	sel := false
	disp := &fakeDisplay{}
	term, err := New(Config{
		Cols: 40, Rows: 25,
		Display:       disp,
		Net:           net,
		Mount:         storage.Unmounted,
		SelectPressed: func() bool { return sel },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	t.Run("no-op before status page", func(t *testing.T) {
		before := disp.refreshes
		term.RefreshMenuLive()
		if disp.refreshes != before {
			t.Fatal("refresh ran before rows were established")
		}
	})

	term.PrintStatus()
	term.PrintString("> ")
	term.MarkPromptCursor()
	promptX, promptY := term.Cursor()

	t.Run("repaints only changed lines", func(t *testing.T) {
		net.Status.SSID = "beta"
		sel = true
		term.RefreshMenuLive()
		found := false
		for y := 0; y < term.Rows(); y++ {
			row := rowText(term, y)
			if strings.Contains(row, "beta") {
				found = true
			}
			if strings.Contains(row, "alpha") {
				t.Fatalf("stale SSID still on screen: %q", row)
			}
		}
		if !found {
			t.Fatal("new SSID not rendered")
		}
		if x, y := term.Cursor(); x != promptX || y != promptY {
			t.Fatalf("cursor = (%d,%d) after refresh, want prompt (%d,%d)", x, y, promptX, promptY)
		}
	})

	t.Run("second refresh with no change emits nothing", func(t *testing.T) {
		before := disp.refreshes
		term.RefreshMenuLive()
		if disp.refreshes != before {
			t.Fatal("unchanged refresh still touched the display")
		}
	})

	t.Run("network page invalidates live rows", func(t *testing.T) {
		term.PrintNetwork()
		net.Status.SSID = "gamma"
		before := disp.refreshes
		term.RefreshMenuLive()
		if disp.refreshes != before {
			t.Fatal("refresh ran after the rows scrolled away")
		}
	})
}

func TestExitSendsContinue(t *testing.T) {
	term, disp := newTestTerminal(t, 40, 5)
	term.SetCommands(term.DefaultCommands())
	for _, ch := range []byte("exit\n") {
		term.InputChar(ch)
	}
	if len(disp.commands) != 1 || disp.commands[0] != DisplayCmdContinue {
		t.Fatalf("display commands = %v, want [%d]", disp.commands, DisplayCmdContinue)
	}
}

func TestSettingsCommands(t *testing.T) {
	store := settings.NewStore(nil, nil, []settings.Entry{
		{Key: "hostname", Type: settings.TypeString, Value: "md"},
		{Key: "boot_delay", Type: settings.TypeInt, Value: "0"},
		{Key: "safe_mode", Type: settings.TypeBool, Value: "false"},
	})
	disp := &fakeDisplay{}
	term, err := New(Config{Cols: 60, Rows: 25, Display: disp, Settings: store})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	term.SetCommands(term.DefaultCommands())

	typeLine := func(line string) {
		for _, ch := range []byte(line + "\n") {
			term.InputChar(ch)
		}
	}

	typeLine("put_int boot_delay 5")
	e, ok := store.FindEntry("boot_delay")
	if !ok || e.Value != "5" {
		t.Fatalf("boot_delay = %q (found=%v), want 5", e.Value, ok)
	}

	typeLine("put_int boot_delay 5x")
	e, _ = store.FindEntry("boot_delay")
	if e.Value != "5" {
		t.Fatalf("boot_delay = %q after rejected value, want unchanged 5", e.Value)
	}

	typeLine("put_bool safe_mode T")
	e, _ = store.FindEntry("safe_mode")
	if e.Value != "true" {
		t.Fatalf("safe_mode = %q, want true", e.Value)
	}

	typeLine("put_str hostname my device")
	e, _ = store.FindEntry("hostname")
	if e.Value != "my device" {
		t.Fatalf("hostname = %q, want %q", e.Value, "my device")
	}

	typeLine("put_int hostname 3")
	e, _ = store.FindEntry("hostname")
	if e.Value != "my device" {
		t.Fatalf("hostname = %q after type mismatch, want unchanged", e.Value)
	}
}
