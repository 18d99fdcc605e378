package term

import (
	"fmt"

	"github.com/Chati-SidecarTridge/md-microfirmware-template/netinfo"
)

// netStatus tolerates a missing provider.
func (t *Terminal) netStatus() netinfo.Status {
	if t.net == nil {
		return netinfo.Status{}
	}
	return t.net.Current()
}

func (t *Terminal) selectLabel() string {
	if t.selPressed != nil && t.selPressed() {
		return "Pressed"
	}
	return "Released"
}

func (t *Terminal) storageLabels() (status, space string) {
	if t.mount == nil {
		return "Not mounted", "N/A"
	}
	if total, free, ok := t.mount.MountedInfo(); ok {
		return "Mounted", fmt.Sprintf("%d/%d MB free", free, total)
	}
	if t.mount.IsMounted() {
		return "Error", "N/A"
	}
	return "Not mounted", "N/A"
}

func (t *Terminal) ssidLine() string {
	st := t.netStatus()
	return fmt.Sprintf("SSID      : %s (%s)", netinfo.OrNA(st.SSID), netinfo.OrNA(st.SignalDB))
}

func (t *Terminal) selectLine() string {
	return fmt.Sprintf("SELECT    : %s", t.selectLabel())
}

func (t *Terminal) sdLine() string {
	status, space := t.storageLabels()
	return fmt.Sprintf("SD card   : %s (%s)", status, space)
}

func (t *Terminal) printNetHeader(st netinfo.Status) {
	if st.Connected {
		t.PrintString("Network status: Connected\n")
	} else {
		t.PrintString("Network status: Not connected\n")
	}
	t.Printf("MCU       : %s (%s)\n", netinfo.OrNA(st.MCUArch), netinfo.OrNA(st.MCUID))
	t.Printf("Host name : %s\n", netinfo.OrNA(st.HostName))
	t.Printf("WiFi      : %s (%s)\n", netinfo.OrNA(st.WifiMode), netinfo.OrNA(st.WifiLink))
	t.Printf("IP        : %s (%s)\n", netinfo.OrNA(st.IP), netinfo.OrNA(st.IPMode))
	t.Printf("Netmask   : %s\n", netinfo.OrNA(st.Netmask))
	t.Printf("Gateway   : %s\n", netinfo.OrNA(st.Gateway))
	t.Printf("DNS       : %s, %s\n", netinfo.OrNA(st.DNS1), netinfo.OrNA(st.DNS2))
	t.Printf("WiFi MAC  : %s\n", netinfo.OrNA(st.MAC))
}

// PrintNetwork renders only the network page. The screen scrolls, so any
// live rows recorded by an earlier status page are invalidated.
func (t *Terminal) PrintNetwork() {
	st := t.netStatus()
	t.rowsValid = false
	t.printNetHeader(st)
	t.PrintString(t.ssidLine() + "\n")
	t.Printf("BSSID     : %s\n", netinfo.OrNA(st.BSSID))
	t.Printf("Auth mode : %s\n", netinfo.OrNA(st.AuthMode))
}

// PrintStatus renders the status page and records the rows of the three
// live fields. Rows are not trusted until the whole page printed.
func (t *Terminal) PrintStatus() {
	st := t.netStatus()
	t.rowsValid = false

	t.printNetHeader(st)

	t.rowSSID = t.cursorY
	t.PrintString(t.ssidLine() + "\n")
	t.Printf("BSSID     : %s\n", netinfo.OrNA(st.BSSID))
	t.Printf("Auth mode : %s\n", netinfo.OrNA(st.AuthMode))
	t.PrintString("\n")

	t.rowSelect = t.cursorY
	t.PrintString(t.selectLine() + "\n")
	t.PrintString("\n")

	t.rowSD = t.cursorY
	t.PrintString(t.sdLine() + "\n")

	t.prevSSIDLine = ""
	t.prevSelectLine = ""
	t.prevSDLine = ""
	t.rowsValid = true
}

// MarkPromptCursor remembers the current cell so a live refresh can park
// the cursor back at the prompt afterwards.
func (t *Terminal) MarkPromptCursor() {
	t.promptRow, t.promptCol = t.cursorY, t.cursorX
	t.promptValid = true
}

// RefreshMenuLive repaints only the status lines whose text changed since
// the last refresh, addressing each with ESC Y and clearing it with ESC K
// before rewriting. A no-op when nothing changed or before the status page
// established its row positions.
func (t *Terminal) RefreshMenuLive() {
	if !t.rowsValid {
		return
	}
	ssid := t.ssidLine()
	sel := t.selectLine()
	sd := t.sdLine()

	var b []byte
	move := func(row, col int) {
		b = append(b, escChar, 'Y', byte(posBase+row), byte(posBase+col))
	}
	if ssid != t.prevSSIDLine {
		move(t.rowSSID, 0)
		b = append(b, escChar, 'K')
		b = append(b, ssid...)
	}
	if sel != t.prevSelectLine {
		move(t.rowSelect, 0)
		b = append(b, escChar, 'K')
		b = append(b, sel...)
	}
	if sd != t.prevSDLine {
		move(t.rowSD, 0)
		b = append(b, escChar, 'K')
		b = append(b, sd...)
	}
	if len(b) == 0 {
		return
	}
	if t.promptValid {
		move(t.promptRow, t.promptCol)
	}
	t.prevSSIDLine = ssid
	t.prevSelectLine = sel
	t.prevSDLine = sd
	t.PrintString(string(b))
}
