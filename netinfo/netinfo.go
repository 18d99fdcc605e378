// Package netinfo is the boundary to the network stack owned elsewhere in
// the firmware. The terminal reads connection facts as display strings.
package netinfo

// Status is a snapshot of the network facts the status page shows. Empty
// fields render as "N/A".
type Status struct {
	MCUArch   string
	MCUID     string
	HostName  string
	WifiMode  string
	WifiLink  string
	IP        string
	IPMode    string
	Netmask   string
	Gateway   string
	DNS1      string
	DNS2      string
	MAC       string
	SSID      string
	SignalDB  string
	BSSID     string
	AuthMode  string
	Connected bool
}

// Provider supplies the current network status.
type Provider interface {
	Current() Status
}

// StaticProvider returns a fixed status, for the host simulator and tests.
type StaticProvider struct {
	Status Status
}

func (p *StaticProvider) Current() Status { return p.Status }

// OrNA substitutes "N/A" for empty display strings.
func OrNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
