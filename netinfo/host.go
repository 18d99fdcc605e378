//go:build !tinygo

package netinfo

import (
	"net"
	"os"
	"runtime"
)

// HostProvider reports the simulator machine's first non-loopback address
// so the status page shows something real during development.
type HostProvider struct{}

func (HostProvider) Current() Status {
	st := Status{
		MCUArch:  runtime.GOARCH,
		MCUID:    "host",
		WifiMode: "STA",
		WifiLink: "Simulated",
		IPMode:   "DHCP",
		SSID:     "host-network",
		SignalDB: "-42 dBm",
		AuthMode: "WPA2",
	}
	if name, err := os.Hostname(); err == nil {
		st.HostName = name
	}

	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return st
	}
	for _, addr := range addrs {
		ipn, ok := addr.(*net.IPNet)
		if !ok || ipn.IP.IsLoopback() || ipn.IP.To4() == nil {
			continue
		}
		st.IP = ipn.IP.String()
		st.Netmask = net.IP(ipn.Mask).String()
		st.Connected = true
		break
	}
	return st
}
