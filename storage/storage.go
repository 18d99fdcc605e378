// Package storage is the boundary to the SD card mount owned elsewhere in
// the firmware. The terminal only asks whether a card is mounted and how
// much space it has.
package storage

// Mount reports the state of the storage medium.
type Mount interface {
	IsMounted() bool
	// MountedInfo returns total and free space in megabytes. ok is false
	// when the medium is not mounted or the query failed.
	MountedInfo() (totalMB, freeMB uint32, ok bool)
}

// FixedMount is a Mount with preset values, used by the host simulator and
// tests.
type FixedMount struct {
	Mounted bool
	TotalMB uint32
	FreeMB  uint32
	Failing bool
}

func (m *FixedMount) IsMounted() bool { return m.Mounted }

func (m *FixedMount) MountedInfo() (uint32, uint32, bool) {
	if !m.Mounted || m.Failing {
		return 0, 0, false
	}
	return m.TotalMB, m.FreeMB, true
}

// Unmounted is the zero-value mount: nothing present.
var Unmounted Mount = &FixedMount{}
