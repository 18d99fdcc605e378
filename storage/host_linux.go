//go:build linux && !tinygo

package storage

import (
	"os"

	"golang.org/x/sys/unix"
)

// DirMount backs the SD card boundary with a host directory, so the
// simulator shows real space numbers.
type DirMount struct {
	Path string
}

func (m *DirMount) IsMounted() bool {
	info, err := os.Stat(m.Path)
	return err == nil && info.IsDir()
}

func (m *DirMount) MountedInfo() (uint32, uint32, bool) {
	if !m.IsMounted() {
		return 0, 0, false
	}
	var st unix.Statfs_t
	if err := unix.Statfs(m.Path, &st); err != nil {
		return 0, 0, false
	}
	bs := uint64(st.Bsize)
	total := uint64(st.Blocks) * bs >> 20
	free := uint64(st.Bavail) * bs >> 20
	return uint32(total), uint32(free), true
}

// ForPath returns a mount backed by dir.
func ForPath(dir string) Mount { return &DirMount{Path: dir} }
