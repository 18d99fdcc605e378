//go:build !linux && !tinygo

package storage

// ForPath has no filesystem stats off Linux; the mount reads as absent.
func ForPath(dir string) Mount { return Unmounted }
