// Package buildinfo carries the firmware identity stamped at build time
// via -ldflags; the terminal banner and the host window title print it.
package buildinfo

var (
	// Version is the firmware release, e.g. "0.2.0".
	Version = "0.0.1-dev"

	// Commit is the short VCS hash of the build.
	Commit = ""
)

// Short renders the banner identifier: the version, plus the commit when
// one was stamped.
func Short() string {
	if Commit != "" {
		return Version + "+" + Commit
	}
	return Version
}
