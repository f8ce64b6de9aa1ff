// Package buildinfo carries version metadata stamped at link time via
// -ldflags "-X github.com/bankstream/bankstream/internal/buildinfo.Version=...".
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String renders the build metadata on one line.
func String() string {
	return fmt.Sprintf("bankstream %s (commit %s, built %s)", Version, Commit, Date)
}
