package version

import "fmt"

// Set through -ldflags "-X astroaspects/internal/version.Version=...".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// String renders the build information on one line.
func String() string {
	return fmt.Sprintf("astroaspects %s (commit %s, built %s)", Version, Commit, BuildDate)
}
