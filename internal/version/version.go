package version

import "fmt"

var (
	// Version is the semantic version, overridden via ldflags.
	Version = "0.3.0"
	// Commit is the short git SHA (or "none" for local builds).
	Commit = "none"
	// BuildTime is the UTC build timestamp.
	BuildTime = "unknown"
)

// Short returns the semantic version only.
func Short() string {
	return Version
}

// Full returns the version with commit and build time, as printed by `door-guard version`
// and logged on startup.
func Full() string {
	return fmt.Sprintf("door-guard %s (commit %s, built %s)", Version, Commit, BuildTime)
}
