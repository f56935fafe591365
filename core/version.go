package core

import "runtime"

// Version is the application version, set at build time via ldflags:
//
//	go build -ldflags "-X pencilsketch/core.Version=$(git describe --tags --always)" .
//
// If not set at build time, defaults to "dev".
var Version = "dev"

// BuildTime is the build timestamp, set at build time via ldflags.
var BuildTime = "unknown"

// GitCommit is the git commit hash, set at build time via ldflags.
var GitCommit = "unknown"

// GetVersionInfo returns a formatted version information string.
//
// Examples:
//   - "v1.0.0 (built 2024-01-15T10:30:00Z, commit abc1234, go1.24.0)"
//   - "dev (built unknown, commit unknown, go1.24.0)"
func GetVersionInfo() string {
	return Version + " (built " + BuildTime + ", commit " + GitCommit + ", " + runtime.Version() + ")"
}
