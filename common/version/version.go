// Package version holds build-time version information, injected via
// -ldflags at release build time.
package version

var (
	// Version is the semantic version of this build.
	Version = "dev"
	// GitCommit is the short commit hash of this build.
	GitCommit = "unknown"
	// BuildTime is the RFC 3339 timestamp of this build.
	BuildTime = "unknown"
)
