// Package version holds build metadata set via -ldflags.
package version

// Version is overridden at build time: -ldflags "-X github.com/mandalnilabja/vecway/internal/version.Version=v1.2.3"
var Version = "dev"
