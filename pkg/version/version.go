// Package version carries build metadata injected with -ldflags, e.g.
// -X github.com/compozy/tagrelease/pkg/version.Version=v1.2.3.
package version

import "strings"

var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

// Summary returns the version with a leading "v" unless it is a dev build.
func Summary() string {
	v := strings.TrimSpace(Version)
	switch {
	case v == "" || v == "dev":
		return "dev"
	case strings.HasPrefix(v, "v"):
		return v
	default:
		return "v" + v
	}
}
