// Package version exposes build information injected at link time.
package version

import (
	"fmt"
	"runtime"
)

// Set via -ldflags "-X github.com/mark3labs/refitgen/internal/version.Version=..." by release builds.
var (
	Version    = "dev"
	CommitHash = "unknown"
)

// Info describes the running binary.
type Info struct {
	Version    string
	CommitHash string
	GoVersion  string
	Platform   string
}

// Get returns the current build information.
func Get() Info {
	return Info{
		Version:    Version,
		CommitHash: CommitHash,
		GoVersion:  runtime.Version(),
		Platform:   fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

func (i Info) String() string {
	return fmt.Sprintf("refitgen %s (commit %s, %s, %s)", i.Version, i.CommitHash, i.GoVersion, i.Platform)
}
