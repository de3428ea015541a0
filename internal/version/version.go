// Package version reports build information.
package version

import (
	"fmt"
	"io"
	"runtime/debug"
)

// Set at build time with -ldflags "-X github.com/larsks/ledremote/internal/version.Version=..."
var (
	Version   = "dev"
	BuildDate = "unknown"
)

// String returns a one-line version description.
func String() string {
	commit := "unknown"
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				commit = setting.Value
			}
		}
	}
	return fmt.Sprintf("ledremote %s (commit %s, built %s)", Version, commit, BuildDate)
}

// Fprint writes the version description to w.
func Fprint(w io.Writer) {
	fmt.Fprintln(w, String())
}
