// Package version reports the build identity of the paretolearn binary.
package version

import (
	"runtime/debug"
)

// Set through -ldflags "-X github.com/Sumatoshi-tech/paretolearn/pkg/version.Version=...".
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

const (
	develVersion   = "(devel)"
	revisionKey    = "vcs.revision"
	timeKey        = "vcs.time"
	shortCommitLen = 12
)

// InitBinaryVersion fills the fields left at their defaults from the build
// info embedded by the Go toolchain.
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	apply(info)
}

func apply(info *debug.BuildInfo) {
	if Version == "dev" && info.Main.Version != "" && info.Main.Version != develVersion {
		Version = info.Main.Version
	}

	for _, s := range info.Settings {
		switch s.Key {
		case revisionKey:
			if Commit == "none" {
				Commit = s.Value[:min(len(s.Value), shortCommitLen)]
			}
		case timeKey:
			if Date == "unknown" {
				Date = s.Value
			}
		}
	}
}

// String returns "version (commit: ..., built: ...)".
func String() string {
	return Version + " (commit: " + Commit + ", built: " + Date + ")"
}
