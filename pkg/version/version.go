// Package version exposes build metadata of the bstset binary.
package version

import (
	"runtime/debug"
)

const unknown = "<unknown>"

// Version, Commit and Date are overridden at link time with -ldflags "-X".
var (
	Version = "dev"
	Commit  = unknown
	Date    = unknown
)

// InitBinaryVersion fills Commit and Date from the VCS stamp that the Go
// toolchain embeds when they were not set at link time.
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	applyBuildInfo(info)
}

func applyBuildInfo(info *debug.BuildInfo) {
	if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if Commit == unknown {
				Commit = setting.Value
			}
		case "vcs.time":
			if Date == unknown {
				Date = setting.Value
			}
		}
	}
}

// String renders the version line printed by the version command.
func String() string {
	return "bstset " + Version + " (commit: " + Commit + ", built: " + Date + ")"
}
