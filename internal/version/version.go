// Package version reports build metadata. Values set with -ldflags win;
// otherwise the VCS stamp the Go toolchain embeds is used.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

const unknown = "unknown"

var (
	// Version is the application version, set via ldflags during build.
	Version = "dev"
	// GitCommit is the git commit hash, set via ldflags during build.
	GitCommit = unknown
	// BuildDate is the build timestamp, set via ldflags during build.
	BuildDate = unknown
	// BuildID is the build identifier, set via ldflags during build.
	BuildID = unknown
)

// Info contains version and build metadata.
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	BuildID   string `json:"build_id"`
	GoVersion string `json:"go_version"`
	Compiler  string `json:"compiler"`
	Platform  string `json:"platform"`
}

// Get returns version and build information.
func Get() Info {
	info := Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		BuildID:   BuildID,
		GoVersion: runtime.Version(),
		Compiler:  runtime.Compiler,
		Platform:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		fillFromBuildSettings(&info, bi.Settings)
	}
	return info
}

// fillFromBuildSettings takes the commit and time from the vcs.* build
// settings for fields still unknown. A dirty tree marks the commit.
func fillFromBuildSettings(info *Info, settings []debug.BuildSetting) {
	var revision, modified string
	for _, s := range settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.time":
			if info.BuildDate == unknown {
				info.BuildDate = s.Value
			}
		case "vcs.modified":
			modified = s.Value
		}
	}
	if info.GitCommit != unknown || revision == "" {
		return
	}
	if len(revision) > 12 {
		revision = revision[:12]
	}
	if modified == "true" {
		revision += "-dirty"
	}
	info.GitCommit = revision
}

// String returns the application version string.
func String() string {
	return Version
}
