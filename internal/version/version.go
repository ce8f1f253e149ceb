package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Set with -ldflags "-X wanwatch/internal/version.Version=...". Empty or
// "unknown" values are filled from the module build info when available.
var (
	Version   = "unknown"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

const unknown = "unknown"

// Info describes the running build
type Info struct {
	Version   string `json:"version"`
	GitCommit string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// GetInfo returns version information
func GetInfo() Info {
	info := Info{
		Version:   orUnknown(Version),
		GitCommit: orUnknown(GitCommit),
		BuildDate: orUnknown(BuildDate),
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info = info.withBuildInfo(bi)
	}
	return info
}

// withBuildInfo fills fields the linker flags left unset from go build's
// embedded module and VCS metadata.
func (i Info) withBuildInfo(bi *debug.BuildInfo) Info {
	if i.Version == unknown && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		i.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if i.GitCommit == unknown && s.Value != "" {
				i.GitCommit = s.Value
			}
		case "vcs.time":
			if i.BuildDate == unknown && s.Value != "" {
				i.BuildDate = s.Value
			}
		}
	}
	return i
}

// Short returns the version with an abbreviated commit, e.g. "v1.2.0 (3f2a9c1)"
func (i Info) Short() string {
	commit := i.GitCommit
	if len(commit) > 7 {
		commit = commit[:7]
	}
	return fmt.Sprintf("%s (%s)", i.Version, commit)
}

// String returns the one-line form printed by -version
func (i Info) String() string {
	return fmt.Sprintf("%s built %s with %s for %s", i.Short(), i.BuildDate, i.GoVersion, i.Platform)
}

// UserAgent returns the HTTP User-Agent for outbound requests made by app
func UserAgent(app string) string {
	i := GetInfo()
	return fmt.Sprintf("%s/%s (%s)", app, i.Version, i.Platform)
}

func orUnknown(s string) string {
	if s == "" {
		return unknown
	}
	return s
}
