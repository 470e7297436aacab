package context

import (
	"fmt"
	"runtime/debug"
)

// VersionInfo describes the build of the running binary.
type VersionInfo struct {
	Semantic  string
	Commit    string
	GoVersion string
}

// String renders the version information as a single line.
func (v *VersionInfo) String() string {
	s := v.Semantic
	if v.Commit != "" {
		s = fmt.Sprintf("%s (%s)", s, v.Commit)
	}
	if v.GoVersion != "" {
		s = fmt.Sprintf("%s %s", s, v.GoVersion)
	}

	return s
}

// GetVersion extracts version information from the build metadata embedded in
// the binary.
func GetVersion() (*VersionInfo, error) {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return nil, fmt.Errorf("failed reading build information")
	}

	v := &VersionInfo{
		Semantic:  info.Main.Version,
		GoVersion: info.GoVersion,
	}
	if v.Semantic == "" || v.Semantic == "(devel)" {
		v.Semantic = "dev"
	}

	for _, setting := range info.Settings {
		if setting.Key == "vcs.revision" {
			commit := setting.Value
			if len(commit) > 8 {
				commit = commit[:8]
			}
			v.Commit = commit
		}
	}

	return v, nil
}
