package version

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"
)

// Set at build time using -ldflags.
var (
	Version   = "dev"
	GitCommit = ""
	GitBranch = ""
	BuildTime = ""
)

// Info describes the running build.
type Info struct {
	Version   string    `json:"version"`
	Commit    string    `json:"commit,omitempty"`
	Branch    string    `json:"branch,omitempty"`
	GoVersion string    `json:"go_version"`
	BuildDate time.Time `json:"build_date,omitzero"`
	Dirty     bool      `json:"dirty"`
}

// Release reports whether the build is a tagged, clean version.
func (i Info) Release() bool {
	return i.Version != "dev" && i.Version != "(devel)" && !i.Dirty && !strings.Contains(i.Version, "dirty")
}

// Short renders version and commit, e.g. "1.2.0-abc1234-dirty".
func (i Info) Short() string {
	if i.Commit == "" {
		return i.Version
	}
	s := i.Version + "-" + i.Commit
	if i.Dirty {
		s += "-dirty"
	}
	return s
}

// String renders the full version with a feature branch and build date.
func (i Info) String() string {
	parts := []string{i.Version}
	if i.Commit != "" {
		parts = append(parts, i.Commit)
	}
	if i.Branch != "" && i.Branch != "main" && i.Branch != "master" {
		parts = append(parts, i.Branch)
	}
	if i.Dirty {
		parts = append(parts, "dirty")
	}
	s := strings.Join(parts, "-")
	if !i.BuildDate.IsZero() {
		s += fmt.Sprintf(" (built %s, %s)", i.BuildDate.UTC().Format(time.RFC3339), i.GoVersion)
	}
	return s
}

// Get returns the build info. Values set through -ldflags win over the
// module build info recorded by the Go toolchain.
func Get() Info {
	info := Info{
		Version: Version,
		Commit:  GitCommit,
		Branch:  GitBranch,
	}
	if BuildTime != "" {
		if t, err := time.Parse(time.RFC3339, BuildTime); err == nil {
			info.BuildDate = t
		}
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	info.GoVersion = bi.GoVersion
	// go install github.com/kbukum/restorm/cmd/restorm@v1.2.0 records the tag.
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = strings.TrimPrefix(bi.Main.Version, "v")
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "" {
				info.Commit = s.Value[:min(len(s.Value), 7)]
			}
		case "vcs.modified":
			info.Dirty = s.Value == "true"
		case "vcs.time":
			if info.BuildDate.IsZero() {
				if t, err := time.Parse(time.RFC3339, s.Value); err == nil {
					info.BuildDate = t
				}
			}
		}
	}
	return info
}

// Short returns the short version of the running build.
func Short() string { return Get().Short() }

// Full returns the full version of the running build.
func Full() string { return Get().String() }

// UserAgent is the User-Agent restorm sends with API requests.
func UserAgent() string { return "restorm/" + Short() }
