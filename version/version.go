// Package version resolves the build identity of the running binary,
// from -ldflags stamps when present and from the embedded Go build
// info otherwise.
package version

import (
	"fmt"
	"runtime/debug"
	"sync"
	"time"
)

// Stamped at build time:
//
//	go build -ldflags "-X .../version.Version=v1.2.0 -X .../version.Commit=4f9c1d2"
var (
	Version   = "dev"
	Commit    = ""
	BuildTime = ""
)

// Info is the resolved build identity of the binary.
type Info struct {
	Version   string    `json:"version"`
	Commit    string    `json:"commit"`
	Dirty     bool      `json:"dirty"`
	GoVersion string    `json:"go_version"`
	BuildTime time.Time `json:"build_time"`
}

// Get returns the build identity, resolved once per process.
var Get = sync.OnceValue(resolve)

func resolve() Info {
	info := Info{Version: Version, Commit: Commit}
	if BuildTime != "" {
		if t, err := time.Parse(time.RFC3339, BuildTime); err == nil {
			info.BuildTime = t
		}
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	info.GoVersion = bi.GoVersion
	for _, setting := range bi.Settings {
		switch setting.Key {
		case "vcs.revision":
			if info.Commit == "" {
				info.Commit = shortRev(setting.Value)
			}
		case "vcs.modified":
			info.Dirty = setting.Value == "true"
		case "vcs.time":
			if info.BuildTime.IsZero() {
				if t, err := time.Parse(time.RFC3339, setting.Value); err == nil {
					info.BuildTime = t
				}
			}
		}
	}
	return info
}

func shortRev(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}

// Short renders the compact form used in logs: version, commit, and a
// dirty marker when the working tree was modified.
func (i Info) Short() string {
	switch {
	case i.Commit == "":
		return i.Version
	case i.Dirty:
		return fmt.Sprintf("%s-%s-dirty", i.Version, i.Commit)
	default:
		return fmt.Sprintf("%s-%s", i.Version, i.Commit)
	}
}

// String renders the long form with build time and toolchain.
func (i Info) String() string {
	s := i.Short()
	if !i.BuildTime.IsZero() {
		s += " built " + i.BuildTime.UTC().Format(time.RFC3339)
	}
	if i.GoVersion != "" {
		s += " with " + i.GoVersion
	}
	return s
}

// Short returns Get().Short().
func Short() string { return Get().Short() }
