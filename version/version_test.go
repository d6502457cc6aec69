package version

import (
	"strings"
	"testing"
	"time"
)

func TestInfo_Short(t *testing.T) {
	tests := []struct {
		name string
		info Info
		want string
	}{
		{"no commit", Info{Version: "dev"}, "dev"},
		{"clean", Info{Version: "v1.2.0", Commit: "4f9c1d2"}, "v1.2.0-4f9c1d2"},
		{"dirty", Info{Version: "v1.2.0", Commit: "4f9c1d2", Dirty: true}, "v1.2.0-4f9c1d2-dirty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.Short(); got != tt.want {
				t.Errorf("Short() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestInfo_String(t *testing.T) {
	built := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	info := Info{Version: "v1.2.0", Commit: "4f9c1d2", GoVersion: "go1.26.0", BuildTime: built}

	got := info.String()
	for _, want := range []string{"v1.2.0-4f9c1d2", "built 2025-06-01T12:00:00Z", "with go1.26.0"} {
		if !strings.Contains(got, want) {
			t.Errorf("String() = %q, want it to contain %q", got, want)
		}
	}
}

func TestInfo_StringWithoutBuildData(t *testing.T) {
	info := Info{Version: "dev"}
	if got, want := info.String(), "dev"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestGet_ResolvesOnce(t *testing.T) {
	first := Get()
	second := Get()
	if first != second {
		t.Errorf("Get() not stable: %+v vs %+v", first, second)
	}
	if got, want := first.Version, "dev"; got != want {
		t.Errorf("Version = %q, want %q (unstamped test binary)", got, want)
	}
	if first.GoVersion == "" {
		t.Error("GoVersion empty, want toolchain from build info")
	}
}

func TestShort_UsesResolvedInfo(t *testing.T) {
	if got := Short(); !strings.HasPrefix(got, Get().Version) {
		t.Errorf("Short() = %q, want prefix %q", got, Get().Version)
	}
}

func TestShortRev(t *testing.T) {
	if got, want := shortRev("4f9c1d2ab55e0d9"), "4f9c1d2"; got != want {
		t.Errorf("shortRev = %q, want %q", got, want)
	}
	if got, want := shortRev("4f9c"), "4f9c"; got != want {
		t.Errorf("shortRev = %q, want %q", got, want)
	}
}
