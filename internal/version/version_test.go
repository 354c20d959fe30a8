package version

import (
	"runtime/debug"
	"testing"
)

func TestFillFromBuildSettings(t *testing.T) {
	settings := []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef0123"},
		{Key: "vcs.time", Value: "2026-01-27T10:30:00Z"},
		{Key: "vcs.modified", Value: "true"},
	}

	tests := []struct {
		name       string
		in         Info
		wantCommit string
		wantDate   string
	}{
		{"unset", Info{GitCommit: unknown, BuildDate: unknown}, "0123456789ab-dirty", "2026-01-27T10:30:00Z"},
		{"ldflags win", Info{GitCommit: "v1", BuildDate: "today"}, "v1", "today"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := tt.in
			fillFromBuildSettings(&info, settings)
			if info.GitCommit != tt.wantCommit {
				t.Errorf("GitCommit = %q, want %q", info.GitCommit, tt.wantCommit)
			}
			if info.BuildDate != tt.wantDate {
				t.Errorf("BuildDate = %q, want %q", info.BuildDate, tt.wantDate)
			}
		})
	}
}

func TestGet(t *testing.T) {
	info := Get()
	if info.Version != Version || info.GoVersion == "" || info.Platform == "" {
		t.Errorf("incomplete info: %+v", info)
	}
}
