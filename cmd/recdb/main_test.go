package main

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestBuildInfo(t *testing.T) {
	tests := []struct {
		name string
		info *debug.BuildInfo
		want buildInfo
	}{
		{"nil", nil, buildInfo{version: "unknown", goVersion: "unknown", revision: "unknown"}},
		{
			"devel",
			&debug.BuildInfo{GoVersion: "go1.25.5", Main: debug.Module{Version: "(devel)"}},
			buildInfo{version: "dev", goVersion: "go1.25.5", revision: "unknown"},
		},
		{
			"vcs",
			&debug.BuildInfo{
				GoVersion: "go1.25.5",
				Main:      debug.Module{Version: "v0.2.0"},
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "abc123"},
					{Key: "vcs.modified", Value: "true"},
				},
			},
			buildInfo{version: "v0.2.0", goVersion: "go1.25.5", revision: "abc123", dirty: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := newBuildInfo(tt.info); got != tt.want {
				t.Errorf("newBuildInfo() = %+v, want %+v", got, tt.want)
			}
		})
	}

	t.Run("write", func(t *testing.T) {
		var out strings.Builder
		writeVersion(&out, buildInfo{version: "dev", goVersion: "go1.25.5", revision: "abc123", dirty: true})
		want := "recdb dev\n  Go version: go1.25.5\n  Revision:   abc123\n  Modified:   true\n"
		if out.String() != want {
			t.Errorf("writeVersion() = %q, want %q", out.String(), want)
		}
	})
}
