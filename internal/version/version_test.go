package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func withVersion(t *testing.T, version, commit string) {
	t.Helper()
	oldVersion, oldCommit := Version, Commit
	Version, Commit = version, commit
	t.Cleanup(func() { Version, Commit = oldVersion, oldCommit })
}

func TestFromBuildInfo(t *testing.T) {
	tests := []struct {
		name        string
		info        debug.BuildInfo
		wantVersion string
		wantCommit  string
	}{
		{
			name: "module version",
			info: debug.BuildInfo{
				Main: debug.Module{Version: "v1.4.0"},
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "0123456789abcdef"},
				},
			},
			wantVersion: "v1.4.0",
			wantCommit:  "0123456",
		},
		{
			name: "devel with dirty tree",
			info: debug.BuildInfo{
				Main: debug.Module{Version: "(devel)"},
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "abc"},
					{Key: "vcs.modified", Value: "true"},
					{Key: "vcs.time", Value: "2024-03-05T10:00:00Z"},
				},
			},
			wantVersion: "dev-20240305",
			wantCommit:  "abc-dirty",
		},
		{
			name:        "nothing known",
			info:        debug.BuildInfo{},
			wantVersion: "",
			wantCommit:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withVersion(t, "", "")
			fromBuildInfo(&tt.info)
			if Version != tt.wantVersion || Commit != tt.wantCommit {
				t.Errorf("got %q/%q, want %q/%q", Version, Commit, tt.wantVersion, tt.wantCommit)
			}
		})
	}
}

func TestFromBuildInfo_KeepsLdflags(t *testing.T) {
	withVersion(t, "v9.9.9", "feed")
	fromBuildInfo(&debug.BuildInfo{Main: debug.Module{Version: "v1.0.0"}})
	if Version != "v9.9.9" || Commit != "feed" {
		t.Errorf("ldflags values overwritten: %q/%q", Version, Commit)
	}
}

func TestFullAndUserAgent(t *testing.T) {
	withVersion(t, "v1.2.3", "abc1234")
	if got := Full(); got != "v1.2.3 (commit: abc1234)" {
		t.Errorf("Full() = %q", got)
	}
	if got := UserAgent(); !strings.HasPrefix(got, "phonecore/v1.2.3") {
		t.Errorf("UserAgent() = %q", got)
	}
}
