//nolint:testpackage // overrides build-time variables
package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func withVersion(t *testing.T, version, commit, date string) {
	t.Helper()
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	t.Cleanup(func() {
		Version, GitCommit, BuildDate = origVersion, origCommit, origDate
	})
	Version, GitCommit, BuildDate = version, commit, date
}

func TestInfo(t *testing.T) {
	withVersion(t, "v0.3.0", "abcdef1234567", "2025-01-02T03:04:05Z")

	info := Info()
	assert.Equal(t, "v0.3.0", info.Version)
	assert.Equal(t, "2025-01-02T03:04:05Z", info.BuildDate)
	assert.Equal(t, GoVersion, info.GoVersion)
	assert.False(t, info.Dirty)
}

func TestBuildInfoString(t *testing.T) {
	info := BuildInfo{
		Version:   "v0.3.0",
		BuildDate: "2025-01-02",
		GitCommit: "abcdef1234567",
		GoVersion: "go1.24.4",
		Stack:     []Module{{Path: "gonum.org/v1/gonum", Version: "v0.16.0"}},
	}

	str := info.String()
	assert.Contains(t, str, "prep v0.3.0\n")
	assert.Contains(t, str, "Build Date: 2025-01-02\n")
	assert.Contains(t, str, "Git Commit: abcdef1\n")
	assert.Contains(t, str, "Go Version: go1.24.4\n")
	assert.Contains(t, str, "gonum.org/v1/gonum v0.16.0")
}

func TestBuildInfoStringUnknownAndDirty(t *testing.T) {
	withVersion(t, "dev", "1234567890-dirty", unknownValue)

	info := Info()
	assert.True(t, info.Dirty)

	str := info.String()
	assert.Contains(t, str, "prep dev (dirty)")
	assert.Contains(t, str, "Git Commit: 1234567\n")
	assert.NotContains(t, str, "Build Date")
}

func TestShortCommit(t *testing.T) {
	assert.Equal(t, "abc", ShortCommit("abc"))
	assert.Equal(t, "abcdef1", ShortCommit("abcdef1234"))
	assert.Equal(t, "abcdef1", ShortCommit("abcdef1234-dirty"))
}
