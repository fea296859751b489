// Package version reports build information for prep binaries.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

const (
	unknownValue     = "unknown"
	commitHashLength = 7
)

// Build-time variables set by ldflags
var (
	Version   = "dev"
	BuildDate = unknownValue
	GitCommit = unknownValue
	GoVersion = runtime.Version()
)

// numericStack lists the modules whose versions affect cleaned output and
// model results.
var numericStack = []string{
	"github.com/apache/arrow-go/v18",
	"gonum.org/v1/gonum",
}

// BuildInfo contains build information
type BuildInfo struct {
	Version   string   `json:"version"`
	BuildDate string   `json:"build_date"`
	GitCommit string   `json:"git_commit"`
	GoVersion string   `json:"go_version"`
	Dirty     bool     `json:"dirty"`
	Module    string   `json:"module"`
	Stack     []Module `json:"stack"`
}

// Module represents a Go module with version information
type Module struct {
	Path    string `json:"path"`
	Version string `json:"version"`
}

// Info returns build information, including the versions of the numeric
// libraries linked into the binary when the runtime knows them.
func Info() BuildInfo {
	info := BuildInfo{
		Version:   Version,
		BuildDate: BuildDate,
		GitCommit: GitCommit,
		GoVersion: GoVersion,
		Dirty:     strings.HasSuffix(GitCommit, "-dirty"),
	}

	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	info.Module = buildInfo.Main.Path
	for _, dep := range buildInfo.Deps {
		for _, path := range numericStack {
			if dep.Path == path {
				info.Stack = append(info.Stack, Module{Path: dep.Path, Version: dep.Version})
			}
		}
	}
	return info
}

// String returns a formatted version string
func (b BuildInfo) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "prep %s", b.Version)
	if b.Dirty {
		sb.WriteString(" (dirty)")
	}
	sb.WriteString("\n")

	if b.BuildDate != unknownValue {
		fmt.Fprintf(&sb, "Build Date: %s\n", b.BuildDate)
	}
	if b.GitCommit != unknownValue {
		fmt.Fprintf(&sb, "Git Commit: %s\n", ShortCommit(b.GitCommit))
	}
	fmt.Fprintf(&sb, "Go Version: %s\n", b.GoVersion)
	for _, m := range b.Stack {
		fmt.Fprintf(&sb, "  %s %s\n", m.Path, m.Version)
	}
	return sb.String()
}

// ShortCommit abbreviates a commit hash for display.
func ShortCommit(commit string) string {
	commit = strings.TrimSuffix(commit, "-dirty")
	if len(commit) > commitHashLength {
		return commit[:commitHashLength]
	}
	return commit
}
