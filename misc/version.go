// Package misc holds build time program information.
package misc

import (
	"runtime/debug"
)

// Set with -ldflags "-X pageflow/misc.version=... -X pageflow/misc.gitHash=...".
var (
	appName = "pageflow"
	version = "dev"
	gitHash = ""
)

func GetAppName() string {
	return appName
}

func GetVersion() string {
	return version
}

// GetGitHash returns commit program was built from. When not set at link time
// VCS information recorded by the Go toolchain is used.
func GetGitHash() string {
	if len(gitHash) > 0 {
		return gitHash
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" {
				return s.Value
			}
		}
	}
	return "unknown"
}
