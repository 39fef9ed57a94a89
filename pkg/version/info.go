package version

import (
	"fmt"
	"runtime"
	"strings"
)

const (
	devVersion = "dev"
	userAgent  = "spuz-get"
)

// Build-time injected information, set through -ldflags "-X".
var (
	Version    string
	CommitHash string
	BuildTime  string
	Prerelease string
	Branch     string
)

// GetVersion returns the version information in a human consumable way. It
// is shown by `spuz-get version` and embedded in the User-Agent.
func GetVersion() string {
	return makeVersionString(Version, CommitHash, Prerelease, Branch)
}

// UserAgent identifies this build to download hosts.
func UserAgent() string {
	return fmt.Sprintf("%s/%s (%s-%s)", userAgent, GetVersion(), runtime.GOOS, runtime.GOARCH)
}

func makeVersionString(version, commitHash, prerelease, branch string) string {
	if version == "" {
		version = devVersion
	}
	var sb strings.Builder
	sb.WriteString(version)
	if commitHash != "" {
		fmt.Fprintf(&sb, "(%s)", commitHash)
	}
	if prerelease != "" {
		fmt.Fprintf(&sb, "-%s", prerelease)
	}
	if branch != "" && branch != "main" && branch != "HEAD" {
		fmt.Fprintf(&sb, "[%s]", branch)
	}
	return sb.String()
}
