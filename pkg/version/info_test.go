package version

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_makeVersionString(t *testing.T) {
	tests := []struct {
		name       string
		version    string
		commitHash string
		prerelease string
		branch     string
		expected   string
	}{
		{"unset", "", "", "", "", "dev"},
		{"typical development", "1.0.0", "abc123", "", "feature", "1.0.0(abc123)[feature]"},
		{"prerelease", "1.0.0", "abc123", "rc1", "main", "1.0.0(abc123)-rc1"},
		{"branch HEAD", "1.0.0", "abc123", "", "HEAD", "1.0.0(abc123)"},
		{"no commit", "1.0.0", "", "", "", "1.0.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, makeVersionString(tt.version, tt.commitHash, tt.prerelease, tt.branch))
		})
	}
}

func TestUserAgent(t *testing.T) {
	defer func() { Version, CommitHash = "", "" }()
	Version, CommitHash = "0.3.0", "deadbeef"

	ua := UserAgent()
	assert.True(t, strings.HasPrefix(ua, "spuz-get/0.3.0(deadbeef)"))
	assert.Contains(t, ua, runtime.GOOS)
}
