package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLogLevel(t *testing.T) {
	testCases := []struct {
		name     string
		logLevel string
		expected string
	}{
		{"debug", "debug", "debug"},
		{"info", "info", "info"},
		{"warn", "warn", "warn"},
		{"error", "error", "error"},
		{"unknown", "chatty", "info"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			setLogLevel(tc.logLevel)
			assert.Equal(t, tc.expected, zerolog.GlobalLevel().String())
		})
	}
}

func TestResolveOverrides(t *testing.T) {
	testCases := []struct {
		name     string
		resolve  []string
		expected map[string]string
		err      bool
	}{
		{"empty", []string{}, nil, false},
		{"single", []string{"example.com:80:127.0.0.1"}, map[string]string{"example.com:80": "127.0.0.1:80"}, false},
		{"multiple", []string{"example.com:80:127.0.0.1", "example.com:443:127.0.0.1"}, map[string]string{"example.com:80": "127.0.0.1:80", "example.com:443": "127.0.0.1:443"}, false},
		{"invalid ip", []string{"example.com:80:InvalidIPAddr"}, nil, true},
		{"duplicate host different target", []string{"example.com:80:127.0.0.1", "example.com:80:127.0.0.2"}, nil, true},
		{"duplicate host same target", []string{"example.com:80:127.0.0.1", "example.com:80:127.0.0.1"}, map[string]string{"example.com:80": "127.0.0.1:80"}, false},
		{"invalid format", []string{"example.com:80"}, nil, true},
		{"invalid hostname format, is IP Addr", []string{"127.0.0.1:443:127.0.0.2"}, nil, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resolveOverrides, err := ResolveOverridesToMap(tc.resolve)
			assert.Equal(t, tc.err, err != nil)
			assert.Equal(t, tc.expected, resolveOverrides)
		})
	}
}

func newRootForTest(t *testing.T) *cobra.Command {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	cmd := &cobra.Command{Use: "spuz-get"}
	require.NoError(t, AddRootPersistentFlags(cmd))
	return cmd
}

func TestDownloadOptions(t *testing.T) {
	cmd := newRootForTest(t)
	require.NoError(t, cmd.PersistentFlags().Set(OptConcurrency, "3"))
	require.NoError(t, cmd.PersistentFlags().Set(OptBufferSize, "64KiB"))
	require.NoError(t, cmd.PersistentFlags().Set(OptCountFailed, "true"))

	opts, err := DownloadOptions()
	require.NoError(t, err)
	assert.Equal(t, 3, opts.Concurrency)
	assert.Equal(t, 64*1024, opts.BufferSize)
	assert.True(t, opts.Policy.CountFailed)
	assert.False(t, opts.Policy.CountCancelled)
}

func TestDownloadOptionsRejectsBadBufferSize(t *testing.T) {
	cmd := newRootForTest(t)
	require.NoError(t, cmd.PersistentFlags().Set(OptBufferSize, "lots"))

	_, err := DownloadOptions()
	assert.Error(t, err)
}

func TestClientOptionsFromEnv(t *testing.T) {
	newRootForTest(t)
	t.Setenv("SPUZ_RETRIES", "4")
	t.Setenv("SPUZ_CONNECT_TIMEOUT", "2s")
	t.Setenv("SPUZ_RESOLVE", "example.com:443:10.0.0.1")

	opts, err := ClientOptions()
	require.NoError(t, err)
	assert.Equal(t, 4, opts.MaxRetries)
	assert.Equal(t, 2*time.Second, opts.ConnectTimeout)
	assert.Equal(t, map[string]string{"example.com:443": "10.0.0.1:443"}, opts.ResolveOverrides)
}

func TestVerboseOverridesLogLevel(t *testing.T) {
	cmd := newRootForTest(t)
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)
	require.NoError(t, cmd.PersistentFlags().Set(OptVerbose, "true"))

	require.NoError(t, PersistentStartupProcessFlags())
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}
