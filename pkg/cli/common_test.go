package cli

import (
	"net"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spuzmc/spuz-get/pkg/config"
)

func TestEnsureDestinationNotExist(t *testing.T) {
	defer viper.Reset()
	existing := filepath.Join(t.TempDir(), "existing")
	require.NoError(t, os.WriteFile(existing, nil, 0644))

	testCases := []struct {
		name     string
		fileName string
		force    bool
		err      bool
	}{
		{"force true, file exists", existing, true, false},
		{"force false, file exists", existing, false, true},
		{"force true, file does not exist", filepath.Join(t.TempDir(), "unknownFile"), true, false},
		{"force false, file does not exist", filepath.Join(t.TempDir(), "unknownFile"), false, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			viper.Set(config.OptForce, tc.force)
			err := EnsureDestinationNotExist(tc.fileName)
			assert.Equal(t, tc.err, err != nil)
		})
	}
}

func TestOrderMirrorHosts(t *testing.T) {
	srvs := []*net.SRV{
		{Target: "mirror-2.assets.internal.", Port: 80},
		{Target: "mirror-0.assets.internal.", Port: 8080},
		{Target: "mirror-1.assets.internal.", Port: 80},
	}
	hosts, err := orderMirrorHosts(srvs)
	require.NoError(t, err)
	assert.Equal(t, []string{"mirror-0.assets.internal:8080", "mirror-1.assets.internal", "mirror-2.assets.internal"}, hosts)
}

func TestOrderMirrorHostsErrors(t *testing.T) {
	_, err := orderMirrorHosts([]*net.SRV{{Target: "mirror.assets.internal.", Port: 80}})
	assert.Error(t, err)

	_, err = orderMirrorHosts([]*net.SRV{{Target: "mirror-1.assets.internal.", Port: 80}})
	assert.ErrorContains(t, err, "no mirror with index 0")
}

func TestPIDFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spuz.pid")
	pid := NewPIDFile(path)
	require.NoError(t, pid.Acquire())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), string(content))

	require.NoError(t, pid.Release())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
