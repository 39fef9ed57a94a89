package verify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spuzmc/spuz-get/pkg/integrity"
)

// sha1("hello world")
const helloSHA1 = "2aae6c35c94fcfb415dbe95f408b9ce91ee846ed"

func TestVerifyUntracksBadFiles(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good")
	changed := filepath.Join(dir, "changed")
	missing := filepath.Join(dir, "missing")
	require.NoError(t, os.WriteFile(good, []byte("hello world"), 0644))
	require.NoError(t, os.WriteFile(changed, []byte("hello there"), 0644))

	state, err := integrity.Load(filepath.Join(dir, integrity.DefaultStateFile))
	require.NoError(t, err)
	for _, path := range []string{good, changed, missing} {
		state.Track(path, helloSHA1)
	}

	bad, err := Verify(state)
	require.NoError(t, err)
	assert.Equal(t, 2, bad)
	assert.Equal(t, []string{good}, state.Tracked())
}
