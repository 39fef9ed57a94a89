package integrity

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sha1("hello world")
const helloSHA1 = "2aae6c35c94fcfb415dbe95f408b9ce91ee846ed"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDigest(t *testing.T) {
	path := writeFile(t, "hello.txt", "hello world")
	digest, err := Digest(path)
	require.NoError(t, err)
	assert.Equal(t, helloSHA1, digest)

	_, err = Digest(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestVerify(t *testing.T) {
	path := writeFile(t, "hello.txt", "hello world")

	assert.NoError(t, Verify(path, helloSHA1))
	assert.NoError(t, Verify(path, "2AAE6C35C94FCFB415DBE95F408B9CE91EE846ED"))

	err := Verify(path, "da39a3ee5e6b4b0d3255bfef95601890afd80709")
	assert.True(t, errors.Is(err, ErrDigestMismatch))
}

func TestStatefileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", DefaultStateFile)

	sf, err := Load(path)
	require.NoError(t, err)
	assert.Empty(t, sf.Tracked())

	sf.Track("objects/2a/"+helloSHA1, helloSHA1)
	sf.Track("objects/da/../da/da39a3ee", "da39a3ee5e6b4b0d3255bfef95601890afd80709")
	sf.AddVersion(Version{Name: "vanilla", ID: "1.21", Version: "1.21"})
	require.NoError(t, sf.Save())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"objects/2a/" + helloSHA1, "objects/da/da39a3ee"}, loaded.Tracked())
	digest, ok := loaded.Lookup("objects/2a/" + helloSHA1)
	assert.True(t, ok)
	assert.Equal(t, helloSHA1, digest)
	assert.Equal(t, []Version{{Name: "vanilla", ID: "1.21", Version: "1.21"}}, loaded.Versions())

	loaded.Untrack("objects/da/da39a3ee")
	_, ok = loaded.Lookup("objects/da/da39a3ee")
	assert.False(t, ok)
}

func TestStatefileAddVersionReplaces(t *testing.T) {
	sf, err := Load(filepath.Join(t.TempDir(), DefaultStateFile))
	require.NoError(t, err)
	sf.AddVersion(Version{Name: "vanilla", ID: "1.20", Version: "1.20"})
	sf.AddVersion(Version{Name: "fabric", ID: "1.20", Version: "0.15"})
	assert.Equal(t, []Version{{Name: "fabric", ID: "1.20", Version: "0.15"}}, sf.Versions())
}

func TestStatefileRejectsGarbage(t *testing.T) {
	path := writeFile(t, DefaultStateFile, "integrity = [")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestStatefileConcurrentTrack(t *testing.T) {
	sf, err := Load(filepath.Join(t.TempDir(), DefaultStateFile))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sf.Track(fmt.Sprintf("objects/%02x/%d", i, i), helloSHA1)
		}(i)
	}
	wg.Wait()
	assert.Len(t, sf.Tracked(), 32)
}
