package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddFileOutput(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	defer SetupLogger()

	path := filepath.Join(t.TempDir(), "spuz.log")
	closer := AddFileOutput(path)

	logger := GetLogger()
	logger.Info().Str("dest", "objects/ab/abcdef").Msg("Complete")
	require.NoError(t, closer.Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), `"dest":"objects/ab/abcdef"`)
	assert.Contains(t, string(content), `"message":"Complete"`)
}
