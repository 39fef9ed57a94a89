package manifest

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spuzmc/spuz-get/pkg/fetch"
)

const indexURL = "https://piston-meta.example.com/v1/packages/abc/17.json"

const assetIndex = `{
  "objects": {
    "icons/icon_16x16.png": {"hash": "bdf48ef6b5d0d23bbb02e17d04865216179f510a", "size": 3665},
    "minecraft/sounds/ambient/cave/cave1.ogg": {"hash": "0d8e3b4a5f1e8f8b0d8e3b4a5f1e8f8b0d8e3b4a", "size": 20000},
    "minecraft/sounds/ambient/cave/cave1_copy.ogg": {"hash": "0d8e3b4a5f1e8f8b0d8e3b4a5f1e8f8b0d8e3b4a", "size": 20000}
  }
}`

func mockFetcher(t *testing.T) (*fetch.HTTPFetcher, *httpmock.MockTransport) {
	t.Helper()
	mockTransport := httpmock.NewMockTransport()
	mockTransport.RegisterResponder("GET", indexURL, httpmock.NewStringResponder(200, assetIndex))
	return fetch.New(&http.Client{Transport: mockTransport}), mockTransport
}

func TestResolveAssets(t *testing.T) {
	f, _ := mockFetcher(t)
	dir := t.TempDir()

	tasks, err := ResolveAssets(context.Background(), f, indexURL, dir, AssetOptions{})
	require.NoError(t, err)
	require.Len(t, tasks, 2)

	first := tasks[0]
	assert.Equal(t, DefaultAssetBaseURL+"/0d/0d8e3b4a5f1e8f8b0d8e3b4a5f1e8f8b0d8e3b4a", first.URL.String())
	assert.Equal(t, filepath.Join(dir, "objects", "0d", "0d8e3b4a5f1e8f8b0d8e3b4a5f1e8f8b0d8e3b4a"), first.Dest)
	assert.Equal(t, uint64(20000), first.Size)
	assert.Equal(t, "0d8e3b4a5f1e8f8b0d8e3b4a5f1e8f8b0d8e3b4a", first.Digest)

	second := tasks[1]
	assert.Equal(t, DefaultAssetBaseURL+"/bd/bdf48ef6b5d0d23bbb02e17d04865216179f510a", second.URL.String())
	assert.Equal(t, uint64(3665), second.Size)

	_, err = os.Stat(filepath.Join(dir, "indexes"))
	assert.True(t, os.IsNotExist(err))
}

func TestResolveAssetsKeepsIndex(t *testing.T) {
	f, _ := mockFetcher(t)
	dir := t.TempDir()

	tasks, err := ResolveAssets(context.Background(), f, indexURL, dir, AssetOptions{
		BaseURL: "http://mirror.example.com/assets/",
		IndexID: "17",
	})
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "http://mirror.example.com/assets/bd/bdf48ef6b5d0d23bbb02e17d04865216179f510a", tasks[1].URL.String())

	saved, err := os.ReadFile(filepath.Join(dir, "indexes", "17.json"))
	require.NoError(t, err)
	assert.JSONEq(t, assetIndex, string(saved))
}

func TestResolveAssetsErrors(t *testing.T) {
	mockTransport := httpmock.NewMockTransport()
	mockTransport.RegisterResponder("GET", indexURL, httpmock.NewStringResponder(500, "oops"))
	mockTransport.RegisterResponder("GET", "https://piston-meta.example.com/bad.json",
		httpmock.NewStringResponder(200, `{"objects": {"a": {"hash": "../../etc", "size": 1}}}`))
	f := fetch.New(&http.Client{Transport: mockTransport})

	_, err := ResolveAssets(context.Background(), f, indexURL, t.TempDir(), AssetOptions{})
	assert.Error(t, err)

	_, err = ResolveAssets(context.Background(), f, "https://piston-meta.example.com/bad.json", t.TempDir(), AssetOptions{})
	assert.ErrorContains(t, err, "invalid hash")
}
