package manifest

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/spuzmc/spuz-get/pkg/download"
	"github.com/spuzmc/spuz-get/pkg/fetch"
	"github.com/spuzmc/spuz-get/pkg/logging"
)

const DefaultAssetBaseURL = "https://resources.download.minecraft.net"

type AssetObject struct {
	Hash string `json:"hash"`
	Size uint64 `json:"size"`
}

type AssetIndex struct {
	Objects map[string]AssetObject `json:"objects"`
}

type AssetOptions struct {
	// BaseURL is the host objects are fetched from. Defaults to
	// DefaultAssetBaseURL.
	BaseURL string
	// IndexID, when set, saves the raw index to <dir>/indexes/<IndexID>.json.
	IndexID string
}

// ResolveAssets fetches the asset index at indexURL and returns one task per
// distinct object, laid out under dir the way the game expects:
// <dir>/objects/<hash[0:2]>/<hash>.
func ResolveAssets(ctx context.Context, client fetch.Client, indexURL, dir string, opts AssetOptions) ([]download.Task, error) {
	index, err := fetchIndex(ctx, client, indexURL, dir, opts.IndexID)
	if err != nil {
		return nil, err
	}
	base := opts.BaseURL
	if base == "" {
		base = DefaultAssetBaseURL
	}
	return AssetTasks(index, base, dir)
}

// AssetTasks maps the objects of index to tasks. Objects sharing a hash are
// downloaded once. Tasks are ordered by hash.
func AssetTasks(index AssetIndex, baseURL, dir string) ([]download.Task, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("error parsing base url %s: %w", baseURL, err)
	}

	objects := make(map[string]AssetObject, len(index.Objects))
	for name, obj := range index.Objects {
		if !isSHA1(obj.Hash) {
			return nil, fmt.Errorf("asset %s has invalid hash %q", name, obj.Hash)
		}
		objects[obj.Hash] = obj
	}
	hashes := make([]string, 0, len(objects))
	for hash := range objects {
		hashes = append(hashes, hash)
	}
	sort.Strings(hashes)

	tasks := make([]download.Task, 0, len(hashes))
	for _, hash := range hashes {
		prefix := hash[:2]
		u := base.JoinPath(prefix, hash)
		dest := filepath.Join(dir, "objects", prefix, hash)
		task := download.NewTask(u, dest, objects[hash].Size).WithDigest(hash)
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func fetchIndex(ctx context.Context, client fetch.Client, indexURL, dir, indexID string) (AssetIndex, error) {
	logger := logging.GetLogger()
	if indexID == "" {
		var index AssetIndex
		if err := client.GetJSON(ctx, indexURL, &index); err != nil {
			return AssetIndex{}, fmt.Errorf("error fetching asset index: %w", err)
		}
		return index, nil
	}

	res, err := fetch.GetResource[AssetIndex](ctx, client, indexURL)
	if err != nil {
		return AssetIndex{}, fmt.Errorf("error fetching asset index: %w", err)
	}
	indexPath := filepath.Join(dir, "indexes", path.Base(indexID)+".json")
	if err := os.MkdirAll(filepath.Dir(indexPath), 0755); err != nil {
		res.Body.Close()
		return AssetIndex{}, fmt.Errorf("error creating directory for %s: %w", indexPath, err)
	}
	file, err := os.Create(indexPath)
	if err != nil {
		res.Body.Close()
		return AssetIndex{}, fmt.Errorf("error creating %s: %w", indexPath, err)
	}
	index, err := res.SaveAndDecode(file)
	if closeErr := file.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("error writing %s: %w", indexPath, closeErr)
	}
	if err != nil {
		return AssetIndex{}, err
	}
	logger.Debug().Str("dest", indexPath).Int("objects", len(index.Objects)).Msg("Saved asset index")
	return index, nil
}
