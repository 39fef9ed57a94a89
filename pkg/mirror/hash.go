package mirror

import (
	"fmt"
	"slices"

	"github.com/dgryski/go-jump"
	"github.com/mitchellh/hashstructure/v2"
)

type bucketKey struct {
	Key     any
	Attempt int
}

// HashBucket returns a bucket from [0,buckets). previousBuckets lists buckets
// which must be avoided in the output; HashBucket sorts it in place.
func HashBucket(key any, buckets int, previousBuckets ...int) (int, error) {
	if len(previousBuckets) >= buckets {
		return -1, fmt.Errorf("no more buckets left: %d buckets available but %d already attempted", buckets, len(previousBuckets))
	}
	// IgnoreZeroValue keeps hashes stable when fields are added to the key
	// later. A HashOptions must not be shared, so make a fresh one each time.
	hashopts := &hashstructure.HashOptions{IgnoreZeroValue: true}
	hash, err := hashstructure.Hash(bucketKey{Key: key, Attempt: len(previousBuckets)}, hashstructure.FormatV2, hashopts)
	if err != nil {
		return -1, fmt.Errorf("error calculating hash of key: %w", err)
	}

	// Jump Consistent Hash, see http://arxiv.org/abs/1406.2294
	bucket := int(jump.Hash(hash, buckets-len(previousBuckets)))
	slices.Sort(previousBuckets)
	for _, prev := range previousBuckets {
		if bucket >= prev {
			bucket++
		}
	}
	return bucket, nil
}
