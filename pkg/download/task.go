package download

import (
	"net/url"
	"path/filepath"

	"github.com/spuzmc/spuz-get/pkg/decompress"
)

// Task describes a single file to download. Tasks are values; the With*
// modifiers return modified copies.
type Task struct {
	URL  *url.URL
	Dest string
	// Size is the number of bytes the producer declared for this file. It is
	// reported in events and never checked against the response.
	Size   uint64
	Codec  decompress.Codec
	Digest string

	retries uint8
}

func NewTask(u *url.URL, dest string, size uint64) Task {
	return Task{URL: u, Dest: dest, Size: size, Codec: decompress.None}
}

// WithLZMA toggles classic LZMA decompression of the response body.
func (t Task) WithLZMA(enable bool) Task {
	if enable {
		t.Codec = decompress.LZMA
	} else {
		t.Codec = decompress.None
	}
	return t
}

func (t Task) WithCodec(codec decompress.Codec) Task {
	t.Codec = codec
	return t
}

// WithDigest attaches the expected hex SHA-1 of the written file.
func (t Task) WithDigest(digest string) Task {
	t.Digest = digest
	return t
}

func (t Task) Decompress() bool {
	return t.Codec != decompress.None
}

// Retries is reserved for task level retries, which are not performed.
func (t Task) Retries() uint8 {
	return t.retries
}

func (t Task) Basename() string {
	return filepath.Base(t.Dest)
}
