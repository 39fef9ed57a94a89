package decompress

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pierrec/lz4"
	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"

	"github.com/spuzmc/spuz-get/pkg/logging"
)

// Codec selects the streaming decompression stage applied to a response body.
type Codec int

const (
	None Codec = iota
	LZMA
	XZ
	LZ4
	Gzip
	Bzip2
	// Auto sniffs the magic number of the stream. Streams that match no known
	// format are passed through untouched.
	Auto
)

const peekSize = 8

var ErrUnknownCodec = errors.New("unknown codec")

var (
	gzipMagic = []byte{0x1F, 0x8B}
	bzipMagic = []byte{0x42, 0x5A, 0x68}
	xzMagic   = []byte{0xFD, 0x37, 0x7A, 0x58, 0x5A, 0x00}
	lz4Magic  = []byte{0x04, 0x22, 0x4D, 0x18}
)

var codecNames = map[Codec]string{
	None:  "none",
	LZMA:  "lzma",
	XZ:    "xz",
	LZ4:   "lz4",
	Gzip:  "gzip",
	Bzip2: "bzip2",
	Auto:  "auto",
}

func (c Codec) String() string {
	if name, ok := codecNames[c]; ok {
		return name
	}
	return fmt.Sprintf("codec(%d)", int(c))
}

// ParseCodec maps a codec name to its Codec. The empty string is None.
func ParseCodec(name string) (Codec, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return None, nil
	}
	for c, n := range codecNames {
		if n == name {
			return c, nil
		}
	}
	return None, fmt.Errorf("%w: %s", ErrUnknownCodec, name)
}

// Set and Type let a Codec be used directly as a pflag value.
func (c *Codec) Set(value string) error {
	parsed, err := ParseCodec(value)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c *Codec) Type() string {
	return "codec"
}

// NewReader layers the decompressor for codec over r. Readers that need to
// consume a header (lzma, xz, gzip) do so before returning, so a malformed
// header is reported here rather than on the first Read.
func NewReader(codec Codec, r io.Reader) (io.Reader, error) {
	switch codec {
	case None:
		return r, nil
	case Auto:
		peeker := &peekReader{reader: r}
		// a short peek just means a short stream; detectFormat handles it
		head, err := peeker.Peek(peekSize)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		d := detectFormat(head)
		if d == nil {
			return peeker, nil
		}
		return d.decompress(peeker)
	}
	d, ok := decompressors[codec]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCodec, codec)
	}
	return d.decompress(r)
}

var decompressors = map[Codec]decompressor{
	LZMA:  lzmaDecompressor{},
	XZ:    xzDecompressor{},
	LZ4:   lz4Decompressor{},
	Gzip:  gzipDecompressor{},
	Bzip2: bzip2Decompressor{},
}

// decompressor represents different compression formats.
type decompressor interface {
	decompress(r io.Reader) (io.Reader, error)
}

// detectFormat returns the appropriate decompressor according to the magic
// number. Classic LZMA has no magic number and is never detected.
func detectFormat(input []byte) decompressor {
	log := logging.GetLogger()
	if len(input) < 2 {
		return nil
	}
	// pad to 8 bytes
	if len(input) < peekSize {
		input = append(input, make([]byte, peekSize-len(input))...)
	}

	switch {
	case bytes.HasPrefix(input, gzipMagic):
		log.Debug().Str("type", "gzip").Msg("Compression Format")
		return gzipDecompressor{}
	case bytes.HasPrefix(input, bzipMagic):
		log.Debug().Str("type", "bzip2").Msg("Compression Format")
		return bzip2Decompressor{}
	case bytes.HasPrefix(input, lz4Magic):
		log.Debug().Str("type", "lz4").Msg("Compression Format")
		return lz4Decompressor{}
	case bytes.HasPrefix(input, xzMagic):
		log.Debug().Str("type", "xz").Msg("Compression Format")
		return xzDecompressor{}
	default:
		log.Debug().Str("type", "none").Msg("Compression Format")
		return nil
	}
}

type lzmaDecompressor struct{}

func (d lzmaDecompressor) decompress(r io.Reader) (io.Reader, error) {
	return lzma.NewReader(r)
}

type xzDecompressor struct{}

func (d xzDecompressor) decompress(r io.Reader) (io.Reader, error) {
	return xz.NewReader(r)
}

type lz4Decompressor struct{}

func (d lz4Decompressor) decompress(r io.Reader) (io.Reader, error) {
	return lz4.NewReader(r), nil
}

type gzipDecompressor struct{}

func (d gzipDecompressor) decompress(r io.Reader) (io.Reader, error) {
	return gzip.NewReader(r)
}

type bzip2Decompressor struct{}

func (d bzip2Decompressor) decompress(r io.Reader) (io.Reader, error) {
	return bzip2.NewReader(r), nil
}
