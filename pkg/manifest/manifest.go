package manifest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/spuzmc/spuz-get/pkg/decompress"
	"github.com/spuzmc/spuz-get/pkg/download"
)

// A manifest is a text file with one download per line:
//
//	<url> <dest> [size=<bytes>] [codec=<codec>] [sha1=<hex>]
//
// for example
//
//	https://example.com/foo/bar.bin.lzma foo/bar.bin size=12MiB codec=lzma
//	https://example.com/foo/baz.txt      foo/baz.txt sha1=2aae6c35c94fcfb415dbe95f408b9ce91ee846ed
//
// Blank lines and lines starting with # are ignored. Fields are separated by
// arbitrary whitespace and sizes accept humanized values.

var ErrInvalidLine = errors.New("invalid manifest line")

// Open returns the manifest at path, or stdin when path is "-".
func Open(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("manifest file %s does not exist", path)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening manifest file %s: %w", path, err)
	}
	return file, nil
}

// Parse reads a manifest into tasks, in file order.
func Parse(r io.Reader) ([]download.Task, error) {
	seenDestinations := make(map[string]string)
	var tasks []download.Task

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		task, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		urlString := task.URL.String()
		if err := checkSeenDestinations(seenDestinations, task.Dest, urlString); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		seenDestinations[task.Dest] = urlString
		tasks = append(tasks, task)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading manifest: %w", err)
	}
	return tasks, nil
}

func parseLine(line string) (download.Task, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return download.Task{}, fmt.Errorf("%w: `%s`", ErrInvalidLine, line)
	}
	u, err := url.Parse(fields[0])
	if err != nil {
		return download.Task{}, fmt.Errorf("error parsing url %s: %w", fields[0], err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return download.Task{}, fmt.Errorf("%w: unsupported url %s", ErrInvalidLine, fields[0])
	}
	task := download.NewTask(u, fields[1], 0)

	for _, attr := range fields[2:] {
		key, value, ok := strings.Cut(attr, "=")
		if !ok || value == "" {
			return download.Task{}, fmt.Errorf("%w: malformed attribute `%s`", ErrInvalidLine, attr)
		}
		switch key {
		case "size":
			size, err := humanize.ParseBytes(value)
			if err != nil {
				return download.Task{}, fmt.Errorf("error parsing size %s: %w", value, err)
			}
			task.Size = size
		case "codec":
			codec, err := decompress.ParseCodec(value)
			if err != nil {
				return download.Task{}, err
			}
			task = task.WithCodec(codec)
		case "sha1":
			if !isSHA1(value) {
				return download.Task{}, fmt.Errorf("%w: bad sha1 `%s`", ErrInvalidLine, value)
			}
			task = task.WithDigest(strings.ToLower(value))
		default:
			return download.Task{}, fmt.Errorf("%w: unknown attribute `%s`", ErrInvalidLine, key)
		}
	}
	return task, nil
}

func checkSeenDestinations(destinations map[string]string, dest string, urlString string) error {
	if seenURL, ok := destinations[dest]; ok {
		if seenURL != urlString {
			return fmt.Errorf("duplicate destination %s with different urls: %s and %s", dest, seenURL, urlString)
		}
		return fmt.Errorf("duplicate entry: %s %s", urlString, dest)
	}
	return nil
}

func isSHA1(s string) bool {
	if len(s) != 40 {
		return false
	}
	for _, c := range strings.ToLower(s) {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
