// Package integrity verifies downloaded files and remembers which files have
// already been verified.
package integrity

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var ErrDigestMismatch = errors.New("digest mismatch")

// Digest returns the hex SHA-1 of the file at path.
func Digest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("error opening %s: %w", path, err)
	}
	defer f.Close()
	h := sha1.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("error hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Verify checks the file at path against an expected hex SHA-1. A mismatch
// is reported as ErrDigestMismatch.
func Verify(path, expected string) error {
	actual, err := Digest(path)
	if err != nil {
		return err
	}
	if !strings.EqualFold(actual, expected) {
		return fmt.Errorf("%w: %s is %s, expected %s", ErrDigestMismatch, path, actual, expected)
	}
	return nil
}
