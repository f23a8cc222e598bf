package storage

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const defaultExtension = ".jpg"

// NewKey allocates the storage key of a new asset: the user's prefix, one
// slash, a random v4 UUID and the extension of contentType.
//
// No lookup in the bucket is made. A v4 UUID has 122 random bits, so the
// probability of any collision among n keys is about n*n/2^123: roughly
// 1e-29 for ten thousand keys and 1e-19 for a billion. That risk is
// accepted. The only possible error is a failing random source.
func NewKey(prefix, contentType string) (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return strings.TrimRight(prefix, "/") + "/" + id.String() + Extension(contentType), nil
}

// Extension returns the canonical file extension for contentType,
// defaulting to .jpg.
func Extension(contentType string) string {
	if m := mimetype.Lookup(contentType); m != nil && m.Extension() != "" {
		return m.Extension()
	}
	return defaultExtension
}
