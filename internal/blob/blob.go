// Package blob stores document content. The filesystem implementation is
// the reference deployment; the Store interface is the substitution point
// for object storage.
package blob

import (
	"context"
	"crypto/rand"
	"errors"
	"io"

	"github.com/mr-tron/base58"
)

// ErrBlobNotFound is returned when no blob exists for a key.
var ErrBlobNotFound = errors.New("blob not found")

// Store defines the interface for blob content storage.
type Store interface {
	// Put writes the content under key. A failed write leaves no partial
	// blob behind.
	Put(ctx context.Context, key string, content io.Reader) (int64, error)

	// Open returns a reader over the blob's content. The caller closes it.
	// Returns ErrBlobNotFound if the key doesn't exist.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the blob. Deleting a missing key is not an error; the
	// metadata row is the source of truth for existence.
	Delete(ctx context.Context, key string) error
}

// NewKey generates a random base58 blob key.
func NewKey() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base58.Encode(buf), nil
}
