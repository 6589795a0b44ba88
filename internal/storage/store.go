package storage

import (
	"context"
	"errors"
	"io"
)

// ErrObjectNotFound is returned by Download and Open when the requested
// object does not exist. Callers surface it as a 404, never as an upstream
// failure.
var ErrObjectNotFound = errors.New("storage: object not found")

// ObjectStore is the contract the conversion pipeline and download gateway
// require of a bucket+key addressed object store.
type ObjectStore interface {
	// Put writes r to bucket/key. contentType may be empty, in which case
	// the store infers one.
	Put(ctx context.Context, bucket, key string, r io.Reader, contentType string) error

	// Download copies bucket/key to a local file. Returns ErrObjectNotFound
	// if the object does not exist.
	Download(ctx context.Context, bucket, key, localPath string) error

	// Exists reports whether bucket/key exists.
	Exists(ctx context.Context, bucket, key string) (bool, error)

	// Open returns a reader over bucket/key. Returns ErrObjectNotFound if
	// the object does not exist. The caller closes the reader.
	Open(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}
