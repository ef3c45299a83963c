// Package blobstore persists opaque byte blobs under string keys.
package blobstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get and Delete when a key does not exist,
// whatever the backend.
var ErrNotFound = errors.New("blob not found")

// Store is a key to bytes persistence layer.
type Store interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Close() error
}

//
// end of file
//
