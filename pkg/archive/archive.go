// Package archive keeps compressed copies of MARC records in a blob store,
// keyed by control number.
package archive

import (
	"context"
	"fmt"

	"github.com/segmentio/ksuid"

	"github.com/uvalib/virgo4-marc-tools/pkg/blobstore"
	"github.com/uvalib/virgo4-marc-tools/pkg/marc"
)

type Archive struct {
	store  blobstore.Store
	codec  marc.Codec
	prefix string
}

// New returns an archive writing to store. Keys are prefixed with prefix,
// which may be empty.
func New(store blobstore.Store, prefix string, policy *marc.Policy) *Archive {
	return &Archive{store: store, codec: marc.Codec{Policy: policy}, prefix: prefix}
}

// Key returns the key a record is archived under: its control number, or
// a fresh KSUID when it has none.
func (a *Archive) Key(rec *marc.Record) string {
	id := rec.ControlNumber()
	if id == "" {
		id = ksuid.New().String()
	}
	return a.prefix + id
}

// Put stores rec and returns its key.
func (a *Archive) Put(ctx context.Context, rec *marc.Record) (string, error) {
	data, err := a.codec.Encode(rec)
	if err != nil {
		return "", err
	}
	blob, err := Compress(data)
	if err != nil {
		return "", err
	}
	key := a.Key(rec)
	if err := a.store.Put(ctx, key, blob); err != nil {
		return "", fmt.Errorf("archive %s: %w", key, err)
	}
	return key, nil
}

// Get returns the record stored under key. Missing keys yield
// blobstore.ErrNotFound.
func (a *Archive) Get(ctx context.Context, key string) (*marc.Record, error) {
	blob, err := a.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	data, err := Decompress(blob)
	if err != nil {
		return nil, fmt.Errorf("archive %s: %w", key, err)
	}
	return a.codec.Decode(data)
}

func (a *Archive) Delete(ctx context.Context, key string) error {
	return a.store.Delete(ctx, key)
}

//
// end of file
//
