package archive

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uvalib/virgo4-marc-tools/pkg/blobstore"
	"github.com/uvalib/virgo4-marc-tools/pkg/marc"
)

func titleRecord(t *testing.T, id string, title string) *marc.Record {
	rec := marc.NewRecord('a', 'm', id)
	require.NoError(t, rec.InsertDataField("245", '1', '0', marc.Subfield{Code: 'a', Value: title}))
	return rec
}

func TestCompressRoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("MARC record data "), 500)
	blob, err := Compress(data)
	require.NoError(t, err)
	assert.Less(t, len(blob), len(data))

	back, err := Decompress(blob)
	require.NoError(t, err)
	assert.Equal(t, data, back)

	_, err = Decompress([]byte("not gzip"))
	assert.Error(t, err)
}

func TestArchivePutGetDelete(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()
	a := New(store, "marc/", nil)

	rec := titleRecord(t, "u12345", strings.Repeat("Title ", 100))
	key, err := a.Put(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, "marc/u12345", key)

	back, err := a.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, rec.Equal(back))

	require.NoError(t, a.Delete(ctx, key))
	_, err = a.Get(ctx, key)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestArchiveKeyWithoutControlNumber(t *testing.T) {
	a := New(blobstore.NewMemoryStore(), "", nil)
	rec := titleRecord(t, "", "Untitled")

	key, err := a.Put(context.Background(), rec)
	require.NoError(t, err)
	_, err = ksuid.Parse(key)
	assert.NoError(t, err)
	assert.NotEqual(t, key, a.Key(rec))
}

func TestArchiveRejectsUnencodableRecord(t *testing.T) {
	store := blobstore.NewMemoryStore()
	a := New(store, "", nil)
	rec := titleRecord(t, "u1", strings.Repeat("x", marc.MaxFieldLength))

	_, err := a.Put(context.Background(), rec)
	assert.ErrorIs(t, err, marc.ErrEncodingOverflow)
	assert.Equal(t, 0, store.Len())
}

func TestArchiveOnPebble(t *testing.T) {
	store, err := blobstore.OpenPebbleStore(filepath.Join(t.TempDir(), "archive"))
	require.NoError(t, err)
	defer store.Close()

	a := New(store, "", nil)
	rec := titleRecord(t, "u1", "Pebble")
	key, err := a.Put(context.Background(), rec)
	require.NoError(t, err)
	back, err := a.Get(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, "Pebble", back.MainTitle())
}

//
// end of file
//
