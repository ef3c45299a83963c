package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uvalib/virgo4-marc-tools/pkg/archive"
	"github.com/uvalib/virgo4-marc-tools/pkg/blobstore"
	"github.com/uvalib/virgo4-marc-tools/pkg/marc"
)

func sampleRecord(t *testing.T, id string, title string) *marc.Record {
	rec := marc.NewRecord('a', 'm', id)
	require.NoError(t, rec.InsertDataField("245", '1', '0', marc.Subfield{Code: 'a', Value: title}))
	require.NoError(t, rec.InsertDataField("856", '4', '0', marc.Subfield{Code: 'u', Value: "https://example.org/" + id}))
	require.NoError(t, rec.InsertDataField("935", ' ', ' ', marc.Subfield{Code: 'c', Value: "local"}))
	return rec
}

func sampleFile(t *testing.T, name string) string {
	path := filepath.Join(t.TempDir(), name)
	w, err := marc.CreateWriter(path, marc.FileTypeAuto)
	require.NoError(t, err)
	for _, id := range []string{"u1", "u2", "u3"} {
		require.NoError(t, w.Write(sampleRecord(t, id, "Title "+id)))
	}
	require.NoError(t, w.Close())
	return path
}

func readFile(t *testing.T, path string) []*marc.Record {
	recs := make([]*marc.Record, 0)
	require.NoError(t, eachRecord(path, marc.FileTypeAuto, nil, func(rec *marc.Record) error {
		recs = append(recs, rec)
		return nil
	}))
	return recs
}

func runApp(t *testing.T, args ...string) (string, error) {
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	err := app.Run(context.Background(), append([]string{"marctool"}, args...))
	return out.String(), err
}

func TestCountCommand(t *testing.T) {
	path := sampleFile(t, "in.mrc")
	out, err := runApp(t, "count", path)
	require.NoError(t, err)
	assert.Equal(t, "3\n", out)

	_, err = runApp(t, "count")
	assert.Error(t, err)
}

func TestConvertBetweenFormats(t *testing.T) {
	src := sampleFile(t, "in.mrc")
	dir := t.TempDir()

	xmlPath := filepath.Join(dir, "out.xml")
	out, err := runApp(t, "convert", src, xmlPath)
	require.NoError(t, err)
	assert.Equal(t, "3 records converted\n", out)

	jsonPath := filepath.Join(dir, "out.data")
	_, err = runApp(t, "convert", "--to", "json", xmlPath, jsonPath)
	require.NoError(t, err)

	orig := readFile(t, src)
	back := readFile(t, jsonPath)
	require.Len(t, back, 3)
	for i := range orig {
		assert.True(t, orig[i].Equal(back[i]), "record %d", i)
	}
}

func TestDumpRecords(t *testing.T) {
	src := sampleFile(t, "in.xml")
	var out bytes.Buffer
	require.NoError(t, dumpRecords(&out, src, nil, []string{"u2"}, []string{"001", "245"}))
	text := out.String()
	assert.Contains(t, text, "001 u2")
	assert.Contains(t, text, "245 10 $aTitle u2")
	assert.NotContains(t, text, "856")
	assert.NotContains(t, text, "u1")
}

func TestIndexAndExtract(t *testing.T) {
	src := sampleFile(t, "in.mrc")

	var out bytes.Buffer
	require.NoError(t, writeIndex(&out, src, nil))
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "u1\t0", lines[0])
	assert.True(t, strings.HasPrefix(lines[2], "u3\t"))

	dst := filepath.Join(t.TempDir(), "subset.mrc")
	missing, err := extractRecords(src, dst, marc.FileTypeAuto, nil, []string{"u3", "u9", "u1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"u9"}, missing)

	recs := readFile(t, dst)
	require.Len(t, recs, 2)
	assert.Equal(t, "u3", recs[0].ControlNumber())
	assert.Equal(t, "u1", recs[1].ControlNumber())
}

func TestEraseAndRetag(t *testing.T) {
	src := sampleFile(t, "in.mrc")
	dir := t.TempDir()

	erased := filepath.Join(dir, "erased.mrc")
	removed, err := eraseTags(src, erased, marc.FileTypeAuto, nil, []string{"856", "999"})
	require.NoError(t, err)
	assert.Equal(t, 3, removed)
	for _, rec := range readFile(t, erased) {
		assert.False(t, rec.HasTag("856"))
		assert.True(t, rec.HasTag("245"))
	}

	retagged := filepath.Join(dir, "retagged.mrc")
	changed, err := retagFields(erased, retagged, marc.FileTypeAuto, nil, "935", "936")
	require.NoError(t, err)
	assert.Equal(t, 3, changed)
	recs := readFile(t, retagged)
	assert.Equal(t, []string{"001", "245", "936"}, recs[0].Tags())

	_, err = retagFields(erased, retagged, marc.FileTypeAuto, nil, "935", "9360")
	assert.ErrorIs(t, err, marc.ErrInvalidMutation)
}

func TestEraseInPlace(t *testing.T) {
	src := sampleFile(t, "in.mrc")

	out, err := runApp(t, "erase", "--tags", "856", src, src)
	require.NoError(t, err)
	assert.Equal(t, "3 fields removed\n", out)

	recs := readFile(t, src)
	require.Len(t, recs, 3)
	for _, rec := range recs {
		assert.False(t, rec.HasTag("856"))
		assert.True(t, rec.HasTag("245"))
	}

	entries, err := os.ReadDir(filepath.Dir(src))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestConvertInPlace(t *testing.T) {
	src := sampleFile(t, "in.mrc")
	before := readFile(t, src)

	_, err := runApp(t, "convert", "--to", "xml", src, src)
	require.NoError(t, err)

	data, err := os.ReadFile(src)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<collection")
	after := readFile(t, src)
	require.Len(t, after, len(before))
	for i := range before {
		assert.True(t, before[i].Equal(after[i]), "record %d", i)
	}
}

func TestRetagControlFieldRejected(t *testing.T) {
	src := sampleFile(t, "in.mrc")
	dst := filepath.Join(t.TempDir(), "out.mrc")
	require.NoError(t, os.WriteFile(dst, []byte("keep"), 0644))

	_, err := runApp(t, "retag", "--from", "001", "--to-tag", "035", src, dst)
	assert.ErrorIs(t, err, marc.ErrInvalidMutation)

	// a failed run leaves the output alone
	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "keep", string(data))

	for _, rec := range readFile(t, src) {
		assert.NotEmpty(t, rec.ControlNumber())
	}
}

func TestAppendToItselfRefused(t *testing.T) {
	src := sampleFile(t, "in.mrc")
	_, err := appendRecords(src, src, nil)
	assert.Error(t, err)
	assert.Len(t, readFile(t, src), 3)
}

func TestAppendRecords(t *testing.T) {
	src := sampleFile(t, "in.xml")
	target := filepath.Join(t.TempDir(), "all.mrc")

	n, err := appendRecords(src, target, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	_, err = appendRecords(src, target, nil)
	require.NoError(t, err)

	assert.Len(t, readFile(t, target), 6)
}

func TestQueryRecords(t *testing.T) {
	src := sampleFile(t, "in.mrc")

	var out bytes.Buffer
	require.NoError(t, queryRecords(context.Background(), &out, `.fields[] | ."001" // empty`, src, nil))
	assert.Equal(t, "\"u1\"\n\"u2\"\n\"u3\"\n", out.String())

	out.Reset()
	require.NoError(t, queryRecords(context.Background(), &out, `[.fields[] | ."856".subfields[]?.u // empty] | length`, src, nil))
	assert.Equal(t, "1\n1\n1\n", out.String())

	assert.Error(t, queryRecords(context.Background(), &out, `.fields[`, src, nil))
	assert.Error(t, queryRecords(context.Background(), &out, `error("boom")`, src, nil))
}

func TestValidateFile(t *testing.T) {
	src := sampleFile(t, "in.mrc")
	var out bytes.Buffer

	count, problems, err := validateFile(&out, src, marc.NewPolicy(nil, []string{"245"}, marc.DuplicatesAllow))
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, 0, problems)

	data, err := os.ReadFile(src)
	require.NoError(t, err)
	bad := filepath.Join(t.TempDir(), "bad.mrc")
	require.NoError(t, os.WriteFile(bad, data[:len(data)-3], 0644))
	_, _, err = validateFile(&out, bad, nil)
	assert.ErrorIs(t, err, marc.ErrMalformedRecord)

	_, err = runApp(t, "validate", bad)
	assert.Error(t, err)
}

func TestArchiveAndRestore(t *testing.T) {
	src := sampleFile(t, "in.mrc")
	db := filepath.Join(t.TempDir(), "archive")

	out, err := runApp(t, "archive", "--db", db, "--prefix", "test/", src)
	require.NoError(t, err)
	assert.Equal(t, "3 records archived\n", out)

	dst := filepath.Join(t.TempDir(), "restored.mrc")
	_, err = runApp(t, "restore", "--db", db, "--prefix", "test/", "--id", "u2,u3", dst)
	require.NoError(t, err)

	recs := readFile(t, dst)
	require.Len(t, recs, 2)
	assert.Equal(t, "Title u2", recs[0].MainTitle())

	_, err = runApp(t, "restore", "--db", db, "--id", "u2", dst)
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	_, err = runApp(t, "archive", src)
	assert.Error(t, err)
}

func TestRestoreFromMemoryStore(t *testing.T) {
	arch := archive.New(blobstore.NewMemoryStore(), "", nil)
	n, err := archiveRecords(context.Background(), arch, sampleFile(t, "in.xml"), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	dst := filepath.Join(t.TempDir(), "out.xml")
	require.NoError(t, restoreRecords(context.Background(), arch, "", []string{"u1"}, dst, marc.FileTypeAuto))
	recs := readFile(t, dst)
	require.Len(t, recs, 1)
	assert.Equal(t, "https://example.org/u1", recs[0].FirstSubfieldValue("856", 'u'))
}

//
// end of file
//
