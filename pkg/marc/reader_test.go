package marc

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeRecords(t *testing.T, ft FileType, recs ...*Record) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := NewWriter(&buf, ft)
	require.NoError(t, err)
	for _, r := range recs {
		require.NoError(t, w.Write(r))
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func twoRecords(t *testing.T) []*Record {
	return []*Record{
		newTitleRecord(t, "PPN1", "Title One"),
		newTitleRecord(t, "PPN2", "Title Two"),
	}
}

func TestBinaryReaderReadsConcatenatedRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "two.mrc")
	require.NoError(t, os.WriteFile(path, writeRecords(t, FileTypeBinary, twoRecords(t)...), 0644))

	r, err := OpenReader(path, FileTypeBinary)
	require.NoError(t, err)
	defer r.Close()

	first, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, "PPN1", first.ControlNumber())
	assert.Equal(t, "Title One", first.MainTitle())

	second, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, "PPN2", second.ControlNumber())
	assert.Equal(t, "Title Two", second.MainTitle())

	third, err := r.Read()
	assert.Equal(t, io.EOF, err)
	assert.True(t, third.Empty())
}

func TestReaderTellSeekRewind(t *testing.T) {
	for _, ft := range []FileType{FileTypeBinary, FileTypeXML, FileTypeJSON} {
		t.Run(ft.String(), func(t *testing.T) {
			data := writeRecords(t, ft, twoRecords(t)...)
			r, err := NewReader(bytes.NewReader(data), FileTypeAuto)
			require.NoError(t, err)
			assert.Equal(t, ft, r.FileType())
			assert.Equal(t, int64(0), r.Tell())

			_, err = r.Read()
			require.NoError(t, err)
			afterFirst := r.Tell()
			assert.True(t, afterFirst > 0)

			second, err := r.Read()
			require.NoError(t, err)
			assert.Equal(t, "PPN2", second.ControlNumber())
			_, err = r.Read()
			assert.Equal(t, io.EOF, err)

			require.NoError(t, r.Seek(afterFirst))
			again, err := r.Read()
			require.NoError(t, err)
			assert.True(t, second.Equal(again))

			require.NoError(t, r.Rewind())
			first, err := r.Read()
			require.NoError(t, err)
			assert.Equal(t, "PPN1", first.ControlNumber())
		})
	}
}

func TestBinaryReaderTellIsRecordBoundary(t *testing.T) {
	recs := twoRecords(t)
	data := writeRecords(t, FileTypeBinary, recs...)
	r, err := NewReader(bytes.NewReader(data), FileTypeBinary)
	require.NoError(t, err)

	_, err = r.Read()
	require.NoError(t, err)
	assert.Equal(t, int64(len(mustEncode(t, recs[0]))), r.Tell())
	_, err = r.Read()
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), r.Tell())
}

func TestBinaryReaderFailsFast(t *testing.T) {
	good := mustEncode(t, newTitleRecord(t, "PPN1", "Title One"))
	bad := mustEncode(t, newTitleRecord(t, "PPN2", "Title Two"))
	bad[len(bad)-1] = 'X'
	tail := mustEncode(t, newTitleRecord(t, "PPN3", "Title Three"))

	data := append(append(append([]byte{}, good...), bad...), tail...)
	r, err := NewReader(bytes.NewReader(data), FileTypeBinary)
	require.NoError(t, err)

	_, err = r.Read()
	require.NoError(t, err)

	_, err = r.Read()
	require.ErrorIs(t, err, ErrMalformedRecord)
	assert.Contains(t, err.Error(), "offset 69")

	// sticky until repositioned
	_, err2 := r.Read()
	assert.Equal(t, err, err2)

	require.NoError(t, r.Seek(int64(len(good)+len(bad))))
	rec, err := r.Read()
	require.NoError(t, err)
	assert.Equal(t, "PPN3", rec.ControlNumber())
}

func TestBinaryReaderTruncatedStream(t *testing.T) {
	data := mustEncode(t, newTitleRecord(t, "PPN1", "Title One"))
	for _, cut := range []int{3, 30, len(data) - 1} {
		r, err := NewReader(bytes.NewReader(data[:cut]), FileTypeBinary)
		require.NoError(t, err)
		_, err = r.Read()
		assert.ErrorIs(t, err, ErrMalformedRecord, "cut at %d", cut)
	}

	r, err := NewReader(bytes.NewReader(nil), FileTypeAuto)
	require.NoError(t, err)
	_, err = r.Read()
	assert.Equal(t, io.EOF, err)
}

func TestReaderOnNonSeekableSource(t *testing.T) {
	data := writeRecords(t, FileTypeBinary, twoRecords(t)...)
	r, err := NewReader(io.MultiReader(bytes.NewReader(data)), FileTypeAuto)
	require.NoError(t, err)

	count := 0
	for {
		_, err := r.Read()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		count++
	}
	assert.Equal(t, 2, count)
	assert.True(t, errors.Is(r.Rewind(), ErrNotSeekable))
}

func TestSniffUnknownContent(t *testing.T) {
	_, err := NewReader(bytes.NewReader([]byte("hello world")), FileTypeAuto)
	assert.ErrorIs(t, err, ErrUnknownFileType)
}

func TestSniffJSONArrayIsUnknown(t *testing.T) {
	_, err := NewReader(bytes.NewReader([]byte(`[{"leader":"00000nam a2200000   4500","fields":[]}]`)), FileTypeAuto)
	assert.ErrorIs(t, err, ErrUnknownFileType)

	r, err := NewReader(bytes.NewReader([]byte(`{"leader":"00000nam a2200000   4500","fields":[]}`+"\n")), FileTypeAuto)
	require.NoError(t, err)
	assert.Equal(t, FileTypeJSON, r.FileType())
}

func TestReadRecordAtConcurrently(t *testing.T) {
	recs := make([]*Record, 0, 20)
	for i := 0; i < 20; i++ {
		recs = append(recs, newTitleRecord(t, "PPN"+string(rune('A'+i)), "Title"))
	}
	path := filepath.Join(t.TempDir(), "many.mrc")
	require.NoError(t, os.WriteFile(path, writeRecords(t, FileTypeBinary, recs...), 0644))

	// first pass: offsets via the sequential reader
	r, err := OpenReader(path, FileTypeBinary)
	require.NoError(t, err)
	idx, count, err := BuildIndex(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Equal(t, 20, count)
	assert.Len(t, idx, 20)

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	var wg sync.WaitGroup
	errs := make(chan error, len(idx))
	for id, offset := range idx {
		wg.Add(1)
		go func(id string, offset int64) {
			defer wg.Done()
			rec, _, err := ReadRecordAt(file, offset, nil)
			if err != nil {
				errs <- err
				return
			}
			if rec.ControlNumber() != id {
				errs <- errors.New("wrong record for " + id)
			}
		}(id, offset)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	_, next, err := ReadRecordAt(file, idx["PPNT"], nil)
	require.NoError(t, err)
	_, _, err = ReadRecordAt(file, next, nil)
	assert.Equal(t, io.EOF, err)
	_, _, err = ReadRecordAt(file, next-10, nil)
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestBuildIndexAndReadIndexed(t *testing.T) {
	for _, ft := range []FileType{FileTypeBinary, FileTypeXML} {
		t.Run(ft.String(), func(t *testing.T) {
			recs := append(twoRecords(t), newTitleRecord(t, "PPN1", "Duplicate"), NewRecord('a', 'm', ""))
			require.NoError(t, recs[3].InsertDataField("245", '0', '0', Subfield{'a', "No id"}))
			data := writeRecords(t, ft, recs...)

			r, err := NewReader(bytes.NewReader(data), ft)
			require.NoError(t, err)
			idx, count, err := BuildIndex(r)
			require.NoError(t, err)
			assert.Equal(t, 4, count)
			assert.Len(t, idx, 2)

			rec, err := ReadIndexed(r, idx, "PPN2")
			require.NoError(t, err)
			assert.Equal(t, "Title Two", rec.MainTitle())
			rec, err = ReadIndexed(r, idx, "PPN1")
			require.NoError(t, err)
			assert.Equal(t, "Title One", rec.MainTitle())

			_, err = ReadIndexed(r, idx, "PPN9")
			assert.ErrorIs(t, err, ErrNotIndexed)
		})
	}
}

func TestCreateWriterPicksTypeFromExtension(t *testing.T) {
	dir := t.TempDir()
	for name, ft := range map[string]FileType{"out.xml": FileTypeXML, "out.jsonl": FileTypeJSON, "out.mrc": FileTypeBinary, "out": FileTypeBinary} {
		path := filepath.Join(dir, name)
		w, err := CreateWriter(path, FileTypeAuto)
		require.NoError(t, err)
		require.NoError(t, w.Write(newTitleRecord(t, "PPN1", "T")))
		require.NoError(t, w.Close())

		r, err := OpenReader(path, FileTypeAuto)
		require.NoError(t, err)
		assert.Equal(t, ft, r.FileType(), name)
		rec, err := r.Read()
		require.NoError(t, err)
		assert.Equal(t, "PPN1", rec.ControlNumber())
		require.NoError(t, r.Close())
	}
}

func TestParseFileType(t *testing.T) {
	ft, err := ParseFileType("MARCXML")
	require.NoError(t, err)
	assert.Equal(t, FileTypeXML, ft)
	ft, err = ParseFileType("mrc")
	require.NoError(t, err)
	assert.Equal(t, FileTypeBinary, ft)
	_, err = ParseFileType("pdf")
	assert.ErrorIs(t, err, ErrUnknownFileType)
}

//
// end of file
//
