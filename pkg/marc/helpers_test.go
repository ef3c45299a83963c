package marc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// "001"=PPN1, "245" 00 $aTitle One, encoded by hand
const ppn1Record = "00069nam a2200049   4500" +
	"001000500000" + "245001400005" + "\x1e" +
	"PPN1\x1e" + "00\x1faTitle One\x1e" +
	"\x1d"

func newTitleRecord(t *testing.T, ppn string, title string) *Record {
	t.Helper()
	rec := NewRecord('a', 'm', ppn)
	require.NoError(t, rec.InsertDataField("245", '0', '0', Subfield{'a', title}))
	return rec
}

func newArticleRecord(t *testing.T) *Record {
	t.Helper()
	rec := NewRecord('a', 'a', "1745893021")
	require.NoError(t, rec.InsertControlField("005", "20240102123000.0"))
	require.NoError(t, rec.InsertControlField("007", "cr uuu---uuuuu"))
	require.NoError(t, rec.InsertDataField("022", ' ', ' ', Subfield{'a', "0001-0002"}))
	require.NoError(t, rec.InsertDataField("024", '7', ' ', Subfield{'a', "10.1000/xyz123"}, Subfield{'2', "doi"}))
	require.NoError(t, rec.InsertDataField("100", '1', ' ', Subfield{'a', "Müller, Anna"}, Subfield{'4', "aut"}))
	require.NoError(t, rec.InsertDataField("245", '1', '0', Subfield{'a', "Theologie heute :"}, Subfield{'b', "ein Überblick /"}, Subfield{'c', "Anna Müller"}))
	require.NoError(t, rec.InsertDataField("700", '1', ' ', Subfield{'a', "Schmidt, Jonas"}))
	require.NoError(t, rec.InsertDataField("700", '1', ' ', Subfield{'a', "Müller, Anna"}))
	require.NoError(t, rec.InsertDataField("773", '0', '8', Subfield{'i', "In"}, Subfield{'x', "1234-5678"}, Subfield{'w', "(DE-600)123"}, Subfield{'w', "(DE-627)166194863"}))
	require.NoError(t, rec.InsertDataField("856", '4', '0', Subfield{'u', "https://doi.org/10.1000/xyz123"}, Subfield{'3', "Volltext"}))
	require.NoError(t, rec.InsertDataField("935", ' ', ' ', Subfield{'c', "uwre"}))
	return rec
}

func mustEncode(t *testing.T, rec *Record) []byte {
	t.Helper()
	data, err := Encode(rec)
	require.NoError(t, err)
	return data
}

//
// end of file
//
