package marc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tagsOf(r *Record) []string {
	tags := make([]string, 0, r.Len())
	for i := range r.Fields() {
		tags = append(tags, r.Field(i).Tag())
	}
	return tags
}

func TestNewRecord(t *testing.T) {
	rec := NewRecord('a', 's', "PPN7")
	assert.Equal(t, "PPN7", rec.ControlNumber())
	assert.True(t, rec.IsSerial())
	assert.False(t, rec.Empty())

	var missing *Record
	assert.True(t, missing.Empty())
	assert.Equal(t, "", missing.ControlNumber())
	assert.True(t, NewRecord('a', 'm', "").Empty())
	assert.Equal(t, "", NewRecord('a', 'm', "").ControlNumber())
}

func TestInsertFieldKeepsTagOrder(t *testing.T) {
	rec := NewRecord('a', 'm', "PPN1")
	require.NoError(t, rec.InsertDataField("700", '1', ' ', Subfield{'a', "Second"}))
	require.NoError(t, rec.InsertDataField("245", '0', '0', Subfield{'a', "Title"}))
	require.NoError(t, rec.InsertDataField("700", '1', ' ', Subfield{'a', "Third"}))
	require.NoError(t, rec.InsertControlField("005", "20240101"))
	require.NoError(t, rec.InsertDataField("100", '1', ' ', Subfield{'a', "First"}))

	assert.Equal(t, []string{"001", "005", "100", "245", "700", "700"}, tagsOf(rec))
	assert.Equal(t, []string{"Second", "Third"}, rec.SubfieldValues("700", "a"))

	require.NoError(t, rec.InsertFieldAtEnd(NewDataField("035", ' ', ' ', Subfield{'a', "(DE-599)X"})))
	assert.Equal(t, "035", rec.Field(rec.Len()-1).Tag())
}

func TestInsertFieldChecksKind(t *testing.T) {
	rec := NewRecord('a', 'm', "PPN1")
	assert.ErrorIs(t, rec.InsertField(NewControlField("245", "x")), ErrInvalidMutation)
	assert.ErrorIs(t, rec.InsertField(NewDataField("003", ' ', ' ')), ErrInvalidMutation)
	assert.ErrorIs(t, rec.InsertField(NewDataField("24", ' ', ' ')), ErrInvalidMutation)
	assert.ErrorIs(t, rec.InsertControlField("003", "a\x1db"), ErrInvalidMutation)
}

func TestTagRange(t *testing.T) {
	rec := newArticleRecord(t)

	got := make([]string, 0)
	for f := range rec.TagRange("700") {
		got = append(got, f.FirstSubfieldValue('a'))
	}
	assert.Equal(t, []string{"Schmidt, Jonas", "Müller, Anna"}, got)

	// restartable
	assert.Len(t, rec.FieldsWithTag("700"), 2)
	assert.Len(t, rec.FieldsWithTag("700"), 2)

	for _, tag := range []string{"001", "245", "700", "856", "999"} {
		assert.Equal(t, rec.HasTag(tag), len(rec.FieldsWithTag(tag)) > 0, tag)
	}
	assert.Empty(t, rec.FieldsWithTag("999"))
	assert.Equal(t, -1, rec.FindTag("999"))
	assert.Nil(t, rec.FirstField("999"))

	for f := range rec.TagRange("700") {
		require.NoError(t, f.InsertOrReplaceSubfield('4', "ctb"))
	}
	assert.Equal(t, []string{"ctb", "ctb"}, rec.SubfieldValues("700", "4"))
}

func TestEraseAndDelete(t *testing.T) {
	rec := newArticleRecord(t)
	n := rec.Len()

	assert.Equal(t, 2, rec.Erase("700"))
	assert.False(t, rec.HasTag("700"))
	assert.Equal(t, n-2, rec.Len())
	assert.Equal(t, 0, rec.Erase("700"))

	require.NoError(t, rec.EraseAt(0))
	assert.Equal(t, "", rec.ControlNumber())
	assert.ErrorIs(t, rec.EraseAt(rec.Len()), ErrInvalidMutation)
}

func TestDeleteFieldsUsesSnapshotIndices(t *testing.T) {
	rec := newArticleRecord(t)
	before := tagsOf(rec)

	// indices from one snapshot, unordered and with a duplicate
	idx022 := rec.FindTag("022")
	idx100 := rec.FindTag("100")
	idx856 := rec.FindTag("856")
	require.NoError(t, rec.DeleteFields([]int{idx100, idx856, idx022, idx100}))

	want := make([]string, 0)
	for i, tag := range before {
		if i != idx022 && i != idx100 && i != idx856 {
			want = append(want, tag)
		}
	}
	assert.Equal(t, want, tagsOf(rec))

	size := rec.Len()
	assert.ErrorIs(t, rec.DeleteFields([]int{0, size}), ErrInvalidMutation)
	assert.ErrorIs(t, rec.DeleteFields([]int{-1}), ErrInvalidMutation)
	assert.Equal(t, size, rec.Len(), "failed batch must not delete anything")
	assert.NoError(t, rec.DeleteFields(nil))
}

func TestFilterFields(t *testing.T) {
	rec := newArticleRecord(t)
	removed := rec.FilterFields(func(f *Field) bool { return f.IsControlField() })
	assert.Equal(t, []string{"001", "005", "007"}, tagsOf(rec))
	assert.Equal(t, 9, removed)
}

func TestReTag(t *testing.T) {
	rec := NewRecord('a', 'm', "PPN1")
	require.NoError(t, rec.InsertDataField("260", ' ', ' ', Subfield{'a', "Berlin"}))
	require.NoError(t, rec.InsertDataField("500", ' ', ' ', Subfield{'a', "note"}))

	n, err := rec.ReTag("260", "264")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"001", "264", "500"}, tagsOf(rec))

	_, err = rec.ReTag("264", "2640")
	assert.ErrorIs(t, err, ErrInvalidMutation)
}

func TestReplaceFieldAndSort(t *testing.T) {
	rec := NewRecord('a', 'm', "PPN1")
	require.NoError(t, rec.InsertFieldAtEnd(NewDataField("700", ' ', ' ', Subfield{'a', "x"})))
	require.NoError(t, rec.InsertFieldAtEnd(NewDataField("100", ' ', ' ', Subfield{'a', "y"})))
	rec.SortFields()
	assert.Equal(t, []string{"001", "100", "700"}, tagsOf(rec))

	require.NoError(t, rec.ReplaceField(1, NewDataField("110", '2', ' ', Subfield{'a', "Corp"})))
	assert.Equal(t, "Corp", rec.FirstSubfieldValue("110", 'a'))
	assert.ErrorIs(t, rec.ReplaceField(9, NewDataField("110", ' ', ' ')), ErrInvalidMutation)
}

func TestDuplicatePolicies(t *testing.T) {
	reject := NewRecordWithPolicy('a', 'm', "PPN1", NewPolicy(nil, []string{"001", "245"}, DuplicatesReject))
	require.NoError(t, reject.InsertDataField("245", '0', '0', Subfield{'a', "One"}))
	assert.ErrorIs(t, reject.InsertDataField("245", '0', '0', Subfield{'a', "Two"}), ErrInvalidMutation)
	assert.ErrorIs(t, reject.InsertControlField("001", "PPN2"), ErrInvalidMutation)
	require.NoError(t, reject.InsertDataField("700", ' ', ' ', Subfield{'a', "a"}))
	require.NoError(t, reject.InsertDataField("700", ' ', ' ', Subfield{'a', "b"}))

	merge := NewRecordWithPolicy('a', 'm', "PPN1", NewPolicy(nil, []string{"001", "773"}, DuplicatesMerge))
	require.NoError(t, merge.InsertDataField("773", '0', '8', Subfield{'w', "(DE-627)1"}))
	require.NoError(t, merge.InsertDataField("773", '0', '8', Subfield{'w', "(DE-627)1"}, Subfield{'g', "12 (2020)"}))
	assert.Len(t, merge.FieldsWithTag("773"), 1)
	assert.Equal(t, Subfields{{'w', "(DE-627)1"}, {'g', "12 (2020)"}}, merge.FirstField("773").Subfields())
	require.NoError(t, merge.InsertControlField("001", "PPN2"))
	assert.Equal(t, "PPN2", merge.ControlNumber())

	allow := NewRecord('a', 'm', "PPN1")
	require.NoError(t, allow.InsertControlField("001", "PPN2"))
	assert.Len(t, allow.FieldsWithTag("001"), 2)
	assert.Equal(t, "PPN1", allow.ControlNumber())

	check := NewPolicy(nil, []string{"001"}, DuplicatesAllow)
	assert.Error(t, check.Check(allow))
	assert.NoError(t, check.Check(merge))
}

func TestCloneAndEqual(t *testing.T) {
	rec := newArticleRecord(t)
	c := rec.Clone()
	assert.True(t, rec.Equal(c))

	c.FirstField("245").InsertOrReplaceSubfield('a', "Other")
	assert.False(t, rec.Equal(c))
	assert.Equal(t, "Theologie heute", rec.MainTitle())

	d := rec.Clone()
	d.Leader().Status = 'c'
	assert.False(t, rec.Equal(d))
}

func TestTags(t *testing.T) {
	rec := newArticleRecord(t)
	assert.Equal(t, []string{"001", "005", "007", "022", "024", "100", "245", "700", "773", "856", "935"}, rec.Tags())
}

func TestReTagKeepsKindConsistent(t *testing.T) {
	rec := NewRecord('a', 'm', "PPN1")
	require.NoError(t, rec.InsertDataField("500", ' ', ' ', Subfield{'a', "note"}))
	require.NoError(t, rec.InsertDataField("500", ' ', ' ', Subfield{'a', "other"}))

	_, err := rec.ReTag("500", "005")
	assert.ErrorIs(t, err, ErrInvalidMutation)
	_, err = rec.ReTag("001", "035")
	assert.ErrorIs(t, err, ErrInvalidMutation)
	assert.Equal(t, []string{"001", "500", "500"}, tagsOf(rec))
	assert.Equal(t, "PPN1", rec.ControlNumber())

	local := NewRecordWithPolicy('a', 'm', "PPN1", NewPolicy([]string{"ZID"}, nil, DuplicatesAllow))
	n, err := local.ReTag("001", "ZID")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	again, err := Codec{Policy: local.Policy()}.Decode(mustEncode(t, local))
	require.NoError(t, err)
	assert.True(t, local.Equal(again))
}

func TestReplaceFieldChecksKind(t *testing.T) {
	rec := newTitleRecord(t, "PPN1", "Title")
	assert.ErrorIs(t, rec.ReplaceField(0, NewDataField("001", ' ', ' ')), ErrInvalidMutation)
	assert.ErrorIs(t, rec.ReplaceField(1, NewControlField("245", "x")), ErrInvalidMutation)
	require.NoError(t, rec.ReplaceField(0, NewControlField("001", "PPN2")))
	assert.Equal(t, "PPN2", rec.ControlNumber())
}

func TestNilRecordLookups(t *testing.T) {
	var rec *Record
	assert.Equal(t, -1, rec.FindTag("245"))
	assert.False(t, rec.HasTag("245"))
	assert.Nil(t, rec.FirstField("245"))
	assert.Nil(t, rec.Field(0))
	assert.Empty(t, rec.Fields())
	assert.Empty(t, rec.Tags())
	assert.Empty(t, rec.FieldsWithTag("245"))
	assert.Empty(t, rec.SubfieldValues("245", "a"))
	assert.Equal(t, "", rec.FirstSubfieldValue("245", 'a'))
	for range rec.TagRange("245") {
		t.Fatal("nil record yielded a field")
	}
}

//
// end of file
//
