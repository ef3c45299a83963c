package marc

import (
	"strconv"
)

// record structure constants
const (
	LeaderLength          = 24
	DirectoryEntryLength  = 12
	FieldTerminator       = byte(0x1e)
	RecordTerminator      = byte(0x1d)
	SubfieldDelimiter     = byte(0x1f)
	MaxRecordLength       = 99999
	MaxFieldLength        = 9999
	recordLengthDigits    = 5
	baseAddressDigits     = 5
	canonicalLengthDigits = 4
	canonicalStartDigits  = 5
)

// Leader is the fixed 24 byte record header.
//
// RecordLength and BaseAddress describe the bytes a record was decoded from;
// the encoder recomputes both and never reads them.
type Leader struct {
	RecordLength       int
	Status             byte // 05
	Type               byte // 06
	BibliographicLevel byte // 07
	ControlType        byte // 08
	CharacterCoding    byte // 09
	IndicatorCount     byte // 10
	SubfieldCodeLength byte // 11
	BaseAddress        int
	EncodingLevel      byte // 17
	CatalogingForm     byte // 18
	MultipartLevel     byte // 19
	EntryMap           [4]byte
}

// NewLeader returns a leader for a new record of the given type and
// bibliographic level, UTF-8 encoded.
func NewLeader(recordType byte, bibLevel byte) Leader {
	return Leader{
		Status:             'n',
		Type:               recordType,
		BibliographicLevel: bibLevel,
		ControlType:        ' ',
		CharacterCoding:    'a',
		IndicatorCount:     '2',
		SubfieldCodeLength: '2',
		EncodingLevel:      ' ',
		CatalogingForm:     ' ',
		MultipartLevel:     ' ',
		EntryMap:           [4]byte{'4', '5', '0', '0'},
	}
}

// DecodeLeader parses the first 24 bytes of buf. available is the number of
// bytes of the record actually present, including the record terminator, and
// must agree with the declared record length.
func DecodeLeader(buf []byte, available int) (Leader, error) {
	var l Leader
	if len(buf) < LeaderLength {
		return l, malformed(len(buf), stateLeader, "truncated leader (%d bytes)", len(buf))
	}

	length, ok := parseDigits(buf[0:5])
	if !ok {
		return l, malformed(0, stateLeader, "record length not numeric (%q)", buf[0:5])
	}
	base, ok := parseDigits(buf[12:17])
	if !ok {
		return l, malformed(12, stateLeader, "base address not numeric (%q)", buf[12:17])
	}
	if base < LeaderLength+1 {
		return l, malformed(12, stateLeader, "base address %d inside the leader", base)
	}
	if length != available {
		return l, malformed(0, stateLeader, "record length %d but %d bytes available", length, available)
	}
	if base > length {
		return l, malformed(12, stateLeader, "base address %d beyond record length %d", base, length)
	}

	l.RecordLength = length
	l.Status = buf[5]
	l.Type = buf[6]
	l.BibliographicLevel = buf[7]
	l.ControlType = buf[8]
	l.CharacterCoding = buf[9]
	l.IndicatorCount = buf[10]
	l.SubfieldCodeLength = buf[11]
	l.BaseAddress = base
	l.EncodingLevel = buf[17]
	l.CatalogingForm = buf[18]
	l.MultipartLevel = buf[19]
	copy(l.EntryMap[:], buf[20:24])
	return l, nil
}

// directoryWidths returns the field length and start offset widths declared
// by the entry map, falling back to 4/5 when the map is not numeric.
func (l Leader) directoryWidths() (int, int, int) {
	lengthDigits := int(l.EntryMap[0] - '0')
	startDigits := int(l.EntryMap[1] - '0')
	implDigits := int(l.EntryMap[2] - '0')
	if !isDigit(l.EntryMap[0]) || !isDigit(l.EntryMap[1]) || lengthDigits == 0 || startDigits == 0 {
		return canonicalLengthDigits, canonicalStartDigits, 0
	}
	if !isDigit(l.EntryMap[2]) {
		implDigits = 0
	}
	return lengthDigits, startDigits, implDigits
}

// appendTo writes the canonical 24 byte form with the given record length
// and base address.
func (l Leader) appendTo(buf []byte, recordLength int, baseAddress int) []byte {
	buf = appendPadded(buf, recordLength, recordLengthDigits)
	buf = append(buf,
		orBlank(l.Status, 'n'),
		orBlank(l.Type, ' '),
		orBlank(l.BibliographicLevel, ' '),
		orBlank(l.ControlType, ' '),
		orBlank(l.CharacterCoding, ' '),
		orBlank(l.IndicatorCount, '2'),
		orBlank(l.SubfieldCodeLength, '2'))
	buf = appendPadded(buf, baseAddress, baseAddressDigits)
	buf = append(buf,
		orBlank(l.EncodingLevel, ' '),
		orBlank(l.CatalogingForm, ' '),
		orBlank(l.MultipartLevel, ' '),
		'4', '5', '0', orBlank(l.EntryMap[3], '0'))
	return buf
}

// String renders the leader as it would be encoded.
func (l Leader) String() string {
	return string(l.appendTo(make([]byte, 0, LeaderLength), l.RecordLength, l.BaseAddress))
}

// equivalent compares everything the encoder writes except the computed
// lengths.
func (l Leader) equivalent(o Leader) bool {
	a := l.appendTo(nil, 0, 0)
	b := o.appendTo(nil, 0, 0)
	return string(a) == string(b)
}

// ParseLeader builds a leader from its 24 character text form, as carried in
// MARCXML and MARC-in-JSON. Length fields that are not numeric are left zero.
func ParseLeader(s string) (Leader, error) {
	if len(s) != LeaderLength {
		return Leader{}, malformed(len(s), stateLeader, "leader must be %d characters, got %d", LeaderLength, len(s))
	}
	buf := []byte(s)
	l := Leader{
		Status:             buf[5],
		Type:               buf[6],
		BibliographicLevel: buf[7],
		ControlType:        buf[8],
		CharacterCoding:    buf[9],
		IndicatorCount:     buf[10],
		SubfieldCodeLength: buf[11],
		EncodingLevel:      buf[17],
		CatalogingForm:     buf[18],
		MultipartLevel:     buf[19],
	}
	copy(l.EntryMap[:], buf[20:24])
	l.RecordLength, _ = parseDigits(buf[0:5])
	l.BaseAddress, _ = parseDigits(buf[12:17])
	return l, nil
}

func orBlank(b byte, def byte) byte {
	if b == 0 {
		return def
	}
	return b
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func parseDigits(buf []byte) (int, bool) {
	if len(buf) == 0 {
		return 0, false
	}
	for _, b := range buf {
		if !isDigit(b) {
			return 0, false
		}
	}
	n, err := strconv.Atoi(string(buf))
	return n, err == nil
}

// appendPadded writes n as a zero padded decimal of exactly width digits. The
// caller has already checked that n fits.
func appendPadded(buf []byte, n int, width int) []byte {
	s := strconv.Itoa(n)
	for i := len(s); i < width; i++ {
		buf = append(buf, '0')
	}
	return append(buf, s...)
}

//
// end of file
//
