package marc

import (
	"fmt"
	"sort"
	"strings"
)

// DuplicatePolicy decides what InsertField does with a second occurrence of
// a non-repeatable tag.
type DuplicatePolicy int

const (
	DuplicatesAllow DuplicatePolicy = iota
	DuplicatesReject
	DuplicatesMerge
)

func (d DuplicatePolicy) String() string {
	switch d {
	case DuplicatesReject:
		return "reject"
	case DuplicatesMerge:
		return "merge"
	default:
		return "allow"
	}
}

// ParseDuplicatePolicy accepts "allow", "reject" or "merge" (any case).
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "allow":
		return DuplicatesAllow, nil
	case "reject":
		return DuplicatesReject, nil
	case "merge":
		return DuplicatesMerge, nil
	}
	return DuplicatesAllow, fmt.Errorf("unknown duplicate policy %q", s)
}

// Policy holds the conventions that MARC leaves to the cataloguing agency:
// which tags are control fields and which tags may repeat.
type Policy struct {
	// tags sorting below this are control fields
	DataTagThreshold string
	// locally defined tags treated as control fields regardless of the threshold
	ControlTags   map[string]bool
	NonRepeatable map[string]bool
	Duplicates    DuplicatePolicy
}

// DefaultPolicy treats "001" to "009" as control fields and enforces nothing.
var DefaultPolicy = &Policy{
	DataTagThreshold: "010",
	ControlTags:      map[string]bool{},
	NonRepeatable:    map[string]bool{},
	Duplicates:       DuplicatesAllow,
}

// NewPolicy returns a policy with the given local control tags and
// non-repeatable tags and the default threshold.
func NewPolicy(controlTags []string, nonRepeatable []string, duplicates DuplicatePolicy) *Policy {
	p := &Policy{
		DataTagThreshold: "010",
		ControlTags:      make(map[string]bool, len(controlTags)),
		NonRepeatable:    make(map[string]bool, len(nonRepeatable)),
		Duplicates:       duplicates,
	}
	for _, t := range controlTags {
		p.ControlTags[t] = true
	}
	for _, t := range nonRepeatable {
		p.NonRepeatable[t] = true
	}
	return p
}

// IsControlField reports whether tag is a control field under the default
// policy.
func IsControlField(tag string) bool {
	return DefaultPolicy.IsControlField(tag)
}

// IsControlField reports whether fields with tag carry raw data rather than
// indicators and subfields.
func (p *Policy) IsControlField(tag string) bool {
	if p == nil {
		p = DefaultPolicy
	}
	if p.ControlTags[tag] {
		return true
	}
	threshold := p.DataTagThreshold
	if threshold == "" {
		threshold = "010"
	}
	return tag < threshold
}

// IsRepeatable reports whether tag may occur more than once.
func (p *Policy) IsRepeatable(tag string) bool {
	if p == nil {
		return true
	}
	return !p.NonRepeatable[tag]
}

// Check lists every non-repeatable tag that occurs more than once in r. The
// record is not modified.
func (p *Policy) Check(r *Record) error {
	if p == nil || r == nil || len(p.NonRepeatable) == 0 {
		return nil
	}
	counts := make(map[string]int)
	for i := range r.fields {
		counts[r.fields[i].tag]++
	}
	dups := make([]string, 0)
	for tag, n := range counts {
		if n > 1 && p.NonRepeatable[tag] {
			dups = append(dups, fmt.Sprintf("%s (x%d)", tag, n))
		}
	}
	if len(dups) == 0 {
		return nil
	}
	sort.Strings(dups)
	return fmt.Errorf("record %q repeats non-repeatable tags: %s", r.ControlNumber(), strings.Join(dups, ", "))
}

//
// end of file
//
