package marc

import (
	"strings"
)

// prefix of K10plus union catalogue control numbers in linking fields
const superiorPrefix = "(DE-627)"

var authorTags = []string{"100", "109", "700"}
var superiorTags = []string{"773", "800", "810", "830"}

var doiURLPrefixes = []string{
	"https://doi.org/",
	"http://doi.org/",
	"https://dx.doi.org/",
	"http://dx.doi.org/",
}

// ElectronicLocation is one 856 link (or local URL field).
type ElectronicLocation struct {
	Address   string
	Materials string // $3
}

// MainTitle returns 245 $a without trailing ISBD punctuation.
func (r *Record) MainTitle() string {
	return trimISBD(r.FirstSubfieldValue("245", 'a'))
}

// CompleteTitle joins 245 $a and $b.
func (r *Record) CompleteTitle() string {
	f := r.FirstField("245")
	if f == nil {
		return ""
	}
	title := trimISBD(f.FirstSubfieldValue('a'))
	if sub := trimISBD(f.FirstSubfieldValue('b')); sub != "" {
		if title == "" {
			return sub
		}
		title += " : " + sub
	}
	return title
}

// AllAuthors returns the distinct $a values of the author tags in record
// order.
func (r *Record) AllAuthors() []string {
	authors := make([]string, 0)
	seen := make(map[string]bool)
	for i := range r.fields {
		f := &r.fields[i]
		if !contains(authorTags, f.tag) {
			continue
		}
		for _, a := range f.subfields.Values("a") {
			if !seen[a] {
				seen[a] = true
				authors = append(authors, a)
			}
		}
	}
	return authors
}

// ISSNs returns 022 $a and 029 $a.
func (r *Record) ISSNs() []string {
	return distinct(append(r.SubfieldValues("022", "a"), r.SubfieldValues("029", "a")...))
}

// SuperiorISSNs returns the ISSNs of the host item (773 $x).
func (r *Record) SuperiorISSNs() []string {
	return distinct(r.SubfieldValues("773", "x"))
}

// ISBNs returns 020 $a.
func (r *Record) ISBNs() []string {
	return distinct(r.SubfieldValues("020", "a"))
}

// DOIs collects DOIs from 024 (ind1 '7', $2 doi), the local DOI field and
// doi.org links in 856 $u.
func (r *Record) DOIs() []string {
	dois := make([]string, 0)
	for f := range r.TagRange("024") {
		if f.ind1 == '7' && f.subfields.HasValue('2', "doi", true) {
			dois = append(dois, f.subfields.Values("a")...)
		}
	}
	dois = append(dois, r.SubfieldValues("DOI", "a")...)
	for _, u := range r.SubfieldValues("856", "u") {
		for _, prefix := range doiURLPrefixes {
			if strings.HasPrefix(strings.ToLower(u), prefix) {
				dois = append(dois, u[len(prefix):])
				break
			}
		}
	}
	return distinct(dois)
}

// SuperiorControlNumber returns the control number of the parent record from
// the first linking field carrying a "(DE-627)" $w, or "".
func (r *Record) SuperiorControlNumber() string {
	for _, tag := range superiorTags {
		for f := range r.TagRange(tag) {
			for _, w := range f.subfields.Values("w") {
				if strings.HasPrefix(w, superiorPrefix) {
					return w[len(superiorPrefix):]
				}
			}
		}
	}
	return ""
}

// ElectronicLocations returns 856 $u links with their $3 label plus the
// local URL field.
func (r *Record) ElectronicLocations() []ElectronicLocation {
	locs := make([]ElectronicLocation, 0)
	for f := range r.TagRange("856") {
		materials := f.FirstSubfieldValue('3')
		for _, u := range f.subfields.Values("u") {
			locs = append(locs, ElectronicLocation{Address: u, Materials: materials})
		}
	}
	for f := range r.TagRange("URL") {
		if u := f.FirstSubfieldValue('a'); u != "" {
			locs = append(locs, ElectronicLocation{Address: u})
		}
	}
	return locs
}

// ResourceTypeMarkers returns the 935 $c values.
func (r *Record) ResourceTypeMarkers() []string {
	return r.SubfieldValues("935", "c")
}

func (r *Record) IsSerial() bool {
	return r.leader.BibliographicLevel == 's'
}

// IsArticle is true for component parts (monographic or serial).
func (r *Record) IsArticle() bool {
	return r.leader.BibliographicLevel == 'a' || r.leader.BibliographicLevel == 'b'
}

func (r *Record) IsMonograph() bool {
	return r.leader.BibliographicLevel == 'm'
}

// IsElectronicResource checks the leader type, 007, 245 $h, 300 $a and
// 338 $b for the usual online markers.
func (r *Record) IsElectronicResource() bool {
	if r.leader.Type == 'm' {
		return true
	}
	for f := range r.TagRange("007") {
		if strings.HasPrefix(f.contents, "c") {
			return true
		}
	}
	for _, h := range r.SubfieldValues("245", "h") {
		lower := strings.ToLower(h)
		if strings.Contains(lower, "electronic resource") || strings.Contains(lower, "elektronische ressource") {
			return true
		}
	}
	for _, a := range r.SubfieldValues("300", "a") {
		if strings.Contains(strings.ToLower(a), "online-ressource") {
			return true
		}
	}
	for f := range r.TagRange("338") {
		if f.subfields.HasValue('b', "cr", false) {
			return true
		}
	}
	return false
}

// IsReview is true when a 655 genre term or a 935 $c marker flags the
// record as a review.
func (r *Record) IsReview() bool {
	for f := range r.TagRange("655") {
		if f.subfields.HasValue('a', "Rezension", true) {
			return true
		}
	}
	for _, c := range r.ResourceTypeMarkers() {
		if c == "uwre" {
			return true
		}
	}
	return false
}

func trimISBD(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), " /:;,=.")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func distinct(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

//
// end of file
//
