// Package lookup matches reservation contacts against a previously
// imported contact list so reservations can reuse real emails and phone
// numbers instead of placeholders.
package lookup

import (
	"strconv"
	"strings"

	"github.com/moovs/dataprep/internal/phone"
	"github.com/moovs/dataprep/internal/placeholder"
	"github.com/moovs/dataprep/internal/schema"
)

// MatchType says which index produced a match.
type MatchType string

const (
	MatchEmail MatchType = "email"
	MatchName  MatchType = "name"
	MatchNone  MatchType = "none"
)

// Confidence grades the strength of a match: high for email, medium for
// a unique name match, low for a disambiguated one.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Match is the outcome of one lookup.
type Match struct {
	Type       MatchType  `json:"matchType"`
	Confidence Confidence `json:"confidence"`
	Email      string     `json:"email,omitempty"`
	Phone      string     `json:"mobilePhone,omitempty"`
}

// Stats counts lookup outcomes across one processing run.
type Stats struct {
	EmailMatches  int `json:"emailMatches"`
	NameMatches   int `json:"nameMatches"`
	NoMatches     int `json:"noMatches"`
	TotalContacts int `json:"totalContacts"`
	TotalLookups  int `json:"totalLookups"`
}

// Index holds the email and name indexes over prior contacts. It is a
// single-owner object scoped to one run and rebuilt from scratch each
// run.
type Index struct {
	contacts   []schema.ContactRef
	byEmail    map[string]schema.ContactRef
	byName     map[string][]schema.ContactRef
	highestSeq int64
	stats      Stats
}

// NewIndex builds the lookup indexes. Placeholder emails never index;
// they carry no identity. basePhone, when set, enables the sequential
// placeholder scan used to continue numbering across runs.
func NewIndex(contacts []schema.ContactRef, basePhone string) *Index {
	idx := &Index{
		contacts: contacts,
		byEmail:  make(map[string]schema.ContactRef),
		byName:   make(map[string][]schema.ContactRef),
	}
	for _, c := range contacts {
		if email := normalizeEmail(c.Email); email != "" && !placeholder.IsPlaceholderEmail(email) {
			if _, ok := idx.byEmail[email]; !ok {
				idx.byEmail[email] = c
			}
		}
		if key := nameKey(c.FirstName, c.LastName); key != "" {
			idx.byName[key] = append(idx.byName[key], c)
		}
	}
	if basePhone != "" {
		idx.scanPlaceholderRange(basePhone)
	}
	idx.stats.TotalContacts = len(contacts)
	return idx
}

// scanPlaceholderRange records the highest phone in the base
// placeholder's sequential range, so a later run can continue numbering
// past placeholders already assigned.
func (idx *Index) scanPlaceholderRange(basePhone string) {
	baseDigits := phone.Digits(basePhone)
	if len(baseDigits) < 3 {
		return
	}
	prefix := baseDigits[:len(baseDigits)-2]
	max, err := strconv.ParseInt(baseDigits, 10, 64)
	if err != nil {
		return
	}
	for _, c := range idx.contacts {
		digits := phone.Digits(c.PhoneNumber)
		if !strings.HasPrefix(digits, prefix) {
			continue
		}
		if n, err := strconv.ParseInt(digits, 10, 64); err == nil && n > max {
			max = n
		}
	}
	idx.highestSeq = max
}

// NextSequentialStart returns one past the highest placeholder phone
// found during construction, or 0 when no scan ran. Callers pass it to
// the allocator's ContinueFrom.
func (idx *Index) NextSequentialStart() int64 {
	if idx.highestSeq == 0 {
		return 0
	}
	return idx.highestSeq + 1
}

// Find looks up a contact by email first, then by name. A name key with
// several candidates prefers one whose phone is not placeholder-shaped.
func (idx *Index) Find(firstName, lastName, email string) Match {
	if e := normalizeEmail(email); e != "" && !placeholder.IsPlaceholderEmail(e) {
		if c, ok := idx.byEmail[e]; ok {
			idx.stats.EmailMatches++
			return Match{Type: MatchEmail, Confidence: ConfidenceHigh, Email: c.Email, Phone: c.PhoneNumber}
		}
	}

	if key := nameKey(firstName, lastName); key != "" {
		if candidates := idx.byName[key]; len(candidates) > 0 {
			best := candidates[0]
			for _, c := range candidates {
				if c.PhoneNumber != "" && !placeholder.IsPlaceholderShapedPhone(c.PhoneNumber) {
					best = c
					break
				}
			}
			conf := ConfidenceLow
			if len(candidates) == 1 {
				conf = ConfidenceMedium
			}
			idx.stats.NameMatches++
			return Match{Type: MatchName, Confidence: conf, Email: best.Email, Phone: best.PhoneNumber}
		}
	}

	idx.stats.NoMatches++
	return Match{Type: MatchNone, Confidence: ConfidenceLow}
}

// Stats returns the match counters accumulated so far.
func (idx *Index) Stats() Stats {
	s := idx.stats
	s.TotalLookups = s.EmailMatches + s.NameMatches + s.NoMatches
	return s
}

// ParseContacts extracts lookup-worthy contacts from a previously
// exported contact file: rows with both names and at least one of email
// or phone.
func ParseContacts(records []schema.Record) []schema.ContactRef {
	var out []schema.ContactRef
	for _, r := range records {
		if !r.Has("firstName") || !r.Has("lastName") {
			continue
		}
		if !r.Has("email") && !r.Has("mobilePhone") {
			continue
		}
		out = append(out, schema.ContactRef{
			FirstName:   r.Get("firstName"),
			LastName:    r.Get("lastName"),
			Email:       r.Get("email"),
			PhoneNumber: r.Get("mobilePhone"),
		})
	}
	return out
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// nameKey is lowercased letters only, both parts required.
func nameKey(first, last string) string {
	f := lettersOnly(first)
	l := lettersOnly(last)
	if f == "" || l == "" {
		return ""
	}
	return f + "|" + l
}

func lettersOnly(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
