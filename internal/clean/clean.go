// Package clean repairs common corruptions in mapped source records:
// shifted columns, combined names, joiner junk, event and business
// entries, phone fallbacks, multi-value emails, and misaligned address
// components. Each cleaner is a pure function over one record; they run
// in a fixed order because later cleaners assume earlier repairs.
package clean

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/moovs/dataprep/internal/phone"
	"github.com/moovs/dataprep/internal/placeholder"
	"github.com/moovs/dataprep/internal/schema"
)

// BusinessFlag is the scratch field set when a record is classified as a
// business or event entry. Flagged records are dropped by the
// post-filter.
const BusinessFlag = "_businessEntry"

// Step is one named cleaner in the chain. Fn returns the possibly
// modified record and human-readable warnings describing what changed.
type Step struct {
	Name string
	Fn   func(schema.Record) (schema.Record, []string)
}

// Chain returns the full cleaner chain in its required order. The
// allocator supplies placeholder phones for the fallback step.
func Chain(alloc *placeholder.Allocator) []Step {
	return []Step{
		{Name: "column-shift", Fn: RecoverColumnShift},
		{Name: "name-decorations", Fn: StripNameDecorations},
		{Name: "name-split", Fn: SplitCombinedNames},
		{Name: "lastname-junk", Fn: TrimLastNameJunk},
		{Name: "event-entry", Fn: DetectEventEntry},
		{Name: "business-entry", Fn: DetectBusinessEntry},
		{Name: "phone-fallback", Fn: PhoneFallback(alloc)},
		{Name: "first-email", Fn: FirstEmail},
		{Name: "address-rebuild", Fn: RebuildAddress},
		{Name: "scratch-purge", Fn: PurgeScratch},
	}
}

// Apply folds the record through the steps, collecting warnings.
func Apply(rec schema.Record, steps []Step) (schema.Record, []string) {
	var warnings []string
	for _, s := range steps {
		var w []string
		rec, w = s.Fn(rec)
		warnings = append(warnings, w...)
	}
	return rec, warnings
}

// PreFilter reports whether a raw record is worth cleaning at all: it
// must carry at least one name component.
func PreFilter(rec schema.Record) bool {
	return rec.Has("firstName") || rec.Has("lastName")
}

// PostFilter reports whether a cleaned record survives: it still has a
// name and was not flagged as a business or event entry. Read before the
// scratch purge removes the flag.
func PostFilter(rec schema.Record) bool {
	if !rec.Has("firstName") && !rec.Has("lastName") {
		return false
	}
	return rec.Get(BusinessFlag) != "true"
}

var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// LooksLikeEmail reports whether the value is email-shaped.
func LooksLikeEmail(v string) bool {
	return emailShape.MatchString(strings.TrimSpace(v))
}

var zipShape = regexp.MustCompile(`^\d{5}$`)

// RecoverColumnShift repairs rows where an unescaped delimiter pushed
// every later column over by one. Two observable symptoms: a phone in
// the email slot, or a ZIP in the phone slot. In both cases the real
// value is usually sitting in a neighboring field.
func RecoverColumnShift(rec schema.Record) (schema.Record, []string) {
	var warnings []string
	email := rec.Get("email")
	if email != "" && !LooksLikeEmail(email) && phone.LooksLikePhone(email) {
		out := rec.Clone()
		if found, field := findValue(rec, "email", LooksLikeEmail); found != "" {
			out["email"] = found
			out[field] = ""
			warnings = append(warnings, fmt.Sprintf("Shifted columns: recovered email %q from %s", found, field))
		} else {
			out["email"] = ""
			warnings = append(warnings, "Shifted columns: email slot held a phone number, no email found in row")
		}
		if !out.Has("mobilePhone") {
			out["mobilePhone"] = email
		}
		rec = out
	}
	if p := rec.Get("mobilePhone"); zipShape.MatchString(p) {
		out := rec.Clone()
		if found, field := findValue(rec, "mobilePhone", phone.LooksLikePhone); found != "" {
			out["mobilePhone"] = found
			out[field] = ""
			warnings = append(warnings, fmt.Sprintf("Shifted columns: recovered phone from %s, discarded ZIP %q", field, p))
		} else {
			out["mobilePhone"] = ""
			warnings = append(warnings, fmt.Sprintf("Phone slot held ZIP-shaped value %q, discarded", p))
		}
		rec = out
	}
	return rec, warnings
}

// findValue returns the first field (in a stable scan order) other than
// skip whose value satisfies pred.
func findValue(rec schema.Record, skip string, pred func(string) bool) (value, field string) {
	for _, f := range []string{
		"firstName", "lastName", "mobilePhone", "email", "homeAddress", "workAddress",
		"_homePhone", "_officePhone", "_street", "_city", "_state", "_zip", "_country", "_companyName",
	} {
		if f == skip {
			continue
		}
		if v := rec.Get(f); v != "" && pred(v) {
			return v, f
		}
	}
	return "", ""
}

var (
	trailingPipe   = regexp.MustCompile(`\s*\|.*$`)
	trailingParen  = regexp.MustCompile(`\s*\([^)]*\)\s*$`)
	leadingJoiners = regexp.MustCompile(`^[(&\-\s]+`)
	trailingClose  = regexp.MustCompile(`\)+$`)
	andSplit       = regexp.MustCompile(`(?i)\s+and\s+`)
	joinerStart    = regexp.MustCompile(`^[&\-(]`)
)

// StripNameDecorations removes trailing "| ..." suffixes and trailing
// parenthetical annotations from both name fields.
func StripNameDecorations(rec schema.Record) (schema.Record, []string) {
	var warnings []string
	out := rec
	for _, f := range []string{"firstName", "lastName"} {
		v := rec.Get(f)
		cleaned := strings.TrimSpace(trailingParen.ReplaceAllString(trailingPipe.ReplaceAllString(v, ""), ""))
		if cleaned != v && cleaned != "" {
			if out.Get(f) == rec.Get(f) {
				out = out.Clone()
			}
			out[f] = cleaned
			warnings = append(warnings, fmt.Sprintf("Stripped annotation from %s: %q -> %q", f, v, cleaned))
		}
	}
	return out, warnings
}

// SplitCombinedNames handles two patterns: "Alice and Bob" in the first
// name (keep the first person), and a full name jammed into the first
// name with the last name empty or starting with a joiner.
func SplitCombinedNames(rec schema.Record) (schema.Record, []string) {
	var warnings []string
	first := rec.Get("firstName")
	last := rec.Get("lastName")

	if loc := andSplit.FindStringIndex(first); loc != nil {
		kept := strings.TrimSpace(first[:loc[0]])
		if kept != "" {
			rec = rec.Clone()
			rec["firstName"] = kept
			warnings = append(warnings, fmt.Sprintf("Multiple people in name %q, kept %q", first, kept))
			first = kept
		}
	}

	if strings.Contains(first, " ") && (last == "" || joinerStart.MatchString(last)) {
		parts := strings.Fields(first)
		if len(parts) >= 2 {
			rec = rec.Clone()
			rec["firstName"] = parts[0]
			rec["lastName"] = strings.Join(parts[1:], " ")
			warnings = append(warnings, fmt.Sprintf("Split full name %q into %q / %q", first, parts[0], rec["lastName"]))
		}
	}
	return rec, warnings
}

// TrimLastNameJunk strips leading joiner runs and trailing close-parens
// from the last name.
func TrimLastNameJunk(rec schema.Record) (schema.Record, []string) {
	last := rec.Get("lastName")
	cleaned := strings.TrimSpace(trailingClose.ReplaceAllString(leadingJoiners.ReplaceAllString(last, ""), ""))
	if cleaned == last || cleaned == "" {
		return rec, nil
	}
	out := rec.Clone()
	out["lastName"] = cleaned
	return out, []string{fmt.Sprintf("Cleaned last name %q to %q", last, cleaned)}
}

var singleToken = regexp.MustCompile(`^[A-Za-z'\-]+$`)

// DetectEventEntry handles last names carrying wedding/event vocabulary.
// When the text before the keyword is a single clean token it is kept as
// the last name; otherwise the record is flagged as a non-person entry.
func DetectEventEntry(rec schema.Record) (schema.Record, []string) {
	last := rec.Get("lastName")
	lower := strings.ToLower(last)
	for _, kw := range eventKeywords {
		i := strings.Index(lower, kw)
		if i < 0 {
			continue
		}
		before := strings.Trim(strings.TrimSpace(last[:i]), "(&- ")
		out := rec.Clone()
		if before != "" && singleToken.MatchString(before) {
			out["lastName"] = before
			return out, []string{fmt.Sprintf("Event entry %q reduced to last name %q", last, before)}
		}
		out[BusinessFlag] = "true"
		return out, []string{fmt.Sprintf("Event entry detected in last name %q", last)}
	}
	return rec, nil
}

// DetectBusinessEntry flags records whose names are organizational roles
// or VIP/test placeholder phrasing rather than people.
func DetectBusinessEntry(rec schema.Record) (schema.Record, []string) {
	first := rec.Get("firstName")
	last := rec.Get("lastName")
	flag := false
	if _, ok := nonPersonNames[strings.ToLower(first)]; ok {
		flag = true
	}
	if _, ok := nonPersonNames[strings.ToLower(last)]; ok {
		flag = true
	}
	if placeholderNamePattern.MatchString(first) {
		flag = true
	}
	if !flag {
		return rec, nil
	}
	out := rec.Clone()
	out[BusinessFlag] = "true"
	return out, []string{fmt.Sprintf("%q %q looks like a business/accounting entry, not a person", first, last)}
}

// PhoneFallback fills an empty mobile phone from the captured home then
// office numbers, finally allocating a placeholder. The chosen value is
// normalized when possible; an unformattable value is kept raw for the
// validator to flag.
func PhoneFallback(alloc *placeholder.Allocator) func(schema.Record) (schema.Record, []string) {
	return func(rec schema.Record) (schema.Record, []string) {
		var warnings []string
		mobile := rec.Get("mobilePhone")
		if mobile == "" {
			out := rec.Clone()
			switch {
			case rec.Has("_homePhone"):
				mobile = rec.Get("_homePhone")
				warnings = append(warnings, "No cell phone, using home phone")
			case rec.Has("_officePhone"):
				mobile = rec.Get("_officePhone")
				warnings = append(warnings, "No cell phone, using office phone")
			default:
				mobile = alloc.NextPhone()
				warnings = append(warnings, fmt.Sprintf("No phone on record, assigned placeholder %s", mobile))
			}
			out["mobilePhone"] = mobile
			rec = out
		}
		if res := phone.Validate(mobile); res.Valid && res.Formatted != mobile {
			out := rec.Clone()
			out["mobilePhone"] = res.Formatted
			rec = out
		}
		return rec, warnings
	}
}

// FirstEmail reduces a semicolon-separated email field to its first
// non-empty entry.
func FirstEmail(rec schema.Record) (schema.Record, []string) {
	email := rec.Get("email")
	if !strings.Contains(email, ";") {
		return rec, nil
	}
	for _, part := range strings.Split(email, ";") {
		if p := strings.TrimSpace(part); p != "" {
			out := rec.Clone()
			out["email"] = p
			return out, []string{fmt.Sprintf("Multiple emails found, using first: %s", p)}
		}
	}
	out := rec.Clone()
	out["email"] = ""
	return out, nil
}

// RebuildAddress assembles a home address from captured street, city,
// state, and zip scratch fields when no pre-built address exists. It
// discards garbage street placeholders, repairs the common
// city-in-state-column misalignment, and uppercases recognized state
// codes.
func RebuildAddress(rec schema.Record) (schema.Record, []string) {
	if rec.Has("homeAddress") {
		return rec, nil
	}
	if !rec.Has("_street") && !rec.Has("_city") && !rec.Has("_state") {
		return rec, nil
	}
	var warnings []string
	street := rec.Get("_street")
	city := rec.Get("_city")
	state := rec.Get("_state")
	zip := rec.Get("_zip")

	if street != "" && IsGarbageAddress(street) {
		warnings = append(warnings, fmt.Sprintf("Address %q looks like a placeholder, discarded", street))
		street = ""
	}

	if _, isCity := commonCities[strings.ToLower(state)]; state != "" && isCity {
		warnings = append(warnings, fmt.Sprintf("City %q found in State column, repairing", state))
		if zip != "" && IsUSState(zip) {
			if city == "" {
				city = state
			}
			state = zip
			zip = ""
		} else {
			if city == "" {
				city = state
			}
			state = ""
		}
	}

	if state != "" && IsUSState(state) {
		state = strings.ToUpper(state)
	}

	var parts []string
	for _, p := range []string{street, city, state, zip} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return rec, warnings
	}
	out := rec.Clone()
	out["homeAddress"] = strings.Join(parts, ", ")
	return out, warnings
}

// PurgeScratch drops every underscore-prefixed temp field. Always the
// final step; nothing downstream may see scratch state.
func PurgeScratch(rec schema.Record) (schema.Record, []string) {
	out := make(schema.Record, len(rec))
	for k, v := range rec {
		if strings.HasPrefix(k, "_") {
			continue
		}
		out[k] = v
	}
	return out, nil
}

// SplitFullName breaks a combined name field into first/last. It trims a
// trailing "| description" suffix and a trailing "(Company)" annotation,
// rejects values matching vehicle/line-item/internal-label vocabulary,
// and splits the remainder on the first space.
func SplitFullName(full string) (first, last string) {
	v := strings.TrimSpace(trailingParen.ReplaceAllString(trailingPipe.ReplaceAllString(full, ""), ""))
	if v == "" || nonPersonFullName.MatchString(v) {
		return "", ""
	}
	parts := strings.Fields(v)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
