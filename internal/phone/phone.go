// Package phone validates and formats telephone numbers against regional
// numbering rules. Dispatch exports carry numbers in every imaginable
// shape (bare 10-digit, 00-prefixed international, extensions, local
// trunk prefixes), so validation tries several parse strategies before
// giving up, and produces an actionable suggestion when one is derivable.
package phone

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used for numbers without an international prefix.
// United States is preferred when the region is ambiguous.
const DefaultRegion = "US"

// Result is the outcome of validating one phone number.
type Result struct {
	Valid     bool
	Formatted string // full international form, e.g. "+1 206-555-0199"
	Err       string
	// Suggestion is a corrected value the caller may offer as a
	// one-click fix. Set when the raw digits look like a bare US
	// 10-digit number.
	Suggestion string
}

// Validate parses raw against regional numbering rules and returns the
// number in international format when it is valid.
func Validate(raw string) Result {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Result{Err: "Phone number is required"}
	}

	cleaned := stripNonDial(trimmed)
	// "00" is the international call prefix in most of the world.
	if strings.HasPrefix(cleaned, "00") {
		cleaned = "+" + cleaned[2:]
	}

	// Parse attempts, most likely first: cleaned against US, cleaned
	// against no fixed region (country inferred from +CC), then the raw
	// original in case stripping mangled an extension or trunk prefix.
	for _, attempt := range []struct {
		number string
		region string
	}{
		{cleaned, DefaultRegion},
		{cleaned, ""},
		{trimmed, DefaultRegion},
	} {
		num, err := phonenumbers.Parse(attempt.number, attempt.region)
		if err != nil {
			continue
		}
		if !phonenumbers.IsValidNumber(num) {
			continue
		}
		return Result{
			Valid:     true,
			Formatted: phonenumbers.Format(num, phonenumbers.INTERNATIONAL),
		}
	}

	if digits := Digits(cleaned); len(digits) == 10 {
		return Result{
			Err:        "Invalid phone number format",
			Suggestion: "+1" + digits,
		}
	}
	return Result{Err: "Invalid phone number format"}
}

// Format returns the international form of raw when it validates, or raw
// unchanged when it does not.
func Format(raw string) string {
	if res := Validate(raw); res.Valid {
		return res.Formatted
	}
	return raw
}

// Digits strips everything but decimal digits, for comparison keys.
func Digits(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteByte(byte(r))
		}
	}
	return b.String()
}

// LooksLikePhone reports whether the value is phone-shaped: at least ten
// digits once punctuation is removed, and nothing alphabetic.
func LooksLikePhone(val string) bool {
	v := strings.TrimSpace(val)
	if v == "" {
		return false
	}
	for _, r := range v {
		switch {
		case r >= '0' && r <= '9':
		case r == '+' || r == '-' || r == '(' || r == ')' || r == '.' || r == ' ':
		default:
			return false
		}
	}
	return len(Digits(v)) >= 10
}

// stripNonDial keeps digits and a leading plus, discarding formatting
// punctuation.
func stripNonDial(raw string) string {
	var b strings.Builder
	for i, r := range raw {
		if r == '+' && i == 0 {
			b.WriteRune(r)
		} else if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
