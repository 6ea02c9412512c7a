// Package placeholder generates the synthetic values substituted for
// missing source data: sequential phone numbers in a reserved fictional
// range, deterministic import emails, and configured static addresses.
// Placeholder values are recognizable downstream so the validator can
// report them as informational rather than erroneous.
package placeholder

import (
	"strconv"
	"strings"

	"github.com/moovs/dataprep/internal/phone"
)

// DefaultBasePhone is the first number handed out when no base is
// configured. 202-555-01XX is reserved for fictional use.
const DefaultBasePhone = "+1 202-555-0100"

// EmailDomain is the domain stamped onto generated placeholder emails.
const EmailDomain = "import.moovs.com"

// legacyEmailDomain appeared in older exports and is still recognized as
// a placeholder.
const legacyEmailDomain = "placeholder.moovs.com"

// Config carries the user-supplied placeholder settings for one run.
type Config struct {
	BasePhone      string
	PickupAddress  string
	DropoffAddress string
}

// Allocator hands out sequential placeholder phone numbers and the
// configured static addresses. It is single-owner state scoped to one
// processing run; construction is the reset.
type Allocator struct {
	base       string
	baseDigits string
	baseNum    int64
	counter    int64
	pickup     string
	dropoff    string
}

// NewAllocator builds a fresh allocator. An empty base phone falls back
// to DefaultBasePhone.
func NewAllocator(cfg Config) *Allocator {
	base := strings.TrimSpace(cfg.BasePhone)
	if base == "" {
		base = DefaultBasePhone
	}
	digits := phone.Digits(base)
	num, _ := strconv.ParseInt(digits, 10, 64)
	return &Allocator{
		base:       base,
		baseDigits: digits,
		baseNum:    num,
		pickup:     strings.TrimSpace(cfg.PickupAddress),
		dropoff:    strings.TrimSpace(cfg.DropoffAddress),
	}
}

// BasePhone returns the configured base number.
func (a *Allocator) BasePhone() string { return a.base }

// NextPhone returns the next sequential placeholder number. The first
// call returns the base verbatim; call N returns base+(N-1) rendered in
// the base's layout.
func (a *Allocator) NextPhone() string {
	if a.counter == 0 {
		a.counter++
		return a.base
	}
	next := a.baseNum + a.counter
	a.counter++
	return formatSequential(a.base, a.baseDigits, next)
}

// ContinueFrom advances numbering so the next call returns the number
// whose digit value is start. Used to continue after placeholders
// consumed by a previous run; values at or below the base are ignored.
func (a *Allocator) ContinueFrom(start int64) {
	if start > a.baseNum {
		a.counter = start - a.baseNum
	}
}

// PickupAddress returns the configured static pickup address, or ""
// when unconfigured — callers must not invent one.
func (a *Allocator) PickupAddress() string { return a.pickup }

// DropoffAddress returns the configured static dropoff address, or "".
func (a *Allocator) DropoffAddress() string { return a.dropoff }

// formatSequential renders a digit value in the base number's layout.
// The common +1 AAA-EEE-LLLL shape is reconstructed exactly; anything
// else degrades to +<digits>.
func formatSequential(base, baseDigits string, value int64) string {
	digits := strconv.FormatInt(value, 10)
	if len(baseDigits) == 11 && strings.HasPrefix(base, "+1") && len(digits) == 11 {
		return "+1 " + digits[1:4] + "-" + digits[4:7] + "-" + digits[7:11]
	}
	return "+" + digits
}

// IsPlaceholderEmail reports whether the email was generated by a prior
// import rather than supplied by a real contact.
func IsPlaceholderEmail(email string) bool {
	e := strings.ToLower(strings.TrimSpace(email))
	return strings.HasSuffix(e, "@"+EmailDomain) || strings.HasSuffix(e, "@"+legacyEmailDomain)
}

// IsPlaceholderShapedPhone reports whether the phone digits look like
// they came out of a 555 placeholder range.
func IsPlaceholderShapedPhone(p string) bool {
	if p == "" {
		return false
	}
	return strings.Contains(phone.Digits(p), "555")
}

// MatchesBase reports whether the phone's digits continue the base
// number's sequential range (same digits up to the last two).
func MatchesBase(p, basePhone string) bool {
	digits := phone.Digits(p)
	baseDigits := phone.Digits(basePhone)
	if len(baseDigits) < 3 || len(digits) != len(baseDigits) {
		return false
	}
	return strings.HasPrefix(digits, baseDigits[:len(baseDigits)-2])
}

// Email generates a deterministic placeholder email for a contact:
// first.last.NNNNNN@import.moovs.com. The differentiator is the last six
// phone digits when a phone is available, otherwise a hash of the name —
// so the same person always receives the same address.
func Email(firstName, lastName, phoneNumber string) string {
	first := alnumLower(firstName)
	if first == "" {
		first = "unknown"
	}
	last := alnumLower(lastName)
	if last == "" {
		last = "contact"
	}

	var suffix string
	if strings.TrimSpace(phoneNumber) != "" {
		digits := phone.Digits(phoneNumber)
		if len(digits) > 6 {
			digits = digits[len(digits)-6:]
		}
		if digits == "" {
			digits = "000000"
		}
		suffix = digits
	} else {
		suffix = nameHash(first + last)
	}

	return first + "." + last + "." + suffix + "@" + EmailDomain
}

// nameHash reduces a name seed to a deterministic six-digit string using
// a 31-multiplier rolling hash in 32-bit space.
func nameHash(seed string) string {
	var h int32
	for _, c := range seed {
		h = h*31 + int32(c)
	}
	if h < 0 {
		h = -h
	}
	s := strconv.FormatInt(int64(h), 10)
	if len(s) > 6 {
		s = s[:6]
	}
	for len(s) < 6 {
		s = "0" + s
	}
	return s
}

func alnumLower(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
