package clean

import "regexp"

// usStates is the two-letter state code vocabulary, DC included.
var usStates = map[string]struct{}{
	"AL": {}, "AK": {}, "AZ": {}, "AR": {}, "CA": {}, "CO": {}, "CT": {}, "DE": {}, "FL": {}, "GA": {},
	"HI": {}, "ID": {}, "IL": {}, "IN": {}, "IA": {}, "KS": {}, "KY": {}, "LA": {}, "ME": {}, "MD": {},
	"MA": {}, "MI": {}, "MN": {}, "MS": {}, "MO": {}, "MT": {}, "NE": {}, "NV": {}, "NH": {}, "NJ": {},
	"NM": {}, "NY": {}, "NC": {}, "ND": {}, "OH": {}, "OK": {}, "OR": {}, "PA": {}, "RI": {}, "SC": {},
	"SD": {}, "TN": {}, "TX": {}, "UT": {}, "VT": {}, "VA": {}, "WA": {}, "WV": {}, "WI": {}, "WY": {}, "DC": {},
}

// commonCities are city names that routinely land in the State column of
// dispatch exports. Pacific Northwest heavy because that is where the
// bulk of the source data comes from.
var commonCities = map[string]struct{}{
	"seattle": {}, "bellevue": {}, "redmond": {}, "tacoma": {}, "spokane": {}, "vancouver": {},
	"portland": {}, "san francisco": {}, "los angeles": {}, "new york": {}, "chicago": {},
	"boston": {}, "denver": {}, "phoenix": {}, "dallas": {}, "houston": {}, "atlanta": {},
	"miami": {}, "orlando": {}, "las vegas": {}, "san diego": {}, "austin": {}, "sammamish": {},
	"kirkland": {}, "renton": {}, "kent": {}, "bothell": {}, "woodinville": {}, "issaquah": {},
}

// nonPersonNames are first-name values that mark accounting or
// operations entries rather than people.
var nonPersonNames = map[string]struct{}{
	"payable": {}, "billing": {}, "accounts": {}, "accounts payable": {}, "receivable": {},
	"shuttle": {}, "bus": {}, "van": {}, "driver": {}, "office": {}, "admin": {}, "dispatch": {},
	"reservation": {}, "reservations": {}, "booking": {}, "bookings": {}, "fleet": {},
	"maintenance": {}, "operations": {}, "corporate": {}, "company": {}, "business": {},
}

// garbageAddressPatterns match street values that are placeholders, not
// addresses.
var garbageAddressPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^tbd$`),
	regexp.MustCompile(`(?i)^hotel\s*tbd$`),
	regexp.MustCompile(`(?i)^address\s*tbd$`),
	regexp.MustCompile(`(?i)^tba$`),
	regexp.MustCompile(`(?i)^n/?a$`),
	regexp.MustCompile(`(?i)^unknown$`),
	regexp.MustCompile(`(?i)^pending$`),
	regexp.MustCompile(`(?i)restaurant\s+in\s+`),
	regexp.MustCompile(`(?i)^see\s+notes?$`),
	regexp.MustCompile(`(?i)^contact\s+for\s+`),
}

// eventKeywords in a last name mark an event entry rather than a person.
var eventKeywords = []string{"wedding", "reception", "ceremony", "rehearsal"}

// placeholderNamePattern matches VIP/test/demo phrasing used by
// dispatchers to stub a record.
var placeholderNamePattern = regexp.MustCompile(`(?i)^(vip|test|demo|sample)\b`)

// nonPersonFullName matches full-name values on reservations that are
// really vehicle descriptions, billing line items, or internal labels.
var nonPersonFullName = regexp.MustCompile(`(?i)\b(sedan|suv|limo|limousine|sprinter|stretch|coach|motorcoach|charter|surcharge|gratuity|fuel|toll|tolls|deposit|cancellation|office|dispatch|front desk)\b`)

// IsGarbageAddress reports whether a street value is a known
// placeholder.
func IsGarbageAddress(street string) bool {
	for _, p := range garbageAddressPatterns {
		if p.MatchString(street) {
			return true
		}
	}
	return false
}

// IsUSState reports whether the value is a two-letter state code
// (case-insensitive).
func IsUSState(v string) bool {
	if len(v) != 2 {
		return false
	}
	_, ok := usStates[upper2(v)]
	return ok
}

func upper2(v string) string {
	b := []byte(v)
	for i := range b {
		if b[i] >= 'a' && b[i] <= 'z' {
			b[i] -= 'a' - 'A'
		}
	}
	return string(b)
}
