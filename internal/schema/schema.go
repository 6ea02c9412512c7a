// Package schema defines the canonical record shapes, export column sets,
// and issue types shared across the data prep pipeline. Source rows are
// carried as open string-keyed Records only while they move through column
// mapping and cleaning; everything downstream works on the typed Contact
// and Reservation structs.
package schema

import "strings"

// Workflow selects which of the two import schemas a run targets.
type Workflow string

const (
	WorkflowContacts     Workflow = "contacts"
	WorkflowReservations Workflow = "reservations"
)

// Record is the scratch representation of one source row after column
// mapping: canonical field names plus underscore-prefixed temp fields
// captured for recovery heuristics. Records never leave the transform
// pipeline; output is always a Contact or Reservation.
type Record map[string]string

// Get returns the trimmed value for a field, or "" when absent.
func (r Record) Get(field string) string {
	return strings.TrimSpace(r[field])
}

// Has reports whether the field holds a non-blank value.
func (r Record) Has(field string) bool {
	return r.Get(field) != ""
}

// Clone returns a shallow copy so cleaning steps can stay pure.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// IssueType classifies a field-level data issue.
type IssueType string

const (
	IssueMissing   IssueType = "missing"
	IssueInvalid   IssueType = "invalid"
	IssueDuplicate IssueType = "duplicate"
	// IssueInfo marks non-blocking observations (placeholder values in
	// use). Info issues never count toward the records-with-errors total.
	IssueInfo IssueType = "info"
)

// Issue is one field-level problem on one row, with enough context for a
// one-click fix when a suggestion could be derived.
type Issue struct {
	Row            int       `json:"rowIndex"`
	Field          string    `json:"field"`
	Type           IssueType `json:"type"`
	Message        string    `json:"message"`
	CurrentValue   string    `json:"currentValue,omitempty"`
	SuggestedValue string    `json:"suggestedValue,omitempty"`
}

// Blocking reports whether the issue should count a record as not ready
// to import.
func (i Issue) Blocking() bool {
	return i.Type != IssueInfo
}

// ReadyCount returns how many of total records carry no blocking issue.
func ReadyCount(total int, issues []Issue) int {
	rows := make(map[int]struct{})
	for _, is := range issues {
		if is.Blocking() {
			rows[is.Row] = struct{}{}
		}
	}
	return total - len(rows)
}

// ContactHeaders is the fixed export column order for the contact schema.
var ContactHeaders = []string{
	"operatorId",
	"firstName",
	"lastName",
	"mobilePhone",
	"email",
	"homeAddress",
	"workAddress",
	"preferences",
}

// ReservationHeaders is the fixed export column order for the reservation
// schema: 43 columns including ten numbered stop address/notes pairs.
var ReservationHeaders = buildReservationHeaders()

func buildReservationHeaders() []string {
	h := []string{
		"operatorId",
		"confirmationNumber",
		"pickUpDate",
		"pickUpTime",
		"dropOffDate",
		"dropOffTime",
		"orderType",
		"totalGroupSize",
		"pickUpAddress",
		"pickUpNotes",
		"dropOffAddress",
		"dropOffNotes",
		"bookingContactFirstName",
		"bookingContactLastName",
		"bookingContactEmail",
		"bookingContactPhoneNumber",
		"tripContactFirstName",
		"tripContactLastName",
		"tripContactEmail",
		"tripContactPhoneNumber",
		"vehicle",
		"tripNotes",
		"baseRateAmt",
	}
	for i := 1; i <= NumStops; i++ {
		h = append(h, stopFieldName(i, "Address"), stopFieldName(i, "Notes"))
	}
	return h
}

// OrderTypes is the closed vocabulary of reservation order types accepted
// by the downstream import schema.
var OrderTypes = []string{
	"airport", "airport-drop-off", "airport-pick-up", "bachelor-bachelorette", "bar",
	"bar-bat-mitzvah", "baseball", "basketball", "birthday", "birthday-21", "brew-tour",
	"bridal-party", "bride-groom", "business-trip", "concert", "corporate", "family-reunion",
	"field-trip", "football", "funeral", "golf", "graduation", "hockey", "holiday", "kids-birthday",
	"leisure", "medical", "night-out", "personal-trip", "point-to-point", "prom-homecoming",
	"quinceanera", "retail", "school", "school-fundraiser", "seaport", "special-occasion",
	"sporting-event", "sweet-16", "train-station", "wedding", "wine-tour",
}

// DefaultOrderType is used when the source order type is blank or cannot
// be matched to the vocabulary.
const DefaultOrderType = "point-to-point"

var orderTypeSet = buildOrderTypeSet()

func buildOrderTypeSet() map[string]struct{} {
	s := make(map[string]struct{}, len(OrderTypes))
	for _, t := range OrderTypes {
		s[t] = struct{}{}
	}
	return s
}

// ValidOrderType reports whether t (case-insensitive) is in the order
// type vocabulary.
func ValidOrderType(t string) bool {
	_, ok := orderTypeSet[strings.ToLower(strings.TrimSpace(t))]
	return ok
}
