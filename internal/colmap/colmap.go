// Package colmap maps source CSV columns onto the canonical import
// fields. It carries the known LimoAnywhere header alias tables, detects
// whether an upload looks like a LimoAnywhere export, proposes an
// automatic mapping for review, and applies a confirmed mapping to raw
// rows to produce canonical records.
package colmap

import (
	"strings"

	"github.com/moovs/dataprep/internal/schema"
)

// Mapping binds one source column to one canonical target field.
// CombineWith optionally names further source columns whose values are
// appended after the first, comma separated.
type Mapping struct {
	Source      string   `json:"sourceColumn"`
	Target      string   `json:"targetField"`
	CombineWith []string `json:"combineWith,omitempty"`
}

// ContactAliases is the known LimoAnywhere header vocabulary for the
// contact workflow. Order matters: when several aliases for the same
// target are present in an upload, the earliest alias wins.
// Underscore-prefixed targets are scratch fields consumed by the
// cleaning stage and never exported.
var ContactAliases = []Mapping{
	{Source: "First Name", Target: "firstName"},
	{Source: "Last Name", Target: "lastName"},
	{Source: "Cell Phone", Target: "mobilePhone"},
	{Source: "Email", Target: "email"},
	{Source: "Mobile Phone", Target: "mobilePhone"},
	{Source: "Cellular Phone", Target: "mobilePhone"},
	{Source: "Cellular", Target: "mobilePhone"},
	{Source: "Phone", Target: "mobilePhone"},
	{Source: "Home Phone", Target: "_homePhone"},
	{Source: "Home", Target: "_homePhone"},
	{Source: "Office Phone", Target: "_officePhone"},
	{Source: "Office", Target: "_officePhone"},
	{Source: "Work Phone", Target: "_officePhone"},
	{Source: "Business Phone", Target: "_officePhone"},
	{Source: "E-mail", Target: "email"},
	{Source: "EmailAddress", Target: "email"},
	{Source: "Email Address", Target: "email"},
	{Source: "Email Addresses", Target: "email"},
	{Source: "Emails", Target: "email"},
	{Source: "Home Address", Target: "homeAddress"},
	{Source: "Work Address", Target: "workAddress"},
	{Source: "Address", Target: "homeAddress"},
	{Source: "Primary Address", Target: "_street"},
	{Source: "Street", Target: "_street"},
	{Source: "City", Target: "_city"},
	{Source: "State", Target: "_state"},
	{Source: "Zip", Target: "_zip"},
	{Source: "Country", Target: "_country"},
	{Source: "Company Name", Target: "_companyName"},
}

// ReservationAliases is the known LimoAnywhere header vocabulary for the
// reservation workflow.
var ReservationAliases = []Mapping{
	{Source: "Confirmation #", Target: "confirmationNumber"},
	{Source: "Confirmation Number", Target: "confirmationNumber"},
	{Source: "Conf #", Target: "confirmationNumber"},
	{Source: "Pick Up Date", Target: "pickUpDate"},
	{Source: "Pickup Date", Target: "pickUpDate"},
	{Source: "PU Date", Target: "pickUpDate"},
	{Source: "Pick Up Time", Target: "pickUpTime"},
	{Source: "Pickup Time", Target: "pickUpTime"},
	{Source: "PU Time", Target: "pickUpTime"},
	{Source: "Drop Off Date", Target: "dropOffDate"},
	{Source: "Dropoff Date", Target: "dropOffDate"},
	{Source: "DO Date", Target: "dropOffDate"},
	{Source: "Drop Off Time", Target: "dropOffTime"},
	{Source: "Dropoff Time", Target: "dropOffTime"},
	{Source: "DO Time", Target: "dropOffTime"},
	{Source: "Service Type", Target: "orderType"},
	{Source: "Trip Type", Target: "orderType"},
	{Source: "Order Type", Target: "orderType"},
	{Source: "Passengers", Target: "totalGroupSize"},
	{Source: "Pax", Target: "totalGroupSize"},
	{Source: "Pax #", Target: "totalGroupSize"},
	{Source: "Group Size", Target: "totalGroupSize"},
	{Source: "Pick Up Address", Target: "pickUpAddress"},
	{Source: "Pickup Address", Target: "pickUpAddress"},
	{Source: "PU Address", Target: "pickUpAddress"},
	{Source: "From", Target: "pickUpAddress"},
	{Source: "Pick Up Notes", Target: "pickUpNotes"},
	{Source: "PU Notes", Target: "pickUpNotes"},
	{Source: "Drop Off Address", Target: "dropOffAddress"},
	{Source: "Dropoff Address", Target: "dropOffAddress"},
	{Source: "DO Address", Target: "dropOffAddress"},
	{Source: "To", Target: "dropOffAddress"},
	{Source: "Drop Off Notes", Target: "dropOffNotes"},
	{Source: "DO Notes", Target: "dropOffNotes"},
	{Source: "Booking First Name", Target: "bookingContactFirstName"},
	{Source: "Booker First Name", Target: "bookingContactFirstName"},
	{Source: "Customer First Name", Target: "bookingContactFirstName"},
	{Source: "Booking Last Name", Target: "bookingContactLastName"},
	{Source: "Booker Last Name", Target: "bookingContactLastName"},
	{Source: "Customer Last Name", Target: "bookingContactLastName"},
	{Source: "Booking Email", Target: "bookingContactEmail"},
	{Source: "Booker Email", Target: "bookingContactEmail"},
	{Source: "Customer Email", Target: "bookingContactEmail"},
	{Source: "Booking Phone", Target: "bookingContactPhoneNumber"},
	{Source: "Booker Phone", Target: "bookingContactPhoneNumber"},
	{Source: "Customer Phone", Target: "bookingContactPhoneNumber"},
	{Source: "Passenger First Name", Target: "tripContactFirstName"},
	{Source: "Rider First Name", Target: "tripContactFirstName"},
	{Source: "Passenger Last Name", Target: "tripContactLastName"},
	{Source: "Rider Last Name", Target: "tripContactLastName"},
	{Source: "Passenger Email", Target: "tripContactEmail"},
	{Source: "Rider Email", Target: "tripContactEmail"},
	{Source: "Passenger Phone", Target: "tripContactPhoneNumber"},
	{Source: "Rider Phone", Target: "tripContactPhoneNumber"},
	// Full-name columns: split into first/last during cleaning.
	{Source: "Passenger Name", Target: "_passengerFullName"},
	{Source: "Billing Contact", Target: "_bookingFullName"},
	{Source: "Booking Contact", Target: "_bookingFullName"},
	{Source: "Vehicle", Target: "vehicle"},
	{Source: "Vehicle Type", Target: "vehicle"},
	{Source: "Car Type", Target: "vehicle"},
	{Source: "Trip Notes", Target: "tripNotes"},
	{Source: "Notes", Target: "tripNotes"},
	{Source: "Base Rate", Target: "baseRateAmt"},
	{Source: "Rate", Target: "baseRateAmt"},
	{Source: "Price", Target: "baseRateAmt"},
	{Source: "Stop 1", Target: "stop1Address"},
	{Source: "Stop 1 Address", Target: "stop1Address"},
	{Source: "Stop 2", Target: "stop2Address"},
	{Source: "Stop 2 Address", Target: "stop2Address"},
	{Source: "Stop 3", Target: "stop3Address"},
	{Source: "Stop 3 Address", Target: "stop3Address"},
}

// AliasesFor returns the known alias table for a workflow.
func AliasesFor(w schema.Workflow) []Mapping {
	if w == schema.WorkflowReservations {
		return ReservationAliases
	}
	return ContactAliases
}

// TargetsFor returns the canonical export fields for a workflow.
func TargetsFor(w schema.Workflow) []string {
	if w == schema.WorkflowReservations {
		return schema.ReservationHeaders
	}
	return schema.ContactHeaders
}

// limoSignatures are header fragments characteristic of LimoAnywhere
// exports. Matching is substring, case-insensitive.
var limoSignatures = []string{
	"Pick Up Date", "Pickup Date", "PU Date", "PU Time",
	"Pick Up Address", "Pickup Address", "PU Address",
	"Confirmation #", "Conf #", "Conf#",
	"Cell Phone", "Mobile Phone", "Cellular Phone",
	"Email Addresses", "Account Type", "Account Number",
	"Primary Address", "Pax #", "Service Type", "Vehicle Type",
	"Passenger Name", "Billing Contact", "Trip Total",
}

// IsLimoAnywhereFormat reports whether the headers look like a
// LimoAnywhere export: two or more headers containing a signature
// fragment.
func IsLimoAnywhereFormat(headers []string) bool {
	count := 0
	for _, h := range headers {
		lower := strings.ToLower(h)
		for _, sig := range limoSignatures {
			if strings.Contains(lower, strings.ToLower(sig)) {
				count++
				break
			}
		}
	}
	return count >= 2
}

// AutoMap proposes a mapping for the upload's headers. Known aliases are
// applied first; each target field binds to at most one source column,
// earliest alias winning. Remaining target fields are matched against
// leftover headers by punctuation-insensitive equality. Headers that
// match nothing are simply unmapped; the caller surfaces them for manual
// assignment.
func AutoMap(headers []string, w schema.Workflow) []Mapping {
	present := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		present[h] = struct{}{}
	}

	var out []Mapping
	usedHeader := make(map[string]struct{})
	usedTarget := make(map[string]struct{})

	for _, m := range AliasesFor(w) {
		if _, ok := present[m.Source]; !ok {
			continue
		}
		if _, ok := usedHeader[m.Source]; ok {
			continue
		}
		if _, ok := usedTarget[m.Target]; ok {
			continue
		}
		out = append(out, m)
		usedHeader[m.Source] = struct{}{}
		usedTarget[m.Target] = struct{}{}
	}

	for _, field := range TargetsFor(w) {
		if _, ok := usedTarget[field]; ok {
			continue
		}
		key := foldHeader(field)
		for _, h := range headers {
			if _, ok := usedHeader[h]; ok {
				continue
			}
			if foldHeader(h) == key {
				out = append(out, Mapping{Source: h, Target: field})
				usedHeader[h] = struct{}{}
				usedTarget[field] = struct{}{}
				break
			}
		}
	}

	return out
}

// Apply converts raw rows into canonical records under the given
// mapping. Unmapped source columns are dropped. Non-empty CombineWith
// values are appended comma separated.
func Apply(headers []string, rows [][]string, mappings []Mapping) []schema.Record {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		if _, ok := idx[h]; !ok {
			idx[h] = i
		}
	}

	cell := func(row []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	out := make([]schema.Record, 0, len(rows))
	for _, row := range rows {
		rec := make(schema.Record, len(mappings))
		for _, m := range mappings {
			if m.Target == "" {
				continue
			}
			v := cell(row, m.Source)
			for _, col := range m.CombineWith {
				if extra := cell(row, col); extra != "" {
					if v != "" {
						v = v + ", " + extra
					} else {
						v = extra
					}
				}
			}
			rec[m.Target] = v
		}
		out = append(out, rec)
	}
	return out
}

// foldHeader lowercases and strips everything non-alphabetic so that
// "Pick-Up Date" and "pickUpDate" compare equal.
func foldHeader(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
