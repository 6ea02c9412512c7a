// Package pipeline runs the full per-record transformation for each
// workflow: field cleaning and filtering for contacts; order-type
// normalization, name recovery, contact back-fill, lookup resolution,
// and placeholder filling for reservations. Dropped rows are counted so
// callers can report true throughput.
package pipeline

import (
	"fmt"
	"log"
	"strings"

	"github.com/moovs/dataprep/internal/clean"
	"github.com/moovs/dataprep/internal/lookup"
	"github.com/moovs/dataprep/internal/phone"
	"github.com/moovs/dataprep/internal/placeholder"
	"github.com/moovs/dataprep/internal/schema"
)

// ContactResult is the contact pipeline's output.
type ContactResult struct {
	Contacts []schema.Contact `json:"contacts"`
	Warnings []string         `json:"warnings"`
	Dropped  int              `json:"droppedRows"`
}

// Contacts cleans raw mapped records into contact rows. Rows without any
// name, and rows classified as business or event entries, are dropped
// and counted.
func Contacts(records []schema.Record, alloc *placeholder.Allocator) ContactResult {
	steps := clean.Chain(alloc)
	// The purge must run after the post-filter, which reads the
	// business-entry scratch flag.
	repair := steps[:len(steps)-1]

	var res ContactResult
	for i, rec := range records {
		if !clean.PreFilter(rec) {
			res.Dropped++
			continue
		}
		cleaned, warnings := clean.Apply(rec, repair)
		for _, w := range warnings {
			res.Warnings = append(res.Warnings, fmt.Sprintf("row %d: %s", i+1, w))
		}
		if !clean.PostFilter(cleaned) {
			res.Dropped++
			continue
		}
		cleaned, _ = clean.PurgeScratch(cleaned)

		var c schema.Contact
		for _, f := range schema.ContactHeaders {
			c.SetField(f, cleaned.Get(f))
		}
		res.Contacts = append(res.Contacts, c)
	}
	if res.Dropped > 0 {
		log.Printf("[pipeline] contacts: %d rows in, %d kept, %d dropped", len(records), len(res.Contacts), res.Dropped)
	}
	return res
}

// ReservationResult is the reservation pipeline's output.
type ReservationResult struct {
	Reservations []schema.Reservation `json:"reservations"`
	Warnings     []string             `json:"warnings"`
	Dropped      int                  `json:"droppedRows"`
	LookupStats  *lookup.Stats        `json:"lookupStats,omitempty"`
}

// Reservations transforms raw mapped records into reservation rows. idx
// is optional; when present it resolves booking and trip contacts
// against previously imported contacts and advances the allocator past
// placeholders consumed on that prior run.
func Reservations(records []schema.Record, alloc *placeholder.Allocator, idx *lookup.Index) ReservationResult {
	if idx != nil {
		if start := idx.NextSequentialStart(); start > 0 {
			alloc.ContinueFrom(start)
		}
	}

	var res ReservationResult
	for i, rec := range records {
		r, warnings, keep := transformReservation(rec, alloc, idx)
		for _, w := range warnings {
			res.Warnings = append(res.Warnings, fmt.Sprintf("row %d: %s", i+1, w))
		}
		if !keep {
			res.Dropped++
			continue
		}
		res.Reservations = append(res.Reservations, r)
	}
	if idx != nil {
		s := idx.Stats()
		res.LookupStats = &s
	}
	if res.Dropped > 0 {
		log.Printf("[pipeline] reservations: %d rows in, %d kept, %d dropped", len(records), len(res.Reservations), res.Dropped)
	}
	return res
}

func transformReservation(rec schema.Record, alloc *placeholder.Allocator, idx *lookup.Index) (schema.Reservation, []string, bool) {
	var warnings []string
	var r schema.Reservation
	for _, f := range schema.ReservationHeaders {
		r.SetField(f, rec.Get(f))
	}

	if normalized := NormalizeOrderType(r.OrderType); normalized != r.OrderType {
		if strings.TrimSpace(r.OrderType) != "" && normalized == schema.DefaultOrderType && !schema.ValidOrderType(r.OrderType) {
			warnings = append(warnings, fmt.Sprintf("Unrecognized order type %q, defaulting to %s", r.OrderType, normalized))
		}
		r.OrderType = normalized
	}

	if v := strings.TrimSpace(r.TotalGroupSize); v == "" || v == "0" {
		r.TotalGroupSize = "1"
	}

	recoverFullNames(rec, &r, &warnings)

	backfillContacts(&r)

	for _, c := range []*schema.ContactRef{&r.Booking, &r.Trip} {
		if c.Email == "" && c.Named() && strings.TrimSpace(c.FirstName) != "" && strings.TrimSpace(c.LastName) != "" {
			c.Email = placeholder.Email(c.FirstName, c.LastName, c.PhoneNumber)
		}
	}

	if idx != nil {
		resolveContact(idx, &r.Booking)
		resolveContact(idx, &r.Trip)
	}

	for _, c := range []*schema.ContactRef{&r.Booking, &r.Trip} {
		if strings.TrimSpace(c.PhoneNumber) == "" {
			c.PhoneNumber = alloc.NextPhone()
			continue
		}
		if res := phone.Validate(c.PhoneNumber); res.Valid {
			c.PhoneNumber = res.Formatted
		} else {
			c.PhoneNumber = alloc.NextPhone()
		}
	}

	if strings.TrimSpace(r.PickUpAddress) == "" && alloc.PickupAddress() != "" {
		r.PickUpAddress = alloc.PickupAddress()
	}
	if strings.TrimSpace(r.DropOffAddress) == "" && alloc.DropoffAddress() != "" {
		r.DropOffAddress = alloc.DropoffAddress()
	}

	if !r.Booking.Named() && !r.Trip.Named() {
		return r, warnings, false
	}
	return r, warnings, true
}

// recoverFullNames splits captured combined-name columns into the trip
// and booking contacts when their name fields are still empty.
func recoverFullNames(rec schema.Record, r *schema.Reservation, warnings *[]string) {
	if full := rec.Get("_passengerFullName"); full != "" && !r.Trip.Named() {
		first, last := clean.SplitFullName(full)
		if first == "" && last == "" {
			*warnings = append(*warnings, fmt.Sprintf("Passenger name %q is not a person, ignored", full))
		} else {
			r.Trip.FirstName = first
			r.Trip.LastName = last
		}
	}
	if full := rec.Get("_bookingFullName"); full != "" && !r.Booking.Named() {
		first, last := clean.SplitFullName(full)
		if first == "" && last == "" {
			*warnings = append(*warnings, fmt.Sprintf("Booking contact %q is not a person, ignored", full))
		} else {
			r.Booking.FirstName = first
			r.Booking.LastName = last
		}
	}
}

// backfillContacts copies booking fields into empty trip fields and vice
// versa, each of the four fields independently.
func backfillContacts(r *schema.Reservation) {
	pairs := []struct{ a, b *string }{
		{&r.Booking.FirstName, &r.Trip.FirstName},
		{&r.Booking.LastName, &r.Trip.LastName},
		{&r.Booking.Email, &r.Trip.Email},
		{&r.Booking.PhoneNumber, &r.Trip.PhoneNumber},
	}
	for _, p := range pairs {
		if strings.TrimSpace(*p.a) == "" {
			*p.a = *p.b
		}
		if strings.TrimSpace(*p.b) == "" {
			*p.b = *p.a
		}
	}
}

// resolveContact fills still-empty email/phone from a lookup match.
// Populated values are never overwritten.
func resolveContact(idx *lookup.Index, c *schema.ContactRef) {
	m := idx.Find(c.FirstName, c.LastName, c.Email)
	if m.Type == lookup.MatchNone {
		return
	}
	if strings.TrimSpace(c.Email) == "" && m.Email != "" {
		c.Email = m.Email
	}
	if strings.TrimSpace(c.PhoneNumber) == "" && m.Phone != "" {
		c.PhoneNumber = m.Phone
	}
}
