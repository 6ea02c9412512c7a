// Package dedup finds likely duplicate records by phone, email, and name
// keys, and removes the rows the user chose to discard. Group discovery
// is deterministic: key spaces are ranked phone over email over name,
// and groups within one key space surface in first-appearance order.
package dedup

import (
	"sort"
	"strings"

	"github.com/moovs/dataprep/internal/phone"
	"github.com/moovs/dataprep/internal/schema"
)

// Probe is the comparable identity derived from one record.
type Probe struct {
	Row       int    `json:"rowIndex"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// Group is one set of probable duplicates. MatchReason names the key
// space that linked them: "phone", "email", or "name".
type Group struct {
	Contacts    []Probe `json:"contacts"`
	MatchReason string  `json:"matchReason"`
}

// ContactProbe derives the comparison identity from a contact row.
func ContactProbe(row int, c schema.Contact) Probe {
	return Probe{
		Row:       row,
		FirstName: strings.TrimSpace(c.FirstName),
		LastName:  strings.TrimSpace(c.LastName),
		Email:     strings.ToLower(strings.TrimSpace(c.Email)),
		Phone:     phone.Digits(c.MobilePhone),
	}
}

// ReservationProbe derives the comparison identity from a reservation
// row, falling back to the booking contact for each component.
func ReservationProbe(row int, r schema.Reservation) Probe {
	return Probe{
		Row:       row,
		FirstName: strings.TrimSpace(r.Booking.FirstName),
		LastName:  strings.TrimSpace(r.Booking.LastName),
		Email:     strings.ToLower(strings.TrimSpace(r.Booking.Email)),
		Phone:     phone.Digits(r.Booking.PhoneNumber),
	}
}

// keySpace orders the key namespaces by match strength.
var keySpaces = []string{"phone", "email", "name"}

func (p Probe) key(space string) string {
	switch space {
	case "phone":
		if p.Phone != "" {
			return "phone:" + p.Phone
		}
	case "email":
		if p.Email != "" {
			return "email:" + p.Email
		}
	case "name":
		if p.FirstName != "" && p.LastName != "" {
			return "name:" + strings.ToLower(p.FirstName) + ":" + strings.ToLower(p.LastName)
		}
	}
	return ""
}

// Detect groups the probes by shared phone, email, or name. A row
// claimed by a stronger key space is excluded from weaker groups, and
// only groups keeping two or more unclaimed rows surface. Within one key
// space, groups appear in the order their key was first seen.
func Detect(probes []Probe) []Group {
	claimed := make(map[int]struct{})
	var groups []Group

	for _, space := range keySpaces {
		buckets := make(map[string][]Probe)
		var order []string
		for _, p := range probes {
			k := p.key(space)
			if k == "" {
				continue
			}
			if _, seen := buckets[k]; !seen {
				order = append(order, k)
			}
			buckets[k] = append(buckets[k], p)
		}
		for _, k := range order {
			members := buckets[k]
			if len(members) < 2 {
				continue
			}
			var free []Probe
			for _, m := range members {
				if _, ok := claimed[m.Row]; !ok {
					free = append(free, m)
				}
			}
			if len(free) < 2 {
				continue
			}
			for _, m := range free {
				claimed[m.Row] = struct{}{}
			}
			groups = append(groups, Group{Contacts: free, MatchReason: space})
		}
	}
	return groups
}

// Decision selects which row of a group to keep. KeepIndex indexes into
// the group's Contacts slice; absent groups default to keeping the
// first.
type Decision struct {
	GroupIndex int `json:"groupIndex"`
	KeepIndex  int `json:"keepIndex"`
}

// RowsToDrop resolves the groups against the user's decisions and
// returns the set of row indices to remove, ascending. Groups with no
// decision keep their first row.
func RowsToDrop(groups []Group, decisions []Decision) []int {
	keep := make(map[int]int, len(groups))
	for _, d := range decisions {
		if d.GroupIndex < 0 || d.GroupIndex >= len(groups) {
			continue
		}
		if d.KeepIndex < 0 || d.KeepIndex >= len(groups[d.GroupIndex].Contacts) {
			continue
		}
		keep[d.GroupIndex] = d.KeepIndex
	}

	dropSet := make(map[int]struct{})
	for gi, g := range groups {
		ki := keep[gi]
		for ci, c := range g.Contacts {
			if ci != ki {
				dropSet[c.Row] = struct{}{}
			}
		}
	}

	drops := make([]int, 0, len(dropSet))
	for row := range dropSet {
		drops = append(drops, row)
	}
	sort.Ints(drops)
	return drops
}

// FilterContacts removes the rows at the given indices in one pass.
func FilterContacts(rows []schema.Contact, drop []int) []schema.Contact {
	dropSet := make(map[int]struct{}, len(drop))
	for _, d := range drop {
		dropSet[d] = struct{}{}
	}
	out := make([]schema.Contact, 0, len(rows))
	for i, r := range rows {
		if _, ok := dropSet[i]; !ok {
			out = append(out, r)
		}
	}
	return out
}

// FilterReservations removes the rows at the given indices in one pass.
func FilterReservations(rows []schema.Reservation, drop []int) []schema.Reservation {
	dropSet := make(map[int]struct{}, len(drop))
	for _, d := range drop {
		dropSet[d] = struct{}{}
	}
	out := make([]schema.Reservation, 0, len(rows))
	for i, r := range rows {
		if _, ok := dropSet[i]; !ok {
			out = append(out, r)
		}
	}
	return out
}
