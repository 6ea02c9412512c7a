package api

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/moovs/dataprep/internal/colmap"
	"github.com/moovs/dataprep/internal/dedup"
	"github.com/moovs/dataprep/internal/lookup"
	"github.com/moovs/dataprep/internal/pipeline"
	"github.com/moovs/dataprep/internal/placeholder"
	"github.com/moovs/dataprep/internal/schema"
	"github.com/moovs/dataprep/internal/validate"
)

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("session not found")

// Session is one wizard run: configuration, the uploaded table, and the
// working dataset with its issues and duplicate groups. Sessions are
// mutated only under the store lock; every mutation ends with a full
// re-validate and duplicate re-detect so the client always sees a
// consistent view.
type Session struct {
	ID         string
	Workflow   schema.Workflow
	OperatorID string

	BasePhone      string
	PickupAddress  string
	DropoffAddress string

	// LookupContacts are prior-export contacts feeding the lookup index
	// during reservation processing.
	LookupContacts []schema.ContactRef

	Headers    []string
	Rows       [][]string
	FileCount  int
	Mappings   []colmap.Mapping
	LimoFormat bool

	Contacts     []schema.Contact
	Reservations []schema.Reservation
	Issues       []schema.Issue
	Groups       []dedup.Group
	Warnings     []string
	Dropped      int
	LookupStats  *lookup.Stats

	FixedFields int
	MergedRows  int
	CreatedAt   time.Time
}

// RecordCount returns the size of the working dataset.
func (s *Session) RecordCount() int {
	if s.Workflow == schema.WorkflowReservations {
		return len(s.Reservations)
	}
	return len(s.Contacts)
}

// process runs the full transform from the raw table: mapping, pipeline,
// validation, duplicate detection. The allocator and lookup index are
// rebuilt from scratch on every call.
func (s *Session) process() {
	alloc := placeholder.NewAllocator(placeholder.Config{
		BasePhone:      s.BasePhone,
		PickupAddress:  s.PickupAddress,
		DropoffAddress: s.DropoffAddress,
	})

	records := colmap.Apply(s.Headers, s.Rows, s.Mappings)

	if s.Workflow == schema.WorkflowReservations {
		var idx *lookup.Index
		if len(s.LookupContacts) > 0 {
			idx = lookup.NewIndex(s.LookupContacts, alloc.BasePhone())
		}
		res := pipeline.Reservations(records, alloc, idx)
		s.Reservations = res.Reservations
		s.Warnings = res.Warnings
		s.Dropped = res.Dropped
		s.LookupStats = res.LookupStats
	} else {
		res := pipeline.Contacts(records, alloc)
		s.Contacts = res.Contacts
		s.Warnings = res.Warnings
		s.Dropped = res.Dropped
	}
	s.revalidate()
}

// revalidate refreshes issues and duplicate groups against the current
// working dataset without retransforming from raw.
func (s *Session) revalidate() {
	opts := validate.Options{OperatorID: s.OperatorID, BasePhone: s.BasePhone}
	if s.Workflow == schema.WorkflowReservations {
		s.Reservations, s.Issues = validate.Reservations(s.Reservations, opts)
		probes := make([]dedup.Probe, len(s.Reservations))
		for i, r := range s.Reservations {
			probes[i] = dedup.ReservationProbe(i, r)
		}
		s.Groups = dedup.Detect(probes)
		return
	}
	s.Contacts, s.Issues = validate.Contacts(s.Contacts, opts)
	probes := make([]dedup.Probe, len(s.Contacts))
	for i, c := range s.Contacts {
		probes[i] = dedup.ContactProbe(i, c)
	}
	s.Groups = dedup.Detect(probes)
}

// autoFix applies the suggested value of every missing-field issue and
// returns how many fields changed. Invalid fields keep their original
// value; their suggestions stay one-click fixes for the user to review.
func (s *Session) autoFix() int {
	fixed := 0
	for _, issue := range s.Issues {
		if issue.Type != schema.IssueMissing || issue.SuggestedValue == "" {
			continue
		}
		if s.Workflow == schema.WorkflowReservations {
			if issue.Row < len(s.Reservations) && s.Reservations[issue.Row].SetField(issue.Field, issue.SuggestedValue) {
				fixed++
			}
		} else {
			if issue.Row < len(s.Contacts) && s.Contacts[issue.Row].SetField(issue.Field, issue.SuggestedValue) {
				fixed++
			}
		}
	}
	if fixed > 0 {
		s.FixedFields += fixed
		s.revalidate()
	}
	return fixed
}

// fillPlaceholderEmails generates a deterministic placeholder email for
// every contact still missing one and returns the count filled.
func (s *Session) fillPlaceholderEmails() int {
	filled := 0
	if s.Workflow == schema.WorkflowReservations {
		for i := range s.Reservations {
			for _, c := range []*schema.ContactRef{&s.Reservations[i].Booking, &s.Reservations[i].Trip} {
				if c.Email == "" && c.FirstName != "" && c.LastName != "" {
					c.Email = placeholder.Email(c.FirstName, c.LastName, c.PhoneNumber)
					filled++
				}
			}
		}
	} else {
		for i := range s.Contacts {
			c := &s.Contacts[i]
			if c.Email == "" && c.FirstName != "" && c.LastName != "" {
				c.Email = placeholder.Email(c.FirstName, c.LastName, c.MobilePhone)
				filled++
			}
		}
	}
	if filled > 0 {
		s.FixedFields += filled
		s.revalidate()
	}
	return filled
}

// resolveDuplicates drops the non-kept rows of the decided groups in one
// pass, then re-validates and re-detects against the shrunk dataset.
// Returns how many rows were removed.
func (s *Session) resolveDuplicates(groups []dedup.Group, decisions []dedup.Decision) int {
	drops := dedup.RowsToDrop(groups, decisions)
	if len(drops) == 0 {
		return 0
	}
	if s.Workflow == schema.WorkflowReservations {
		s.Reservations = dedup.FilterReservations(s.Reservations, drops)
	} else {
		s.Contacts = dedup.FilterContacts(s.Contacts, drops)
	}
	s.MergedRows += len(drops)
	s.revalidate()
	return len(drops)
}

// SessionStore is the in-memory session registry.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionStore returns an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

// Create registers a new session.
func (st *SessionStore) Create(s *Session) *Session {
	s.ID = uuid.New().String()
	s.CreatedAt = time.Now().UTC()
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s
}

// With runs fn against the named session under the store lock.
func (st *SessionStore) With(id string, fn func(*Session) error) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	return fn(s)
}
