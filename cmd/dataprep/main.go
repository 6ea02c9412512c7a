// Command dataprep runs the full import preparation offline: it reads
// one or more export files, cleans and transforms them for the chosen
// workflow, applies suggested fixes, resolves duplicates by keeping the
// first record of each group, and writes the import-ready CSV.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/moovs/dataprep/internal/colmap"
	"github.com/moovs/dataprep/internal/csvio"
	"github.com/moovs/dataprep/internal/dedup"
	"github.com/moovs/dataprep/internal/lookup"
	"github.com/moovs/dataprep/internal/pipeline"
	"github.com/moovs/dataprep/internal/placeholder"
	"github.com/moovs/dataprep/internal/schema"
	"github.com/moovs/dataprep/internal/validate"
)

func main() {
	var (
		workflowFlag = flag.String("workflow", "contacts", "workflow: contacts or reservations")
		operatorID   = flag.String("operator", "", "operator id stamped onto every record (required)")
		basePhone    = flag.String("base-phone", placeholder.DefaultBasePhone, "base placeholder phone number")
		pickupAddr   = flag.String("pickup", "", "static placeholder pickup address (reservations)")
		dropoffAddr  = flag.String("dropoff", "", "static placeholder dropoff address (reservations)")
		contactsFile = flag.String("contacts", "", "previously exported contacts CSV for lookup (reservations)")
		outDir       = flag.String("out", ".", "output directory")
		autoFix      = flag.Bool("autofix", true, "fill missing fields with their suggested values")
		mergeDupes   = flag.Bool("merge-duplicates", false, "resolve duplicate groups keeping the first record")
		fillEmails   = flag.Bool("placeholder-emails", false, "fill missing emails with deterministic placeholders")
		showWarnings = flag.Bool("warnings", false, "print per-row cleaning warnings")
	)
	flag.Parse()

	if *operatorID == "" {
		log.Fatal("-operator is required")
	}
	workflow := schema.Workflow(*workflowFlag)
	if workflow != schema.WorkflowContacts && workflow != schema.WorkflowReservations {
		log.Fatalf("unknown workflow %q", *workflowFlag)
	}
	if flag.NArg() == 0 {
		log.Fatal("at least one input file required")
	}

	tables := make([]csvio.Table, 0, flag.NArg())
	for _, path := range flag.Args() {
		t, err := readTable(path)
		if err != nil {
			log.Fatalf("Failed to read %s: %v", path, err)
		}
		tables = append(tables, t)
	}

	combined, err := csvio.Combine(tables)
	if err != nil {
		log.Fatalf("Failed to combine inputs: %v", err)
	}

	if colmap.IsLimoAnywhereFormat(combined.Headers) {
		log.Println("Detected LimoAnywhere export format")
	}

	alloc := placeholder.NewAllocator(placeholder.Config{
		BasePhone:      *basePhone,
		PickupAddress:  *pickupAddr,
		DropoffAddress: *dropoffAddr,
	})
	mappings := colmap.AutoMap(combined.Headers, workflow)
	records := colmap.Apply(combined.Headers, combined.Rows, mappings)
	opts := validate.Options{OperatorID: *operatorID, BasePhone: alloc.BasePhone()}

	var (
		content  string
		total    int
		issues   []schema.Issue
		warnings []string
	)

	if workflow == schema.WorkflowReservations {
		var idx *lookup.Index
		if *contactsFile != "" {
			idx, err = loadLookup(*contactsFile, alloc.BasePhone())
			if err != nil {
				log.Fatalf("Failed to load contacts file: %v", err)
			}
		}
		res := pipeline.Reservations(records, alloc, idx)
		warnings = res.Warnings
		rows, iss := validate.Reservations(res.Reservations, opts)
		if *fillEmails {
			for i := range rows {
				for _, c := range []*schema.ContactRef{&rows[i].Booking, &rows[i].Trip} {
					if c.Email == "" && c.FirstName != "" && c.LastName != "" {
						c.Email = placeholder.Email(c.FirstName, c.LastName, c.PhoneNumber)
					}
				}
			}
			rows, iss = validate.Reservations(rows, opts)
		}
		if *autoFix {
			rows, iss = fixReservations(rows, iss, opts)
		}
		if *mergeDupes {
			probes := make([]dedup.Probe, len(rows))
			for i, r := range rows {
				probes[i] = dedup.ReservationProbe(i, r)
			}
			groups := dedup.Detect(probes)
			if drops := dedup.RowsToDrop(groups, nil); len(drops) > 0 {
				rows = dedup.FilterReservations(rows, drops)
				rows, iss = validate.Reservations(rows, opts)
				log.Printf("Merged %d duplicate rows", len(drops))
			}
		}
		fmt.Printf("Rows read: %d, dropped: %d, kept: %d\n", len(records), res.Dropped, len(rows))
		content = csvio.GenerateReservations(rows)
		total = len(rows)
		issues = iss
	} else {
		res := pipeline.Contacts(records, alloc)
		warnings = res.Warnings
		rows, iss := validate.Contacts(res.Contacts, opts)
		if *fillEmails {
			for i := range rows {
				if rows[i].Email == "" && rows[i].FirstName != "" && rows[i].LastName != "" {
					rows[i].Email = placeholder.Email(rows[i].FirstName, rows[i].LastName, rows[i].MobilePhone)
				}
			}
			rows, iss = validate.Contacts(rows, opts)
		}
		if *autoFix {
			rows, iss = fixContacts(rows, iss, opts)
		}
		if *mergeDupes {
			probes := make([]dedup.Probe, len(rows))
			for i, c := range rows {
				probes[i] = dedup.ContactProbe(i, c)
			}
			groups := dedup.Detect(probes)
			if drops := dedup.RowsToDrop(groups, nil); len(drops) > 0 {
				rows = dedup.FilterContacts(rows, drops)
				rows, iss = validate.Contacts(rows, opts)
				log.Printf("Merged %d duplicate rows", len(drops))
			}
		}
		fmt.Printf("Rows read: %d, dropped: %d, kept: %d\n", len(records), res.Dropped, len(rows))
		content = csvio.GenerateContacts(rows)
		total = len(rows)
		issues = iss
	}

	if *showWarnings {
		for _, w := range warnings {
			fmt.Println("  " + w)
		}
	}

	ready := schema.ReadyCount(total, issues)
	fmt.Printf("Ready to import: %d of %d (%d issues)\n", ready, total, len(issues))
	for _, t := range []schema.IssueType{schema.IssueMissing, schema.IssueInvalid, schema.IssueInfo} {
		n := 0
		for _, is := range issues {
			if is.Type == t {
				n++
			}
		}
		if n > 0 {
			fmt.Printf("  %s: %d\n", t, n)
		}
	}

	out := filepath.Join(*outDir, csvio.ExportFilename(workflow, time.Now()))
	if err := os.WriteFile(out, []byte(content), 0o644); err != nil {
		log.Fatalf("Failed to write %s: %v", out, err)
	}
	fmt.Printf("Wrote %s\n", out)
}

func readTable(path string) (csvio.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return csvio.Table{}, err
	}
	defer f.Close()
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return csvio.ParseXLSX(f)
	}
	return csvio.Parse(f)
}

func loadLookup(path, basePhone string) (*lookup.Index, error) {
	t, err := readTable(path)
	if err != nil {
		return nil, err
	}
	mappings := colmap.AutoMap(t.Headers, schema.WorkflowContacts)
	records := colmap.Apply(t.Headers, t.Rows, mappings)
	contacts := lookup.ParseContacts(records)
	log.Printf("Loaded %d contacts for lookup", len(contacts))
	return lookup.NewIndex(contacts, basePhone), nil
}

func fixContacts(rows []schema.Contact, issues []schema.Issue, opts validate.Options) ([]schema.Contact, []schema.Issue) {
	fixed := 0
	for _, is := range issues {
		if is.Type != schema.IssueMissing || is.SuggestedValue == "" {
			continue
		}
		if is.Row < len(rows) && rows[is.Row].SetField(is.Field, is.SuggestedValue) {
			fixed++
		}
	}
	if fixed == 0 {
		return rows, issues
	}
	log.Printf("Auto-fixed %d fields", fixed)
	return validate.Contacts(rows, opts)
}

func fixReservations(rows []schema.Reservation, issues []schema.Issue, opts validate.Options) ([]schema.Reservation, []schema.Issue) {
	fixed := 0
	for _, is := range issues {
		if is.Type != schema.IssueMissing || is.SuggestedValue == "" {
			continue
		}
		if is.Row < len(rows) && rows[is.Row].SetField(is.Field, is.SuggestedValue) {
			fixed++
		}
	}
	if fixed == 0 {
		return rows, issues
	}
	log.Printf("Auto-fixed %d fields", fixed)
	return validate.Reservations(rows, opts)
}
