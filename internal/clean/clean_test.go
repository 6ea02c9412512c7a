package clean

import (
	"strings"
	"testing"

	"github.com/moovs/dataprep/internal/placeholder"
	"github.com/moovs/dataprep/internal/schema"
)

func TestRecoverColumnShift(t *testing.T) {
	t.Run("phone in email slot", func(t *testing.T) {
		rec := schema.Record{
			"firstName": "John", "lastName": "Smith",
			"email": "206-555-0199", "_homePhone": "john@example.com",
		}
		got, warnings := RecoverColumnShift(rec)
		if got.Get("email") != "john@example.com" {
			t.Errorf("email = %q", got.Get("email"))
		}
		if got.Get("mobilePhone") != "206-555-0199" {
			t.Errorf("mobilePhone = %q", got.Get("mobilePhone"))
		}
		if len(warnings) == 0 {
			t.Error("expected a shift warning")
		}
	})

	t.Run("zip in phone slot", func(t *testing.T) {
		rec := schema.Record{
			"firstName": "Jane", "mobilePhone": "98101", "_homePhone": "206-555-0142",
		}
		got, _ := RecoverColumnShift(rec)
		if got.Get("mobilePhone") != "206-555-0142" {
			t.Errorf("mobilePhone = %q", got.Get("mobilePhone"))
		}
		if got.Get("_homePhone") != "" {
			t.Error("recovered value should be cleared from its source field")
		}
	})

	t.Run("no shift leaves record untouched", func(t *testing.T) {
		rec := schema.Record{"firstName": "John", "email": "john@example.com", "mobilePhone": "206-555-0199"}
		got, warnings := RecoverColumnShift(rec)
		if len(warnings) != 0 {
			t.Errorf("warnings = %v", warnings)
		}
		if got.Get("email") != "john@example.com" {
			t.Errorf("email = %q", got.Get("email"))
		}
	})
}

func TestStripNameDecorations(t *testing.T) {
	rec := schema.Record{"firstName": "John | VIP client", "lastName": "Smith (Acme Corp)"}
	got, warnings := StripNameDecorations(rec)
	if got.Get("firstName") != "John" {
		t.Errorf("firstName = %q", got.Get("firstName"))
	}
	if got.Get("lastName") != "Smith" {
		t.Errorf("lastName = %q", got.Get("lastName"))
	}
	if len(warnings) != 2 {
		t.Errorf("warnings = %v", warnings)
	}
}

func TestSplitCombinedNames(t *testing.T) {
	tests := []struct {
		name      string
		in        schema.Record
		wantFirst string
		wantLast  string
	}{
		{
			"and pattern keeps first person",
			schema.Record{"firstName": "Alice and Bob", "lastName": "Smith"},
			"Alice", "Smith",
		},
		{
			"full name with empty last",
			schema.Record{"firstName": "John Smith", "lastName": ""},
			"John", "Smith",
		},
		{
			"full name with joiner last",
			schema.Record{"firstName": "Mary Jane Watson", "lastName": "& guest"},
			"Mary", "Jane Watson",
		},
		{
			"normal record untouched",
			schema.Record{"firstName": "John", "lastName": "Smith"},
			"John", "Smith",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := SplitCombinedNames(tt.in)
			if got.Get("firstName") != tt.wantFirst || got.Get("lastName") != tt.wantLast {
				t.Errorf("got %q / %q, want %q / %q",
					got.Get("firstName"), got.Get("lastName"), tt.wantFirst, tt.wantLast)
			}
		})
	}
}

func TestTrimLastNameJunk(t *testing.T) {
	rec := schema.Record{"lastName": "(& Smith))"}
	got, _ := TrimLastNameJunk(rec)
	if got.Get("lastName") != "Smith" {
		t.Errorf("lastName = %q", got.Get("lastName"))
	}

	// Trimming to nothing keeps the original.
	rec = schema.Record{"lastName": "(&-"}
	got, warnings := TrimLastNameJunk(rec)
	if got.Get("lastName") != "(&-" || len(warnings) != 0 {
		t.Errorf("lastName = %q, warnings = %v", got.Get("lastName"), warnings)
	}
}

func TestDetectEventEntry(t *testing.T) {
	t.Run("single token before keyword kept", func(t *testing.T) {
		rec := schema.Record{"firstName": "Sarah", "lastName": "Johnson wedding"}
		got, _ := DetectEventEntry(rec)
		if got.Get("lastName") != "Johnson" {
			t.Errorf("lastName = %q", got.Get("lastName"))
		}
		if got.Get(BusinessFlag) == "true" {
			t.Error("record with a recoverable name should not be flagged")
		}
	})

	t.Run("unrecoverable event flagged", func(t *testing.T) {
		rec := schema.Record{"firstName": "The", "lastName": "Smith Jones reception party"}
		got, _ := DetectEventEntry(rec)
		if got.Get(BusinessFlag) != "true" {
			t.Error("expected business flag")
		}
	})
}

func TestDetectBusinessEntry(t *testing.T) {
	tests := []struct {
		first, last string
		want        bool
	}{
		{"Accounts", "Payable", true},
		{"VIP Guest", "", true},
		{"Dispatch", "Office", true},
		{"John", "Smith", false},
		{"Victoria", "Payne", false},
	}
	for _, tt := range tests {
		rec := schema.Record{"firstName": tt.first, "lastName": tt.last}
		got, _ := DetectBusinessEntry(rec)
		if flagged := got.Get(BusinessFlag) == "true"; flagged != tt.want {
			t.Errorf("DetectBusinessEntry(%q, %q) flagged = %v, want %v", tt.first, tt.last, flagged, tt.want)
		}
	}
}

func TestPhoneFallback(t *testing.T) {
	alloc := placeholder.NewAllocator(placeholder.Config{})
	step := PhoneFallback(alloc)

	t.Run("home phone preferred", func(t *testing.T) {
		rec := schema.Record{"firstName": "John", "_homePhone": "2065550199", "_officePhone": "2065550111"}
		got, warnings := step(rec)
		if got.Get("mobilePhone") != "+1 206-555-0199" {
			t.Errorf("mobilePhone = %q", got.Get("mobilePhone"))
		}
		if len(warnings) != 1 || !strings.Contains(warnings[0], "home phone") {
			t.Errorf("warnings = %v", warnings)
		}
	})

	t.Run("placeholder when nothing available", func(t *testing.T) {
		rec := schema.Record{"firstName": "Jane"}
		got, _ := step(rec)
		if got.Get("mobilePhone") != "+1 202-555-0100" {
			t.Errorf("mobilePhone = %q", got.Get("mobilePhone"))
		}
	})

	t.Run("existing phone reformatted only", func(t *testing.T) {
		rec := schema.Record{"mobilePhone": "(206) 555-0199"}
		got, warnings := step(rec)
		if got.Get("mobilePhone") != "+1 206-555-0199" {
			t.Errorf("mobilePhone = %q", got.Get("mobilePhone"))
		}
		if len(warnings) != 0 {
			t.Errorf("warnings = %v", warnings)
		}
	})
}

func TestFirstEmail(t *testing.T) {
	rec := schema.Record{"email": "a@example.com; b@example.com"}
	got, warnings := FirstEmail(rec)
	if got.Get("email") != "a@example.com" {
		t.Errorf("email = %q", got.Get("email"))
	}
	if len(warnings) != 1 {
		t.Errorf("warnings = %v", warnings)
	}

	rec = schema.Record{"email": "only@example.com"}
	got, warnings = FirstEmail(rec)
	if got.Get("email") != "only@example.com" || len(warnings) != 0 {
		t.Errorf("email = %q, warnings = %v", got.Get("email"), warnings)
	}
}

func TestRebuildAddress(t *testing.T) {
	t.Run("assembles from parts", func(t *testing.T) {
		rec := schema.Record{"_street": "123 Pine St", "_city": "Seattle", "_state": "wa", "_zip": "98101"}
		got, _ := RebuildAddress(rec)
		if got.Get("homeAddress") != "123 Pine St, Seattle, WA, 98101" {
			t.Errorf("homeAddress = %q", got.Get("homeAddress"))
		}
	})

	t.Run("garbage street discarded", func(t *testing.T) {
		rec := schema.Record{"_street": "Hotel TBD", "_city": "Seattle", "_state": "WA"}
		got, warnings := RebuildAddress(rec)
		if got.Get("homeAddress") != "Seattle, WA" {
			t.Errorf("homeAddress = %q", got.Get("homeAddress"))
		}
		if len(warnings) == 0 {
			t.Error("expected a discard warning")
		}
	})

	t.Run("city in state column repaired", func(t *testing.T) {
		rec := schema.Record{"_street": "123 Pine St", "_state": "Seattle", "_zip": "WA"}
		got, _ := RebuildAddress(rec)
		if got.Get("homeAddress") != "123 Pine St, Seattle, WA" {
			t.Errorf("homeAddress = %q", got.Get("homeAddress"))
		}
	})

	t.Run("existing address untouched", func(t *testing.T) {
		rec := schema.Record{"homeAddress": "1 Main St", "_street": "other"}
		got, _ := RebuildAddress(rec)
		if got.Get("homeAddress") != "1 Main St" {
			t.Errorf("homeAddress = %q", got.Get("homeAddress"))
		}
	})
}

func TestPurgeScratch(t *testing.T) {
	rec := schema.Record{"firstName": "John", "_homePhone": "x", BusinessFlag: "true"}
	got, _ := PurgeScratch(rec)
	if len(got) != 1 || got.Get("firstName") != "John" {
		t.Errorf("purged record = %v", got)
	}
}

func TestFilters(t *testing.T) {
	if PreFilter(schema.Record{"email": "x@example.com"}) {
		t.Error("nameless record should not pass the pre-filter")
	}
	if !PreFilter(schema.Record{"lastName": "Smith"}) {
		t.Error("record with a last name should pass the pre-filter")
	}
	if PostFilter(schema.Record{"firstName": "John", BusinessFlag: "true"}) {
		t.Error("flagged record should not pass the post-filter")
	}
	if !PostFilter(schema.Record{"firstName": "John"}) {
		t.Error("clean named record should pass the post-filter")
	}
}

func TestSplitFullName(t *testing.T) {
	tests := []struct {
		full      string
		wantFirst string
		wantLast  string
	}{
		{"John Smith", "John", "Smith"},
		{"Mary Jane Watson", "Mary", "Jane Watson"},
		{"Madonna", "Madonna", ""},
		{"John Smith | repeat client", "John", "Smith"},
		{"John Smith (Acme Corp)", "John", "Smith"},
		{"Black Sedan", "", ""},
		{"Fuel Surcharge", "", ""},
		{"Front Desk", "", ""},
		{"", "", ""},
		{"   ", "", ""},
	}
	for _, tt := range tests {
		first, last := SplitFullName(tt.full)
		if first != tt.wantFirst || last != tt.wantLast {
			t.Errorf("SplitFullName(%q) = %q / %q, want %q / %q", tt.full, first, last, tt.wantFirst, tt.wantLast)
		}
	}
}

func TestChainOrder(t *testing.T) {
	alloc := placeholder.NewAllocator(placeholder.Config{})
	steps := Chain(alloc)
	want := []string{
		"column-shift", "name-decorations", "name-split", "lastname-junk",
		"event-entry", "business-entry", "phone-fallback", "first-email",
		"address-rebuild", "scratch-purge",
	}
	if len(steps) != len(want) {
		t.Fatalf("chain has %d steps, want %d", len(steps), len(want))
	}
	for i, s := range steps {
		if s.Name != want[i] {
			t.Errorf("step %d = %q, want %q", i, s.Name, want[i])
		}
	}
}
