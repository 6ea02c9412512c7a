package phone

import "testing"

func TestValidate(t *testing.T) {
	tests := []struct {
		name          string
		raw           string
		wantValid     bool
		wantFormatted string
	}{
		{"bare 10 digit US", "2065550199", true, "+1 206-555-0199"},
		{"formatted US", "(206) 555-0199", true, "+1 206-555-0199"},
		{"already international", "+1 206-555-0199", true, "+1 206-555-0199"},
		{"00 international prefix", "0044 20 7946 0958", true, "+44 20 7946 0958"},
		{"too short", "12345", false, ""},
		{"letters", "call me maybe", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(tt.raw)
			if got.Valid != tt.wantValid {
				t.Fatalf("Validate(%q).Valid = %v, want %v (err=%q)", tt.raw, got.Valid, tt.wantValid, got.Err)
			}
			if tt.wantValid && got.Formatted != tt.wantFormatted {
				t.Errorf("Validate(%q).Formatted = %q, want %q", tt.raw, got.Formatted, tt.wantFormatted)
			}
		})
	}
}

func TestValidateEmpty(t *testing.T) {
	got := Validate("   ")
	if got.Valid {
		t.Fatal("blank phone should not validate")
	}
	if got.Err != "Phone number is required" {
		t.Errorf("Err = %q", got.Err)
	}
}

func TestValidateSuggestion(t *testing.T) {
	// Area code 123 is not assignable, so parsing fails; the 10-digit
	// shape should still produce a +1 suggestion.
	got := Validate("123-456-7890")
	if got.Valid {
		t.Fatal("123 area code should not validate")
	}
	if got.Suggestion != "+11234567890" {
		t.Errorf("Suggestion = %q, want %q", got.Suggestion, "+11234567890")
	}
	if got.Err != "Invalid phone number format" {
		t.Errorf("Err = %q", got.Err)
	}
}

func TestDigits(t *testing.T) {
	if got := Digits("+1 (206) 555-0199"); got != "12065550199" {
		t.Errorf("Digits = %q", got)
	}
	if got := Digits("no digits"); got != "" {
		t.Errorf("Digits = %q", got)
	}
}

func TestLooksLikePhone(t *testing.T) {
	tests := []struct {
		val  string
		want bool
	}{
		{"206-555-0199", true},
		{"+1 (206) 555-0199", true},
		{"2065550199", true},
		{"98101", false},
		{"john@example.com", false},
		{"", false},
		{"206-555-abcd", false},
	}
	for _, tt := range tests {
		if got := LooksLikePhone(tt.val); got != tt.want {
			t.Errorf("LooksLikePhone(%q) = %v, want %v", tt.val, got, tt.want)
		}
	}
}

func TestFormatPassthrough(t *testing.T) {
	if got := Format("not a phone"); got != "not a phone" {
		t.Errorf("Format should return invalid input unchanged, got %q", got)
	}
	if got := Format("2065550199"); got != "+1 206-555-0199" {
		t.Errorf("Format = %q", got)
	}
}
