package logger

import "testing"

func TestRedactEmail(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"john.doe@example.com", "jo***@example.com"},
		{"ab@example.com", "***@example.com"},
		{"not-an-email", "***@***"},
		{"a@b@c", "***@***"},
	}
	for _, tt := range tests {
		if got := RedactEmail(tt.in); got != tt.want {
			t.Errorf("RedactEmail(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRedactPhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"+1 206-555-0199", "***0199"},
		{"2065550199", "***0199"},
		{"123", "***"},
		{"", "***"},
	}
	for _, tt := range tests {
		if got := RedactPhone(tt.in); got != tt.want {
			t.Errorf("RedactPhone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRedactPIIValue(t *testing.T) {
	if got := redactPIIValue("user_email", "jane@example.com"); got != "ja***@example.com" {
		t.Errorf("email field = %q", got)
	}
	if got := redactPIIValue("mobile_phone", "+1 206-555-0199"); got != "***0199" {
		t.Errorf("phone field = %q", got)
	}
	if got := redactPIIValue("note", "reach me at jane@example.com today"); got != "reach me at ja***@example.com today" {
		t.Errorf("embedded email = %q", got)
	}
	if got := redactPIIValue("count", "42"); got != "42" {
		t.Errorf("plain value = %q", got)
	}
}
