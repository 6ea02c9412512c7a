// Package validate checks normalized records against the import schema
// rules and produces the field-level issue list driving the review UI.
// Validation is pure over its inputs: the same record set always yields
// the same issues.
package validate

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/moovs/dataprep/internal/phone"
	"github.com/moovs/dataprep/internal/placeholder"
	"github.com/moovs/dataprep/internal/schema"
)

// Options carries the run configuration the validator needs.
type Options struct {
	OperatorID string
	// BasePhone identifies the run's placeholder range so placeholder
	// phones report as informational rather than invalid.
	BasePhone string
}

var (
	dateShape  = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`)
	timeShape  = regexp.MustCompile(`(?i)^\d{1,2}:\d{2}\s?(AM|PM)$`)
	emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// ValidEmail checks basic email shape. Returns the error message used in
// issues when invalid.
func ValidEmail(email string) (bool, string) {
	if strings.TrimSpace(email) == "" {
		return false, "Email is required"
	}
	if !emailShape.MatchString(email) {
		return false, "Invalid email format"
	}
	return true, ""
}

// Contacts validates contact rows. Each row gets the operator id
// stamped and its phone reformatted when valid; issues are collected per
// row and field. Placeholder phones and emails are reported as info, not
// errors.
func Contacts(rows []schema.Contact, opts Options) ([]schema.Contact, []schema.Issue) {
	out := make([]schema.Contact, len(rows))
	var issues []schema.Issue
	for i, row := range rows {
		row.OperatorID = opts.OperatorID

		if strings.TrimSpace(row.FirstName) == "" {
			issues = append(issues, schema.Issue{Row: i, Field: "firstName", Type: schema.IssueMissing, Message: "First name is required"})
		}
		if strings.TrimSpace(row.LastName) == "" {
			issues = append(issues, schema.Issue{Row: i, Field: "lastName", Type: schema.IssueMissing, Message: "Last name is required"})
		}

		issues = append(issues, checkPhone(i, "mobilePhone", "Phone number", &row.MobilePhone, opts.BasePhone)...)

		if strings.TrimSpace(row.Email) == "" {
			issue := schema.Issue{Row: i, Field: "email", Type: schema.IssueMissing, Message: "Email is required"}
			if row.FirstName != "" && row.LastName != "" {
				issue.SuggestedValue = placeholder.Email(row.FirstName, row.LastName, row.MobilePhone)
			}
			issues = append(issues, issue)
		} else if placeholder.IsPlaceholderEmail(row.Email) {
			issues = append(issues, schema.Issue{Row: i, Field: "email", Type: schema.IssueInfo, Message: "Using placeholder email (no email was available)", CurrentValue: row.Email})
		} else if ok, msg := ValidEmail(row.Email); !ok {
			issues = append(issues, schema.Issue{Row: i, Field: "email", Type: schema.IssueInvalid, Message: msg, CurrentValue: row.Email})
		}

		out[i] = row
	}
	return out, issues
}

// Reservations validates reservation rows: dates, times, order type,
// group size, addresses, vehicle, and both contact quadruples.
func Reservations(rows []schema.Reservation, opts Options) ([]schema.Reservation, []schema.Issue) {
	out := make([]schema.Reservation, len(rows))
	var issues []schema.Issue
	for i, row := range rows {
		row.OperatorID = opts.OperatorID

		if strings.TrimSpace(row.PickUpDate) == "" {
			issues = append(issues, schema.Issue{Row: i, Field: "pickUpDate", Type: schema.IssueMissing, Message: "Pick up date is required (MM/DD/YYYY)"})
		} else if !dateShape.MatchString(row.PickUpDate) {
			issues = append(issues, schema.Issue{Row: i, Field: "pickUpDate", Type: schema.IssueInvalid, Message: "Invalid date format. Use MM/DD/YYYY", CurrentValue: row.PickUpDate})
		}

		if strings.TrimSpace(row.PickUpTime) == "" {
			issues = append(issues, schema.Issue{Row: i, Field: "pickUpTime", Type: schema.IssueMissing, Message: "Pick up time is required (HH:MM AM/PM)"})
		} else if !timeShape.MatchString(row.PickUpTime) {
			issues = append(issues, schema.Issue{Row: i, Field: "pickUpTime", Type: schema.IssueInvalid, Message: "Invalid time format. Use HH:MM AM/PM (e.g., 4:34 AM)", CurrentValue: row.PickUpTime})
		}

		// Blank order type defaults silently rather than erroring.
		if strings.TrimSpace(row.OrderType) == "" {
			row.OrderType = schema.DefaultOrderType
		} else if !schema.ValidOrderType(row.OrderType) {
			issues = append(issues, schema.Issue{Row: i, Field: "orderType", Type: schema.IssueInvalid, Message: "Invalid order type", CurrentValue: row.OrderType, SuggestedValue: schema.DefaultOrderType})
		}

		if strings.TrimSpace(row.TotalGroupSize) == "" {
			issues = append(issues, schema.Issue{Row: i, Field: "totalGroupSize", Type: schema.IssueMissing, Message: "Number of passengers is required", SuggestedValue: "1"})
		} else if n, err := strconv.Atoi(strings.TrimSpace(row.TotalGroupSize)); err != nil || n < 1 {
			issues = append(issues, schema.Issue{Row: i, Field: "totalGroupSize", Type: schema.IssueInvalid, Message: "Invalid passenger count", CurrentValue: row.TotalGroupSize})
		}

		if strings.TrimSpace(row.PickUpAddress) == "" {
			issues = append(issues, schema.Issue{Row: i, Field: "pickUpAddress", Type: schema.IssueMissing, Message: "Pick up address is required"})
		}
		if strings.TrimSpace(row.DropOffAddress) == "" {
			issues = append(issues, schema.Issue{Row: i, Field: "dropOffAddress", Type: schema.IssueMissing, Message: "Drop off address is required"})
		}

		issues = append(issues, checkContactRef(i, "bookingContact", "Booking", &row.Booking, opts.BasePhone)...)
		issues = append(issues, checkContactRef(i, "tripContact", "Trip", &row.Trip, opts.BasePhone)...)

		if strings.TrimSpace(row.Vehicle) == "" {
			issues = append(issues, schema.Issue{Row: i, Field: "vehicle", Type: schema.IssueMissing, Message: "Vehicle is required"})
		}

		out[i] = row
	}
	return out, issues
}

// checkPhone validates one phone field in place, reformatting it when
// valid. label is the human name used in messages.
func checkPhone(row int, field, label string, value *string, basePhone string) []schema.Issue {
	v := strings.TrimSpace(*value)
	if v == "" {
		return []schema.Issue{{Row: row, Field: field, Type: schema.IssueMissing, Message: label + " is required"}}
	}
	if placeholder.MatchesBase(v, basePhone) {
		return []schema.Issue{{Row: row, Field: field, Type: schema.IssueInfo, Message: "Using placeholder phone number (no phone was available)", CurrentValue: v}}
	}
	res := phone.Validate(v)
	if !res.Valid {
		return []schema.Issue{{Row: row, Field: field, Type: schema.IssueInvalid, Message: res.Err, CurrentValue: v, SuggestedValue: res.Suggestion}}
	}
	*value = res.Formatted
	return nil
}

// checkContactRef validates the four fields of a booking or trip
// contact.
func checkContactRef(row int, prefix, label string, c *schema.ContactRef, basePhone string) []schema.Issue {
	var issues []schema.Issue

	if strings.TrimSpace(c.FirstName) == "" {
		issues = append(issues, schema.Issue{Row: row, Field: prefix + "FirstName", Type: schema.IssueMissing, Message: label + " contact first name is required"})
	}
	if strings.TrimSpace(c.LastName) == "" {
		issues = append(issues, schema.Issue{Row: row, Field: prefix + "LastName", Type: schema.IssueMissing, Message: label + " contact last name is required"})
	}

	if strings.TrimSpace(c.Email) == "" {
		issue := schema.Issue{Row: row, Field: prefix + "Email", Type: schema.IssueMissing, Message: label + " contact email is required"}
		if c.FirstName != "" && c.LastName != "" {
			issue.SuggestedValue = placeholder.Email(c.FirstName, c.LastName, c.PhoneNumber)
		}
		issues = append(issues, issue)
	} else if placeholder.IsPlaceholderEmail(c.Email) {
		issues = append(issues, schema.Issue{Row: row, Field: prefix + "Email", Type: schema.IssueInfo, Message: label + " contact using placeholder email", CurrentValue: c.Email})
	} else if ok, msg := ValidEmail(c.Email); !ok {
		issues = append(issues, schema.Issue{Row: row, Field: prefix + "Email", Type: schema.IssueInvalid, Message: msg, CurrentValue: c.Email})
	}

	if strings.TrimSpace(c.PhoneNumber) == "" {
		issues = append(issues, schema.Issue{Row: row, Field: prefix + "PhoneNumber", Type: schema.IssueMissing, Message: label + " contact phone is required"})
	} else if placeholder.MatchesBase(c.PhoneNumber, basePhone) {
		issues = append(issues, schema.Issue{Row: row, Field: prefix + "PhoneNumber", Type: schema.IssueInfo, Message: label + " contact using placeholder phone", CurrentValue: c.PhoneNumber})
	} else if res := phone.Validate(c.PhoneNumber); !res.Valid {
		issues = append(issues, schema.Issue{Row: row, Field: prefix + "PhoneNumber", Type: schema.IssueInvalid, Message: res.Err, CurrentValue: c.PhoneNumber, SuggestedValue: res.Suggestion})
	}

	return issues
}
