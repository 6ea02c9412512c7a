package schema

import (
	"strconv"
	"strings"
)

// NumStops is the number of intermediate stop slots in the reservation
// schema.
const NumStops = 10

// Contact is one row of the contact import schema.
type Contact struct {
	OperatorID  string `json:"operatorId"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	MobilePhone string `json:"mobilePhone"`
	Email       string `json:"email"`
	HomeAddress string `json:"homeAddress"`
	WorkAddress string `json:"workAddress"`
	Preferences string `json:"preferences"`
}

// Field returns the value of the named canonical field.
func (c *Contact) Field(name string) string {
	switch name {
	case "operatorId":
		return c.OperatorID
	case "firstName":
		return c.FirstName
	case "lastName":
		return c.LastName
	case "mobilePhone":
		return c.MobilePhone
	case "email":
		return c.Email
	case "homeAddress":
		return c.HomeAddress
	case "workAddress":
		return c.WorkAddress
	case "preferences":
		return c.Preferences
	}
	return ""
}

// SetField sets the named canonical field. Returns false for an unknown
// field name.
func (c *Contact) SetField(name, value string) bool {
	switch name {
	case "operatorId":
		c.OperatorID = value
	case "firstName":
		c.FirstName = value
	case "lastName":
		c.LastName = value
	case "mobilePhone":
		c.MobilePhone = value
	case "email":
		c.Email = value
	case "homeAddress":
		c.HomeAddress = value
	case "workAddress":
		c.WorkAddress = value
	case "preferences":
		c.Preferences = value
	default:
		return false
	}
	return true
}

// ExportRow returns the contact's cells in ContactHeaders order.
func (c *Contact) ExportRow() []string {
	row := make([]string, len(ContactHeaders))
	for i, h := range ContactHeaders {
		row[i] = c.Field(h)
	}
	return row
}

// ContactRef is the booking- or trip-side contact embedded in a
// reservation.
type ContactRef struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
}

// Named reports whether the contact has at least one name component.
func (c ContactRef) Named() bool {
	return strings.TrimSpace(c.FirstName) != "" || strings.TrimSpace(c.LastName) != ""
}

// Stop is one intermediate stop on a reservation.
type Stop struct {
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

// Reservation is one row of the reservation import schema.
type Reservation struct {
	OperatorID         string         `json:"operatorId"`
	ConfirmationNumber string         `json:"confirmationNumber"`
	PickUpDate         string         `json:"pickUpDate"`
	PickUpTime         string         `json:"pickUpTime"`
	DropOffDate        string         `json:"dropOffDate"`
	DropOffTime        string         `json:"dropOffTime"`
	OrderType          string         `json:"orderType"`
	TotalGroupSize     string         `json:"totalGroupSize"`
	PickUpAddress      string         `json:"pickUpAddress"`
	PickUpNotes        string         `json:"pickUpNotes"`
	DropOffAddress     string         `json:"dropOffAddress"`
	DropOffNotes       string         `json:"dropOffNotes"`
	Booking            ContactRef     `json:"bookingContact"`
	Trip               ContactRef     `json:"tripContact"`
	Vehicle            string         `json:"vehicle"`
	TripNotes          string         `json:"tripNotes"`
	BaseRateAmt        string         `json:"baseRateAmt"`
	Stops              [NumStops]Stop `json:"stops"`
}

// Field returns the value of the named canonical field, including the
// flattened bookingContact*/tripContact* and stopN* names used by the
// export schema.
func (r *Reservation) Field(name string) string {
	switch name {
	case "operatorId":
		return r.OperatorID
	case "confirmationNumber":
		return r.ConfirmationNumber
	case "pickUpDate":
		return r.PickUpDate
	case "pickUpTime":
		return r.PickUpTime
	case "dropOffDate":
		return r.DropOffDate
	case "dropOffTime":
		return r.DropOffTime
	case "orderType":
		return r.OrderType
	case "totalGroupSize":
		return r.TotalGroupSize
	case "pickUpAddress":
		return r.PickUpAddress
	case "pickUpNotes":
		return r.PickUpNotes
	case "dropOffAddress":
		return r.DropOffAddress
	case "dropOffNotes":
		return r.DropOffNotes
	case "vehicle":
		return r.Vehicle
	case "tripNotes":
		return r.TripNotes
	case "baseRateAmt":
		return r.BaseRateAmt
	}
	if rest, ok := strings.CutPrefix(name, "bookingContact"); ok {
		return contactRefField(&r.Booking, rest)
	}
	if rest, ok := strings.CutPrefix(name, "tripContact"); ok {
		return contactRefField(&r.Trip, rest)
	}
	if n, part, ok := parseStopField(name); ok {
		if part == "Address" {
			return r.Stops[n-1].Address
		}
		return r.Stops[n-1].Notes
	}
	return ""
}

// SetField sets the named canonical field. Returns false for an unknown
// field name.
func (r *Reservation) SetField(name, value string) bool {
	switch name {
	case "operatorId":
		r.OperatorID = value
	case "confirmationNumber":
		r.ConfirmationNumber = value
	case "pickUpDate":
		r.PickUpDate = value
	case "pickUpTime":
		r.PickUpTime = value
	case "dropOffDate":
		r.DropOffDate = value
	case "dropOffTime":
		r.DropOffTime = value
	case "orderType":
		r.OrderType = value
	case "totalGroupSize":
		r.TotalGroupSize = value
	case "pickUpAddress":
		r.PickUpAddress = value
	case "pickUpNotes":
		r.PickUpNotes = value
	case "dropOffAddress":
		r.DropOffAddress = value
	case "dropOffNotes":
		r.DropOffNotes = value
	case "vehicle":
		r.Vehicle = value
	case "tripNotes":
		r.TripNotes = value
	case "baseRateAmt":
		r.BaseRateAmt = value
	default:
		if rest, ok := strings.CutPrefix(name, "bookingContact"); ok {
			return setContactRefField(&r.Booking, rest, value)
		}
		if rest, ok := strings.CutPrefix(name, "tripContact"); ok {
			return setContactRefField(&r.Trip, rest, value)
		}
		if n, part, ok := parseStopField(name); ok {
			if part == "Address" {
				r.Stops[n-1].Address = value
			} else {
				r.Stops[n-1].Notes = value
			}
			return true
		}
		return false
	}
	return true
}

// ExportRow returns the reservation's cells in ReservationHeaders order.
func (r *Reservation) ExportRow() []string {
	row := make([]string, len(ReservationHeaders))
	for i, h := range ReservationHeaders {
		row[i] = r.Field(h)
	}
	return row
}

func contactRefField(c *ContactRef, part string) string {
	switch part {
	case "FirstName":
		return c.FirstName
	case "LastName":
		return c.LastName
	case "Email":
		return c.Email
	case "PhoneNumber":
		return c.PhoneNumber
	}
	return ""
}

func setContactRefField(c *ContactRef, part, value string) bool {
	switch part {
	case "FirstName":
		c.FirstName = value
	case "LastName":
		c.LastName = value
	case "Email":
		c.Email = value
	case "PhoneNumber":
		c.PhoneNumber = value
	default:
		return false
	}
	return true
}

func stopFieldName(n int, part string) string {
	return "stop" + strconv.Itoa(n) + part
}

// parseStopField recognizes stop1Address..stop10Notes.
func parseStopField(name string) (n int, part string, ok bool) {
	rest, found := strings.CutPrefix(name, "stop")
	if !found {
		return 0, "", false
	}
	for _, p := range []string{"Address", "Notes"} {
		if num, cut := strings.CutSuffix(rest, p); cut {
			i, err := strconv.Atoi(num)
			if err != nil || i < 1 || i > NumStops {
				return 0, "", false
			}
			return i, p, true
		}
	}
	return 0, "", false
}
