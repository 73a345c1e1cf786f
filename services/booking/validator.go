package booking

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"decorbook/models"
	"decorbook/utils"
)

const (
	maxNameLen    = 100
	maxMessageLen = 500
)

// Submission is a booking request as the client sent it. Pointers and raw JSON
// let the validator tell a missing field from a zero value.
type Submission struct {
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	EventDate      string          `json:"eventDate"`
	Package        string          `json:"package"`
	PackageDetails json.RawMessage `json:"packageDetails"`
	TotalPrice     *float64        `json:"totalPrice"`
	Message        string          `json:"message"`
}

// Layouts accepted for eventDate. Zone-less layouts are read in the reference
// timezone; a bare date means midnight there.
var eventDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	models.DayLayout,
}

// Validator applies the booking rules in a fixed order and reports the first
// one that fails.
type Validator struct {
	loc *time.Location
}

func NewValidator(loc *time.Location) *Validator {
	if loc == nil {
		loc = time.UTC
	}
	return &Validator{loc: loc}
}

func invalid(field, msg string) error {
	return &models.ValidationError{Field: field, Msg: msg}
}

// Validate returns the normalized draft or a *models.ValidationError. It has
// no side effects; now is the instant "future" is measured from.
func (v *Validator) Validate(sub Submission, now time.Time) (models.BookingDraft, error) {
	name := strings.TrimSpace(sub.Name)
	email := utils.NormalizeEmail(sub.Email)
	phone := strings.TrimSpace(sub.Phone)
	rawDate := strings.TrimSpace(sub.EventDate)
	rawPackage := strings.TrimSpace(sub.Package)
	message := strings.TrimSpace(sub.Message)

	required := []struct {
		field   string
		present bool
	}{
		{"name", name != ""},
		{"email", email != ""},
		{"phone", phone != ""},
		{"eventDate", rawDate != ""},
		{"package", rawPackage != ""},
		{"packageDetails", hasJSONValue(sub.PackageDetails)},
		{"totalPrice", sub.TotalPrice != nil},
	}
	for _, r := range required {
		if !r.present {
			return models.BookingDraft{}, invalid(r.field, r.field+" is required")
		}
	}

	var details map[string]any
	if err := json.Unmarshal(sub.PackageDetails, &details); err != nil || details == nil {
		return models.BookingDraft{}, invalid("packageDetails", "packageDetails must be an object")
	}

	if utf8.RuneCountInString(name) > maxNameLen {
		return models.BookingDraft{}, invalid("name", "name must be at most 100 characters")
	}
	if utf8.RuneCountInString(message) > maxMessageLen {
		return models.BookingDraft{}, invalid("message", "message must be at most 500 characters")
	}
	if !utils.ValidEmail(email) {
		return models.BookingDraft{}, invalid("email", "email must be a valid email address")
	}
	if !utils.ValidPhone(phone) {
		return models.BookingDraft{}, invalid("phone", "phone must be a valid phone number")
	}

	eventDate, day, err := v.ValidateEventDate(rawDate, now)
	if err != nil {
		return models.BookingDraft{}, err
	}

	pkg, ok := models.ParsePackageKind(rawPackage)
	if !ok {
		return models.BookingDraft{}, invalid("package", "package must be one of Basic, Popular, Advance, Custom Package")
	}
	if *sub.TotalPrice < 0 {
		return models.BookingDraft{}, invalid("totalPrice", "totalPrice must not be negative")
	}

	return models.BookingDraft{
		Name:           name,
		Email:          email,
		Phone:          phone,
		EventDate:      eventDate,
		EventDay:       day,
		Package:        pkg,
		PackageDetails: details,
		TotalPrice:     *sub.TotalPrice,
		Message:        message,
	}, nil
}

// ValidateEventDate parses raw and requires it to be strictly after now. It
// also returns the day bucket the date falls in.
func (v *Validator) ValidateEventDate(raw string, now time.Time) (time.Time, string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, "", invalid("eventDate", "Event date is required")
	}
	t, ok := v.parseEventDate(raw)
	if !ok {
		return time.Time{}, "", invalid("eventDate", "Event date must be a valid date")
	}
	if !t.After(now) {
		return time.Time{}, "", invalid("eventDate", "Event date must be in the future")
	}
	return t, models.DayOf(t, v.loc), nil
}

func (v *Validator) parseEventDate(raw string) (time.Time, bool) {
	for _, layout := range eventDateLayouts {
		var (
			t   time.Time
			err error
		)
		if layout == time.RFC3339Nano {
			t, err = time.Parse(layout, raw)
		} else {
			t, err = time.ParseInLocation(layout, raw, v.loc)
		}
		if err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func hasJSONValue(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}
