package notification

import (
	"strings"
	"time"

	"decorbook/models"
)

// Composer turns domain events into messages.
type Composer struct {
	brand      string
	adminEmail string
	loc        *time.Location
	now        func() time.Time
}

func NewComposer(brand, adminEmail string, loc *time.Location) *Composer {
	if loc == nil {
		loc = time.UTC
	}
	return &Composer{brand: brand, adminEmail: adminEmail, loc: loc, now: time.Now}
}

func (c *Composer) data(heading string) templateData {
	return templateData{Brand: c.brand, Heading: heading, Year: c.now().In(c.loc).Year()}
}

// BookingCreated yields the customer confirmation and, when an admin
// address is configured, the admin alert.
func (c *Composer) BookingCreated(b *models.Booking) ([]Message, error) {
	d := c.data("Booking Confirmation")
	d.Booking = b
	d.EventDate = formatDay(b.EventDate, c.loc)
	d.Status = strings.ToUpper(string(b.Status))

	html, err := render(KindCustomerConfirmation, d)
	if err != nil {
		return nil, err
	}
	msgs := []Message{{
		Kind:    KindCustomerConfirmation,
		Ref:     b.ID,
		To:      b.Email,
		Subject: "Booking Confirmation - " + c.brand,
		HTML:    html,
	}}

	if c.adminEmail == "" {
		return msgs, nil
	}
	d.Heading = "New Booking Received"
	html, err = render(KindAdminAlert, d)
	if err != nil {
		return nil, err
	}
	return append(msgs, Message{
		Kind:    KindAdminAlert,
		Ref:     b.ID,
		To:      c.adminEmail,
		Subject: "New Booking Received - " + c.brand,
		HTML:    html,
	}), nil
}

// StatusChanged tells the customer about a confirm or cancel.
func (c *Composer) StatusChanged(b *models.Booking) ([]Message, error) {
	label := titleCase(string(b.Status))
	d := c.data("Booking " + label)
	d.Booking = b
	d.EventDate = formatDay(b.EventDate, c.loc)
	d.Status = label

	html, err := render(KindStatusUpdate, d)
	if err != nil {
		return nil, err
	}
	return []Message{{
		Kind:    KindStatusUpdate,
		Ref:     b.ID,
		To:      b.Email,
		Subject: "Booking " + label + " - " + c.brand,
		HTML:    html,
	}}, nil
}

// ContactReceived alerts the admin. Without an admin address there is no one
// to tell.
func (c *Composer) ContactReceived(m *models.ContactMessage) ([]Message, error) {
	if c.adminEmail == "" {
		return nil, nil
	}
	d := c.data("New Contact Form Submission")
	d.Contact = m
	d.Submitted = m.CreatedAt.In(c.loc).Format("2 Jan 2006, 3:04 PM")

	html, err := render(KindContactAlert, d)
	if err != nil {
		return nil, err
	}
	return []Message{{
		Kind:    KindContactAlert,
		Ref:     m.ID,
		To:      c.adminEmail,
		Subject: "New Contact Form Submission - " + c.brand,
		HTML:    html,
	}}, nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
