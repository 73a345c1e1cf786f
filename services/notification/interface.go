package notification

import (
	"context"

	"decorbook/models"
)

// Message kinds.
const (
	KindCustomerConfirmation = "customer_confirmation"
	KindAdminAlert           = "admin_alert"
	KindStatusUpdate         = "status_update"
	KindContactAlert         = "contact_alert"
)

// Message is one rendered email.
type Message struct {
	Kind    string
	Ref     string
	To      string
	Subject string
	HTML    string
}

// Mailer delivers a rendered message. Implementations send directly or hand
// the message to a queue.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// NotificationService is the gateway the booking and contact flows talk to.
type NotificationService interface {
	BookingCreated(ctx context.Context, b *models.Booking) error
	BookingStatusChanged(ctx context.Context, b *models.Booking) error
	ContactReceived(ctx context.Context, m *models.ContactMessage) error
}
