package models

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusCompleted BookingStatus = "completed"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
	StatusCancelled: {},
	StatusCompleted: {},
}

// BookingStatuses lists every status in lifecycle order.
var BookingStatuses = []BookingStatus{StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted}

// ParseBookingStatus accepts only the exact lower-case status names.
func ParseBookingStatus(raw string) (BookingStatus, error) {
	s := BookingStatus(raw)
	if !s.IsValid() {
		return "", &ValidationError{Field: "status", Msg: "Invalid status"}
	}
	return s, nil
}

func (s BookingStatus) IsValid() bool {
	_, ok := bookingTransitions[s]
	return ok
}

// IsActive reports whether a booking in s holds its event day.
func (s BookingStatus) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

func (s BookingStatus) IsTerminal() bool {
	return s.IsValid() && len(bookingTransitions[s]) == 0
}

// AllowedTransitions returns the states reachable from s in one step.
func (s BookingStatus) AllowedTransitions() []BookingStatus {
	next := bookingTransitions[s]
	out := make([]BookingStatus, len(next))
	copy(out, next)
	return out
}

func (s BookingStatus) CanTransitionTo(to BookingStatus) bool {
	for _, next := range bookingTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// ContactStatus tracks how far an inquiry has been handled.
type ContactStatus string

const (
	ContactNew     ContactStatus = "new"
	ContactRead    ContactStatus = "read"
	ContactReplied ContactStatus = "replied"
)

func ParseContactStatus(raw string) (ContactStatus, error) {
	switch s := ContactStatus(raw); s {
	case ContactNew, ContactRead, ContactReplied:
		return s, nil
	}
	return "", &ValidationError{Field: "status", Msg: "Invalid status"}
}
