package models

import "time"

// Booking is a customer's hold on one calendar day.
type Booking struct {
	ID             string         `bson:"id" json:"id"`                             // Unique booking identifier (UUID)
	Name           string         `bson:"name" json:"name"`                         // Customer name
	Email          string         `bson:"email" json:"email"`                       // Lower-cased customer email
	Phone          string         `bson:"phone" json:"phone"`                       // Digits with optional leading "+"
	EventDate      time.Time      `bson:"eventDate" json:"eventDate"`               // Instant the customer asked for
	EventDay       string         `bson:"eventDay" json:"eventDay"`                 // "YYYY-MM-DD" in the reference timezone
	Package        PackageKind    `bson:"package" json:"package"`                   // Basic, Popular, Advance or Custom Package
	PackageDetails map[string]any `bson:"packageDetails" json:"packageDetails"`     // Opaque, stored and returned as-is
	TotalPrice     float64        `bson:"totalPrice" json:"totalPrice"`             // Non-negative, fixed at creation
	Message        string         `bson:"message,omitempty" json:"message,omitempty"` // Optional note from the customer
	Status         BookingStatus  `bson:"status" json:"status"`
	CreatedAt      time.Time      `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time      `bson:"updatedAt" json:"updatedAt"`
}

// BookingSummary is the public view returned after a submission.
type BookingSummary struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Package    PackageKind   `json:"package"`
	EventDate  time.Time     `json:"eventDate"`
	TotalPrice float64       `json:"totalPrice"`
	Status     BookingStatus `json:"status"`
}

// Summary returns the public view of b.
func (b *Booking) Summary() BookingSummary {
	return BookingSummary{
		ID:         b.ID,
		Name:       b.Name,
		Package:    b.Package,
		EventDate:  b.EventDate,
		TotalPrice: b.TotalPrice,
		Status:     b.Status,
	}
}

// HoldsDay reports whether b occupies its event day.
func (b *Booking) HoldsDay() bool {
	return b.Status.IsActive()
}

// BookingDraft is a validated, normalized submission ready to be reserved.
type BookingDraft struct {
	Name           string
	Email          string
	Phone          string
	EventDate      time.Time
	EventDay       string
	Package        PackageKind
	PackageDetails map[string]any
	TotalPrice     float64
	Message        string
}

// BookingFilter narrows an admin listing.
type BookingFilter struct {
	Status *BookingStatus
	From   *time.Time // inclusive, compared against EventDate
	To     *time.Time // inclusive
	Page   int
	Limit  int
}

// BookingPage is one page of a listing, newest first.
type BookingPage struct {
	Items []Booking
	Total int64
	Page  int
	Limit int
}

// TotalPages returns the number of pages for the listing.
func (p *BookingPage) TotalPages() int {
	return totalPages(p.Total, p.Limit)
}

func totalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
