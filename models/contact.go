package models

import "time"

// ContactMessage is an inquiry left through the contact form.
type ContactMessage struct {
	ID        string        `bson:"id" json:"id"`
	Name      string        `bson:"name" json:"name"`
	Email     string        `bson:"email" json:"email"`
	Phone     string        `bson:"phone,omitempty" json:"phone,omitempty"`
	Message   string        `bson:"message" json:"message"`
	Status    ContactStatus `bson:"status" json:"status"`
	CreatedAt time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt" json:"updatedAt"`
}

type ContactDraft struct {
	Name    string
	Email   string
	Phone   string
	Message string
}

type ContactFilter struct {
	Status *ContactStatus
	Page   int
	Limit  int
}

type ContactPage struct {
	Items []ContactMessage
	Total int64
	Page  int
	Limit int
}

func (p *ContactPage) TotalPages() int {
	return totalPages(p.Total, p.Limit)
}
