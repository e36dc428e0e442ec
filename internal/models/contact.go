package models

import "time"

// Contact represents a contact in the system. The orchestration core only
// reads contacts; mutation belongs to the contact-import pipeline.
type Contact struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	FirstName string    `json:"first_name" db:"first_name"`
	LastName  string    `json:"last_name" db:"last_name"`
	Phone     string    `json:"phone" db:"phone"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// FullName returns the contact's full name
func (c *Contact) FullName() string {
	if c.FirstName != "" && c.LastName != "" {
		return c.FirstName + " " + c.LastName
	}
	if c.FirstName != "" {
		return c.FirstName
	}
	if c.LastName != "" {
		return c.LastName
	}
	return "Contact"
}
