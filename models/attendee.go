package models

// Attendee is one open house visitor row.
type Attendee struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	Event       string `json:"event"`
}
