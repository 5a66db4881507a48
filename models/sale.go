package models

import (
	"time"
)

// PublicSale is one row of a public sales CSV import.
type PublicSale struct {
	ID        string            `gorm:"primaryKey"`
	State     string            `gorm:"index"`
	RowNumber int               `json:"row_number"`
	Data      map[string]string `gorm:"serializer:json"`
	CreatedAt time.Time
}

// AttendeeRow is the direct-Postgres form of an Attendee.
type AttendeeRow struct {
	ID          string `gorm:"primaryKey"`
	Name        string
	PhoneNumber string `json:"phone_number"`
	Event       string
	CreatedAt   time.Time
}

func (AttendeeRow) TableName() string { return "attendees" }
