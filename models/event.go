package models

import (
	"encoding/json"
	"time"
)

const (
	EventTokenIssued    = "token.issued"
	EventCallPlaced     = "call.placed"
	EventAttendeeLogged = "attendee.logged"
)

// Event is a domain event pushed to the live feed.
type Event struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	At      time.Time       `json:"at"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func (e *Event) MarshalBinary() ([]byte, error) {
	return json.Marshal(e)
}

func (e *Event) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, e)
}
