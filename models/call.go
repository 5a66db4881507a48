package models

// CallRecord is the provider's view of an originated call.
type CallRecord struct {
	Sid    string `json:"sid"`
	Status string `json:"status"`
	To     string `json:"to,omitempty"`
	From   string `json:"from,omitempty"`
}
