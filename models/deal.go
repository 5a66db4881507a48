package models

import "encoding/json"

// Deal is a CRM deal as listed by Pipedrive.
type Deal struct {
	ID     int64   `json:"id"`
	Title  string  `json:"title"`
	Value  float64 `json:"value"`
	Status string  `json:"status"`
	Stage  int64   `json:"stage_id"`
}

type Deals []Deal

func (d Deals) MarshalBinary() ([]byte, error) {
	return json.Marshal(d)
}

func (d *Deals) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, d)
}
