package telephony

import (
	"encoding/xml"
	"strings"
)

// ClientPrefix marks a destination as a logical client rather than a phone number.
const ClientPrefix = "client:"

type Action string

const (
	ActionClient   Action = "client"
	ActionNumber   Action = "number"
	ActionGreeting Action = "greeting"
)

type (
	Response struct {
		XMLName xml.Name `xml:"Response"`
		Say     string   `xml:"Say,omitempty"`
		Play    string   `xml:"Play,omitempty"`
		Dial    *Dial    `xml:"Dial,omitempty"`
	}
	Dial struct {
		Client []string `xml:"Client"`
		Number []string `xml:"Number"`
	}
)

// Route decides how an inbound call for destination is handled.
func Route(destination, greeting string) (*Response, Action) {
	switch {
	case destination == "":
		return &Response{Say: greeting}, ActionGreeting
	case strings.HasPrefix(destination, ClientPrefix):
		return &Response{Dial: &Dial{Client: []string{strings.TrimPrefix(destination, ClientPrefix)}}}, ActionClient
	default:
		return &Response{Dial: &Dial{Number: []string{destination}}}, ActionNumber
	}
}

// PlayResponse returns markup that plays a single audio URL.
func PlayResponse(url string) *Response {
	return &Response{Play: url}
}

// Document renders the response with an XML declaration.
func (r *Response) Document() ([]byte, error) {
	body, err := xml.Marshal(r)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}

// String renders the response without the XML declaration, for inline use.
func (r *Response) String() string {
	body, err := xml.Marshal(r)
	if err != nil {
		return ""
	}
	return string(body)
}
