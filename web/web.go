// Package web holds the browser pages served by the CRM backend.
package web

import (
	"bytes"
	"embed"
	"html/template"
)

//go:embed *.html
var pages embed.FS

var captureTmpl = template.Must(template.ParseFS(pages, "capture.html"))

// CapturePage renders the attendee capture page for an event.
func CapturePage(eventName string) ([]byte, error) {
	var buf bytes.Buffer
	if err := captureTmpl.Execute(&buf, struct{ EventName string }{eventName}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DialerPage returns the browser dialer.
func DialerPage() ([]byte, error) {
	return pages.ReadFile("dialer.html")
}
