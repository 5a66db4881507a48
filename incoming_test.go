package main

import (
	"net/http"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestHandleIncomingCall(t *testing.T) {
	env := newTestEnv(t, nil)
	const xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

	tests := []struct {
		name        string
		contentType string
		body        string
		want        string
	}{
		{
			"client destination",
			echo.MIMEApplicationForm,
			formBody(map[string]string{"To": "client:alice", "CallSid": "CA1"}),
			`<Response><Dial><Client>alice</Client></Dial></Response>`,
		},
		{
			"phone destination",
			echo.MIMEApplicationForm,
			formBody(map[string]string{"To": "+61412345678"}),
			`<Response><Dial><Number>+61412345678</Number></Dial></Response>`,
		},
		{
			"json phone destination",
			echo.MIMEApplicationJSON,
			`{"To":"+61412345678"}`,
			`<Response><Dial><Number>+61412345678</Number></Dial></Response>`,
		},
		{
			"no destination",
			echo.MIMEApplicationForm,
			formBody(map[string]string{"From": "+61400000000"}),
			`<Response><Say>Welcome to Oakmont Realty VOIP CRM</Say></Response>`,
		},
		{
			"empty body",
			"",
			"",
			`<Response><Say>Welcome to Oakmont Realty VOIP CRM</Say></Response>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(http.MethodPost, "/voice", tt.contentType, tt.body)

			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
			}
			if ct := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, "text/xml") {
				t.Errorf("expected text/xml, got %s", ct)
			}
			if got := rec.Body.String(); got != xmlHeader+tt.want {
				t.Errorf("got %s, want %s", got, xmlHeader+tt.want)
			}
		})
	}
}

func TestHandleIncomingCall_ConfiguredGreeting(t *testing.T) {
	env := newTestEnv(t, nil)
	env.server.cfg.Twilio.Greeting = "Thanks for calling Oakmont & Co"

	rec := env.do(http.MethodPost, "/voice", echo.MIMEApplicationForm, "")
	if !strings.Contains(rec.Body.String(), "<Say>Thanks for calling Oakmont &amp; Co</Say>") {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}
