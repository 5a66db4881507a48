package telephony

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AVVKavvk/oakmont-voip-crm/metrics"
)

func newTestIssuer() *Issuer {
	i := NewIssuer("AC123", "SK456", "secret", "AP789", time.Hour)
	i.now = func() time.Time { return time.Unix(1700000000, 0) }
	return i
}

func TestIssuer_IdentityIsBound(t *testing.T) {
	issuer := newTestIssuer()

	for _, identity := range []string{"guest", "agent_1", "", "client:bob", "ünïcode"} {
		t.Run(identity, func(t *testing.T) {
			token, err := issuer.Issue(identity)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			claims, err := issuer.Parse(token)
			if err != nil {
				t.Fatalf("failed to parse issued token: %v", err)
			}
			if claims.Grants.Identity != identity {
				t.Errorf("expected identity %q, got %q", identity, claims.Grants.Identity)
			}
		})
	}
}

func TestIssuer_Claims(t *testing.T) {
	issuer := newTestIssuer()

	token, err := issuer.Issue("agent")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	claims, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if claims.Issuer != "SK456" {
		t.Errorf("expected issuer SK456, got %s", claims.Issuer)
	}
	if claims.Subject != "AC123" {
		t.Errorf("expected subject AC123, got %s", claims.Subject)
	}
	if claims.ID != "SK456-1700000000" {
		t.Errorf("unexpected jti %s", claims.ID)
	}
	if claims.NotBefore == nil || !claims.NotBefore.Time.Equal(time.Unix(1700000000, 0)) {
		t.Errorf("expected nbf at issue time, got %v", claims.NotBefore)
	}
	if got := claims.ExpiresAt.Time.Sub(time.Unix(1700000000, 0)); got != time.Hour {
		t.Errorf("expected ttl 1h, got %v", got)
	}
	if claims.Grants.Voice == nil || claims.Grants.Voice.Outgoing == nil || claims.Grants.Voice.Outgoing.ApplicationSid != "AP789" {
		t.Errorf("expected outgoing grant for AP789, got %+v", claims.Grants.Voice)
	}
	if claims.Grants.Voice.Incoming == nil || !claims.Grants.Voice.Incoming.Allow {
		t.Error("expected incoming calls to be allowed")
	}
}

func TestIssuer_RejectsForeignSignature(t *testing.T) {
	issuer := newTestIssuer()
	other := NewIssuer("AC123", "SK456", "other-secret", "AP789", time.Hour)
	other.now = issuer.now

	token, err := other.Issue("mallory")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := issuer.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestIssuer_Expired(t *testing.T) {
	issuer := newTestIssuer()
	token, err := issuer.Issue("agent")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	issuer.now = func() time.Time { return time.Unix(1700000000, 0).Add(2 * time.Hour) }
	if _, err := issuer.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected expired token to be rejected, got %v", err)
	}
}

func TestIssuer_NotConfigured(t *testing.T) {
	issuer := NewIssuer("AC123", "", "", "AP789", time.Hour)
	if _, err := issuer.Issue("guest"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestRoute(t *testing.T) {
	tests := []struct {
		name        string
		destination string
		action      Action
		want        string
	}{
		{"greeting", "", ActionGreeting, `<Response><Say>Hello</Say></Response>`},
		{"client", "client:alice", ActionClient, `<Response><Dial><Client>alice</Client></Dial></Response>`},
		{"bare client prefix", "client:", ActionClient, `<Response><Dial><Client></Client></Dial></Response>`},
		{"number", "+61412345678", ActionNumber, `<Response><Dial><Number>+61412345678</Number></Dial></Response>`},
		{"prefix not at start", "x-client:alice", ActionNumber, `<Response><Dial><Number>x-client:alice</Number></Dial></Response>`},
		{"escaped", "<a&b>", ActionNumber, `<Response><Dial><Number>&lt;a&amp;b&gt;</Number></Dial></Response>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, action := Route(tt.destination, "Hello")
			if action != tt.action {
				t.Errorf("expected action %s, got %s", tt.action, action)
			}
			if got := resp.String(); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestResponse_Document(t *testing.T) {
	doc, err := PlayResponse("https://example.com/a.mp3").Document()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `<?xml version="1.0" encoding="UTF-8"?>` + "\n" + `<Response><Play>https://example.com/a.mp3</Play></Response>`
	if string(doc) != want {
		t.Errorf("got %s, want %s", doc, want)
	}
}

func TestClient_CreateCall(t *testing.T) {
	var gotForm map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/Accounts/AC123/Calls.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "SK456" || pass != "secret" {
			t.Errorf("unexpected basic auth %s:%s", user, pass)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
			return
		}
		gotForm = map[string]string{
			"To": r.PostForm.Get("To"), "From": r.PostForm.Get("From"),
			"Url": r.PostForm.Get("Url"), "Twiml": r.PostForm.Get("Twiml"),
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"CA1","status":"queued","to":"+61400000000"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "AC123", "SK456", "secret", metrics.NewUnregistered())

	call, err := c.CreateCall(context.Background(), CallParams{To: "+61400000000", From: "+61300000000", URL: "http://demo/voice.xml"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if call.Sid != "CA1" || call.Status != "queued" {
		t.Errorf("unexpected call record %+v", call)
	}
	if gotForm["Url"] != "http://demo/voice.xml" || gotForm["Twiml"] != "" {
		t.Errorf("expected url greeting only, got %+v", gotForm)
	}
	if gotForm["From"] != "+61300000000" {
		t.Errorf("expected From +61300000000, got %s", gotForm["From"])
	}

	_, err = c.CreateCall(context.Background(), CallParams{To: "+61400000000", From: "+61300000000", Twiml: "<Response/>"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotForm["Twiml"] != "<Response/>" || gotForm["Url"] != "" {
		t.Errorf("expected inline greeting only, got %+v", gotForm)
	}
}

func TestClient_CreateCall_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":21211,"message":"Invalid 'To' Phone Number"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "AC123", "AC123", "token", metrics.NewUnregistered())
	_, err := c.CreateCall(context.Background(), CallParams{To: "nope", From: "+61300000000"})

	var perr *ProviderError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProviderError, got %v", err)
	}
	if perr.StatusCode != http.StatusBadRequest || perr.Code != 21211 {
		t.Errorf("unexpected provider error %+v", perr)
	}
	if !strings.Contains(perr.Error(), "Invalid 'To'") {
		t.Errorf("expected message in error string, got %s", perr.Error())
	}
}

func TestClient_CreateCall_NotConfigured(t *testing.T) {
	c := NewClient("http://unused", "", "", "", metrics.NewUnregistered())
	if _, err := c.CreateCall(context.Background(), CallParams{To: "+1"}); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}
