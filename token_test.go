package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AVVKavvk/oakmont-voip-crm/config"
)

func TestHandleToken_IdentityBinding(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name     string
		target   string
		identity string
	}{
		{"absent identity", "/token", "guest"},
		{"empty identity", "/token?identity=", "guest"},
		{"agent identity", "/token?identity=agent_1700000000", "agent_1700000000"},
		{"escaped identity", "/token?identity=jane%20doe%40oakmont", "jane doe@oakmont"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(http.MethodGet, tt.target, "", "")
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
			}

			var body tokenResponse
			decode(t, rec, &body)
			if body.Identity != tt.identity {
				t.Errorf("expected identity %q, got %q", tt.identity, body.Identity)
			}

			claims, err := env.issuer.Parse(body.Token)
			if err != nil {
				t.Fatalf("token does not verify: %v", err)
			}
			if claims.Grants.Identity != tt.identity {
				t.Errorf("token bound to %q, want %q", claims.Grants.Identity, tt.identity)
			}
		})
	}
}

func TestHandleToken_SigningFailure(t *testing.T) {
	env := newTestEnv(t, func(_ *config.Config, deps *Deps) { deps.Issuer = failingIssuer{} })

	rec := env.do(http.MethodGet, "/token?identity=alice", "", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	var body errorBody
	decode(t, rec, &body)
	if body.Error != "Unable to generate token" {
		t.Errorf("unexpected error %q", body.Error)
	}
}

func TestHandleHostedToken(t *testing.T) {
	t.Run("hosted backend absent", func(t *testing.T) {
		env := newTestEnv(t, nil)
		rec := env.do(http.MethodGet, "/api/voice-token", "", "")
		if rec.Code != http.StatusNotImplemented {
			t.Errorf("expected 501, got %d", rec.Code)
		}
	})

	env := newTestEnv(t, func(_ *config.Config, deps *Deps) {
		deps.Users = fakeUsers{"Bearer good": "user-42"}
	})

	t.Run("unknown user", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/voice-token", "", "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("known user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/voice-token", nil)
		req.Header.Set("Authorization", "Bearer good")
		rec := httptest.NewRecorder()
		env.echo.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		var body tokenResponse
		decode(t, rec, &body)
		if body.Identity != "user-42" {
			t.Errorf("expected identity user-42, got %s", body.Identity)
		}
		claims, err := env.issuer.Parse(body.Token)
		if err != nil || claims.Grants.Identity != "user-42" {
			t.Errorf("token not bound to user-42: %v", err)
		}
	})
}
