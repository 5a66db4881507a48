package main

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AVVKavvk/oakmont-voip-crm/config"
	"github.com/AVVKavvk/oakmont-voip-crm/events"
	"github.com/AVVKavvk/oakmont-voip-crm/models"
	"github.com/gorilla/websocket"
)

func TestHandleEventStream(t *testing.T) {
	hub := events.NewHub()
	env := newTestEnv(t, func(_ *config.Config, deps *Deps) { deps.Hub = hub })

	srv := httptest.NewServer(env.echo)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Len() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	e, err := events.New(models.EventAttendeeLogged, models.Attendee{Name: "Michael", PhoneNumber: "0412345678"})
	if err != nil {
		t.Fatal(err)
	}
	if err := hub.Publish(context.Background(), e); err != nil {
		t.Fatal(err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got models.Event
	if err := conn.ReadJSON(&got); err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.ID != e.ID || got.Type != models.EventAttendeeLogged {
		t.Errorf("unexpected event %+v", got)
	}

	conn.Close()
	deadline = time.Now().Add(2 * time.Second)
	for hub.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber not removed after disconnect")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
