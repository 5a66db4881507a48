// Package events carries domain events to live feed subscribers.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/AVVKavvk/oakmont-voip-crm/models"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const subscriberBuffer = 16

// Publisher accepts domain events.
type Publisher interface {
	Publish(ctx context.Context, e models.Event) error
}

// New builds an event of the given type around payload.
func New(eventType string, payload any) (models.Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return models.Event{}, err
	}
	return models.Event{
		ID:      uuid.New().String(),
		Type:    eventType,
		At:      time.Now().UTC(),
		Payload: raw,
	}, nil
}

// Hub fans events out to in-process subscribers. A subscriber that falls
// behind by more than its buffer misses events rather than blocking Publish.
type Hub struct {
	mu   sync.Mutex
	subs map[string]chan models.Event
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]chan models.Event)}
}

// Subscribe registers a subscriber. cancel closes the returned channel and
// is safe to call more than once.
func (h *Hub) Subscribe() (string, <-chan models.Event, func()) {
	id := uuid.New().String()
	ch := make(chan models.Event, subscriberBuffer)

	h.mu.Lock()
	h.subs[id] = ch
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(ch)
		})
	}
	return id, ch, cancel
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) Publish(_ context.Context, e models.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, ch := range h.subs {
		select {
		case ch <- e:
		default:
			log.Warn().Str("subscriber", id).Str("type", e.Type).Msg("Live feed subscriber is full, dropping event")
		}
	}
	return nil
}

// Deliver adapts Publish for consumers that cannot report errors.
func (h *Hub) Deliver(e models.Event) {
	_ = h.Publish(context.Background(), e)
}
