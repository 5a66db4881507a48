// Package metrics provides Prometheus metrics for the CRM backend.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "oakmont_crm"

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	TokensIssued  *prometheus.CounterVec
	VoiceWebhooks *prometheus.CounterVec
	TestCalls     *prometheus.CounterVec
	Attendees     *prometheus.CounterVec
	DealsRequests *prometheus.CounterVec

	EventsPublished *prometheus.CounterVec
	FeedClients     prometheus.Gauge

	ProviderLatency *prometheus.HistogramVec
}

// DefaultMetrics is the global metrics instance.
var DefaultMetrics = NewMetrics()

// NewMetrics creates and registers all Prometheus metrics with the default registerer.
func NewMetrics() *Metrics {
	return newMetrics(promauto.With(prometheus.DefaultRegisterer))
}

// NewUnregistered creates a metrics set registered with a private registry.
func NewUnregistered() *Metrics {
	return newMetrics(promauto.With(prometheus.NewRegistry()))
}

func newMetrics(f promauto.Factory) *Metrics {
	return &Metrics{
		TokensIssued: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_issued_total",
			Help:      "Voice capability tokens requested, by result",
		}, []string{"result"}),
		VoiceWebhooks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "voice_webhooks_total",
			Help:      "Inbound voice webhooks handled, by routing action",
		}, []string{"action"}),
		TestCalls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "test_calls_total",
			Help:      "Outbound test calls requested, by result",
		}, []string{"result"}),
		Attendees: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attendees_logged_total",
			Help:      "Attendee capture submissions, by result",
		}, []string{"result"}),
		DealsRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deals_requests_total",
			Help:      "Deals list requests, by source",
		}, []string{"source"}),
		EventsPublished: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Domain events published, by type and result",
		}, []string{"type", "result"}),
		FeedClients: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "feed_clients",
			Help:      "Connected live feed websocket clients",
		}),
		ProviderLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "Latency of calls to third-party providers",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}, []string{"provider", "operation"}),
	}
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordProvider observes a provider round trip.
func (m *Metrics) RecordProvider(provider, operation string, seconds float64) {
	m.ProviderLatency.WithLabelValues(provider, operation).Observe(seconds)
}

// RecordEvent counts a published domain event.
func (m *Metrics) RecordEvent(eventType string, err error) {
	m.EventsPublished.WithLabelValues(eventType, result(err)).Inc()
}
