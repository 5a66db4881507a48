package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/AVVKavvk/oakmont-voip-crm/config"
	"github.com/AVVKavvk/oakmont-voip-crm/events"
	"github.com/AVVKavvk/oakmont-voip-crm/hosted"
	"github.com/AVVKavvk/oakmont-voip-crm/logging"
	"github.com/AVVKavvk/oakmont-voip-crm/metrics"
	"github.com/AVVKavvk/oakmont-voip-crm/persist"
	"github.com/AVVKavvk/oakmont-voip-crm/pipedrive"
	"github.com/AVVKavvk/oakmont-voip-crm/rabbitmq"
	"github.com/AVVKavvk/oakmont-voip-crm/redisClient"
	"github.com/AVVKavvk/oakmont-voip-crm/telephony"
	"github.com/rs/zerolog"
)

func main() {
	dotenvErr := config.LoadDotEnv()
	cfg := config.Load()
	logger := logging.Init(cfg.LogLevel, cfg.Env)
	if dotenvErr != nil {
		logger.Warn().Err(dotenvErr).Msg("Error loading .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps, closeDeps := buildDeps(ctx, cfg, logger)
	defer closeDeps()

	e := NewServer(cfg, deps).Echo()

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("Server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
	}
}

// buildDeps resolves every optional capability once. Anything not
// configured stays nil and the routes that need it answer 501.
func buildDeps(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (Deps, func()) {
	var closers []func()
	m := metrics.DefaultMetrics

	user, pass := cfg.Twilio.RESTCredentials()
	deps := Deps{
		Issuer:  telephony.NewIssuer(cfg.Twilio.AccountSID, cfg.Twilio.APIKey, cfg.Twilio.APISecret, cfg.Twilio.AppSID, cfg.Twilio.TokenTTL),
		Calls:   telephony.NewClient(cfg.Twilio.BaseURL, cfg.Twilio.AccountSID, user, pass, m),
		Hub:     events.NewHub(),
		Metrics: m,
	}

	switch {
	case cfg.Hosted.Enabled():
		hc := hosted.NewClient(cfg.Hosted.URL, cfg.Hosted.AnonKey, cfg.Hosted.Table, m)
		deps.Attendees = hc
		deps.Users = hc
		logger.Info().Str("url", cfg.Hosted.URL).Msg("Hosted backend enabled")
	case cfg.DatabaseURL != "":
		db, err := persist.Open(cfg.DatabaseURL)
		if err != nil {
			logger.Error().Err(err).Msg("Attendee database unavailable, capture disabled")
			break
		}
		deps.Attendees = persist.NewAttendeeRepository(db)
		logger.Info().Msg("Attendees stored in Postgres")
	default:
		logger.Warn().Msg("Hosted backend not configured, attendee capture disabled")
	}

	if cfg.Pipedrive.Enabled() {
		deps.Deals = pipedrive.NewClient(cfg.Pipedrive.BaseURL, cfg.Pipedrive.APIKey, m)
	}

	if cfg.Redis.Enabled() {
		rc, err := redisClient.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Error().Err(err).Msg("Redis unavailable, deals cache disabled")
		} else {
			deps.DealsCache = redisClient.NewDealsCache(rc, cfg.Pipedrive.CacheTTL)
			closers = append(closers, func() { rc.Close() })
		}
	}

	deps.Events = deps.Hub
	if cfg.AMQP.Enabled() {
		conn, err := rabbitmq.Dial(cfg.AMQP.URL)
		if err != nil {
			logger.Error().Err(err).Msg("RabbitMQ unavailable, events stay in process")
		} else {
			deps.Events = rabbitmq.NewProducer(conn, cfg.AMQP.Exchange)
			consumer := rabbitmq.NewConsumer(conn, cfg.AMQP.Exchange)
			go func() {
				if err := consumer.Consume(ctx, deps.Hub.Deliver); err != nil {
					logger.Error().Err(err).Msg("Event consumer stopped")
				}
			}()
			closers = append(closers, func() { conn.Close() })
		}
	}

	return deps, func() {
		for _, c := range closers {
			c()
		}
	}
}
