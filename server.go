package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/AVVKavvk/oakmont-voip-crm/config"
	"github.com/AVVKavvk/oakmont-voip-crm/events"
	"github.com/AVVKavvk/oakmont-voip-crm/hosted"
	"github.com/AVVKavvk/oakmont-voip-crm/logging"
	"github.com/AVVKavvk/oakmont-voip-crm/metrics"
	"github.com/AVVKavvk/oakmont-voip-crm/models"
	"github.com/AVVKavvk/oakmont-voip-crm/telephony"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const eventPublishTimeout = 2 * time.Second

type (
	AttendeeStore interface {
		InsertAttendee(ctx context.Context, a models.Attendee) error
	}
	UserResolver interface {
		GetUser(ctx context.Context, accessToken string) (*hosted.User, error)
	}
	DealsSource interface {
		GetDeals(ctx context.Context) (models.Deals, error)
	}
	DealsCache interface {
		GetDeals() (models.Deals, bool, error)
		SetDeals(deals models.Deals) error
	}

	// Deps are the collaborators resolved at startup. Optional ones are nil
	// when their configuration is absent.
	Deps struct {
		Issuer     telephony.TokenIssuer
		Calls      telephony.CallCreator
		Attendees  AttendeeStore
		Users      UserResolver
		Deals      DealsSource
		DealsCache DealsCache
		Events     events.Publisher
		Hub        *events.Hub
		Metrics    *metrics.Metrics
	}

	Server struct {
		cfg *config.Config
		Deps
		logger zerolog.Logger
	}

	errorBody struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}
)

func NewServer(cfg *config.Config, deps Deps) *Server {
	if deps.Hub == nil {
		deps.Hub = events.NewHub()
	}
	if deps.Events == nil {
		deps.Events = deps.Hub
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.DefaultMetrics
	}
	return &Server{
		cfg:    cfg,
		Deps:   deps,
		logger: logging.WithComponent("http"),
	}
}

// Echo builds the router.
func (s *Server) Echo() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ev := s.logger.Info()
			if v.Error != nil {
				ev = s.logger.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	}))

	e.GET("/", s.HandleIndex)
	e.GET("/api", s.HandleIndex)
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.GET("/token", s.HandleToken)
	e.GET("/api/voice-token", s.HandleHostedToken)
	e.POST("/voice", s.HandleIncomingCall)

	for _, path := range []string{"/api/test-call", "/test-call"} {
		e.GET(path, s.HandleTestCall)
		e.POST(path, s.HandleTestCall)
	}
	e.GET("/api/call-my-clip", s.HandleClipCall)
	e.POST("/api/call-my-clip", s.HandleClipCall)

	e.GET("/capture", s.HandleCapturePage)
	e.POST("/api/attendees", s.HandleLogAttendee)
	e.GET("/dialer", s.HandleDialerPage)
	e.GET("/api/deals", s.HandleDeals)
	e.GET("/ws/events", s.HandleEventStream)

	return e
}

// HandleIndex lists the public routes.
func (s *Server) HandleIndex(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message":   "Oakmont VOIP CRM API is running.",
		"endpoints": []string{"/token", "/voice", "/test-call", "/api/call-my-clip", "/api/attendees", "/api/deals", "/dialer", "/capture"},
	})
}

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := http.StatusText(code)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		msg = fmt.Sprint(he.Message)
	} else {
		s.logger.Error().Err(err).Str("uri", c.Request().RequestURI).Msg("Unhandled error")
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, errorBody{OK: false, Error: msg})
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to write error response")
	}
}

// emit publishes a domain event. Failures are logged and never reach the caller.
func (s *Server) emit(ctx context.Context, eventType string, payload any) {
	e, err := events.New(eventType, payload)
	if err != nil {
		s.logger.Error().Err(err).Str("type", eventType).Msg("Failed to build event")
		s.Metrics.RecordEvent(eventType, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), eventPublishTimeout)
	defer cancel()

	err = s.Events.Publish(ctx, e)
	s.Metrics.RecordEvent(eventType, err)
	if err != nil {
		s.logger.Error().Err(err).Str("type", eventType).Msg("Failed to publish event")
	}
}
