package main

import (
	"errors"
	"net/http"

	"github.com/AVVKavvk/oakmont-voip-crm/capture"
	"github.com/AVVKavvk/oakmont-voip-crm/hosted"
	"github.com/AVVKavvk/oakmont-voip-crm/models"
	"github.com/AVVKavvk/oakmont-voip-crm/web"
	"github.com/labstack/echo/v4"
)

type (
	attendeeRequest struct {
		Transcript string `json:"transcript" form:"transcript"`
		Event      string `json:"event" form:"event"`
	}

	attendeeResponse struct {
		OK       bool            `json:"ok"`
		Attendee models.Attendee `json:"attendee"`
	}
)

// HandleLogAttendee stores the attendee spoken on the capture page.
func (s *Server) HandleLogAttendee(c echo.Context) error {
	if s.Attendees == nil {
		s.Metrics.Attendees.WithLabelValues("not_configured").Inc()
		return echo.NewHTTPError(http.StatusNotImplemented, "hosted backend is not configured")
	}

	var req attendeeRequest
	if err := (&echo.DefaultBinder{}).BindBody(c, &req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	event := req.Event
	if event == "" {
		event = s.cfg.Capture.EventName
	}

	attendee, err := capture.Parse(req.Transcript, event)
	if errors.Is(err, capture.ErrBadTranscript) {
		s.Metrics.Attendees.WithLabelValues("bad_transcript").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, capture.FormatHint)
	}
	if err != nil {
		return err
	}

	if err := s.Attendees.InsertAttendee(c.Request().Context(), attendee); err != nil {
		s.Metrics.Attendees.WithLabelValues("error").Inc()
		s.logger.Error().Err(err).Str("event", event).Msg("Failed to insert attendee")
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed: "+insertMessage(err))
	}

	s.Metrics.Attendees.WithLabelValues("ok").Inc()
	s.emit(c.Request().Context(), models.EventAttendeeLogged, attendee)
	return c.JSON(http.StatusCreated, attendeeResponse{OK: true, Attendee: attendee})
}

// insertMessage prefers the message the hosted backend sent back over the
// wrapped error chain.
func insertMessage(err error) string {
	var apiErr *hosted.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	return err.Error()
}

func (s *Server) HandleCapturePage(c echo.Context) error {
	page, err := web.CapturePage(s.cfg.Capture.EventName)
	if err != nil {
		return err
	}
	return c.HTMLBlob(http.StatusOK, page)
}

func (s *Server) HandleDialerPage(c echo.Context) error {
	page, err := web.DialerPage()
	if err != nil {
		return err
	}
	return c.HTMLBlob(http.StatusOK, page)
}
