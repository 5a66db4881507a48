package main

import (
	"crypto/subtle"
	"net/http"

	"github.com/AVVKavvk/oakmont-voip-crm/models"
	"github.com/AVVKavvk/oakmont-voip-crm/telephony"
	"github.com/labstack/echo/v4"
)

type (
	testCallRequest struct {
		To    string `json:"to" form:"to"`
		Token string `json:"token" form:"token"`
	}

	testCallResponse struct {
		OK     bool   `json:"ok"`
		Sid    string `json:"sid"`
		Status string `json:"status,omitempty"`
	}
)

// HandleTestCall originates a call to the requested number that plays the
// configured remote greeting.
func (s *Server) HandleTestCall(c echo.Context) error {
	req, err := s.bindTestCall(c)
	if err != nil {
		return err
	}
	if req.To == "" {
		s.Metrics.TestCalls.WithLabelValues("bad_request").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "Missing `to` parameter")
	}

	return s.placeCall(c, telephony.CallParams{
		To:   req.To,
		From: s.cfg.Twilio.Number,
		URL:  s.cfg.TestCall.GreetingURL,
	})
}

// HandleClipCall originates a call that plays the configured audio clip
// inline. Without a shared secret only the configured test number is
// dialed; with one, the request may name another destination.
func (s *Server) HandleClipCall(c echo.Context) error {
	req, err := s.bindTestCall(c)
	if err != nil {
		return err
	}
	if req.To == "" || s.cfg.TestCall.Secret == "" {
		req.To = s.cfg.TestCall.DefaultTo
	}
	if req.To == "" {
		s.Metrics.TestCalls.WithLabelValues("bad_request").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "Missing `to` parameter")
	}

	return s.placeCall(c, telephony.CallParams{
		To:    req.To,
		From:  s.cfg.Twilio.Number,
		Twiml: telephony.PlayResponse(s.cfg.TestCall.ClipURL).String(),
	})
}

// bindTestCall reads to/token from the query on GET and from the body on
// POST, then applies the shared-secret guard.
func (s *Server) bindTestCall(c echo.Context) (testCallRequest, error) {
	var req testCallRequest
	if c.Request().Method == http.MethodPost {
		if err := (&echo.DefaultBinder{}).BindBody(c, &req); err != nil {
			return req, echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
		}
		if req.To == "" {
			req.To = c.QueryParam("to")
		}
	} else {
		req.To = c.QueryParam("to")
		req.Token = c.QueryParam("token")
	}

	if secret := s.cfg.TestCall.Secret; secret != "" {
		if subtle.ConstantTimeCompare([]byte(req.Token), []byte(secret)) != 1 {
			s.Metrics.TestCalls.WithLabelValues("unauthorized").Inc()
			s.logger.Warn().Str("ip", c.RealIP()).Msg("Rejected test call with bad token")
			return req, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
	}
	return req, nil
}

func (s *Server) placeCall(c echo.Context, p telephony.CallParams) error {
	call, err := s.Calls.CreateCall(c.Request().Context(), p)
	if err != nil {
		s.Metrics.TestCalls.WithLabelValues("error").Inc()
		s.logger.Error().Err(err).Str("to", p.To).Msg("Error initiating test call")
		return echo.NewHTTPError(http.StatusInternalServerError, "call-failed")
	}

	s.Metrics.TestCalls.WithLabelValues("ok").Inc()
	s.emit(c.Request().Context(), models.EventCallPlaced, call)
	return c.JSON(http.StatusOK, testCallResponse{OK: true, Sid: call.Sid, Status: call.Status})
}
