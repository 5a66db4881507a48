package main

import (
	"net/http"

	"github.com/AVVKavvk/oakmont-voip-crm/telephony"
	"github.com/labstack/echo/v4"
)

type voiceRequest struct {
	CallSid string `form:"CallSid" json:"CallSid"`
	From    string `form:"From" json:"From"`
	To      string `form:"To" json:"To"`
}

// HandleIncomingCall answers the provider's voice webhook with call control
// markup: dial a client, dial a number, or read the greeting.
func (s *Server) HandleIncomingCall(c echo.Context) error {
	var req voiceRequest
	if err := (&echo.DefaultBinder{}).BindBody(c, &req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid webhook body")
	}

	resp, action := telephony.Route(req.To, s.cfg.Twilio.Greeting)
	s.Metrics.VoiceWebhooks.WithLabelValues(string(action)).Inc()

	s.logger.Info().
		Str("callSid", req.CallSid).
		Str("from", req.From).
		Str("to", req.To).
		Str("action", string(action)).
		Msg("Call received")

	doc, err := resp.Document()
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, echo.MIMETextXML, doc)
}
