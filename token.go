package main

import (
	"errors"
	"net/http"

	"github.com/AVVKavvk/oakmont-voip-crm/config"
	"github.com/AVVKavvk/oakmont-voip-crm/hosted"
	"github.com/AVVKavvk/oakmont-voip-crm/models"
	"github.com/labstack/echo/v4"
)

type tokenResponse struct {
	Identity string `json:"identity"`
	Token    string `json:"token"`
}

// HandleToken issues a voice capability token for the identity query
// parameter, or for the default guest identity.
func (s *Server) HandleToken(c echo.Context) error {
	identity := c.QueryParam("identity")
	if identity == "" {
		identity = config.DefaultIdentity
	}
	return s.issueToken(c, identity)
}

// HandleHostedToken issues a token for the hosted-backend user behind the
// Authorization header.
func (s *Server) HandleHostedToken(c echo.Context) error {
	if s.Users == nil {
		return echo.NewHTTPError(http.StatusNotImplemented, "hosted backend is not configured")
	}

	user, err := s.Users.GetUser(c.Request().Context(), c.Request().Header.Get(echo.HeaderAuthorization))
	if errors.Is(err, hosted.ErrUnauthorized) {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err != nil {
		s.logger.Error().Err(err).Msg("Error resolving hosted user")
		return echo.NewHTTPError(http.StatusInternalServerError, "Unable to generate token")
	}
	return s.issueToken(c, user.ID)
}

func (s *Server) issueToken(c echo.Context, identity string) error {
	token, err := s.Issuer.Issue(identity)
	if err != nil {
		s.Metrics.TokensIssued.WithLabelValues("error").Inc()
		s.logger.Error().Err(err).Str("identity", identity).Msg("Error generating token")
		return echo.NewHTTPError(http.StatusInternalServerError, "Unable to generate token")
	}

	s.Metrics.TokensIssued.WithLabelValues("ok").Inc()
	s.emit(c.Request().Context(), models.EventTokenIssued, map[string]string{"identity": identity})
	return c.JSON(http.StatusOK, tokenResponse{Identity: identity, Token: token})
}
