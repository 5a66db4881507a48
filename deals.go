package main

import (
	"net/http"

	"github.com/AVVKavvk/oakmont-voip-crm/models"
	"github.com/labstack/echo/v4"
)

type dealsResponse struct {
	OK     bool         `json:"ok"`
	Source string       `json:"source"`
	Deals  models.Deals `json:"deals"`
}

// HandleDeals lists CRM deals, served from the cache while it is fresh.
func (s *Server) HandleDeals(c echo.Context) error {
	if s.Deals == nil {
		return echo.NewHTTPError(http.StatusNotImplemented, "pipedrive is not configured")
	}

	if s.DealsCache != nil {
		deals, ok, err := s.DealsCache.GetDeals()
		if err != nil {
			s.logger.Warn().Err(err).Msg("Deals cache read failed")
		}
		if ok {
			s.Metrics.DealsRequests.WithLabelValues("cache").Inc()
			return c.JSON(http.StatusOK, dealsResponse{OK: true, Source: "cache", Deals: deals})
		}
	}

	deals, err := s.Deals.GetDeals(c.Request().Context())
	if err != nil {
		s.Metrics.DealsRequests.WithLabelValues("error").Inc()
		s.logger.Error().Err(err).Msg("Error fetching deals")
		return echo.NewHTTPError(http.StatusInternalServerError, "Unable to fetch deals")
	}

	if s.DealsCache != nil {
		if err := s.DealsCache.SetDeals(deals); err != nil {
			s.logger.Warn().Err(err).Msg("Deals cache write failed")
		}
	}
	s.Metrics.DealsRequests.WithLabelValues("pipedrive").Inc()
	return c.JSON(http.StatusOK, dealsResponse{OK: true, Source: "pipedrive", Deals: deals})
}
