package main

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	feedWriteWait  = 10 * time.Second
	feedPongWait   = 60 * time.Second
	feedPingPeriod = feedPongWait * 9 / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// HandleEventStream pushes every domain event to the connected dashboard
// as a JSON text message.
func (s *Server) HandleEventStream(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Live feed upgrade failed")
		return nil
	}
	defer conn.Close()

	id, feed, cancel := s.Hub.Subscribe()
	defer cancel()

	s.Metrics.FeedClients.Inc()
	defer s.Metrics.FeedClients.Dec()

	logger := s.logger.With().Str("client", id).Logger()
	logger.Info().Msg("Live feed client connected")

	// The reader only watches for the close frame and pongs.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(feedPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(feedPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(feedPingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			logger.Info().Msg("Live feed client disconnected")
			return nil
		case <-c.Request().Context().Done():
			return nil
		case e, ok := <-feed:
			if !ok {
				return nil
			}
			_ = conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := conn.WriteJSON(e); err != nil {
				logger.Warn().Err(err).Msg("Live feed write failed")
				return nil
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		}
	}
}
