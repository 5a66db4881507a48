package redisClient

import (
	"fmt"

	"github.com/go-redis/redis"
	"github.com/rs/zerolog/log"
)

// NewRedisClient connects to addr and verifies the connection with a ping.
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	rc := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if _, err := rc.Ping().Result(); err != nil {
		rc.Close()
		return nil, fmt.Errorf("could not connect to redis at %s: %w", addr, err)
	}

	log.Info().Str("addr", addr).Msg("redis client successfully connected")
	return rc, nil
}
