package redisClient

import (
	"time"

	"github.com/AVVKavvk/oakmont-voip-crm/models"
	"github.com/go-redis/redis"
)

const dealsKey = "pipedrive:deals"

// DealsCache keeps the last Pipedrive deals listing for a short time.
type DealsCache struct {
	rc  *redis.Client
	ttl time.Duration
}

func NewDealsCache(rc *redis.Client, ttl time.Duration) *DealsCache {
	return &DealsCache{rc: rc, ttl: ttl}
}

// GetDeals returns the cached deals. ok is false on a cache miss.
func (c *DealsCache) GetDeals() (models.Deals, bool, error) {
	var deals models.Deals
	err := c.rc.Get(dealsKey).Scan(&deals)
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return deals, true, nil
}

func (c *DealsCache) SetDeals(deals models.Deals) error {
	return c.rc.Set(dealsKey, deals, c.ttl).Err()
}
