package services

import (
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/moneymirror/src/logger"
)

const (
	ckInsights = "res_insights_user_%s"
	ckBiases   = "res_biases_user_%s"

	DefaultCacheExpiration = 15 * time.Minute
	CacheCleanupInterval   = 30 * time.Minute
)

// NewResultCache builds the cache shared by the services.
func NewResultCache(ttl time.Duration) *cache.Cache {
	if ttl <= 0 {
		ttl = DefaultCacheExpiration
	}
	return cache.New(ttl, CacheCleanupInterval)
}

// InvalidateUserCache drops every cached result for a user so the next read
// recomputes from storage.
func InvalidateUserCache(c *cache.Cache, userID string) {
	keysToDelete := []string{
		fmt.Sprintf(ckInsights, userID),
		fmt.Sprintf(ckBiases, userID),
	}
	for _, key := range keysToDelete {
		c.Delete(key)
	}
	logger.L.Debug("Invalidated user cache", "userID", userID)
}
