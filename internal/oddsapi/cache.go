package oddsapi

import (
	"fmt"
	"strings"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/Randysweatpants/GambleBotAPI/internal/metrics"
	"github.com/Randysweatpants/GambleBotAPI/internal/models"
)

// CacheKey identifies one upstream odds query.
type CacheKey struct {
	Sport      string
	Regions    []string
	Markets    []string
	Bookmakers []string
}

// String returns the string representation of the cache key.
func (k CacheKey) String() string {
	return fmt.Sprintf("%s|%s|%s|%s",
		k.Sport,
		strings.Join(k.Regions, ","),
		strings.Join(k.Markets, ","),
		strings.Join(k.Bookmakers, ","),
	)
}

// OddsCache provides in-memory caching for odds responses so repeated
// scans within the TTL do not burn upstream quota.
type OddsCache struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewOddsCache creates a new odds cache with the given TTL.
func NewOddsCache(ttl time.Duration) *OddsCache {
	return &OddsCache{
		cache: cache.New(ttl, ttl*2),
		ttl:   ttl,
	}
}

// Get retrieves cached events for a query, or nil on miss.
func (oc *OddsCache) Get(key CacheKey) []models.Event {
	if v, found := oc.cache.Get(key.String()); found {
		metrics.RecordOddsCacheHit()
		if events, ok := v.([]models.Event); ok {
			return events
		}
	}
	metrics.RecordOddsCacheMiss()
	return nil
}

// Set stores events for a query.
func (oc *OddsCache) Set(key CacheKey, events []models.Event) {
	oc.cache.Set(key.String(), events, oc.ttl)
}

// Clear flushes the entire cache.
func (oc *OddsCache) Clear() {
	oc.cache.Flush()
}

// ItemCount returns the number of cached queries.
func (oc *OddsCache) ItemCount() int {
	return oc.cache.ItemCount()
}
