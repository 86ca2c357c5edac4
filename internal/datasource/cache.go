package datasource

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/yourusername/f1-form/internal/metrics"
	"github.com/yourusername/f1-form/internal/models"
)

// CachedSource memoizes upstream responses per (endpoint, season, round)
type CachedSource struct {
	source DataSource
	cache  *cache.Cache
}

// NewCachedSource wraps source with a TTL cache. A non-positive ttl disables expiry.
func NewCachedSource(source DataSource, ttl time.Duration) *CachedSource {
	expiration := ttl
	if ttl <= 0 {
		expiration = cache.NoExpiration
	}
	return &CachedSource{
		source: source,
		cache:  cache.New(expiration, 10*time.Minute),
	}
}

// Name returns the name of the wrapped data source
func (c *CachedSource) Name() string {
	return c.source.Name()
}

// FetchSchedule returns the cached calendar or fetches it
func (c *CachedSource) FetchSchedule(ctx context.Context, season int) ([]models.RaceEvent, error) {
	key := fmt.Sprintf("%s/%d", endpointSchedule, season)
	if v, ok := c.cache.Get(key); ok {
		metrics.RecordCacheHit(endpointSchedule)
		return v.([]models.RaceEvent), nil
	}

	events, err := c.source.FetchSchedule(ctx, season)
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, events)
	return events, nil
}

// FetchRaceResults returns cached results or fetches them. Races without results are not cached.
func (c *CachedSource) FetchRaceResults(ctx context.Context, season, round int) ([]models.ResultRecord, error) {
	key := fmt.Sprintf("%s/%d/%d", endpointResults, season, round)
	if v, ok := c.cache.Get(key); ok {
		metrics.RecordCacheHit(endpointResults)
		return v.([]models.ResultRecord), nil
	}

	records, err := c.source.FetchRaceResults(ctx, season, round)
	if err != nil {
		return nil, err
	}
	if len(records) > 0 {
		c.cache.SetDefault(key, records)
	}
	return records, nil
}

// FetchQualifying returns the cached qualifying order or fetches it
func (c *CachedSource) FetchQualifying(ctx context.Context, season, round int) ([]models.GridEntry, error) {
	key := fmt.Sprintf("%s/%d/%d", endpointQualifying, season, round)
	if v, ok := c.cache.Get(key); ok {
		metrics.RecordCacheHit(endpointQualifying)
		return v.([]models.GridEntry), nil
	}

	grid, err := c.source.FetchQualifying(ctx, season, round)
	if err != nil {
		return nil, err
	}
	if len(grid) > 0 {
		c.cache.SetDefault(key, grid)
	}
	return grid, nil
}

// Flush drops every cached response
func (c *CachedSource) Flush() {
	c.cache.Flush()
}
