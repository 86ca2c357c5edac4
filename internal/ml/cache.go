package ml

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/f1-form/internal/metrics"
)

// CacheKey identifies a ranked race prediction made by one model
type CacheKey struct {
	ModelID uuid.UUID
	Season  int
	Round   int
}

// String returns string representation of cache key
func (k CacheKey) String() string {
	return fmt.Sprintf("%s:%d:%d", k.ModelID, k.Season, k.Round)
}

// PredictionCache keeps recent race rankings in memory
type PredictionCache struct {
	cache   *cache.Cache
	ttl     time.Duration
	maxSize int
	mu      sync.Mutex
	hits    atomic.Uint64
	misses  atomic.Uint64
}

// NewPredictionCache creates a new prediction cache
func NewPredictionCache(ttl time.Duration, maxSize int) *PredictionCache {
	return &PredictionCache{
		cache:   cache.New(ttl, ttl*2),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// Get returns a copy of a cached ranking
func (pc *PredictionCache) Get(key CacheKey) ([]Prediction, bool) {
	if v, found := pc.cache.Get(key.String()); found {
		if preds, ok := v.([]Prediction); ok {
			pc.hits.Add(1)
			metrics.RecordCacheHit("prediction")
			return slices.Clone(preds), true
		}
	}
	pc.misses.Add(1)
	return nil, false
}

// Set stores a ranking; when the cache is full and nothing has expired the ranking is dropped
func (pc *PredictionCache) Set(key CacheKey, preds []Prediction) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if pc.maxSize > 0 && pc.cache.ItemCount() >= pc.maxSize {
		pc.cache.DeleteExpired()
		if pc.cache.ItemCount() >= pc.maxSize {
			return
		}
	}
	pc.cache.Set(key.String(), slices.Clone(preds), pc.ttl)
}

// Invalidate removes every ranking made by a model
func (pc *PredictionCache) Invalidate(modelID uuid.UUID) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	prefix := modelID.String() + ":"
	for k := range pc.cache.Items() {
		if strings.HasPrefix(k, prefix) {
			pc.cache.Delete(k)
		}
	}
}

// Clear flushes the entire cache
func (pc *PredictionCache) Clear() {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	pc.cache.Flush()
	pc.hits.Store(0)
	pc.misses.Store(0)
}

// Stats returns cache statistics
func (pc *PredictionCache) Stats() (hits, misses uint64, ratio float64) {
	hits = pc.hits.Load()
	misses = pc.misses.Load()
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// ItemCount returns the number of items in cache
func (pc *PredictionCache) ItemCount() int {
	return pc.cache.ItemCount()
}
