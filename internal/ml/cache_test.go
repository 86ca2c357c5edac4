package ml

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePredictions() []Prediction {
	return []Prediction{
		{DriverID: "verstappen", Grid: 1, Probability: 0.61},
		{DriverID: "leclerc", Grid: 2, Probability: 0.22},
	}
}

// TestCacheKeyString tests cache key string representation
func TestCacheKeyString(t *testing.T) {
	key := CacheKey{
		ModelID: uuid.MustParse("12345678-1234-5678-1234-567812345678"),
		Season:  2024,
		Round:   7,
	}
	assert.Equal(t, "12345678-1234-5678-1234-567812345678:2024:7", key.String())
}

func TestPredictionCacheGetSet(t *testing.T) {
	cache := NewPredictionCache(time.Hour, 100)
	defer cache.Clear()

	key := CacheKey{ModelID: uuid.New(), Season: 2024, Round: 1}

	_, ok := cache.Get(key)
	assert.False(t, ok)

	cache.Set(key, samplePredictions())
	got, ok := cache.Get(key)
	require.True(t, ok)
	assert.Equal(t, samplePredictions(), got)

	// Callers own the returned slice.
	got[0].Probability = 0
	again, ok := cache.Get(key)
	require.True(t, ok)
	assert.Equal(t, 0.61, again[0].Probability)
}

func TestPredictionCacheExpiration(t *testing.T) {
	cache := NewPredictionCache(50*time.Millisecond, 100)
	key := CacheKey{ModelID: uuid.New(), Season: 2024, Round: 2}

	cache.Set(key, samplePredictions())
	_, ok := cache.Get(key)
	assert.True(t, ok)

	time.Sleep(100 * time.Millisecond)
	_, ok = cache.Get(key)
	assert.False(t, ok, "entry should have expired")
}

func TestPredictionCacheInvalidate(t *testing.T) {
	cache := NewPredictionCache(time.Hour, 100)
	oldModel, newModel := uuid.New(), uuid.New()

	cache.Set(CacheKey{ModelID: oldModel, Season: 2024, Round: 1}, samplePredictions())
	cache.Set(CacheKey{ModelID: oldModel, Season: 2024, Round: 2}, samplePredictions())
	cache.Set(CacheKey{ModelID: newModel, Season: 2024, Round: 1}, samplePredictions())
	require.Equal(t, 3, cache.ItemCount())

	cache.Invalidate(oldModel)

	assert.Equal(t, 1, cache.ItemCount())
	_, ok := cache.Get(CacheKey{ModelID: newModel, Season: 2024, Round: 1})
	assert.True(t, ok)
}

func TestPredictionCacheStats(t *testing.T) {
	cache := NewPredictionCache(time.Hour, 100)
	key := CacheKey{ModelID: uuid.New(), Season: 2023, Round: 5}

	cache.Get(key)
	cache.Set(key, samplePredictions())
	cache.Get(key)
	cache.Get(key)

	hits, misses, ratio := cache.Stats()
	assert.Equal(t, uint64(2), hits)
	assert.Equal(t, uint64(1), misses)
	assert.InDelta(t, 2.0/3.0, ratio, 1e-9)

	cache.Clear()
	hits, misses, ratio = cache.Stats()
	assert.Zero(t, hits)
	assert.Zero(t, misses)
	assert.Zero(t, ratio)
}

func TestPredictionCacheMaxSize(t *testing.T) {
	cache := NewPredictionCache(time.Hour, 2)
	model := uuid.New()

	for round := 1; round <= 3; round++ {
		cache.Set(CacheKey{ModelID: model, Season: 2024, Round: round}, samplePredictions())
	}

	assert.Equal(t, 2, cache.ItemCount())
	_, ok := cache.Get(CacheKey{ModelID: model, Season: 2024, Round: 3})
	assert.False(t, ok, "third ranking should be dropped while the cache is full")
}
