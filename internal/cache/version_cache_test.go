package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/campus-stack/testing-service/internal/models"
	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

// memoryCache is a map-backed CacheService for tests; it round-trips
// values through JSON the same way the redis implementation does.
type memoryCache struct {
	entries map[string][]byte
	failing bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string][]byte)}
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if m.failing {
		return errors.New("cache down")
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = data
	return nil
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	if m.failing {
		return errors.New("cache down")
	}
	data, ok := m.entries[key]
	if !ok {
		return ErrCacheMiss
	}
	return json.Unmarshal(data, dest)
}

func (m *memoryCache) Delete(ctx context.Context, key string) error {
	delete(m.entries, key)
	return nil
}

func (m *memoryCache) DeletePattern(ctx context.Context, pattern string) error {
	return nil
}

func TestVersionCache_RoundTrip(t *testing.T) {
	backend := newMemoryCache()
	vc := NewVersionCache(backend)
	ctx := context.Background()

	_, ok := vc.Get(ctx, 1, 2)
	assert.False(t, ok)

	vc.Put(ctx, &models.QuestionVersion{
		QuestionID:   1,
		Version:      2,
		Title:        "Capitals",
		Body:         "Pick one",
		Options:      datatypes.JSONSlice[string]{"Oslo", "Bergen"},
		CorrectIndex: 0,
	})

	got, ok := vc.Get(ctx, 1, 2)
	assert.True(t, ok)
	assert.Equal(t, "Capitals", got.Title)
	assert.Equal(t, 2, got.Version)
	assert.Len(t, got.Options, 2)
}

func TestVersionCache_KeysAreVersionScoped(t *testing.T) {
	backend := newMemoryCache()
	vc := NewVersionCache(backend)
	ctx := context.Background()

	vc.Put(ctx, &models.QuestionVersion{QuestionID: 1, Version: 1, Title: "v1"})
	vc.Put(ctx, &models.QuestionVersion{QuestionID: 1, Version: 2, Title: "v2"})

	v1, ok := vc.Get(ctx, 1, 1)
	assert.True(t, ok)
	assert.Equal(t, "v1", v1.Title)

	v2, ok := vc.Get(ctx, 1, 2)
	assert.True(t, ok)
	assert.Equal(t, "v2", v2.Title)

	_, ok = vc.Get(ctx, 2, 1)
	assert.False(t, ok)
}

func TestVersionCache_DegradesToMissOnFailure(t *testing.T) {
	backend := newMemoryCache()
	backend.failing = true
	vc := NewVersionCache(backend)
	ctx := context.Background()

	vc.Put(ctx, &models.QuestionVersion{QuestionID: 1, Version: 1})

	_, ok := vc.Get(ctx, 1, 1)
	assert.False(t, ok, "cache trouble must read as a miss, never an error")
}

func TestVersionCache_NilSafe(t *testing.T) {
	var vc *VersionCache
	ctx := context.Background()

	vc.Put(ctx, &models.QuestionVersion{QuestionID: 1, Version: 1})
	_, ok := vc.Get(ctx, 1, 1)
	assert.False(t, ok)

	empty := NewVersionCache(nil)
	empty.Put(ctx, nil)
	_, ok = empty.Get(ctx, 1, 1)
	assert.False(t, ok)
}
