package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/campus-stack/testing-service/internal/models"
)

// Question versions are immutable once written, so cached entries are
// never invalidated. The TTL only bounds memory on cold versions.
const versionTTL = 24 * time.Hour

// VersionCache fronts the question version store. All methods degrade to
// a miss on cache trouble; the store stays the source of truth.
type VersionCache struct {
	cache CacheService
}

func NewVersionCache(cache CacheService) *VersionCache {
	return &VersionCache{cache: cache}
}

func versionKey(questionID uint, version int) string {
	return fmt.Sprintf("question:%d:v%d", questionID, version)
}

func (vc *VersionCache) Get(ctx context.Context, questionID uint, version int) (*models.QuestionVersion, bool) {
	if vc == nil || vc.cache == nil {
		return nil, false
	}
	var v models.QuestionVersion
	if err := vc.cache.Get(ctx, versionKey(questionID, version), &v); err != nil {
		return nil, false
	}
	return &v, true
}

func (vc *VersionCache) Put(ctx context.Context, v *models.QuestionVersion) {
	if vc == nil || vc.cache == nil || v == nil {
		return
	}
	// Best effort; a failed write just means a future store read.
	_ = vc.cache.Set(ctx, versionKey(v.QuestionID, v.Version), v, versionTTL)
}
