// api/util/cache_service.go

package util

import (
	"context"
	"time"

	"github.com/strafeup/permissions/api/db"
	"github.com/strafeup/permissions/api/model"
)

// CacheService keeps the structure snapshot in Redis for a short TTL.
type CacheService struct {
	structureTTL time.Duration
}

func NewCacheService(structureTTL time.Duration) *CacheService {
	return &CacheService{structureTTL: structureTTL}
}

func (c *CacheService) GetStructure(ctx context.Context) (model.Structure, error) {
	return db.GetCachedStructure(ctx)
}

func (c *CacheService) SetStructure(ctx context.Context, structure model.Structure) error {
	return db.CacheStructure(ctx, structure, c.structureTTL)
}
