package structure

import (
	"context"

	"go.uber.org/zap"

	logger "github.com/strafeup/permissions/api/logging"
	"github.com/strafeup/permissions/api/model"
	"github.com/strafeup/permissions/api/observability"
)

// Cache keeps a recent structure snapshot. GetStructure returns nil on a miss.
type Cache interface {
	GetStructure(ctx context.Context) (model.Structure, error)
	SetStructure(ctx context.Context, structure model.Structure) error
}

// CachedProvider serves snapshots from Cache and refills it from the wrapped
// Provider. Cache failures degrade to a provider call; provider failures are
// returned as they are.
type CachedProvider struct {
	next    Provider
	cache   Cache
	metrics *observability.Metrics
}

var _ Provider = &CachedProvider{}

func NewCachedProvider(next Provider, cache Cache, metrics *observability.Metrics) *CachedProvider {
	return &CachedProvider{next: next, cache: cache, metrics: metrics}
}

func (p *CachedProvider) GetStructure(ctx context.Context) (model.Structure, error) {
	cached, err := p.cache.GetStructure(ctx)
	if err != nil {
		logger.Warn("Structure cache read failed, falling back to provider", zap.Error(err))
		p.metrics.RecordStructureFetch("cache", "error", 0)
	} else if cached != nil {
		p.metrics.RecordStructureFetch("cache", "hit", 0)
		return cached, nil
	} else {
		p.metrics.RecordStructureFetch("cache", "miss", 0)
	}

	structure, err := p.next.GetStructure(ctx)
	if err != nil {
		return nil, err
	}

	if err := p.cache.SetStructure(ctx, structure); err != nil {
		logger.Warn("Failed to cache structure", zap.Error(err))
	}
	return structure, nil
}
