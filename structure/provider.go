// Package structure fetches the building hierarchy owned by the metrics service.
package structure

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	perm_errors "github.com/strafeup/permissions/api/errors"
	logger "github.com/strafeup/permissions/api/logging"
	"github.com/strafeup/permissions/api/model"
	"github.com/strafeup/permissions/api/observability"
)

const structurePath = "/metrics/structure/"

// Provider returns the current building -> floor -> room -> device hierarchy.
type Provider interface {
	GetStructure(ctx context.Context) (model.Structure, error)
}

// HTTPProvider reads the hierarchy from the metrics service.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
	metrics *observability.Metrics
}

var _ Provider = &HTTPProvider{}

func NewHTTPProvider(baseURL string, timeout time.Duration, metrics *observability.Metrics) *HTTPProvider {
	return &HTTPProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		metrics: metrics,
	}
}

func (p *HTTPProvider) GetStructure(ctx context.Context) (model.Structure, error) {
	start := time.Now()
	structure, err := p.fetch(ctx)
	duration := time.Since(start)
	if err != nil {
		p.metrics.RecordStructureFetch("provider", "error", duration)
		logger.Error("Failed to fetch structure",
			zap.Error(err),
			zap.String("url", p.baseURL+structurePath),
			zap.Duration("duration", duration))
		return nil, err
	}

	p.metrics.RecordStructureFetch("provider", "ok", duration)
	logger.Debug("Structure fetched",
		zap.Int("buildings", len(structure)),
		zap.Duration("duration", duration))
	return structure, nil
}

func (p *HTTPProvider) fetch(ctx context.Context) (model.Structure, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+structurePath, nil)
	if err != nil {
		return nil, fmt.Errorf("build structure request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", err, perm_errors.ErrStructureUnavailable)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("unexpected status %d: %w", resp.StatusCode, perm_errors.ErrStructureUnavailable)
	}

	structure := model.Structure{}
	if err := json.NewDecoder(resp.Body).Decode(&structure); err != nil {
		return nil, fmt.Errorf("decode structure: %v: %w", err, perm_errors.ErrStructureUnavailable)
	}
	return structure, nil
}
