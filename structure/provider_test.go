package structure

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perm_errors "github.com/strafeup/permissions/api/errors"
	"github.com/strafeup/permissions/api/model"
)

func TestHTTPProvider_GetStructure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/metrics/structure/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"1": {"10": {"100": ["1000", 1001]}}}`))
	}))
	defer server.Close()

	provider := NewHTTPProvider(server.URL+"/", time.Second, nil)
	structure, err := provider.GetStructure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.Structure{1: {10: {100: {1000, 1001}}}}, structure)
}

func TestHTTPProvider_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "malformed payload",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"north-wing": {}}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			_, err := NewHTTPProvider(server.URL, time.Second, nil).GetStructure(context.Background())
			assert.ErrorIs(t, err, perm_errors.ErrStructureUnavailable)
		})
	}
}

func TestHTTPProvider_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := NewHTTPProvider(url, time.Second, nil).GetStructure(context.Background())
	assert.ErrorIs(t, err, perm_errors.ErrStructureUnavailable)
}

type countingProvider struct {
	calls     int32
	structure model.Structure
	err       error
}

func (p *countingProvider) GetStructure(ctx context.Context) (model.Structure, error) {
	atomic.AddInt32(&p.calls, 1)
	return p.structure, p.err
}

type memoryCache struct {
	structure model.Structure
	getErr    error
}

func (c *memoryCache) GetStructure(ctx context.Context) (model.Structure, error) {
	return c.structure, c.getErr
}

func (c *memoryCache) SetStructure(ctx context.Context, structure model.Structure) error {
	c.structure = structure
	return nil
}

func TestCachedProvider(t *testing.T) {
	next := &countingProvider{structure: model.Structure{1: {}}}
	cache := &memoryCache{}
	provider := NewCachedProvider(next, cache, nil)

	for i := 0; i < 3; i++ {
		structure, err := provider.GetStructure(context.Background())
		require.NoError(t, err)
		assert.Equal(t, model.Structure{1: {}}, structure)
	}
	assert.Equal(t, int32(1), next.calls)
}

func TestCachedProvider_CacheErrorFallsBack(t *testing.T) {
	next := &countingProvider{structure: model.Structure{2: {}}}
	provider := NewCachedProvider(next, &memoryCache{getErr: errors.New("redis down")}, nil)

	structure, err := provider.GetStructure(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.Structure{2: {}}, structure)
}

func TestCachedProvider_ProviderErrorPropagates(t *testing.T) {
	next := &countingProvider{err: perm_errors.ErrStructureUnavailable}
	provider := NewCachedProvider(next, &memoryCache{}, nil)

	_, err := provider.GetStructure(context.Background())
	assert.ErrorIs(t, err, perm_errors.ErrStructureUnavailable)
}
