// Package geocode turns free-form addresses into coordinates.
package geocode

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/spigell/fedjobs/internal/geo"
	"github.com/spigell/fedjobs/internal/retry"
)

// Geocoder resolves an address. A nil result with a nil error means the
// address is unknown.
type Geocoder interface {
	Resolve(ctx context.Context, address string) (*geo.Coordinates, error)
}

// Cached resolves addresses through a Cache, retrying the underlying geocoder
// on transient failures. Concurrent lookups of one address share a request.
type Cached struct {
	inner  Geocoder
	cache  *Cache
	policy retry.Policy
	logger *zap.Logger
	group  singleflight.Group
}

func NewCached(inner Geocoder, cache *Cache, policy retry.Policy, logger *zap.Logger) *Cached {
	if cache == nil {
		cache = NewCache()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cached{
		inner:  inner,
		cache:  cache,
		policy: policy,
		logger: logger,
	}
}

func (c *Cached) Cache() *Cache {
	return c.cache
}

func (c *Cached) Resolve(ctx context.Context, address string) (*geo.Coordinates, error) {
	if strings.TrimSpace(address) == "" {
		return nil, nil
	}

	if coords, ok := c.cache.Get(address); ok {
		c.logger.Debug("geocode cache hit", zap.String("address", address), zap.Bool("found", coords != nil))
		return coords, nil
	}

	v, err, _ := c.group.Do(address, func() (any, error) {
		policy := c.policy
		policy.Notify = func(err error, attempt int, delay time.Duration) {
			c.logger.Warn("geocoding failed, retrying",
				zap.String("address", address),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(err),
			)
		}

		coords, err := retry.Get(ctx, policy, func(ctx context.Context) (*geo.Coordinates, error) {
			return c.inner.Resolve(ctx, address)
		})
		if err != nil {
			return nil, err
		}

		c.cache.Put(address, coords)
		return coords, nil
	})
	if err != nil {
		return nil, err
	}

	coords, _ := v.(*geo.Coordinates)
	if coords == nil || !coords.Valid() {
		c.logger.Info("address not found", zap.String("address", address))
		return nil, nil
	}

	cp := *coords
	return &cp, nil
}
