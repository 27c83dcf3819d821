package availability

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kapu/name-bender-go/internal/constants"
	"github.com/kapu/name-bender-go/internal/domain"
	"github.com/kapu/name-bender-go/internal/metrics"
)

// ResultCache is the slice of the Redis cache service the oracle needs.
type ResultCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

// CachedOracle serves repeated lookups from the result cache and collapses
// identical in-flight lookups across sessions into one upstream call. Only
// resolved answers are cached.
type CachedOracle struct {
	next    Oracle
	cache   ResultCache
	ttl     time.Duration
	group   singleflight.Group
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewCachedOracle(next Oracle, cache ResultCache, ttl time.Duration, m *metrics.Metrics, logger *zap.Logger) *CachedOracle {
	if ttl <= 0 {
		ttl = constants.CacheTTL.Availability
	}
	return &CachedOracle{
		next:    next,
		cache:   cache,
		ttl:     ttl,
		metrics: m,
		logger:  logger,
	}
}

func cacheKey(name, tld string) string {
	return constants.CacheKeys.AvailabilityPrefix + name + tld
}

func (o *CachedOracle) Check(ctx context.Context, name, tld string) (domain.AvailabilityStatus, error) {
	key := cacheKey(name, tld)

	if o.cache != nil {
		var cached domain.AvailabilityStatus
		found, err := o.cache.Get(ctx, key, &cached)
		switch {
		case err != nil:
			o.metrics.IncrementCacheLookup("error")
			o.logger.Warn("Availability cache read failed", zap.String("key", key), zap.Error(err))
		case found && !cached.IsValid():
			o.metrics.IncrementCacheLookup("error")
			o.logger.Warn("Availability cache holds an unknown status", zap.String("key", key), zap.String("status", cached.String()))
		case found && cached.IsTerminal():
			o.metrics.IncrementCacheLookup("hit")
			return cached, nil
		default:
			o.metrics.IncrementCacheLookup("miss")
		}
	}

	// The shared lookup runs detached from any single caller; each caller
	// stops waiting on its own ctx.
	ch := o.group.DoChan(key, func() (any, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.APIConfig.DoHTimeout)
		defer cancel()

		start := time.Now()
		status, err := o.next.Check(lookupCtx, name, tld)
		o.metrics.ObserveOracleLatency("upstream", time.Since(start))
		if err != nil {
			return domain.StatusUnknown, err
		}
		if o.cache != nil && status.IsTerminal() {
			if cacheErr := o.cache.Set(lookupCtx, key, status, o.ttl); cacheErr != nil {
				o.logger.Warn("Availability cache write failed", zap.String("key", key), zap.Error(cacheErr))
			}
		}
		return status, nil
	})

	select {
	case <-ctx.Done():
		return domain.StatusUnknown, ctx.Err()
	case res := <-ch:
		if res.Shared {
			o.logger.Debug("Availability lookup shared", zap.String("key", key))
		}
		if res.Err != nil {
			return domain.StatusUnknown, res.Err
		}
		return res.Val.(domain.AvailabilityStatus), nil
	}
}
