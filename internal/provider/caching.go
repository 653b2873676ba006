package provider

import (
	"context"
	"errors"
	"time"

	"stocklens/internal/contracts"
	"stocklens/internal/store"
	"stocklens/pkg/logger"
	"stocklens/pkg/redis"
)

// cachedWindow is the redis payload for one fetched range.
type cachedWindow struct {
	Bars []contracts.RawBar `json:"bars"`
	Meta Metadata           `json:"meta"`
}

// CachingProvider decorates another provider with a redis hot cache and
// a PostgreSQL bar store. Lookup order is redis, then the live source;
// the store is written through on every live fetch and serves as a
// fallback when the source is down. Either layer may be nil.
type CachingProvider struct {
	inner  BarProvider
	cache  *redis.Cache
	store  *store.BarStore
	logger *logger.Logger
	ttl    time.Duration
}

// NewCachingProvider wraps inner with the given cache layers.
func NewCachingProvider(inner BarProvider, cache *redis.Cache, barStore *store.BarStore, log *logger.Logger) *CachingProvider {
	return &CachingProvider{
		inner:  inner,
		cache:  cache,
		store:  barStore,
		logger: log.WithComponent("provider.cache"),
		ttl:    redis.TTLDaily,
	}
}

func (p *CachingProvider) Name() string {
	return p.inner.Name() + "+cache"
}

// Fetch serves from redis when possible, otherwise fetches live and
// writes through. A live failure falls back to stored bars when the
// store has any for the range.
func (p *CachingProvider) Fetch(ctx context.Context, symbol, marketID string, from, to time.Time) ([]contracts.RawBar, Metadata, error) {
	key := redis.BarsRangeKey(marketID, symbol, from, to)

	if p.cache != nil {
		var win cachedWindow
		hit, err := p.cache.Get(ctx, key, &win)
		if err != nil {
			p.logger.WithError(err).WithField("key", key).Warn("Cache read failed")
		}
		if hit {
			return win.Bars, win.Meta, nil
		}
	}

	bars, meta, err := p.inner.Fetch(ctx, symbol, marketID, from, to)
	if err != nil {
		if !errors.Is(err, ErrUnavailable) {
			return nil, Metadata{}, err
		}
		return p.fallback(ctx, symbol, marketID, from, to, err)
	}

	if p.cache != nil {
		if cerr := p.cache.Set(ctx, key, cachedWindow{Bars: bars, Meta: meta}, p.ttl); cerr != nil {
			p.logger.WithError(cerr).WithField("key", key).Warn("Cache write failed")
		}
	}

	if p.store != nil {
		if serr := p.store.SaveBatch(ctx, marketID, symbol, bars); serr != nil {
			p.logger.WithError(serr).
				WithFields(map[string]interface{}{"market": marketID, "symbol": symbol}).
				Warn("Bar store write failed")
		}
	}

	return bars, meta, nil
}

// fallback serves previously stored bars when the live source is down.
func (p *CachingProvider) fallback(ctx context.Context, symbol, marketID string, from, to time.Time, cause error) ([]contracts.RawBar, Metadata, error) {
	if p.store == nil {
		return nil, Metadata{}, cause
	}

	bars, err := p.store.Range(ctx, marketID, symbol, from, to)
	if err != nil || len(bars) == 0 {
		return nil, Metadata{}, cause
	}

	p.logger.WithFields(map[string]interface{}{
		"market":   marketID,
		"symbol":   symbol,
		"sessions": len(bars),
	}).Warn("Live source down, serving stored bars")

	meta := Metadata{
		Source:      p.inner.Name() + "+store",
		LastUpdated: bars[len(bars)-1].Timestamp,
	}
	return bars, meta, nil
}
