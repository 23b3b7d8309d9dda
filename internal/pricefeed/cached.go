package pricefeed

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

const DefaultTTL = 5 * time.Minute

// CachedOracle answers from cache before asking the wrapped oracle. Cache failures are logged
// and never fail a lookup.
type CachedOracle struct {
	oracle Oracle
	cache  Cache
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedOracle(oracle Oracle, cache Cache, ttl time.Duration, logger *zap.Logger) *CachedOracle {
	if cache == nil {
		cache = NewMemoryCache()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedOracle{oracle: oracle, cache: cache, ttl: ttl, logger: logger}
}

func (c *CachedOracle) PriceUSD(ctx context.Context, token common.Address) (*float64, error) {
	quote, ok, err := c.cache.Get(ctx, token)
	if err != nil {
		c.logger.Warn("price cache read failed", zap.String("token", token.Hex()), zap.Error(err))
	} else if ok {
		return quote.PriceUSD, nil
	}

	price, err := c.oracle.PriceUSD(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, token, Quote{PriceUSD: price}, c.ttl); err != nil {
		c.logger.Warn("price cache write failed", zap.String("token", token.Hex()), zap.Error(err))
	}
	return price, nil
}
