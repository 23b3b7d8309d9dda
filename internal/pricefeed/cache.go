package pricefeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/redis/go-redis/v9"
)

// Quote is a cached oracle answer. A nil PriceUSD records that the oracle had no quote.
type Quote struct {
	PriceUSD *float64 `json:"price_usd"`
}

// Cache stores quotes with a TTL.
type Cache interface {
	Get(ctx context.Context, token common.Address) (Quote, bool, error)
	Set(ctx context.Context, token common.Address, quote Quote, ttl time.Duration) error
}

type memoryEntry struct {
	quote     Quote
	expiresAt time.Time
}

// MemoryCache is a process-local quote cache.
type MemoryCache struct {
	mu   sync.RWMutex
	data map[common.Address]memoryEntry
	now  func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{data: make(map[common.Address]memoryEntry), now: time.Now}
}

func (c *MemoryCache) Get(_ context.Context, token common.Address) (Quote, bool, error) {
	c.mu.RLock()
	entry, ok := c.data[token]
	c.mu.RUnlock()
	if !ok || !c.now().Before(entry.expiresAt) {
		return Quote{}, false, nil
	}
	return entry.quote, true, nil
}

func (c *MemoryCache) Set(_ context.Context, token common.Address, quote Quote, ttl time.Duration) error {
	c.mu.Lock()
	c.data[token] = memoryEntry{quote: quote, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
	return nil
}

const redisKeyPrefix = "poolreport:price:"

// RedisCache shares quotes between runs through Redis.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to addr and pings it.
func NewRedisCache(ctx context.Context, addr, password string, db int) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return &RedisCache{client: client}, nil
}

func redisKey(token common.Address) string {
	return redisKeyPrefix + strings.ToLower(token.Hex())
}

func (r *RedisCache) Get(ctx context.Context, token common.Address) (Quote, bool, error) {
	val, err := r.client.Get(ctx, redisKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Quote{}, false, nil
		}
		return Quote{}, false, fmt.Errorf("redis get: %w", err)
	}
	var quote Quote
	if err := json.Unmarshal([]byte(val), &quote); err != nil {
		return Quote{}, false, fmt.Errorf("decode cached quote: %w", err)
	}
	return quote, true, nil
}

func (r *RedisCache) Set(ctx context.Context, token common.Address, quote Quote, ttl time.Duration) error {
	data, err := json.Marshal(quote)
	if err != nil {
		return fmt.Errorf("encode quote: %w", err)
	}
	if err := r.client.Set(ctx, redisKey(token), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}

// DefaultBackfillTTL caps how long an l2 hit is kept in l1.
const DefaultBackfillTTL = time.Minute

// LayeredCache reads l1 then l2, backfilling l1 on an l2 hit, and writes through to both.
// Backfilled entries live at most backfillTTL, and writes never give l1 a longer TTL than l2.
type LayeredCache struct {
	l1          Cache
	l2          Cache
	backfillTTL time.Duration
}

// NewLayeredCache builds a two-tier cache. A non-positive backfillTTL uses DefaultBackfillTTL.
func NewLayeredCache(l1, l2 Cache, backfillTTL time.Duration) *LayeredCache {
	if backfillTTL <= 0 {
		backfillTTL = DefaultBackfillTTL
	}
	return &LayeredCache{l1: l1, l2: l2, backfillTTL: backfillTTL}
}

func (lc *LayeredCache) Get(ctx context.Context, token common.Address) (Quote, bool, error) {
	if lc.l1 != nil {
		if quote, ok, err := lc.l1.Get(ctx, token); err == nil && ok {
			return quote, true, nil
		}
	}
	if lc.l2 == nil {
		return Quote{}, false, nil
	}
	quote, ok, err := lc.l2.Get(ctx, token)
	if err != nil || !ok {
		return Quote{}, false, err
	}
	if lc.l1 != nil {
		_ = lc.l1.Set(ctx, token, quote, lc.backfillTTL)
	}
	return quote, true, nil
}

func (lc *LayeredCache) Set(ctx context.Context, token common.Address, quote Quote, ttl time.Duration) error {
	var l1Err, l2Err error
	if lc.l1 != nil {
		l1TTL := ttl
		if l1TTL > lc.backfillTTL {
			l1TTL = lc.backfillTTL
		}
		l1Err = lc.l1.Set(ctx, token, quote, l1TTL)
	}
	if lc.l2 != nil {
		l2Err = lc.l2.Set(ctx, token, quote, ttl)
	}
	if l2Err != nil {
		return l2Err
	}
	return l1Err
}
