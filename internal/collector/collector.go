package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"poolReport/internal/dex"
	"poolReport/internal/model"
	"poolReport/internal/pricefeed"
	"poolReport/internal/report"
	"poolReport/internal/snapshot"
)

// Config holds runtime settings for a report run. A zero factory address disables that
// pool version.
type Config struct {
	TokenA       common.Address
	TokenB       common.Address
	V2Factory    common.Address
	V3Factory    common.Address
	FeeTiers     []uint32
	V2FeeTier    uint32
	Concurrency  int
	MaxRetries   int
	RetryBackoff time.Duration
	SkipFailed   bool
}

// Collector discovers the pools of a token pair and turns each into a snapshot.
type Collector struct {
	cfg    Config
	reader *dex.Reader
	oracle pricefeed.Oracle
	logger *zap.Logger
}

// New builds a Collector. A nil oracle leaves every price missing.
func New(cfg Config, reader *dex.Reader, oracle pricefeed.Oracle, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.V2FeeTier == 0 {
		cfg.V2FeeTier = dex.DefaultV2FeeTier
	}
	if len(cfg.FeeTiers) == 0 {
		cfg.FeeTiers = dex.DefaultFeeTiers
	}
	return &Collector{cfg: cfg, reader: reader, oracle: oracle, logger: logger}
}

// Discover returns the pair's pools: the constant-product pair first, then concentrated pools
// in fee-tier order.
func (c *Collector) Discover(ctx context.Context) ([]model.PoolRef, error) {
	if c.reader == nil {
		return nil, fmt.Errorf("dex reader is nil")
	}
	if c.cfg.TokenA == c.cfg.TokenB {
		return nil, fmt.Errorf("token-a and token-b must differ")
	}

	var refs []model.PoolRef
	if c.cfg.V2Factory != (common.Address{}) {
		var (
			pair common.Address
			ok   bool
		)
		err := withRetry(ctx, c.cfg.MaxRetries, c.cfg.RetryBackoff, func(ctx context.Context) error {
			var err error
			pair, ok, err = c.reader.FindV2Pair(ctx, c.cfg.V2Factory, c.cfg.TokenA, c.cfg.TokenB)
			if err != nil {
				c.logger.Warn("getPair failed", zap.Error(err))
			}
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("find v2 pair: %w", err)
		}
		if ok {
			refs = append(refs, model.PoolRef{Version: model.VersionV2, Address: pair.Hex(), FeeTier: c.cfg.V2FeeTier})
		} else {
			c.logger.Info("no v2 pair")
		}
	}

	if c.cfg.V3Factory != (common.Address{}) {
		var pools []model.PoolRef
		err := withRetry(ctx, c.cfg.MaxRetries, c.cfg.RetryBackoff, func(ctx context.Context) error {
			var err error
			pools, err = c.reader.FindV3Pools(ctx, c.cfg.V3Factory, c.cfg.TokenA, c.cfg.TokenB, c.cfg.FeeTiers)
			if err != nil {
				c.logger.Warn("getPool failed", zap.Error(err))
			}
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("find v3 pools: %w", err)
		}
		refs = append(refs, pools...)
	}
	return refs, nil
}

// Collect discovers pools, snapshots them concurrently and appends the results to agg in
// discovery order. Failed pools are skipped with a warning when SkipFailed is set; otherwise
// the first *PoolError aborts the run.
func (c *Collector) Collect(ctx context.Context, agg *report.Aggregator) ([]model.PoolSnapshot, error) {
	if agg == nil {
		return nil, fmt.Errorf("aggregator is nil")
	}
	refs, err := c.Discover(ctx)
	if err != nil {
		return nil, err
	}
	c.logger.Info("pools discovered", zap.Int("pools", len(refs)))

	results := make([]*model.PoolSnapshot, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Concurrency)
	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			snap, err := c.snapshotPool(gctx, ref)
			if err != nil {
				poolErr := &PoolError{Address: ref.Address, Version: ref.Version, Err: err}
				if c.cfg.SkipFailed && gctx.Err() == nil {
					c.logger.Warn("skip pool", zap.String("pool", ref.Address), zap.Uint8("version", uint8(ref.Version)), zap.Error(err))
					return nil
				}
				return poolErr
			}
			results[i] = &snap
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snapshots := make([]model.PoolSnapshot, 0, len(refs))
	for _, snap := range results {
		if snap == nil {
			continue
		}
		agg.AddSnapshot(*snap)
		snapshots = append(snapshots, *snap)
	}
	c.logger.Info("collect complete", zap.Int("snapshots", len(snapshots)), zap.Int("skipped", len(refs)-len(snapshots)))
	return snapshots, nil
}

func (c *Collector) snapshotPool(ctx context.Context, ref model.PoolRef) (model.PoolSnapshot, error) {
	if !common.IsHexAddress(ref.Address) {
		return model.PoolSnapshot{}, fmt.Errorf("invalid pool address")
	}
	addr := common.HexToAddress(ref.Address)

	switch ref.Version {
	case model.VersionV2:
		var state dex.V2State
		err := withRetry(ctx, c.cfg.MaxRetries, c.cfg.RetryBackoff, func(ctx context.Context) error {
			var err error
			state, err = c.reader.ReadV2State(ctx, addr)
			return err
		})
		if err != nil {
			return model.PoolSnapshot{}, fmt.Errorf("read pair: %w", err)
		}
		token0, token1, err := c.tokenPair(ctx, state.Token0, state.Token1)
		if err != nil {
			return model.PoolSnapshot{}, err
		}
		return snapshot.FromConstantProduct(ref.Address, token0, token1, state.Reserves, ref.FeeTier)

	case model.VersionV3:
		var state dex.V3State
		err := withRetry(ctx, c.cfg.MaxRetries, c.cfg.RetryBackoff, func(ctx context.Context) error {
			var err error
			state, err = c.reader.ReadV3State(ctx, addr)
			if errors.Is(err, dex.ErrUnexpectedTickSpacing) {
				return permanent(err)
			}
			return err
		})
		if err != nil {
			return model.PoolSnapshot{}, fmt.Errorf("read pool: %w", err)
		}
		token0, token1, err := c.tokenPair(ctx, common.HexToAddress(state.Meta.Token0), common.HexToAddress(state.Meta.Token1))
		if err != nil {
			return model.PoolSnapshot{}, err
		}
		return snapshot.FromConcentrated(ref.Address, model.PoolState{
			Tick:        state.Slot0.Tick,
			Liquidity:   state.Liquidity,
			TickSpacing: state.Meta.TickSpacing,
			Token0:      token0,
			Token1:      token1,
		}, ref.FeeTier)

	default:
		return model.PoolSnapshot{}, fmt.Errorf("unsupported pool version %d", ref.Version)
	}
}

func (c *Collector) tokenPair(ctx context.Context, addr0, addr1 common.Address) (model.Token, model.Token, error) {
	token0, err := c.token(ctx, addr0)
	if err != nil {
		return model.Token{}, model.Token{}, err
	}
	token1, err := c.token(ctx, addr1)
	if err != nil {
		return model.Token{}, model.Token{}, err
	}
	return token0, token1, nil
}

// token loads metadata and price. A failed price lookup leaves the price missing.
func (c *Collector) token(ctx context.Context, addr common.Address) (model.Token, error) {
	var meta model.TokenMeta
	err := withRetry(ctx, c.cfg.MaxRetries, c.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		meta, err = c.reader.TokenMeta(ctx, addr)
		return err
	})
	if err != nil {
		return model.Token{}, fmt.Errorf("token %s: %w", addr.Hex(), err)
	}

	if c.oracle == nil {
		return meta.WithPrice(nil), nil
	}
	price, err := c.oracle.PriceUSD(ctx, addr)
	if err != nil {
		c.logger.Warn("price lookup failed", zap.String("token", addr.Hex()), zap.Error(err))
		return meta.WithPrice(nil), nil
	}
	if price == nil {
		c.logger.Debug("no price quote", zap.String("token", addr.Hex()))
	}
	return meta.WithPrice(price), nil
}
