package snapshot

import (
	"fmt"

	"poolReport/internal/liquidity"
	"poolReport/internal/model"
	"poolReport/internal/tickmath"
)

var (
	ErrInvalidSpacing    = tickmath.ErrInvalidSpacing
	ErrInvalidPriceRange = tickmath.ErrInvalidPriceRange
	ErrDivisionByZero    = liquidity.ErrDivisionByZero
)

// FromConcentrated values the active range of a concentrated-liquidity pool.
func FromConcentrated(address string, state model.PoolState, feeTier uint32) (model.PoolSnapshot, error) {
	bounds, err := tickmath.ResolveBoundaryTicks(state.Tick, state.TickSpacing)
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("boundary ticks: %w", err)
	}

	sqrt, err := tickmath.SqrtPriceBoundsAt(state.Tick, bounds)
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("sqrt prices: %w", err)
	}

	l, err := liquidity.ToFloat(state.Liquidity)
	if err != nil {
		return model.PoolSnapshot{}, err
	}

	raw0, err := liquidity.TokenXInRange(l, sqrt.Current, sqrt.Upper)
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("token0 in range: %w", err)
	}
	raw1, err := liquidity.TokenYInRange(l, sqrt.Current, sqrt.Lower)
	if err != nil {
		return model.PoolSnapshot{}, fmt.Errorf("token1 in range: %w", err)
	}

	snap := build(address, model.VersionV3, feeTier, state.Token0, state.Token1,
		Normalize(raw0, state.Token0.Decimals),
		Normalize(raw1, state.Token1.Decimals),
	)
	snap.Tick = state.Tick
	snap.TickLower = bounds.Lower
	snap.TickUpper = bounds.Upper
	return snap, nil
}

// FromConstantProduct values a constant-product pair from its stored reserves.
func FromConstantProduct(address string, token0, token1 model.Token, reserves model.Reserves, feeTier uint32) (model.PoolSnapshot, error) {
	if reserves.Reserve0 != nil && reserves.Reserve0.Sign() < 0 {
		return model.PoolSnapshot{}, fmt.Errorf("negative reserve0: %s", reserves.Reserve0)
	}
	if reserves.Reserve1 != nil && reserves.Reserve1.Sign() < 0 {
		return model.PoolSnapshot{}, fmt.Errorf("negative reserve1: %s", reserves.Reserve1)
	}

	return build(address, model.VersionV2, feeTier, token0, token1,
		NormalizeInt(reserves.Reserve0, token0.Decimals),
		NormalizeInt(reserves.Reserve1, token1.Decimals),
	), nil
}

func build(address string, version model.PoolVersion, feeTier uint32, token0, token1 model.Token, amount0, amount1 float64) model.PoolSnapshot {
	return model.PoolSnapshot{
		Address:   address,
		Version:   version,
		FeeTier:   feeTier,
		Token0:    token0,
		Token1:    token1,
		Amount0:   amount0,
		Amount1:   amount1,
		Value0USD: usdValue(amount0, token0.PriceUSD),
		Value1USD: usdValue(amount1, token1.PriceUSD),
		Ratio:     model.NewRatio(amount0, amount1),
	}
}
