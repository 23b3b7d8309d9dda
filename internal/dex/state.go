package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"poolReport/internal/abisource"
	"poolReport/internal/model"
)

// V3State is the live state of a concentrated-liquidity pool as read from chain.
type V3State struct {
	Meta      model.PoolMeta
	Slot0     model.PoolSlot0
	Liquidity *big.Int
}

// V2State is the live state of a constant-product pair as read from chain.
type V2State struct {
	Token0   common.Address
	Token1   common.Address
	Reserves model.Reserves
}

// ReadV3State loads pool metadata, slot0 and active liquidity.
func (r *Reader) ReadV3State(ctx context.Context, pool common.Address) (V3State, error) {
	meta, err := r.PoolMeta(ctx, pool)
	if err != nil {
		return V3State{}, err
	}

	values, err := r.call(ctx, pool, abisource.KindV3Pool, "liquidity")
	if err != nil {
		return V3State{}, err
	}
	liq, err := asBigInt(values[0])
	if err != nil {
		return V3State{}, fmt.Errorf("liquidity: %w", err)
	}

	values, err = r.call(ctx, pool, abisource.KindV3Pool, "slot0")
	if err != nil {
		return V3State{}, err
	}
	if len(values) < 2 {
		return V3State{}, fmt.Errorf("slot0 returned %d values", len(values))
	}
	sqrt, err := asBigInt(values[0])
	if err != nil {
		return V3State{}, fmt.Errorf("slot0 sqrt price: %w", err)
	}
	tickInt, err := asBigInt(values[1])
	if err != nil {
		return V3State{}, fmt.Errorf("slot0 tick: %w", err)
	}
	tick, err := int24FromBig(tickInt)
	if err != nil {
		return V3State{}, fmt.Errorf("slot0 tick: %w", err)
	}

	return V3State{
		Meta: meta,
		Slot0: model.PoolSlot0{
			SqrtPriceX96: sqrt.String(),
			Tick:         tick,
		},
		Liquidity: liq,
	}, nil
}

// ReadV2State loads the pair tokens and stored reserves.
func (r *Reader) ReadV2State(ctx context.Context, pair common.Address) (V2State, error) {
	token0, err := r.callAddress(ctx, pair, abisource.KindV2Pair, "token0")
	if err != nil {
		return V2State{}, err
	}
	token1, err := r.callAddress(ctx, pair, abisource.KindV2Pair, "token1")
	if err != nil {
		return V2State{}, err
	}

	values, err := r.call(ctx, pair, abisource.KindV2Pair, "getReserves")
	if err != nil {
		return V2State{}, err
	}
	if len(values) < 2 {
		return V2State{}, fmt.Errorf("getReserves returned %d values", len(values))
	}
	reserve0, err := asBigInt(values[0])
	if err != nil {
		return V2State{}, fmt.Errorf("reserve0: %w", err)
	}
	reserve1, err := asBigInt(values[1])
	if err != nil {
		return V2State{}, fmt.Errorf("reserve1: %w", err)
	}

	return V2State{
		Token0:   token0,
		Token1:   token1,
		Reserves: model.Reserves{Reserve0: reserve0, Reserve1: reserve1},
	}, nil
}
