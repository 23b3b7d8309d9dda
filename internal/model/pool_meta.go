package model

import "math/big"

// PoolMeta captures immutable concentrated-liquidity pool metadata.
type PoolMeta struct {
	Token0      string `json:"token0"`
	Token1      string `json:"token1"`
	Fee         uint32 `json:"fee"`
	TickSpacing int32  `json:"tick_spacing"`
}

// PoolSlot0 includes select slot0 fields.
type PoolSlot0 struct {
	SqrtPriceX96 string `json:"sqrt_price_x96"`
	Tick         int32  `json:"tick"`
}

// PoolState is the live state of a concentrated-liquidity pool.
type PoolState struct {
	Tick        int32
	Liquidity   *big.Int
	TickSpacing int32
	Token0      Token
	Token1      Token
}

// Reserves are the stored balances of a constant-product pair.
type Reserves struct {
	Reserve0 *big.Int
	Reserve1 *big.Int
}
