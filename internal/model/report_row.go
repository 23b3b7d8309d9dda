package model

// ReportRow is the fixed-schema projection of a PoolSnapshot.
type ReportRow struct {
	Version     PoolVersion `json:"version"`
	PoolAddress string      `json:"pool_address"`
	Token0      string      `json:"token0"`
	Token1      string      `json:"token1"`
	FeeTier     uint32      `json:"fee_tier"`
	Amount0     float64     `json:"amount0"`
	Amount1     float64     `json:"amount1"`
	Token0TVL   *float64    `json:"token0_tvl"`
	Token1TVL   *float64    `json:"token1_tvl"`
	Ratio       Ratio       `json:"token0_token1"`
	Token0Price *float64    `json:"token0_price"`
	Token1Price *float64    `json:"token1_price"`
}
