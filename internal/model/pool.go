package model

// PoolVersion identifies the AMM design of a pool.
type PoolVersion uint8

const (
	// VersionV2 is the constant-product model.
	VersionV2 PoolVersion = 2
	// VersionV3 is the concentrated-liquidity model.
	VersionV3 PoolVersion = 3
)

// PoolRef is a pool discovered through a factory.
type PoolRef struct {
	Version PoolVersion `json:"version"`
	Address string      `json:"address"`
	FeeTier uint32      `json:"fee_tier"`
}
