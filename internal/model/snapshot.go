package model

import (
	"encoding/json"
	"strconv"
)

// RatioUnavailable is the reported form of a ratio with a zero denominator.
const RatioUnavailable = "NA"

// Ratio is a price ratio that may be unavailable.
type Ratio struct {
	Value     float64
	Available bool
}

// NewRatio divides num by den, marking the result unavailable when den is zero.
func NewRatio(num, den float64) Ratio {
	if den == 0 {
		return Ratio{}
	}
	return Ratio{Value: num / den, Available: true}
}

func (r Ratio) String() string {
	if !r.Available {
		return RatioUnavailable
	}
	return strconv.FormatFloat(r.Value, 'f', -1, 64)
}

func (r Ratio) MarshalJSON() ([]byte, error) {
	if !r.Available {
		return json.Marshal(RatioUnavailable)
	}
	return json.Marshal(r.Value)
}

// PoolSnapshot is a decimal-normalized, USD-valued view of one pool.
type PoolSnapshot struct {
	Address   string      `json:"address"`
	Version   PoolVersion `json:"version"`
	FeeTier   uint32      `json:"fee_tier"`
	Token0    Token       `json:"token0"`
	Token1    Token       `json:"token1"`
	Amount0   float64     `json:"amount0"`
	Amount1   float64     `json:"amount1"`
	Value0USD *float64    `json:"value0_usd"`
	Value1USD *float64    `json:"value1_usd"`
	Ratio     Ratio       `json:"ratio"`

	// Concentrated-liquidity only.
	Tick      int32 `json:"tick,omitempty"`
	TickLower int32 `json:"tick_lower,omitempty"`
	TickUpper int32 `json:"tick_upper,omitempty"`
}
