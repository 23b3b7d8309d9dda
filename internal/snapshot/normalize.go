package snapshot

import (
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

// Normalize converts a raw token quantity into token units.
func Normalize(raw float64, decimals uint8) float64 {
	return raw / math.Pow10(int(decimals))
}

// Denormalize converts token units back to the raw scale.
func Denormalize(amount float64, decimals uint8) float64 {
	return amount * math.Pow10(int(decimals))
}

// NormalizeInt converts an on-chain balance into token units. The shift is exact; precision is
// only lost in the final float64 conversion.
func NormalizeInt(raw *big.Int, decimals uint8) float64 {
	if raw == nil {
		return 0
	}
	f, _ := decimal.NewFromBigInt(raw, -int32(decimals)).Float64()
	return f
}

func usdValue(amount float64, price *float64) *float64 {
	if price == nil {
		return nil
	}
	v := amount * *price
	return &v
}
