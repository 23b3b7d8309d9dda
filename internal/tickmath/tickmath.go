package tickmath

import (
	"errors"
	"fmt"
	"math"
)

// TickBase is the price ratio between two adjacent ticks.
const TickBase = 1.0001

var (
	ErrInvalidSpacing    = errors.New("tick spacing must be positive")
	ErrInvalidPriceRange = errors.New("invalid price range")
)

var logTickBase = math.Log(TickBase)

// BoundaryTicks is the tick range enclosing the current tick.
type BoundaryTicks struct {
	Lower int32
	Upper int32
}

// SqrtPriceBounds holds the sqrt prices at the lower boundary, the current tick and the upper boundary.
type SqrtPriceBounds struct {
	Lower   float64
	Current float64
	Upper   float64
}

// PriceAtTick returns 1.0001^tick.
func PriceAtTick(tick int32) float64 {
	return math.Exp(float64(tick) * logTickBase)
}

// SqrtPriceAtTick returns sqrt(1.0001^tick).
func SqrtPriceAtTick(tick int32) float64 {
	return math.Exp(float64(tick) * logTickBase / 2)
}

// ResolveBoundaryTicks returns the spacing-aligned ticks around tick. Lower is the
// greatest multiple of spacing that is <= tick and Upper = Lower + spacing.
func ResolveBoundaryTicks(tick int32, spacing int32) (BoundaryTicks, error) {
	if spacing <= 0 {
		return BoundaryTicks{}, fmt.Errorf("%w: %d", ErrInvalidSpacing, spacing)
	}
	lower := floorDiv(int64(tick), int64(spacing)) * int64(spacing)
	upper := lower + int64(spacing)
	if lower < math.MinInt32 {
		return BoundaryTicks{}, fmt.Errorf("%w: lower tick underflows int32", ErrInvalidPriceRange)
	}
	if upper > math.MaxInt32 {
		return BoundaryTicks{}, fmt.Errorf("%w: upper tick overflows int32", ErrInvalidPriceRange)
	}
	return BoundaryTicks{Lower: int32(lower), Upper: int32(upper)}, nil
}

// SqrtPriceBoundsAt computes the sqrt prices for tick and its boundaries.
func SqrtPriceBoundsAt(tick int32, bounds BoundaryTicks) (SqrtPriceBounds, error) {
	if bounds.Lower > tick || tick >= bounds.Upper {
		return SqrtPriceBounds{}, fmt.Errorf("%w: tick %d outside [%d, %d)", ErrInvalidPriceRange, tick, bounds.Lower, bounds.Upper)
	}

	out := SqrtPriceBounds{
		Lower:   SqrtPriceAtTick(bounds.Lower),
		Current: SqrtPriceAtTick(tick),
		Upper:   SqrtPriceAtTick(bounds.Upper),
	}
	for _, v := range []float64{out.Lower, out.Current, out.Upper} {
		if v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
			return SqrtPriceBounds{}, fmt.Errorf("%w: sqrt price %v at tick %d", ErrInvalidPriceRange, v, tick)
		}
	}
	return out, nil
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
