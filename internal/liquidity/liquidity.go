package liquidity

import (
	"errors"
	"fmt"
	"math/big"

	"poolReport/internal/tickmath"
)

var (
	ErrDivisionByZero    = errors.New("division by zero")
	ErrNegativeLiquidity = errors.New("negative liquidity")

	// ErrInvalidPriceRange is shared with tickmath so callers can match either source.
	ErrInvalidPriceRange = tickmath.ErrInvalidPriceRange
)

// TokenXInRange returns the amount of token0 held between the current and upper sqrt price:
// L * (sqrtUpper - sqrtCurrent) / (sqrtCurrent * sqrtUpper).
func TokenXInRange(l, sqrtCurrent, sqrtUpper float64) (float64, error) {
	if l < 0 {
		return 0, ErrNegativeLiquidity
	}
	if sqrtCurrent == 0 || sqrtUpper == 0 {
		return 0, fmt.Errorf("%w: sqrtCurrent=%v sqrtUpper=%v", ErrDivisionByZero, sqrtCurrent, sqrtUpper)
	}
	if sqrtCurrent > sqrtUpper {
		return 0, fmt.Errorf("%w: sqrtCurrent %v above sqrtUpper %v", ErrInvalidPriceRange, sqrtCurrent, sqrtUpper)
	}
	return l * (sqrtUpper - sqrtCurrent) / (sqrtCurrent * sqrtUpper), nil
}

// TokenYInRange returns the amount of token1 held between the lower and current sqrt price:
// L * (sqrtCurrent - sqrtLower).
func TokenYInRange(l, sqrtCurrent, sqrtLower float64) (float64, error) {
	if l < 0 {
		return 0, ErrNegativeLiquidity
	}
	if sqrtLower > sqrtCurrent {
		return 0, fmt.Errorf("%w: sqrtLower %v above sqrtCurrent %v", ErrInvalidPriceRange, sqrtLower, sqrtCurrent)
	}
	return l * (sqrtCurrent - sqrtLower), nil
}

// ToFloat converts an on-chain liquidity value to float64. Nil is treated as zero.
func ToFloat(l *big.Int) (float64, error) {
	if l == nil {
		return 0, nil
	}
	if l.Sign() < 0 {
		return 0, fmt.Errorf("%w: %s", ErrNegativeLiquidity, l.String())
	}
	f, _ := new(big.Float).SetInt(l).Float64()
	return f, nil
}
