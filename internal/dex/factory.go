package dex

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"poolReport/internal/abisource"
	"poolReport/internal/model"
)

// DefaultV2FeeTier is the fixed constant-product swap fee in hundredths of a bip.
const DefaultV2FeeTier uint32 = 3000

// DefaultFeeTiers are the concentrated-liquidity fee tiers enabled on the factory.
var DefaultFeeTiers = []uint32{100, 500, 3000, 10000}

var feeTickSpacing = map[uint32]int32{
	100:   1,
	500:   10,
	3000:  60,
	10000: 200,
}

var ErrUnexpectedTickSpacing = errors.New("tick spacing does not match fee tier")

// TickSpacingForFee returns the tick spacing the factory assigns to a fee tier.
func TickSpacingForFee(fee uint32) (int32, bool) {
	spacing, ok := feeTickSpacing[fee]
	return spacing, ok
}

// ValidateTickSpacing checks a pool's spacing against its fee tier. Unknown tiers only need a
// positive spacing.
func ValidateTickSpacing(fee uint32, spacing int32) error {
	want, ok := TickSpacingForFee(fee)
	if !ok {
		if spacing <= 0 {
			return fmt.Errorf("%w: fee %d spacing %d", ErrUnexpectedTickSpacing, fee, spacing)
		}
		return nil
	}
	if spacing != want {
		return fmt.Errorf("%w: fee %d spacing %d want %d", ErrUnexpectedTickSpacing, fee, spacing, want)
	}
	return nil
}

// FindV2Pair looks up the constant-product pair for two tokens. ok is false when the factory
// has no pair.
func (r *Reader) FindV2Pair(ctx context.Context, factory, tokenA, tokenB common.Address) (pair common.Address, ok bool, err error) {
	pair, err = r.callAddress(ctx, factory, abisource.KindV2Factory, "getPair", tokenA, tokenB)
	if err != nil {
		return common.Address{}, false, err
	}
	return pair, pair != (common.Address{}), nil
}

// FindV3Pools returns the concentrated-liquidity pools for two tokens, one per fee tier that has a
// deployed pool, in the order of fees.
func (r *Reader) FindV3Pools(ctx context.Context, factory, tokenA, tokenB common.Address, fees []uint32) ([]model.PoolRef, error) {
	pools := make([]model.PoolRef, 0, len(fees))
	for _, fee := range fees {
		pool, err := r.callAddress(ctx, factory, abisource.KindV3Factory, "getPool", tokenA, tokenB, new(big.Int).SetUint64(uint64(fee)))
		if err != nil {
			return nil, fmt.Errorf("fee %d: %w", fee, err)
		}
		if pool == (common.Address{}) {
			continue
		}
		pools = append(pools, model.PoolRef{
			Version: model.VersionV3,
			Address: pool.Hex(),
			FeeTier: fee,
		})
	}
	return pools, nil
}
