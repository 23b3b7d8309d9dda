package pricefeed

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
)

// Oracle quotes a token in USD. A nil price with a nil error means the oracle has no quote.
type Oracle interface {
	PriceUSD(ctx context.Context, token common.Address) (*float64, error)
}

// Static is a fixed price table, used for offline runs and tests.
type Static map[common.Address]float64

func (s Static) PriceUSD(_ context.Context, token common.Address) (*float64, error) {
	price, ok := s[token]
	if !ok {
		return nil, nil
	}
	return &price, nil
}
