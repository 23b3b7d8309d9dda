package abisource

import (
	"context"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Source resolves the ABI used to talk to a contract.
type Source interface {
	ABI(ctx context.Context, address common.Address, kind Kind) (abi.ABI, error)
}

// EmbeddedSource serves the built-in ABIs regardless of address.
type EmbeddedSource struct{}

func (EmbeddedSource) ABI(_ context.Context, _ common.Address, kind Kind) (abi.ABI, error) {
	return Embedded(kind)
}
