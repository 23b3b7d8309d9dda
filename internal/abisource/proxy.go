package abisource

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ImplementationSlot is the EIP-1967 storage slot holding a proxy's implementation address.
var ImplementationSlot = common.HexToHash("0x360894a13ba1a3210667c828492db98dca3e2076cc3735a920a3ca505d382bbc")

// StorageReader reads raw contract storage.
type StorageReader interface {
	StorageAt(ctx context.Context, account common.Address, key common.Hash, blockNumber *big.Int) ([]byte, error)
}

// ResolveImplementation returns the EIP-1967 implementation behind address, or address itself
// when the slot is empty.
func ResolveImplementation(ctx context.Context, reader StorageReader, address common.Address) (common.Address, error) {
	if reader == nil {
		return address, nil
	}
	raw, err := reader.StorageAt(ctx, address, ImplementationSlot, nil)
	if err != nil {
		return common.Address{}, fmt.Errorf("read implementation slot: %w", err)
	}
	impl := common.BytesToAddress(raw)
	if impl == (common.Address{}) {
		return address, nil
	}
	return impl, nil
}
