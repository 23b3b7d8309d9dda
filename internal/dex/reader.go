package dex

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"poolReport/internal/abisource"
)

// Caller performs read-only contract calls. *chain.Client satisfies it.
type Caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// Reader reads factories, pools and tokens through a Caller.
type Reader struct {
	caller Caller
	abis   abisource.Source
	pools  *PoolMetaCache
	tokens *TokenMetaCache
	logger *zap.Logger
}

// NewReader builds a Reader. A nil source uses the embedded ABIs.
func NewReader(caller Caller, abis abisource.Source, logger *zap.Logger) *Reader {
	if abis == nil {
		abis = abisource.EmbeddedSource{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{
		caller: caller,
		abis:   abis,
		pools:  NewPoolMetaCache(),
		tokens: NewTokenMetaCache(),
		logger: logger,
	}
}

func (r *Reader) call(ctx context.Context, to common.Address, kind abisource.Kind, method string, args ...interface{}) ([]interface{}, error) {
	if r.caller == nil {
		return nil, fmt.Errorf("chain client is nil")
	}
	parsed, err := r.abis.ABI(ctx, to, kind)
	if err != nil {
		return nil, fmt.Errorf("abi for %s: %w", to.Hex(), err)
	}

	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &to, Data: data}
	resp, err := r.caller.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%s returned no values", method)
	}
	return values, nil
}

func (r *Reader) callAddress(ctx context.Context, to common.Address, kind abisource.Kind, method string, args ...interface{}) (common.Address, error) {
	values, err := r.call(ctx, to, kind, method, args...)
	if err != nil {
		return common.Address{}, err
	}
	addr, err := asAddress(values[0])
	if err != nil {
		return common.Address{}, fmt.Errorf("%s: %w", method, err)
	}
	return addr, nil
}
