package dex

import (
	"context"
	"encoding/hex"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"poolReport/internal/abisource"
)

type fakeCaller struct {
	responses map[string][]byte
	calls     int
}

func newFakeCaller() *fakeCaller {
	return &fakeCaller{responses: make(map[string][]byte)}
}

func callKey(to common.Address, data []byte) string {
	return strings.ToLower(to.Hex()) + ":" + hex.EncodeToString(data)
}

func (f *fakeCaller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	f.calls++
	resp, ok := f.responses[callKey(*msg.To, msg.Data)]
	if !ok {
		return nil, errors.New("execution reverted")
	}
	return resp, nil
}

func (f *fakeCaller) set(t *testing.T, to common.Address, kind abisource.Kind, method string, args []interface{}, outputs ...interface{}) {
	t.Helper()
	parsed, err := abisource.Embedded(kind)
	if err != nil {
		t.Fatalf("embedded abi: %v", err)
	}
	data, err := parsed.Pack(method, args...)
	if err != nil {
		t.Fatalf("pack %s: %v", method, err)
	}
	resp, err := parsed.Methods[method].Outputs.Pack(outputs...)
	if err != nil {
		t.Fatalf("pack outputs %s: %v", method, err)
	}
	f.responses[callKey(to, data)] = resp
}

var (
	testFactoryV2 = common.HexToAddress("0x5C69bEe701ef814a2B6a3EDD4B1652CB9cc5aA6f")
	testFactoryV3 = common.HexToAddress("0x1F98431c8aD98523631AE4a59f267346ea31F984")
	testWETH      = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	testUSDC      = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	testPair      = common.HexToAddress("0xB4e16d0168e52d35CaCD2c6185b44281Ec28C9Dc")
	testPool500   = common.HexToAddress("0x88e6A0c2dDD26FEEb64F039a2c41296FcB3f5640")
)

func TestFindV2Pair(t *testing.T) {
	caller := newFakeCaller()
	caller.set(t, testFactoryV2, abisource.KindV2Factory, "getPair", []interface{}{testUSDC, testWETH}, testPair)
	caller.set(t, testFactoryV2, abisource.KindV2Factory, "getPair", []interface{}{testWETH, testUSDC}, common.Address{})

	reader := NewReader(caller, nil, nil)
	pair, ok, err := reader.FindV2Pair(context.Background(), testFactoryV2, testUSDC, testWETH)
	if err != nil {
		t.Fatalf("find pair: %v", err)
	}
	if !ok || pair != testPair {
		t.Fatalf("unexpected pair %s ok=%v", pair.Hex(), ok)
	}

	_, ok, err = reader.FindV2Pair(context.Background(), testFactoryV2, testWETH, testUSDC)
	if err != nil {
		t.Fatalf("find missing pair: %v", err)
	}
	if ok {
		t.Fatalf("expected no pair for zero address")
	}
}

func TestFindV3PoolsSkipsMissingTiers(t *testing.T) {
	caller := newFakeCaller()
	for _, fee := range DefaultFeeTiers {
		pool := common.Address{}
		if fee == 500 {
			pool = testPool500
		}
		caller.set(t, testFactoryV3, abisource.KindV3Factory, "getPool",
			[]interface{}{testUSDC, testWETH, big.NewInt(int64(fee))}, pool)
	}

	reader := NewReader(caller, nil, nil)
	pools, err := reader.FindV3Pools(context.Background(), testFactoryV3, testUSDC, testWETH, DefaultFeeTiers)
	if err != nil {
		t.Fatalf("find pools: %v", err)
	}
	if len(pools) != 1 {
		t.Fatalf("expected 1 pool, got %d", len(pools))
	}
	if pools[0].Address != testPool500.Hex() || pools[0].FeeTier != 500 {
		t.Fatalf("unexpected pool %+v", pools[0])
	}
}

func TestFindV3PoolsPropagatesCallError(t *testing.T) {
	reader := NewReader(newFakeCaller(), nil, nil)
	_, err := reader.FindV3Pools(context.Background(), testFactoryV3, testUSDC, testWETH, []uint32{3000})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "fee 3000") {
		t.Fatalf("error should name the fee tier: %v", err)
	}
}

func setV3Pool(t *testing.T, caller *fakeCaller, pool common.Address, fee, spacing int64, tick int64, liquidity *big.Int) {
	t.Helper()
	caller.set(t, pool, abisource.KindV3Pool, "token0", nil, testUSDC)
	caller.set(t, pool, abisource.KindV3Pool, "token1", nil, testWETH)
	caller.set(t, pool, abisource.KindV3Pool, "fee", nil, big.NewInt(fee))
	caller.set(t, pool, abisource.KindV3Pool, "tickSpacing", nil, big.NewInt(spacing))
	caller.set(t, pool, abisource.KindV3Pool, "liquidity", nil, liquidity)
	sqrt, _ := new(big.Int).SetString("1461446703485210103287273052203988822378723970341", 10)
	caller.set(t, pool, abisource.KindV3Pool, "slot0", nil,
		sqrt, big.NewInt(tick), uint16(1), uint16(1), uint16(1), uint8(0), true)
}

func TestReadV3State(t *testing.T) {
	caller := newFakeCaller()
	liq, _ := new(big.Int).SetString("12345678901234567890", 10)
	setV3Pool(t, caller, testPool500, 500, 10, -201234, liq)

	reader := NewReader(caller, nil, nil)
	state, err := reader.ReadV3State(context.Background(), testPool500)
	if err != nil {
		t.Fatalf("read state: %v", err)
	}
	if state.Meta.Token0 != testUSDC.Hex() || state.Meta.Token1 != testWETH.Hex() {
		t.Fatalf("unexpected tokens %+v", state.Meta)
	}
	if state.Meta.Fee != 500 || state.Meta.TickSpacing != 10 {
		t.Fatalf("unexpected fee/spacing %+v", state.Meta)
	}
	if state.Slot0.Tick != -201234 {
		t.Fatalf("unexpected tick %d", state.Slot0.Tick)
	}
	if state.Liquidity.Cmp(liq) != 0 {
		t.Fatalf("unexpected liquidity %s", state.Liquidity)
	}

	before := caller.calls
	if _, err := reader.PoolMeta(context.Background(), testPool500); err != nil {
		t.Fatalf("cached meta: %v", err)
	}
	if caller.calls != before {
		t.Fatalf("expected cached pool meta, got %d extra calls", caller.calls-before)
	}
}

func TestReadV3StateRejectsMismatchedSpacing(t *testing.T) {
	caller := newFakeCaller()
	setV3Pool(t, caller, testPool500, 500, 60, 0, big.NewInt(1))

	reader := NewReader(caller, nil, nil)
	_, err := reader.ReadV3State(context.Background(), testPool500)
	if !errors.Is(err, ErrUnexpectedTickSpacing) {
		t.Fatalf("expected ErrUnexpectedTickSpacing, got %v", err)
	}
}

func TestReadV2State(t *testing.T) {
	caller := newFakeCaller()
	r0, _ := new(big.Int).SetString("45000000000000", 10)
	r1, _ := new(big.Int).SetString("15000000000000000000000", 10)
	caller.set(t, testPair, abisource.KindV2Pair, "token0", nil, testUSDC)
	caller.set(t, testPair, abisource.KindV2Pair, "token1", nil, testWETH)
	caller.set(t, testPair, abisource.KindV2Pair, "getReserves", nil, r0, r1, uint32(1700000000))

	reader := NewReader(caller, nil, nil)
	state, err := reader.ReadV2State(context.Background(), testPair)
	if err != nil {
		t.Fatalf("read pair: %v", err)
	}
	if state.Token0 != testUSDC || state.Token1 != testWETH {
		t.Fatalf("unexpected tokens %s %s", state.Token0.Hex(), state.Token1.Hex())
	}
	if state.Reserves.Reserve0.Cmp(r0) != 0 || state.Reserves.Reserve1.Cmp(r1) != 0 {
		t.Fatalf("unexpected reserves %s %s", state.Reserves.Reserve0, state.Reserves.Reserve1)
	}
}

func TestTokenMetaString(t *testing.T) {
	caller := newFakeCaller()
	caller.set(t, testUSDC, abisource.KindERC20, "decimals", nil, uint8(6))
	caller.set(t, testUSDC, abisource.KindERC20, "symbol", nil, "USDC")
	caller.set(t, testUSDC, abisource.KindERC20, "name", nil, "USD Coin")

	reader := NewReader(caller, nil, nil)
	meta, err := reader.TokenMeta(context.Background(), testUSDC)
	if err != nil {
		t.Fatalf("token meta: %v", err)
	}
	if meta.Decimals != 6 || meta.Symbol != "USDC" || meta.Name != "USD Coin" {
		t.Fatalf("unexpected meta %+v", meta)
	}

	before := caller.calls
	if _, err := reader.TokenMeta(context.Background(), testUSDC); err != nil {
		t.Fatalf("cached token meta: %v", err)
	}
	if caller.calls != before {
		t.Fatalf("expected cached token meta")
	}
}

func TestTokenMetaBytes32Fallback(t *testing.T) {
	mkr := common.HexToAddress("0x9f8F72aA9304c8B593d555F12eF6589cC3A579A2")
	caller := newFakeCaller()
	caller.set(t, mkr, abisource.KindERC20, "decimals", nil, uint8(18))

	var symbol, name [32]byte
	copy(symbol[:], "MKR")
	copy(name[:], "Maker")
	erc20, err := abisource.Embedded(abisource.KindERC20Bytes32)
	if err != nil {
		t.Fatalf("embedded abi: %v", err)
	}
	for method, value := range map[string][32]byte{"symbol": symbol, "name": name} {
		data, err := erc20.Pack(method)
		if err != nil {
			t.Fatalf("pack: %v", err)
		}
		resp, err := erc20.Methods[method].Outputs.Pack(value)
		if err != nil {
			t.Fatalf("pack outputs: %v", err)
		}
		caller.responses[callKey(mkr, data)] = resp
	}

	reader := NewReader(caller, nil, nil)
	meta, err := reader.TokenMeta(context.Background(), mkr)
	if err != nil {
		t.Fatalf("token meta: %v", err)
	}
	if meta.Symbol != "MKR" || meta.Name != "Maker" || meta.Decimals != 18 {
		t.Fatalf("unexpected meta %+v", meta)
	}
}

func TestTokenMetaRequiresDecimals(t *testing.T) {
	reader := NewReader(newFakeCaller(), nil, nil)
	if _, err := reader.TokenMeta(context.Background(), testUSDC); err == nil {
		t.Fatalf("expected error when decimals call fails")
	}
}

func TestValidateTickSpacing(t *testing.T) {
	if err := ValidateTickSpacing(3000, 60); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateTickSpacing(3000, 10); !errors.Is(err, ErrUnexpectedTickSpacing) {
		t.Fatalf("expected mismatch, got %v", err)
	}
	if err := ValidateTickSpacing(2500, 50); err != nil {
		t.Fatalf("unknown tier with positive spacing should pass: %v", err)
	}
	if err := ValidateTickSpacing(2500, 0); err == nil {
		t.Fatalf("expected error for zero spacing")
	}
}
