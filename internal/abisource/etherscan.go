package abisource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
)

const DefaultEtherscanURL = "https://api.etherscan.io/api"

// EtherscanConfig configures remote ABI retrieval.
type EtherscanConfig struct {
	BaseURL    string
	APIKey     string
	Overrides  map[string]string // contract address -> local ABI JSON file
	HTTPClient *http.Client
	Storage    StorageReader
	Logger     *zap.Logger
}

// EtherscanSource fetches verified contract ABIs from Etherscan. Proxies are resolved to their
// EIP-1967 implementation first. Any lookup that fails, or that returns an ABI missing the
// methods the report needs, falls back to the embedded ABI.
type EtherscanSource struct {
	baseURL   string
	apiKey    string
	client    *http.Client
	storage   StorageReader
	logger    *zap.Logger
	overrides map[common.Address]abi.ABI

	mu    sync.RWMutex
	cache map[common.Address]abi.ABI
}

type etherscanResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Result  string `json:"result"`
}

func NewEtherscanSource(cfg EtherscanConfig) (*EtherscanSource, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultEtherscanURL
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	overrides, err := LoadOverrides(cfg.Overrides)
	if err != nil {
		return nil, err
	}

	return &EtherscanSource{
		baseURL:   cfg.BaseURL,
		apiKey:    cfg.APIKey,
		client:    cfg.HTTPClient,
		storage:   cfg.Storage,
		logger:    cfg.Logger,
		overrides: overrides,
		cache:     make(map[common.Address]abi.ABI),
	}, nil
}

// LoadOverrides parses a table of address -> ABI file path.
func LoadOverrides(paths map[string]string) (map[common.Address]abi.ABI, error) {
	out := make(map[common.Address]abi.ABI, len(paths))
	for address, path := range paths {
		if !common.IsHexAddress(address) {
			return nil, fmt.Errorf("invalid abi override address: %s", address)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read abi override %s: %w", path, err)
		}
		parsed, err := abi.JSON(strings.NewReader(string(data)))
		if err != nil {
			return nil, fmt.Errorf("parse abi override %s: %w", path, err)
		}
		out[common.HexToAddress(address)] = parsed
	}
	return out, nil
}

func (s *EtherscanSource) ABI(ctx context.Context, address common.Address, kind Kind) (abi.ABI, error) {
	fallback, err := Embedded(kind)
	if err != nil {
		return abi.ABI{}, err
	}
	// pool and bytes32 token interfaces are never fetched remotely
	if kind == KindV3Pool || kind == KindERC20Bytes32 {
		return fallback, nil
	}

	if parsed, ok := s.overrides[address]; ok {
		return parsed, nil
	}

	target, err := ResolveImplementation(ctx, s.storage, address)
	if err != nil {
		s.logger.Warn("proxy resolution failed", zap.String("address", address.Hex()), zap.Error(err))
		target = address
	}
	if parsed, ok := s.overrides[target]; ok {
		return parsed, nil
	}

	s.mu.RLock()
	parsed, ok := s.cache[target]
	s.mu.RUnlock()
	if !ok {
		parsed, err = s.fetch(ctx, target)
		if err != nil {
			s.logger.Warn("etherscan abi fetch failed, using embedded abi",
				zap.String("address", address.Hex()),
				zap.String("implementation", target.Hex()),
				zap.Error(err),
			)
			return fallback, nil
		}
		s.mu.Lock()
		s.cache[target] = parsed
		s.mu.Unlock()
	}

	if missing := missingMethods(parsed, fallback); len(missing) > 0 {
		s.logger.Debug("fetched abi lacks methods, using embedded abi",
			zap.String("address", address.Hex()),
			zap.Strings("missing", missing),
		)
		return fallback, nil
	}
	return parsed, nil
}

func (s *EtherscanSource) fetch(ctx context.Context, address common.Address) (abi.ABI, error) {
	query := url.Values{}
	query.Set("module", "contract")
	query.Set("action", "getabi")
	query.Set("address", address.Hex())
	if s.apiKey != "" {
		query.Set("apikey", s.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return abi.ABI{}, fmt.Errorf("create request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return abi.ABI{}, fmt.Errorf("get abi: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return abi.ABI{}, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
	}

	var payload etherscanResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return abi.ABI{}, fmt.Errorf("decode response: %w", err)
	}
	if payload.Status != "1" {
		return abi.ABI{}, fmt.Errorf("etherscan: %s: %s", payload.Message, payload.Result)
	}

	parsed, err := abi.JSON(strings.NewReader(payload.Result))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("parse abi: %w", err)
	}
	return parsed, nil
}

func missingMethods(have, want abi.ABI) []string {
	var missing []string
	for name := range want.Methods {
		if _, ok := have.Methods[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}
