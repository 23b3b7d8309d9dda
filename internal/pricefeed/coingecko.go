package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

const (
	DefaultCoinGeckoURL = "https://api.coingecko.com/api/v3"
	DefaultPlatform     = "ethereum"
	defaultAPIKeyHeader = "x-cg-demo-api-key"
)

// CoinGeckoConfig configures the CoinGecko token price client.
type CoinGeckoConfig struct {
	BaseURL      string
	APIKey       string
	APIKeyHeader string
	Platform     string
	HTTPClient   *http.Client
}

// CoinGecko quotes ERC20 tokens through the simple/token_price endpoint.
type CoinGecko struct {
	client    *http.Client
	baseURL   string
	apiKey    string
	keyHeader string
	platform  string
}

func NewCoinGecko(cfg CoinGeckoConfig) *CoinGecko {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultCoinGeckoURL
	}
	if cfg.Platform == "" {
		cfg.Platform = DefaultPlatform
	}
	if cfg.APIKeyHeader == "" {
		cfg.APIKeyHeader = defaultAPIKeyHeader
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &CoinGecko{
		client:    cfg.HTTPClient,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:    cfg.APIKey,
		keyHeader: cfg.APIKeyHeader,
		platform:  cfg.Platform,
	}
}

// PriceUSD returns the USD quote for token, or nil when CoinGecko does not list it.
func (c *CoinGecko) PriceUSD(ctx context.Context, token common.Address) (*float64, error) {
	prices, err := c.PricesUSD(ctx, []common.Address{token})
	if err != nil {
		return nil, err
	}
	price, ok := prices[token]
	if !ok {
		return nil, nil
	}
	return &price, nil
}

// PricesUSD quotes several tokens in one request. Unlisted tokens are absent from the result.
func (c *CoinGecko) PricesUSD(ctx context.Context, tokens []common.Address) (map[common.Address]float64, error) {
	if len(tokens) == 0 {
		return map[common.Address]float64{}, nil
	}
	addrs := make([]string, len(tokens))
	for i, token := range tokens {
		addrs[i] = strings.ToLower(token.Hex())
	}

	query := url.Values{}
	query.Set("contract_addresses", strings.Join(addrs, ","))
	query.Set("vs_currencies", "usd")
	endpoint := fmt.Sprintf("%s/simple/token_price/%s?%s", c.baseURL, c.platform, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(c.keyHeader, c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get token price: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read token price: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token price status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var payload map[string]map[string]*float64
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode token price: %w", err)
	}

	out := make(map[common.Address]float64, len(payload))
	for key, quotes := range payload {
		if !common.IsHexAddress(key) {
			continue
		}
		usd, ok := quotes["usd"]
		if !ok || usd == nil {
			continue
		}
		out[common.HexToAddress(key)] = *usd
	}
	return out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
