package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	ABISourceEmbedded  = "embedded"
	ABISourceEtherscan = "etherscan"
)

// Mainnet defaults for the USDC/WETH pair.
const (
	DefaultTokenA    = "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
	DefaultTokenB    = "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"
	DefaultV2Factory = "0x5C69bEe701ef814a2B6a3EDD4B1652CB9cc5aA6f"
	DefaultV3Factory = "0x1F98431c8aD98523631AE4a59f267346ea31F984"
)

// ReportConfig holds configuration for the report command.
type ReportConfig struct {
	RPCURL          string
	TokenA          string
	TokenB          string
	V2Factory       string
	V3Factory       string
	FeeTiers        []uint32
	V2FeeTier       uint32
	Out             string
	JSONLOut        string
	PGDSN           string
	PriceAPI        string
	PriceAPIKey     string
	PriceTTL        time.Duration
	RedisAddr       string
	ABISource       string
	EtherscanURL    string
	EtherscanAPIKey string
	ABIOverrides    map[string]string
	Concurrency     int
	MaxRetries      int
	RetryBackoff    time.Duration
	SkipFailed      bool
	LogLevel        string
}

// LoadReport merges config file, environment variables, and flags into ReportConfig.
func LoadReport(cfgFile string, flags *pflag.FlagSet) (ReportConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("POOLREPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("token-a", DefaultTokenA)
	v.SetDefault("token-b", DefaultTokenB)
	v.SetDefault("v2-factory", DefaultV2Factory)
	v.SetDefault("v3-factory", DefaultV3Factory)
	v.SetDefault("fee-tiers", "100,500,3000,10000")
	v.SetDefault("v2-fee-tier", 3000)
	v.SetDefault("out", "./output.csv")
	v.SetDefault("price-api", "https://api.coingecko.com/api/v3")
	v.SetDefault("price-ttl", 5*time.Minute)
	v.SetDefault("abi-source", ABISourceEmbedded)
	v.SetDefault("etherscan-url", "https://api.etherscan.io/api")
	v.SetDefault("concurrency", 4)
	v.SetDefault("max-retries", 3)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("skip-failed", true)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return ReportConfig{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return ReportConfig{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return ReportConfig{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	feeTiers, err := parseFeeTiers(getStringSlice(v, "fee-tiers"))
	if err != nil {
		return ReportConfig{}, err
	}

	cfg := ReportConfig{
		RPCURL:          v.GetString("rpc"),
		TokenA:          v.GetString("token-a"),
		TokenB:          v.GetString("token-b"),
		V2Factory:       v.GetString("v2-factory"),
		V3Factory:       v.GetString("v3-factory"),
		FeeTiers:        feeTiers,
		V2FeeTier:       v.GetUint32("v2-fee-tier"),
		Out:             v.GetString("out"),
		JSONLOut:        v.GetString("jsonl-out"),
		PGDSN:           v.GetString("pg-dsn"),
		PriceAPI:        v.GetString("price-api"),
		PriceAPIKey:     v.GetString("price-api-key"),
		PriceTTL:        v.GetDuration("price-ttl"),
		RedisAddr:       v.GetString("redis-addr"),
		ABISource:       strings.ToLower(v.GetString("abi-source")),
		EtherscanURL:    v.GetString("etherscan-url"),
		EtherscanAPIKey: v.GetString("etherscan-api-key"),
		ABIOverrides:    getStringMap(v, "abi-overrides"),
		Concurrency:     v.GetInt("concurrency"),
		MaxRetries:      v.GetInt("max-retries"),
		RetryBackoff:    v.GetDuration("retry-backoff"),
		SkipFailed:      v.GetBool("skip-failed"),
		LogLevel:        v.GetString("log-level"),
	}

	return cfg, nil
}

// Validate checks the settings a run cannot start without.
func (c ReportConfig) Validate() error {
	if c.RPCURL == "" {
		return fmt.Errorf("rpc is required")
	}
	for key, addr := range map[string]string{"token-a": c.TokenA, "token-b": c.TokenB} {
		if !common.IsHexAddress(addr) {
			return fmt.Errorf("invalid %s address: %q", key, addr)
		}
	}
	if strings.EqualFold(c.TokenA, c.TokenB) {
		return fmt.Errorf("token-a and token-b must differ")
	}
	for key, addr := range map[string]string{"v2-factory": c.V2Factory, "v3-factory": c.V3Factory} {
		if addr != "" && !common.IsHexAddress(addr) {
			return fmt.Errorf("invalid %s address: %q", key, addr)
		}
	}
	if c.V2Factory == "" && c.V3Factory == "" {
		return fmt.Errorf("at least one of v2-factory or v3-factory is required")
	}
	switch c.ABISource {
	case ABISourceEmbedded, ABISourceEtherscan:
	default:
		return fmt.Errorf("unknown abi-source %q", c.ABISource)
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be greater than zero")
	}
	if c.Out == "" && c.JSONLOut == "" && c.PGDSN == "" {
		return fmt.Errorf("no output configured")
	}
	return nil
}

func parseFeeTiers(items []string) ([]uint32, error) {
	tiers := make([]uint32, 0, len(items))
	seen := make(map[uint32]struct{}, len(items))
	for _, item := range items {
		fee, err := strconv.ParseUint(item, 10, 24)
		if err != nil {
			return nil, fmt.Errorf("invalid fee tier %q: %w", item, err)
		}
		if _, ok := seen[uint32(fee)]; ok {
			continue
		}
		seen[uint32(fee)] = struct{}{}
		tiers = append(tiers, uint32(fee))
	}
	return tiers, nil
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

func getStringMap(v *viper.Viper, key string) map[string]string {
	if !v.IsSet(key) {
		return map[string]string{}
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case map[string]string:
		return typed
	case map[string]interface{}:
		out := make(map[string]string, len(typed))
		for k, v := range typed {
			out[k] = fmt.Sprintf("%v", v)
		}
		return out
	case []string:
		return parseStringMap(strings.Join(typed, ","))
	case string:
		return parseStringMap(typed)
	default:
		return map[string]string{}
	}
}

func parseStringMap(input string) map[string]string {
	out := make(map[string]string)
	if strings.TrimSpace(input) == "" {
		return out
	}
	pairs := strings.Split(input, ",")
	for _, pair := range pairs {
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" || value == "" {
			continue
		}
		out[key] = value
	}
	return out
}
