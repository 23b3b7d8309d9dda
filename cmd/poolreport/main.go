package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"poolReport/internal/config"
)

func main() {
	root := &cobra.Command{
		Use:          "poolreport",
		Short:        "Uniswap pool composition reporter",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Snapshot every pool of a token pair and write the report",
		RunE:  runReport,
	}
	addPoolFlags(reportCmd)
	reportCmd.Flags().String("out", "./output.csv", "output CSV path (empty disables)")
	reportCmd.Flags().String("jsonl-out", "", "optional JSONL output path")
	reportCmd.Flags().String("pg-dsn", "", "optional Postgres DSN for pool_snapshots")
	reportCmd.Flags().String("price-api", "https://api.coingecko.com/api/v3", "CoinGecko API base URL")
	reportCmd.Flags().String("price-api-key", "", "CoinGecko API key")
	reportCmd.Flags().Duration("price-ttl", 5*time.Minute, "price cache TTL")
	reportCmd.Flags().String("redis-addr", "", "optional Redis address for the shared price cache")
	reportCmd.Flags().Int("concurrency", 4, "pools fetched in parallel")
	reportCmd.Flags().Bool("skip-failed", true, "skip pools that fail instead of aborting")
	root.AddCommand(reportCmd)

	poolsCmd := &cobra.Command{
		Use:   "pools",
		Short: "List the pools of a token pair",
		RunE:  runPools,
	}
	addPoolFlags(poolsCmd)
	root.AddCommand(poolsCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addPoolFlags(cmd *cobra.Command) {
	cmd.Flags().String("rpc", "", "Ethereum RPC URL")
	cmd.Flags().String("token-a", config.DefaultTokenA, "first token address")
	cmd.Flags().String("token-b", config.DefaultTokenB, "second token address")
	cmd.Flags().String("v2-factory", config.DefaultV2Factory, "constant-product factory address (empty disables)")
	cmd.Flags().String("v3-factory", config.DefaultV3Factory, "concentrated-liquidity factory address (empty disables)")
	cmd.Flags().String("fee-tiers", "100,500,3000,10000", "fee tiers to query (comma-separated)")
	cmd.Flags().Uint32("v2-fee-tier", 3000, "fee tier reported for the constant-product pair")
	cmd.Flags().String("abi-source", config.ABISourceEmbedded, "abi source (embedded, etherscan)")
	cmd.Flags().String("etherscan-url", "https://api.etherscan.io/api", "Etherscan API URL")
	cmd.Flags().String("etherscan-api-key", "", "Etherscan API key")
	cmd.Flags().String("abi-overrides", "", "local ABI files (comma-separated address=path)")
	cmd.Flags().Int("max-retries", 3, "maximum retry attempts per call")
	cmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
