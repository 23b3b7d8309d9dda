package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"poolReport/internal/abisource"
	"poolReport/internal/chain"
	"poolReport/internal/collector"
	"poolReport/internal/config"
	"poolReport/internal/dex"
	"poolReport/internal/pricefeed"
	"poolReport/internal/report"
	"poolReport/internal/storage"
	"poolReport/internal/storage/postgres"
)

func runReport(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadReport(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	reader, err := newReader(cfg, chainClient, logger)
	if err != nil {
		return err
	}

	oracle, closeOracle, err := newOracle(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeOracle()

	sinks, closeSinks, err := newSinks(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSinks()

	logRunStart(ctx, logger, chainClient, cfg)

	agg := report.NewAggregator()
	c := collector.New(collectorConfig(cfg), reader, oracle, logger)
	if _, err := c.Collect(ctx, agg); err != nil {
		return err
	}

	if err := sinks.PutReport(ctx, storage.Report{CapturedAt: time.Now(), Rows: agg.Rows()}); err != nil {
		return fmt.Errorf("store report: %w", err)
	}

	logger.Info("report complete",
		zap.Int("rows", agg.Len()),
		zap.String("out", cfg.Out),
		zap.String("jsonl_out", cfg.JSONLOut),
		zap.Bool("postgres", cfg.PGDSN != ""),
	)
	return nil
}

func logRunStart(ctx context.Context, logger *zap.Logger, chainClient *chain.Client, cfg config.ReportConfig) {
	fields := []zap.Field{
		zap.String("rpc", cfg.RPCURL),
		zap.String("token_a", cfg.TokenA),
		zap.String("token_b", cfg.TokenB),
		zap.Any("fee_tiers", cfg.FeeTiers),
		zap.String("abi_source", cfg.ABISource),
		zap.Int("concurrency", cfg.Concurrency),
		zap.Bool("skip_failed", cfg.SkipFailed),
	}
	if chainID, err := chainClient.GetChainID(ctx); err == nil {
		fields = append(fields, zap.String("chain_id", chainID.String()))
	}
	if block, err := chainClient.LatestBlockNumber(ctx); err == nil {
		fields = append(fields, zap.Uint64("block", block))
	}
	logger.Info("report start", fields...)
}

func newReader(cfg config.ReportConfig, chainClient *chain.Client, logger *zap.Logger) (*dex.Reader, error) {
	var source abisource.Source = abisource.EmbeddedSource{}
	if cfg.ABISource == config.ABISourceEtherscan {
		etherscan, err := abisource.NewEtherscanSource(abisource.EtherscanConfig{
			BaseURL:   cfg.EtherscanURL,
			APIKey:    cfg.EtherscanAPIKey,
			Overrides: cfg.ABIOverrides,
			Storage:   chainClient,
			Logger:    logger,
		})
		if err != nil {
			return nil, fmt.Errorf("etherscan abi source: %w", err)
		}
		source = etherscan
	}
	return dex.NewReader(chainClient, source, logger), nil
}

func newOracle(ctx context.Context, cfg config.ReportConfig, logger *zap.Logger) (pricefeed.Oracle, func(), error) {
	coingecko := pricefeed.NewCoinGecko(pricefeed.CoinGeckoConfig{
		BaseURL: cfg.PriceAPI,
		APIKey:  cfg.PriceAPIKey,
	})

	var cache pricefeed.Cache = pricefeed.NewMemoryCache()
	closeFn := func() {}
	if cfg.RedisAddr != "" {
		redisCache, err := pricefeed.NewRedisCache(ctx, cfg.RedisAddr, "", 0)
		if err != nil {
			return nil, nil, err
		}
		cache = pricefeed.NewLayeredCache(cache, redisCache, min(cfg.PriceTTL, pricefeed.DefaultBackfillTTL))
		closeFn = func() { _ = redisCache.Close() }
	}
	return pricefeed.NewCachedOracle(coingecko, cache, cfg.PriceTTL, logger), closeFn, nil
}

func newSinks(ctx context.Context, cfg config.ReportConfig) (storage.Multi, func(), error) {
	var sinks storage.Multi
	closeFn := func() {}
	if cfg.Out != "" {
		sinks = append(sinks, storage.NewCSVWriter(cfg.Out))
	}
	if cfg.JSONLOut != "" {
		sinks = append(sinks, storage.NewJsonlStorage(cfg.JSONLOut))
	}
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			store.Close()
			return nil, nil, err
		}
		sinks = append(sinks, store)
		closeFn = store.Close
	}
	return sinks, closeFn, nil
}

func collectorConfig(cfg config.ReportConfig) collector.Config {
	return collector.Config{
		TokenA:       common.HexToAddress(cfg.TokenA),
		TokenB:       common.HexToAddress(cfg.TokenB),
		V2Factory:    optionalAddress(cfg.V2Factory),
		V3Factory:    optionalAddress(cfg.V3Factory),
		FeeTiers:     cfg.FeeTiers,
		V2FeeTier:    cfg.V2FeeTier,
		Concurrency:  cfg.Concurrency,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		SkipFailed:   cfg.SkipFailed,
	}
}

func optionalAddress(addr string) common.Address {
	if addr == "" {
		return common.Address{}
	}
	return common.HexToAddress(addr)
}
