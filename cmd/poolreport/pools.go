package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"poolReport/internal/chain"
	"poolReport/internal/collector"
	"poolReport/internal/config"
)

func runPools(cmd *cobra.Command, _ []string) error {
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

	refs, err := collector.New(collectorConfig(cfg), reader, nil, logger).Discover(ctx)
	if err != nil {
		return err
	}
	logger.Info("pools discovered", zap.Int("pools", len(refs)))

	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, ref := range refs {
		if err := enc.Encode(ref); err != nil {
			return fmt.Errorf("encode pool: %w", err)
		}
	}
	return nil
}
