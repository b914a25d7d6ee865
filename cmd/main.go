// Command station runs the VUSD client station: it serves treasury
// collateralization reports, mint/redeem quotes and a dashboard over HTTP,
// and executes swaps when a wallet key is configured.
//
// Usage:
//
//	station --config config.yaml
//	station --setup (interactive configuration wizard)
//	station (uses Ethereum mainnet defaults)
//
// The wallet key is read from the environment variable named by
// wallet_key_env (VUSD_WALLET_KEY by default). Without it the station runs
// read-only.
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/vusdhub/vusd-station/config"
	"github.com/vusdhub/vusd-station/internal"
	"github.com/vusdhub/vusd-station/internal/setup"
)

func main() {
	runSetup := flag.Bool("setup", false, "run the interactive configuration wizard")

	cfg, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}

	if *runSetup {
		if err := setup.RunTUI(); err != nil {
			log.Fatal(err)
		}
		cfg, err = config.FromFile("config.gen.yaml")
		if err != nil {
			log.Fatal(err)
		}
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	station, err := internal.NewStation(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to build station", zap.Error(err))
	}
	defer station.Close()

	if err := station.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Fatal("station stopped", zap.Error(err))
	}
}
