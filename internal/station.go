// Package internal wires the station: chain client, treasury aggregation,
// swap services and the web boundary.
package internal

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vusdhub/vusd-station/config"
	"github.com/vusdhub/vusd-station/internal/chain"
	"github.com/vusdhub/vusd-station/internal/clients"
	"github.com/vusdhub/vusd-station/internal/domain"
	"github.com/vusdhub/vusd-station/internal/services/pricer"
	"github.com/vusdhub/vusd-station/internal/services/swap"
	"github.com/vusdhub/vusd-station/internal/services/treasury"
	"github.com/vusdhub/vusd-station/internal/services/valuator"
	"github.com/vusdhub/vusd-station/internal/storage/reports"
	"github.com/vusdhub/vusd-station/internal/web"
)

// Station is a single running instance of the client: one chain connection,
// one treasury aggregator and one swap pipeline.
type Station struct {
	Config     config.Config
	Client     *chain.Client
	Aggregator *treasury.Aggregator
	Estimator  *swap.Estimator
	Executor   *swap.Executor
	Machine    *swap.Machine
	Scheduler  *swap.EstimateScheduler
	Store      *reports.WALStore
	Web        *web.Server

	logger *zap.Logger
}

// NewStation builds the full service graph from config. The wallet key is
// optional: without it the station serves reports and quotes but refuses
// swap execution.
func NewStation(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Station, error) {
	client, err := chain.Dial(ctx, cfg.RPCURL, cfg.WalletKey())
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to chain")
	}

	registry, err := buildRegistry(cfg)
	if err != nil {
		return nil, err
	}

	ethPricer, err := buildPricer(cfg, logger)
	if err != nil {
		return nil, err
	}

	tokens := client.Tokens()
	minter := client.Minter(cfg.Contracts.Minter)
	redeemer := client.Redeemer(cfg.Contracts.Redeemer)

	val := valuator.New(cfg.Contracts.VUSD, knownStableDecimals(cfg), logger)

	tier2, err := buildTier2(cfg, client)
	if err != nil {
		return nil, err
	}

	store, err := reports.NewWALStore(cfg.WALDir)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open report store")
	}

	aggregator := treasury.NewAggregator(
		cfg.StableAsset(),
		tokens,
		client.Treasury(cfg.Contracts.Treasury),
		val,
		ethPricer,
		tier2,
		treasury.NewReportCache(cfg.ReportTTL),
		logger,
	)

	machine := swap.NewMachine(logger)
	estimator := swap.NewEstimator(minter, redeemer, registry, cfg.FeeDenom, logger)

	executor := swap.NewExecutor(
		tokens,
		minter,
		redeemer,
		client,
		registry,
		machine,
		cfg.ApprovalEvery,
		cfg.BalanceTTL,
		func(ctx context.Context) {
			if _, err := aggregator.Report(ctx, true); err != nil {
				logger.Warn("post-swap treasury refresh failed", zap.Error(err))
			}
		},
		logger,
	)

	scheduler := swap.NewEstimateScheduler(cfg.Debounce, estimator.Estimate, func(quote domain.SwapQuote, err error) {
		if err != nil {
			machine.Dispatch(swap.Event{Kind: swap.EventEstimateFailed, Err: err})
			return
		}
		machine.Dispatch(swap.Event{Kind: swap.EventQuoteReady, Quote: quote})
	})

	server := web.NewServer(cfg.ListenAddr, aggregator, estimator, store)

	return &Station{
		Config:     cfg,
		Client:     client,
		Aggregator: aggregator,
		Estimator:  estimator,
		Executor:   executor,
		Machine:    machine,
		Scheduler:  scheduler,
		Store:      store,
		Web:        server,
		logger:     logger,
	}, nil
}

// Run starts the web server and the background report refresh loop, blocking
// until ctx is cancelled.
func (s *Station) Run(ctx context.Context) error {
	webErr := make(chan error, 1)
	go func() {
		if s.Config.TLSDomain != "" {
			webErr <- s.Web.StartWithAutoTLS(ctx, []string{s.Config.TLSDomain}, "")
			return
		}
		webErr <- s.Web.Start(ctx)
	}()

	ticker := time.NewTicker(s.Config.RefreshEvery)
	defer ticker.Stop()

	s.logger.Info("station started",
		zap.String("listen", s.Config.ListenAddr),
		zap.Duration("refresh_interval", s.Config.RefreshEvery),
		zap.Bool("wallet_connected", s.Client.Connected()),
	)

	// first report up front so the dashboard has data immediately
	s.refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("context done, stopping station")
			return ctx.Err()
		case err := <-webErr:
			return errors.Wrap(err, "web server stopped")
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

func (s *Station) refresh(ctx context.Context) {
	report, err := s.Aggregator.Report(ctx, true)
	if err != nil {
		s.logger.Error("treasury refresh failed", zap.Error(err))
		return
	}
	if err := s.Store.Save(*report); err != nil {
		s.logger.Error("failed to persist treasury report", zap.Error(err))
	}
}

// Close releases the chain connection, scheduler and report store.
func (s *Station) Close() {
	s.Scheduler.Stop()
	s.Client.Close()
	if err := s.Store.Close(); err != nil {
		s.logger.Warn("failed to close report store", zap.Error(err))
	}
}

func buildRegistry(cfg config.Config) (*domain.Registry, error) {
	counterparts := make([]domain.Asset, 0, len(cfg.Counterparts))
	for _, entry := range cfg.Counterparts {
		counterparts = append(counterparts, domain.Asset{
			Symbol:   entry.Symbol,
			Address:  entry.Address,
			Decimals: entry.Decimals,
			Class:    entry.Class,
		})
	}
	registry, err := domain.NewRegistry(cfg.StableAsset(), counterparts)
	if err != nil {
		return nil, errors.Wrap(err, "invalid token registry")
	}
	return registry, nil
}

func buildPricer(cfg config.Config, logger *zap.Logger) (pricer.Pricer, error) {
	var inner pricer.Pricer
	switch cfg.PriceSource {
	case "binance":
		inner = pricer.NewBinancePricer()
	case "bybit":
		inner = pricer.NewBybitPricer()
	case "hyperliquid":
		key := cfg.WalletKey()
		if key == "" {
			return nil, errors.New("hyperliquid price source requires the wallet key")
		}
		hl, err := clients.NewHyperliquidClient(key, clients.HyperliquidMainnetURL)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create hyperliquid client")
		}
		inner = pricer.NewHyperliquidPricer(hl.Info())
	case "static":
		return pricer.NewStaticPricer(cfg.DefaultETH), nil
	default:
		return nil, errors.Errorf("unsupported price source %q", cfg.PriceSource)
	}

	return pricer.WithFallback(inner, cfg.DefaultETH, logger), nil
}

// knownStableDecimals collects external stablecoins the valuator should peg
// 1:1, from both counterparts and tier-2 entries.
func knownStableDecimals(cfg config.Config) map[common.Address]uint8 {
	known := make(map[common.Address]uint8)
	for _, entry := range cfg.Counterparts {
		if entry.Class == domain.ClassStablecoin {
			known[entry.Address] = entry.Decimals
		}
	}
	for _, entry := range cfg.Tier2 {
		if entry.Class == domain.ClassStablecoin {
			known[entry.Address] = entry.Decimals
		}
	}
	return known
}

func buildTier2(cfg config.Config, client *chain.Client) ([]treasury.Tier2Asset, error) {
	tier2 := make([]treasury.Tier2Asset, 0, len(cfg.Tier2))
	for _, entry := range cfg.Tier2 {
		asset := domain.Asset{
			Symbol:   entry.Symbol,
			Address:  entry.Address,
			Decimals: entry.Decimals,
			Class:    entry.Class,
		}

		t2 := treasury.Tier2Asset{Asset: asset}
		switch entry.Class {
		case domain.ClassStakedEther:
			if entry.HasExchangeRate {
				t2.ExchangeRate = client.StakedEtherRate(entry.Address)
			}
		case domain.ClassLPShare:
			t2.Pool = client.LiquidityPool(entry.Address)
		case domain.ClassGeneric:
			t2.PriceHint = entry.PriceHint
		case domain.ClassStablecoin:
			// valued 1:1, nothing extra to resolve
		default:
			return nil, errors.Errorf("tier-2 asset %q has unsupported class %q", entry.Symbol, entry.Class)
		}

		tier2 = append(tier2, t2)
	}
	return tier2, nil
}
