// Package treasury aggregates on-chain balances into a full valuation of the
// reserve backing the stablecoin.
package treasury

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vusdhub/vusd-station/internal/domain"
	"github.com/vusdhub/vusd-station/internal/services/pricer"
	"github.com/vusdhub/vusd-station/internal/services/valuator"
)

// SupplyReader reads the stablecoin's circulating supply.
type SupplyReader interface {
	TotalSupply(ctx context.Context, token common.Address) (*big.Int, error)
	BalanceOf(ctx context.Context, token, owner common.Address) (*big.Int, error)
	Decimals(ctx context.Context, token common.Address) (uint8, error)
	Symbol(ctx context.Context, token common.Address) (string, error)
}

// TreasuryReader reads the treasury contract.
type TreasuryReader interface {
	Address() common.Address
	WhitelistedTokens(ctx context.Context) ([]common.Address, error)
	Withdrawable(ctx context.Context, token common.Address) (*big.Int, error)
}

// Tier2Asset is a non-whitelisted treasury holding with its valuation
// capability resolved at configuration time: exactly one of ExchangeRate,
// Pool or PriceHint is meaningful depending on the asset class.
type Tier2Asset struct {
	Asset        domain.Asset
	ExchangeRate valuator.ExchangeRateFunc
	Pool         valuator.PoolReader
	PriceHint    decimal.Decimal
}

// Aggregator produces TreasuryReports from current chain state.
type Aggregator struct {
	stable   domain.Asset
	tokens   SupplyReader
	treasury TreasuryReader
	valuator *valuator.Valuator
	pricer   pricer.Pricer
	tier2    []Tier2Asset
	cache    *ReportCache
	logger   *zap.Logger
}

// NewAggregator wires the aggregator. cache may be nil to disable caching.
func NewAggregator(
	stable domain.Asset,
	tokens SupplyReader,
	treasuryReader TreasuryReader,
	v *valuator.Valuator,
	p pricer.Pricer,
	tier2 []Tier2Asset,
	cache *ReportCache,
	logger *zap.Logger,
) *Aggregator {
	return &Aggregator{
		stable:   stable,
		tokens:   tokens,
		treasury: treasuryReader,
		valuator: v,
		pricer:   p,
		tier2:    tier2,
		cache:    cache,
		logger:   logger,
	}
}

// Report returns the current treasury valuation, served from cache within
// the configured window unless forceRefresh is set.
//
// Tier-1 reads are load-bearing: if the stablecoin or treasury contract is
// unreachable the whole aggregation fails. A tier-2 asset failure only drops
// that asset's contribution and is logged.
func (a *Aggregator) Report(ctx context.Context, forceRefresh bool) (*domain.TreasuryReport, error) {
	if !forceRefresh {
		if cached, ok := a.cache.Get(time.Now()); ok {
			return cached, nil
		}
	}

	supplyRaw, err := a.tokens.TotalSupply(ctx, a.stable.Address)
	if err != nil {
		return nil, errors.Wrap(err, "read stablecoin supply")
	}
	supply := domain.ScaleRaw(supplyRaw, a.stable.Decimals)

	tier1, err := a.tier1Holdings(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "aggregate tier-1 holdings")
	}

	// One shared ETH/USD price per aggregation run.
	ethUSD, err := a.pricer.GetPrice(ctx, domain.EthUsd)
	if err != nil {
		return nil, errors.Wrap(err, "fetch ETH/USD price")
	}

	tier2 := a.tier2Holdings(ctx, ethUSD)

	report := domain.NewTreasuryReport(tier1, tier2, supply, time.Now())
	a.cache.Put(&report)

	a.logger.Info("treasury report computed",
		zap.String("totalValue", report.TotalValue.StringFixed(2)),
		zap.String("supply", report.CirculatingSupply.StringFixed(2)),
		zap.String("ratio", report.CollateralizationRatio.StringFixed(4)))

	return &report, nil
}

func (a *Aggregator) tier1Holdings(ctx context.Context) ([]domain.TreasuryHolding, error) {
	whitelisted, err := a.treasury.WhitelistedTokens(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "read whitelisted tokens")
	}

	holdings := make([]domain.TreasuryHolding, 0, len(whitelisted))
	for _, token := range whitelisted {
		raw, err := a.treasury.Withdrawable(ctx, token)
		if err != nil {
			return nil, errors.Wrapf(err, "read withdrawable %s", token.Hex())
		}
		decimals, err := a.tokens.Decimals(ctx, token)
		if err != nil {
			return nil, errors.Wrapf(err, "read decimals %s", token.Hex())
		}

		symbol, err := a.tokens.Symbol(ctx, token)
		if err != nil {
			symbol = token.Hex()
		}

		asset := domain.Asset{
			Symbol:   symbol,
			Address:  token,
			Decimals: decimals,
			Class:    domain.ClassStablecoin,
		}
		holdings = append(holdings, domain.TreasuryHolding{
			Asset:      asset,
			RawBalance: raw,
			Balance:    domain.ScaleRaw(raw, decimals),
			USDValue:   a.valuator.StablecoinValue(raw, decimals),
		})
	}
	return holdings, nil
}

func (a *Aggregator) tier2Holdings(ctx context.Context, ethUSD decimal.Decimal) []domain.TreasuryHolding {
	holdings := make([]domain.TreasuryHolding, 0, len(a.tier2))
	for _, t2 := range a.tier2 {
		holding, err := a.valueTier2(ctx, t2, ethUSD)
		if err != nil {
			// One asset's failure never aborts the report.
			a.logger.Warn("tier-2 asset valuation failed, excluded from report",
				zap.String("asset", t2.Asset.Symbol),
				zap.Error(err))
			continue
		}
		holdings = append(holdings, holding)
	}
	return holdings
}

func (a *Aggregator) valueTier2(ctx context.Context, t2 Tier2Asset, ethUSD decimal.Decimal) (domain.TreasuryHolding, error) {
	raw, err := a.tokens.BalanceOf(ctx, t2.Asset.Address, a.treasury.Address())
	if err != nil {
		return domain.TreasuryHolding{}, errors.Wrap(err, "read treasury balance")
	}

	holding := domain.TreasuryHolding{
		Asset:      t2.Asset,
		RawBalance: raw,
		Balance:    domain.ScaleRaw(raw, t2.Asset.Decimals),
	}

	switch t2.Asset.Class {
	case domain.ClassStablecoin:
		holding.USDValue = a.valuator.StablecoinValue(raw, t2.Asset.Decimals)
	case domain.ClassStakedEther:
		holding.USDValue, holding.Approximate = a.valuator.StakedEtherValue(ctx, raw, t2.Asset.Decimals, ethUSD, t2.ExchangeRate)
	case domain.ClassLPShare:
		if t2.Pool == nil {
			return domain.TreasuryHolding{}, errors.New("lp share asset has no pool reader configured")
		}
		holding.USDValue, err = a.valuator.LPShareValue(ctx, raw, ethUSD, t2.Pool)
		if err != nil {
			return domain.TreasuryHolding{}, err
		}
	case domain.ClassGeneric:
		holding.USDValue, holding.Approximate = a.valuator.GenericTokenValue(raw, t2.Asset.Decimals, t2.PriceHint)
	default:
		return domain.TreasuryHolding{}, errors.Errorf("unknown asset class %q", t2.Asset.Class)
	}

	return holding, nil
}
