// Package valuator converts raw on-chain balances into USD values according
// to each asset's class.
package valuator

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vusdhub/vusd-station/internal/domain"
)

// fractionPrecision decimal places for LP ownership fractions. Pool supplies
// exceed float64 safe-integer range, so the division is done on exact decimal
// big-int values instead of floats.
const fractionPrecision = 30

// ethDecimals precision of ETH-equivalent reserve amounts.
const ethDecimals = 18

// ExchangeRateFunc converts staked receipt shares to their pooled-ETH
// equivalent raw amount. Nil when the receipt token has no such function.
type ExchangeRateFunc func(ctx context.Context, shares *big.Int) (*big.Int, error)

// PoolReader reads a two-asset AMM pair. Resolved per asset at configuration
// time, not probed at call time.
type PoolReader interface {
	GetReserves(ctx context.Context) (*big.Int, *big.Int, error)
	Token0(ctx context.Context) (common.Address, error)
	Token1(ctx context.Context) (common.Address, error)
	TotalSupply(ctx context.Context) (*big.Int, error)
}

// Valuator values single-asset positions. It knows the protocol stablecoin
// address (to exclude it from pool valuations) and the decimals of known
// external stablecoins (valued 1:1 with USD).
type Valuator struct {
	stablecoin   common.Address
	knownStables map[common.Address]uint8
	logger       *zap.Logger
}

// New creates a Valuator. knownStables maps external stablecoin addresses to
// their decimals.
func New(stablecoin common.Address, knownStables map[common.Address]uint8, logger *zap.Logger) *Valuator {
	if knownStables == nil {
		knownStables = map[common.Address]uint8{}
	}
	return &Valuator{stablecoin: stablecoin, knownStables: knownStables, logger: logger}
}

// StablecoinValue values a stablecoin balance at exactly 1 USD per unit.
// That peg is a modeling assumption, not verified against any market.
func (v *Valuator) StablecoinValue(raw *big.Int, decimals uint8) decimal.Decimal {
	return domain.ScaleRaw(raw, decimals)
}

// StakedEtherValue values a liquid staking receipt balance. When rate is
// available the shares are converted to their pooled-ETH equivalent (the
// share-to-ETH ratio grows as yield accrues); otherwise the balance is
// treated 1:1 with ETH and the result is flagged approximate.
func (v *Valuator) StakedEtherValue(ctx context.Context, raw *big.Int, decimals uint8, ethUSD decimal.Decimal, rate ExchangeRateFunc) (decimal.Decimal, bool) {
	pooled := raw
	approximate := false

	if rate == nil {
		approximate = true
		v.logger.Warn("staked ether has no exchange rate lookup, assuming 1:1 with ETH")
	} else {
		converted, err := rate(ctx, raw)
		if err != nil {
			approximate = true
			v.logger.Warn("staked ether exchange rate lookup failed, assuming 1:1 with ETH", zap.Error(err))
		} else {
			pooled = converted
		}
	}

	return domain.ScaleRaw(pooled, decimals).Mul(ethUSD), approximate
}

// LPShareValue values a liquidity pool share balance as the ownership
// fraction of the pool reserves. When one side of the pool is the protocol
// stablecoin itself, that side is excluded from the result: its value is
// already counted once in circulating-supply accounting, and counting the
// reserve again would double it.
func (v *Valuator) LPShareValue(ctx context.Context, raw *big.Int, ethUSD decimal.Decimal, pool PoolReader) (decimal.Decimal, error) {
	totalSupply, err := pool.TotalSupply(ctx)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "read pool total supply")
	}
	if totalSupply.Sign() == 0 {
		return decimal.Zero, nil
	}

	// Share and supply are in the same raw units, so the fraction needs no
	// decimal scaling. Division is exact-decimal to keep precision for
	// supplies beyond the float64 safe-integer range.
	fraction := decimal.NewFromBigInt(raw, 0).DivRound(decimal.NewFromBigInt(totalSupply, 0), fractionPrecision)

	token0, err := pool.Token0(ctx)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "read pool token0")
	}
	token1, err := pool.Token1(ctx)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "read pool token1")
	}
	reserve0, reserve1, err := pool.GetReserves(ctx)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "read pool reserves")
	}

	total := decimal.Zero
	for _, side := range []struct {
		token   common.Address
		reserve *big.Int
	}{
		{token0, reserve0},
		{token1, reserve1},
	} {
		if side.token == v.stablecoin {
			continue
		}
		total = total.Add(v.reserveValue(side.token, side.reserve, ethUSD))
	}

	return fraction.Mul(total), nil
}

// reserveValue values one pool reserve: known stablecoins at 1:1 USD scaled
// by their own decimals, anything else as an ETH-equivalent token.
func (v *Valuator) reserveValue(token common.Address, reserve *big.Int, ethUSD decimal.Decimal) decimal.Decimal {
	if stableDecimals, ok := v.knownStables[token]; ok {
		return domain.ScaleRaw(reserve, stableDecimals)
	}
	return domain.ScaleRaw(reserve, ethDecimals).Mul(ethUSD)
}

// GenericTokenValue values any other token with a configured per-unit price
// hint. The hint is a placeholder for a real price oracle, so the result is
// always flagged approximate.
func (v *Valuator) GenericTokenValue(raw *big.Int, decimals uint8, priceHint decimal.Decimal) (decimal.Decimal, bool) {
	v.logger.Warn("generic token valued via placeholder price hint",
		zap.String("priceHint", priceHint.String()))
	return domain.ScaleRaw(raw, decimals).Mul(priceHint), true
}
