// Package swap quotes and executes the mint/redeem operations that together
// present as one bidirectional stablecoin swap.
package swap

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vusdhub/vusd-station/internal/domain"
)

// MinterReader reads the minter contract's view functions.
type MinterReader interface {
	Address() common.Address
	CalculateMintage(ctx context.Context, token common.Address, amountIn *big.Int) (*big.Int, error)
	MintingFee(ctx context.Context) (*big.Int, error)
}

// RedeemerReader reads the redeemer contract's view functions.
type RedeemerReader interface {
	Address() common.Address
	Redeemable(ctx context.Context, token common.Address, vusdAmount *big.Int) (*big.Int, error)
	RedeemFee(ctx context.Context) (*big.Int, error)
}

// Estimator computes swap quotes against the live contracts.
type Estimator struct {
	minter   MinterReader
	redeemer RedeemerReader
	registry *domain.Registry
	// feeDenominator scales the contracts' integer fees into fractional
	// rates, e.g. 10000 for basis points.
	feeDenominator decimal.Decimal
	logger         *zap.Logger
}

// NewEstimator creates an estimator over the given contracts and registry.
func NewEstimator(minter MinterReader, redeemer RedeemerReader, registry *domain.Registry, feeDenominator int64, logger *zap.Logger) *Estimator {
	return &Estimator{
		minter:         minter,
		redeemer:       redeemer,
		registry:       registry,
		feeDenominator: decimal.NewFromInt(feeDenominator),
		logger:         logger,
	}
}

// Estimate quotes a swap of amount fromSymbol into toSymbol. Zero or
// negative amounts return a zero quote without touching the chain. Chain
// errors also return a zero quote, with the error surfaced so the caller can
// treat estimation failure as recoverable.
func (e *Estimator) Estimate(ctx context.Context, amount decimal.Decimal, fromSymbol, toSymbol string) (domain.SwapQuote, error) {
	in, out, direction, err := resolvePair(e.registry, fromSymbol, toSymbol)
	if err != nil {
		return domain.SwapQuote{}, err
	}
	if !amount.IsPositive() {
		return domain.ZeroQuote(in, out, direction), nil
	}

	rawIn := domain.ToRaw(amount, in.Decimals)

	var rawOut, feeRaw *big.Int
	switch direction {
	case domain.MintPath:
		rawOut, err = e.minter.CalculateMintage(ctx, in.Address, rawIn)
		if err == nil {
			feeRaw, err = e.minter.MintingFee(ctx)
		}
	case domain.RedeemPath:
		rawOut, err = e.redeemer.Redeemable(ctx, out.Address, rawIn)
		if err == nil {
			feeRaw, err = e.redeemer.RedeemFee(ctx)
		}
	}
	if err != nil {
		e.logger.Warn("swap estimation failed",
			zap.String("from", fromSymbol),
			zap.String("to", toSymbol),
			zap.Error(err))
		return domain.ZeroQuote(in, out, direction), errors.Wrap(err, "estimate swap")
	}

	return domain.SwapQuote{
		InputAsset:   in,
		OutputAsset:  out,
		InputAmount:  amount,
		OutputAmount: domain.ScaleRaw(rawOut, out.Decimals),
		FeeRate:      decimal.NewFromBigInt(feeRaw, 0).Div(e.feeDenominator),
		Direction:    direction,
	}, nil
}

// resolvePair looks up both sides of a swap and validates that the protocol
// stablecoin appears on exactly one of them. Every supported swap is either a
// mint or a redeem; counterpart-to-counterpart pairs have no contract path.
func resolvePair(registry *domain.Registry, fromSymbol, toSymbol string) (domain.Asset, domain.Asset, domain.Direction, error) {
	in, ok := registry.BySymbol(fromSymbol)
	if !ok {
		return domain.Asset{}, domain.Asset{}, "", errors.Errorf("unknown input token %q", fromSymbol)
	}
	out, ok := registry.BySymbol(toSymbol)
	if !ok {
		return domain.Asset{}, domain.Asset{}, "", errors.Errorf("unknown output token %q", toSymbol)
	}

	stable := registry.Stable().Symbol
	if (fromSymbol == stable) == (toSymbol == stable) {
		return domain.Asset{}, domain.Asset{}, "", errors.Errorf("swap %s -> %s must have %s on exactly one side", fromSymbol, toSymbol, stable)
	}

	return in, out, domain.DirectionFor(toSymbol, stable), nil
}
