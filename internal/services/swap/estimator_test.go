package swap

import (
	"context"
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vusdhub/vusd-station/internal/domain"
)

func newEstimator(minter *fakeMinter, redeemer *fakeRedeemer) *Estimator {
	return NewEstimator(minter, redeemer, testRegistry(), 10000, zap.NewNop())
}

func TestEstimate_MintPath(t *testing.T) {
	// 100 USDC in, 99.99 VUSD out after a 0.01% fee.
	minter := &fakeMinter{
		mintage: decimal.RequireFromString("99.99").Shift(18).BigInt(),
		fee:     big.NewInt(1),
	}
	e := newEstimator(minter, &fakeRedeemer{})

	quote, err := e.Estimate(context.Background(), decimal.NewFromInt(100), "USDC", "VUSD")
	require.NoError(t, err)

	require.Equal(t, domain.MintPath, quote.Direction)
	require.Equal(t, "99.99", quote.OutputAmount.String())
	require.Equal(t, "0.01%", quote.FeePercent())
}

func TestEstimate_RedeemPath(t *testing.T) {
	// 50 VUSD in, 49.95 USDC out with a 0.1% redeem fee.
	redeemer := &fakeRedeemer{
		redeemable: decimal.RequireFromString("49.95").Shift(6).BigInt(),
		fee:        big.NewInt(10),
	}
	e := newEstimator(&fakeMinter{}, redeemer)

	quote, err := e.Estimate(context.Background(), decimal.NewFromInt(50), "VUSD", "USDC")
	require.NoError(t, err)

	require.Equal(t, domain.RedeemPath, quote.Direction)
	require.Equal(t, "49.95", quote.OutputAmount.String())
	require.Equal(t, "0.1%", quote.FeePercent())
}

func TestEstimate_DirectionForEveryPairOrdering(t *testing.T) {
	for _, tc := range []struct {
		from, to string
		want     domain.Direction
	}{
		{"USDC", "VUSD", domain.MintPath},
		{"DAI", "VUSD", domain.MintPath},
		{"VUSD", "USDC", domain.RedeemPath},
		{"VUSD", "DAI", domain.RedeemPath},
	} {
		require.Equal(t, tc.want, domain.DirectionFor(tc.to, "VUSD"), "%s -> %s", tc.from, tc.to)
	}
}

func TestEstimate_ZeroAmountSkipsChain(t *testing.T) {
	log := &callLog{}
	minter := &fakeMinter{log: log}
	e := newEstimator(minter, &fakeRedeemer{log: log})

	quote, err := e.Estimate(context.Background(), decimal.Zero, "USDC", "VUSD")
	require.NoError(t, err)
	require.True(t, quote.IsZero())
	require.Equal(t, domain.MintPath, quote.Direction)
	require.Empty(t, log.calls)

	quote, err = e.Estimate(context.Background(), decimal.NewFromInt(-5), "VUSD", "USDC")
	require.NoError(t, err)
	require.True(t, quote.IsZero())
	require.Empty(t, log.calls)
}

func TestEstimate_FailureReturnsZeroQuote(t *testing.T) {
	minter := &fakeMinter{mintageErr: errors.New("execution reverted")}
	e := newEstimator(minter, &fakeRedeemer{})

	quote, err := e.Estimate(context.Background(), decimal.NewFromInt(100), "USDC", "VUSD")
	require.Error(t, err)
	require.True(t, quote.IsZero())
	require.Equal(t, domain.MintPath, quote.Direction)
}

func TestEstimate_UnknownToken(t *testing.T) {
	e := newEstimator(&fakeMinter{}, &fakeRedeemer{})

	_, err := e.Estimate(context.Background(), decimal.NewFromInt(1), "WBTC", "VUSD")
	require.Error(t, err)
}

func TestEstimate_RejectsPairWithoutStablecoinSide(t *testing.T) {
	log := &callLog{}
	e := newEstimator(&fakeMinter{log: log}, &fakeRedeemer{log: log})

	// Counterpart to counterpart has no mint or redeem path; the raw amount
	// would otherwise be scaled at the input's decimals and passed to
	// redeemable as a VUSD amount.
	_, err := e.Estimate(context.Background(), decimal.NewFromInt(100), "USDC", "DAI")
	require.Error(t, err)
	require.Contains(t, err.Error(), "exactly one side")
	require.Empty(t, log.calls)

	// Stablecoin on both sides is equally invalid.
	_, err = e.Estimate(context.Background(), decimal.NewFromInt(100), "VUSD", "VUSD")
	require.Error(t, err)
	require.Empty(t, log.calls)
}
