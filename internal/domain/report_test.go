package domain

import (
	"math/big"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func holding(symbol string, usd int64) TreasuryHolding {
	return TreasuryHolding{
		Asset:    Asset{Symbol: symbol, Class: ClassStablecoin},
		USDValue: decimal.NewFromInt(usd),
	}
}

func TestNewTreasuryReport_TotalsAndRatio(t *testing.T) {
	tier1 := []TreasuryHolding{
		holding("USDC", 2105322),
		holding("DAI", 1826409),
		holding("USDT", 590103),
	}
	tier2 := []TreasuryHolding{
		holding("stETH", 125000),
		holding("VUSD-ETH-LP", 75000),
	}

	report := NewTreasuryReport(tier1, tier2, decimal.NewFromInt(4500000), time.Now())

	require.True(t, report.TotalValue.Equal(decimal.NewFromInt(4721834)))
	require.True(t, report.ExcessValue.Equal(decimal.NewFromInt(221834)))
	require.Equal(t, "1.0493", report.CollateralizationRatio.StringFixed(4))
}

func TestNewTreasuryReport_ZeroSupplyRatioIsOne(t *testing.T) {
	report := NewTreasuryReport([]TreasuryHolding{holding("USDC", 1000)}, nil, decimal.Zero, time.Now())

	require.True(t, report.CollateralizationRatio.Equal(decimal.NewFromInt(1)))
	require.True(t, report.ExcessValue.Equal(decimal.NewFromInt(1000)))
}

func TestNewTreasuryReport_EmptyTreasury(t *testing.T) {
	report := NewTreasuryReport(nil, nil, decimal.NewFromInt(100), time.Now())

	require.True(t, report.TotalValue.IsZero())
	require.True(t, report.CollateralizationRatio.IsZero())
	require.True(t, report.ExcessValue.Equal(decimal.NewFromInt(-100)))
}

func TestScaleRaw_ExactConversion(t *testing.T) {
	raw, _ := new(big.Int).SetString("2105322000000", 10)
	require.True(t, ScaleRaw(raw, 6).Equal(decimal.NewFromInt(2105322)))

	require.True(t, ScaleRaw(big.NewInt(1), 18).Equal(decimal.New(1, -18)))
	require.True(t, ScaleRaw(nil, 18).IsZero())
}

func TestToRaw_TruncatesBelowPrecision(t *testing.T) {
	amount := decimal.RequireFromString("1.2345678")
	require.Equal(t, "1234567", ToRaw(amount, 6).String())

	require.Equal(t, "100000000000000000000", ToRaw(decimal.NewFromInt(100), 18).String())
}
