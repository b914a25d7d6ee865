package domain

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// ratioPrecision decimal places kept when dividing treasury value by supply.
const ratioPrecision = 12

// TreasuryHolding is one valued treasury position. Recomputed from chain
// state on every aggregation run, never persisted as mutable state.
type TreasuryHolding struct {
	Asset Asset `json:"asset"`
	// RawBalance smallest-unit balance read from the chain.
	RawBalance *big.Int `json:"rawBalance"`
	// Balance human-readable balance scaled by the asset's decimals.
	Balance decimal.Decimal `json:"balance"`
	// USDValue valuation of the position.
	USDValue decimal.Decimal `json:"usdValue"`
	// Approximate is set when the value was derived through a fallback or
	// placeholder price rather than the asset's primary valuation path.
	Approximate bool `json:"approximate,omitempty"`
}

// TreasuryReport is a full valuation of the treasury backing the stablecoin.
type TreasuryReport struct {
	// Tier1Holdings whitelisted stablecoins, valued 1:1 with USD.
	Tier1Holdings []TreasuryHolding `json:"tier1Holdings"`
	// Tier2Holdings all other backing assets, class-specific valuation.
	Tier2Holdings []TreasuryHolding `json:"tier2Holdings"`
	// TotalValue sum of both tranches.
	TotalValue decimal.Decimal `json:"totalValue"`
	// CirculatingSupply of the stablecoin.
	CirculatingSupply decimal.Decimal `json:"circulatingSupply"`
	// CollateralizationRatio TotalValue / CirculatingSupply, 1 when supply is zero.
	CollateralizationRatio decimal.Decimal `json:"collateralizationRatio"`
	// ExcessValue treasury value beyond 1:1 backing of the supply.
	ExcessValue decimal.Decimal `json:"excessValue"`
	// ComputedAt aggregation timestamp.
	ComputedAt time.Time `json:"computedAt"`
}

// NewTreasuryReport assembles a report from valued holdings. TotalValue is
// always the exact sum of the individual holding values, with no hidden
// adjustment terms.
func NewTreasuryReport(tier1, tier2 []TreasuryHolding, supply decimal.Decimal, computedAt time.Time) TreasuryReport {
	total := decimal.Zero
	for _, h := range tier1 {
		total = total.Add(h.USDValue)
	}
	for _, h := range tier2 {
		total = total.Add(h.USDValue)
	}

	ratio := decimal.NewFromInt(1)
	if supply.IsPositive() {
		ratio = total.DivRound(supply, ratioPrecision)
	}

	return TreasuryReport{
		Tier1Holdings:          tier1,
		Tier2Holdings:          tier2,
		TotalValue:             total,
		CirculatingSupply:      supply,
		CollateralizationRatio: ratio,
		ExcessValue:            total.Sub(supply),
		ComputedAt:             computedAt,
	}
}

// TreasuryReportRecord pairs a stored report with its WAL index.
type TreasuryReportRecord struct {
	Index  uint64         `json:"index"`
	Report TreasuryReport `json:"report"`
}
