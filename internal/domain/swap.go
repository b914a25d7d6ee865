package domain

import (
	"github.com/shopspring/decimal"
)

// Direction identifies which contract path a swap takes.
type Direction string

const (
	// MintPath converts a whitelisted stablecoin into the protocol stablecoin.
	MintPath Direction = "mint"
	// RedeemPath converts the protocol stablecoin back into a whitelisted stablecoin.
	RedeemPath Direction = "redeem"
)

// DirectionFor resolves the swap direction: MintPath iff the output token is
// the protocol stablecoin itself.
func DirectionFor(toSymbol, stableSymbol string) Direction {
	if toSymbol == stableSymbol {
		return MintPath
	}
	return RedeemPath
}

// SwapQuote is an ephemeral mint/redeem estimate, recomputed on every input
// change. Fees are read live from the contracts; no slippage is modeled since
// conversion is treasury-priced at a fixed rate.
type SwapQuote struct {
	InputAsset   Asset           `json:"inputAsset"`
	OutputAsset  Asset           `json:"outputAsset"`
	InputAmount  decimal.Decimal `json:"inputAmount"`
	OutputAmount decimal.Decimal `json:"outputAmount"`
	// FeeRate fractional fee, e.g. 0.0001 for a 0.01% fee.
	FeeRate   decimal.Decimal `json:"feeRate"`
	Direction Direction       `json:"direction"`
}

// ZeroQuote returns an empty quote for the given pair and direction. Used for
// zero or invalid input amounts and as the recovery value after estimation
// failures.
func ZeroQuote(in, out Asset, dir Direction) SwapQuote {
	return SwapQuote{
		InputAsset:   in,
		OutputAsset:  out,
		InputAmount:  decimal.Zero,
		OutputAmount: decimal.Zero,
		FeeRate:      decimal.Zero,
		Direction:    dir,
	}
}

// IsZero reports whether the quote carries no output.
func (q SwapQuote) IsZero() bool {
	return q.OutputAmount.IsZero()
}

// FeePercent renders the fee rate for display, e.g. "0.01%".
func (q SwapQuote) FeePercent() string {
	return q.FeeRate.Mul(decimal.NewFromInt(100)).String() + "%"
}
