// Package domain defines core value objects for treasury valuation and swaps.
package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// AssetClass tags how an asset's USD value is derived.
type AssetClass string

const (
	// ClassStablecoin is valued 1:1 with USD per unit. This is a modeling
	// simplification, not a market fact.
	ClassStablecoin AssetClass = "stablecoin"
	// ClassStakedEther is an ETH-denominated liquid staking receipt token.
	ClassStakedEther AssetClass = "staked_ether"
	// ClassLPShare is a two-asset AMM liquidity pool share token.
	ClassLPShare AssetClass = "lp_share"
	// ClassGeneric is any other token; its valuation needs a price oracle
	// and is only approximated here.
	ClassGeneric AssetClass = "generic"
)

// Valid reports whether the class is one of the known variants.
func (c AssetClass) Valid() bool {
	switch c {
	case ClassStablecoin, ClassStakedEther, ClassLPShare, ClassGeneric:
		return true
	}
	return false
}

// Asset is one entry of the static asset registry. Assets are defined in
// configuration and never created at runtime.
type Asset struct {
	// Symbol display symbol, e.g. "USDC".
	Symbol string
	// Address token contract address.
	Address common.Address
	// Decimals token precision reported by the contract.
	Decimals uint8
	// Class valuation class.
	Class AssetClass
}

// ScaleRaw converts a raw smallest-unit balance into a human-readable amount
// using the asset's declared decimals. The conversion is exact.
func ScaleRaw(raw *big.Int, decimals uint8) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(raw, -int32(decimals))
}

// ToRaw converts a human-readable amount into raw smallest units, truncating
// anything below the asset's precision.
func ToRaw(amount decimal.Decimal, decimals uint8) *big.Int {
	return amount.Shift(int32(decimals)).Truncate(0).BigInt()
}
