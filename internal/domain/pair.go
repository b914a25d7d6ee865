package domain

import "fmt"

// Pair market data pair used for spot price lookups.
type Pair struct {
	// From base currency symbol.
	From string
	// To quote currency symbol.
	To string
}

// EthUsd is the pair used for ETH-denominated asset valuation.
var EthUsd = Pair{From: "ETH", To: "USDT"}

// String returns the string representation.
func (p Pair) String() string {
	return fmt.Sprintf("%s_%s", p.From, p.To)
}

// Symbol returns the concatenated symbol representation.
func (p Pair) Symbol() string {
	return fmt.Sprintf("%s%s", p.From, p.To)
}
