// Package pricer provides USD spot price lookups for ETH-denominated asset
// valuation.
package pricer

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/vusdhub/vusd-station/internal/domain"
)

// Pricer fetches the current spot price of a pair.
type Pricer interface {
	GetPrice(ctx context.Context, pair domain.Pair) (decimal.Decimal, error)
}
