package pricer

import (
	"context"
	"fmt"

	"github.com/hirokisan/bybit/v2"
	"github.com/shopspring/decimal"

	"github.com/vusdhub/vusd-station/internal/domain"
)

// BybitPricer fetches spot prices from the Bybit public API.
type BybitPricer struct {
	client *bybit.Client
}

// NewBybitPricer creates a pricer backed by the Bybit V5 market API.
func NewBybitPricer() *BybitPricer {
	return &BybitPricer{client: bybit.NewClient()}
}

// GetPrice fetches the last traded price for the pair.
func (p *BybitPricer) GetPrice(_ context.Context, pair domain.Pair) (decimal.Decimal, error) {
	symbol := bybit.SymbolV5(pair.Symbol())

	result, err := p.client.V5().Market().GetTickers(bybit.V5GetTickersParam{
		Category: "spot",
		Symbol:   &symbol,
	})
	if err != nil {
		return decimal.Decimal{}, err
	}

	if len(result.Result.Spot.List) == 0 {
		return decimal.Decimal{}, fmt.Errorf("bybit API returned empty prices for %s", pair.String())
	}

	return decimal.NewFromString(result.Result.Spot.List[0].LastPrice)
}
