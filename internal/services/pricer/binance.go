package pricer

import (
	"context"
	"fmt"

	"github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"

	"github.com/vusdhub/vusd-station/internal/domain"
)

// BinancePricer fetches spot prices from the Binance public API. No
// authentication is required for ticker reads.
type BinancePricer struct {
	client *binance.Client
}

// NewBinancePricer creates a pricer backed by the Binance public ticker API.
func NewBinancePricer() *BinancePricer {
	return &BinancePricer{client: binance.NewClient("", "")}
}

// GetPrice fetches the last traded price for the pair.
func (p *BinancePricer) GetPrice(ctx context.Context, pair domain.Pair) (decimal.Decimal, error) {
	prices, err := p.client.NewListPricesService().Symbol(pair.Symbol()).Do(ctx)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if len(prices) == 0 {
		return decimal.Decimal{}, fmt.Errorf("binance API returned empty prices for %s", pair.String())
	}

	return decimal.NewFromString(prices[0].Price)
}
