package pricer

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vusdhub/vusd-station/internal/domain"
	"github.com/vusdhub/vusd-station/pkg/retrier"
)

// StaticPricer always returns a fixed price. Used directly in tests and as
// the terminal fallback when no price venue is reachable.
type StaticPricer struct {
	price decimal.Decimal
}

// NewStaticPricer creates a pricer pinned to the given price.
func NewStaticPricer(price decimal.Decimal) *StaticPricer {
	return &StaticPricer{price: price}
}

// GetPrice returns the fixed price.
func (p *StaticPricer) GetPrice(context.Context, domain.Pair) (decimal.Decimal, error) {
	return p.price, nil
}

// FallbackPricer retries the wrapped pricer and, when it still fails, returns
// a configured default price instead of blocking valuation. The substitution
// is logged, never silent.
type FallbackPricer struct {
	inner        Pricer
	defaultPrice decimal.Decimal
	retry        *retrier.Retrier
	logger       *zap.Logger
}

// WithFallback wraps inner with retry-then-default semantics.
func WithFallback(inner Pricer, defaultPrice decimal.Decimal, logger *zap.Logger) *FallbackPricer {
	return &FallbackPricer{
		inner:        inner,
		defaultPrice: defaultPrice,
		retry:        retrier.New(),
		logger:       logger,
	}
}

// GetPrice returns the live price, or the default when the venue is down.
func (p *FallbackPricer) GetPrice(ctx context.Context, pair domain.Pair) (decimal.Decimal, error) {
	price, err := retrier.DoWithData(p.retry, ctx, func(ctx context.Context) (decimal.Decimal, error) {
		return p.inner.GetPrice(ctx, pair)
	})
	if err != nil {
		p.logger.Warn("price feed unavailable, using default price",
			zap.String("pair", pair.String()),
			zap.String("default", p.defaultPrice.String()),
			zap.Error(err))
		return p.defaultPrice, nil
	}
	return price, nil
}
