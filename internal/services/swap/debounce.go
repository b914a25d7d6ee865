package swap

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vusdhub/vusd-station/internal/domain"
)

// QuoteFunc produces a quote for the given input.
type QuoteFunc func(ctx context.Context, amount decimal.Decimal, fromSymbol, toSymbol string) (domain.SwapQuote, error)

// EstimateScheduler debounces rapid input changes so that only one estimate
// is issued per quiet period, and discards results whose originating input is
// no longer the current one. A slow early quote can therefore never
// overwrite a later one.
type EstimateScheduler struct {
	mu    sync.Mutex
	delay time.Duration
	seq   uint64
	timer *time.Timer

	quote QuoteFunc
	apply func(domain.SwapQuote, error)
}

// NewEstimateScheduler creates a scheduler issuing quotes via quote and
// delivering non-stale results to apply.
func NewEstimateScheduler(delay time.Duration, quote QuoteFunc, apply func(domain.SwapQuote, error)) *EstimateScheduler {
	return &EstimateScheduler{delay: delay, quote: quote, apply: apply}
}

// Input registers a new input state. The estimate fires after the debounce
// window unless superseded by a newer input first.
func (s *EstimateScheduler) Input(ctx context.Context, amount decimal.Decimal, fromSymbol, toSymbol string) {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, func() {
		s.run(ctx, seq, amount, fromSymbol, toSymbol)
	})
	s.mu.Unlock()
}

func (s *EstimateScheduler) run(ctx context.Context, seq uint64, amount decimal.Decimal, fromSymbol, toSymbol string) {
	quote, err := s.quote(ctx, amount, fromSymbol, toSymbol)

	s.mu.Lock()
	stale := seq != s.seq
	s.mu.Unlock()
	if stale {
		// The input changed while this estimate was in flight.
		return
	}
	s.apply(quote, err)
}

// Stop cancels any pending estimate.
func (s *EstimateScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.seq++
}
