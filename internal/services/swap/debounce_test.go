package swap

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/vusdhub/vusd-station/internal/domain"
)

func TestEstimateScheduler_OnlyFinalInputEstimated(t *testing.T) {
	var mu sync.Mutex
	var estimated []string
	var applied []string

	quote := func(_ context.Context, amount decimal.Decimal, _, _ string) (domain.SwapQuote, error) {
		mu.Lock()
		estimated = append(estimated, amount.String())
		mu.Unlock()
		return domain.SwapQuote{InputAmount: amount, OutputAmount: amount}, nil
	}
	apply := func(q domain.SwapQuote, _ error) {
		mu.Lock()
		applied = append(applied, q.InputAmount.String())
		mu.Unlock()
	}

	s := NewEstimateScheduler(50*time.Millisecond, quote, apply)
	defer s.Stop()

	// Rapid typing: "1", "12", "123" inside the debounce window.
	ctx := context.Background()
	s.Input(ctx, decimal.NewFromInt(1), "USDC", "VUSD")
	time.Sleep(10 * time.Millisecond)
	s.Input(ctx, decimal.NewFromInt(12), "USDC", "VUSD")
	time.Sleep(10 * time.Millisecond)
	s.Input(ctx, decimal.NewFromInt(123), "USDC", "VUSD")

	time.Sleep(150 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"123"}, estimated, "only the final value should be estimated")
	require.Equal(t, []string{"123"}, applied)
}

func TestEstimateScheduler_StaleResultDiscarded(t *testing.T) {
	var mu sync.Mutex
	var applied []string
	release := make(chan struct{})

	quote := func(_ context.Context, amount decimal.Decimal, _, _ string) (domain.SwapQuote, error) {
		if amount.Equal(decimal.NewFromInt(1)) {
			// The first estimate is slow and resolves after newer input.
			<-release
		}
		return domain.SwapQuote{InputAmount: amount, OutputAmount: amount}, nil
	}
	apply := func(q domain.SwapQuote, _ error) {
		mu.Lock()
		applied = append(applied, q.InputAmount.String())
		mu.Unlock()
	}

	s := NewEstimateScheduler(5*time.Millisecond, quote, apply)
	defer s.Stop()

	ctx := context.Background()
	s.Input(ctx, decimal.NewFromInt(1), "USDC", "VUSD")
	time.Sleep(20 * time.Millisecond) // first estimate is now in flight, blocked

	s.Input(ctx, decimal.NewFromInt(2), "USDC", "VUSD")
	time.Sleep(20 * time.Millisecond) // second estimate resolves

	close(release) // slow first estimate resolves late
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"2"}, applied, "the slow early quote must not overwrite the newer one")
}

func TestEstimateScheduler_StopCancelsPending(t *testing.T) {
	var mu sync.Mutex
	calls := 0

	s := NewEstimateScheduler(30*time.Millisecond,
		func(context.Context, decimal.Decimal, string, string) (domain.SwapQuote, error) {
			mu.Lock()
			calls++
			mu.Unlock()
			return domain.SwapQuote{}, nil
		},
		func(domain.SwapQuote, error) {},
	)

	s.Input(context.Background(), decimal.NewFromInt(5), "USDC", "VUSD")
	s.Stop()

	time.Sleep(60 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Zero(t, calls)
}
