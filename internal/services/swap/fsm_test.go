package swap

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/vusdhub/vusd-station/internal/domain"
)

func testQuote() domain.SwapQuote {
	return domain.SwapQuote{
		InputAmount:  decimal.NewFromInt(100),
		OutputAmount: decimal.RequireFromString("99.99"),
		Direction:    domain.MintPath,
	}
}

func TestMachine_HappyPath(t *testing.T) {
	m := NewMachine(zap.NewNop())
	require.Equal(t, StateIdle, m.State())

	require.Equal(t, StateEstimating, m.Dispatch(Event{Kind: EventInputChanged}))
	require.Equal(t, StateQuoted, m.Dispatch(Event{Kind: EventQuoteReady, Quote: testQuote()}))
	require.Equal(t, StateExecuting, m.Dispatch(Event{Kind: EventExecuteSubmitted}))
	require.NotEmpty(t, m.AttemptID())
	require.Equal(t, StateSucceeded, m.Dispatch(Event{Kind: EventTxConfirmed}))
}

func TestMachine_ApprovalDetour(t *testing.T) {
	m := NewMachine(zap.NewNop())

	m.Dispatch(Event{Kind: EventInputChanged})
	m.Dispatch(Event{Kind: EventQuoteReady, Quote: testQuote()})

	st := m.Dispatch(Event{Kind: EventApprovalChecked, Approval: domain.ApprovalState{Sufficient: false}})
	require.Equal(t, StateNeedsApproval, st)

	require.Equal(t, StateApproving, m.Dispatch(Event{Kind: EventApproveSubmitted}))
	require.Equal(t, StateQuoted, m.Dispatch(Event{Kind: EventApprovalConfirmed}))
	require.Equal(t, StateExecuting, m.Dispatch(Event{Kind: EventExecuteSubmitted}))
}

func TestMachine_FailedIsReenterable(t *testing.T) {
	m := NewMachine(zap.NewNop())

	m.Dispatch(Event{Kind: EventInputChanged})
	m.Dispatch(Event{Kind: EventQuoteReady, Quote: testQuote()})
	m.Dispatch(Event{Kind: EventExecuteSubmitted})

	st := m.Dispatch(Event{Kind: EventTxFailed, Err: errors.New("execution reverted")})
	require.Equal(t, StateFailed, st)
	require.Error(t, m.Err())

	// New input restarts the attempt.
	require.Equal(t, StateEstimating, m.Dispatch(Event{Kind: EventInputChanged}))
	require.NoError(t, m.Err())
}

func TestMachine_EstimateFailureRecoversToQuoted(t *testing.T) {
	m := NewMachine(zap.NewNop())

	m.Dispatch(Event{Kind: EventInputChanged})
	st := m.Dispatch(Event{
		Kind:  EventEstimateFailed,
		Quote: domain.ZeroQuote(domain.Asset{}, domain.Asset{}, domain.MintPath),
		Err:   errors.New("rpc timeout"),
	})

	// The UI keeps accepting input: a zero quote plus a visible error.
	require.Equal(t, StateQuoted, st)
	require.True(t, m.Quote().IsZero())
	require.Error(t, m.Err())
}

func TestMachine_IgnoresUnexpectedEvents(t *testing.T) {
	m := NewMachine(zap.NewNop())

	// A confirmation with no execution in flight must not corrupt state.
	require.Equal(t, StateIdle, m.Dispatch(Event{Kind: EventTxConfirmed}))
	require.Equal(t, StateIdle, m.Dispatch(Event{Kind: EventApprovalConfirmed}))
}

func TestMachine_Reset(t *testing.T) {
	m := NewMachine(zap.NewNop())

	m.Dispatch(Event{Kind: EventInputChanged})
	m.Dispatch(Event{Kind: EventQuoteReady, Quote: testQuote()})
	m.Dispatch(Event{Kind: EventReset})

	require.Equal(t, StateIdle, m.State())
	require.True(t, m.Quote().IsZero())
	require.Empty(t, m.AttemptID())
}
