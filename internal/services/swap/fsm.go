package swap

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vusdhub/vusd-station/internal/domain"
)

// State of a swap attempt.
type State string

const (
	StateIdle          State = "idle"
	StateEstimating    State = "estimating"
	StateQuoted        State = "quoted"
	StateNeedsApproval State = "needs_approval"
	StateApproving     State = "approving"
	StateExecuting     State = "executing"
	StateSucceeded     State = "succeeded"
	StateFailed        State = "failed"
)

// EventKind is a discrete event dispatched to the swap state machine.
type EventKind string

const (
	EventInputChanged      EventKind = "input_changed"
	EventQuoteReady        EventKind = "quote_ready"
	EventEstimateFailed    EventKind = "estimate_failed"
	EventApprovalChecked   EventKind = "approval_checked"
	EventApproveSubmitted  EventKind = "approve_submitted"
	EventApprovalConfirmed EventKind = "approval_confirmed"
	EventExecuteSubmitted  EventKind = "execute_submitted"
	EventTxConfirmed       EventKind = "tx_confirmed"
	EventTxFailed          EventKind = "tx_failed"
	EventReset             EventKind = "reset"
)

// Event carries an EventKind plus its payload.
type Event struct {
	Kind     EventKind
	Quote    domain.SwapQuote
	Approval domain.ApprovalState
	Err      error
}

// Machine is the reducer-style state machine driving a swap attempt:
// Idle -> Estimating -> Quoted -> (NeedsApproval -> Approving -> Quoted) ->
// Executing -> Succeeded | Failed. Idle and Failed are re-enterable;
// Succeeded is terminal for the attempt.
type Machine struct {
	mu        sync.Mutex
	state     State
	attemptID string
	quote     domain.SwapQuote
	lastErr   error
	logger    *zap.Logger
}

// NewMachine creates a machine in the Idle state.
func NewMachine(logger *zap.Logger) *Machine {
	return &Machine{state: StateIdle, logger: logger}
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Quote returns the last applied quote.
func (m *Machine) Quote() domain.SwapQuote {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.quote
}

// Err returns the failure that moved the machine to its current state, if any.
func (m *Machine) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// AttemptID returns the ID of the current execution attempt.
func (m *Machine) AttemptID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attemptID
}

// Dispatch applies one event and returns the resulting state. Unexpected
// events for the current state are ignored rather than corrupting it.
func (m *Machine) Dispatch(ev Event) State {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev := m.state
	switch ev.Kind {
	case EventInputChanged:
		// A succeeded attempt stays terminal; new input starts a new one.
		m.state = StateEstimating
		m.lastErr = nil
		m.attemptID = ""

	case EventQuoteReady:
		if m.state == StateEstimating || m.state == StateQuoted {
			m.quote = ev.Quote
			m.state = StateQuoted
		}

	case EventEstimateFailed:
		if m.state == StateEstimating {
			m.quote = ev.Quote
			m.lastErr = ev.Err
			m.state = StateQuoted
		}

	case EventApprovalChecked:
		if m.state == StateQuoted || m.state == StateNeedsApproval {
			if ev.Approval.Sufficient {
				m.state = StateQuoted
			} else {
				m.state = StateNeedsApproval
			}
		}

	case EventApproveSubmitted:
		if m.state == StateNeedsApproval || m.state == StateQuoted {
			m.state = StateApproving
		}

	case EventApprovalConfirmed:
		if m.state == StateApproving {
			m.state = StateQuoted
		}

	case EventExecuteSubmitted:
		if m.state == StateQuoted {
			m.attemptID = uuid.NewString()
			m.state = StateExecuting
		}

	case EventTxConfirmed:
		if m.state == StateExecuting {
			m.state = StateSucceeded
		}

	case EventTxFailed:
		if m.state == StateExecuting || m.state == StateApproving {
			m.lastErr = ev.Err
			m.state = StateFailed
		}

	case EventReset:
		m.state = StateIdle
		m.quote = domain.SwapQuote{}
		m.lastErr = nil
		m.attemptID = ""
	}

	if m.state != prev {
		m.logger.Debug("swap state transition",
			zap.String("from", string(prev)),
			zap.String("to", string(m.state)),
			zap.String("event", string(ev.Kind)))
	}
	return m.state
}
