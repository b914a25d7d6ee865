package swap

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vusdhub/vusd-station/internal/domain"
)

// ErrWalletNotConnected is returned by operations that need a signer.
var ErrWalletNotConnected = errors.New("wallet not connected")

// maxApproval is the maximum uint256, approved once so repeat swaps do not
// need repeat approval transactions.
var maxApproval = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// TokenAccess reads and writes ERC-20 state.
type TokenAccess interface {
	BalanceOf(ctx context.Context, token, owner common.Address) (*big.Int, error)
	Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error)
	Approve(ctx context.Context, token, spender common.Address, amount *big.Int) (*types.Transaction, error)
}

// MinterContract extends MinterReader with the mint transaction.
type MinterContract interface {
	MinterReader
	Mint(ctx context.Context, token common.Address, amountIn *big.Int) (*types.Transaction, error)
}

// RedeemerContract extends RedeemerReader with the redeem transaction.
type RedeemerContract interface {
	RedeemerReader
	Redeem(ctx context.Context, token common.Address, vusdAmount *big.Int) (*types.Transaction, error)
}

// Wallet is the connected signing account plus transaction confirmation.
type Wallet interface {
	Connected() bool
	Account() (common.Address, error)
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}

// Executor checks approvals and executes mint/redeem swaps.
type Executor struct {
	tokens   TokenAccess
	minter   MinterContract
	redeemer RedeemerContract
	wallet   Wallet
	registry *domain.Registry
	machine  *Machine
	logger   *zap.Logger

	// approvalTTL bounds redundant allowance reads; balanceTTL is the
	// balance cache window, scoped per account.
	approvalTTL time.Duration
	balanceTTL  time.Duration

	mu               sync.Mutex
	approvals        map[string]domain.ApprovalState
	approvalInFlight map[string]bool
	balances         map[common.Address]domain.TokenBalances

	// onSwapExecuted triggers the external treasury refresh after a
	// confirmed swap.
	onSwapExecuted func(ctx context.Context)
}

// NewExecutor wires the executor. onSwapExecuted may be nil.
func NewExecutor(
	tokens TokenAccess,
	minter MinterContract,
	redeemer RedeemerContract,
	wallet Wallet,
	registry *domain.Registry,
	machine *Machine,
	approvalTTL, balanceTTL time.Duration,
	onSwapExecuted func(ctx context.Context),
	logger *zap.Logger,
) *Executor {
	return &Executor{
		tokens:           tokens,
		minter:           minter,
		redeemer:         redeemer,
		wallet:           wallet,
		registry:         registry,
		machine:          machine,
		approvalTTL:      approvalTTL,
		balanceTTL:       balanceTTL,
		approvals:        make(map[string]domain.ApprovalState),
		approvalInFlight: make(map[string]bool),
		balances:         make(map[common.Address]domain.TokenBalances),
		onSwapExecuted:   onSwapExecuted,
		logger:           logger,
	}
}

// spenderFor resolves which token must approve which contract for the given
// direction: the input token approves the minter on the mint path, the
// stablecoin approves the redeemer on the redeem path.
func (e *Executor) spenderFor(direction domain.Direction, input domain.Asset) (token, spender common.Address) {
	if direction == domain.MintPath {
		return input.Address, e.minter.Address()
	}
	return e.registry.Stable().Address, e.redeemer.Address()
}

// CheckApproval reads the relevant allowance and compares it against the
// required raw amount. Checks are throttled per token/spender pair and
// short-circuit while a previous check is still outstanding.
func (e *Executor) CheckApproval(ctx context.Context, direction domain.Direction, inputSymbol string, required *big.Int) (domain.ApprovalState, error) {
	input, ok := e.registry.BySymbol(inputSymbol)
	if !ok {
		return domain.ApprovalState{}, errors.Errorf("unknown input token %q", inputSymbol)
	}
	token, spender := e.spenderFor(direction, input)

	key := token.Hex() + spender.Hex()
	e.mu.Lock()
	cached, haveCached := e.approvals[key]
	inFlight := e.approvalInFlight[key]
	fresh := haveCached && time.Since(cached.CheckedAt) < e.approvalTTL
	if inFlight || fresh {
		e.mu.Unlock()
		if haveCached {
			cached.RequiredAmount = required
			cached.Sufficient = cached.CurrentAllowance.Cmp(required) >= 0
			return cached, nil
		}
		return domain.ApprovalState{}, errors.New("approval check already in progress")
	}
	e.approvalInFlight[key] = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.approvalInFlight[key] = false
		e.mu.Unlock()
	}()

	state, err := e.readApproval(ctx, token, spender, required)
	if err != nil {
		return domain.ApprovalState{}, err
	}

	e.mu.Lock()
	e.approvals[key] = state
	e.mu.Unlock()

	e.machine.Dispatch(Event{Kind: EventApprovalChecked, Approval: state})
	return state, nil
}

func (e *Executor) readApproval(ctx context.Context, token, spender common.Address, required *big.Int) (domain.ApprovalState, error) {
	owner, err := e.wallet.Account()
	if err != nil {
		return domain.ApprovalState{}, err
	}

	allowance, err := e.tokens.Allowance(ctx, token, owner, spender)
	if err != nil {
		return domain.ApprovalState{}, errors.Wrap(err, "read allowance")
	}

	return domain.ApprovalState{
		Token:            token,
		Spender:          spender,
		Owner:            owner,
		CurrentAllowance: allowance,
		RequiredAmount:   required,
		Sufficient:       allowance.Cmp(required) >= 0,
		CheckedAt:        time.Now(),
	}, nil
}

// Approve submits a maximum-amount approval for the direction's spender and
// waits for confirmation. The cached approval state is updated optimistically
// without re-querying the chain.
func (e *Executor) Approve(ctx context.Context, direction domain.Direction, inputSymbol string) (*types.Transaction, error) {
	if !e.wallet.Connected() {
		return nil, ErrWalletNotConnected
	}
	input, ok := e.registry.BySymbol(inputSymbol)
	if !ok {
		return nil, errors.Errorf("unknown input token %q", inputSymbol)
	}
	token, spender := e.spenderFor(direction, input)

	e.machine.Dispatch(Event{Kind: EventApproveSubmitted})

	tx, err := e.tokens.Approve(ctx, token, spender, maxApproval)
	if err != nil {
		e.machine.Dispatch(Event{Kind: EventTxFailed, Err: err})
		return nil, errors.Wrap(err, "submit approval")
	}
	if _, err := e.wallet.WaitMined(ctx, tx); err != nil {
		e.machine.Dispatch(Event{Kind: EventTxFailed, Err: err})
		return nil, errors.Wrap(err, "confirm approval")
	}

	owner, _ := e.wallet.Account()
	e.mu.Lock()
	e.approvals[token.Hex()+spender.Hex()] = domain.ApprovalState{
		Token:            token,
		Spender:          spender,
		Owner:            owner,
		CurrentAllowance: new(big.Int).Set(maxApproval),
		RequiredAmount:   big.NewInt(0),
		Sufficient:       true,
		CheckedAt:        time.Now(),
	}
	e.mu.Unlock()

	e.machine.Dispatch(Event{Kind: EventApprovalConfirmed})
	e.logger.Info("approval confirmed",
		zap.String("token", token.Hex()),
		zap.String("spender", spender.Hex()))
	return tx, nil
}

// Execute performs the swap: re-verifies the approval (approving first when
// insufficient), submits the mint or redeem transaction, awaits confirmation
// and triggers balance and treasury refreshes. Fails fast without a chain
// call when the wallet is disconnected or the amount is non-positive.
func (e *Executor) Execute(ctx context.Context, amount decimal.Decimal, fromSymbol, toSymbol string) (*types.Receipt, error) {
	if !e.wallet.Connected() {
		return nil, ErrWalletNotConnected
	}
	if !amount.IsPositive() {
		return nil, errors.New("swap amount must be positive")
	}

	input, output, direction, err := resolvePair(e.registry, fromSymbol, toSymbol)
	if err != nil {
		return nil, err
	}

	rawIn := domain.ToRaw(amount, input.Decimals)

	// Fresh allowance read, bypassing the throttle window.
	token, spender := e.spenderFor(direction, input)
	approval, err := e.readApproval(ctx, token, spender, rawIn)
	if err != nil {
		return nil, err
	}
	if !approval.Sufficient {
		if _, err := e.Approve(ctx, direction, fromSymbol); err != nil {
			return nil, err
		}
	}

	e.machine.Dispatch(Event{Kind: EventExecuteSubmitted})

	var tx *types.Transaction
	switch direction {
	case domain.MintPath:
		tx, err = e.minter.Mint(ctx, input.Address, rawIn)
	case domain.RedeemPath:
		tx, err = e.redeemer.Redeem(ctx, output.Address, rawIn)
	}
	if err != nil {
		e.machine.Dispatch(Event{Kind: EventTxFailed, Err: err})
		return nil, errors.Wrapf(err, "submit %s", direction)
	}

	receipt, err := e.wallet.WaitMined(ctx, tx)
	if err != nil {
		e.machine.Dispatch(Event{Kind: EventTxFailed, Err: err})
		return receipt, errors.Wrapf(err, "confirm %s", direction)
	}

	e.machine.Dispatch(Event{Kind: EventTxConfirmed})
	e.logger.Info("swap executed",
		zap.String("direction", string(direction)),
		zap.String("from", fromSymbol),
		zap.String("to", toSymbol),
		zap.String("amount", amount.String()),
		zap.String("tx", tx.Hash().Hex()))

	// Cached balances are stale after a confirmed swap.
	if _, err := e.FetchBalances(ctx, true); err != nil {
		e.logger.Warn("balance refresh after swap failed", zap.Error(err))
	}
	if e.onSwapExecuted != nil {
		e.onSwapExecuted(ctx)
	}

	return receipt, nil
}

// FetchBalances reads the connected account's balance of the stablecoin and
// every supported counterpart token, honouring the per-account cache window
// unless forceRefresh is set.
func (e *Executor) FetchBalances(ctx context.Context, forceRefresh bool) (domain.TokenBalances, error) {
	account, err := e.wallet.Account()
	if err != nil {
		return domain.TokenBalances{}, err
	}

	e.mu.Lock()
	cached, ok := e.balances[account]
	e.mu.Unlock()
	if ok && !forceRefresh && time.Since(cached.FetchedAt) < e.balanceTTL {
		return cached, nil
	}

	assets := append([]domain.Asset{e.registry.Stable()}, e.registry.Counterparts()...)
	balances := make(map[string]decimal.Decimal, len(assets))
	for _, asset := range assets {
		raw, err := e.tokens.BalanceOf(ctx, asset.Address, account)
		if err != nil {
			return domain.TokenBalances{}, errors.Wrapf(err, "read balance of %s", asset.Symbol)
		}
		balances[asset.Symbol] = domain.ScaleRaw(raw, asset.Decimals)
	}

	result := domain.TokenBalances{
		Account:   account,
		Balances:  balances,
		FetchedAt: time.Now(),
	}

	e.mu.Lock()
	e.balances[account] = result
	e.mu.Unlock()

	return result, nil
}
