package domain

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// ApprovalState is the transient allowance check performed before a swap.
type ApprovalState struct {
	// Token the ERC-20 whose allowance is checked.
	Token common.Address `json:"token"`
	// Spender the mint or redeem contract that will pull the tokens.
	Spender common.Address `json:"spender"`
	// Owner the connected account.
	Owner common.Address `json:"owner"`
	// CurrentAllowance raw allowance read from the chain.
	CurrentAllowance *big.Int `json:"currentAllowance"`
	// RequiredAmount raw amount the swap needs.
	RequiredAmount *big.Int `json:"requiredAmount"`
	// Sufficient whether CurrentAllowance covers RequiredAmount.
	Sufficient bool `json:"sufficient"`
	// CheckedAt when the allowance was read (or optimistically updated).
	CheckedAt time.Time `json:"checkedAt"`
}

// TokenBalances holds the connected account's balances of the stablecoin and
// every supported counterpart token, keyed by symbol.
type TokenBalances struct {
	Account   common.Address             `json:"account"`
	Balances  map[string]decimal.Decimal `json:"balances"`
	FetchedAt time.Time                  `json:"fetchedAt"`
}
