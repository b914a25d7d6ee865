package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// Treasury reads the treasury contract that custodies the stablecoin's
// backing assets.
type Treasury struct {
	addr     common.Address
	contract *bind.BoundContract
	client   *Client
}

// Treasury binds the treasury contract at addr.
func (c *Client) Treasury(addr common.Address) *Treasury {
	return &Treasury{addr: addr, contract: c.bound(addr, treasuryABI), client: c}
}

// Address returns the treasury contract address.
func (t *Treasury) Address() common.Address { return t.addr }

// WhitelistedTokens returns the tier-1 token addresses accepted by the
// treasury.
func (t *Treasury) WhitelistedTokens(ctx context.Context) ([]common.Address, error) {
	var out []interface{}
	if err := t.contract.Call(t.client.callOpts(ctx), &out, "whitelistedTokens"); err != nil {
		return nil, errors.Wrap(err, "whitelistedTokens")
	}
	return out[0].([]common.Address), nil
}

// Withdrawable returns the treasury's withdrawable raw balance of token.
func (t *Treasury) Withdrawable(ctx context.Context, token common.Address) (*big.Int, error) {
	var out []interface{}
	if err := t.contract.Call(t.client.callOpts(ctx), &out, "withdrawable", token); err != nil {
		return nil, errors.Wrapf(err, "withdrawable %s", token.Hex())
	}
	return out[0].(*big.Int), nil
}
