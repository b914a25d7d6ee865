package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
)

// Redeemer wraps the contract that redeems the stablecoin back into
// whitelisted tokens.
type Redeemer struct {
	addr     common.Address
	contract *bind.BoundContract
	client   *Client
}

// Redeemer binds the redeemer contract at addr.
func (c *Client) Redeemer(addr common.Address) *Redeemer {
	return &Redeemer{addr: addr, contract: c.bound(addr, redeemerABI), client: c}
}

// Address returns the redeemer contract address.
func (r *Redeemer) Address() common.Address { return r.addr }

// Redeemable returns the raw token amount received for vusdAmount of the
// stablecoin, net of the redeem fee. Always the two-argument overload; the
// bound ABI does not carry the single-argument one.
func (r *Redeemer) Redeemable(ctx context.Context, token common.Address, vusdAmount *big.Int) (*big.Int, error) {
	var out []interface{}
	if err := r.contract.Call(r.client.callOpts(ctx), &out, "redeemable", token, vusdAmount); err != nil {
		return nil, errors.Wrap(err, "redeemable")
	}
	return out[0].(*big.Int), nil
}

// RedeemFee returns the current redeem fee in basis-point-like units.
func (r *Redeemer) RedeemFee(ctx context.Context) (*big.Int, error) {
	var out []interface{}
	if err := r.contract.Call(r.client.callOpts(ctx), &out, "redeemFee"); err != nil {
		return nil, errors.Wrap(err, "redeemFee")
	}
	return out[0].(*big.Int), nil
}

// Redeem submits a redeem transaction.
func (r *Redeemer) Redeem(ctx context.Context, token common.Address, vusdAmount *big.Int) (*types.Transaction, error) {
	opts, err := r.client.txOpts(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := r.contract.Transact(opts, "redeem", token, vusdAmount)
	if err != nil {
		return nil, errors.Wrap(err, "redeem")
	}
	return tx, nil
}
