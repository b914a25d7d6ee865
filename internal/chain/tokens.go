package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
)

// Tokens reads and writes arbitrary ERC-20 contracts.
type Tokens struct {
	client *Client
}

// Tokens returns an ERC-20 accessor bound to this client.
func (c *Client) Tokens() *Tokens {
	return &Tokens{client: c}
}

// BalanceOf reads owner's raw balance of token.
func (t *Tokens) BalanceOf(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	var out []interface{}
	contract := t.client.bound(token, erc20ABI)
	if err := contract.Call(t.client.callOpts(ctx), &out, "balanceOf", owner); err != nil {
		return nil, errors.Wrapf(err, "balanceOf %s", token.Hex())
	}
	return out[0].(*big.Int), nil
}

// TotalSupply reads the token's raw total supply.
func (t *Tokens) TotalSupply(ctx context.Context, token common.Address) (*big.Int, error) {
	var out []interface{}
	contract := t.client.bound(token, erc20ABI)
	if err := contract.Call(t.client.callOpts(ctx), &out, "totalSupply"); err != nil {
		return nil, errors.Wrapf(err, "totalSupply %s", token.Hex())
	}
	return out[0].(*big.Int), nil
}

// Decimals reads the token's declared precision.
func (t *Tokens) Decimals(ctx context.Context, token common.Address) (uint8, error) {
	var out []interface{}
	contract := t.client.bound(token, erc20ABI)
	if err := contract.Call(t.client.callOpts(ctx), &out, "decimals"); err != nil {
		return 0, errors.Wrapf(err, "decimals %s", token.Hex())
	}
	return out[0].(uint8), nil
}

// Symbol reads the token's display symbol.
func (t *Tokens) Symbol(ctx context.Context, token common.Address) (string, error) {
	var out []interface{}
	contract := t.client.bound(token, erc20ABI)
	if err := contract.Call(t.client.callOpts(ctx), &out, "symbol"); err != nil {
		return "", errors.Wrapf(err, "symbol %s", token.Hex())
	}
	return out[0].(string), nil
}

// Allowance reads the raw allowance owner has granted spender on token.
func (t *Tokens) Allowance(ctx context.Context, token, owner, spender common.Address) (*big.Int, error) {
	var out []interface{}
	contract := t.client.bound(token, erc20ABI)
	if err := contract.Call(t.client.callOpts(ctx), &out, "allowance", owner, spender); err != nil {
		return nil, errors.Wrapf(err, "allowance %s", token.Hex())
	}
	return out[0].(*big.Int), nil
}

// Approve submits an approval of amount for spender on token.
func (t *Tokens) Approve(ctx context.Context, token, spender common.Address, amount *big.Int) (*types.Transaction, error) {
	opts, err := t.client.txOpts(ctx)
	if err != nil {
		return nil, err
	}
	contract := t.client.bound(token, erc20ABI)
	tx, err := contract.Transact(opts, "approve", spender, amount)
	if err != nil {
		return nil, errors.Wrapf(err, "approve %s", token.Hex())
	}
	return tx, nil
}
