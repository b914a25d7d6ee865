package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
)

// Minter wraps the contract that mints the stablecoin against whitelisted
// tokens.
type Minter struct {
	addr     common.Address
	contract *bind.BoundContract
	client   *Client
}

// Minter binds the minter contract at addr.
func (c *Client) Minter(addr common.Address) *Minter {
	return &Minter{addr: addr, contract: c.bound(addr, minterABI), client: c}
}

// Address returns the minter contract address.
func (m *Minter) Address() common.Address { return m.addr }

// CalculateMintage returns the raw stablecoin amount minted for amountIn of
// token, net of the minting fee.
func (m *Minter) CalculateMintage(ctx context.Context, token common.Address, amountIn *big.Int) (*big.Int, error) {
	var out []interface{}
	if err := m.contract.Call(m.client.callOpts(ctx), &out, "calculateMintage", token, amountIn); err != nil {
		return nil, errors.Wrap(err, "calculateMintage")
	}
	return out[0].(*big.Int), nil
}

// MintingFee returns the current mint fee in basis-point-like units.
func (m *Minter) MintingFee(ctx context.Context) (*big.Int, error) {
	var out []interface{}
	if err := m.contract.Call(m.client.callOpts(ctx), &out, "mintingFee"); err != nil {
		return nil, errors.Wrap(err, "mintingFee")
	}
	return out[0].(*big.Int), nil
}

// Mint submits a mint transaction.
func (m *Minter) Mint(ctx context.Context, token common.Address, amountIn *big.Int) (*types.Transaction, error) {
	opts, err := m.client.txOpts(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := m.contract.Transact(opts, "mint", token, amountIn)
	if err != nil {
		return nil, errors.Wrap(err, "mint")
	}
	return tx, nil
}
