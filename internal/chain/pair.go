package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// LiquidityPool reads a two-asset AMM pair contract whose share token the
// treasury holds.
type LiquidityPool struct {
	addr     common.Address
	contract *bind.BoundContract
	client   *Client
}

// LiquidityPool binds the pair contract at addr.
func (c *Client) LiquidityPool(addr common.Address) *LiquidityPool {
	return &LiquidityPool{addr: addr, contract: c.bound(addr, pairABI), client: c}
}

// Address returns the pair contract address.
func (p *LiquidityPool) Address() common.Address { return p.addr }

// GetReserves returns the two raw reserve amounts.
func (p *LiquidityPool) GetReserves(ctx context.Context) (*big.Int, *big.Int, error) {
	var out []interface{}
	if err := p.contract.Call(p.client.callOpts(ctx), &out, "getReserves"); err != nil {
		return nil, nil, errors.Wrap(err, "getReserves")
	}
	return out[0].(*big.Int), out[1].(*big.Int), nil
}

// Token0 returns the first pool token address.
func (p *LiquidityPool) Token0(ctx context.Context) (common.Address, error) {
	var out []interface{}
	if err := p.contract.Call(p.client.callOpts(ctx), &out, "token0"); err != nil {
		return common.Address{}, errors.Wrap(err, "token0")
	}
	return out[0].(common.Address), nil
}

// Token1 returns the second pool token address.
func (p *LiquidityPool) Token1(ctx context.Context) (common.Address, error) {
	var out []interface{}
	if err := p.contract.Call(p.client.callOpts(ctx), &out, "token1"); err != nil {
		return common.Address{}, errors.Wrap(err, "token1")
	}
	return out[0].(common.Address), nil
}

// TotalSupply returns the raw share token supply.
func (p *LiquidityPool) TotalSupply(ctx context.Context) (*big.Int, error) {
	var out []interface{}
	if err := p.contract.Call(p.client.callOpts(ctx), &out, "totalSupply"); err != nil {
		return nil, errors.Wrap(err, "totalSupply")
	}
	return out[0].(*big.Int), nil
}

// StakedEtherRate returns a share-to-pooled-ETH conversion function for a
// liquid staking receipt token exposing getPooledEthByShares.
func (c *Client) StakedEtherRate(addr common.Address) func(ctx context.Context, shares *big.Int) (*big.Int, error) {
	contract := c.bound(addr, stakedEtherABI)
	return func(ctx context.Context, shares *big.Int) (*big.Int, error) {
		var out []interface{}
		if err := contract.Call(c.callOpts(ctx), &out, "getPooledEthByShares", shares); err != nil {
			return nil, errors.Wrap(err, "getPooledEthByShares")
		}
		return out[0].(*big.Int), nil
	}
}
