// Package chain wraps read and write access to the on-chain contracts the
// station talks to: the stablecoin token, the treasury, the minter, the
// redeemer and arbitrary ERC-20 / liquidity pool tokens.
package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
)

// ErrWalletNotConnected is returned by operations that need a signer when no
// private key was configured.
var ErrWalletNotConnected = errors.New("wallet not connected")

// Client is a connected RPC client with an optional hot-key signer. All
// contract wrappers hang off it.
type Client struct {
	eth     *ethclient.Client
	chainID *big.Int
	signer  *bind.TransactOpts
	account common.Address
}

// Dial connects to the RPC endpoint and, when privateKeyHex is non-empty,
// derives the signing account from it.
func Dial(ctx context.Context, rpcURL, privateKeyHex string) (*Client, error) {
	eth, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, errors.Wrap(err, "dial rpc endpoint")
	}

	chainID, err := eth.ChainID(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "read chain id")
	}

	c := &Client{eth: eth, chainID: chainID}
	if privateKeyHex == "" {
		return c, nil
	}

	key := privateKeyHex
	if len(key) >= 2 && (key[:2] == "0x" || key[:2] == "0X") {
		key = key[2:]
	}
	privateKey, err := crypto.HexToECDSA(key)
	if err != nil {
		return nil, errors.Wrap(err, "parse wallet key")
	}

	signer, err := bind.NewKeyedTransactorWithChainID(privateKey, chainID)
	if err != nil {
		return nil, errors.Wrap(err, "build transactor")
	}

	c.signer = signer
	c.account = crypto.PubkeyToAddress(privateKey.PublicKey)
	return c, nil
}

// Connected reports whether a signing account is configured.
func (c *Client) Connected() bool {
	return c != nil && c.signer != nil
}

// Account returns the connected account address.
func (c *Client) Account() (common.Address, error) {
	if !c.Connected() {
		return common.Address{}, ErrWalletNotConnected
	}
	return c.account, nil
}

// WaitMined blocks until the transaction is mined and returns an error when
// it reverted on-chain.
func (c *Client) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	receipt, err := bind.WaitMined(ctx, c.eth, tx)
	if err != nil {
		return nil, errors.Wrap(err, "wait for transaction")
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, errors.Errorf("transaction %s reverted", tx.Hash().Hex())
	}
	return receipt, nil
}

// Close releases the underlying RPC connection.
func (c *Client) Close() {
	if c != nil && c.eth != nil {
		c.eth.Close()
	}
}

func (c *Client) callOpts(ctx context.Context) *bind.CallOpts {
	return &bind.CallOpts{Context: ctx}
}

func (c *Client) txOpts(ctx context.Context) (*bind.TransactOpts, error) {
	if !c.Connected() {
		return nil, ErrWalletNotConnected
	}
	opts := *c.signer
	opts.Context = ctx
	return &opts, nil
}

func (c *Client) bound(addr common.Address, parsed abi.ABI) *bind.BoundContract {
	return bind.NewBoundContract(addr, parsed, c.eth, c.eth, c.eth)
}
