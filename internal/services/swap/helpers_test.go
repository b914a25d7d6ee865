package swap

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"

	"github.com/vusdhub/vusd-station/internal/domain"
)

var (
	vusdAddr     = common.HexToAddress("0x677ddbd918637E5F2c79e164D402454dE7dA8619")
	usdcAddr     = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	daiAddr      = common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F")
	minterAddr   = common.HexToAddress("0x1111111111111111111111111111111111111111")
	redeemerAddr = common.HexToAddress("0x2222222222222222222222222222222222222222")
	accountAddr  = common.HexToAddress("0x3333333333333333333333333333333333333333")
)

func testRegistry() *domain.Registry {
	registry, err := domain.NewRegistry(
		domain.Asset{Symbol: "VUSD", Address: vusdAddr, Decimals: 18, Class: domain.ClassStablecoin},
		[]domain.Asset{
			{Symbol: "USDC", Address: usdcAddr, Decimals: 6, Class: domain.ClassStablecoin},
			{Symbol: "DAI", Address: daiAddr, Decimals: 18, Class: domain.ClassStablecoin},
		},
	)
	if err != nil {
		panic(err)
	}
	return registry
}

func units(n int64, decimals int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(decimals), nil))
}

func dummyTx() *types.Transaction {
	return types.NewTx(&types.LegacyTx{Nonce: 1, Gas: 21000, GasPrice: big.NewInt(1), Value: big.NewInt(0)})
}

// callLog records the order of contract interactions across fakes.
type callLog struct {
	calls []string
}

func (l *callLog) record(name string) {
	l.calls = append(l.calls, name)
}

type fakeMinter struct {
	log        *callLog
	mintage    *big.Int
	fee        *big.Int
	mintageErr error
	mintErr    error
}

func (m *fakeMinter) Address() common.Address { return minterAddr }

func (m *fakeMinter) CalculateMintage(_ context.Context, _ common.Address, _ *big.Int) (*big.Int, error) {
	if m.log != nil {
		m.log.record("calculateMintage")
	}
	return m.mintage, m.mintageErr
}

func (m *fakeMinter) MintingFee(context.Context) (*big.Int, error) {
	return m.fee, nil
}

func (m *fakeMinter) Mint(_ context.Context, _ common.Address, _ *big.Int) (*types.Transaction, error) {
	if m.log != nil {
		m.log.record("mint")
	}
	if m.mintErr != nil {
		return nil, m.mintErr
	}
	return dummyTx(), nil
}

type fakeRedeemer struct {
	log        *callLog
	redeemable *big.Int
	fee        *big.Int
	viewErr    error
	redeemErr  error
}

func (r *fakeRedeemer) Address() common.Address { return redeemerAddr }

func (r *fakeRedeemer) Redeemable(_ context.Context, _ common.Address, _ *big.Int) (*big.Int, error) {
	if r.log != nil {
		r.log.record("redeemable")
	}
	return r.redeemable, r.viewErr
}

func (r *fakeRedeemer) RedeemFee(context.Context) (*big.Int, error) {
	return r.fee, nil
}

func (r *fakeRedeemer) Redeem(_ context.Context, _ common.Address, _ *big.Int) (*types.Transaction, error) {
	if r.log != nil {
		r.log.record("redeem")
	}
	if r.redeemErr != nil {
		return nil, r.redeemErr
	}
	return dummyTx(), nil
}

type fakeTokenAccess struct {
	log        *callLog
	allowances map[common.Address]*big.Int
	balances   map[common.Address]*big.Int
	approveErr error
}

func (f *fakeTokenAccess) BalanceOf(_ context.Context, token, _ common.Address) (*big.Int, error) {
	if f.log != nil {
		f.log.record("balanceOf")
	}
	b, ok := f.balances[token]
	if !ok {
		return big.NewInt(0), nil
	}
	return b, nil
}

func (f *fakeTokenAccess) Allowance(_ context.Context, token, _, _ common.Address) (*big.Int, error) {
	if f.log != nil {
		f.log.record("allowance")
	}
	a, ok := f.allowances[token]
	if !ok {
		return big.NewInt(0), nil
	}
	return a, nil
}

func (f *fakeTokenAccess) Approve(_ context.Context, token, _ common.Address, amount *big.Int) (*types.Transaction, error) {
	if f.log != nil {
		f.log.record("approve")
	}
	if f.approveErr != nil {
		return nil, f.approveErr
	}
	if f.allowances == nil {
		f.allowances = make(map[common.Address]*big.Int)
	}
	f.allowances[token] = amount
	return dummyTx(), nil
}

type fakeWallet struct {
	connected bool
	mineErr   error
}

func (w *fakeWallet) Connected() bool { return w.connected }

func (w *fakeWallet) Account() (common.Address, error) {
	if !w.connected {
		return common.Address{}, errors.New("wallet not connected")
	}
	return accountAddr, nil
}

func (w *fakeWallet) WaitMined(_ context.Context, tx *types.Transaction) (*types.Receipt, error) {
	if w.mineErr != nil {
		return nil, w.mineErr
	}
	return &types.Receipt{Status: types.ReceiptStatusSuccessful, TxHash: tx.Hash()}, nil
}
