package valuator

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	vusdAddr  = common.HexToAddress("0x677ddbd918637E5F2c79e164D402454dE7dA8619")
	usdcAddr  = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	wethAddr  = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	stethAddr = common.HexToAddress("0xae7ab96520DE3A18E5e111B5EaAb095312D7fE84")
)

type fakePool struct {
	token0, token1     common.Address
	reserve0, reserve1 *big.Int
	totalSupply        *big.Int
	err                error
}

func (p *fakePool) GetReserves(context.Context) (*big.Int, *big.Int, error) {
	return p.reserve0, p.reserve1, p.err
}
func (p *fakePool) Token0(context.Context) (common.Address, error) { return p.token0, p.err }
func (p *fakePool) Token1(context.Context) (common.Address, error) { return p.token1, p.err }
func (p *fakePool) TotalSupply(context.Context) (*big.Int, error)  { return p.totalSupply, p.err }

func newValuator() *Valuator {
	return New(vusdAddr, map[common.Address]uint8{usdcAddr: 6}, zap.NewNop())
}

func eth(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

func TestStablecoinValue_ExactDecimalScaling(t *testing.T) {
	v := newValuator()

	// 2,105,322 USDC at 6 decimals
	raw, _ := new(big.Int).SetString("2105322000000", 10)
	require.True(t, v.StablecoinValue(raw, 6).Equal(decimal.NewFromInt(2105322)))

	// 1 raw unit at 18 decimals values to exactly 10^-18 USD
	one := v.StablecoinValue(big.NewInt(1), 18)
	require.True(t, one.Equal(decimal.New(1, -18)))
}

func TestStakedEtherValue_UsesExchangeRate(t *testing.T) {
	v := newValuator()

	// 100 shares worth 110 pooled ETH, ETH at 2000 USD
	rate := func(_ context.Context, shares *big.Int) (*big.Int, error) {
		require.Equal(t, eth(100), shares)
		return eth(110), nil
	}

	value, approx := v.StakedEtherValue(context.Background(), eth(100), 18, decimal.NewFromInt(2000), rate)
	require.False(t, approx)
	require.True(t, value.Equal(decimal.NewFromInt(220000)), "got %s", value)
}

func TestStakedEtherValue_FallsBackWhenRateFails(t *testing.T) {
	v := newValuator()

	rate := func(context.Context, *big.Int) (*big.Int, error) {
		return nil, errors.New("execution reverted")
	}

	value, approx := v.StakedEtherValue(context.Background(), eth(100), 18, decimal.NewFromInt(2000), rate)
	require.True(t, approx)
	require.True(t, value.Equal(decimal.NewFromInt(200000)), "got %s", value)
}

func TestStakedEtherValue_FallsBackWhenRateMissing(t *testing.T) {
	v := newValuator()

	value, approx := v.StakedEtherValue(context.Background(), eth(50), 18, decimal.NewFromInt(1000), nil)
	require.True(t, approx)
	require.True(t, value.Equal(decimal.NewFromInt(50000)))
}

func TestLPShareValue_ExcludesStablecoinSide(t *testing.T) {
	v := newValuator()

	// VUSD/WETH pool: 300,000 VUSD against 100 WETH, ETH at 1500 USD.
	// Owning half the pool must value only the WETH side: 50 * 1500.
	pool := &fakePool{
		token0:      vusdAddr,
		token1:      wethAddr,
		reserve0:    eth(300000),
		reserve1:    eth(100),
		totalSupply: eth(10),
	}

	value, err := v.LPShareValue(context.Background(), eth(5), decimal.NewFromInt(1500), pool)
	require.NoError(t, err)
	require.True(t, value.Equal(decimal.NewFromInt(75000)), "got %s", value)
}

func TestLPShareValue_ExcludesStablecoinSideRegardlessOfOrdering(t *testing.T) {
	v := newValuator()

	pool := &fakePool{
		token0:      wethAddr,
		token1:      vusdAddr,
		reserve0:    eth(100),
		reserve1:    eth(300000),
		totalSupply: eth(10),
	}

	value, err := v.LPShareValue(context.Background(), eth(5), decimal.NewFromInt(1500), pool)
	require.NoError(t, err)
	require.True(t, value.Equal(decimal.NewFromInt(75000)), "got %s", value)
}

func TestLPShareValue_StablecoinCounterpartValuedAtPar(t *testing.T) {
	v := newValuator()

	// VUSD/USDC pool: the USDC side (6 decimals) is valued 1:1 with USD,
	// the VUSD side is excluded.
	pool := &fakePool{
		token0:      vusdAddr,
		token1:      usdcAddr,
		reserve0:    eth(200000),
		reserve1:    big.NewInt(200000_000000),
		totalSupply: eth(4),
	}

	value, err := v.LPShareValue(context.Background(), eth(1), decimal.NewFromInt(1800), pool)
	require.NoError(t, err)
	require.True(t, value.Equal(decimal.NewFromInt(50000)), "got %s", value)
}

func TestLPShareValue_NoStablecoinCountsBothSides(t *testing.T) {
	v := newValuator()

	// stETH/WETH pool, neither side is VUSD: both reserves count as
	// ETH-equivalent tokens.
	pool := &fakePool{
		token0:      stethAddr,
		token1:      wethAddr,
		reserve0:    eth(10),
		reserve1:    eth(10),
		totalSupply: eth(10),
	}

	value, err := v.LPShareValue(context.Background(), eth(1), decimal.NewFromInt(2000), pool)
	require.NoError(t, err)
	require.True(t, value.Equal(decimal.NewFromInt(4000)), "got %s", value)
}

func TestLPShareValue_LargeSupplyPrecision(t *testing.T) {
	v := newValuator()

	// Supply far beyond float64 safe-integer range; owning exactly one
	// billionth of the pool must still come out exact.
	supply, _ := new(big.Int).SetString("1000000000000000000000000000", 10)
	share, _ := new(big.Int).SetString("1000000000000000000", 10)

	pool := &fakePool{
		token0:      wethAddr,
		token1:      vusdAddr,
		reserve0:    eth(1000000000),
		reserve1:    eth(1),
		totalSupply: supply,
	}

	value, err := v.LPShareValue(context.Background(), share, decimal.NewFromInt(2000), pool)
	require.NoError(t, err)
	require.True(t, value.Equal(decimal.NewFromInt(2000)), "got %s", value)
}

func TestLPShareValue_ZeroSupply(t *testing.T) {
	v := newValuator()

	pool := &fakePool{
		token0:      vusdAddr,
		token1:      wethAddr,
		reserve0:    big.NewInt(0),
		reserve1:    big.NewInt(0),
		totalSupply: big.NewInt(0),
	}

	value, err := v.LPShareValue(context.Background(), eth(1), decimal.NewFromInt(2000), pool)
	require.NoError(t, err)
	require.True(t, value.IsZero())
}

func TestLPShareValue_PoolReadFailure(t *testing.T) {
	v := newValuator()

	pool := &fakePool{err: errors.New("execution reverted")}

	_, err := v.LPShareValue(context.Background(), eth(1), decimal.NewFromInt(2000), pool)
	require.Error(t, err)
}

func TestGenericTokenValue_AlwaysApproximate(t *testing.T) {
	v := newValuator()

	value, approx := v.GenericTokenValue(eth(10), 18, decimal.NewFromInt(3))
	require.True(t, approx)
	require.True(t, value.Equal(decimal.NewFromInt(30)))
}
