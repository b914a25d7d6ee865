package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/vusdhub/vusd-station/internal/domain"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestFromFileOverrides(t *testing.T) {
	path := writeConfig(t, `
rpc_url: "http://localhost:8545"
price_source: "bybit"
default_eth_price: "3100.50"
report_cache_ttl: 90s
estimate_debounce: 250ms
`)

	cfg, err := FromFile(path)
	require.NoError(t, err)

	require.Equal(t, "http://localhost:8545", cfg.RPCURL)
	require.Equal(t, "bybit", cfg.PriceSource)
	require.Equal(t, "3100.5", cfg.DefaultETH.String())
	require.Equal(t, 90*time.Second, cfg.ReportTTL)
	require.Equal(t, 250*time.Millisecond, cfg.Debounce)

	// untouched fields keep mainnet defaults
	require.Equal(t, int64(10000), cfg.FeeDenom)
	require.Equal(t, Default().Contracts.VUSD, cfg.Contracts.VUSD)
	require.Len(t, cfg.Counterparts, 3)
}

func TestFromFileAssets(t *testing.T) {
	path := writeConfig(t, `
rpc_url: "http://localhost:8545"
counterparts:
  - symbol: USDC
    address: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
    decimals: 6
tier2_assets:
  - symbol: rETH
    address: "0xae78736Cd615f374D3085123A210448E74Fc6393"
    decimals: 18
    class: staked_ether
    has_exchange_rate: true
  - symbol: GOV
    address: "0x1f9840a85d5aF5bf1D1762F925BDADdC4201F984"
    decimals: 18
    class: generic
    price_hint: "7.25"
`)

	cfg, err := FromFile(path)
	require.NoError(t, err)

	require.Len(t, cfg.Counterparts, 1)
	require.Equal(t, domain.ClassStablecoin, cfg.Counterparts[0].Class)

	require.Len(t, cfg.Tier2, 2)
	require.True(t, cfg.Tier2[0].HasExchangeRate)
	require.Equal(t, domain.ClassGeneric, cfg.Tier2[1].Class)
	require.Equal(t, "7.25", cfg.Tier2[1].PriceHint.String())
}

func TestFromFileUnknownClass(t *testing.T) {
	path := writeConfig(t, `
rpc_url: "http://localhost:8545"
tier2_assets:
  - symbol: WAT
    address: "0x1f9840a85d5aF5bf1D1762F925BDADdC4201F984"
    decimals: 18
    class: mystery
`)

	_, err := FromFile(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown class")
}

func TestValidateMissingContract(t *testing.T) {
	cfg := Default()
	cfg.Contracts.Minter = common.Address{}
	require.Error(t, cfg.Validate())
}

func TestValidateMissingRPC(t *testing.T) {
	cfg := Default()
	cfg.RPCURL = ""
	require.Error(t, cfg.Validate())
}

func TestValidateNoCounterparts(t *testing.T) {
	cfg := Default()
	cfg.Counterparts = nil
	require.Error(t, cfg.Validate())
}

func TestWalletKeyFromEnv(t *testing.T) {
	cfg := Default()
	cfg.WalletKeyEnv = "TEST_STATION_KEY"
	t.Setenv("TEST_STATION_KEY", "deadbeef")
	require.Equal(t, "deadbeef", cfg.WalletKey())

	cfg.WalletKeyEnv = ""
	require.Equal(t, "", cfg.WalletKey())
}
