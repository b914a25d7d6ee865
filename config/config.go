// Package config loads station configuration from a YAML file or falls back
// to the built-in Ethereum mainnet defaults.
package config

import (
	"flag"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/vusdhub/vusd-station/internal/domain"
)

// Contracts holds the protocol contract addresses.
type Contracts struct {
	VUSD     common.Address
	Treasury common.Address
	Minter   common.Address
	Redeemer common.Address
}

// AssetEntry is one configured asset: a swap counterpart or a tier-2
// treasury holding.
type AssetEntry struct {
	Symbol   string
	Address  common.Address
	Decimals uint8
	Class    domain.AssetClass
	// HasExchangeRate marks staked-ether receipts exposing a
	// share-to-pooled-ETH lookup.
	HasExchangeRate bool
	// PriceHint placeholder per-unit USD price for generic tokens.
	PriceHint decimal.Decimal
}

// Config is the full typed station configuration.
type Config struct {
	RPCURL        string
	WalletKeyEnv  string
	PriceSource   string
	DefaultETH    decimal.Decimal
	FeeDenom      int64
	ReportTTL     time.Duration
	BalanceTTL    time.Duration
	Debounce      time.Duration
	ApprovalEvery time.Duration
	RefreshEvery  time.Duration
	WALDir        string
	ListenAddr    string
	TLSDomain     string
	Contracts     Contracts
	Counterparts  []AssetEntry
	Tier2         []AssetEntry
}

// AssetTmp is the YAML shape of one asset entry.
type AssetTmp struct {
	Symbol          string `yaml:"symbol"`
	Address         string `yaml:"address"`
	Decimals        uint8  `yaml:"decimals"`
	Class           string `yaml:"class"`
	HasExchangeRate bool   `yaml:"has_exchange_rate,omitempty"`
	PriceHint       string `yaml:"price_hint,omitempty"`
}

// ConfigTmp is the raw YAML shape of the config file. The setup wizard
// marshals it back out when generating a fresh config.
type ConfigTmp struct {
	RPCURL        string        `yaml:"rpc_url"`
	WalletKeyEnv  string        `yaml:"wallet_key_env,omitempty"`
	PriceSource   string        `yaml:"price_source,omitempty"`
	DefaultETH    string        `yaml:"default_eth_price,omitempty"`
	FeeDenom      int64         `yaml:"fee_denominator,omitempty"`
	ReportTTL     time.Duration `yaml:"report_cache_ttl,omitempty"`
	BalanceTTL    time.Duration `yaml:"balance_cache_ttl,omitempty"`
	Debounce      time.Duration `yaml:"estimate_debounce,omitempty"`
	ApprovalEvery time.Duration `yaml:"approval_check_interval,omitempty"`
	RefreshEvery  time.Duration `yaml:"refresh_interval,omitempty"`
	WALDir        string        `yaml:"wal_dir,omitempty"`
	ListenAddr    string        `yaml:"listen_addr,omitempty"`
	TLSDomain     string        `yaml:"tls_domain,omitempty"`
	Contracts     struct {
		VUSD     string `yaml:"vusd"`
		Treasury string `yaml:"treasury"`
		Minter   string `yaml:"minter"`
		Redeemer string `yaml:"redeemer"`
	} `yaml:"contracts"`
	Counterparts []AssetTmp `yaml:"counterparts"`
	Tier2        []AssetTmp `yaml:"tier2_assets"`
}

// Get parses the --config flag and loads the YAML file it points at, or
// returns mainnet defaults when no flag is given.
func Get() (Config, error) {
	path := flag.String("config", "", "path to yaml config")
	rpc := flag.String("rpc", "", "rpc endpoint override")
	flag.Parse()

	cfg := Default()
	if *path != "" {
		loaded, err := FromFile(*path)
		if err != nil {
			return Config{}, err
		}
		cfg = loaded
	}
	if *rpc != "" {
		cfg.RPCURL = *rpc
	}

	return cfg, cfg.Validate()
}

// FromFile loads and validates a YAML config file.
func FromFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "read config file")
	}

	var tmp ConfigTmp
	if err := yaml.Unmarshal(raw, &tmp); err != nil {
		return Config{}, errors.Wrap(err, "parse config file")
	}

	cfg := Default()
	if tmp.RPCURL != "" {
		cfg.RPCURL = tmp.RPCURL
	}
	if tmp.WalletKeyEnv != "" {
		cfg.WalletKeyEnv = tmp.WalletKeyEnv
	}
	if tmp.PriceSource != "" {
		cfg.PriceSource = tmp.PriceSource
	}
	if tmp.DefaultETH != "" {
		price, err := decimal.NewFromString(tmp.DefaultETH)
		if err != nil {
			return Config{}, errors.Wrap(err, "parse default_eth_price")
		}
		cfg.DefaultETH = price
	}
	if tmp.FeeDenom != 0 {
		cfg.FeeDenom = tmp.FeeDenom
	}
	if tmp.ReportTTL != 0 {
		cfg.ReportTTL = tmp.ReportTTL
	}
	if tmp.BalanceTTL != 0 {
		cfg.BalanceTTL = tmp.BalanceTTL
	}
	if tmp.Debounce != 0 {
		cfg.Debounce = tmp.Debounce
	}
	if tmp.ApprovalEvery != 0 {
		cfg.ApprovalEvery = tmp.ApprovalEvery
	}
	if tmp.RefreshEvery != 0 {
		cfg.RefreshEvery = tmp.RefreshEvery
	}
	if tmp.WALDir != "" {
		cfg.WALDir = tmp.WALDir
	}
	if tmp.ListenAddr != "" {
		cfg.ListenAddr = tmp.ListenAddr
	}
	if tmp.TLSDomain != "" {
		cfg.TLSDomain = tmp.TLSDomain
	}

	if tmp.Contracts.VUSD != "" {
		cfg.Contracts = Contracts{
			VUSD:     common.HexToAddress(tmp.Contracts.VUSD),
			Treasury: common.HexToAddress(tmp.Contracts.Treasury),
			Minter:   common.HexToAddress(tmp.Contracts.Minter),
			Redeemer: common.HexToAddress(tmp.Contracts.Redeemer),
		}
	}
	if len(tmp.Counterparts) > 0 {
		cfg.Counterparts, err = parseAssets(tmp.Counterparts)
		if err != nil {
			return Config{}, err
		}
	}
	if len(tmp.Tier2) > 0 {
		cfg.Tier2, err = parseAssets(tmp.Tier2)
		if err != nil {
			return Config{}, err
		}
	}

	return cfg, cfg.Validate()
}

func parseAssets(entries []AssetTmp) ([]AssetEntry, error) {
	assets := make([]AssetEntry, 0, len(entries))
	for _, e := range entries {
		class := domain.AssetClass(e.Class)
		if e.Class == "" {
			class = domain.ClassStablecoin
		}
		if !class.Valid() {
			return nil, errors.Errorf("asset %q has unknown class %q", e.Symbol, e.Class)
		}

		hint := decimal.Zero
		if e.PriceHint != "" {
			parsed, err := decimal.NewFromString(e.PriceHint)
			if err != nil {
				return nil, errors.Wrapf(err, "asset %q price hint", e.Symbol)
			}
			hint = parsed
		}

		assets = append(assets, AssetEntry{
			Symbol:          e.Symbol,
			Address:         common.HexToAddress(e.Address),
			Decimals:        e.Decimals,
			Class:           class,
			HasExchangeRate: e.HasExchangeRate,
			PriceHint:       hint,
		})
	}
	return assets, nil
}

// Validate checks that every load-bearing address and parameter is present.
// A failure here is an initialization error: the caller should surface a
// degraded state instead of proceeding.
func (c Config) Validate() error {
	if c.RPCURL == "" {
		return errors.New("rpc_url is required")
	}
	if c.FeeDenom <= 0 {
		return errors.New("fee_denominator must be positive")
	}
	zero := common.Address{}
	for name, addr := range map[string]common.Address{
		"vusd":     c.Contracts.VUSD,
		"treasury": c.Contracts.Treasury,
		"minter":   c.Contracts.Minter,
		"redeemer": c.Contracts.Redeemer,
	} {
		if addr == zero {
			return errors.Errorf("contract address %q is required", name)
		}
	}
	if len(c.Counterparts) == 0 {
		return errors.New("at least one counterpart token is required")
	}
	return nil
}

// WalletKey reads the hot key from the configured environment variable.
// Empty means the station runs read-only.
func (c Config) WalletKey() string {
	if c.WalletKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.WalletKeyEnv)
}

// StableAsset returns the protocol stablecoin as a registry asset.
func (c Config) StableAsset() domain.Asset {
	return domain.Asset{
		Symbol:   "VUSD",
		Address:  c.Contracts.VUSD,
		Decimals: 18,
		Class:    domain.ClassStablecoin,
	}
}

// Default returns the Ethereum mainnet configuration.
func Default() Config {
	return Config{
		RPCURL:        "https://eth.llamarpc.com",
		WalletKeyEnv:  "VUSD_WALLET_KEY",
		PriceSource:   "binance",
		DefaultETH:    decimal.NewFromInt(2500),
		FeeDenom:      10000,
		ReportTTL:     5 * time.Minute,
		BalanceTTL:    time.Minute,
		Debounce:      400 * time.Millisecond,
		ApprovalEvery: 30 * time.Second,
		RefreshEvery:  10 * time.Minute,
		WALDir:        "./wal/treasury",
		ListenAddr:    ":8080",
		Contracts: Contracts{
			VUSD:     common.HexToAddress("0x677ddbd918637E5F2c79e164D402454dE7dA8619"),
			Treasury: common.HexToAddress("0xA6e0332D63BdB4934Ba5A83bc55297DCa2343F30"),
			Minter:   common.HexToAddress("0xb652Fc42E12828F3F1b3e96283b199E62EC570Db"),
			Redeemer: common.HexToAddress("0x43C1Ff00d65Ae5d91eeBbF4cDe1cd5EbBBbbc2Fb"),
		},
		Counterparts: []AssetEntry{
			{Symbol: "USDC", Address: common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"), Decimals: 6, Class: domain.ClassStablecoin},
			{Symbol: "DAI", Address: common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F"), Decimals: 18, Class: domain.ClassStablecoin},
			{Symbol: "USDT", Address: common.HexToAddress("0xdAC17F958D2ee523a2206206994597C13D831ec7"), Decimals: 6, Class: domain.ClassStablecoin},
		},
		Tier2: []AssetEntry{
			{
				Symbol:          "stETH",
				Address:         common.HexToAddress("0xae7ab96520DE3A18E5e111B5EaAb095312D7fE84"),
				Decimals:        18,
				Class:           domain.ClassStakedEther,
				HasExchangeRate: true,
			},
			{
				Symbol:   "VUSD-ETH-LP",
				Address:  common.HexToAddress("0xb90047676cC13e68632c55cB5b7cBd8A4C5A0A8E"),
				Decimals: 18,
				Class:    domain.ClassLPShare,
			},
		},
	}
}
