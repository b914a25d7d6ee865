package setup

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/vusdhub/vusd-station/config"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

// RunTUI launches the terminal configuration wizard and writes
// config.gen.yaml on confirmation.
func RunTUI() error {
	var (
		rpcURL       string
		priceSource  string
		defaultETH   string
		walletKeyEnv string
		listenAddr   string
		tlsDomain    string
		walDir       string
		vusdAddr     string
		confirm      bool
	)

	// defaults
	defaults := config.Default()
	rpcURL = defaults.RPCURL
	defaultETH = defaults.DefaultETH.String()
	walletKeyEnv = defaults.WalletKeyEnv
	listenAddr = defaults.ListenAddr
	walDir = defaults.WALDir
	vusdAddr = defaults.Contracts.VUSD.Hex()

	fmt.Print("\033[H\033[2J") // Clear screen
	fmt.Println(headerStyle.Render("VUSD STATION CONFIG WIZARD"))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Point the station at a chain and pick a price source.\n"))

	fmt.Println(stepStyle.Render("STEP 1: CHAIN"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Ethereum RPC endpoint").
				Description("HTTP or WebSocket JSON-RPC URL").
				Value(&rpcURL).
				Validate(validateURL),
			huh.NewInput().
				Title("VUSD token address").
				Value(&vusdAddr).
				Validate(validateAddress),
		),
	).Run()
	if err != nil {
		return err
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("VUSD STATION CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 2: ETH PRICE SOURCE"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select price source for ETH-denominated assets").
				Options(
					huh.NewOption("Binance", "binance"),
					huh.NewOption("Bybit", "bybit"),
					huh.NewOption("Hyperliquid", "hyperliquid"),
					huh.NewOption("Static (fixed price)", "static"),
				).
				Value(&priceSource),
			huh.NewInput().
				Title("Fallback ETH price (USD)").
				Description("Used when the source is static or unreachable").
				Value(&defaultETH).
				Validate(validatePrice),
		),
	).Run()
	if err != nil {
		return err
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("VUSD STATION CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("STEP 3: WALLET & SERVING"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Wallet key environment variable").
				Description("Leave as is for read-only operation without the key set").
				Value(&walletKeyEnv),
			huh.NewInput().
				Title("Dashboard listen address").
				Value(&listenAddr),
			huh.NewInput().
				Title("TLS domain (optional)").
				Description("Enables automatic certificates when set").
				Value(&tlsDomain),
			huh.NewInput().
				Title("Report WAL directory").
				Value(&walDir),
		),
	).Run()
	if err != nil {
		return err
	}

	// confirmation
	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("VUSD STATION CONFIG WIZARD"))
	fmt.Println(stepStyle.Render("FINAL CONFIRMATION"))

	summary := fmt.Sprintf(
		"RPC: %s\nPrice source: %s\nFallback ETH price: %s\nListen: %s\nWAL dir: %s\n",
		rpcURL, priceSource, defaultETH, listenAddr, walDir,
	)
	fmt.Println(lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(1).Render(summary))

	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save Configuration?").
				Affirmative("Yes, save and start").
				Negative("No, exit").
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return err
	}

	if !confirm {
		return fmt.Errorf("setup cancelled by user")
	}

	cfgTmp := config.ConfigTmp{
		RPCURL:       rpcURL,
		WalletKeyEnv: walletKeyEnv,
		PriceSource:  priceSource,
		DefaultETH:   defaultETH,
		ListenAddr:   listenAddr,
		TLSDomain:    tlsDomain,
		WALDir:       walDir,
	}
	cfgTmp.Contracts.VUSD = vusdAddr
	cfgTmp.Contracts.Treasury = defaults.Contracts.Treasury.Hex()
	cfgTmp.Contracts.Minter = defaults.Contracts.Minter.Hex()
	cfgTmp.Contracts.Redeemer = defaults.Contracts.Redeemer.Hex()

	data, err := yaml.Marshal(cfgTmp)
	if err != nil {
		return fmt.Errorf("failed to generate yaml: %w", err)
	}

	filename := "config.gen.yaml"
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}

	fmt.Println(lipgloss.NewStyle().Foreground(special).Render(fmt.Sprintf("\n✓ Configuration saved to %s\nStarting station...", filename)))
	time.Sleep(1500 * time.Millisecond) // small pause to read success message
	return nil
}

func validateURL(s string) error {
	parsed, err := url.Parse(s)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("must be a valid URL")
	}
	return nil
}

func validateAddress(s string) error {
	if !common.IsHexAddress(s) {
		return fmt.Errorf("must be a hex address")
	}
	return nil
}

func validatePrice(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("must be a valid number")
	}
	if !d.IsPositive() {
		return fmt.Errorf("must be positive")
	}
	return nil
}
