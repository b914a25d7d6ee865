package chain

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Minimal ABI fragments for the view functions and transactions this client
// consumes. Anything the contracts expose beyond these is irrelevant here.
const (
	erc20ABIJSON = `[
		{"name":"totalSupply","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"balanceOf","type":"function","stateMutability":"view","inputs":[{"name":"account","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"decimals","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
		{"name":"symbol","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
		{"name":"allowance","type":"function","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"approve","type":"function","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]}
	]`

	treasuryABIJSON = `[
		{"name":"whitelistedTokens","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address[]"}]},
		{"name":"withdrawable","type":"function","stateMutability":"view","inputs":[{"name":"token","type":"address"}],"outputs":[{"name":"","type":"uint256"}]}
	]`

	minterABIJSON = `[
		{"name":"calculateMintage","type":"function","stateMutability":"view","inputs":[{"name":"token","type":"address"},{"name":"amountIn","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"mintingFee","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"mint","type":"function","stateMutability":"nonpayable","inputs":[{"name":"token","type":"address"},{"name":"amountIn","type":"uint256"}],"outputs":[]}
	]`

	// The redeemer also exposes a single-argument redeemable(address)
	// overload. This fragment carries only the two-argument form so the
	// two can never be confused.
	redeemerABIJSON = `[
		{"name":"redeemable","type":"function","stateMutability":"view","inputs":[{"name":"token","type":"address"},{"name":"vusdAmount","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"redeemFee","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
		{"name":"redeem","type":"function","stateMutability":"nonpayable","inputs":[{"name":"token","type":"address"},{"name":"vusdAmount","type":"uint256"}],"outputs":[]}
	]`

	pairABIJSON = `[
		{"name":"getReserves","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"reserve0","type":"uint112"},{"name":"reserve1","type":"uint112"},{"name":"blockTimestampLast","type":"uint32"}]},
		{"name":"token0","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
		{"name":"token1","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
		{"name":"totalSupply","type":"function","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]}
	]`

	stakedEtherABIJSON = `[
		{"name":"getPooledEthByShares","type":"function","stateMutability":"view","inputs":[{"name":"sharesAmount","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]}
	]`
)

var (
	erc20ABI       = mustABI(erc20ABIJSON)
	treasuryABI    = mustABI(treasuryABIJSON)
	minterABI      = mustABI(minterABIJSON)
	redeemerABI    = mustABI(redeemerABIJSON)
	pairABI        = mustABI(pairABIJSON)
	stakedEtherABI = mustABI(stakedEtherABIJSON)
)

func mustABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}
