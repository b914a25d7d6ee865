package domain

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// Registry is the static asset registry: the protocol stablecoin plus every
// supported swap counterpart token. Built once from configuration.
type Registry struct {
	stable       Asset
	counterparts []Asset
	bySymbol     map[string]Asset
	byAddress    map[common.Address]Asset
}

// NewRegistry validates and indexes the configured assets. The stablecoin
// must carry ClassStablecoin semantics on the mint path even though it is the
// protocol token, so only symbol and address are checked here.
func NewRegistry(stable Asset, counterparts []Asset) (*Registry, error) {
	if stable.Symbol == "" || stable.Address == (common.Address{}) {
		return nil, errors.New("stablecoin symbol and address are required")
	}

	r := &Registry{
		stable:       stable,
		counterparts: counterparts,
		bySymbol:     map[string]Asset{stable.Symbol: stable},
		byAddress:    map[common.Address]Asset{stable.Address: stable},
	}
	for _, a := range counterparts {
		if a.Symbol == "" || a.Address == (common.Address{}) {
			return nil, errors.Errorf("counterpart asset %q is missing symbol or address", a.Symbol)
		}
		if _, ok := r.bySymbol[a.Symbol]; ok {
			return nil, errors.Errorf("duplicate asset symbol %q", a.Symbol)
		}
		r.bySymbol[a.Symbol] = a
		r.byAddress[a.Address] = a
	}
	return r, nil
}

// Stable returns the protocol stablecoin.
func (r *Registry) Stable() Asset { return r.stable }

// Counterparts returns the supported swap counterpart tokens.
func (r *Registry) Counterparts() []Asset { return r.counterparts }

// BySymbol looks up an asset by display symbol.
func (r *Registry) BySymbol(symbol string) (Asset, bool) {
	a, ok := r.bySymbol[symbol]
	return a, ok
}

// ByAddress looks up an asset by contract address. Address comparison is
// byte-wise, so checksummed and lowercased forms resolve identically.
func (r *Registry) ByAddress(addr common.Address) (Asset, bool) {
	a, ok := r.byAddress[addr]
	return a, ok
}

// IsStable reports whether addr is the protocol stablecoin contract.
func (r *Registry) IsStable(addr common.Address) bool {
	return addr == r.stable.Address
}
