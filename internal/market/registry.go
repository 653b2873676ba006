package market

import (
	"fmt"

	"stocklens/internal/contracts"
)

// Market identifiers.
const (
	HK = "HK"
	CN = "CN"
)

// ErrUnknownMarket is returned when a market identifier is not registered.
var ErrUnknownMarket = fmt.Errorf("unknown market")

// Registry holds the rule set of every supported market. It is built once
// at process start and read-only afterwards, so lookups need no locking.
type Registry struct {
	markets map[string]Rules
}

// NewRegistry builds the registry with all supported markets.
func NewRegistry() *Registry {
	return &Registry{
		markets: map[string]Rules{
			HK: newHongKong(),
			CN: newChina(),
		},
	}
}

// Lookup resolves a market identifier to its rule set.
func (r *Registry) Lookup(marketID string) (Rules, error) {
	rules, ok := r.markets[marketID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMarket, marketID)
	}
	return rules, nil
}

// Profile is a convenience around Lookup for callers that only need the
// static profile.
func (r *Registry) Profile(marketID string) (contracts.MarketProfile, error) {
	rules, err := r.Lookup(marketID)
	if err != nil {
		return contracts.MarketProfile{}, err
	}
	return rules.Profile(), nil
}

// IDs returns the registered market identifiers in stable order.
func (r *Registry) IDs() []string {
	return []string{HK, CN}
}
