package provider

import (
	"context"
	"fmt"
	"time"

	"stocklens/internal/contracts"
)

// ErrUnavailable marks a data-source failure. It surfaces as a per-symbol
// DataSourceError on the pipeline result, never as a fatal process error.
var ErrUnavailable = fmt.Errorf("data source unavailable")

// Metadata describes one fetched bar sequence.
type Metadata struct {
	Source      string    `json:"source"`
	Currency    string    `json:"currency"`
	LastUpdated time.Time `json:"last_updated"`
}

// BarProvider is the input boundary of the pipeline: for a normalized
// symbol and market id it returns the ordered raw bars of the requested
// range plus metadata. Implementations wrap REST endpoints, HTML scrapes,
// local CSV snapshots, or a caching layer over any of those.
type BarProvider interface {
	// Name identifies the provider in logs and metadata.
	Name() string

	// Fetch returns the raw daily bars for [from, to]. Any transport or
	// parse failure wraps ErrUnavailable.
	Fetch(ctx context.Context, symbol, marketID string, from, to time.Time) ([]contracts.RawBar, Metadata, error)
}
