package market

import (
	"fmt"
	"strings"
)

// ErrUnrecognizedSymbolFormat is returned when no classification rule
// matches a raw symbol.
var ErrUnrecognizedSymbolFormat = fmt.Errorf("unrecognized symbol format")

// Detect classifies a raw symbol string into a market identifier and its
// normalized form. Pure string classification, no I/O.
//
// Rules, in order:
//   - explicit .HK suffix, or a purely numeric code of 1-5 digits -> HK
//   - explicit .SH/.SZ/.BJ suffix, or a 6-digit numeric code -> CN
func (r *Registry) Detect(rawSymbol string) (marketID, symbol string, err error) {
	s := strings.ToUpper(strings.TrimSpace(rawSymbol))
	if s == "" {
		return "", "", fmt.Errorf("%w: empty symbol", ErrUnrecognizedSymbolFormat)
	}

	id := classify(s)
	if id == "" {
		return "", "", fmt.Errorf("%w: %q", ErrUnrecognizedSymbolFormat, rawSymbol)
	}

	rules, err := r.Lookup(id)
	if err != nil {
		return "", "", err
	}

	symbol, err = rules.NormalizeSymbol(s)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrUnrecognizedSymbolFormat, err)
	}
	return id, symbol, nil
}

// classify applies the pattern rules without normalizing.
func classify(s string) string {
	if strings.HasSuffix(s, ".HK") {
		return HK
	}
	for _, suf := range []string{".SH", ".SZ", ".BJ"} {
		if strings.HasSuffix(s, suf) {
			return CN
		}
	}
	if isDigits(s) {
		switch {
		case len(s) <= 5:
			return HK
		case len(s) == 6:
			return CN
		}
	}
	return ""
}
