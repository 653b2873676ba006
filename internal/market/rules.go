package market

import (
	"fmt"
	"strings"
	"time"

	"stocklens/internal/contracts"
)

// Rules is the per-market rule set: the static profile plus the trading
// calendar and market-specific symbol normalization. One implementation
// exists per supported market; the calculator and validator never branch
// on market identifiers directly.
type Rules interface {
	// Profile returns the immutable market profile.
	Profile() contracts.MarketProfile

	// IsTradingDay reports whether t is a scheduled trading session.
	IsTradingDay(t time.Time) bool

	// NormalizeSymbol converts a raw symbol into the market's canonical
	// form, e.g. "700" -> "00700" for Hong Kong.
	NormalizeSymbol(raw string) (string, error)
}

// hongKong implements Rules for HKEX-listed equities.
type hongKong struct {
	profile contracts.MarketProfile
}

func newHongKong() *hongKong {
	return &hongKong{
		profile: contracts.MarketProfile{
			ID:                HK,
			Name:              "Hong Kong",
			Currency:          "HKD",
			TickSize:          0.01,
			LotSize:           500,
			AnnualTradingDays: 250,
			Timezone:          "Asia/Hong_Kong",
		},
	}
}

func (m *hongKong) Profile() contracts.MarketProfile {
	return m.profile
}

func (m *hongKong) IsTradingDay(t time.Time) bool {
	return isWeekday(t) && !isHKHoliday(t)
}

// NormalizeSymbol strips an optional .HK suffix and zero-pads numeric
// codes to 5 digits ("700" -> "00700").
func (m *hongKong) NormalizeSymbol(raw string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = strings.TrimSuffix(s, ".HK")
	s = strings.TrimSuffix(s, "HK")
	s = strings.TrimSuffix(s, ".")
	if s == "" || len(s) > 5 || !isDigits(s) {
		return "", fmt.Errorf("invalid Hong Kong symbol %q", raw)
	}
	for len(s) < 5 {
		s = "0" + s
	}
	return s, nil
}

// china implements Rules for mainland A-shares (SSE/SZSE/BSE).
type china struct {
	profile contracts.MarketProfile
}

func newChina() *china {
	return &china{
		profile: contracts.MarketProfile{
			ID:                CN,
			Name:              "China A-share",
			Currency:          "CNY",
			TickSize:          0.01,
			LotSize:           100,
			AnnualTradingDays: 240,
			Timezone:          "Asia/Shanghai",
		},
	}
}

func (m *china) Profile() contracts.MarketProfile {
	return m.profile
}

func (m *china) IsTradingDay(t time.Time) bool {
	return isWeekday(t) && !isCNHoliday(t)
}

// NormalizeSymbol keeps the 6-digit code and ensures an exchange suffix,
// inferring it from the code prefix when absent ("600519" -> "600519.SH").
func (m *china) NormalizeSymbol(raw string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))

	suffix := ""
	for _, suf := range []string{".SH", ".SZ", ".BJ"} {
		if strings.HasSuffix(s, suf) {
			suffix = suf
			s = strings.TrimSuffix(s, suf)
			break
		}
	}

	if len(s) != 6 || !isDigits(s) {
		return "", fmt.Errorf("invalid A-share symbol %q", raw)
	}

	if suffix == "" {
		suffix = inferCNExchange(s)
		if suffix == "" {
			return "", fmt.Errorf("cannot infer exchange for A-share symbol %q", raw)
		}
	}

	return s + suffix, nil
}

// inferCNExchange maps a bare 6-digit code to its exchange suffix.
// 6xx/9xx including STAR (688/689) -> Shanghai, 0xx/3xx -> Shenzhen,
// 8xx/4xx -> Beijing.
func inferCNExchange(code string) string {
	switch code[0] {
	case '6', '9':
		return ".SH"
	case '0', '3':
		return ".SZ"
	case '8', '4':
		return ".BJ"
	}
	return ""
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
