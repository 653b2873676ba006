package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTradingDay(t *testing.T) {
	registry := NewRegistry()
	hk, err := registry.Lookup(HK)
	require.NoError(t, err)
	cn, err := registry.Lookup(CN)
	require.NoError(t, err)

	tests := []struct {
		name   string
		date   time.Time
		wantHK bool
		wantCN bool
	}{
		{"ordinary monday", time.Date(2026, 3, 2, 0, 0, 0, 0, HKT), true, true},
		{"saturday", time.Date(2026, 3, 7, 0, 0, 0, 0, HKT), false, false},
		{"sunday", time.Date(2026, 3, 8, 0, 0, 0, 0, HKT), false, false},
		{"new year both closed", time.Date(2026, 1, 1, 0, 0, 0, 0, HKT), false, false},
		{"lunar new year both closed", time.Date(2026, 2, 17, 0, 0, 0, 0, HKT), false, false},
		{"good friday hk only", time.Date(2026, 4, 3, 0, 0, 0, 0, HKT), false, true},
		{"spring festival tail cn only", time.Date(2026, 2, 20, 0, 0, 0, 0, HKT), true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantHK, hk.IsTradingDay(tt.date), "HK")
			assert.Equal(t, tt.wantCN, cn.IsTradingDay(tt.date), "CN")
		})
	}
}

func TestIsTradingDayTimezoneConversion(t *testing.T) {
	registry := NewRegistry()
	hk, err := registry.Lookup(HK)
	require.NoError(t, err)

	// 2026-01-01 18:00 UTC is already Jan 2 in Hong Kong.
	utcEvening := time.Date(2026, 1, 1, 18, 0, 0, 0, time.UTC)
	assert.True(t, hk.IsTradingDay(utcEvening))
}
