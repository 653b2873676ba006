package timeframe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocklens/internal/contracts"
)

func dailyBar(day string, o, h, l, c float64, vol int64) contracts.RawBar {
	ts, err := time.Parse("2006-01-02", day)
	if err != nil {
		panic(err)
	}
	return contracts.RawBar{Timestamp: ts, Open: o, High: h, Low: l, Close: c, Volume: vol}
}

func TestResampleWeekly(t *testing.T) {
	// Mon 2026-03-02 .. Wed 2026-03-04, then Mon 2026-03-09 of the next
	// ISO week.
	series := &contracts.ValidatedSeries{
		Symbol:   "00700",
		MarketID: "HK",
		Bars: []contracts.RawBar{
			dailyBar("2026-03-02", 100, 105, 99, 104, 1000),
			dailyBar("2026-03-03", 104, 110, 103, 108, 2000),
			dailyBar("2026-03-04", 108, 109, 101, 102, 1500),
			dailyBar("2026-03-09", 102, 103, 100, 101, 500),
		},
	}

	out, err := Resample(series, Weekly)
	require.NoError(t, err)
	require.Equal(t, 2, out.Len())

	first := out.Bars[0]
	assert.Equal(t, 100.0, first.Open)
	assert.Equal(t, 110.0, first.High)
	assert.Equal(t, 99.0, first.Low)
	assert.Equal(t, 102.0, first.Close)
	assert.Equal(t, int64(4500), first.Volume)
	// Bucket stamped with its last contained session.
	assert.Equal(t, "2026-03-04", first.Timestamp.Format("2006-01-02"))

	second := out.Bars[1]
	assert.Equal(t, 102.0, second.Open)
	assert.Equal(t, int64(500), second.Volume)
}

func TestResampleMonthly(t *testing.T) {
	series := &contracts.ValidatedSeries{
		Symbol:   "600519.SH",
		MarketID: "CN",
		Bars: []contracts.RawBar{
			dailyBar("2026-02-26", 100, 102, 98, 101, 1000),
			dailyBar("2026-02-27", 101, 104, 100, 103, 1200),
			dailyBar("2026-03-02", 103, 106, 102, 105, 900),
		},
	}

	out, err := Resample(series, Monthly)
	require.NoError(t, err)
	require.Equal(t, 2, out.Len())

	feb := out.Bars[0]
	assert.Equal(t, 100.0, feb.Open)
	assert.Equal(t, 104.0, feb.High)
	assert.Equal(t, 98.0, feb.Low)
	assert.Equal(t, 103.0, feb.Close)
	assert.Equal(t, int64(2200), feb.Volume)

	assert.Equal(t, "2026-03-02", out.Bars[1].Timestamp.Format("2006-01-02"))
}

func TestResampleDoesNotMutateInput(t *testing.T) {
	bars := []contracts.RawBar{
		dailyBar("2026-03-02", 100, 105, 99, 104, 1000),
		dailyBar("2026-03-03", 104, 110, 103, 108, 2000),
	}
	original := make([]contracts.RawBar, len(bars))
	copy(original, bars)

	series := &contracts.ValidatedSeries{Symbol: "00700", MarketID: "HK", Bars: bars}
	_, err := Resample(series, Weekly)
	require.NoError(t, err)
	assert.Equal(t, original, series.Bars)
}

func TestResampleRejectsUnknownTimeframe(t *testing.T) {
	series := &contracts.ValidatedSeries{Symbol: "00700", MarketID: "HK"}
	_, err := Resample(series, Timeframe("hourly"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hourly")
}

func TestResampleEmptySeries(t *testing.T) {
	series := &contracts.ValidatedSeries{Symbol: "00700", MarketID: "HK"}
	out, err := Resample(series, Monthly)
	require.NoError(t, err)
	assert.Equal(t, 0, out.Len())
}
