package store

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocklens/internal/contracts"
)

func testStore(t *testing.T) *BarStore {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping database test in short mode")
	}
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}

	pool, err := pgxpool.New(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	s := NewBarStore(pool)
	require.NoError(t, s.EnsureSchema(context.Background()))
	return s
}

func testBars(n int) []contracts.RawBar {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]contracts.RawBar, n)
	for i := range bars {
		c := 100.0 + float64(i)
		bars[i] = contracts.RawBar{
			Timestamp: start.AddDate(0, 0, i),
			Open:      c - 0.5,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    1000 + int64(i),
		}
	}
	return bars
}

func TestBarStoreRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	symbol := fmt.Sprintf("T%d", time.Now().UnixNano()%1_000_000)
	bars := testBars(5)
	require.NoError(t, s.SaveBatch(ctx, "HK", symbol, bars))

	got, err := s.Range(ctx, "HK", symbol,
		bars[0].Timestamp, bars[len(bars)-1].Timestamp)
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, bars[0].Close, got[0].Close)
	assert.True(t, got[4].Timestamp.After(got[0].Timestamp))

	n, err := s.Count(ctx, "HK", symbol)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	latest, found, err := s.Latest(ctx, "HK", symbol)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, bars[4].Close, latest.Close)
}

func TestBarStoreUpsert(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	symbol := fmt.Sprintf("U%d", time.Now().UnixNano()%1_000_000)
	bar := testBars(1)[0]
	require.NoError(t, s.Save(ctx, "CN", symbol, bar))

	bar.Close = 222
	require.NoError(t, s.Save(ctx, "CN", symbol, bar))

	n, err := s.Count(ctx, "CN", symbol)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	latest, found, err := s.Latest(ctx, "CN", symbol)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 222.0, latest.Close)
}

func TestBarStoreLatestMissing(t *testing.T) {
	s := testStore(t)

	_, found, err := s.Latest(context.Background(), "HK", "NO_SUCH_SYMBOL")
	require.NoError(t, err)
	assert.False(t, found)
}
