package provider

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocklens/internal/contracts"
	"stocklens/pkg/logger"
)

// stubProvider scripts Fetch responses for decorator tests.
type stubProvider struct {
	name  string
	bars  []contracts.RawBar
	meta  Metadata
	err   error
	calls int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Fetch(ctx context.Context, symbol, marketID string, from, to time.Time) ([]contracts.RawBar, Metadata, error) {
	s.calls++
	if s.err != nil {
		return nil, Metadata{}, s.err
	}
	return s.bars, s.meta, nil
}

func TestCachingProviderPassThroughWithoutLayers(t *testing.T) {
	inner := &stubProvider{
		name: "rest",
		bars: []contracts.RawBar{{Close: 324, Volume: 1000, Timestamp: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)}},
		meta: Metadata{Source: "rest"},
	}
	p := NewCachingProvider(inner, nil, nil, logger.Nop())

	assert.Equal(t, "rest+cache", p.Name())

	bars, meta, err := p.Fetch(context.Background(), "00700", "HK",
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Len(t, bars, 1)
	assert.Equal(t, "rest", meta.Source)
	assert.Equal(t, 1, inner.calls)
}

func TestCachingProviderSurfacesUnavailableWithoutStore(t *testing.T) {
	inner := &stubProvider{
		name: "rest",
		err:  fmt.Errorf("%w: 00700: connection refused", ErrUnavailable),
	}
	p := NewCachingProvider(inner, nil, nil, logger.Nop())

	_, _, err := p.Fetch(context.Background(), "00700", "HK",
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestCachingProviderPassesNonSourceErrors(t *testing.T) {
	inner := &stubProvider{
		name: "rest",
		err:  context.DeadlineExceeded,
	}
	p := NewCachingProvider(inner, nil, nil, logger.Nop())

	_, _, err := p.Fetch(context.Background(), "00700", "HK",
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, ErrUnavailable)
}
