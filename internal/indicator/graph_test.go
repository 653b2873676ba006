package indicator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocklens/internal/contracts"
)

func spec(name, formula string, deps ...string) contracts.IndicatorSpec {
	return contracts.IndicatorSpec{Name: name, Formula: formula, DependsOn: deps}
}

func TestTopoOrderRespectsDependencies(t *testing.T) {
	specs := []contracts.IndicatorSpec{
		spec("macd", "macd", "ema_12", "ema_26"),
		spec("ema_26", "ema"),
		spec("ema_12", "ema"),
	}

	g, err := buildGraph(specs)
	require.NoError(t, err)
	order, err := g.topoOrder()
	require.NoError(t, err)

	pos := make(map[string]int, len(order))
	for rank, idx := range order {
		pos[specs[idx].Name] = rank
	}
	assert.Less(t, pos["ema_12"], pos["macd"])
	assert.Less(t, pos["ema_26"], pos["macd"])
}

func TestTopoOrderIsDeterministic(t *testing.T) {
	specs := []contracts.IndicatorSpec{
		spec("sma_60", "sma"),
		spec("sma_5", "sma"),
		spec("sma_20", "sma"),
		spec("boll", "boll", "sma_20"),
	}

	g, err := buildGraph(specs)
	require.NoError(t, err)

	first, err := g.topoOrder()
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := g.topoOrder()
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}

	// Independent roots drain alphabetically.
	names := make([]string, len(first))
	for i, idx := range first {
		names[i] = specs[idx].Name
	}
	assert.Equal(t, []string{"sma_20", "sma_5", "sma_60", "boll"}, names)
}

func TestBuildGraphRejectsUnknownDependency(t *testing.T) {
	specs := []contracts.IndicatorSpec{
		spec("macd", "macd", "ema_12", "ema_99"),
		spec("ema_12", "ema"),
	}

	_, err := buildGraph(specs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ema_99")
}

func TestBuildGraphRejectsDuplicateNames(t *testing.T) {
	specs := []contracts.IndicatorSpec{
		spec("sma_20", "sma"),
		spec("sma_20", "sma"),
	}

	_, err := buildGraph(specs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestTopoOrderDetectsCycle(t *testing.T) {
	specs := []contracts.IndicatorSpec{
		spec("a", "sma", "b"),
		spec("b", "sma", "c"),
		spec("c", "sma", "a"),
	}

	g, err := buildGraph(specs)
	require.NoError(t, err)

	_, err = g.topoOrder()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCyclicDependency)
}
