package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stocklens/internal/contracts"
	"stocklens/pkg/logger"
)

func sampleBatch() *contracts.BatchResult {
	start := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	bars := []contracts.RawBar{
		{Timestamp: start, Open: 99, High: 101, Low: 98, Close: 100, Volume: 1000},
		{Timestamp: start.AddDate(0, 0, 1), Open: 100, High: 103, Low: 100, Close: 102, Volume: 1200},
		{Timestamp: start.AddDate(0, 0, 2), Open: 102, High: 105, Low: 101, Close: 104, Volume: 900},
	}
	series := &contracts.ValidatedSeries{Symbol: "00700", MarketID: "HK", Bars: bars}

	sma := &contracts.IndicatorSeries{
		Name:   "sma_2",
		Symbol: "00700",
		Points: []contracts.IndicatorPoint{
			{Timestamp: bars[0].Timestamp},
			{Timestamp: bars[1].Timestamp, Value: 101.0000004, Valid: true},
			{Timestamp: bars[2].Timestamp, Value: 103, Valid: true},
		},
	}

	return &contracts.BatchResult{
		RunID:     "run-42",
		StartedAt: start,
		Attempted: 2,
		Succeeded: 1,
		Failed:    1,
		Results: []contracts.SymbolResult{
			{
				RawSymbol:  "700",
				Symbol:     "00700",
				MarketID:   "HK",
				Stage:      contracts.StageDone,
				Series:     series,
				Indicators: map[string]*contracts.IndicatorSeries{"sma_2": sma},
				CapitalFlow: &contracts.CapitalFlowRecord{
					Symbol: "00700",
					Points: []contracts.FlowPoint{
						{Timestamp: bars[0].Timestamp, Direction: contracts.FlowNeutral},
						{Timestamp: bars[1].Timestamp, Direction: contracts.FlowInflow, NetInflow: 122400},
						{Timestamp: bars[2].Timestamp, Direction: contracts.FlowInflow, NetInflow: 93000},
					},
					Metrics: contracts.FlowMetrics{NetInflowRatio: 100, Trend: contracts.TrendStable, SentimentScore: 85, AdjustedSentiment: 67.5},
				},
			},
			{
				RawSymbol: "BAD",
				Stage:     contracts.StageFailed,
				Failure: contracts.NewPipelineError(
					contracts.ReasonSymbolClassification,
					contracts.StageDetecting,
					"BAD", "unrecognized symbol format", nil),
			},
		},
	}
}

func TestExportWritesAllArtifacts(t *testing.T) {
	dir := t.TempDir()
	clock := func() time.Time { return time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC) }
	exp := NewExporter(dir, logger.Nop()).WithClock(clock)

	paths, err := exp.Export(sampleBatch())
	require.NoError(t, err)

	runDir := filepath.Join(dir, "run-42")
	want := []string{
		filepath.Join(runDir, "batch.json"),
		filepath.Join(runDir, "00700_indicators.csv"),
		filepath.Join(runDir, "summary.md"),
	}
	assert.Equal(t, want, paths)
	for _, p := range want {
		_, err := os.Stat(p)
		assert.NoError(t, err, p)
	}
}

func TestExportJSONRoundsValues(t *testing.T) {
	dir := t.TempDir()
	exp := NewExporter(dir, logger.Nop())

	_, err := exp.Export(sampleBatch())
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "run-42", "batch.json"))
	require.NoError(t, err)

	var decoded contracts.BatchResult
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "run-42", decoded.RunID)

	res := decoded.ResultFor("700")
	require.NotNil(t, res)
	// 101.0000004 rounds away at 6 decimals.
	assert.Equal(t, 101.0, res.Indicators["sma_2"].Points[1].Value)
}

func TestExportDoesNotMutateBatch(t *testing.T) {
	dir := t.TempDir()
	exp := NewExporter(dir, logger.Nop())

	batch := sampleBatch()
	_, err := exp.Export(batch)
	require.NoError(t, err)

	assert.Equal(t, 101.0000004, batch.Results[0].Indicators["sma_2"].Points[1].Value)
}

func TestRenderCSVLayout(t *testing.T) {
	batch := sampleBatch()
	out := RenderCSV(&batch.Results[0])

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "date,close,sma_2", lines[0])
	// Invalid first point renders as an empty cell.
	assert.Equal(t, "2026-03-02,100.000000,", lines[1])
	assert.Equal(t, "2026-03-03,102.000000,101.000000", lines[2])
}

func TestRenderMarkdownSummary(t *testing.T) {
	batch := sampleBatch()
	generated := time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)

	out := RenderMarkdown(batch, generated)

	assert.Contains(t, out, "Run: `run-42`")
	assert.Contains(t, out, "Generated: 2026-03-05T12:00:00Z")
	assert.Contains(t, out, "Attempted: 2 | Succeeded: 1 | Failed: 1")
	assert.Contains(t, out, "| BAD | DETECTING | SYMBOL_CLASSIFICATION_ERROR | unrecognized symbol format |")
	assert.Contains(t, out, "### 00700 (HK)")
	assert.Contains(t, out, "| sma_2 | 103.0000 | 2026-03-04 |")
	assert.Contains(t, out, "sentiment 85.0 (vol-adjusted 67.5)")
	assert.Contains(t, out, "trend stable")
}

func TestRenderMarkdownNoFailures(t *testing.T) {
	batch := sampleBatch()
	batch.Failed = 0
	batch.Results = batch.Results[:1]

	out := RenderMarkdown(batch, time.Now().UTC())
	assert.Contains(t, out, "No failures.")
}
