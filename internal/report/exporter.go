package report

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"stocklens/internal/contracts"
	"stocklens/pkg/logger"
)

// Exporter serializes batch results to flat files in the output
// directory: a JSON bundle, one indicator CSV per symbol, and a Markdown
// batch summary.
type Exporter struct {
	outDir string
	logger *logger.Logger
	now    func() time.Time // Injectable clock for deterministic output
}

// NewExporter creates a new exporter rooted at outDir.
func NewExporter(outDir string, log *logger.Logger) *Exporter {
	return &Exporter{
		outDir: outDir,
		logger: log.WithComponent("report"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (e *Exporter) WithClock(now func() time.Time) *Exporter {
	e.now = now
	return e
}

// Export writes every artifact for one batch and returns the created
// file paths.
func (e *Exporter) Export(batch *contracts.BatchResult) ([]string, error) {
	runDir := filepath.Join(e.outDir, batch.RunID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	var paths []string

	jsonPath := filepath.Join(runDir, "batch.json")
	if err := e.writeJSON(jsonPath, batch); err != nil {
		return nil, err
	}
	paths = append(paths, jsonPath)

	for i := range batch.Results {
		res := &batch.Results[i]
		if !res.Succeeded() {
			continue
		}
		csvPath := filepath.Join(runDir, res.Symbol+"_indicators.csv")
		if err := e.writeFile(csvPath, RenderCSV(res)); err != nil {
			return nil, err
		}
		paths = append(paths, csvPath)
	}

	mdPath := filepath.Join(runDir, "summary.md")
	if err := e.writeFile(mdPath, RenderMarkdown(batch, e.now())); err != nil {
		return nil, err
	}
	paths = append(paths, mdPath)

	e.logger.WithFields(map[string]interface{}{
		"run_id": batch.RunID,
		"files":  len(paths),
		"dir":    runDir,
	}).Info("Batch exported")

	return paths, nil
}

func (e *Exporter) writeJSON(path string, batch *contracts.BatchResult) error {
	data, err := json.MarshalIndent(roundedBundle(batch), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal batch: %w", err)
	}
	return e.writeFile(path, string(data)+"\n")
}

func (e *Exporter) writeFile(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// roundedBundle rewrites the batch with values rounded to 6 decimals so
// the JSON output is stable across platforms.
func roundedBundle(batch *contracts.BatchResult) *contracts.BatchResult {
	out := *batch
	out.Results = make([]contracts.SymbolResult, len(batch.Results))
	for i, res := range batch.Results {
		if res.Indicators != nil {
			rounded := make(map[string]*contracts.IndicatorSeries, len(res.Indicators))
			for name, series := range res.Indicators {
				s := *series
				s.Points = make([]contracts.IndicatorPoint, len(series.Points))
				for j, p := range series.Points {
					p.Value = round6(p.Value)
					s.Points[j] = p
				}
				rounded[name] = &s
			}
			res.Indicators = rounded
		}
		if res.CapitalFlow != nil {
			flow := *res.CapitalFlow
			flow.Points = make([]contracts.FlowPoint, len(res.CapitalFlow.Points))
			for j, p := range res.CapitalFlow.Points {
				p.NetInflow = round6(p.NetInflow)
				flow.Points[j] = p
			}
			flow.Metrics.NetInflowRatio = round6(flow.Metrics.NetInflowRatio)
			flow.Metrics.FlowMomentum = round6(flow.Metrics.FlowMomentum)
			flow.Metrics.FlowDivergence = round6(flow.Metrics.FlowDivergence)
			flow.Metrics.ConcentrationIndex = round6(flow.Metrics.ConcentrationIndex)
			flow.Metrics.SentimentScore = round6(flow.Metrics.SentimentScore)
			flow.Metrics.AdjustedSentiment = round6(flow.Metrics.AdjustedSentiment)
			res.CapitalFlow = &flow
		}
		out.Results[i] = res
	}
	return &out
}

func round6(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return math.Round(v*1e6) / 1e6
}

// sortedIndicatorNames returns the indicator names of a result in stable
// alphabetical order.
func sortedIndicatorNames(indicators map[string]*contracts.IndicatorSeries) []string {
	names := make([]string, 0, len(indicators))
	for name := range indicators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
