package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"stocklens/internal/contracts"
)

// RenderMarkdown renders the batch summary as Markdown.
func RenderMarkdown(batch *contracts.BatchResult, generatedAt time.Time) string {
	var sb strings.Builder

	sb.WriteString("# Batch Summary\n\n")
	sb.WriteString(fmt.Sprintf("Run: `%s`\n\n", batch.RunID))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", generatedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Attempted: %d | Succeeded: %d | Failed: %d\n\n",
		batch.Attempted, batch.Succeeded, batch.Failed))

	// Failures
	sb.WriteString("## Failures\n\n")
	if batch.Failed > 0 {
		sb.WriteString("| Symbol | Stage | Reason | Message |\n")
		sb.WriteString("|--------|-------|--------|--------|\n")
		for _, res := range batch.Results {
			if res.Failure == nil {
				continue
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
				res.RawSymbol, res.Failure.Stage, res.Failure.Code, res.Failure.Message))
		}
	} else {
		sb.WriteString("No failures.\n")
	}
	sb.WriteString("\n")

	// Per-symbol snapshot: latest valid value of each indicator
	sb.WriteString("## Symbols\n\n")
	for _, res := range batch.Results {
		if !res.Succeeded() {
			continue
		}
		sb.WriteString(fmt.Sprintf("### %s (%s)\n\n", res.Symbol, res.MarketID))
		sb.WriteString(fmt.Sprintf("Sessions: %d", res.Series.Len()))
		if len(res.Series.Warnings) > 0 {
			sb.WriteString(fmt.Sprintf(" | Warnings: %d", len(res.Series.Warnings)))
		}
		sb.WriteString("\n\n")

		sb.WriteString("| Indicator | Latest | As Of |\n")
		sb.WriteString("|-----------|--------|-------|\n")
		for _, name := range sortedIndicatorNames(res.Indicators) {
			if p, ok := res.Indicators[name].Last(); ok {
				sb.WriteString(fmt.Sprintf("| %s | %.4f | %s |\n",
					name, p.Value, p.Timestamp.Format("2006-01-02")))
			} else {
				sb.WriteString(fmt.Sprintf("| %s | insufficient data | |\n", name))
			}
		}
		sb.WriteString("\n")

		if res.CapitalFlow != nil {
			m := res.CapitalFlow.Metrics
			sb.WriteString(fmt.Sprintf("Capital flow: ratio %.2f, momentum %.2f, sentiment %.1f (vol-adjusted %.1f), trend %s\n\n",
				m.NetInflowRatio, m.FlowMomentum, m.SentimentScore, m.AdjustedSentiment, m.Trend))
		}

		if len(res.IndicatorErrors) > 0 {
			sb.WriteString("Skipped indicators:\n\n")
			for _, name := range sortedKeys(res.IndicatorErrors) {
				sb.WriteString(fmt.Sprintf("- `%s`: %s\n", name, res.IndicatorErrors[name]))
			}
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

func sortedKeys(m map[string]string) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
