package report

import (
	"fmt"
	"strings"

	"stocklens/internal/contracts"
)

// RenderCSV renders one symbol's indicator series as CSV: one row per
// session with the close price and every indicator as a column. Invalid
// points render as empty cells.
func RenderCSV(res *contracts.SymbolResult) string {
	var sb strings.Builder

	names := sortedIndicatorNames(res.Indicators)

	sb.WriteString("date,close")
	for _, name := range names {
		sb.WriteString(",")
		sb.WriteString(name)
	}
	sb.WriteString("\n")

	if res.Series == nil {
		return sb.String()
	}

	for i, bar := range res.Series.Bars {
		sb.WriteString(bar.Timestamp.Format("2006-01-02"))
		sb.WriteString(fmt.Sprintf(",%.6f", bar.Close))
		for _, name := range names {
			series := res.Indicators[name]
			if i < len(series.Points) && series.Points[i].Valid {
				sb.WriteString(fmt.Sprintf(",%.6f", series.Points[i].Value))
			} else {
				sb.WriteString(",")
			}
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
