package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"stocklens/internal/report"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [symbols...]",
	Short: "Run the indicator pipeline for a batch of symbols",
	Long: `Runs the full pipeline for the given symbols: market detection,
validation, the configured indicator battery and capital flow analysis.
Results are exported to the output directory as JSON, per-symbol CSV
and a Markdown summary.

Example:
  go run ./cmd/stocklens analyze 00700.HK 0005.HK 600519
  go run ./cmd/stocklens analyze 00700.HK --from 2025-01-01 --to 2025-12-31`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

var (
	analyzeFrom string
	analyzeTo   string
	analyzeOut  string
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeFrom, "from", "", "start date YYYY-MM-DD (default ~18 months back)")
	analyzeCmd.Flags().StringVar(&analyzeTo, "to", "", "end date YYYY-MM-DD (default today)")
	analyzeCmd.Flags().StringVar(&analyzeOut, "out", "", "output directory (default from OUTPUT_DIR)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	to := time.Now()
	if analyzeTo != "" {
		if to, err = time.Parse("2006-01-02", analyzeTo); err != nil {
			return fmt.Errorf("invalid --to date: %w", err)
		}
	}
	from := to.AddDate(0, -18, 0)
	if analyzeFrom != "" {
		if from, err = time.Parse("2006-01-02", analyzeFrom); err != nil {
			return fmt.Errorf("invalid --from date: %w", err)
		}
	}

	orch := rt.orchestrator(nil)
	batch, err := orch.Run(cmd.Context(), args, from, to)
	if err != nil {
		return fmt.Errorf("run batch: %w", err)
	}

	outDir := rt.cfg.Pipeline.OutputDir
	if analyzeOut != "" {
		outDir = analyzeOut
	}
	exporter := report.NewExporter(outDir, rt.log)
	paths, err := exporter.Export(batch)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	fmt.Printf("Run %s: %d attempted, %d succeeded, %d failed (%.1fs)\n",
		batch.RunID, batch.Attempted, batch.Succeeded, batch.Failed, batch.Duration.Seconds())
	for _, res := range batch.Results {
		if res.Failure != nil {
			fmt.Printf("  %-12s FAILED  %s: %s\n", res.RawSymbol, res.Failure.Code, res.Failure.Message)
			continue
		}
		fmt.Printf("  %-12s OK      %s/%s, %d sessions, %d indicators\n",
			res.RawSymbol, res.MarketID, res.Symbol, res.Series.Len(), len(res.Indicators))
	}
	fmt.Printf("Exported %d files to %s\n", len(paths), outDir)

	return nil
}
