package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch [symbol]",
	Short: "Fetch and print daily bars for one symbol",
	Long: `Resolves the symbol's market, fetches its daily bars from the
configured provider and prints them. With the database enabled the bars
are also persisted to the bar store.

Example:
  go run ./cmd/stocklens fetch 00700.HK --days 30
  go run ./cmd/stocklens fetch 600519 --days 90`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

var fetchDays int

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().IntVar(&fetchDays, "days", 30, "calendar days of history")
}

func runFetch(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	marketID, symbol, err := rt.registry.Detect(args[0])
	if err != nil {
		return fmt.Errorf("classify %q: %w", args[0], err)
	}

	to := time.Now()
	from := to.AddDate(0, 0, -fetchDays)

	ctx := cmd.Context()
	bars, meta, err := rt.source.Fetch(ctx, symbol, marketID, from, to)
	if err != nil {
		return fmt.Errorf("fetch %s/%s: %w", marketID, symbol, err)
	}

	fmt.Printf("%s/%s: %d bars from %s (last update %s)\n",
		marketID, symbol, len(bars), meta.Source, meta.LastUpdated.Format("2006-01-02"))
	fmt.Println("date        open       high       low        close      volume")
	for _, b := range bars {
		fmt.Printf("%s  %-9.3f  %-9.3f  %-9.3f  %-9.3f  %d\n",
			b.Timestamp.Format("2006-01-02"), b.Open, b.High, b.Low, b.Close, b.Volume)
	}

	if rt.bars != nil {
		if err := rt.bars.SaveBatch(ctx, marketID, symbol, bars); err != nil {
			return fmt.Errorf("persist bars: %w", err)
		}
		fmt.Printf("Persisted %d bars\n", len(bars))
	}

	return nil
}
