package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	indicatorConfig string
	verbose         bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stocklens",
	Short: "Technical indicator pipeline for HK and CN equities",
	Long: `StockLens computes technical indicator batteries and capital flow
estimates over daily bars of Hong Kong and mainland China equities.

Symbols are classified automatically: "00700.HK" or "700" resolve to
the HK market, "600519.SH" or "600519" to CN.

Usage:
  go run ./cmd/stocklens [command]

Examples:
  go run ./cmd/stocklens analyze 00700.HK 600519
  go run ./cmd/stocklens fetch 00700.HK --days 30
  go run ./cmd/stocklens api
  go run ./cmd/stocklens schedule
  go run ./cmd/stocklens config check`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&indicatorConfig, "indicators", "", "indicator config file (default from INDICATOR_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
