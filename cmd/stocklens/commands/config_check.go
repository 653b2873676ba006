package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"stocklens/internal/indicator"
	"stocklens/pkg/config"
)

// configCmd groups configuration subcommands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect configuration",
}

// configCheckCmd validates the indicator config without running anything
var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the indicator config",
	Long: `Loads and validates the indicator YAML: formula ids, parameter
ranges, dependency counts, unknown dependency names and static cycles.
Prints lint warnings and the config hash on success.

Example:
  go run ./cmd/stocklens config check
  go run ./cmd/stocklens config check --indicators configs/indicators.yaml`,
	RunE: runConfigCheck,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configCheckCmd)
}

func runConfigCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	configPath := cfg.Pipeline.IndicatorConfig
	if indicatorConfig != "" {
		configPath = indicatorConfig
	}

	indCfg, _, err := indicator.Load(configPath)
	if err != nil {
		return fmt.Errorf("load %s: %w", configPath, err)
	}

	for _, warning := range indicator.Warn(indCfg) {
		fmt.Printf("warning [%s]: %s\n", warning.Code, warning.Message)
	}

	hash, err := indicator.Hash(indCfg)
	if err != nil {
		return fmt.Errorf("hash: %w", err)
	}

	fmt.Printf("%s: ok (%d indicators, config_id=%s, hash=%s)\n",
		configPath, len(indCfg.Indicators), indCfg.Meta.ConfigID, hash[:12])

	return nil
}
