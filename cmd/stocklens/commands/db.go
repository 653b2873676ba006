package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"stocklens/internal/store"
	"stocklens/pkg/config"
	"stocklens/pkg/database"
	"stocklens/pkg/logger"
)

// dbCmd groups database subcommands
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the bar store database",
}

var dbInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the bar store schema",
	RunE:  runDBInit,
}

var dbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database health and pool stats",
	RunE:  runDBStatus,
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbInitCmd)
	dbCmd.AddCommand(dbStatusCmd)
}

func connectDB() (*database.DB, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.Database.URL == "" {
		return nil, nil, fmt.Errorf("DATABASE_URL is not set")
	}

	db, err := database.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, cfg, nil
}

func runDBInit(cmd *cobra.Command, args []string) error {
	db, cfg, err := connectDB()
	if err != nil {
		return err
	}
	defer db.Close()

	log := logger.New(cfg)

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	if err := store.NewBarStore(db.Pool).EnsureSchema(ctx); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	log.Info("Bar store schema ready")
	fmt.Println("Schema ready")
	return nil
}

func runDBStatus(cmd *cobra.Command, args []string) error {
	db, _, err := connectDB()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	status, err := db.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("health check: %w", err)
	}

	fmt.Printf("Healthy: %v (ping %s)\n", status.Healthy, status.ResponseTime)
	fmt.Printf("Conns: %d/%d (idle %d)\n",
		status.Stats.AcquiredConns, status.Stats.MaxConns, status.Stats.IdleConns)
	return nil
}
