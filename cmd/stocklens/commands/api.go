package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"stocklens/internal/api"
	"stocklens/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server",
	Long: `Starts the REST API server.

Endpoints:
  GET  /health                              - Health check
  GET  /api/v1/runs                         - List batch runs
  POST /api/v1/runs                         - Launch a batch run
  GET  /api/v1/runs/{id}                    - Run detail with full results
  GET  /api/v1/runs/{id}/symbols/{symbol}   - One symbol's result
  GET  /api/v1/ws                           - Run progress (websocket)

Example:
  go run ./cmd/stocklens api
  go run ./cmd/stocklens api --port 8087`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	if apiPort != "" {
		rt.cfg.Port = apiPort
	}

	hub := api.NewHub(rt.log)
	orch := rt.orchestrator(hub.Broadcast)

	registry := handlers.NewRunRegistry()
	runsHandler := handlers.NewRunsHandler(orch, registry, rt.log)

	router := api.NewRouter(runsHandler, hub, rt.log)
	server := api.New(rt.cfg, rt.log, router)

	go func() {
		if err := server.Start(); err != nil {
			rt.log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("Server running on http://localhost:%s\n", rt.cfg.Port)
	fmt.Println("Press Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	return nil
}
