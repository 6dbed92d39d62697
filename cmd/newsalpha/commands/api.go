package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/newsalpha/backend/internal/api"
	"github.com/wonny/newsalpha/backend/internal/api/handlers"
	"github.com/wonny/newsalpha/backend/pkg/logger"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `Starts the REST API server.

Endpoints:
  GET  /health                     - Health check
  GET  /ws/ingest                  - Live ingestion progress (websocket)
  POST /api/ingest                 - Ingest every source
  POST /api/ingest/{source}        - Ingest ft | nvidia | finnhub | stocks
  GET  /api/analysis/regression    - NVDA close regression
  GET  /api/analysis/correlation   - Sentiment / price correlations
  GET  /api/analysis/timeline      - Daily sentiment next to NVDA close
  GET  /api/analysis/stocks        - NVDA, AAPL and AMD bars
  GET  /api/data/quality           - Table coverage snapshot

When SCHEDULER_ENABLED=true the ingestion job also runs in this process.

Example:
  go run ./cmd/newsalpha api
  go run ./cmd/newsalpha api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default: PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== newsalpha API Server ===")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if apiPort != "" {
		cfg.Port = apiPort
	}

	log := logger.New(cfg)
	log.WithFields(map[string]any{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	hub := handlers.NewProgressHub(log)

	a, err := newApp(cfg, log, wireOptions{ingest: true, progress: hub})
	if err != nil {
		return err
	}
	defer a.close()

	router := api.NewRouter(api.Handlers{
		Ingest:   handlers.NewIngestHandler(a.collector, log),
		Analysis: handlers.NewAnalysisHandler(a.analysis, log),
		Data:     handlers.NewDataHandler(a.quality, a.db, log),
		Progress: hub,
	}, log)

	server := api.New(cfg, log, router)
	server.OnShutdown(hub.Close)

	if cfg.Schedule.Enabled {
		sched, err := newScheduler(a)
		if err != nil {
			return fmt.Errorf("init scheduler: %w", err)
		}
		sched.Start()
		defer sched.Stop()
		log.WithField("jobs", sched.GetAllJobs()).Info("Scheduler started in-process")
	}

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
