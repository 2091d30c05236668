package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/skyops/tafboard/internal/api"
	"github.com/skyops/tafboard/internal/board"
	"github.com/skyops/tafboard/internal/config"
	"github.com/skyops/tafboard/internal/notam"
	"github.com/skyops/tafboard/internal/observability"
	"github.com/skyops/tafboard/internal/routes"
	"github.com/skyops/tafboard/internal/taf"
	"github.com/skyops/tafboard/internal/websocket"
	"github.com/skyops/tafboard/pkg/logger"
)

var (
	// Version is injected at build time
	Version = "dev"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file (optional - will search in configs/ and root directory)")
	flag.Parse()

	// Optional .env for the FAA credential pair; absence is fine.
	_ = godotenv.Load()

	cfg, err := config.LoadWithFallback(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting TAF board server",
		logger.String("version", Version),
		logger.String("config_path", *configPath),
	)

	// Load the route lookup tables (immutable for the session)
	tables, err := routes.Load(cfg.Routes.RegionsPath, cfg.Routes.AlternatesPath, cfg.Routes.EnroutePath, log)
	if err != nil {
		log.Error("Failed to load route tables", logger.Error(err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()

	// Create WebSocket server for dashboard push
	wsServer := websocket.NewServer(log)
	go wsServer.Run()

	// Create upstream clients
	tafClient := taf.NewClient(
		cfg.Weather.APIBaseURL,
		time.Duration(cfg.Weather.RequestTimeoutSeconds)*time.Second,
		cfg.Weather.MaxRetries,
		log,
	)

	var notamClient board.NOTAMFetcher
	if cfg.NOTAMs.Enabled {
		notamClient = notam.NewClient(
			cfg.NOTAMs.APIBaseURL,
			cfg.NOTAMs.CredentialsPath,
			time.Duration(cfg.NOTAMs.RequestTimeoutSeconds)*time.Second,
			log,
		)
	} else {
		log.Info("NOTAM fetching disabled in configuration")
	}

	// Create and start the board service
	boardService := board.NewService(
		tafClient,
		notamClient,
		tables,
		wsServer,
		metrics,
		clockwork.NewRealClock(),
		time.Duration(cfg.Weather.RefreshIntervalMinutes)*time.Minute,
		time.Duration(cfg.Weather.CacheExpiryMinutes)*time.Minute,
		log,
	)
	if err := boardService.Start(); err != nil {
		log.Error("Failed to start board service", logger.Error(err))
		os.Exit(1)
	}

	// Create API router and HTTP server
	router := api.NewRouter(boardService, wsServer, cfg, log)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router.Routes(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSecs) * time.Second,
	}

	go func() {
		log.Info("Starting HTTP server", logger.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error on startup", logger.String("addr", addr), logger.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("Shutting down server...")

	log.Info("Stopping board service...")
	boardService.Stop()
	log.Info("Board service stopped.")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", logger.Error(err))
	}

	log.Info("Server fully stopped")
}
