// Package main is the entry point for the aquarium simulation server.
// It only handles dependency injection and server initialization.
// NO business logic belongs here.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MRamiBalles/aquarium-sim/internal/engine"
	"github.com/MRamiBalles/aquarium-sim/internal/events"
	"github.com/MRamiBalles/aquarium-sim/internal/infra/fishapi"
	"github.com/MRamiBalles/aquarium-sim/internal/infra/storage"
	"github.com/MRamiBalles/aquarium-sim/internal/network"
	"github.com/MRamiBalles/aquarium-sim/internal/platform/config"
	"github.com/MRamiBalles/aquarium-sim/internal/platform/logger"
	"github.com/MRamiBalles/aquarium-sim/internal/platform/metrics"
	"github.com/MRamiBalles/aquarium-sim/internal/platform/optimization"
	"github.com/MRamiBalles/aquarium-sim/internal/view"
	"github.com/google/uuid"
)

const pollInterval = 200 * time.Millisecond

func main() {
	log.Println("[AQUARIUM] Initializing aquarium simulation server...")

	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("[AQUARIUM] %v", err)
	}

	appLogger := logger.NewLogger()
	appLogger.SetDebug(cfg.Debug)
	collector := metrics.NewCollector()
	tuning := optimization.ForProfile(cfg.Profile)

	loc, err := cfg.Location()
	if err != nil {
		appLogger.Error("Invalid timezone: %v", err)
		os.Exit(1)
	}

	appLogger.Info("Opening journal database %s...", cfg.JournalDSN)
	db, err := storage.InitSQLite(cfg.JournalDSN)
	if err != nil {
		appLogger.Error("Failed to initialize SQLite: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	sessionID := cfg.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	appLogger.Info("Session %s", sessionID)

	eventRepo := storage.NewSQLiteEventRepository(db)
	eventLog := events.NewEventLog(storage.NewJournalPersister(eventRepo, sessionID))

	appLogger.Info("Bootstrapping Engine...")
	fetcher := fishapi.NewClient(cfg.FishAPIBaseURL, cfg.FishAPIPath, cfg.FetchTimeout)
	eng := engine.NewEngine(engine.Options{
		Source:    engine.NewClockworkTickSource(nil),
		Fetcher:   fetcher,
		Start:     engine.DefaultStartTime(time.Now(), cfg.StartHour, loc),
		Tolerance: cfg.FeedingTolerance,
		EventLog:  eventLog,
		Metrics:   collector,
		Logger:    appLogger,
	})
	if cfg.Speed != 1 {
		eng.SetSpeed(cfg.Speed)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.AutoLoad {
		appLogger.Info("Loading fish from %s...", fetcher.URL())
		if err := eng.Load(ctx); err != nil {
			appLogger.Error("Initial load failed: %v", err)
		}
	}

	appLogger.Info("Bootstrapping WebSocket Hub...")
	localizer := view.NewLocalizer(cfg.Locale)
	hub := network.NewHub(eng, tuning, collector, appLogger)
	go hub.Run(ctx)
	hub.StartEventPoller(ctx, eventLog, nil, pollInterval)
	eng.Subscribe(func(snap engine.Snapshot) {
		hub.BroadcastJSON("state", localizer.Render(snap))
	})

	if cfg.AutoStart {
		eng.Start()
	}

	server := network.NewServer(eng, hub, eventLog, localizer, collector, appLogger)
	server.EnableHistory(eventRepo, loc)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		appLogger.Info("HTTP API & WS Server listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Server failed: %v", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[AQUARIUM] Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Warn("HTTP shutdown: %v", err)
	}
	eng.Stop()
	cancel()
}
