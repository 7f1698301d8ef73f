package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/afroash/moss-monitor/internal/config"
	"github.com/afroash/moss-monitor/internal/health"
	"github.com/afroash/moss-monitor/internal/history"
	"github.com/afroash/moss-monitor/internal/models"
	"github.com/afroash/moss-monitor/internal/server"
	"github.com/afroash/moss-monitor/internal/simulator"
	"github.com/afroash/moss-monitor/internal/storage"
)

const version = "v0.3.0"

func main() {
	configPath := flag.String("config", "configs/server.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.LoadAppConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if level, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
		logger = logger.Level(level)
	}

	logger.Info().
		Str("version", version).
		Int("port", cfg.Server.Port).
		Dur("refresh_interval", cfg.Simulator.RefreshInterval).
		Msg("Starting Moss Wall Monitor")

	// Seeded random sources make the whole simulation reproducible.
	seed := cfg.Simulator.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	profiles := simulator.DefaultTable()
	if len(cfg.Simulator.Locations) > 0 {
		custom := make([]simulator.Profile, 0, len(cfg.Simulator.Locations))
		for _, name := range cfg.Simulator.Locations {
			custom = append(custom, profiles.Lookup(name))
		}
		profiles = simulator.NewProfileTable(custom)
	}

	sim := simulator.New(profiles, rand.New(rand.NewSource(seed)), logger)
	gen := history.NewGenerator(rand.New(rand.NewSource(seed + 1)))

	// Load-or-train is the explicit initialization step: the classifier
	// itself never touches the disk again.
	tree := health.LoadOrTrain(cfg.Model.Path, cfg.Model.TrainingSeed, logger)
	classifier := health.NewClassifier(tree, health.Strategy(cfg.Model.Strategy), logger)

	engine := server.NewEngine(sim, gen, classifier, logger)
	store := server.NewSnapshotStore(500)
	hub := server.NewHub(logger, cfg.Server.AllowedOrigins...)

	registry := prometheus.NewRegistry()
	metrics := server.NewMetrics(registry, hub)

	var sqliteStore *storage.SQLiteStore
	var writer *storage.SnapshotWriter
	var retentionCleaner *storage.RetentionCleaner
	if cfg.Storage.Enabled {
		dataDir := filepath.Dir(cfg.Storage.DBPath)
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			log.Fatalf("Failed to create data directory: %v", err)
		}
		sqliteStore, err = storage.NewSQLiteStore(cfg.Storage.DBPath, logger)
		if err != nil {
			log.Fatalf("Failed to create SQLite store: %v", err)
		}

		writer = storage.NewSnapshotWriter(sqliteStore, storage.SnapshotWriterConfig{
			BatchSize:   cfg.Storage.BatchSize,
			FlushPeriod: cfg.Storage.FlushPeriod,
			ChannelSize: cfg.Storage.ChannelSize,
		}, logger)

		retentionCleaner = storage.NewRetentionCleaner(sqliteStore, storage.RetentionCleanerConfig{
			RetentionDays: cfg.Storage.RetentionDays,
			CleanupPeriod: cfg.Storage.CleanupPeriod,
		}, logger)
	}

	apiHandler := server.NewAPIHandler(engine, store, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/current", apiHandler.HandleCurrent)
	mux.HandleFunc("/api/history", apiHandler.HandleHistory)
	mux.HandleFunc("/api/weekly", apiHandler.HandleWeekly)
	mux.HandleFunc("/api/health-trend", apiHandler.HandleTrend)
	mux.HandleFunc("/api/locations", apiHandler.HandleLocations)
	mux.HandleFunc("/api/recent", apiHandler.HandleRecent)
	mux.HandleFunc("/api/stats", apiHandler.HandleStats)
	mux.HandleFunc("/api/dashboard-data", apiHandler.HandleDashboardData)
	mux.HandleFunc("/api/export", apiHandler.HandleExport)
	mux.HandleFunc("/ws", hub.ServeHTTP)
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok","version":"%s"}`, version)
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", httpServer.Addr).Msg("Server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Refresh loop: the blocking sleep-then-recompute cycle the dashboard
	// renders from. Stopped by cancelling loopCtx on shutdown.
	loopCtx, stopLoop := context.WithCancel(context.Background())
	if cfg.Simulator.AutoRefresh {
		go runRefreshLoop(loopCtx, cfg.Simulator.RefreshInterval, engine, store, hub, metrics, writer, logger)
	} else {
		logger.Info().Msg("Auto-refresh disabled, readings computed on demand")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info().Msg("Shutting down server...")
	stopLoop()

	if writer != nil {
		writer.Stop()
	}
	if retentionCleaner != nil {
		retentionCleaner.Stop()
	}
	if sqliteStore != nil {
		sqliteStore.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown error")
	}

	logger.Info().Msg("Server stopped")
}

// runRefreshLoop recomputes one snapshot per wall every interval, fans the
// results out to the in-memory store, the WebSocket viewers and the optional
// snapshot log.
func runRefreshLoop(ctx context.Context, interval time.Duration, engine *server.Engine, store *server.SnapshotStore, hub *server.Hub, metrics *server.Metrics, writer *storage.SnapshotWriter, logger zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	tick := func(now time.Time) {
		for _, location := range engine.Locations() {
			snap := engine.Snapshot(location, now)
			store.Add(snap)
			hub.BroadcastSnapshot(snap)
			metrics.Classifications.WithLabelValues(string(snap.Classification.Label)).Inc()
			if writer != nil {
				writer.Write(snap)
			}
			if snap.Classification.Label != models.LabelHealthy {
				logger.Debug().
					Str("location", location).
					Str("label", string(snap.Classification.Label)).
					Float64("health_score", snap.Classification.HealthScore).
					Msg("Wall needs maintenance")
			}
		}
		metrics.RefreshTicks.Inc()
		hub.Heartbeat()
	}

	tick(time.Now())
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Refresh loop stopped")
			return
		case now := <-ticker.C:
			tick(now)
		}
	}
}
