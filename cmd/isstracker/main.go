package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/jaswanth271103/ISS-Live-Tracker-3D-2D-Ground-Track-IST-Altitude-Speed/internal/api"
	"github.com/jaswanth271103/ISS-Live-Tracker-3D-2D-Ground-Track-IST-Altitude-Speed/internal/auth"
	"github.com/jaswanth271103/ISS-Live-Tracker-3D-2D-Ground-Track-IST-Altitude-Speed/internal/env"
	"github.com/jaswanth271103/ISS-Live-Tracker-3D-2D-Ground-Track-IST-Altitude-Speed/internal/metrics"
	"github.com/jaswanth271103/ISS-Live-Tracker-3D-2D-Ground-Track-IST-Altitude-Speed/internal/poll"
	"github.com/jaswanth271103/ISS-Live-Tracker-3D-2D-Ground-Track-IST-Altitude-Speed/internal/sink"
	"github.com/jaswanth271103/ISS-Live-Tracker-3D-2D-Ground-Track-IST-Altitude-Speed/internal/stream"
	"github.com/jaswanth271103/ISS-Live-Tracker-3D-2D-Ground-Track-IST-Altitude-Speed/internal/telemetry"
	"github.com/jaswanth271103/ISS-Live-Tracker-3D-2D-Ground-Track-IST-Altitude-Speed/web"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	addr := os.Getenv("ISSTRACKER_HTTP_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	authCfg, err := loadAuthConfig(logger)
	if err != nil {
		logger.Error("invalid auth configuration", "error", err)
		os.Exit(1)
	}

	pipeCfg := loadPipelineConfig(logger)
	sinkCfg := loadSinkConfig(logger)

	csvSink, err := sink.NewCSVSink(sinkCfg.DataDir)
	if err != nil {
		logger.Error("creating CSV sink", "error", err)
		os.Exit(1)
	}

	sinks := []sink.Sink{csvSink}
	var workbookSink *sink.WorkbookSink
	if sinkCfg.WorkbookEnabled {
		workbookSink = sink.NewWorkbookSink(sinkCfg.WorkbookPath)
		sinks = append(sinks, workbookSink)
	}
	multiSink := sink.NewMultiSink(logger, sinks...)

	store := telemetry.NewStore(pipeCfg.HistoryMax)
	fetcher := telemetry.NewFetcher(pipeCfg.TelemetryURL, pipeCfg.PositionsURL, pipeCfg.FetchTimeout)
	poller := telemetry.NewPoller(fetcher, store, multiSink, logger)

	ring := env.NewRing(pipeCfg.RingCapacity)
	sampler := env.NewSampler(env.NewGenerator(nil), store, ring, multiSink, logger)

	streamCfg := loadStreamConfig(logger, pipeCfg.PollInterval)
	streamHandler := stream.NewHandler(store, streamCfg, logger)

	srv := api.NewServer(addr, logger, authCfg, api.Deps{
		Store:        store,
		Fetcher:      fetcher,
		Ring:         ring,
		Sampler:      sampler,
		CSV:          csvSink,
		Workbook:     workbookSink,
		Stream:       streamHandler,
		PollInterval: pipeCfg.PollInterval,
		Web:          web.Content,
	})

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Two independent producer loops; a stall in one never delays the other.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		poll.Run(ctx, "telemetry", pipeCfg.PollInterval, logger, poller.Tick)
	}()
	go func() {
		defer wg.Done()
		poll.Run(ctx, "environment", pipeCfg.PollInterval, logger, sampler.Tick)
	}()

	// Background goroutine to update the position age gauge.
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if age := store.AgeSeconds(); age >= 0 {
					metrics.SetPositionAge(age)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		logger.Info("starting server",
			"addr", addr,
			"auth_enabled", authCfg.Enabled,
			"poll_interval_seconds", pipeCfg.PollInterval.Seconds(),
			"workbook_enabled", sinkCfg.WorkbookEnabled,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server listen error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.HTTPServer().Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	// Wait for in-flight ticks to finish.
	wg.Wait()
	logger.Info("server stopped")
}

func loadAuthConfig(logger *slog.Logger) (auth.Config, error) {
	cfg := auth.Config{}

	enabledStr := os.Getenv("ISSTRACKER_AUTH_ENABLED")
	if enabledStr != "" {
		enabled, err := strconv.ParseBool(enabledStr)
		if err != nil {
			return cfg, errors.New("ISSTRACKER_AUTH_ENABLED must be a boolean value (true/false/1/0)")
		}
		cfg.Enabled = enabled
	}

	if cfg.Enabled {
		cfg.Token = os.Getenv("ISSTRACKER_AUTH_TOKEN")
		if cfg.Token == "" {
			return cfg, errors.New("ISSTRACKER_AUTH_TOKEN is required when auth is enabled")
		}
		logger.Info("auth enabled")
	}

	return cfg, nil
}

// pipelineConfig holds the sampling pipeline settings.
type pipelineConfig struct {
	PollInterval time.Duration
	FetchTimeout time.Duration
	TelemetryURL string
	PositionsURL string
	RingCapacity int
	HistoryMax   int
}

func loadPipelineConfig(logger *slog.Logger) pipelineConfig {
	cfg := pipelineConfig{
		PollInterval: 3 * time.Second,
		FetchTimeout: 8 * time.Second,
		RingCapacity: 500,
		HistoryMax:   2000,
	}

	if v := os.Getenv("ISSTRACKER_POLL_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid ISSTRACKER_POLL_SECONDS value, using default", "value", v, "default", 3)
		} else {
			cfg.PollInterval = time.Duration(n) * time.Second
		}
	}

	if v := os.Getenv("ISSTRACKER_FETCH_TIMEOUT_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid ISSTRACKER_FETCH_TIMEOUT_SECONDS value, using default", "value", v, "default", 8)
		} else {
			cfg.FetchTimeout = time.Duration(n) * time.Second
		}
	}

	if v := os.Getenv("ISSTRACKER_TELEMETRY_URL"); v != "" {
		cfg.TelemetryURL = v
	}

	if v := os.Getenv("ISSTRACKER_POSITIONS_URL"); v != "" {
		cfg.PositionsURL = v
	}

	if v := os.Getenv("ISSTRACKER_RING_CAPACITY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid ISSTRACKER_RING_CAPACITY value, using default", "value", v, "default", 500)
		} else {
			cfg.RingCapacity = n
		}
	}

	if v := os.Getenv("ISSTRACKER_HISTORY_MAX"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid ISSTRACKER_HISTORY_MAX value, using default", "value", v, "default", 2000)
		} else {
			cfg.HistoryMax = n
		}
	}

	logger.Info("pipeline config",
		"poll_interval_seconds", cfg.PollInterval.Seconds(),
		"fetch_timeout_seconds", cfg.FetchTimeout.Seconds(),
		"ring_capacity", cfg.RingCapacity,
		"history_max", cfg.HistoryMax,
	)

	return cfg
}

// sinkConfig holds the durable log settings.
type sinkConfig struct {
	DataDir         string
	WorkbookEnabled bool
	WorkbookPath    string
}

func loadSinkConfig(logger *slog.Logger) sinkConfig {
	cfg := sinkConfig{
		DataDir:         "./data",
		WorkbookEnabled: true,
	}

	if v := os.Getenv("ISSTRACKER_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}

	if v := os.Getenv("ISSTRACKER_WORKBOOK_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			logger.Warn("invalid ISSTRACKER_WORKBOOK_ENABLED value, using default", "value", v, "default", true)
		} else {
			cfg.WorkbookEnabled = enabled
		}
	}

	cfg.WorkbookPath = filepath.Join(cfg.DataDir, "iss_tracker.xlsx")
	if v := os.Getenv("ISSTRACKER_WORKBOOK_PATH"); v != "" {
		cfg.WorkbookPath = v
	}

	logger.Info("sink config",
		"data_dir", cfg.DataDir,
		"workbook_enabled", cfg.WorkbookEnabled,
		"workbook_path", cfg.WorkbookPath,
	)

	return cfg
}

func loadStreamConfig(logger *slog.Logger, pollInterval time.Duration) stream.Config {
	cfg := stream.Config{
		MaxConcurrentPerIP: 10,
		KeepaliveInterval:  30 * time.Second,
		Interval:           pollInterval,
	}

	if v := os.Getenv("ISSTRACKER_STREAM_MAX_CONCURRENT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid ISSTRACKER_STREAM_MAX_CONCURRENT value, using default", "value", v, "default", 10)
		} else {
			cfg.MaxConcurrentPerIP = n
		}
	}

	if v := os.Getenv("ISSTRACKER_STREAM_KEEPALIVE_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			logger.Warn("invalid ISSTRACKER_STREAM_KEEPALIVE_SECONDS value, using default", "value", v, "default", 30)
		} else {
			cfg.KeepaliveInterval = time.Duration(n) * time.Second
		}
	}

	if v := os.Getenv("ISSTRACKER_TRUST_PROXY"); v != "" {
		trust, err := strconv.ParseBool(v)
		if err != nil {
			logger.Warn("invalid ISSTRACKER_TRUST_PROXY value, using default", "value", v, "default", false)
		} else {
			cfg.TrustProxy = trust
		}
	}

	logger.Info("stream config",
		"max_concurrent_per_ip", cfg.MaxConcurrentPerIP,
		"keepalive_interval_seconds", cfg.KeepaliveInterval.Seconds(),
	)

	return cfg
}
