// Package bootstrap assembles configuration, logging, metrics and the
// actor runtime into a runnable edge agent process.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/edgekit/edgekit/config"
	"github.com/edgekit/edgekit/core"
	"github.com/edgekit/edgekit/metrics"
)

// Agent wires an agent process together: it owns the logger, the metrics
// registry, the actor runtime and the OS signal handling. Actors are spawned
// against the embedded runtime, then Run drives the process until the
// runtime stops.
type Agent struct {
	cfg      *config.Config
	logger   *slog.Logger
	logLevel *slog.LevelVar
	registry *prometheus.Registry
	runtime  *core.Runtime

	mutex   sync.Mutex
	running bool
	watcher *config.Watcher
}

// New builds an Agent from a validated configuration. Pass nil to run with
// defaults.
func New(cfg *config.Config) (*Agent, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid agent config: %w", err)
	}

	level := new(slog.LevelVar)
	level.Set(cfg.Log.Level.SlogLevel())

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: level}
	switch cfg.Log.Format {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	logger := slog.New(handler).With("agent", cfg.Agent.Name)

	var (
		registry *prometheus.Registry
		rm       metrics.RuntimeMetrics
	)
	if cfg.Metrics.Enabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector())
		registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		rm = metrics.NewPrometheusRuntime(registry)
	} else {
		rm = metrics.NopRuntime()
	}

	rt := core.NewRuntime(core.RuntimeOptions{
		Logger:         logger,
		Metrics:        rm,
		ShutdownGrace:  cfg.Runtime.ShutdownGrace,
		SampleInterval: cfg.Runtime.SampleInterval,
	})

	return &Agent{
		cfg:      cfg,
		logger:   logger,
		logLevel: level,
		registry: registry,
		runtime:  rt,
	}, nil
}

// Config returns the configuration the agent was built from.
func (a *Agent) Config() *config.Config { return a.cfg }

// Logger returns the agent's root logger.
func (a *Agent) Logger() *slog.Logger { return a.logger }

// Runtime returns the embedded actor runtime.
func (a *Agent) Runtime() *core.Runtime { return a.runtime }

// Registry returns the Prometheus registry, or nil when metrics are
// disabled.
func (a *Agent) Registry() *prometheus.Registry { return a.registry }

// Spawn spawns actors on the embedded runtime.
func (a *Agent) Spawn(actors ...core.Spawnable) error {
	return a.runtime.Spawn(actors...)
}

// WatchConfig starts watching the given config file and applies supported
// changes live. Currently the log level follows the file; other fields take
// effect on restart.
func (a *Agent) WatchConfig(path string) error {
	a.mutex.Lock()
	defer a.mutex.Unlock()

	if a.watcher != nil {
		return fmt.Errorf("config watcher already started")
	}

	w, err := config.NewWatcher(path, config.NewLoader(), a.logger)
	if err != nil {
		return fmt.Errorf("failed to watch config: %w", err)
	}
	w.OnConfigChange(func(_, next *config.Config) {
		old := a.logLevel.Level()
		level := next.Log.Level.SlogLevel()
		if old != level {
			a.logLevel.Set(level)
			a.logger.Info("log level changed", "from", old, "to", level)
		}
	})
	a.watcher = w
	return w.Start()
}

// Run runs the agent until the runtime stops. SIGINT and SIGTERM translate
// into a shutdown request so every actor gets the cooperative stop signal;
// SIGHUP broadcasts a Flush hint. The first actor error, if any, is
// returned.
func (a *Agent) Run(ctx context.Context) error {
	a.mutex.Lock()
	if a.running {
		a.mutex.Unlock()
		return fmt.Errorf("agent is already running")
	}
	a.running = true
	a.mutex.Unlock()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	sigDone := make(chan struct{})
	go func() {
		for {
			select {
			case sig := <-sigCh:
				if sig == syscall.SIGHUP {
					a.logger.Info("received flush signal")
					a.runtime.Flush()
					continue
				}
				a.logger.Info("received shutdown signal", "signal", sig.String())
				a.runtime.RequestShutdown()
			case <-sigDone:
				return
			}
		}
	}()

	var metricsSrv *http.Server
	if a.cfg.Metrics.Enabled {
		metricsSrv = a.serveMetrics()
	}

	a.logger.Info("agent starting",
		"name", a.cfg.Agent.Name,
		"version", a.cfg.Agent.Version,
		"environment", a.cfg.Agent.Environment)

	err := a.runtime.Run(ctx)

	close(sigDone)
	if metricsSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if serr := metricsSrv.Shutdown(shutdownCtx); serr != nil {
			a.logger.Warn("metrics server shutdown failed", "error", serr)
		}
		cancel()
	}
	a.mutex.Lock()
	if a.watcher != nil {
		a.watcher.Stop()
		a.watcher = nil
	}
	a.running = false
	a.mutex.Unlock()

	if err != nil {
		a.logger.Error("agent stopped with error", "error", err)
		return err
	}
	a.logger.Info("agent stopped")
	return nil
}

// RequestShutdown asks the runtime to stop cooperatively.
func (a *Agent) RequestShutdown() { a.runtime.RequestShutdown() }

// serveMetrics exposes the Prometheus registry over HTTP.
func (a *Agent) serveMetrics() *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              a.cfg.Metrics.Address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		a.logger.Info("metrics server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server failed", "error", err)
		}
	}()
	return srv
}
