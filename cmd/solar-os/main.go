package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/solaros/solar-os/internal/config"
	"github.com/solaros/solar-os/internal/domain"
	"github.com/solaros/solar-os/internal/http/router"
	"github.com/solaros/solar-os/internal/jobs"
	"github.com/solaros/solar-os/internal/logger"
	"github.com/solaros/solar-os/internal/metrics"
	"github.com/solaros/solar-os/internal/persistence"
	"github.com/solaros/solar-os/internal/storage"
	"github.com/solaros/solar-os/internal/store"
	"github.com/solaros/solar-os/internal/validation"
	"go.uber.org/zap"
)

const usage = "usage: solar-os [serve|backup|restore]"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	command := "serve"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	// Load full configuration with secrets
	// In development: uses environment variables
	// In staging/production: fetches from Azure Key Vault when enabled
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	log.Info("Starting application",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Environment),
		zap.String("command", command),
		zap.String("persistence", cfg.Persistence.Driver),
	)

	switch command {
	case "serve":
		return serve(ctx, cfg, log)
	case "backup":
		return backupOnce(ctx, cfg, log)
	case "restore":
		return restoreLatest(ctx, cfg, log)
	default:
		return fmt.Errorf("unknown command %q, %s", command, usage)
	}
}

// openStore opens the snapshot slot and loads the store over it
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger, opts ...store.Option) (*store.Store, persistence.Slot, error) {
	slot, err := persistence.OpenSlot(ctx, cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open persistence slot: %w", err)
	}

	adapter := persistence.NewAdapter(slot, logger.WithSlot(log, cfg.Persistence.Driver, cfg.Persistence.SlotKey))
	loadCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	opts = append([]store.Option{
		store.WithLogger(log.Named("store")),
		store.WithValidator(validation.Struct),
	}, opts...)
	st, err := store.Open(loadCtx, &timeoutSnapshotter{next: adapter, timeout: cfg.Persistence.WriteTimeoutDuration()}, opts...)
	if err != nil {
		_ = slot.Close()
		return nil, nil, err
	}
	return st, slot, nil
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	recorder, err := metrics.NewPrometheusRecorder(registry)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	st, slot, err := openStore(ctx, cfg, log, store.WithMetrics(recorder))
	if err != nil {
		return err
	}
	defer func() {
		if err := slot.Close(); err != nil {
			log.Warn("Error closing persistence slot", zap.Error(err))
		}
	}()

	unsubscribe := st.Subscribe(func(ev store.Event) {
		log.Debug("State changed",
			zap.String("operation", ev.Operation),
			zap.Strings("collections", ev.Collections),
			zap.String("record_id", ev.RecordID),
		)
	})
	defer unsubscribe()

	checks := map[string]router.Check{}
	if pinger, ok := slot.(persistence.Pinger); ok {
		checks["persistence"] = pinger.Ping
	}

	// Initialize and start scheduler for background jobs
	var scheduler *jobs.Scheduler
	if cfg.Backup.Enabled {
		objects, err := storage.NewStorage(ctx, &cfg.Storage, log)
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

		scheduler = jobs.NewScheduler(log)
		backup := jobs.NewBackupJob(st, objects, cfg.Backup, log)
		if err := scheduler.AddJob(jobs.BackupJobName, cfg.Backup.Schedule, backup.Run); err != nil {
			return fmt.Errorf("failed to register backup job: %w", err)
		}
		checks["storage"] = func(ctx context.Context) error {
			_, err := objects.List(ctx, cfg.Backup.Prefix+"/")
			return err
		}
		scheduler.Start()
	} else {
		log.Info("Scheduled backups disabled")
	}

	// Ops HTTP server for probes and metrics
	var srv *http.Server
	serverErrors := make(chan error, 1)
	if cfg.Server.Enabled {
		var schedule router.Schedule
		if scheduler != nil {
			schedule = scheduler
		}
		rt := router.NewRouter(cfg, log, registry, checks, schedule)
		srv = &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:      rt.Setup(),
			ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
			WriteTimeout: cfg.Server.WriteTimeoutDuration(),
		}
		go func() {
			log.Info("Ops server starting", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErrors <- err
			}
		}()
	}

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))
	}

	// Stop scheduler if running
	if scheduler != nil {
		<-scheduler.Stop().Done()
		log.Info("Scheduler stopped")
	}

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}
	}

	log.Info("Stopped gracefully")
	return nil
}

// backupOnce writes a single backup and exits
func backupOnce(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	st, slot, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer slot.Close()

	objects, err := storage.NewStorage(ctx, &cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, cfg.Backup.TimeoutDuration())
	defer cancel()

	result, err := jobs.NewBackupJob(st, objects, cfg.Backup, log).RunOnce(runCtx)
	if err != nil {
		return err
	}
	log.Info("Backup written",
		zap.String("snapshot_key", result.SnapshotKey),
		zap.String("reports_key", result.ReportsKey),
		zap.Int("pruned", result.Pruned),
	)
	return nil
}

// restoreLatest replaces the persisted snapshot with the most recent backup
func restoreLatest(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	objects, err := storage.NewStorage(ctx, &cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, cfg.Backup.TimeoutDuration())
	defer cancel()

	state, key, err := jobs.NewBackupJob(nil, objects, cfg.Backup, log).Latest(runCtx)
	if err != nil {
		return fmt.Errorf("failed to load latest backup: %w", err)
	}

	slot, err := persistence.OpenSlot(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to open persistence slot: %w", err)
	}
	defer slot.Close()

	if err := persistence.NewAdapter(slot, log).Save(runCtx, state); err != nil {
		return fmt.Errorf("failed to write restored snapshot: %w", err)
	}
	log.Info("Snapshot restored", zap.String("snapshot_key", key))
	return nil
}

// timeoutSnapshotter bounds each snapshot write by the configured persistence timeout
type timeoutSnapshotter struct {
	next    store.Snapshotter
	timeout time.Duration
}

func (t *timeoutSnapshotter) Load(ctx context.Context) (*domain.State, error) {
	return t.next.Load(ctx)
}

func (t *timeoutSnapshotter) Save(ctx context.Context, state *domain.State) error {
	if t.timeout <= 0 {
		return t.next.Save(ctx, state)
	}
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Save(ctx, state)
}
