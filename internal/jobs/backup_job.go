package jobs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/solaros/solar-os/internal/config"
	"github.com/solaros/solar-os/internal/domain"
	"github.com/solaros/solar-os/internal/persistence"
	"github.com/solaros/solar-os/internal/reports"
	"github.com/solaros/solar-os/internal/storage"
	"go.uber.org/zap"
)

// BackupJobName is the name of the snapshot backup job
const BackupJobName = "state_backup"

const (
	snapshotPrefix     = "snapshot-"
	snapshotTimeLayout = "20060102T150405.000Z"
	reportsFolder      = "reports"
)

// StateSource provides a consistent copy of the application state.
// This interface allows the job to read the store without importing the store package directly.
type StateSource interface {
	State() *domain.State
}

// BackupResult describes the objects written by one backup run
type BackupResult struct {
	SnapshotKey  string
	SnapshotSize int64
	// ReportsKey is empty when no workbook was written
	ReportsKey string
	Pruned     int
}

// BackupJob copies the full state snapshot to object storage and prunes old copies.
type BackupJob struct {
	source        StateSource
	storage       storage.Storage
	logger        *zap.Logger
	prefix        string
	retain        int
	exportReports bool
	timeout       time.Duration
	now           func() time.Time
}

// NewBackupJob creates a new backup job.
// The timeout controls how long a single run is allowed to take.
func NewBackupJob(source StateSource, store storage.Storage, cfg config.BackupConfig, logger *zap.Logger) *BackupJob {
	timeout := cfg.TimeoutDuration()
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &BackupJob{
		source:        source,
		storage:       store,
		logger:        logger,
		prefix:        strings.Trim(cfg.Prefix, "/"),
		retain:        cfg.Retain,
		exportReports: cfg.ExportReports,
		timeout:       timeout,
		now:           time.Now,
	}
}

// WithClock overrides the clock used for object keys
func (j *BackupJob) WithClock(now func() time.Time) *BackupJob {
	j.now = now
	return j
}

// Run executes the backup job.
// This is called by the scheduler according to the cron expression.
func (j *BackupJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	result, err := j.RunOnce(ctx)
	if err != nil {
		j.logger.Error("state backup failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(start)))
		return
	}

	j.logger.Info("state backup completed",
		zap.String("snapshot_key", result.SnapshotKey),
		zap.Int64("snapshot_size", result.SnapshotSize),
		zap.String("reports_key", result.ReportsKey),
		zap.Int("pruned", result.Pruned),
		zap.Duration("duration", time.Since(start)))
}

// RunOnce writes one snapshot, the optional report workbook, and prunes old snapshots
func (j *BackupJob) RunOnce(ctx context.Context) (BackupResult, error) {
	var result BackupResult

	state := j.source.State()
	payload, err := persistence.Encode(state)
	if err != nil {
		return result, err
	}

	now := j.now().UTC()
	key := j.key(fmt.Sprintf("%s%s-%s.json", snapshotPrefix, now.Format(snapshotTimeLayout), uuid.NewString()[:8]))
	size, err := j.storage.Put(ctx, key, "application/json", bytes.NewReader(payload))
	if err != nil {
		return result, fmt.Errorf("failed to store snapshot: %w", err)
	}
	result.SnapshotKey = key
	result.SnapshotSize = size

	if j.exportReports && state.Reports.Len() > 0 {
		var buf bytes.Buffer
		if err := reports.WriteXLSX(&buf, state.Reports.Items()); err != nil {
			return result, err
		}
		reportsKey := j.key(reportsFolder + "/" + reports.Filename(domain.NewTimestamp(now)))
		if _, err := j.storage.Put(ctx, reportsKey, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", &buf); err != nil {
			return result, fmt.Errorf("failed to store report export: %w", err)
		}
		result.ReportsKey = reportsKey
	}

	pruned, err := j.prune(ctx, j.key(snapshotPrefix))
	result.Pruned += pruned
	if err != nil {
		return result, err
	}
	pruned, err = j.prune(ctx, j.key(reportsFolder+"/"))
	result.Pruned += pruned
	if err != nil {
		return result, err
	}

	return result, nil
}

// Latest loads the most recent snapshot. It returns storage.ErrNotFound when none exists.
func (j *BackupJob) Latest(ctx context.Context) (*domain.State, string, error) {
	objects, err := j.storage.List(ctx, j.key(snapshotPrefix))
	if err != nil {
		return nil, "", err
	}
	if len(objects) == 0 {
		return nil, "", fmt.Errorf("%w: no snapshot under %q", storage.ErrNotFound, j.prefix)
	}

	key := objects[len(objects)-1].Key
	rc, err := j.storage.Get(ctx, key)
	if err != nil {
		return nil, "", err
	}
	defer rc.Close()

	payload, err := io.ReadAll(rc)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read snapshot %s: %w", key, err)
	}
	state, report, err := persistence.Decode(payload, j.now())
	if err != nil {
		return nil, "", err
	}
	if len(report.Missing) > 0 {
		j.logger.Warn("backup snapshot is missing keys, defaults applied",
			zap.String("snapshot_key", key),
			zap.Strings("keys", report.Missing))
	}
	if len(report.Issues) > 0 {
		j.logger.Warn("backup snapshot had records repaired",
			zap.String("snapshot_key", key),
			zap.Strings("details", report.Details(20)))
	}
	return state, key, nil
}

// prune deletes the oldest objects under prefix beyond the retention count.
// Keys embed a UTC timestamp so key order is age order.
func (j *BackupJob) prune(ctx context.Context, prefix string) (int, error) {
	if j.retain <= 0 {
		return 0, nil
	}
	objects, err := j.storage.List(ctx, prefix)
	if err != nil {
		return 0, fmt.Errorf("failed to list backups: %w", err)
	}
	excess := len(objects) - j.retain
	deleted := 0
	for i := 0; i < excess; i++ {
		if err := j.storage.Delete(ctx, objects[i].Key); err != nil {
			return deleted, fmt.Errorf("failed to prune backup %s: %w", objects[i].Key, err)
		}
		deleted++
	}
	return deleted, nil
}

func (j *BackupJob) key(name string) string {
	if j.prefix == "" {
		return name
	}
	return j.prefix + "/" + name
}
