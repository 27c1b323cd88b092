package reliability

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/disk"

	"github.com/aristath/mt5-trader/internal/database"
)

// BackupJob uploads a backup and rotates old ones
type BackupJob struct {
	service       *BackupService
	retentionDays int
	log           zerolog.Logger
}

// NewBackupJob creates a new backup job
func NewBackupJob(service *BackupService, retentionDays int, log zerolog.Logger) *BackupJob {
	return &BackupJob{
		service:       service,
		retentionDays: retentionDays,
		log:           log.With().Str("job", "database_backup").Logger(),
	}
}

// Name returns the job name for scheduler
func (j *BackupJob) Name() string {
	return "database_backup"
}

// Run executes the backup job
func (j *BackupJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	if _, err := j.service.CreateAndUpload(ctx); err != nil {
		return err
	}

	// Rotation failures leave extra archives behind; the upload already succeeded
	if _, err := j.service.Rotate(ctx, j.retentionDays); err != nil {
		j.log.Warn().Err(err).Msg("Backup rotation failed")
	}
	return nil
}

// SnapshotPruner deletes snapshots older than a cutoff.
// *portfolio.SnapshotRepository implements it.
type SnapshotPruner interface {
	Prune(cutoff time.Time) (int64, error)
}

// Disk space thresholds in bytes
const (
	criticalFreeBytes = 500 << 20
	lowFreeBytes      = 5 << 30
)

// MaintenanceJob checks database integrity, truncates the WAL files, watches
// disk space and prunes old position snapshots.
type MaintenanceJob struct {
	databases         []*database.DB
	snapshots         SnapshotPruner
	snapshotRetention time.Duration
	dataDir           string
	log               zerolog.Logger
}

// NewMaintenanceJob creates a new maintenance job. A nil pruner or zero
// retention skips snapshot pruning.
func NewMaintenanceJob(
	dataDir string,
	snapshots SnapshotPruner,
	snapshotRetention time.Duration,
	log zerolog.Logger,
	databases ...*database.DB,
) *MaintenanceJob {
	return &MaintenanceJob{
		databases:         databases,
		snapshots:         snapshots,
		snapshotRetention: snapshotRetention,
		dataDir:           dataDir,
		log:               log.With().Str("job", "daily_maintenance").Logger(),
	}
}

// Name returns the job name for scheduler
func (j *MaintenanceJob) Name() string {
	return "daily_maintenance"
}

// Run executes the maintenance job
func (j *MaintenanceJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	j.log.Info().Msg("Starting daily maintenance")
	startTime := time.Now()

	for _, db := range j.databases {
		if err := db.HealthCheck(ctx); err != nil {
			j.log.Error().Str("database", db.Name()).Err(err).Msg("CRITICAL: Database integrity check failed")
			return fmt.Errorf("CRITICAL: %s failed health check: %w", db.Name(), err)
		}

		if _, err := db.Conn().ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
			// Not critical
			j.log.Warn().Str("database", db.Name()).Err(err).Msg("WAL checkpoint failed")
		}
	}

	if err := j.checkDiskSpace(ctx); err != nil {
		return err
	}

	if j.snapshots != nil && j.snapshotRetention > 0 {
		removed, err := j.snapshots.Prune(time.Now().Add(-j.snapshotRetention))
		if err != nil {
			j.log.Warn().Err(err).Msg("Snapshot pruning failed")
		} else if removed > 0 {
			j.log.Info().Int64("rows", removed).Msg("Old position snapshots pruned")
		}
	}

	j.log.Info().
		Dur("duration_ms", time.Since(startTime)).
		Msg("Daily maintenance completed successfully")
	return nil
}

// checkDiskSpace halts on less than 500MB free in the data directory
func (j *MaintenanceJob) checkDiskSpace(ctx context.Context) error {
	usage, err := disk.UsageWithContext(ctx, j.dataDir)
	if err != nil {
		return fmt.Errorf("failed to stat filesystem: %w", err)
	}

	availableGB := float64(usage.Free) / 1e9
	j.log.Debug().Float64("available_gb", availableGB).Msg("Disk space check")

	switch {
	case usage.Free < criticalFreeBytes:
		j.log.Error().Float64("available_gb", availableGB).Msg("CRITICAL: Insufficient disk space")
		return fmt.Errorf("CRITICAL: only %.2f GB free in %s", availableGB, j.dataDir)
	case usage.Free < lowFreeBytes:
		j.log.Warn().Float64("available_gb", availableGB).Msg("Disk space running low")
	}
	return nil
}
