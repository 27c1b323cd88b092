package di

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/mt5-trader/internal/config"
	"github.com/aristath/mt5-trader/internal/modules/portfolio"
	"github.com/aristath/mt5-trader/internal/reliability"
	"github.com/aristath/mt5-trader/internal/scheduler"
)

// JobInstances holds the registered background jobs
type JobInstances struct {
	Scheduler   *scheduler.Scheduler
	Snapshot    *portfolio.SnapshotJob
	Maintenance *reliability.MaintenanceJob
	Backup      *reliability.BackupJob // nil when backups are disabled
}

// All returns every registered job
func (j *JobInstances) All() []scheduler.Job {
	jobs := []scheduler.Job{j.Snapshot, j.Maintenance}
	if j.Backup != nil {
		jobs = append(jobs, j.Backup)
	}
	return jobs
}

// RegisterJobs creates the background jobs and schedules them.
// The scheduler is returned stopped.
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) (*JobInstances, error) {
	jobs := &JobInstances{Scheduler: scheduler.New(log)}

	jobs.Snapshot = portfolio.NewSnapshotJob(container.Session, container.SnapshotRepo, cfg.CallTimeout)
	jobs.Snapshot.SetLogger(log)
	if err := jobs.Scheduler.AddJob(cfg.SnapshotSchedule, jobs.Snapshot); err != nil {
		return nil, fmt.Errorf("failed to register snapshot job: %w", err)
	}

	retention := time.Duration(cfg.SnapshotRetentionDays) * 24 * time.Hour
	jobs.Maintenance = reliability.NewMaintenanceJob(cfg.DataDir, container.SnapshotRepo, retention, log, container.Databases()...)
	if err := jobs.Scheduler.AddJob(cfg.MaintenanceSchedule, jobs.Maintenance); err != nil {
		return nil, fmt.Errorf("failed to register maintenance job: %w", err)
	}

	if container.BackupService != nil {
		jobs.Backup = reliability.NewBackupJob(container.BackupService, cfg.Backup.RetentionDays, log)
		if err := jobs.Scheduler.AddJob(cfg.Backup.Schedule, jobs.Backup); err != nil {
			return nil, fmt.Errorf("failed to register backup job: %w", err)
		}
	}

	return jobs, nil
}
