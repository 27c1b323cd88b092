package portfolio

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/mt5-trader/internal/domain"
)

// PositionReader lists open positions. *mt5.Session implements it.
type PositionReader interface {
	OpenPositions(ctx context.Context) ([]domain.Position, error)
}

// SnapshotStore persists snapshots
type SnapshotStore interface {
	Save(takenAt time.Time, positions []domain.Position) error
}

var _ SnapshotStore = (*SnapshotRepository)(nil)

// SnapshotJob copies the open positions into portfolio.db
type SnapshotJob struct {
	positions PositionReader
	store     SnapshotStore
	timeout   time.Duration
	now       func() time.Time
	log       zerolog.Logger
}

// NewSnapshotJob creates a new snapshot job. timeout bounds one terminal read;
// zero means 30 seconds.
func NewSnapshotJob(positions PositionReader, store SnapshotStore, timeout time.Duration) *SnapshotJob {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SnapshotJob{
		positions: positions,
		store:     store,
		timeout:   timeout,
		now:       time.Now,
		log:       zerolog.Nop(),
	}
}

// SetLogger sets the logger for the job
func (j *SnapshotJob) SetLogger(log zerolog.Logger) {
	j.log = log.With().Str("job", j.Name()).Logger()
}

// Name returns the job name
func (j *SnapshotJob) Name() string {
	return "position_snapshot"
}

// Run executes the snapshot job
func (j *SnapshotJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	positions, err := j.positions.OpenPositions(ctx)
	if err != nil {
		return fmt.Errorf("failed to read open positions: %w", err)
	}

	if len(positions) == 0 {
		j.log.Debug().Msg("No open positions")
		return nil
	}

	if err := j.store.Save(j.now(), positions); err != nil {
		return err
	}

	j.log.Info().Int("positions", len(positions)).Msg("Position snapshot taken")
	return nil
}
