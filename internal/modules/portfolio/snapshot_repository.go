package portfolio

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/mt5-trader/internal/database"
	"github.com/aristath/mt5-trader/internal/domain"
)

const snapshotColumns = `ticket, symbol, type, volume, price_open, price_current,
	sl, tp, swap, profit, opened_at, magic, comment`

// SnapshotRepository stores position snapshots in portfolio.db
type SnapshotRepository struct {
	portfolioDB *sql.DB
	log         zerolog.Logger
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(portfolioDB *sql.DB, log zerolog.Logger) *SnapshotRepository {
	return &SnapshotRepository{
		portfolioDB: portfolioDB,
		log:         log.With().Str("repo", "snapshot").Logger(),
	}
}

// Save writes positions as one batch stamped with takenAt.
// An empty batch writes nothing.
func (r *SnapshotRepository) Save(takenAt time.Time, positions []domain.Position) error {
	if len(positions) == 0 {
		return nil
	}

	stamp := takenAt.UTC().UnixMilli()
	err := database.WithTransaction(r.portfolioDB, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`INSERT INTO position_snapshots (taken_at, ` + snapshotColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare snapshot insert: %w", err)
		}
		defer stmt.Close()

		for _, p := range positions {
			_, err := stmt.Exec(
				stamp,
				int64(p.Ticket),
				p.Symbol,
				int32(p.Type),
				p.Volume,
				p.PriceOpen,
				p.PriceCurrent,
				p.StopLoss,
				p.TakeProfit,
				p.Swap,
				p.Profit,
				p.Time.Unix(),
				int64(p.Magic),
				p.Comment,
			)
			if err != nil {
				return fmt.Errorf("failed to insert snapshot of position %d: %w", p.Ticket, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.log.Debug().
		Int("positions", len(positions)).
		Int64("taken_at", stamp).
		Msg("Position snapshot saved")
	return nil
}

// Latest returns the newest snapshot, or nil when none was taken yet.
func (r *SnapshotRepository) Latest() (*Snapshot, error) {
	var stamp sql.NullInt64
	if err := r.portfolioDB.QueryRow("SELECT MAX(taken_at) FROM position_snapshots").Scan(&stamp); err != nil {
		return nil, fmt.Errorf("failed to find latest snapshot: %w", err)
	}
	if !stamp.Valid {
		return nil, nil
	}

	rows, err := r.portfolioDB.Query(
		"SELECT "+snapshotColumns+" FROM position_snapshots WHERE taken_at = ? ORDER BY id",
		stamp.Int64,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}
	defer rows.Close()

	snapshot := &Snapshot{
		TakenAt:   time.UnixMilli(stamp.Int64).UTC(),
		Positions: []domain.Position{},
	}
	for rows.Next() {
		var (
			p             domain.Position
			ticket, magic int64
			positionType  int32
			openedAt      int64
		)
		err := rows.Scan(
			&ticket,
			&p.Symbol,
			&positionType,
			&p.Volume,
			&p.PriceOpen,
			&p.PriceCurrent,
			&p.StopLoss,
			&p.TakeProfit,
			&p.Swap,
			&p.Profit,
			&openedAt,
			&magic,
			&p.Comment,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot position: %w", err)
		}
		p.Ticket = uint64(ticket)
		p.Identifier = uint64(ticket)
		p.Magic = uint64(magic)
		p.Type = domain.PositionType(positionType)
		p.Time = time.Unix(openedAt, 0).UTC()
		snapshot.Positions = append(snapshot.Positions, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshot: %w", err)
	}

	return snapshot, nil
}

// Prune deletes snapshots older than cutoff and returns the rows removed.
func (r *SnapshotRepository) Prune(cutoff time.Time) (int64, error) {
	result, err := r.portfolioDB.Exec("DELETE FROM position_snapshots WHERE taken_at < ?", cutoff.UTC().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", err)
	}
	return result.RowsAffected()
}
