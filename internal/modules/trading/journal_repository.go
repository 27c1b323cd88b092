package trading

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// JournalRepository handles order journal database operations
type JournalRepository struct {
	ledgerDB *sql.DB // ledger.db - order_journal table
	log      zerolog.Logger
}

// journalColumns is the list of columns for the order_journal table
// Column order must match scanEntry()
const journalColumns = `id, action, symbol, order_type, volume, price, sl, tp, order_ticket, position_ticket,
	comment, retcode, result_order, result_deal, result_comment, success, error, outcome_unknown, created_at`

// NewJournalRepository creates a new journal repository
func NewJournalRepository(ledgerDB *sql.DB, log zerolog.Logger) *JournalRepository {
	return &JournalRepository{
		ledgerDB: ledgerDB,
		log:      log.With().Str("repo", "order_journal").Logger(),
	}
}

// Create inserts an entry. A missing ID or timestamp is filled in and the
// stored entry is returned.
func (r *JournalRepository) Create(entry JournalEntry) (JournalEntry, error) {
	if entry.Action == "" {
		return JournalEntry{}, fmt.Errorf("failed to create journal entry: action is required")
	}
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	entry.Symbol = strings.ToUpper(strings.TrimSpace(entry.Symbol))

	query := `
		INSERT INTO order_journal
		(` + journalColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.ledgerDB.Exec(query,
		entry.ID,
		entry.Action,
		entry.Symbol,
		entry.OrderType,
		entry.Volume,
		entry.Price,
		entry.SL,
		entry.TP,
		int64(entry.OrderTicket),
		int64(entry.PositionTicket),
		entry.Comment,
		int64(entry.Retcode),
		int64(entry.ResultOrder),
		int64(entry.ResultDeal),
		entry.ResultComment,
		entry.Success,
		entry.Error,
		entry.OutcomeUnknown,
		entry.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return JournalEntry{}, fmt.Errorf("failed to create journal entry: %w", err)
	}

	r.log.Debug().
		Str("id", entry.ID).
		Str("action", entry.Action).
		Str("symbol", entry.Symbol).
		Uint32("retcode", entry.Retcode).
		Msg("Journal entry created")

	return entry, nil
}

// GetByID retrieves one entry, or nil when it does not exist.
func (r *JournalRepository) GetByID(id string) (*JournalEntry, error) {
	rows, err := r.ledgerDB.Query("SELECT "+journalColumns+" FROM order_journal WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get journal entry: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	entry, err := scanEntry(rows)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetHistory retrieves the most recent entries, newest first.
func (r *JournalRepository) GetHistory(limit int) ([]JournalEntry, error) {
	rows, err := r.ledgerDB.Query(
		"SELECT "+journalColumns+" FROM order_journal ORDER BY created_at DESC, rowid DESC LIMIT ?",
		normalizeLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get journal history: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

// GetBySymbol retrieves the most recent entries for a symbol, newest first.
func (r *JournalRepository) GetBySymbol(symbol string, limit int) ([]JournalEntry, error) {
	rows, err := r.ledgerDB.Query(
		"SELECT "+journalColumns+" FROM order_journal WHERE symbol = ? ORDER BY created_at DESC, rowid DESC LIMIT ?",
		strings.ToUpper(strings.TrimSpace(symbol)),
		normalizeLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get journal for %s: %w", symbol, err)
	}
	defer rows.Close()

	return scanEntries(rows)
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}

func scanEntries(rows *sql.Rows) ([]JournalEntry, error) {
	entries := make([]JournalEntry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating journal entries: %w", err)
	}
	return entries, nil
}

func scanEntry(rows *sql.Rows) (JournalEntry, error) {
	var (
		entry                                  JournalEntry
		orderTicket, positionTicket, retcode   int64
		resultOrder, resultDeal, createdMillis int64
	)

	err := rows.Scan(
		&entry.ID,
		&entry.Action,
		&entry.Symbol,
		&entry.OrderType,
		&entry.Volume,
		&entry.Price,
		&entry.SL,
		&entry.TP,
		&orderTicket,
		&positionTicket,
		&entry.Comment,
		&retcode,
		&resultOrder,
		&resultDeal,
		&entry.ResultComment,
		&entry.Success,
		&entry.Error,
		&entry.OutcomeUnknown,
		&createdMillis,
	)
	if err != nil {
		return JournalEntry{}, fmt.Errorf("failed to scan journal entry: %w", err)
	}

	entry.OrderTicket = uint64(orderTicket)
	entry.PositionTicket = uint64(positionTicket)
	entry.Retcode = uint32(retcode)
	entry.ResultOrder = uint64(resultOrder)
	entry.ResultDeal = uint64(resultDeal)
	entry.CreatedAt = time.UnixMilli(createdMillis).UTC()

	return entry, nil
}
