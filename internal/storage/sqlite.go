package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dshills/filescout-mcp/pkg/types"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = errors.New("not found")
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode so the CLI can read while a server writes
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(1) // SQLite benefits from single writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage creates a new SQLite storage instance
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Apply migrations
	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// SchemaVersion returns the applied schema version
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (string, error) {
	return SchemaVersion(ctx, s.db)
}

// BeginTx starts a new transaction
func (s *SQLiteStorage) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// sqliteTx wraps a SQL transaction
type sqliteTx struct {
	tx *sql.Tx
}

func (t *sqliteTx) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTx) Rollback() error {
	return t.tx.Rollback()
}

// Settings slot operations

func getSlot(ctx context.Context, q querier, number int) (*types.SettingSlot, error) {
	var (
		name string
		raw  string
	)
	err := q.QueryRowContext(ctx,
		"SELECT name, settings FROM settings_slots WHERE number = ?", number,
	).Scan(&name, &raw)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get slot %d: %w", number, err)
	}

	slot := &types.SettingSlot{Number: number, Name: name}
	if err := json.Unmarshal([]byte(raw), &slot.Val); err != nil {
		return nil, fmt.Errorf("failed to decode slot %d: %w", number, err)
	}
	return slot, nil
}

func putSlot(ctx context.Context, q querier, slot *types.SettingSlot) error {
	raw, err := json.Marshal(slot.Val)
	if err != nil {
		return fmt.Errorf("failed to encode slot %d: %w", slot.Number, err)
	}

	query := `
		INSERT INTO settings_slots (number, name, settings, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(number) DO UPDATE SET
			name = excluded.name,
			settings = excluded.settings,
			updated_at = excluded.updated_at
	`
	if _, err := q.ExecContext(ctx, query, slot.Number, slot.Name, string(raw), time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("failed to save slot %d: %w", slot.Number, err)
	}
	return nil
}

func listSlots(ctx context.Context, q querier) ([]*types.SettingSlot, error) {
	rows, err := q.QueryContext(ctx, "SELECT number, name, settings FROM settings_slots ORDER BY number")
	if err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}
	defer rows.Close()

	var slots []*types.SettingSlot
	for rows.Next() {
		var (
			slot types.SettingSlot
			raw  string
		)
		if err := rows.Scan(&slot.Number, &slot.Name, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan slot: %w", err)
		}
		if err := json.Unmarshal([]byte(raw), &slot.Val); err != nil {
			return nil, fmt.Errorf("failed to decode slot %d: %w", slot.Number, err)
		}
		slots = append(slots, &slot)
	}
	return slots, rows.Err()
}

// Search history operations

func recordRun(ctx context.Context, q querier, run types.SearchRun) error {
	opts, err := json.Marshal(run.Options)
	if err != nil {
		return fmt.Errorf("failed to encode run options: %w", err)
	}

	var errText sql.NullString
	if run.Error != "" {
		errText = sql.NullString{String: run.Error, Valid: true}
	}

	query := `
		INSERT INTO search_runs (
			process_id, keyword, directory, options, started_at, ended_at,
			result_count, cache_hits, status, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = q.ExecContext(ctx, query,
		run.ProcessID, run.Keyword, run.Directory, string(opts),
		run.StartedAt.UnixMilli(), run.EndedAt.UnixMilli(),
		run.ResultCount, run.CacheHits, string(run.Status), errText)
	if err != nil {
		return fmt.Errorf("failed to record search run: %w", err)
	}
	return nil
}

func listRuns(ctx context.Context, q querier, limit int) ([]types.SearchRun, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, process_id, keyword, directory, options, started_at, ended_at,
		       result_count, cache_hits, status, error
		FROM search_runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`
	rows, err := q.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list search runs: %w", err)
	}
	defer rows.Close()

	var runs []types.SearchRun
	for rows.Next() {
		var (
			run            types.SearchRun
			opts           string
			started, ended int64
			status         string
			errText        sql.NullString
		)
		if err := rows.Scan(&run.ID, &run.ProcessID, &run.Keyword, &run.Directory, &opts,
			&started, &ended, &run.ResultCount, &run.CacheHits, &status, &errText); err != nil {
			return nil, fmt.Errorf("failed to scan search run: %w", err)
		}
		if err := json.Unmarshal([]byte(opts), &run.Options); err != nil {
			return nil, fmt.Errorf("failed to decode options of run %d: %w", run.ID, err)
		}
		run.StartedAt = time.UnixMilli(started)
		run.EndedAt = time.UnixMilli(ended)
		run.Status = types.RunStatus(status)
		run.Error = errText.String
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func pruneRuns(ctx context.Context, q querier, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	query := `
		DELETE FROM search_runs WHERE id NOT IN (
			SELECT id FROM search_runs ORDER BY started_at DESC, id DESC LIMIT ?
		)
	`
	result, err := q.ExecContext(ctx, query, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune search runs: %w", err)
	}
	return result.RowsAffected()
}

// Database methods

func (s *SQLiteStorage) GetSlot(ctx context.Context, number int) (*types.SettingSlot, error) {
	return getSlot(ctx, s.db, number)
}

func (s *SQLiteStorage) PutSlot(ctx context.Context, slot *types.SettingSlot) error {
	return putSlot(ctx, s.db, slot)
}

func (s *SQLiteStorage) ListSlots(ctx context.Context) ([]*types.SettingSlot, error) {
	return listSlots(ctx, s.db)
}

func (s *SQLiteStorage) RecordRun(ctx context.Context, run types.SearchRun) error {
	return recordRun(ctx, s.db, run)
}

func (s *SQLiteStorage) ListRuns(ctx context.Context, limit int) ([]types.SearchRun, error) {
	return listRuns(ctx, s.db, limit)
}

func (s *SQLiteStorage) PruneRuns(ctx context.Context, keep int) (int64, error) {
	return pruneRuns(ctx, s.db, keep)
}

// Transaction methods

func (t *sqliteTx) GetSlot(ctx context.Context, number int) (*types.SettingSlot, error) {
	return getSlot(ctx, t.tx, number)
}

func (t *sqliteTx) PutSlot(ctx context.Context, slot *types.SettingSlot) error {
	return putSlot(ctx, t.tx, slot)
}

func (t *sqliteTx) ListSlots(ctx context.Context) ([]*types.SettingSlot, error) {
	return listSlots(ctx, t.tx)
}

func (t *sqliteTx) RecordRun(ctx context.Context, run types.SearchRun) error {
	return recordRun(ctx, t.tx, run)
}

func (t *sqliteTx) ListRuns(ctx context.Context, limit int) ([]types.SearchRun, error) {
	return listRuns(ctx, t.tx, limit)
}

func (t *sqliteTx) PruneRuns(ctx context.Context, keep int) (int64, error) {
	return pruneRuns(ctx, t.tx, keep)
}
