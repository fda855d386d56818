// Package store provides the SQLite-backed ScheduleStore. The unique index
// on (microgrid_id, date) enforces at most one active schedule per
// microgrid and day; a new run for the same key replaces the previous one.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/kilianp07/microgrid/core/model"
	corestore "github.com/kilianp07/microgrid/core/store"
)

const schema = `CREATE TABLE IF NOT EXISTS schedules (
    id TEXT PRIMARY KEY,
    microgrid_id TEXT NOT NULL,
    date TEXT NOT NULL,
    mode TEXT NOT NULL,
    payload TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    UNIQUE(microgrid_id, date)
);`

// SQLiteStore persists schedules in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database and ensures the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// database/sql pooling plus sqlite file locking; a single writer keeps
	// replacement of an active schedule atomic.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Save implements ScheduleStore.
func (s *SQLiteStore) Save(ctx context.Context, sched *model.Schedule) (*model.Schedule, error) {
	cp := *sched
	cp.ID = uuid.NewString()
	cp.CreatedAt = time.Now().UTC()
	payload, err := json.Marshal(&cp)
	if err != nil {
		return nil, fmt.Errorf("encode schedule: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO schedules (id, microgrid_id, date, mode, payload, created_at)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(microgrid_id, date) DO UPDATE SET
            id = excluded.id,
            mode = excluded.mode,
            payload = excluded.payload,
            created_at = excluded.created_at`,
		cp.ID, cp.MicrogridID, corestore.DateKey(cp.Date), cp.Mode.String(), string(payload), cp.CreatedAt.UnixMilli())
	if err != nil {
		return nil, err
	}
	return &cp, nil
}

// Active implements ScheduleStore.
func (s *SQLiteStore) Active(ctx context.Context, microgridID string, date time.Time) (*model.Schedule, error) {
	row := s.db.QueryRowContext(ctx, `SELECT payload FROM schedules WHERE microgrid_id = ? AND date = ?`,
		microgridID, corestore.DateKey(date))
	var payload string
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, corestore.ErrNotFound
		}
		return nil, err
	}
	return decode(payload)
}

// List implements ScheduleStore.
func (s *SQLiteStore) List(ctx context.Context, microgridID string) ([]*model.Schedule, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM schedules WHERE microgrid_id = ? ORDER BY date`, microgridID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*model.Schedule
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		sched, err := decode(payload)
		if err != nil {
			return nil, err
		}
		out = append(out, sched)
	}
	return out, rows.Err()
}

// Close implements ScheduleStore.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func decode(payload string) (*model.Schedule, error) {
	var sched model.Schedule
	if err := json.Unmarshal([]byte(payload), &sched); err != nil {
		return nil, fmt.Errorf("decode schedule: %w", err)
	}
	return &sched, nil
}
