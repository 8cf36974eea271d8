package sinks

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/haverstock/trialseq"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id     TEXT PRIMARY KEY,
	started_at TEXT NOT NULL,
	extra_json TEXT
);

CREATE TABLE IF NOT EXISTS trial_data (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id      TEXT NOT NULL,
	trial_n     INTEGER NOT NULL,
	key         TEXT NOT NULL,
	value_json  TEXT,
	recorded_at TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);

CREATE INDEX IF NOT EXISTS idx_trial_data_run
	ON trial_data(run_id, trial_n);
`

// SQLite records trial data into a SQLite database, one row per
// (trial, key) pair, grouped under a per-run UUID. Values are stored
// as JSON so arbitrary response payloads round-trip.
//
// AddData is fire-and-forget, as the handler contract requires: a
// failed insert is remembered and exposed through [SQLite.Err] but
// never interrupts the sequence.
type SQLite struct {
	db    *sql.DB
	runID string
	time  trialseq.TimeProvider

	mu      sync.Mutex
	trialN  int
	lastErr error
}

// OpenSQLite opens (creating if needed) the database at path, runs
// migrations, and registers a new run. A nil TimeProvider uses the
// system clock. The caller owns the returned sink and must Close it.
func OpenSQLite(path string, tp trialseq.TimeProvider) (*SQLite, error) {
	if tp == nil {
		tp = trialseq.NewDefaultTimeProvider()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	s := &SQLite{
		db:    db,
		runID: uuid.NewString(),
		time:  tp,
	}
	_, err = db.Exec(
		`INSERT INTO runs (run_id, started_at) VALUES (?, ?)`,
		s.runID, tp.Format(time.RFC3339Nano))
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("register run: %w", err)
	}
	return s, nil
}

// RecordSession attaches session metadata (the handler's ExtraInfo)
// to the run row.
func (s *SQLite) RecordSession(extra trialseq.Row) error {
	payload, err := json.Marshal(extra)
	if err != nil {
		return fmt.Errorf("marshal session info: %w", err)
	}
	_, err = s.db.Exec(
		`UPDATE runs SET extra_json = ? WHERE run_id = ?`,
		string(payload), s.runID)
	if err != nil {
		return fmt.Errorf("record session: %w", err)
	}
	return nil
}

// AddData inserts one datum for the current trial. Best-effort:
// failures are stored, not returned.
func (s *SQLite) AddData(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(value)
	if err != nil {
		s.lastErr = fmt.Errorf("marshal %q: %w", key, err)
		return
	}
	_, err = s.db.Exec(
		`INSERT INTO trial_data (run_id, trial_n, key, value_json, recorded_at)
		 VALUES (?, ?, ?, ?, ?)`,
		s.runID, s.trialN, key, string(payload),
		s.time.Format(time.RFC3339Nano))
	if err != nil {
		s.lastErr = fmt.Errorf("insert %q: %w", key, err)
	}
}

// NextEntry moves recording to the next trial number.
func (s *SQLite) NextEntry() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trialN++
}

// Err returns the most recent write failure, nil if all writes
// succeeded.
func (s *SQLite) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// RunID returns the UUID this run's data is grouped under.
func (s *SQLite) RunID() string {
	return s.runID
}

// DB exposes the underlying database for report queries.
func (s *SQLite) DB() *sql.DB {
	return s.db
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Datum is one recorded (trial, key, value) row read back from the
// database.
type Datum struct {
	TrialN     int
	Key        string
	Value      any
	RecordedAt string
}

// Recorded reads back every datum of this run in insertion order.
// Intended for reports and tests, not the hot recording path.
func (s *SQLite) Recorded() ([]Datum, error) {
	rows, err := s.db.Query(
		`SELECT trial_n, key, value_json, recorded_at
		 FROM trial_data WHERE run_id = ? ORDER BY id`,
		s.runID)
	if err != nil {
		return nil, fmt.Errorf("query trial data: %w", err)
	}
	defer rows.Close()

	var out []Datum
	for rows.Next() {
		var (
			d       Datum
			payload string
		)
		if err := rows.Scan(
			&d.TrialN, &d.Key, &payload, &d.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan trial data: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &d.Value); err != nil {
			return nil, fmt.Errorf("decode %q: %w", d.Key, err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Compile-time check that SQLite implements trialseq.EntrySink.
var _ trialseq.EntrySink = (*SQLite)(nil)
