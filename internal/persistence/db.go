// Package persistence provides the SQLite journal: a write-mostly log of
// runs, events and periodic statistics. It never restores a simulation.
package persistence

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/orrery/internal/engine"
)

// DB wraps a SQLite connection. Writes after BeginRun are tagged with the
// run's ID.
type DB struct {
	conn  *sqlx.DB
	runID string
}

// Run describes one daemon run.
type Run struct {
	ID          string `db:"id" json:"id"`
	Seed        int64  `db:"seed" json:"seed"`
	Fingerprint string `db:"fingerprint" json:"fingerprint"`
	Bodies      int    `db:"bodies" json:"bodies"`
	StartedAt   string `db:"started_at" json:"started_at"`
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		fingerprint TEXT NOT NULL,
		bodies INTEGER NOT NULL,
		started_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS stats (
		run_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		ships INTEGER NOT NULL,
		miners INTEGER NOT NULL,
		traders INTEGER NOT NULL,
		pirates INTEGER NOT NULL,
		hunting INTEGER NOT NULL,
		station_stock INTEGER NOT NULL,
		in_flight INTEGER NOT NULL,
		spawned INTEGER NOT NULL,
		deliveries INTEGER NOT NULL,
		raids INTEGER NOT NULL,
		kills INTEGER NOT NULL,
		PRIMARY KEY (run_id, tick)
	);

	CREATE INDEX IF NOT EXISTS idx_events_run_tick ON events(run_id, tick);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// BeginRun records a new run and returns its ID.
func (db *DB) BeginRun(seed int64, fingerprint string, bodies int) (string, error) {
	id := uuid.NewString()
	_, err := db.conn.Exec(
		"INSERT INTO runs (id, seed, fingerprint, bodies, started_at) VALUES (?, ?, ?, ?, ?)",
		id, seed, fingerprint, bodies, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("begin run: %w", err)
	}
	db.runID = id
	return id, nil
}

// RunID returns the current run's ID, empty before BeginRun.
func (db *DB) RunID() string {
	return db.runID
}

// Runs lists recorded runs, newest first.
func (db *DB) Runs(limit int) ([]Run, error) {
	var runs []Run
	err := db.conn.Select(&runs,
		"SELECT id, seed, fingerprint, bodies, started_at FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?",
		limit,
	)
	return runs, err
}

// SaveEvents appends events to the current run.
func (db *DB) SaveEvents(events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex("INSERT INTO events (run_id, tick, description, category) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range events {
		if _, err := stmt.Exec(db.runID, e.Tick, e.Description, e.Category); err != nil {
			return fmt.Errorf("save event at tick %d: %w", e.Tick, err)
		}
	}

	return tx.Commit()
}

// SaveStats stores a statistics sample for the current run. A second
// sample for the same tick replaces the first.
func (db *DB) SaveStats(st engine.Stats) error {
	_, err := db.conn.NamedExec(`
		INSERT OR REPLACE INTO stats (
			run_id, tick, ships, miners, traders, pirates, hunting,
			station_stock, in_flight, spawned, deliveries, raids, kills
		) VALUES (
			:run_id, :tick, :ships, :miners, :traders, :pirates, :hunting,
			:station_stock, :in_flight, :spawned, :deliveries, :raids, :kills
		)`, statsRow{RunID: db.runID, Stats: st})
	if err != nil {
		return fmt.Errorf("save stats at tick %d: %w", st.Tick, err)
	}
	return nil
}

type statsRow struct {
	RunID string `db:"run_id"`
	engine.Stats
}

// RecentEvents returns the most recent N events of the current run.
func (db *DB) RecentEvents(limit int) ([]engine.Event, error) {
	var events []engine.Event
	err := db.conn.Select(&events,
		"SELECT tick, description, category FROM events WHERE run_id = ? ORDER BY id DESC LIMIT ?",
		db.runID, limit,
	)
	return events, err
}

// StatsHistory returns the current run's samples since the given tick,
// oldest first.
func (db *DB) StatsHistory(since uint64, limit int) ([]engine.Stats, error) {
	var rows []engine.Stats
	err := db.conn.Select(&rows, `
		SELECT tick, ships, miners, traders, pirates, hunting,
			station_stock, in_flight, spawned, deliveries, raids, kills
		FROM stats WHERE run_id = ? AND tick >= ? ORDER BY tick LIMIT ?`,
		db.runID, since, limit,
	)
	return rows, err
}
