// Package indexdb keeps a small sqlite index of ticks and snapshot metadata
// so operators can inspect a run without decompressing the log stream.
// Writes are funneled through a single goroutine; the hot sim loop never
// blocks on the database.
package indexdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"
)

type TickRow struct {
	Tick          uint64
	SimMinutes    float64
	OperatingCost float64
	Effects       int
	Robots        int
}

type SnapshotRow struct {
	Tick   uint64
	Path   string
	Robots int
}

type Store struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

type reqKind int

const (
	reqTick reqKind = iota + 1
	reqSnapshot
)

type req struct {
	kind     reqKind
	tick     TickRow
	snapshot SnapshotRow
}

const schema = `
CREATE TABLE IF NOT EXISTS ticks (
	tick INTEGER PRIMARY KEY,
	sim_minutes REAL NOT NULL,
	operating_cost REAL NOT NULL,
	effects INTEGER NOT NULL,
	robots INTEGER NOT NULL,
	recorded_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS snapshots (
	tick INTEGER PRIMARY KEY,
	path TEXT NOT NULL,
	robots INTEGER NOT NULL,
	recorded_at TEXT NOT NULL
);
`

func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{db: db, ch: make(chan req, 256)}
	s.wg.Add(1)
	go s.writer()
	return s, nil
}

func (s *Store) writer() {
	defer s.wg.Done()
	for r := range s.ch {
		now := time.Now().UTC().Format(time.RFC3339Nano)
		switch r.kind {
		case reqTick:
			_, _ = s.db.Exec(
				`INSERT OR REPLACE INTO ticks (tick, sim_minutes, operating_cost, effects, robots, recorded_at) VALUES (?, ?, ?, ?, ?, ?)`,
				r.tick.Tick, r.tick.SimMinutes, r.tick.OperatingCost, r.tick.Effects, r.tick.Robots, now)
		case reqSnapshot:
			_, _ = s.db.Exec(
				`INSERT OR REPLACE INTO snapshots (tick, path, robots, recorded_at) VALUES (?, ?, ?, ?)`,
				r.snapshot.Tick, r.snapshot.Path, r.snapshot.Robots, now)
		}
	}
}

// RecordTick enqueues a tick row; drops it if the writer is backed up.
func (s *Store) RecordTick(row TickRow) {
	if s.closed.Load() {
		return
	}
	select {
	case s.ch <- req{kind: reqTick, tick: row}:
	default:
	}
}

// RecordSnapshot enqueues snapshot metadata; drops it if backed up.
func (s *Store) RecordSnapshot(row SnapshotRow) {
	if s.closed.Load() {
		return
	}
	select {
	case s.ch <- req{kind: reqSnapshot, snapshot: row}:
	default:
	}
}

// LatestSnapshot returns the most recent indexed snapshot path.
func (s *Store) LatestSnapshot() (SnapshotRow, bool, error) {
	var row SnapshotRow
	err := s.db.QueryRow(`SELECT tick, path, robots FROM snapshots ORDER BY tick DESC LIMIT 1`).
		Scan(&row.Tick, &row.Path, &row.Robots)
	if err == sql.ErrNoRows {
		return SnapshotRow{}, false, nil
	}
	if err != nil {
		return SnapshotRow{}, false, err
	}
	return row, true, nil
}

// TickCount reports how many ticks are indexed.
func (s *Store) TickCount() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM ticks`).Scan(&n)
	return n, err
}

func (s *Store) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}
