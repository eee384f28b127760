// Package history implements the durable history store of an exploration: a
// SQLite-backed write-ahead table with one row per trial, plus a YAML sidecar
// descriptor that makes a run self-describing for resume and diagnostics.
//
// Rows of in-flight trials are updated in place as their lifecycle advances;
// once a trial reaches a terminal status its row is immutable. Load replays
// rows in original commit order, which is what resume feeds back into the
// generator.
package history

import (
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/explore-sim/explore-sim/explore"
)

const (
	dbFile      = "history.db"
	sidecarFile = "exploration_parameters.yaml"
)

//go:embed schema.sql
var schemaSQL string

// Store is the SQLite-backed history store. It implements
// explore.HistoryStore and is owned by a single controller goroutine.
type Store struct {
	db   *sql.DB
	dir  string
	desc Descriptor
}

// Open creates or reopens the history store in dir. On a fresh directory the
// sidecar descriptor is written from desc; on an existing one the stored
// sidecar must match desc or Open fails with a resume mismatch. Opening an
// existing non-empty store without resume is refused rather than clobbered.
func Open(dir string, desc Descriptor, resume bool) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("history: creating %s: %w", dir, err)
	}

	sidecar := filepath.Join(dir, sidecarFile)
	if _, err := os.Stat(sidecar); err == nil {
		prior, err := ReadDescriptor(sidecar)
		if err != nil {
			return nil, err
		}
		if err := prior.Matches(desc); err != nil {
			return nil, err
		}
	} else {
		if resume {
			return nil, &explore.ResumeMismatchError{
				Detail: fmt.Sprintf("no descriptor sidecar at %s", sidecar),
			}
		}
		if err := WriteDescriptor(sidecar, desc); err != nil {
			return nil, err
		}
	}

	// WAL keeps every append atomic with respect to process crash.
	dsn := "file:" + filepath.Join(dir, dbFile) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("history: opening database: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: initializing schema: %w", err)
	}

	s := &Store{db: db, dir: dir, desc: desc}
	if !resume {
		n, err := s.count()
		if err != nil {
			db.Close()
			return nil, err
		}
		if n > 0 {
			db.Close()
			return nil, fmt.Errorf("history: %s already holds %d trials; set resume to continue it", dir, n)
		}
	}

	logrus.Debugf("history: store open at %s", dir)
	return s, nil
}

// Dir returns the exploration directory the store lives in.
func (s *Store) Dir() string { return s.dir }

// Descriptor returns the parameter/objective descriptor of this store.
func (s *Store) Descriptor() Descriptor { return s.desc }

func (s *Store) count() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM trials").Scan(&n); err != nil {
		return 0, fmt.Errorf("history: counting trials: %w", err)
	}
	return n, nil
}

// Append durably writes the first record of a trial. A single INSERT, so the
// write either fully lands or the prior state survives a crash.
func (s *Store) Append(t *explore.Trial) error {
	values, objectives, analyzed, err := encodeMaps(t)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		INSERT INTO trials (
			trial_index, sim_id, task, status, sim_worker, sim_ended,
			gen_started_time, sim_started_time, sim_ended_time,
			param_values, objectives, analyzed, fault, commit_seq
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Index, t.SimID, t.Task, string(t.Status), t.Worker, simEnded(t),
		unixMicro(t.GenStartedTime), unixMicro(t.SimStartedTime), unixMicro(t.SimEndedTime),
		values, objectives, analyzed, t.Fault, s.commitSeq(t))
	if err != nil {
		return fmt.Errorf("history: appending trial %d: %w", t.Index, err)
	}
	return nil
}

// Update rewrites the row of an in-flight trial. Rewriting a terminal row is
// an error: history is append-only once a trial has been committed.
func (s *Store) Update(t *explore.Trial) error {
	var status string
	err := s.db.QueryRow("SELECT status FROM trials WHERE trial_index = ?", t.Index).Scan(&status)
	if err == sql.ErrNoRows {
		return fmt.Errorf("history: updating unknown trial %d", t.Index)
	}
	if err != nil {
		return fmt.Errorf("history: reading trial %d: %w", t.Index, err)
	}
	if explore.TrialStatus(status).Terminal() {
		return fmt.Errorf("history: trial %d is already %s; terminal rows are immutable", t.Index, status)
	}

	values, objectives, analyzed, err := encodeMaps(t)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		UPDATE trials SET
			sim_id = ?, task = ?, status = ?, sim_worker = ?, sim_ended = ?,
			gen_started_time = ?, sim_started_time = ?, sim_ended_time = ?,
			param_values = ?, objectives = ?, analyzed = ?, fault = ?, commit_seq = ?
		WHERE trial_index = ?`,
		t.SimID, t.Task, string(t.Status), t.Worker, simEnded(t),
		unixMicro(t.GenStartedTime), unixMicro(t.SimStartedTime), unixMicro(t.SimEndedTime),
		values, objectives, analyzed, t.Fault, s.commitSeq(t), t.Index)
	if err != nil {
		return fmt.Errorf("history: updating trial %d: %w", t.Index, err)
	}
	return nil
}

// commitSeq returns the commit sequence value for a row write: the next
// sequence number for terminal rows, NULL while in flight.
func (s *Store) commitSeq(t *explore.Trial) any {
	if !t.Status.Terminal() {
		return nil
	}
	var maxSeq sql.NullInt64
	// Single-writer store: no race between read and the following write.
	if err := s.db.QueryRow("SELECT MAX(commit_seq) FROM trials").Scan(&maxSeq); err != nil {
		logrus.Errorf("history: reading commit sequence: %v", err)
	}
	return maxSeq.Int64 + 1
}

// Load replays all records in original commit order: committed rows first, in
// commit order, then rows a crash left in flight, by trial index.
func (s *Store) Load() ([]*explore.Trial, error) {
	rows, err := s.db.Query(`
		SELECT trial_index, sim_id, task, status, sim_worker,
			gen_started_time, sim_started_time, sim_ended_time,
			param_values, objectives, analyzed, fault
		FROM trials
		ORDER BY (commit_seq IS NULL), commit_seq, trial_index`)
	if err != nil {
		return nil, fmt.Errorf("history: loading trials: %w", err)
	}
	defer rows.Close()

	var trials []*explore.Trial
	for rows.Next() {
		t, err := scanTrial(rows)
		if err != nil {
			return nil, err
		}
		trials = append(trials, t)
	}
	return trials, rows.Err()
}

// MaxIndex returns the highest trial index in the store, or -1 when empty.
func (s *Store) MaxIndex() (int, error) {
	var idx sql.NullInt64
	if err := s.db.QueryRow("SELECT MAX(trial_index) FROM trials").Scan(&idx); err != nil {
		return -1, fmt.Errorf("history: reading max index: %w", err)
	}
	if !idx.Valid {
		return -1, nil
	}
	return int(idx.Int64), nil
}

// Close flushes and releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func simEnded(t *explore.Trial) int {
	if t.Status == explore.StatusCompleted || t.Status == explore.StatusFailed {
		return 1
	}
	return 0
}

func unixMicro(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMicro()
}

func fromUnixMicro(us int64) time.Time {
	if us == 0 {
		return time.Time{}
	}
	return time.UnixMicro(us)
}

func encodeMaps(t *explore.Trial) (values, objectives, analyzed string, err error) {
	v, err := json.Marshal(orEmpty(t.Values))
	if err != nil {
		return "", "", "", fmt.Errorf("history: encoding values of trial %d: %w", t.Index, err)
	}
	o, err := json.Marshal(orEmpty(t.Objectives))
	if err != nil {
		return "", "", "", fmt.Errorf("history: encoding objectives of trial %d: %w", t.Index, err)
	}
	a, err := json.Marshal(orEmpty(t.Analyzed))
	if err != nil {
		return "", "", "", fmt.Errorf("history: encoding analyzed values of trial %d: %w", t.Index, err)
	}
	return string(v), string(o), string(a), nil
}

func orEmpty(m map[string]float64) map[string]float64 {
	if m == nil {
		return map[string]float64{}
	}
	return m
}

func scanTrial(rows *sql.Rows) (*explore.Trial, error) {
	var (
		t                            explore.Trial
		status                       string
		genStarted, simStart, simEnd int64
		values, objectives, analyzed string
	)
	err := rows.Scan(&t.Index, &t.SimID, &t.Task, &status, &t.Worker,
		&genStarted, &simStart, &simEnd, &values, &objectives, &analyzed, &t.Fault)
	if err != nil {
		return nil, fmt.Errorf("history: scanning trial row: %w", err)
	}
	t.Status = explore.TrialStatus(status)
	t.GenStartedTime = fromUnixMicro(genStarted)
	t.SimStartedTime = fromUnixMicro(simStart)
	t.SimEndedTime = fromUnixMicro(simEnd)
	if err := json.Unmarshal([]byte(values), &t.Values); err != nil {
		return nil, fmt.Errorf("history: decoding values of trial %d: %w", t.Index, err)
	}
	if err := json.Unmarshal([]byte(objectives), &t.Objectives); err != nil {
		return nil, fmt.Errorf("history: decoding objectives of trial %d: %w", t.Index, err)
	}
	if err := json.Unmarshal([]byte(analyzed), &t.Analyzed); err != nil {
		return nil, fmt.Errorf("history: decoding analyzed values of trial %d: %w", t.Index, err)
	}
	return &t, nil
}
