package explore

// HistoryStore is the durable, append-only record of every trial. The explore
// package defines the contract; the SQLite implementation lives in
// explore/history. The store behaves as a write-ahead log: a row may be
// updated in place only while its trial is in flight, and becomes immutable
// once the trial reaches a terminal status.
type HistoryStore interface {
	// Append durably writes the first record of a trial. Atomic with respect
	// to process crash. Fails on a duplicate trial index.
	Append(t *Trial) error
	// Update rewrites the row of an in-flight trial (status, timestamps,
	// final values). Updating a row already in a terminal state is an error.
	Update(t *Trial) error
	// Load replays all records in original commit order: terminal rows in the
	// order they were committed, then any rows left in flight by a crash.
	Load() ([]*Trial, error)
	// MaxIndex returns the highest trial index in the store, or -1 when empty.
	MaxIndex() (int, error)
	// Close flushes and releases the store.
	Close() error
}
