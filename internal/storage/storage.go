// Package storage provides persistent storage for UCI engine options and
// bench-run statistics, backed by BadgerDB.
package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/badger/v4"
)

// Storage keys
const (
	keyOptions    = "engine_options"
	keyBenchStats = "bench_stats"
)

// positionBenchKey derives a fixed-size badger key for a per-FEN bench
// record from its full FEN string, the same xxhash-keying idiom badger's
// own value-log index uses internally for arbitrary-length keys.
func positionBenchKey(fen string) []byte {
	return []byte(fmt.Sprintf("pos_bench:%016x", xxhash.Sum64String(fen)))
}

// EngineOptions stores the UCI option values that should survive restarts
// of the engine process (spec §6's UCI options: Hash, Threads, Contempt,
// the Syzygy configuration, and the NNUE toggle), so a GUI that never
// re-sends "setoption" after the first launch still gets the user's last
// configuration.
type EngineOptions struct {
	HashMB           int    `json:"hash_mb"`
	Threads          int    `json:"threads"`
	Contempt         int    `json:"contempt"`
	UseNNUE          bool   `json:"use_nnue"`
	SyzygyPath       string `json:"syzygy_path"`
	SyzygyProbeDepth int    `json:"syzygy_probe_depth"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// DefaultEngineOptions returns the engine's built-in defaults.
func DefaultEngineOptions() *EngineOptions {
	return &EngineOptions{
		HashMB:           64,
		Threads:          1,
		Contempt:         0,
		UseNNUE:          true,
		SyzygyProbeDepth: 0,
	}
}

// BenchRun records the outcome of a single "bench" command invocation.
type BenchRun struct {
	Timestamp time.Time     `json:"timestamp"`
	Nodes     uint64        `json:"nodes"`
	Elapsed   time.Duration `json:"elapsed"`
	NPS       uint64        `json:"nps"`
	Positions int           `json:"positions"`
	Depth     int           `json:"depth"`
}

// BenchStats aggregates bench history across runs, bounded to a rolling
// window so the record doesn't grow without limit across a long testing
// session.
type BenchStats struct {
	Runs    []BenchRun `json:"runs"`
	BestNPS uint64     `json:"best_nps"`
}

const maxBenchHistory = 50

// recordRun appends a run, trims to maxBenchHistory, and tracks the peak NPS.
func (bs *BenchStats) recordRun(run BenchRun) {
	bs.Runs = append(bs.Runs, run)
	if len(bs.Runs) > maxBenchHistory {
		bs.Runs = bs.Runs[len(bs.Runs)-maxBenchHistory:]
	}
	if run.NPS > bs.BestNPS {
		bs.BestNPS = run.NPS
	}
}

// Storage wraps BadgerDB for persistent storage of engine configuration
// and bench history.
type Storage struct {
	db *badger.DB
}

// NewStorage creates a new storage instance rooted at the platform data dir.
func NewStorage() (*Storage, error) {
	dbDir, err := GetDatabaseDir()
	if err != nil {
		return nil, err
	}

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = nil // Disable logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Storage{db: db}, nil
}

// Close closes the database.
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveOptions persists the current UCI option values.
func (s *Storage) SaveOptions(opts *EngineOptions) error {
	opts.UpdatedAt = time.Now()

	data, err := json.Marshal(opts)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyOptions), data)
	})
}

// LoadOptions loads the last persisted UCI option values, or the engine's
// built-in defaults if none were ever saved.
func (s *Storage) LoadOptions() (*EngineOptions, error) {
	opts := DefaultEngineOptions()

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyOptions))
		if err == badger.ErrKeyNotFound {
			return nil // Use defaults
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, opts)
		})
	})

	return opts, err
}

// SaveBenchStats persists the bench-run history.
func (s *Storage) SaveBenchStats(stats *BenchStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyBenchStats), data)
	})
}

// LoadBenchStats loads the bench-run history, or an empty record if none
// exists yet.
func (s *Storage) LoadBenchStats() (*BenchStats, error) {
	stats := &BenchStats{}

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyBenchStats))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, stats)
		})
	})

	return stats, err
}

// RecordBenchRun loads the bench history, appends run, and saves it back.
func (s *Storage) RecordBenchRun(run BenchRun) error {
	stats, err := s.LoadBenchStats()
	if err != nil {
		return err
	}

	stats.recordRun(run)

	return s.SaveBenchStats(stats)
}

// PositionBenchRun records a single "bench" position's outcome, keyed by
// its FEN, so repeated runs can be compared position-by-position instead
// of only in aggregate.
type PositionBenchRun struct {
	Timestamp time.Time `json:"timestamp"`
	Nodes     uint64    `json:"nodes"`
	NPS       uint64    `json:"nps"`
	Depth     int       `json:"depth"`
}

// SavePositionBench persists the latest bench outcome for one FEN.
func (s *Storage) SavePositionBench(fen string, run PositionBenchRun) error {
	data, err := json.Marshal(run)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(positionBenchKey(fen), data)
	})
}

// LoadPositionBench returns the last persisted bench outcome for one FEN,
// or nil if that position has never been benched.
func (s *Storage) LoadPositionBench(fen string) (*PositionBenchRun, error) {
	var run *PositionBenchRun

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(positionBenchKey(fen))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			run = &PositionBenchRun{}
			return json.Unmarshal(val, run)
		})
	})

	return run, err
}
