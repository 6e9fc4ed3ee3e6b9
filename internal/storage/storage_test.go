package storage

import (
	"os"
	"testing"
	"time"
)

func TestDefaultEngineOptions(t *testing.T) {
	opts := DefaultEngineOptions()
	if opts.HashMB != 64 {
		t.Errorf("expected default hash 64MB, got %d", opts.HashMB)
	}
	if opts.Contempt != 0 {
		t.Errorf("expected default contempt 0, got %d", opts.Contempt)
	}
	if !opts.UseNNUE {
		t.Errorf("expected NNUE enabled by default")
	}
}

func TestBenchStatsRecordRun(t *testing.T) {
	stats := &BenchStats{}

	stats.recordRun(BenchRun{Timestamp: time.Unix(0, 0), Nodes: 1000, NPS: 500})
	stats.recordRun(BenchRun{Timestamp: time.Unix(1, 0), Nodes: 2000, NPS: 1500})

	if len(stats.Runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(stats.Runs))
	}
	if stats.BestNPS != 1500 {
		t.Errorf("expected best NPS 1500, got %d", stats.BestNPS)
	}

	for i := 0; i < maxBenchHistory+5; i++ {
		stats.recordRun(BenchRun{NPS: uint64(i)})
	}
	if len(stats.Runs) != maxBenchHistory {
		t.Errorf("expected history trimmed to %d, got %d", maxBenchHistory, len(stats.Runs))
	}
}

func TestStoragePersistence(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "chessplay-storage-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	t.Setenv("XDG_DATA_HOME", tmpDir)

	s, err := NewStorage()
	if err != nil {
		t.Fatalf("NewStorage failed: %v", err)
	}
	defer s.Close()

	opts := DefaultEngineOptions()
	opts.HashMB = 256
	opts.Contempt = 15
	if err := s.SaveOptions(opts); err != nil {
		t.Fatalf("SaveOptions failed: %v", err)
	}

	loaded, err := s.LoadOptions()
	if err != nil {
		t.Fatalf("LoadOptions failed: %v", err)
	}
	if loaded.HashMB != 256 || loaded.Contempt != 15 {
		t.Errorf("loaded options mismatch: %+v", loaded)
	}

	if err := s.RecordBenchRun(BenchRun{Nodes: 12345, NPS: 999}); err != nil {
		t.Fatalf("RecordBenchRun failed: %v", err)
	}
	benchStats, err := s.LoadBenchStats()
	if err != nil {
		t.Fatalf("LoadBenchStats failed: %v", err)
	}
	if len(benchStats.Runs) != 1 || benchStats.Runs[0].Nodes != 12345 {
		t.Errorf("expected 1 persisted bench run with 12345 nodes, got %+v", benchStats.Runs)
	}
}

func TestDataPaths(t *testing.T) {
	dataDir, err := GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir failed: %v", err)
	}
	if dataDir == "" {
		t.Error("GetDataDir returned empty path")
	}

	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		t.Errorf("data directory was not created: %s", dataDir)
	}

	t.Logf("data directory: %s", dataDir)
}
