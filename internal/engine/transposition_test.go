package engine

import (
	"testing"

	"github.com/hailam/chessplay/internal/board"
)

func TestTranspositionStoreProbe(t *testing.T) {
	tt := NewTranspositionTable(1)

	pos := board.NewPosition()
	move := board.NewMove(board.E2, board.E4)

	tt.Store(pos.Hash, 6, 150, TTExact, move, true)

	entry, found := tt.Probe(pos.Hash)
	if !found {
		t.Fatal("expected a hit after store")
	}
	if entry.BestMove != move {
		t.Errorf("expected best move %s, got %s", move.String(), entry.BestMove.String())
	}
	if entry.Score != 150 {
		t.Errorf("expected score 150, got %d", entry.Score)
	}
	if entry.Depth != 6 {
		t.Errorf("expected depth 6, got %d", entry.Depth)
	}
	if entry.Flag != TTExact {
		t.Errorf("expected TTExact, got %v", entry.Flag)
	}
	if !entry.IsPV {
		t.Error("expected IsPV to be true")
	}
}

func TestTranspositionProbeMiss(t *testing.T) {
	tt := NewTranspositionTable(1)

	_, found := tt.Probe(0xdeadbeefcafebabe)
	if found {
		t.Error("expected a miss on an empty table")
	}
}

func TestTranspositionPreservesMoveOnUpgrade(t *testing.T) {
	tt := NewTranspositionTable(1)

	pos := board.NewPosition()
	move := board.NewMove(board.E2, board.E4)

	tt.Store(pos.Hash, 4, 100, TTExact, move, false)
	// A deeper store for the same key with no best move (e.g. an
	// all-node research) should keep the previous move rather than
	// clobbering it with NoMove, per spec §4.G.
	tt.Store(pos.Hash, 8, 90, TTUpperBound, board.NoMove, false)

	entry, found := tt.Probe(pos.Hash)
	if !found {
		t.Fatal("expected a hit")
	}
	if entry.BestMove != move {
		t.Errorf("expected preserved move %s, got %s", move.String(), entry.BestMove.String())
	}
	if entry.Depth != 8 {
		t.Errorf("expected depth updated to 8, got %d", entry.Depth)
	}
}

func TestTranspositionClearAndNewSearch(t *testing.T) {
	tt := NewTranspositionTable(1)

	pos := board.NewPosition()
	move := board.NewMove(board.E2, board.E4)
	tt.Store(pos.Hash, 4, 100, TTExact, move, false)

	tt.NewSearch()
	if _, found := tt.Probe(pos.Hash); !found {
		t.Fatal("expected entry to survive NewSearch (only the age changes)")
	}

	tt.Clear()
	if _, found := tt.Probe(pos.Hash); found {
		t.Error("expected a miss after Clear")
	}
}

func TestAdjustScoreToFromTT(t *testing.T) {
	ply := 3
	mateScore := MateScore - 5

	toTT := AdjustScoreToTT(mateScore, ply)
	fromTT := AdjustScoreFromTT(toTT, ply)

	if fromTT != mateScore {
		t.Errorf("round-trip mismatch: got %d, want %d", fromTT, mateScore)
	}
}
