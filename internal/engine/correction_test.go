package engine

import (
	"testing"

	"github.com/hailam/chessplay/internal/board"
)

func TestCorrectionHistoryZeroInitially(t *testing.T) {
	ch := NewCorrectionHistory()
	pos := board.NewPosition()

	if got := ch.Get(pos); got != 0 {
		t.Errorf("expected 0 correction on an untouched table, got %d", got)
	}
}

func TestCorrectionHistoryUpdateMovesTowardError(t *testing.T) {
	ch := NewCorrectionHistory()
	pos := board.NewPosition()

	// The search found the position 80cp better than the static eval
	// said; repeated updates should push the correction toward that
	// error, and Get()'s correction should reduce the gap.
	const searchScore = 180
	const staticEval = 100

	before := staticEval + ch.Get(pos)
	for i := 0; i < 64; i++ {
		ch.Update(pos, searchScore, staticEval, 8)
	}
	after := staticEval + ch.Get(pos)

	if after <= before {
		t.Errorf("expected correction to push corrected eval up from %d, got %d", before, after)
	}
}

func TestCorrectionHistoryClampedAtMax(t *testing.T) {
	ch := NewCorrectionHistory()
	pos := board.NewPosition()

	for i := 0; i < 10000; i++ {
		ch.Update(pos, 30000, -30000, 20)
	}

	corr := ch.Get(pos)
	// Get sums four tables, each clamped at corrMax.
	if corr > 4*(corrMax/corrGrain) || corr < -4*(corrMax/corrGrain) {
		t.Errorf("correction %d exceeds the 4*corrMax/corrGrain bound", corr)
	}
}

func TestCorrectionHistoryClearAndAge(t *testing.T) {
	ch := NewCorrectionHistory()
	pos := board.NewPosition()

	ch.Update(pos, 200, 50, 10)
	if ch.Get(pos) == 0 {
		t.Fatal("expected a nonzero correction after Update")
	}

	ch.Clear()
	if got := ch.Get(pos); got != 0 {
		t.Errorf("expected 0 after Clear, got %d", got)
	}

	ch.Update(pos, 200, 50, 10)
	before := ch.Get(pos)
	ch.Age()
	after := ch.Get(pos)
	if (before > 0 && (after < 0 || after >= before)) || (before < 0 && (after > 0 || after <= before)) {
		t.Errorf("expected Age to move the table toward 0: before=%d after=%d", before, after)
	}
}

func TestCorrectionHistoryKeyedByMaterial(t *testing.T) {
	ch := NewCorrectionHistory()

	start := board.NewPosition()
	ch.Update(start, 200, 50, 10)

	other, err := board.ParseFEN("8/8/8/4k3/8/4K3/4P3/8 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN failed: %v", err)
	}

	if ch.Get(other) == ch.Get(start) && ch.Get(start) != 0 {
		t.Error("expected distinct material keys to see distinct corrections")
	}
}
