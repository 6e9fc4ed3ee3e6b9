package engine

import (
	"testing"

	"github.com/hailam/chessplay/internal/board"
)

func TestHistoryBonusAndPenaltyMonotonicInDepth(t *testing.T) {
	if historyBonus(1) >= historyBonus(8) {
		t.Errorf("expected bonus to grow with depth: d1=%d d8=%d", historyBonus(1), historyBonus(8))
	}
	if historyPenalty(1) >= historyPenalty(8) {
		t.Errorf("expected penalty to grow with depth: d1=%d d8=%d", historyPenalty(1), historyPenalty(8))
	}
}

func TestHistoryBonusAndPenaltyClampedAtMax(t *testing.T) {
	if b := historyBonus(100); b != maxBonus {
		t.Errorf("expected bonus to clamp at %d, got %d", maxBonus, b)
	}
	if p := historyPenalty(100); p != maxPenalty {
		t.Errorf("expected penalty to clamp at %d, got %d", maxPenalty, p)
	}
}

func TestHistoryBonusAndPenaltyFloorAtZero(t *testing.T) {
	if b := historyBonus(0); b != 0 {
		t.Errorf("expected a depth-0 bonus to floor at 0, got %d", b)
	}
}

func TestGravityUpdateSaturatesTowardMax(t *testing.T) {
	var v int32
	for i := 0; i < 1000; i++ {
		v = gravityUpdate(v, maxBonus, historyMax)
	}
	if v > historyMax || v < historyMax-10 {
		t.Errorf("expected repeated max-bonus updates to saturate near %d, got %d", historyMax, v)
	}
}

func TestGravityUpdateSaturatesTowardMin(t *testing.T) {
	var v int32
	for i := 0; i < 1000; i++ {
		v = gravityUpdate(v, -maxPenalty, historyMax)
	}
	if v < -historyMax || v > -historyMax+10 {
		t.Errorf("expected repeated max-penalty updates to saturate near %d, got %d", -historyMax, v)
	}
}

func TestQuietHistoryRoundTrips(t *testing.T) {
	var h QuietHistory
	pos := board.NewPosition()
	from, to := board.E2, board.E4

	if got := h.get(pos, from, to); got != 0 {
		t.Fatalf("expected 0 on a fresh table, got %d", got)
	}

	h.update(pos, from, to, historyBonus(8))
	if got := h.get(pos, from, to); got <= 0 {
		t.Errorf("expected a positive history score after a bonus update, got %d", got)
	}
}

func TestQuietHistoryClearHalves(t *testing.T) {
	var h QuietHistory
	pos := board.NewPosition()
	from, to := board.E2, board.E4

	h.update(pos, from, to, maxBonus)
	before := h.get(pos, from, to)
	h.clear()
	after := h.get(pos, from, to)

	if after == 0 || after >= before {
		t.Errorf("expected clear() to age the table down (not to zero), got before=%d after=%d", before, after)
	}
}

func TestNoisyHistoryIgnoresKingVictim(t *testing.T) {
	var h NoisyHistory
	p := board.WhiteQueen

	h.update(p, board.E4, board.King, historyBonus(8))
	if got := h.get(p, board.E4, board.King); got != 0 {
		t.Errorf("expected a king-victim update to be a no-op, got %d", got)
	}
}

func TestNoisyHistoryRoundTrips(t *testing.T) {
	var h NoisyHistory
	p := board.WhiteQueen

	h.update(p, board.E4, board.Pawn, historyBonus(8))
	if got := h.get(p, board.E4, board.Pawn); got <= 0 {
		t.Errorf("expected a positive score after a bonus update, got %d", got)
	}
}

func TestPieceToHistoryIgnoresNoPiece(t *testing.T) {
	var h PieceToHistory
	h.update(board.NoPiece, board.E4, 1000)
	if got := h.get(board.NoPiece, board.E4); got != 0 {
		t.Errorf("expected NoPiece updates to be ignored, got %d", got)
	}
}

func TestLowPlyHistoryIgnoresDeepPlies(t *testing.T) {
	var h LowPlyHistory
	h.update(lowPlyDepth, board.E2, board.E4, 1000)
	if got := h.get(lowPlyDepth, board.E2, board.E4); got != 0 {
		t.Errorf("expected plies >= lowPlyDepth to be ignored, got %d", got)
	}

	h.update(0, board.E2, board.E4, historyBonus(8))
	if got := h.get(0, board.E2, board.E4); got <= 0 {
		t.Errorf("expected a tracked update at ply 0, got %d", got)
	}
}

func TestSharedHistoryConcurrentUpdatesDontLoseSignal(t *testing.T) {
	sh := NewSharedHistory()
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			for j := 0; j < 50; j++ {
				sh.Update(int(board.E2), int(board.E4), 100)
			}
			done <- struct{}{}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	if got := sh.Get(int(board.E2), int(board.E4)); got == 0 {
		t.Error("expected concurrent updates to leave a nonzero accumulated score")
	}
}

func TestSharedHistoryClear(t *testing.T) {
	sh := NewSharedHistory()
	sh.Update(int(board.E2), int(board.E4), 1000)
	sh.Clear()
	if got := sh.Get(int(board.E2), int(board.E4)); got != 0 {
		t.Errorf("expected Clear to zero the table, got %d", got)
	}
}

func TestContinuationHistoryViaMoveOrderer(t *testing.T) {
	mo := NewMoveOrderer()
	piece := board.WhiteKnight
	prevPiece := board.BlackKnight

	mo.UpdateContinuationHistory(prevPiece, board.F6, piece, board.F3, 8, 1, true)

	table := mo.GetContinuationHistoryTable(prevPiece, board.F6)
	if got := table.get(piece, board.F3); got <= 0 {
		t.Errorf("expected a positive continuation history score, got %d", got)
	}
}

func TestLowPlyHistoryViaMoveOrderer(t *testing.T) {
	mo := NewMoveOrderer()
	m := board.NewMove(board.E2, board.E4)

	mo.UpdateLowPlyHistory(m, 0, 8, true)
	if got := mo.GetLowPlyHistoryScore(m, 0); got <= 0 {
		t.Errorf("expected a positive low-ply history score, got %d", got)
	}
}
