package engine

import (
	"testing"

	"github.com/hailam/chessplay/internal/board"
)

func TestDrawScoreZeroContempt(t *testing.T) {
	old := Contempt
	defer func() { Contempt = old }()
	Contempt = 0

	if got := drawScore(board.White, board.White); got != 0 {
		t.Errorf("expected 0 with zero contempt, got %d", got)
	}
}

func TestDrawScorePenalizesDrawForRootSide(t *testing.T) {
	old := Contempt
	defer func() { Contempt = old }()
	Contempt = 30

	if got := drawScore(board.White, board.White); got != -30 {
		t.Errorf("expected -30 when the node's side to move is the root side, got %d", got)
	}
	if got := drawScore(board.Black, board.White); got != 30 {
		t.Errorf("expected +30 when the node's side to move is not the root side, got %d", got)
	}
}

func TestNormalizeWDLSumsToThousand(t *testing.T) {
	pos := board.NewPosition()
	win, draw, loss := NormalizeWDL(0, pos)
	if total := win + draw + loss; total != 1000 {
		t.Errorf("expected win+draw+loss == 1000, got %d (w=%d d=%d l=%d)", total, win, draw, loss)
	}
}

func TestNormalizeWDLMonotonicInScore(t *testing.T) {
	pos := board.NewPosition()

	winLow, _, lossLow := NormalizeWDL(-200, pos)
	winMid, _, lossMid := NormalizeWDL(0, pos)
	winHigh, _, lossHigh := NormalizeWDL(200, pos)

	if !(winLow <= winMid && winMid <= winHigh) {
		t.Errorf("expected win rate to increase with score: %d, %d, %d", winLow, winMid, winHigh)
	}
	if !(lossHigh <= lossMid && lossMid <= lossLow) {
		t.Errorf("expected loss rate to decrease with score: %d, %d, %d", lossLow, lossMid, lossHigh)
	}
}

func TestMaterialPhaseClampedToRange(t *testing.T) {
	start := board.NewPosition()
	if m := materialPhase(start); m < 1 || m > wdlMaterialMax {
		t.Errorf("expected starting material phase within [1,%d], got %v", wdlMaterialMax, m)
	}

	bare, err := board.ParseFEN("4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN failed: %v", err)
	}
	if m := materialPhase(bare); m != 1 {
		t.Errorf("expected the floor of 1 for a position with no non-pawn material, got %v", m)
	}
}

func TestExpNegMatchesKnownValues(t *testing.T) {
	cases := []struct {
		x    float64
		want float64
	}{
		{0, 1},
		{1, 2.718281828},
		{-1, 0.367879441},
	}
	for _, c := range cases {
		got := expNeg(c.x)
		diff := got - c.want
		if diff < 0 {
			diff = -diff
		}
		if diff > 1e-3 {
			t.Errorf("expNeg(%v) = %v, want ~%v", c.x, got, c.want)
		}
	}
}

func TestHasUpcomingRepetitionDetectsShuffle(t *testing.T) {
	pos := board.NewPosition()
	// history holds ancestor hashes only (not the current pos.Hash), the
	// same convention negamax's rootPosHashes/posHistoryBuffer use.
	history := []uint64{pos.Hash}

	apply := func(m board.Move) {
		undo := pos.MakeMove(m)
		if !undo.Valid {
			t.Fatalf("expected move %s to be legal", m.String())
		}
	}

	apply(board.NewMove(board.G1, board.F3))
	history = append(history, pos.Hash)
	apply(board.NewMove(board.G8, board.F6))
	history = append(history, pos.Hash)
	// Third move (Nf3-g1) is made but NOT pushed: pos now sits one
	// reversible black move (Nf6-g8) away from history[0], the starting
	// position, which hasUpcomingRepetition should detect via the cuckoo
	// table before that move is actually played.
	apply(board.NewMove(board.F3, board.G1))

	if !hasUpcomingRepetition(pos, history, 8) {
		t.Error("expected an upcoming repetition to be detected via the cuckoo table")
	}
}

func TestHasUpcomingRepetitionFalseOnShortHistory(t *testing.T) {
	pos := board.NewPosition()
	if hasUpcomingRepetition(pos, []uint64{pos.Hash}, 8) {
		t.Error("expected no upcoming repetition with fewer than 2 history entries")
	}
}
