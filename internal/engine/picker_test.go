package engine

import (
	"testing"

	"github.com/hailam/chessplay/internal/board"
)

// drain exhausts a MovePicker and returns the moves in yielded order.
func drain(mp *MovePicker) []board.Move {
	var out []board.Move
	for {
		m, ok := mp.Next()
		if !ok {
			return out
		}
		out = append(out, m)
	}
}

func TestMovePickerYieldsTTMoveFirst(t *testing.T) {
	pos := board.NewPosition()
	orderer := NewMoveOrderer()
	ttMove := board.NewMove(board.D2, board.D4)

	mp := NewMovePicker(pos, orderer, ttMove, 0, false, PickerMain, 0)
	moves := drain(mp)

	if len(moves) == 0 || moves[0] != ttMove {
		t.Fatalf("expected the TT move first, got %v", moves)
	}
}

func TestMovePickerNeverRepeatsTheTTMove(t *testing.T) {
	pos := board.NewPosition()
	orderer := NewMoveOrderer()
	ttMove := board.NewMove(board.E2, board.E4)

	mp := NewMovePicker(pos, orderer, ttMove, 0, false, PickerMain, 0)
	moves := drain(mp)

	count := 0
	for _, m := range moves {
		if m == ttMove {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected the TT move to be yielded exactly once, got %d times", count)
	}
}

func TestMovePickerMainCoversAllPseudoLegalMoves(t *testing.T) {
	pos := board.NewPosition()
	orderer := NewMoveOrderer()

	mp := NewMovePicker(pos, orderer, board.NoMove, 0, false, PickerMain, 0)
	moves := drain(mp)

	noisy := pos.GenerateNoisyMoves()
	quiet := pos.GenerateQuietMoves()
	want := noisy.Len() + quiet.Len()

	if len(moves) != want {
		t.Errorf("expected %d total moves (noisy=%d + quiet=%d) from the full pipeline, got %d", want, noisy.Len(), quiet.Len(), len(moves))
	}
}

func TestMovePickerQSearchSkipsQuietWhenNotInCheck(t *testing.T) {
	pos := board.NewPosition()
	orderer := NewMoveOrderer()

	mp := NewMovePicker(pos, orderer, board.NoMove, 0, false, PickerQSearch, 0)
	moves := drain(mp)

	noisy := pos.GenerateNoisyMoves()
	if len(moves) != noisy.Len() {
		t.Errorf("expected qsearch outside check to only yield the %d noisy moves, got %d", noisy.Len(), len(moves))
	}
}

func TestMovePickerQSearchIncludesQuietWhenInCheck(t *testing.T) {
	// Black king on e8 in check from a white rook on e-file; all legal
	// replies are quiet (king moves/blocks), none are captures.
	pos, err := board.ParseFEN("4k3/8/8/8/8/8/8/4R2K b - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN failed: %v", err)
	}
	orderer := NewMoveOrderer()

	mp := NewMovePicker(pos, orderer, board.NoMove, 0, true, PickerQSearch, 0)
	moves := drain(mp)

	if len(moves) == 0 {
		t.Fatal("expected qsearch in check to yield evasion moves")
	}
}

func TestMovePickerProbcutAppliesSEEThreshold(t *testing.T) {
	// White queen can take the undefended pawn on d5 (the knight on c4
	// attacks d2, not d5): a one-pawn gain, far below a strict SEE threshold.
	pos, err := board.ParseFEN("4k3/8/8/3p4/2n5/8/3Q4/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN failed: %v", err)
	}
	orderer := NewMoveOrderer()

	const highThreshold = 10000
	mp := NewMovePicker(pos, orderer, board.NoMove, 0, false, PickerProbcut, highThreshold)
	moves := drain(mp)

	for _, m := range moves {
		if SEE(pos, m) < highThreshold {
			t.Errorf("probcut picker yielded move %s with SEE below the configured threshold", m.String())
		}
	}
}

func TestMovePickerProbcutNeverYieldsQuietMoves(t *testing.T) {
	pos := board.NewPosition()
	orderer := NewMoveOrderer()

	mp := NewMovePicker(pos, orderer, board.NoMove, 0, false, PickerProbcut, -10000)
	moves := drain(mp)

	noisy := pos.GenerateNoisyMoves()
	if len(moves) > noisy.Len() {
		t.Errorf("expected probcut to never exceed the %d noisy moves available, got %d", noisy.Len(), len(moves))
	}
}

func TestMovePickerYieldsKillerBeforeQuiet(t *testing.T) {
	pos := board.NewPosition()
	orderer := NewMoveOrderer()

	killer := board.NewMove(board.B1, board.C3)
	orderer.UpdateKillers(killer, 0)

	mp := NewMovePicker(pos, orderer, board.NoMove, 0, false, PickerMain, 0)
	moves := drain(mp)

	noisyLen := pos.GenerateNoisyMoves().Len()

	idx := -1
	for i, m := range moves {
		if m == killer {
			idx = i
			break
		}
	}
	if idx == -1 {
		t.Fatal("expected the killer move to be yielded")
	}
	if idx >= noisyLen+1 {
		t.Errorf("expected the killer move to be yielded right after the noisy stage (noisy len %d), got index %d", noisyLen, idx)
	}
}

func TestMovePickerSetPrevMoveRanksCounterMoveFirstAmongQuiets(t *testing.T) {
	// Position after 1.e4 e5: the counter-move table is keyed on the piece
	// standing on the previous move's destination, so e5 must hold a pawn.
	pos, err := board.ParseFEN("rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6 0 2")
	if err != nil {
		t.Fatalf("ParseFEN failed: %v", err)
	}
	orderer := NewMoveOrderer()

	prevMove := board.NewMove(board.E7, board.E5)
	counter := board.NewMove(board.G1, board.F3)
	orderer.UpdateCounterMove(prevMove, counter, pos)

	mp := NewMovePicker(pos, orderer, board.NoMove, 0, false, PickerMain, 0).SetPrevMove(prevMove)
	moves := drain(mp)

	noisyLen := pos.GenerateNoisyMoves().Len()
	idx := -1
	for i, m := range moves {
		if m == counter {
			idx = i
			break
		}
	}
	if idx == -1 {
		t.Fatal("expected the counter move to be yielded")
	}
	// Killers (2 slots) are yielded between the noisy stage and quiets, so
	// the counter move - scored just below the second killer slot - should
	// land at the front of the quiet stage, not buried among plain quiets.
	if idx > noisyLen+2 {
		t.Errorf("expected the counter move near the front of the quiet stage (noisy len %d), got index %d", noisyLen, idx)
	}
}

func TestMovePickerWithoutPrevMoveSkipsCounterMoveScoring(t *testing.T) {
	pos := board.NewPosition()
	orderer := NewMoveOrderer()

	prevMove := board.NewMove(board.E7, board.E5)
	counter := board.NewMove(board.G1, board.F3)
	orderer.UpdateCounterMove(prevMove, counter, pos)

	// No SetPrevMove call: the picker has no counter-move context, so this
	// must not panic and must still yield every legal move exactly once.
	mp := NewMovePicker(pos, orderer, board.NoMove, 0, false, PickerMain, 0)
	moves := drain(mp)

	noisy := pos.GenerateNoisyMoves()
	quiet := pos.GenerateQuietMoves()
	if len(moves) != noisy.Len()+quiet.Len() {
		t.Errorf("expected full pipeline coverage without prev move context, got %d", len(moves))
	}
}

func TestMovePickerDoesNotDuplicateKillerInQuietStage(t *testing.T) {
	pos := board.NewPosition()
	orderer := NewMoveOrderer()

	killer := board.NewMove(board.B1, board.C3)
	orderer.UpdateKillers(killer, 0)

	mp := NewMovePicker(pos, orderer, board.NoMove, 0, false, PickerMain, 0)
	moves := drain(mp)

	count := 0
	for _, m := range moves {
		if m == killer {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected the killer move to appear exactly once across the whole pipeline, got %d", count)
	}
}
