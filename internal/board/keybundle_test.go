package board

import "testing"

// walkKeyBundle recursively makes/unmakes every legal move to the given
// depth, checking after every unmake that the full key bundle (and the
// Chess960 castling-rook-square table) round-trips back to the pre-move
// value. This is the incremental-vs-recomputed-from-scratch property
// make/unmake relies on.
func walkKeyBundle(t *testing.T, p *Position, depth int) {
	t.Helper()
	if depth == 0 {
		return
	}

	moves := p.GenerateLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)

		hash := p.Hash
		pawnKey := p.PawnKey
		nonPawnKey := p.NonPawnKey
		majorKey := p.MajorKey
		rookSquares := p.CastlingRookSquare

		undo := p.MakeMove(m)
		if !undo.Valid {
			t.Fatalf("legal move %v rejected by MakeMove", m)
		}

		var recomputed Position
		recomputed = *p
		recomputed.computeKeyBundle()
		if recomputed.Hash != p.Hash {
			t.Fatalf("move %v: incremental hash %x != recomputed %x", m, p.Hash, recomputed.Hash)
		}
		if recomputed.PawnKey != p.PawnKey {
			t.Fatalf("move %v: incremental pawn key %x != recomputed %x", m, p.PawnKey, recomputed.PawnKey)
		}
		if recomputed.NonPawnKey != p.NonPawnKey {
			t.Fatalf("move %v: incremental non-pawn key %v != recomputed %v", m, p.NonPawnKey, recomputed.NonPawnKey)
		}
		if recomputed.MajorKey != p.MajorKey {
			t.Fatalf("move %v: incremental major key %x != recomputed %x", m, p.MajorKey, recomputed.MajorKey)
		}

		walkKeyBundle(t, p, depth-1)

		p.UnmakeMove(m, undo)

		if p.Hash != hash || p.PawnKey != pawnKey || p.NonPawnKey != nonPawnKey || p.MajorKey != majorKey {
			t.Fatalf("move %v: key bundle did not round-trip through make/unmake", m)
		}
		if p.CastlingRookSquare != rookSquares {
			t.Fatalf("move %v: CastlingRookSquare did not round-trip through make/unmake", m)
		}
	}
}

func TestKeyBundleRoundTripStartingPosition(t *testing.T) {
	pos := NewPosition()
	walkKeyBundle(t, pos, 3)
}

func TestKeyBundleRoundTripKiwipete(t *testing.T) {
	pos, err := ParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -")
	if err != nil {
		t.Fatalf("Failed to parse FEN: %v", err)
	}
	walkKeyBundle(t, pos, 3)
}

// TestChess960CastlingRoundTrip exercises a Shredder-FEN position where the
// queenside rook does not start on the a-file, verifying that castling
// still finds the rook via CastlingRookSquare and that unmake restores it.
func TestChess960CastlingRoundTrip(t *testing.T) {
	// White king on e1, rooks on b1 and h1 (Shredder castling letters "HB").
	pos, err := ParseFEN("1r2k2r/8/8/8/8/8/8/1R2K2R w HBhb - 0 1")
	if err != nil {
		t.Fatalf("Failed to parse FEN: %v", err)
	}

	if pos.CastlingRookSquare[crWK] != H1 {
		t.Fatalf("expected white king-side rook on h1, got %v", pos.CastlingRookSquare[crWK])
	}
	if pos.CastlingRookSquare[crWQ] != B1 {
		t.Fatalf("expected white queen-side rook on b1, got %v", pos.CastlingRookSquare[crWQ])
	}

	moves := pos.GenerateLegalMoves()
	var castle Move
	found := false
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		if m.IsCastling() && m.To() == G1 {
			castle = m
			found = true
			break
		}
	}
	if !found {
		t.Fatal("expected a legal king-side castling move")
	}

	before := *pos
	undo := pos.MakeMove(castle)
	if !undo.Valid {
		t.Fatal("castling move rejected by MakeMove")
	}
	if pos.PieceAt(F1).Type() != Rook {
		t.Errorf("expected rook on f1 after castling, got %v", pos.PieceAt(F1))
	}
	if pos.PieceAt(G1).Type() != King {
		t.Errorf("expected king on g1 after castling, got %v", pos.PieceAt(G1))
	}

	pos.UnmakeMove(castle, undo)
	if pos.Hash != before.Hash || pos.CastlingRookSquare != before.CastlingRookSquare {
		t.Error("Chess960 castling did not round-trip through make/unmake")
	}
	if pos.PieceAt(H1).Type() != Rook || pos.PieceAt(E1).Type() != King {
		t.Error("board state not restored after castling unmake")
	}
}
