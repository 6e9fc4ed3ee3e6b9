package board

import "testing"

// TestNoisyQuietSplitPartitionsPseudoLegalMoves checks §4.C's invariant:
// generateNoisy and generateQuiet together produce exactly the pseudo-legal
// move set, with no move in both.
func TestNoisyQuietSplitPartitionsPseudoLegalMoves(t *testing.T) {
	positions := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - -",
		"n1n5/PPPk4/8/8/8/8/4Kppp/5N1N w - - 0 1", // pending promotions both colors
	}

	for _, fen := range positions {
		pos, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q): %v", fen, err)
		}

		all := map[Move]bool{}
		allList := pos.GeneratePseudoLegalMoves()
		for i := 0; i < allList.Len(); i++ {
			all[allList.Get(i)] = true
		}

		noisy := pos.GenerateNoisyMoves()
		quiet := pos.GenerateQuietMoves()

		seen := map[Move]bool{}
		for i := 0; i < noisy.Len(); i++ {
			m := noisy.Get(i)
			if seen[m] {
				t.Errorf("%s: noisy move %v generated twice", fen, m)
			}
			seen[m] = true
			if !all[m] {
				t.Errorf("%s: noisy move %v not in pseudo-legal set", fen, m)
			}
		}
		for i := 0; i < quiet.Len(); i++ {
			m := quiet.Get(i)
			if seen[m] {
				t.Errorf("%s: move %v present in both noisy and quiet", fen, m)
			}
			seen[m] = true
			if !all[m] {
				t.Errorf("%s: quiet move %v not in pseudo-legal set", fen, m)
			}
		}

		if len(seen) != len(all) {
			t.Errorf("%s: noisy+quiet produced %d moves, pseudo-legal set has %d", fen, len(seen), len(all))
		}
	}
}
