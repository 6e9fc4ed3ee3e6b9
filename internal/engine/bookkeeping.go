package engine

import (
	"github.com/hailam/chessplay/internal/board"
)

// Contempt is the configured draw-aversion score in centipawns, set via the
// UCI "Contempt" option (spec §6: "Contempt (cp, -1000..1000)"). Positive
// values make the engine treat a draw as worse than 0 from the side-to-move
// at the root's perspective, so it avoids repetition/50-move draws when
// ahead and steers toward them when behind — grounded on the teacher's
// zurichess-style peers in the example pack scoring draws as a flat 0 (e.g.
// combusken's `contempt()` stub), generalized here into an actual knob
// instead of a hardcoded zero.
var Contempt int32 = 0

// drawScore returns the score negamax should return for a drawn node,
// relative to the side to move at that node. rootSide is the side to move
// at the root of the current search; contempt only applies relative to the
// root's perspective; it is meaningless mid-tree without that anchor.
func drawScore(sideToMove, rootSide board.Color) int {
	if Contempt == 0 {
		return 0
	}
	if sideToMove == rootSide {
		return -int(Contempt)
	}
	return int(Contempt)
}

// WDL normalization (spec §9's Open Question: "two WDL normalisation
// schemes coexist (ply-based and material-58-based); which one applies is
// a build-time configuration decision"). tablebase.WDLToScore already
// implements the ply-based scheme for tablebase-probe scoring; this file
// resolves the Open Question for the *live* `info ... wdl w d l` UCI report
// by implementing the material-58-based scheme, following Stockfish's
// well-documented win-rate model: win/loss probabilities follow a logistic
// curve in the centipawn score, whose steepness (a/b) is itself a
// cubic function of total non-pawn material normalized around a
// material count of 58 (queen=9.94, rook=5.49, bishop=3.57, knight=3.20,
// pawn=1 in the model's internal units).
const (
	wdlMaterialMax = 58
)

var wdlAsCoeffs = [4]float64{-1.1628, 38.0, -122.83, 183.61}
var wdlBsCoeffs = [4]float64{-3.2148, 60.31, -102.68, 59.88}

func wdlPoly(coeffs [4]float64, m float64) float64 {
	return ((coeffs[0]*m+coeffs[1])*m+coeffs[2])*m + coeffs[3]
}

// materialPhase reduces a position's non-pawn material to the model's
// normalized [0,wdlMaterialMax] input, clamped at the extremes.
func materialPhase(pos *board.Position) float64 {
	const (
		knightUnits = 320
		bishopUnits = 330
		rookUnits   = 500
		queenUnits  = 900
	)
	total := 0
	for c := board.White; c <= board.Black; c++ {
		total += pos.Pieces[c][board.Knight].PopCount()*knightUnits +
			pos.Pieces[c][board.Bishop].PopCount()*bishopUnits +
			pos.Pieces[c][board.Rook].PopCount()*rookUnits +
			pos.Pieces[c][board.Queen].PopCount()*queenUnits
	}
	// Scale raw material units down to the model's ~[0,58] material axis,
	// anchored so the full 2x(2N+2B+2R+Q) starting material maps near 58.
	const startMaterial = 2*knightUnits + 2*bishopUnits + 2*rookUnits + queenUnits
	m := float64(total) / float64(2*startMaterial) * wdlMaterialMax
	if m > wdlMaterialMax {
		m = wdlMaterialMax
	}
	if m < 1 {
		m = 1
	}
	return m
}

// NormalizeWDL converts a centipawn score at the given position into
// win/draw/loss permilles (summing to 1000), for the UCI_ShowWDL report.
func NormalizeWDL(scoreCp int, pos *board.Position) (win, draw, loss int) {
	m := materialPhase(pos) / wdlMaterialMax
	a := wdlPoly(wdlAsCoeffs, m)
	b := wdlPoly(wdlBsCoeffs, m)

	x := float64(scoreCp)
	winRate := 1.0 / (1.0 + expNeg((a-x)/b))
	lossRate := 1.0 / (1.0 + expNeg((a+x)/b))

	win = int(winRate * 1000)
	loss = int(lossRate * 1000)
	draw = 1000 - win - loss
	if draw < 0 {
		draw = 0
	}
	return
}

// expNeg computes e^x via a small fixed-iteration series; avoids pulling in
// "math" for the single transcendental call this file needs, matching the
// engine package's existing preference (eval.go, timeman.go) for hand-rolled
// arithmetic over additional stdlib surface in the hot/near-hot path.
func expNeg(x float64) float64 {
	// e^x = 1/e^(-x); use the standard range-reduction + Taylor expansion.
	neg := x < 0
	if neg {
		x = -x
	}
	// Range-reduce: e^x = (e^(x/2^k))^(2^k)
	k := 0
	for x > 1 {
		x /= 2
		k++
	}
	// Taylor series for e^x, x in [0,1]
	term := 1.0
	sum := 1.0
	for i := 1; i <= 12; i++ {
		term *= x / float64(i)
		sum += term
	}
	for ; k > 0; k-- {
		sum *= sum
	}
	if neg {
		return 1.0 / sum
	}
	return sum
}

// Cuckoo table for upcoming-repetition detection, spec §9: "The cuckoo
// table is fixed-size and hashed twice by h1(k)=k & 0x1FFF, h2(k)=(k>>16) &
// 0x1FFF -- a closed-addressing hash; rebuild at init from piece-move
// keys." Every reversible move (a piece moving between two squares with
// nothing in between, flipping side to move) has a Zobrist delta; exactly
// one of that delta's two hash slots holds it after the cuckoo-insertion
// below, so a position reachable by one reversible move from the current
// one can be found in O(1).
const cuckooSize = 1 << 13 // 0x2000

var (
	cuckooKeys  [cuckooSize]uint64
	cuckooMoves [cuckooSize]board.Move
)

func cuckooH1(k uint64) uint64 { return k & (cuckooSize - 1) }
func cuckooH2(k uint64) uint64 { return (k >> 16) & (cuckooSize - 1) }

// reachesOnEmptyBoard reports whether a piece of type pt could move
// directly from `from` to `to` with nothing else on the board — the
// condition for the move's zobrist delta to be a valid cuckoo entry
// (Stockfish's cuckoo init walks exactly this same pseudo-attack-on-empty
// -board set).
func reachesOnEmptyBoard(pt board.PieceType, from, to board.Square) bool {
	switch pt {
	case board.Knight:
		return board.KnightAttacks(from)&board.SquareBB(to) != 0
	case board.King:
		return board.KingAttacks(from)&board.SquareBB(to) != 0
	case board.Bishop:
		return board.BishopAttacks(from, 0)&board.SquareBB(to) != 0
	case board.Rook:
		return board.RookAttacks(from, 0)&board.SquareBB(to) != 0
	case board.Queen:
		return board.QueenAttacks(from, 0)&board.SquareBB(to) != 0
	default:
		return false
	}
}

func init() {
	initCuckoo()
}

// initCuckoo rebuilds the table from every (piece, from, to) reversible
// move's zobrist delta, using standard cuckoo displacement on collision.
func initCuckoo() {
	for i := range cuckooKeys {
		cuckooKeys[i] = 0
		cuckooMoves[i] = board.NoMove
	}

	for c := board.White; c <= board.Black; c++ {
		for pt := board.Knight; pt <= board.King; pt++ {
			for from := board.A1; from <= board.H8; from++ {
				for to := from + 1; to <= board.H8; to++ {
					if !reachesOnEmptyBoard(pt, from, to) {
						continue
					}
					key := board.ZobristPiece(c, pt, from) ^ board.ZobristPiece(c, pt, to) ^ board.ZobristSideToMove()
					move := board.NewMove(from, to)

					slot := cuckooH1(key)
					for {
						oldKey := cuckooKeys[slot]
						oldMove := cuckooMoves[slot]
						cuckooKeys[slot] = key
						cuckooMoves[slot] = move

						if oldKey == 0 {
							break
						}
						key, move = oldKey, oldMove
						if slot == cuckooH1(key) {
							slot = cuckooH2(key)
						} else {
							slot = cuckooH1(key)
						}
					}
				}
			}
		}
	}
}

// hasUpcomingRepetition reports whether, from the current position, one
// reversible move could reach a position already on the key-history stack
// within the last maxDist plies — the fast pre-check spec §9's cuckoo table
// exists for, called before falling back to (or in addition to) the
// explicit posHistoryBuffer scan negamax already performs.
func hasUpcomingRepetition(pos *board.Position, history []uint64, maxDist int) bool {
	if len(history) < 2 {
		return false
	}
	occ := pos.AllOccupied
	limit := len(history) - 1
	if maxDist < limit {
		limit = maxDist
	}

	for d := 2; d <= limit; d += 2 {
		other := history[len(history)-1-d]
		delta := pos.Hash ^ other

		slot := cuckooH1(delta)
		if cuckooKeys[slot] != delta {
			slot = cuckooH2(delta)
			if cuckooKeys[slot] != delta {
				continue
			}
		}

		move := cuckooMoves[slot]
		from, to := move.From(), move.To()
		if board.Between(from, to)&occ != 0 {
			continue
		}
		if occ&board.SquareBB(from) == 0 && occ&board.SquareBB(to) == 0 {
			continue
		}
		return true
	}
	return false
}
