package engine

import (
	"github.com/hailam/chessplay/internal/board"
)

// Correction-history scaling, spec §4.F/§2: "correction applied to a static
// eval is eval + entry/Grain, with Grain=256, WeightScale=256,
// Max=Grain*32."
const (
	corrGrain       = 256
	corrWeightScale = 256
	corrMax         = corrGrain * 32
)

// corrTableSize is the number of buckets each correction table hashes into;
// a short hash of the relevant key bundle component, per §2's "bounded
// signed accumulators keyed by short hash of the corresponding key bundle."
const corrTableSize = 1 << 16

// correctionTable is one Grain/WeightScale/Max-bounded accumulator array,
// shared by the pawn, non-pawn (per color) and major correction tables.
type correctionTable [corrTableSize]int32

func (t *correctionTable) get(key uint64) int32 {
	return t[key&(corrTableSize-1)]
}

func (t *correctionTable) update(key uint64, diff, depth int) {
	idx := key & (corrTableSize - 1)
	bonus := diff * depth * corrWeightScale / 8
	if bonus > corrMax {
		bonus = corrMax
	} else if bonus < -corrMax {
		bonus = -corrMax
	}

	old := t[idx]
	newVal := old + (int32(bonus)-old)/16
	if newVal > corrMax {
		newVal = corrMax
	} else if newVal < -corrMax {
		newVal = -corrMax
	}
	t[idx] = newVal
}

func (t *correctionTable) clear() {
	for i := range t {
		t[i] = 0
	}
}

func (t *correctionTable) age() {
	for i := range t {
		t[i] /= 2
	}
}

// CorrectionHistory is spec §2/§4.F's correction-history family: "pawn
// correction, non-pawn correction (black/white), major correction" — four
// independently keyed tables (by PawnKey, NonPawnKey[White],
// NonPawnKey[Black], MajorKey) whose contributions are summed into one
// additive static-eval bias, replacing the teacher's single
// whole-position-hash-keyed table.
type CorrectionHistory struct {
	pawn    correctionTable
	nonPawn [2]correctionTable
	major   correctionTable
}

// NewCorrectionHistory creates a new correction history table.
func NewCorrectionHistory() *CorrectionHistory {
	return &CorrectionHistory{}
}

// Get returns the correction value for a position, already scaled by Grain
// (i.e. the caller adds Get(pos) directly to the static eval).
func (ch *CorrectionHistory) Get(pos *board.Position) int {
	sum := ch.pawn.get(pos.PawnKey) +
		ch.nonPawn[board.White].get(pos.NonPawnKey[board.White]) +
		ch.nonPawn[board.Black].get(pos.NonPawnKey[board.Black]) +
		ch.major.get(pos.MajorKey)
	return int(sum) / corrGrain
}

// Update records a correction based on the difference between the search
// result and the static evaluation, applying it to all four key-bundle
// tables (§4.F: "updated whenever a static-eval/ttScore delta is observed
// on a quiet cutoff or exact node").
func (ch *CorrectionHistory) Update(pos *board.Position, searchScore, staticEval, depth int) {
	if depth < 1 {
		return
	}
	diff := searchScore - staticEval

	ch.pawn.update(pos.PawnKey, diff, depth)
	ch.nonPawn[board.White].update(pos.NonPawnKey[board.White], diff, depth)
	ch.nonPawn[board.Black].update(pos.NonPawnKey[board.Black], diff, depth)
	ch.major.update(pos.MajorKey, diff, depth)
}

// Clear resets all correction tables (`ucinewgame`).
func (ch *CorrectionHistory) Clear() {
	ch.pawn.clear()
	ch.nonPawn[board.White].clear()
	ch.nonPawn[board.Black].clear()
	ch.major.clear()
}

// Age scales down all correction values (called between games/positions).
func (ch *CorrectionHistory) Age() {
	ch.pawn.age()
	ch.nonPawn[board.White].age()
	ch.nonPawn[board.Black].age()
	ch.major.age()
}
