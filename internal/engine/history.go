package engine

import (
	"sync/atomic"

	"github.com/hailam/chessplay/internal/board"
)

// Tunable search toggles (spec §9: "Tunable search parameters are either
// constants or atomics updated only from the controller thread between
// searches"). These are plain package vars rather than a UCI-exposed
// registry: nothing in this tree mutates them mid-search, and no option
// string currently targets them.
var (
	EnableRFP              = true
	EnableNMP               = true
	EnableProbcut           = true
	EnableMulticut          = true
	EnableFutilityPruning   = true
	EnableLMP               = true
	EnableHistoryPruning    = true
	EnableSingularExt       = true
	EnableSEEPruning        = true
	EnableRazoring          = true
	EnableHindsightDepth    = true
	EnableThreatExt         = true
)

// Pruning/extension thresholds referenced throughout worker.go's negamax.
const (
	probcutDepth             = 5
	multicutDepth            = 8
	multicutMoves            = 6
	multicutRequired         = 3
	historyPruningThreshold  = -2000
	threatExtensionMinDepth  = 5
	threatExtensionThreshold = RookValue
	lazyEvalMargin           = 500
)

// lmpThreshold[depth] is the move-count cutoff for late-move pruning at a
// given remaining depth, indexed up to the depth<=7 gate in negamax.
var lmpThreshold = [8]int{0, 5, 7, 11, 16, 22, 29, 37}

// historyMax bounds every gravity-updated history table below, matching
// Stockfish's 1<<14 history ceiling (the gravity formula keeps stored
// magnitude under this regardless of how many updates land).
const historyMax int32 = 16384

// History bonus/penalty, §4.F: "bonus = min(d*bonusDepthScale - bonusOffset,
// maxBonus)" and symmetrically for penalty.
const (
	bonusDepthScale   = 300
	bonusOffset       = 300
	maxBonus          = 2250
	penaltyDepthScale = 300
	penaltyOffset     = 300
	maxPenalty        = 2250
)

func historyBonus(depth int) int {
	b := depth*bonusDepthScale - bonusOffset
	if b > maxBonus {
		b = maxBonus
	}
	if b < 0 {
		b = 0
	}
	return b
}

func historyPenalty(depth int) int {
	p := depth*penaltyDepthScale - penaltyOffset
	if p > maxPenalty {
		p = maxPenalty
	}
	if p < 0 {
		p = 0
	}
	return p
}

func abs32(x int32) int32 {
	if x < 0 {
		return -x
	}
	return x
}

// gravityUpdate is the EWMA saturating update every history table in this
// file shares: v <- v + bonus - v*|bonus|/max, so repeated reinforcement
// asymptotes toward ±max instead of growing unbounded.
func gravityUpdate(v int32, bonus int, max int32) int32 {
	b := int32(bonus)
	v += b - v*abs32(b)/max
	if v > max {
		v = max
	}
	if v < -max {
		v = -max
	}
	return v
}

// threatIndices resolves the 4th/5th dims of the quiet-history table:
// whether the moving piece's source or destination square sits under an
// enemy threat, per Position.Threats (computed by UpdateCheckers, see
// internal/board/attacks.go).
func threatIndices(pos *board.Position, from, to board.Square) (int, int) {
	ts, td := 0, 0
	if pos.Threats&board.SquareBB(from) != 0 {
		ts = 1
	}
	if pos.Threats&board.SquareBB(to) != 0 {
		td = 1
	}
	return ts, td
}

// QuietHistory is spec §4.F / §9's resolved Open Question: the 4-D quiet
// history table [from][to][threatOnSrc?][threatOnDst?], superseding the
// teacher's flat [64][64] table.
type QuietHistory [64][64][2][2]int32

func (h *QuietHistory) get(pos *board.Position, from, to board.Square) int32 {
	ts, td := threatIndices(pos, from, to)
	return h[from][to][ts][td]
}

func (h *QuietHistory) update(pos *board.Position, from, to board.Square, bonus int) {
	ts, td := threatIndices(pos, from, to)
	h[from][to][ts][td] = gravityUpdate(h[from][to][ts][td], bonus, historyMax)
}

func (h *QuietHistory) clear() {
	for i := range h {
		for j := range h[i] {
			h[i][j][0][0] /= 2
			h[i][j][0][1] /= 2
			h[i][j][1][0] /= 2
			h[i][j][1][1] /= 2
		}
	}
}

// NoisyHistory is the smaller, (attacker piece, dst, captured type)-keyed
// history for noisy moves (§4.F: "Noisy-history bonuses are smaller and
// keyed by (src,dst,captured); same saturation rule").
type NoisyHistory [12][64][6]int32

func (h *NoisyHistory) get(p board.Piece, to board.Square, captured board.PieceType) int32 {
	if p == board.NoPiece || captured >= board.King {
		return 0
	}
	return h[p][to][captured]
}

func (h *NoisyHistory) update(p board.Piece, to board.Square, captured board.PieceType, bonus int) {
	if p == board.NoPiece || captured >= board.King {
		return
	}
	h[p][to][captured] = gravityUpdate(h[p][to][captured], bonus, historyMax)
}

func (h *NoisyHistory) clear() {
	for i := range h {
		for j := range h[i] {
			for k := range h[i][j] {
				h[i][j][k] /= 2
			}
		}
	}
}

// PieceToHistory is one continuation-history slab: given the ply-N move's
// (piece, to), it maps the ply-N+plyBack move's (piece, to) to a bonus.
// worker.go's SearchStack keeps a *PieceToHistory per ply so a cutoff at
// ply can reinforce the moves that led to it at ply-1..ply-6.
type PieceToHistory [12][64]int32

func (h *PieceToHistory) get(p board.Piece, to board.Square) int32 {
	if p == board.NoPiece {
		return 0
	}
	return h[p][to]
}

func (h *PieceToHistory) update(p board.Piece, to board.Square, bonus int) {
	if p == board.NoPiece {
		return
	}
	h[p][to] = gravityUpdate(h[p][to], bonus, historyMax)
}

// lowPlyDepth bounds the root-adjacent plies that get their own history
// table (Stockfish's LOW_PLY_HISTORY_SIZE), helping root move ordering
// converge faster across iterative-deepening iterations.
const lowPlyDepth = 5

// LowPlyHistory is indexed [ply][from][to] and only populated for
// ply < lowPlyDepth.
type LowPlyHistory [lowPlyDepth][64][64]int32

func (h *LowPlyHistory) get(ply int, from, to board.Square) int32 {
	if ply >= lowPlyDepth {
		return 0
	}
	return h[ply][from][to]
}

func (h *LowPlyHistory) update(ply int, from, to board.Square, bonus int) {
	if ply >= lowPlyDepth {
		return
	}
	h[ply][from][to] = gravityUpdate(h[ply][from][to], bonus, historyMax)
}

// SharedHistory is a cross-worker quiet-move history used for Lazy-SMP
// collective learning. §5 states per-worker history tables see "no
// cross-thread contention" for the *local* tables (killers, continuation,
// capture history); this one is a deliberate exception, grounded on the
// teacher's worker.go already wiring a shared-history update into every
// quiet cutoff (see DESIGN.md's Open Question entry). It is made safe for
// concurrent access the same way §5 mandates for the TT: plain loads plus
// a CAS retry loop, no locks, benign races.
type SharedHistory struct {
	table [64][64]int32
}

func NewSharedHistory() *SharedHistory {
	return &SharedHistory{}
}

func (s *SharedHistory) Get(from, to int) int {
	return int(atomic.LoadInt32(&s.table[from][to]))
}

func (s *SharedHistory) Update(from, to, bonus int) {
	for {
		old := atomic.LoadInt32(&s.table[from][to])
		next := gravityUpdate(old, bonus, historyMax)
		if atomic.CompareAndSwapInt32(&s.table[from][to], old, next) {
			return
		}
	}
}

func (s *SharedHistory) Clear() {
	for i := range s.table {
		for j := range s.table[i] {
			atomic.StoreInt32(&s.table[i][j], 0)
		}
	}
}

// GetContinuationHistoryTable returns the continuation-history slab keyed
// by the move just made (piece, to); children store it in their SearchStack
// frame so a later cutoff can walk back through it.
func (mo *MoveOrderer) GetContinuationHistoryTable(piece board.Piece, to board.Square) *PieceToHistory {
	return &mo.continuationHistory[piece][to]
}

// continuationPlyWeight scales the bonus applied at each ply-back distance;
// closer plies carry more signal than distant ones (Stockfish's
// update_continuation_histories weighting).
func continuationPlyWeight(plyBack int) int {
	switch plyBack {
	case 1, 2:
		return 100
	case 3:
		return 80
	case 4:
		return 60
	default:
		return 40
	}
}

// UpdateContinuationHistory updates the continuation-history entry for
// (prevPiece, prevTo) -> (piece, to), scaled down by ply distance.
func (mo *MoveOrderer) UpdateContinuationHistory(prevPiece board.Piece, prevTo board.Square, piece board.Piece, to board.Square, depth, plyBack int, isGood bool) {
	bonus := historyBonus(depth) * continuationPlyWeight(plyBack) / 100
	if !isGood {
		bonus = -historyPenalty(depth) * continuationPlyWeight(plyBack) / 100
	}
	mo.continuationHistory[prevPiece][prevTo].update(piece, to, bonus)
}

// UpdateLowPlyHistory reinforces the root-adjacent history table.
func (mo *MoveOrderer) UpdateLowPlyHistory(m board.Move, ply, depth int, isGood bool) {
	bonus := historyBonus(depth)
	if !isGood {
		bonus = -historyPenalty(depth)
	}
	mo.lowPlyHistory.update(ply, m.From(), m.To(), bonus)
}

// GetLowPlyHistoryScore exposes the low-ply table for move ordering at
// shallow root-adjacent plies.
func (mo *MoveOrderer) GetLowPlyHistoryScore(m board.Move, ply int) int {
	return int(mo.lowPlyHistory.get(ply, m.From(), m.To()))
}
