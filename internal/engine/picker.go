package engine

import (
	"github.com/hailam/chessplay/internal/board"
)

// PickerMode selects which of spec §4.H's reduced pipelines a MovePicker
// runs. The main search loop wants the full five-stage staged order; qsearch
// and Probcut only need a trimmed slice of it.
type PickerMode int

const (
	// PickerMain is the full staged order: TT move, good noisy (SEE above
	// threshold), killers, quiet, then bad noisy (buffered failing-SEE
	// captures, searched last rather than skipped).
	PickerMain PickerMode = iota
	// PickerQSearch is TT + noisy, plus quiet moves when the side to move
	// is in check (check evasions have no "noisy" half to fall back on).
	PickerQSearch
	// PickerProbcut is TT + noisy only, gated by a caller-supplied SEE
	// threshold higher than the main loop's (spec §4.H: "Probcut uses TT +
	// noisy with a higher SEE threshold").
	PickerProbcut
)

type pickerStage int

const (
	stagePickTT pickerStage = iota
	stagePickGoodNoisy
	stagePickKiller
	stagePickQuiet
	stagePickBadNoisy
	stagePickDone
)

// MovePicker lazily generates and orders moves one at a time, so that cheap
// cutoffs (the TT move, a killer) never pay for a full move-generation and
// scoring pass. Grounded on worker.go's/search.go's existing inline
// generate-then-PickMove loops and the ProbCut capture loop; this type gives
// that pattern its own staged life per spec §4.H instead of re-deriving full
// move lists ply by ply. Moves returned here are pseudo-legal — the caller
// must still reject them via MakeMove's Valid flag, exactly as every other
// move loop in this package already does.
type MovePicker struct {
	pos     *board.Position
	orderer *MoveOrderer
	mode    PickerMode
	ply     int
	inCheck bool

	ttMove       board.Move
	seeThreshold int
	prevMove     board.Move

	stage pickerStage

	noisy       *board.MoveList
	noisyScores []int
	noisyIdx    int
	badNoisy    []board.Move
	badNoisyIdx int

	killerIdx int

	quiet       *board.MoveList
	quietScores []int
	quietIdx    int
}

// NewMovePicker creates a staged move picker for the given position. ttMove
// may be board.NoMove. seeThreshold gates which noisy moves count as "good"
// (searched before killers/quiets) versus "bad" (deferred to the last stage
// in PickerMain, or dropped entirely in PickerQSearch/PickerProbcut).
func NewMovePicker(pos *board.Position, orderer *MoveOrderer, ttMove board.Move, ply int, inCheck bool, mode PickerMode, seeThreshold int) *MovePicker {
	return &MovePicker{
		pos:          pos,
		orderer:      orderer,
		mode:         mode,
		ply:          ply,
		inCheck:      inCheck,
		ttMove:       ttMove,
		seeThreshold: seeThreshold,
		stage:        stagePickTT,
	}
}

// SetPrevMove enables counter-move/countermove-history-aware quiet scoring
// (spec §4.F's counter-move table), matching worker.go's main search loop
// which always has the previous ply's move on hand. Left unset (NoMove,
// the zero value) by qsearch/Probcut callers, which have no meaningful
// "previous move" concept at the quiescence horizon.
func (mp *MovePicker) SetPrevMove(prevMove board.Move) *MovePicker {
	mp.prevMove = prevMove
	return mp
}

// Next returns the next move to search, or ok=false once exhausted.
func (mp *MovePicker) Next() (board.Move, bool) {
	for {
		switch mp.stage {
		case stagePickTT:
			mp.stage = stagePickGoodNoisy
			if mp.ttMove != board.NoMove {
				return mp.ttMove, true
			}

		case stagePickGoodNoisy:
			if mp.noisy == nil {
				mp.noisy = mp.pos.GenerateNoisyMoves()
				mp.noisyScores = mp.orderer.ScoreMoves(mp.pos, mp.noisy, mp.ply, board.NoMove)
			}
			if mp.noisyIdx >= mp.noisy.Len() {
				if mp.mode == PickerMain {
					mp.stage = stagePickKiller
				} else {
					mp.stage = stagePickQuiet
				}
				continue
			}
			PickMove(mp.noisy, mp.noisyScores, mp.noisyIdx)
			move := mp.noisy.Get(mp.noisyIdx)
			mp.noisyIdx++
			if move == mp.ttMove {
				continue
			}
			if SEE(mp.pos, move) < mp.seeThreshold {
				if mp.mode == PickerMain {
					mp.badNoisy = append(mp.badNoisy, move)
				}
				continue
			}
			return move, true

		case stagePickKiller:
			killers := mp.orderer.killers[mp.ply]
			for mp.killerIdx < len(killers) {
				move := killers[mp.killerIdx]
				mp.killerIdx++
				if move == board.NoMove || move == mp.ttMove {
					continue
				}
				return move, true
			}
			mp.stage = stagePickQuiet

		case stagePickQuiet:
			if mp.mode == PickerQSearch && !mp.inCheck {
				mp.stage = stagePickBadNoisy
				continue
			}
			if mp.quiet == nil {
				mp.quiet = mp.pos.GenerateQuietMoves()
				if mp.prevMove != board.NoMove {
					mp.quietScores = mp.orderer.ScoreMovesWithCounter(mp.pos, mp.quiet, mp.ply, board.NoMove, mp.prevMove)
				} else {
					mp.quietScores = mp.orderer.ScoreMoves(mp.pos, mp.quiet, mp.ply, board.NoMove)
				}
			}
			if mp.quietIdx >= mp.quiet.Len() {
				mp.stage = stagePickBadNoisy
				continue
			}
			PickMove(mp.quiet, mp.quietScores, mp.quietIdx)
			move := mp.quiet.Get(mp.quietIdx)
			mp.quietIdx++
			if move == mp.ttMove || mp.isKillerMove(move) {
				continue
			}
			return move, true

		case stagePickBadNoisy:
			if mp.mode != PickerMain || mp.badNoisyIdx >= len(mp.badNoisy) {
				mp.stage = stagePickDone
				continue
			}
			move := mp.badNoisy[mp.badNoisyIdx]
			mp.badNoisyIdx++
			return move, true

		case stagePickDone:
			return board.NoMove, false
		}
	}
}

func (mp *MovePicker) isKillerMove(m board.Move) bool {
	killers := mp.orderer.killers[mp.ply]
	return m == killers[0] || m == killers[1]
}
