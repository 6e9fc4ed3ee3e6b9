package engine

import (
	"time"

	"github.com/hailam/chessplay/internal/board"
)

// LimiterSnapshot is the data a Limiter is polled with after each completed
// iterative-deepening iteration (§4.J's `update(data, score, bestMove,
// totalNodes)`) and at stop-checkpoints (`stop(data, allowSoftTimeout)`).
type LimiterSnapshot struct {
	Depth   int
	Elapsed time.Duration
	Nodes   uint64
}

// Limiter is spec §4.J's search-termination interface. It is the one
// dynamic-dispatch boundary search control flow crosses (§9: "the Move
// Picker is a concrete type... only the limiter crosses an interface
// boundary, and it is polled O(1)/node"); every other decision stays
// monomorphic.
type Limiter interface {
	// Stop reports whether the search must halt now. allowSoftTimeout
	// gates the time-management soft target: a depth/node-cap limiter
	// ignores it and only ever enforces its hard cap.
	Stop(data LimiterSnapshot, allowSoftTimeout bool) bool
	// Update is called once per completed ID iteration with the result,
	// so time-management variants can grow/shrink the soft target based
	// on best-move stability.
	Update(data LimiterSnapshot, score int, bestMove board.Move, totalNodes uint64)
	// UpdateMoveNodes feeds per-root-move node counts (node-count-based
	// time-management scaling); limiters that don't use it ignore it.
	UpdateMoveNodes(move board.Move, nodes uint64)
}

// InfiniteLimiter never stops on its own; only an external Stop() call
// (engine.stopFlag) ends the search.
type InfiniteLimiter struct{}

func NewInfiniteLimiter() *InfiniteLimiter { return &InfiniteLimiter{} }

func (l *InfiniteLimiter) Stop(LimiterSnapshot, bool) bool                 { return false }
func (l *InfiniteLimiter) Update(LimiterSnapshot, int, board.Move, uint64) {}
func (l *InfiniteLimiter) UpdateMoveNodes(board.Move, uint64)              {}

// NodeLimiter enforces a hard node cap.
type NodeLimiter struct {
	maxNodes uint64
}

func NewNodeLimiter(maxNodes uint64) *NodeLimiter {
	return &NodeLimiter{maxNodes: maxNodes}
}

func (l *NodeLimiter) Stop(data LimiterSnapshot, _ bool) bool {
	return l.maxNodes > 0 && data.Nodes >= l.maxNodes
}
func (l *NodeLimiter) Update(LimiterSnapshot, int, board.Move, uint64) {}
func (l *NodeLimiter) UpdateMoveNodes(board.Move, uint64)              {}

// MoveTimeLimiter enforces a fixed wall-clock budget per move.
type MoveTimeLimiter struct {
	budget time.Duration
}

func NewMoveTimeLimiter(budget time.Duration) *MoveTimeLimiter {
	return &MoveTimeLimiter{budget: budget}
}

func (l *MoveTimeLimiter) Stop(data LimiterSnapshot, _ bool) bool {
	return data.Elapsed >= l.budget
}
func (l *MoveTimeLimiter) Update(LimiterSnapshot, int, board.Move, uint64) {}
func (l *MoveTimeLimiter) UpdateMoveNodes(board.Move, uint64)              {}

// TimeManagementLimiter wraps *TimeManager with the best-move-stability
// tracking engine.go used to run inline: a soft target that shrinks as the
// move stabilises across iterations and grows when it keeps changing, plus
// a hard deadline that always wins regardless of stability.
type TimeManagementLimiter struct {
	tm               *TimeManager
	lastBestMove     board.Move
	stabilityCount   int
	instabilityCount int
}

func NewTimeManagementLimiter(tm *TimeManager) *TimeManagementLimiter {
	return &TimeManagementLimiter{tm: tm}
}

func (l *TimeManagementLimiter) Stop(_ LimiterSnapshot, allowSoftTimeout bool) bool {
	if l.tm.ShouldStop() {
		return true
	}
	if allowSoftTimeout && l.tm.PastOptimum() && l.stabilityCount >= 4 {
		return true
	}
	return false
}

func (l *TimeManagementLimiter) Update(_ LimiterSnapshot, _ int, bestMove board.Move, _ uint64) {
	switch {
	case bestMove == l.lastBestMove:
		l.stabilityCount++
		l.instabilityCount = 0
	case l.lastBestMove == board.NoMove:
		// The first iteration establishes the best move; it is not a change.
		l.stabilityCount = 1
		l.lastBestMove = bestMove
	default:
		l.instabilityCount++
		l.stabilityCount = 1
		l.lastBestMove = bestMove
	}

	if l.instabilityCount >= 2 {
		l.tm.AdjustForInstability(l.instabilityCount)
	} else if l.stabilityCount >= 2 {
		l.tm.AdjustForStability(l.stabilityCount)
	}
}

func (l *TimeManagementLimiter) UpdateMoveNodes(board.Move, uint64) {}

// CompositeLimiter OR-reduces any number of inner limiters, per §9: "the
// composite variant holds a vector of inner limiters and OR-reduces."
type CompositeLimiter struct {
	inner []Limiter
}

func NewCompositeLimiter(inner ...Limiter) *CompositeLimiter {
	return &CompositeLimiter{inner: inner}
}

func (l *CompositeLimiter) Stop(data LimiterSnapshot, allowSoftTimeout bool) bool {
	for _, inner := range l.inner {
		if inner.Stop(data, allowSoftTimeout) {
			return true
		}
	}
	return false
}

func (l *CompositeLimiter) Update(data LimiterSnapshot, score int, bestMove board.Move, totalNodes uint64) {
	for _, inner := range l.inner {
		inner.Update(data, score, bestMove, totalNodes)
	}
}

func (l *CompositeLimiter) UpdateMoveNodes(move board.Move, nodes uint64) {
	for _, inner := range l.inner {
		inner.UpdateMoveNodes(move, nodes)
	}
}

// buildLimiter assembles the Limiter for one search from UCI limits,
// mirroring the {infinite, nodes, movetime, time-manager, composite}
// variant set §4.J/§9 name.
func buildLimiter(limits UCILimits, tm *TimeManager, us board.Color) Limiter {
	var parts []Limiter

	switch {
	case limits.MoveTime > 0:
		parts = append(parts, NewMoveTimeLimiter(limits.MoveTime))
	case limits.Infinite || limits.Time[us] == 0:
		parts = append(parts, NewInfiniteLimiter())
	default:
		parts = append(parts, NewTimeManagementLimiter(tm))
	}

	if limits.Nodes > 0 {
		parts = append(parts, NewNodeLimiter(limits.Nodes))
	}

	if len(parts) == 1 {
		return parts[0]
	}
	return NewCompositeLimiter(parts...)
}
