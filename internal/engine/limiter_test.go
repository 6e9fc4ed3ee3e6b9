package engine

import (
	"testing"
	"time"

	"github.com/hailam/chessplay/internal/board"
)

func TestInfiniteLimiterNeverStops(t *testing.T) {
	l := NewInfiniteLimiter()
	data := LimiterSnapshot{Depth: 40, Elapsed: time.Hour, Nodes: 1 << 40}
	if l.Stop(data, true) {
		t.Error("InfiniteLimiter must never stop on its own")
	}
}

func TestNodeLimiterStopsAtCap(t *testing.T) {
	l := NewNodeLimiter(1000)

	if l.Stop(LimiterSnapshot{Nodes: 999}, false) {
		t.Error("should not stop below the cap")
	}
	if !l.Stop(LimiterSnapshot{Nodes: 1000}, false) {
		t.Error("should stop at the cap")
	}
	if !l.Stop(LimiterSnapshot{Nodes: 1001}, true) {
		t.Error("should stop past the cap regardless of allowSoftTimeout")
	}
}

func TestNodeLimiterZeroMeansUnbounded(t *testing.T) {
	l := NewNodeLimiter(0)
	if l.Stop(LimiterSnapshot{Nodes: 1 << 40}, false) {
		t.Error("a zero node cap must never trigger a stop")
	}
}

func TestMoveTimeLimiterStopsAtBudget(t *testing.T) {
	l := NewMoveTimeLimiter(100 * time.Millisecond)

	if l.Stop(LimiterSnapshot{Elapsed: 50 * time.Millisecond}, false) {
		t.Error("should not stop before the budget elapses")
	}
	if !l.Stop(LimiterSnapshot{Elapsed: 100 * time.Millisecond}, false) {
		t.Error("should stop once the budget elapses")
	}
}

func TestTimeManagementLimiterHardDeadlineAlwaysWins(t *testing.T) {
	tm := NewTimeManager()
	tm.Init(UCILimits{Time: [2]time.Duration{time.Second, time.Second}}, board.White, 0)
	tm.maximumTime = 0 // force ShouldStop to report true immediately

	l := NewTimeManagementLimiter(tm)
	if !l.Stop(LimiterSnapshot{}, false) {
		t.Error("expected the hard deadline to stop the search even with allowSoftTimeout=false")
	}
}

func TestTimeManagementLimiterSoftStopNeedsStability(t *testing.T) {
	tm := NewTimeManager()
	tm.optimumTime = 0 // PastOptimum() is immediately true
	tm.maximumTime = time.Hour
	tm.startTime = time.Now()

	l := NewTimeManagementLimiter(tm)

	move := board.NewMove(board.E2, board.E4)
	// Fewer than 4 stable iterations: must not soft-stop yet.
	for i := 0; i < 3; i++ {
		l.Update(LimiterSnapshot{}, 0, move, 0)
	}
	if l.Stop(LimiterSnapshot{}, true) {
		t.Error("should not soft-stop before reaching the stability threshold")
	}

	l.Update(LimiterSnapshot{}, 0, move, 0)
	if !l.Stop(LimiterSnapshot{}, true) {
		t.Error("expected a soft stop once stabilityCount reaches 4 and allowSoftTimeout is set")
	}
}

func TestTimeManagementLimiterSoftStopIgnoredWithoutAllowSoftTimeout(t *testing.T) {
	tm := NewTimeManager()
	tm.optimumTime = 0
	tm.maximumTime = time.Hour
	tm.startTime = time.Now()

	l := NewTimeManagementLimiter(tm)
	move := board.NewMove(board.E2, board.E4)
	for i := 0; i < 5; i++ {
		l.Update(LimiterSnapshot{}, 0, move, 0)
	}

	if l.Stop(LimiterSnapshot{}, false) {
		t.Error("soft timeout must never fire when allowSoftTimeout is false")
	}
}

func TestTimeManagementLimiterUpdateTracksInstability(t *testing.T) {
	tm := NewTimeManager()
	tm.optimumTime = 1000 * time.Millisecond
	tm.maximumTime = time.Hour

	l := NewTimeManagementLimiter(tm)
	moveA := board.NewMove(board.E2, board.E4)
	moveB := board.NewMove(board.D2, board.D4)

	l.Update(LimiterSnapshot{}, 0, moveA, 0)
	l.Update(LimiterSnapshot{}, 0, moveB, 0)
	before := tm.optimumTime
	l.Update(LimiterSnapshot{}, 0, moveA, 0)

	if tm.optimumTime <= before {
		t.Errorf("expected AdjustForInstability to grow optimumTime from %v, got %v", before, tm.optimumTime)
	}
}

func TestCompositeLimiterORReducesStop(t *testing.T) {
	c := NewCompositeLimiter(NewNodeLimiter(1000), NewMoveTimeLimiter(time.Hour))

	if c.Stop(LimiterSnapshot{Nodes: 500, Elapsed: time.Millisecond}, false) {
		t.Error("neither inner limiter should trigger yet")
	}
	if !c.Stop(LimiterSnapshot{Nodes: 1000, Elapsed: time.Millisecond}, false) {
		t.Error("expected the node limiter to trigger the composite stop")
	}
}

func TestCompositeLimiterUpdateFansOutToAllInner(t *testing.T) {
	tm := NewTimeManager()
	tm.optimumTime = time.Second
	tm.maximumTime = time.Hour
	tmLimiter := NewTimeManagementLimiter(tm)
	node := NewNodeLimiter(100)

	c := NewCompositeLimiter(tmLimiter, node)
	move := board.NewMove(board.E2, board.E4)
	c.Update(LimiterSnapshot{}, 0, move, 0)

	if tmLimiter.lastBestMove != move {
		t.Error("expected Update to propagate to the TimeManagementLimiter")
	}
}

func TestBuildLimiterSelectsMoveTimeWhenSet(t *testing.T) {
	tm := NewTimeManager()
	limits := UCILimits{MoveTime: 500 * time.Millisecond}

	l := buildLimiter(limits, tm, board.White)
	if _, ok := l.(*MoveTimeLimiter); !ok {
		t.Errorf("expected *MoveTimeLimiter, got %T", l)
	}
}

func TestBuildLimiterSelectsInfiniteWhenNoTimeGiven(t *testing.T) {
	tm := NewTimeManager()
	limits := UCILimits{Infinite: true}

	l := buildLimiter(limits, tm, board.White)
	if _, ok := l.(*InfiniteLimiter); !ok {
		t.Errorf("expected *InfiniteLimiter, got %T", l)
	}
}

func TestBuildLimiterSelectsTimeManagementForNormalTimeControl(t *testing.T) {
	tm := NewTimeManager()
	limits := UCILimits{Time: [2]time.Duration{10 * time.Second, 10 * time.Second}}

	l := buildLimiter(limits, tm, board.White)
	if _, ok := l.(*TimeManagementLimiter); !ok {
		t.Errorf("expected *TimeManagementLimiter, got %T", l)
	}
}

func TestBuildLimiterComposesNodesWithTimeControl(t *testing.T) {
	tm := NewTimeManager()
	limits := UCILimits{
		Time:  [2]time.Duration{10 * time.Second, 10 * time.Second},
		Nodes: 50000,
	}

	l := buildLimiter(limits, tm, board.White)
	if _, ok := l.(*CompositeLimiter); !ok {
		t.Errorf("expected a *CompositeLimiter when both time control and a node cap are set, got %T", l)
	}
}
