package flow

import (
	"testing"

	"javelin/internal/body"
	"javelin/internal/source"
)

func TestReachabilityEntryOnly(t *testing.T) {
	bd := body.NewBuilder()
	bd.SetRoot(bd.Block(source.None))
	g := Build(bd.Finish())

	reachable := Reachability(g)
	if !reachable[g.Entry] {
		t.Error("entry must be reachable")
	}
	// Implicit return has no edge into the exit block.
	if reachable[g.Exit] {
		t.Error("exit unexpectedly reachable")
	}
	if CountReachable(reachable) != 1 {
		t.Errorf("CountReachable = %d, want 1", CountReachable(reachable))
	}
}

func TestReachabilityThroughLoop(t *testing.T) {
	bd := body.NewBuilder()
	c := bd.AddLocal("c", body.LocalParam, source.Span{Start: 0, End: 1})
	step := bd.ExprStmt(source.Span{Start: 12, End: 18}, bd.Call(source.Span{Start: 12, End: 17}, body.NoExprID, "step"))
	loop := bd.While(source.Span{Start: 2, End: 20}, bd.Ref(source.Span{Start: 9, End: 10}, c), step)
	after := bd.Nop(source.Span{Start: 22, End: 23})
	bd.SetRoot(bd.Block(source.None, loop, after))
	b := bd.Finish()

	g := Build(b)
	reachable := Reachability(g)
	for _, sid := range []body.StmtID{step, after} {
		if !anyReachable(reachable, blocksWith(g, sid)) {
			t.Errorf("stmt s%d unreachable", sid)
		}
	}
}

func TestReachabilityCheckpointPerBlock(t *testing.T) {
	bd := body.NewBuilder()
	bd.SetRoot(bd.Block(source.None, bd.Nop(source.Span{Start: 0, End: 1})))
	g := Build(bd.Finish())

	calls := 0
	reachable := ReachabilityWithCheckpoint(g, func() { calls++ })
	if calls != CountReachable(reachable) {
		t.Errorf("checkpoint called %d times for %d reachable blocks", calls, CountReachable(reachable))
	}
}

func TestReachabilityNilGraph(t *testing.T) {
	if Reachability(nil) != nil {
		t.Error("nil graph must yield nil vector")
	}
}
