package flow

import (
	"strings"
	"testing"

	"javelin/internal/body"
	"javelin/internal/source"
)

func TestValidateRejectsBrokenGraphs(t *testing.T) {
	if Validate(nil) == nil {
		t.Error("nil graph must not validate")
	}

	g := &Graph{
		Blocks: []BasicBlock{
			{ID: 0, Term: Terminator{Kind: TermGoto, Stmt: body.NoStmtID, Goto: GotoTerm{Target: 7}}},
			{ID: 1, Term: Terminator{Kind: TermNone, Stmt: body.NoStmtID}},
		},
		Entry: 0,
		Exit:  1,
	}
	err := Validate(g)
	if err == nil {
		t.Fatal("out-of-range target and missing terminator must fail")
	}
	msg := err.Error()
	for _, want := range []string{"out-of-range", "no terminator"} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q missing %q", msg, want)
		}
	}
}

func TestValidateBuiltGraphs(t *testing.T) {
	bd := body.NewBuilder()
	c := bd.AddLocal("c", body.LocalParam, source.Span{Start: 0, End: 1})
	brk := bd.Break(source.Span{Start: 10, End: 16})
	loop := bd.While(source.Span{Start: 2, End: 18}, bd.Ref(source.Span{Start: 8, End: 9}, c), brk)
	orphanBreak := bd.Break(source.Span{Start: 20, End: 26}) // no enclosing loop
	bd.SetRoot(bd.Block(source.None, loop, orphanBreak))
	b := bd.Finish()

	g := Build(b)
	if err := Validate(g); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestDumpGraph(t *testing.T) {
	bd := body.NewBuilder()
	c := bd.AddLocal("c", body.LocalParam, source.Span{Start: 0, End: 1})
	ifS := bd.If(source.Span{Start: 2, End: 20}, bd.Ref(source.Span{Start: 6, End: 7}, c),
		bd.Nop(source.Span{Start: 10, End: 11}), body.NoStmtID)
	bd.SetRoot(bd.Block(source.None, ifS))
	b := bd.Finish()

	g := Build(b)
	var sb strings.Builder
	if err := DumpGraph(&sb, g, Reachability(g)); err != nil {
		t.Fatalf("DumpGraph: %v", err)
	}
	out := sb.String()
	for _, want := range []string{"bb0 (entry):", "exit", "if e", "goto -> bb"} {
		if !strings.Contains(out, want) {
			t.Errorf("dump missing %q:\n%s", want, out)
		}
	}
}
