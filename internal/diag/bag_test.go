package diag

import (
	"testing"

	"javelin/internal/source"
)

func TestBagLimit(t *testing.T) {
	b := NewBag(2)
	if !b.Add(NewWarning(FlowUnreachable, source.Span{Start: 1, End: 2}, "a")) {
		t.Fatal("first add rejected")
	}
	if !b.Add(NewWarning(FlowUnreachable, source.Span{Start: 3, End: 4}, "b")) {
		t.Fatal("second add rejected")
	}
	if b.Add(NewWarning(FlowUnreachable, source.Span{Start: 5, End: 6}, "c")) {
		t.Error("add past limit accepted")
	}
	if b.Len() != 2 {
		t.Errorf("Len = %d, want 2", b.Len())
	}
}

func TestBagSortMissingSpansLast(t *testing.T) {
	b := NewBag(10)
	b.Add(NewWarning(FlowUnreachable, source.None, "no span"))
	b.Add(NewWarning(FlowNullDeref, source.Span{Start: 9, End: 12}, "late"))
	b.Add(NewError(FlowUnassigned, source.Span{Start: 2, End: 4}, "early"))
	b.Add(NewError(FlowUnassigned, source.Span{Start: 2, End: 7}, "early wide"))
	b.Sort()

	items := b.Items()
	wantMsgs := []string{"early", "early wide", "late", "no span"}
	for i, want := range wantMsgs {
		if items[i].Message != want {
			t.Errorf("position %d: got %q, want %q", i, items[i].Message, want)
		}
	}
}

func TestBagSortTiesOnCodeThenMessage(t *testing.T) {
	at := source.Span{Start: 5, End: 8}
	b := NewBag(10)
	b.Add(NewWarning(FlowUnreachable, at, "b"))
	b.Add(NewWarning(FlowNullDeref, at, "z"))
	b.Add(NewWarning(FlowUnreachable, at, "a"))
	b.Sort()

	items := b.Items()
	// FLOW_NULL_DEREF < FLOW_UNREACHABLE lexicographically.
	if items[0].Code != FlowNullDeref {
		t.Errorf("first code = %s", items[0].Code)
	}
	if items[1].Message != "a" || items[2].Message != "b" {
		t.Errorf("message tiebreak broken: %q, %q", items[1].Message, items[2].Message)
	}
}

func TestBagDedup(t *testing.T) {
	at := source.Span{Start: 5, End: 8}
	b := NewBag(10)
	b.Add(NewWarning(FlowNullDeref, at, "first wording"))
	b.Add(NewWarning(FlowNullDeref, at, "second wording"))
	b.Add(NewWarning(FlowUnreachable, at, "different code survives"))
	b.Dedup()

	if b.Len() != 2 {
		t.Fatalf("Len = %d, want 2", b.Len())
	}
	if b.Items()[0].Message != "first wording" {
		t.Errorf("dedup must keep the first occurrence, got %q", b.Items()[0].Message)
	}
}

func TestCodeStrings(t *testing.T) {
	cases := map[Code]string{
		FlowUnreachable: "FLOW_UNREACHABLE",
		FlowUnassigned:  "FLOW_UNASSIGNED",
		FlowNullDeref:   "FLOW_NULL_DEREF",
		Code(9999):      "FLOW_UNKNOWN",
	}
	for code, want := range cases {
		if code.String() != want {
			t.Errorf("%d.String() = %q, want %q", code, code.String(), want)
		}
	}
}
