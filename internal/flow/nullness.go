package flow

import (
	"fmt"
	"slices"

	"javelin/internal/body"
	"javelin/internal/diag"
	"javelin/internal/source"
)

// nullState is the per-local nullability lattice. Bottom is the unvisited
// default; joining anything with bottom yields the other side, joining two
// distinct facts yields Unknown.
type nullState uint8

const (
	nullBottom nullState = iota
	nullNull
	nullNonNull
	nullUnknown
)

func (s nullState) String() string {
	switch s {
	case nullBottom:
		return "bottom"
	case nullNull:
		return "null"
	case nullNonNull:
		return "nonnull"
	case nullUnknown:
		return "unknown"
	default:
		return "?"
	}
}

func joinNull(a, b nullState) nullState {
	switch {
	case a == b:
		return a
	case a == nullBottom:
		return b
	case b == nullBottom:
		return a
	default:
		return nullUnknown
	}
}

// nullFacts is the per-block state: one nullState per local.
type nullFacts []nullState

func cloneNull(s nullFacts) nullFacts {
	return slices.Clone(s)
}

// nullConstraint is one (local, fact) pair a branch condition establishes.
type nullConstraint struct {
	local body.LocalID
	state nullState
}

func nullOps(b *body.Body, g *Graph) analysisOps[nullFacts] {
	return analysisOps[nullFacts]{
		entry: func() nullFacts {
			s := make(nullFacts, b.NumLocals())
			for i := range s {
				s[i] = nullUnknown
			}
			return s
		},
		flowEdge: func(pred, succ BlockID, out nullFacts) nullFacts {
			s := cloneNull(out)
			term := &g.Blocks[pred].Term
			if term.Kind != TermIf {
				return s
			}
			var cons []nullConstraint
			if succ == term.If.Then {
				cons = nullConstraints(b, term.If.Cond, true)
			} else if succ == term.If.Else {
				cons = nullConstraints(b, term.If.Cond, false)
			}
			// Overwrite, not join: the condition outcome is a fact on
			// this edge alone.
			for _, c := range cons {
				if c.local.IsValid() && int(c.local) < len(s) {
					s[c.local] = c.state
				}
			}
			return s
		},
		clone: cloneNull,
		merge: func(into *nullFacts, in nullFacts) {
			s := *into
			for i := range s {
				if i < len(in) {
					s[i] = joinNull(s[i], in[i])
				}
			}
		},
		transfer: func(id BlockID, s *nullFacts) {
			for _, sid := range g.Blocks[id].Stmts {
				applyNullStmt(b, b.Stmt(sid), *s)
			}
		},
		equal: func(a, b nullFacts) bool {
			return slices.Equal(a, b)
		},
	}
}

// nullConstraints extracts the (local, fact) pairs known to hold on the
// branch where cond evaluated to branch. Recognized shapes: comparisons of a
// local against the null literal, negation, and short-circuit operators:
// for `&&` only the true branch proves both operands held, for `||` only the
// false branch proves both failed. Conflicting facts about the same local
// join to Unknown.
func nullConstraints(b *body.Body, cond body.ExprID, branch bool) []nullConstraint {
	e := b.Expr(cond)
	if e == nil {
		return nil
	}
	switch data := e.Data.(type) {
	case body.UnaryData:
		if data.Op == body.OpNot {
			return nullConstraints(b, data.Operand, !branch)
		}
		return nil

	case body.BinaryData:
		switch data.Op {
		case body.OpEq, body.OpNe:
			local, ok := nullComparand(b, data.Left, data.Right)
			if !ok {
				return nil
			}
			isNull := branch == (data.Op == body.OpEq)
			st := nullNonNull
			if isNull {
				st = nullNull
			}
			return []nullConstraint{{local: local, state: st}}

		case body.OpAnd:
			if !branch {
				return nil
			}
			return mergeConstraints(
				nullConstraints(b, data.Left, true),
				nullConstraints(b, data.Right, true),
			)

		case body.OpOr:
			if branch {
				return nil
			}
			return mergeConstraints(
				nullConstraints(b, data.Left, false),
				nullConstraints(b, data.Right, false),
			)

		default:
			return nil
		}

	default:
		return nil
	}
}

// nullComparand matches `x == null` in either operand order and returns the
// compared local.
func nullComparand(b *body.Body, left, right body.ExprID) (body.LocalID, bool) {
	le, re := b.Expr(left), b.Expr(right)
	if le == nil || re == nil {
		return body.NoLocalID, false
	}
	if le.Kind == body.ExprLocalRef && re.Kind == body.ExprNullLit {
		if data, ok := le.Data.(body.LocalRefData); ok {
			return data.Local, true
		}
	}
	if le.Kind == body.ExprNullLit && re.Kind == body.ExprLocalRef {
		if data, ok := re.Data.(body.LocalRefData); ok {
			return data.Local, true
		}
	}
	return body.NoLocalID, false
}

func mergeConstraints(a, b []nullConstraint) []nullConstraint {
	if len(a) == 0 {
		return b
	}
	out := a
	for _, c := range b {
		found := false
		for i := range out {
			if out[i].local == c.local {
				out[i].state = joinNull(out[i].state, c.state)
				found = true
				break
			}
		}
		if !found {
			out = append(out, c)
		}
	}
	return out
}

// applyNullStmt updates a local's fact to the nullability of its new value.
func applyNullStmt(b *body.Body, st *body.Stmt, s nullFacts) {
	if st == nil {
		return
	}
	switch data := st.Data.(type) {
	case body.LetData:
		if data.Local.IsValid() && int(data.Local) < len(s) {
			if data.Init.IsValid() {
				s[data.Local] = exprNullness(b, data.Init, s)
			} else {
				s[data.Local] = nullUnknown
			}
		}
	case body.AssignData:
		target := b.Expr(data.Target)
		if target == nil || target.Kind != body.ExprLocalRef {
			return
		}
		ref, ok := target.Data.(body.LocalRefData)
		if ok && ref.Local.IsValid() && int(ref.Local) < len(s) {
			s[ref.Local] = exprNullness(b, data.Value, s)
		}
	}
}

// exprNullness is the nullability of an expression's value under the current
// facts. Calls and field reads are Unknown: nothing is known about their
// results without type information.
func exprNullness(b *body.Body, id body.ExprID, s nullFacts) nullState {
	e := b.Expr(id)
	if e == nil {
		return nullUnknown
	}
	switch e.Kind {
	case body.ExprNullLit:
		return nullNull
	case body.ExprNew, body.ExprBoolLit, body.ExprIntLit, body.ExprStringLit:
		return nullNonNull
	case body.ExprLocalRef:
		data, ok := e.Data.(body.LocalRefData)
		if !ok || !data.Local.IsValid() || int(data.Local) >= len(s) {
			return nullUnknown
		}
		if s[data.Local] == nullBottom {
			return nullUnknown
		}
		return s[data.Local]
	default:
		return nullUnknown
	}
}

// reportNullDerefs replays each reachable block over its in-state and
// reports field accesses and instance calls whose receiver is not proven
// NonNull. Short-circuit evaluation order is respected: the right operand
// sees the left operand's narrowing, and is skipped entirely when the
// current facts prove it dead.
func reportNullDerefs(b *body.Body, g *Graph, reachable []bool, in []nullFacts, rep diag.Reporter, cp Checkpoint) {
	for i := range g.Blocks {
		if !reachable[i] || in[i] == nil {
			continue
		}
		if cp != nil {
			cp()
		}
		s := cloneNull(in[i])
		for _, sid := range g.Blocks[i].Stmts {
			st := b.Stmt(sid)
			if st == nil {
				continue
			}
			switch data := st.Data.(type) {
			case body.LetData:
				checkNullExpr(b, data.Init, s, rep)
			case body.AssignData:
				if target := b.Expr(data.Target); target != nil && target.Kind != body.ExprLocalRef {
					checkNullExpr(b, data.Target, s, rep)
				}
				checkNullExpr(b, data.Value, s, rep)
			case body.ExprStmtData:
				checkNullExpr(b, data.Expr, s, rep)
			}
			applyNullStmt(b, st, s)
		}
		checkNullExpr(b, termEvalExpr(b, &g.Blocks[i].Term), s, rep)
	}
}

func checkNullExpr(b *body.Body, id body.ExprID, s nullFacts, rep diag.Reporter) {
	e := b.Expr(id)
	if e == nil {
		return
	}
	switch data := e.Data.(type) {
	case body.UnaryData:
		checkNullExpr(b, data.Operand, s, rep)
	case body.BinaryData:
		checkNullExpr(b, data.Left, s, rep)
		if data.Op.ShortCircuit() {
			// Narrow the facts the right operand sees; under facts that
			// prove the left side decisive the right operand is dead and
			// reports nothing.
			if dead, narrowed := shortCircuitRight(b, data.Op, data.Left, s); dead {
				return
			} else if narrowed != nil {
				checkNullExpr(b, data.Right, narrowed, rep)
				return
			}
		}
		checkNullExpr(b, data.Right, s, rep)
	case body.FieldData:
		checkNullExpr(b, data.Object, s, rep)
		checkReceiver(b, data.Object, e.Span, s, rep)
	case body.CallData:
		if data.Receiver.IsValid() {
			checkNullExpr(b, data.Receiver, s, rep)
			checkReceiver(b, data.Receiver, e.Span, s, rep)
		}
		for _, a := range data.Args {
			checkNullExpr(b, a, s, rep)
		}
	case body.NewData:
		for _, a := range data.Args {
			checkNullExpr(b, a, s, rep)
		}
	}
}

// shortCircuitRight decides how the right operand of a short-circuit
// operator is checked: dead (left operand decides under the current facts or
// as a literal), or under edge-narrowed facts from the left operand.
func shortCircuitRight(b *body.Body, op body.BinaryOp, left body.ExprID, s nullFacts) (dead bool, narrowed nullFacts) {
	if lv, lk := literalCond(b, left); lk {
		if op == body.OpAnd && !lv || op == body.OpOr && lv {
			return true, nil
		}
	}
	if decided, value := nullCondOutcome(b, left, s); decided {
		if op == body.OpAnd && !value || op == body.OpOr && value {
			return true, nil
		}
	}
	cons := nullConstraints(b, left, op == body.OpAnd)
	if len(cons) == 0 {
		return false, nil
	}
	narrowed = cloneNull(s)
	for _, c := range cons {
		if c.local.IsValid() && int(c.local) < len(narrowed) {
			narrowed[c.local] = c.state
		}
	}
	return false, narrowed
}

// nullCondOutcome evaluates a null comparison against the current facts:
// `x == null` is decided when x is known Null or known NonNull.
func nullCondOutcome(b *body.Body, cond body.ExprID, s nullFacts) (decided, value bool) {
	e := b.Expr(cond)
	if e == nil {
		return false, false
	}
	switch data := e.Data.(type) {
	case body.UnaryData:
		if data.Op != body.OpNot {
			return false, false
		}
		d, v := nullCondOutcome(b, data.Operand, s)
		return d, !v
	case body.BinaryData:
		if data.Op != body.OpEq && data.Op != body.OpNe {
			return false, false
		}
		local, ok := nullComparand(b, data.Left, data.Right)
		if !ok || !local.IsValid() || int(local) >= len(s) {
			return false, false
		}
		switch s[local] {
		case nullNull:
			return true, data.Op == body.OpEq
		case nullNonNull:
			return true, data.Op == body.OpNe
		default:
			return false, false
		}
	default:
		return false, false
	}
}

// checkReceiver reports a possible null dereference when the receiver is a
// local not proven NonNull, or the null literal itself. Other receiver
// shapes (chained calls, field reads) carry no tracked fact and stay silent.
func checkReceiver(b *body.Body, receiver body.ExprID, at source.Span, s nullFacts, rep diag.Reporter) {
	e := b.Expr(receiver)
	if e == nil {
		return
	}
	switch data := e.Data.(type) {
	case body.NullLitData:
		rep.Report(diag.FlowNullDeref, diag.SevWarning, at, "dereference of null")
	case body.LocalRefData:
		if !data.Local.IsValid() || int(data.Local) >= len(s) {
			return
		}
		switch s[data.Local] {
		case nullNull:
			rep.Report(diag.FlowNullDeref, diag.SevWarning, at,
				fmt.Sprintf("'%s' is null here", b.LocalName(data.Local)))
		case nullUnknown, nullBottom:
			rep.Report(diag.FlowNullDeref, diag.SevWarning, at,
				fmt.Sprintf("'%s' may be null here", b.LocalName(data.Local)))
		}
	}
}
