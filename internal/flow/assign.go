package flow

import (
	"fmt"
	"slices"

	"javelin/internal/body"
	"javelin/internal/diag"
)

// assignState holds one assigned-bit per local. Meet at merge points is AND:
// a local is definitely assigned only when every path in assigns it.
type assignState []bool

func cloneAssign(s assignState) assignState {
	return slices.Clone(s)
}

func assignOps(b *body.Body, g *Graph) analysisOps[assignState] {
	return analysisOps[assignState]{
		entry: func() assignState {
			s := make(assignState, b.NumLocals())
			for i, l := range b.Locals() {
				s[i] = l.Kind == body.LocalParam
			}
			return s
		},
		flowEdge: func(_, _ BlockID, out assignState) assignState {
			return cloneAssign(out)
		},
		clone: cloneAssign,
		merge: func(into *assignState, in assignState) {
			s := *into
			for i := range s {
				if i < len(in) {
					s[i] = s[i] && in[i]
				}
			}
		},
		transfer: func(id BlockID, s *assignState) {
			for _, sid := range g.Blocks[id].Stmts {
				applyAssignStmt(b, b.Stmt(sid), *s)
			}
		},
		equal: func(a, b assignState) bool {
			return slices.Equal(a, b)
		},
	}
}

// applyAssignStmt applies a statement's assignment effect. A Let without an
// initializer re-declares the local as unassigned (loop re-entry).
func applyAssignStmt(b *body.Body, st *body.Stmt, s assignState) {
	if st == nil {
		return
	}
	switch data := st.Data.(type) {
	case body.LetData:
		if int(data.Local) < len(s) && data.Local.IsValid() {
			s[data.Local] = data.Init.IsValid()
		}
	case body.AssignData:
		target := b.Expr(data.Target)
		if target == nil || target.Kind != body.ExprLocalRef {
			return
		}
		ref, ok := target.Data.(body.LocalRefData)
		if ok && ref.Local.IsValid() && int(ref.Local) < len(s) {
			s[ref.Local] = true
		}
	}
}

// reportUnassigned replays each reachable block over its fixed-point
// in-state and reports every read of a local not definitely assigned at that
// point. Evaluation order matters: `int y = x;` checks `x` before marking
// `y`, and the right operand of a short-circuit operator is skipped when a
// literal left operand proves it never evaluates.
func reportUnassigned(b *body.Body, g *Graph, reachable []bool, in []assignState, rep diag.Reporter, cp Checkpoint) {
	for i := range g.Blocks {
		if !reachable[i] || in[i] == nil {
			continue
		}
		if cp != nil {
			cp()
		}
		s := cloneAssign(in[i])
		for _, sid := range g.Blocks[i].Stmts {
			st := b.Stmt(sid)
			if st == nil {
				continue
			}
			switch data := st.Data.(type) {
			case body.LetData:
				checkAssignExpr(b, data.Init, s, rep)
			case body.AssignData:
				// Target subexpressions (a field receiver) evaluate
				// before the value; a plain local target is a write,
				// not a read.
				if target := b.Expr(data.Target); target != nil && target.Kind != body.ExprLocalRef {
					checkAssignExpr(b, data.Target, s, rep)
				}
				checkAssignExpr(b, data.Value, s, rep)
			case body.ExprStmtData:
				checkAssignExpr(b, data.Expr, s, rep)
			}
			applyAssignStmt(b, st, s)
		}
		checkAssignExpr(b, termEvalExpr(b, &g.Blocks[i].Term), s, rep)
	}
}

func checkAssignExpr(b *body.Body, id body.ExprID, s assignState, rep diag.Reporter) {
	e := b.Expr(id)
	if e == nil {
		return
	}
	switch data := e.Data.(type) {
	case body.LocalRefData:
		if data.Local.IsValid() && int(data.Local) < len(s) && !s[data.Local] {
			rep.Report(diag.FlowUnassigned, diag.SevError, e.Span,
				fmt.Sprintf("variable '%s' might not have been initialized", b.LocalName(data.Local)))
		}
	case body.UnaryData:
		checkAssignExpr(b, data.Operand, s, rep)
	case body.BinaryData:
		checkAssignExpr(b, data.Left, s, rep)
		if data.Op.ShortCircuit() {
			if lv, lk := literalCond(b, data.Left); lk {
				dead := data.Op == body.OpAnd && !lv || data.Op == body.OpOr && lv
				if dead {
					return
				}
			}
		}
		checkAssignExpr(b, data.Right, s, rep)
	case body.FieldData:
		checkAssignExpr(b, data.Object, s, rep)
	case body.CallData:
		checkAssignExpr(b, data.Receiver, s, rep)
		for _, a := range data.Args {
			checkAssignExpr(b, a, s, rep)
		}
	case body.NewData:
		for _, a := range data.Args {
			checkAssignExpr(b, a, s, rep)
		}
	}
}
