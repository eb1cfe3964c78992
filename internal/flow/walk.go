package flow

import (
	"javelin/internal/body"
)

// termEvalExpr returns the expression a block's terminator evaluates at
// runtime, or NoExprID. Folded branches keep their Goto pointed at the
// originating statement, so a constant `while (flag && false)` condition
// still gets its left operand checked.
func termEvalExpr(b *body.Body, t *Terminator) body.ExprID {
	switch t.Kind {
	case TermIf:
		return t.If.Cond
	case TermSwitch:
		return t.Switch.Value
	case TermReturn:
		return t.Return.Value
	case TermThrow:
		return t.Throw.Value
	case TermGoto, TermMulti:
		st := b.Stmt(t.Stmt)
		if st == nil {
			return body.NoExprID
		}
		switch data := st.Data.(type) {
		case body.IfData:
			return data.Cond
		case body.WhileData:
			return data.Cond
		case body.DoWhileData:
			return data.Cond
		case body.ForData:
			return data.Cond
		case body.SwitchData:
			return data.Value
		case body.ReturnData:
			return data.Value
		case body.ThrowData:
			return data.Value
		default:
			return body.NoExprID
		}
	default:
		return body.NoExprID
	}
}
