package flow

import (
	"javelin/internal/body"
)

// TermKind enumerates terminator kinds. The set is closed: successor
// iteration, predecessor derivation and the transfer functions all switch
// over it exhaustively.
type TermKind uint8

const (
	TermNone TermKind = iota
	// TermGoto is an unconditional jump.
	TermGoto
	// TermIf is a two-way branch on a condition expression.
	TermIf
	// TermSwitch is an ordered multi-way branch; when the switch has no
	// default arm the last target is the implicit "no match" edge.
	TermSwitch
	// TermMulti is a non-deterministic choice: try-body fan-out into catch
	// clauses, and the possible exits of an abrupt finally copy.
	TermMulti
	// TermReturn leaves the method.
	TermReturn
	// TermThrow raises an exception out of the method.
	TermThrow
	// TermExit terminates the designated exit block (and dead abrupt
	// finally copies).
	TermExit
)

func (k TermKind) String() string {
	switch k {
	case TermNone:
		return "none"
	case TermGoto:
		return "goto"
	case TermIf:
		return "if"
	case TermSwitch:
		return "switch"
	case TermMulti:
		return "multi"
	case TermReturn:
		return "return"
	case TermThrow:
		return "throw"
	case TermExit:
		return "exit"
	default:
		return "unknown"
	}
}

// Terminator is the control transfer ending a basic block. Stmt is the
// originating statement where meaningful, for diagnostic attribution.
type Terminator struct {
	Kind TermKind
	Stmt body.StmtID

	Goto   GotoTerm
	If     IfTerm
	Switch SwitchTerm
	Multi  MultiTerm
	Return ReturnTerm
	Throw  ThrowTerm
}

type GotoTerm struct {
	Target BlockID
}

type IfTerm struct {
	Cond body.ExprID
	Then BlockID
	Else BlockID
}

type SwitchTerm struct {
	Value   body.ExprID
	Targets []BlockID
}

type MultiTerm struct {
	Targets []BlockID
}

type ReturnTerm struct {
	Value body.ExprID // NoExprID for a bare return
}

type ThrowTerm struct {
	Value body.ExprID
}

// AppendTargets appends the terminator's successor block ids to dst.
// Return, Throw and Exit name no successors.
func (t *Terminator) AppendTargets(dst []BlockID) []BlockID {
	switch t.Kind {
	case TermGoto:
		return append(dst, t.Goto.Target)
	case TermIf:
		return append(dst, t.If.Then, t.If.Else)
	case TermSwitch:
		return append(dst, t.Switch.Targets...)
	case TermMulti:
		return append(dst, t.Multi.Targets...)
	case TermNone, TermReturn, TermThrow, TermExit:
		return dst
	default:
		return dst
	}
}
