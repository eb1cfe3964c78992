package body

import (
	"javelin/internal/source"
)

// StmtKind enumerates statement kinds.
type StmtKind uint8

const (
	// StmtNop is the placeholder for malformed or absent statements.
	// Lowering from partial syntax trees degrades to it instead of failing.
	StmtNop StmtKind = iota
	// StmtLet represents a local variable declaration.
	StmtLet
	// StmtAssign represents an assignment.
	StmtAssign
	// StmtExpr represents an expression statement.
	StmtExpr
	// StmtBlock represents a braced statement list.
	StmtBlock
	// StmtIf represents if/else.
	StmtIf
	// StmtWhile represents a while loop.
	StmtWhile
	// StmtDoWhile represents a do-while loop.
	StmtDoWhile
	// StmtFor represents a classic for loop.
	StmtFor
	// StmtSwitch represents a switch statement.
	StmtSwitch
	// StmtTry represents try/catch/finally.
	StmtTry
	// StmtReturn represents a return statement.
	StmtReturn
	// StmtThrow represents a throw statement.
	StmtThrow
	// StmtBreak represents a break statement.
	StmtBreak
	// StmtContinue represents a continue statement.
	StmtContinue
)

// String returns a human-readable name for the statement kind.
func (k StmtKind) String() string {
	switch k {
	case StmtNop:
		return "Nop"
	case StmtLet:
		return "Let"
	case StmtAssign:
		return "Assign"
	case StmtExpr:
		return "Expr"
	case StmtBlock:
		return "Block"
	case StmtIf:
		return "If"
	case StmtWhile:
		return "While"
	case StmtDoWhile:
		return "DoWhile"
	case StmtFor:
		return "For"
	case StmtSwitch:
		return "Switch"
	case StmtTry:
		return "Try"
	case StmtReturn:
		return "Return"
	case StmtThrow:
		return "Throw"
	case StmtBreak:
		return "Break"
	case StmtContinue:
		return "Continue"
	default:
		return "Unknown"
	}
}

// Stmt is one statement in the Body arena.
type Stmt struct {
	Kind StmtKind
	Span source.Span
	Data StmtData // Kind-specific payload
}

// StmtData is the interface for statement-specific data.
type StmtData interface {
	stmtData()
}

// NopData holds data for StmtNop.
type NopData struct{}

func (NopData) stmtData() {}

// LetData holds data for StmtLet.
type LetData struct {
	Local LocalID
	Init  ExprID // NoExprID for a declaration without initializer
}

func (LetData) stmtData() {}

// AssignData holds data for StmtAssign.
type AssignData struct {
	Target ExprID // LHS; only local references are tracked by the analyses
	Value  ExprID // RHS
}

func (AssignData) stmtData() {}

// ExprStmtData holds data for StmtExpr.
type ExprStmtData struct {
	Expr ExprID
}

func (ExprStmtData) stmtData() {}

// BlockData holds data for StmtBlock.
type BlockData struct {
	Stmts []StmtID
}

func (BlockData) stmtData() {}

// IfData holds data for StmtIf.
type IfData struct {
	Cond ExprID
	Then StmtID
	Else StmtID // NoStmtID if no else branch
}

func (IfData) stmtData() {}

// WhileData holds data for StmtWhile.
type WhileData struct {
	Cond ExprID
	Body StmtID
}

func (WhileData) stmtData() {}

// DoWhileData holds data for StmtDoWhile.
type DoWhileData struct {
	Body StmtID
	Cond ExprID
}

func (DoWhileData) stmtData() {}

// ForData holds data for StmtFor. Any header part may be absent; a for
// without condition is an unconditional loop.
type ForData struct {
	Init   StmtID
	Cond   ExprID
	Update StmtID
	Body   StmtID
}

func (ForData) stmtData() {}

// SwitchArm is one arm of a switch statement, in source order.
type SwitchArm struct {
	Body StmtID
	// Arrow marks an `->` arm: it never falls through to the next arm.
	// Colon-style `case:` arms fall through absent a break.
	Arrow bool
	// Default marks the `default` arm.
	Default bool
}

// SwitchData holds data for StmtSwitch.
type SwitchData struct {
	Value ExprID
	Arms  []SwitchArm
}

func (SwitchData) stmtData() {}

// TryData holds data for StmtTry.
type TryData struct {
	Body    StmtID
	Catches []StmtID // one block per catch clause
	Finally StmtID   // NoStmtID if no finally clause
}

func (TryData) stmtData() {}

// ReturnData holds data for StmtReturn.
type ReturnData struct {
	Value ExprID // NoExprID for a bare return
}

func (ReturnData) stmtData() {}

// ThrowData holds data for StmtThrow.
type ThrowData struct {
	Value ExprID
}

func (ThrowData) stmtData() {}

// BreakData holds data for StmtBreak.
type BreakData struct {
	// Labels are resolved away by the lowering stage.
}

func (BreakData) stmtData() {}

// ContinueData holds data for StmtContinue.
type ContinueData struct{}

func (ContinueData) stmtData() {}
