package body

import (
	"fmt"

	"fortio.org/safecast"

	"javelin/internal/source"
)

// Builder constructs a Body. It is the producer-facing API: the syntax
// lowering stage appends locals, expressions and statements, sets the root
// and calls Finish. Ids are handed out in insertion order.
type Builder struct {
	body Body
}

func NewBuilder() *Builder {
	return &Builder{body: Body{root: NoStmtID}}
}

// AddLocal appends a local to the flat table and returns its id.
func (bd *Builder) AddLocal(name string, kind LocalKind, sp source.Span) LocalID {
	raw, err := safecast.Conv[int32](len(bd.body.locals))
	if err != nil {
		panic(fmt.Errorf("body: local id overflow: %w", err))
	}
	bd.body.locals = append(bd.body.locals, Local{Name: name, Kind: kind, Span: sp})
	return LocalID(raw)
}

// AddStmt appends a statement to the arena and returns its id.
func (bd *Builder) AddStmt(kind StmtKind, sp source.Span, data StmtData) StmtID {
	raw, err := safecast.Conv[int32](len(bd.body.stmts))
	if err != nil {
		panic(fmt.Errorf("body: stmt id overflow: %w", err))
	}
	bd.body.stmts = append(bd.body.stmts, Stmt{Kind: kind, Span: sp, Data: data})
	return StmtID(raw)
}

// AddExpr appends an expression to the arena and returns its id.
func (bd *Builder) AddExpr(kind ExprKind, sp source.Span, data ExprData) ExprID {
	raw, err := safecast.Conv[int32](len(bd.body.exprs))
	if err != nil {
		panic(fmt.Errorf("body: expr id overflow: %w", err))
	}
	bd.body.exprs = append(bd.body.exprs, Expr{Kind: kind, Span: sp, Data: data})
	return ExprID(raw)
}

// SetRoot records the root statement.
func (bd *Builder) SetRoot(id StmtID) {
	bd.body.root = id
}

// Finish returns the built Body. The builder must not be reused afterwards.
func (bd *Builder) Finish() *Body {
	out := bd.body
	bd.body = Body{root: NoStmtID}
	return &out
}

// Expression constructors.

func (bd *Builder) Null(sp source.Span) ExprID {
	return bd.AddExpr(ExprNullLit, sp, NullLitData{})
}

func (bd *Builder) Bool(sp source.Span, v bool) ExprID {
	return bd.AddExpr(ExprBoolLit, sp, BoolLitData{Value: v})
}

func (bd *Builder) Int(sp source.Span, v int64) ExprID {
	return bd.AddExpr(ExprIntLit, sp, IntLitData{Value: v})
}

func (bd *Builder) Str(sp source.Span, v string) ExprID {
	return bd.AddExpr(ExprStringLit, sp, StringLitData{Value: v})
}

func (bd *Builder) Ref(sp source.Span, local LocalID) ExprID {
	return bd.AddExpr(ExprLocalRef, sp, LocalRefData{Local: local})
}

func (bd *Builder) Unary(sp source.Span, op UnaryOp, operand ExprID) ExprID {
	return bd.AddExpr(ExprUnary, sp, UnaryData{Op: op, Operand: operand})
}

func (bd *Builder) Binary(sp source.Span, op BinaryOp, left, right ExprID) ExprID {
	return bd.AddExpr(ExprBinary, sp, BinaryData{Op: op, Left: left, Right: right})
}

func (bd *Builder) Field(sp source.Span, object ExprID, name string) ExprID {
	return bd.AddExpr(ExprField, sp, FieldData{Object: object, Name: name})
}

func (bd *Builder) Call(sp source.Span, receiver ExprID, method string, args ...ExprID) ExprID {
	return bd.AddExpr(ExprCall, sp, CallData{Receiver: receiver, Method: method, Args: args})
}

func (bd *Builder) New(sp source.Span, class string, args ...ExprID) ExprID {
	return bd.AddExpr(ExprNew, sp, NewData{Class: class, Args: args})
}

// Statement constructors.

func (bd *Builder) Nop(sp source.Span) StmtID {
	return bd.AddStmt(StmtNop, sp, NopData{})
}

func (bd *Builder) Let(sp source.Span, local LocalID, init ExprID) StmtID {
	return bd.AddStmt(StmtLet, sp, LetData{Local: local, Init: init})
}

func (bd *Builder) Assign(sp source.Span, target, value ExprID) StmtID {
	return bd.AddStmt(StmtAssign, sp, AssignData{Target: target, Value: value})
}

func (bd *Builder) ExprStmt(sp source.Span, expr ExprID) StmtID {
	return bd.AddStmt(StmtExpr, sp, ExprStmtData{Expr: expr})
}

func (bd *Builder) Block(sp source.Span, stmts ...StmtID) StmtID {
	return bd.AddStmt(StmtBlock, sp, BlockData{Stmts: stmts})
}

func (bd *Builder) If(sp source.Span, cond ExprID, then, els StmtID) StmtID {
	return bd.AddStmt(StmtIf, sp, IfData{Cond: cond, Then: then, Else: els})
}

func (bd *Builder) While(sp source.Span, cond ExprID, b StmtID) StmtID {
	return bd.AddStmt(StmtWhile, sp, WhileData{Cond: cond, Body: b})
}

func (bd *Builder) DoWhile(sp source.Span, b StmtID, cond ExprID) StmtID {
	return bd.AddStmt(StmtDoWhile, sp, DoWhileData{Body: b, Cond: cond})
}

func (bd *Builder) For(sp source.Span, init StmtID, cond ExprID, update, b StmtID) StmtID {
	return bd.AddStmt(StmtFor, sp, ForData{Init: init, Cond: cond, Update: update, Body: b})
}

func (bd *Builder) Switch(sp source.Span, value ExprID, arms ...SwitchArm) StmtID {
	return bd.AddStmt(StmtSwitch, sp, SwitchData{Value: value, Arms: arms})
}

func (bd *Builder) Try(sp source.Span, b StmtID, catches []StmtID, finally StmtID) StmtID {
	return bd.AddStmt(StmtTry, sp, TryData{Body: b, Catches: catches, Finally: finally})
}

func (bd *Builder) Return(sp source.Span, value ExprID) StmtID {
	return bd.AddStmt(StmtReturn, sp, ReturnData{Value: value})
}

func (bd *Builder) Throw(sp source.Span, value ExprID) StmtID {
	return bd.AddStmt(StmtThrow, sp, ThrowData{Value: value})
}

func (bd *Builder) Break(sp source.Span) StmtID {
	return bd.AddStmt(StmtBreak, sp, BreakData{})
}

func (bd *Builder) Continue(sp source.Span) StmtID {
	return bd.AddStmt(StmtContinue, sp, ContinueData{})
}
