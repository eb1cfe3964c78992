package body

import (
	"javelin/internal/source"
)

// LocalKind distinguishes parameters from declared locals.
type LocalKind uint8

const (
	// LocalParam is a method parameter, definitely assigned at entry.
	LocalParam LocalKind = iota
	// LocalVar is a local variable declared in the body.
	LocalVar
)

func (k LocalKind) String() string {
	if k == LocalParam {
		return "param"
	}
	return "local"
}

// Local describes one entry of the flat locals table.
type Local struct {
	Name string
	Kind LocalKind
	Span source.Span
}

// Body is the lowered method/initializer consumed by flow analysis.
// It is immutable once built.
type Body struct {
	stmts  []Stmt
	exprs  []Expr
	locals []Local
	root   StmtID
}

// Root returns the root statement id (usually a block).
func (b *Body) Root() StmtID {
	if b == nil {
		return NoStmtID
	}
	return b.root
}

// Stmt returns the statement for id, or nil for an invalid id.
func (b *Body) Stmt(id StmtID) *Stmt {
	if b == nil || !id.IsValid() || int(id) >= len(b.stmts) {
		return nil
	}
	return &b.stmts[id]
}

// Expr returns the expression for id, or nil for an invalid id.
func (b *Body) Expr(id ExprID) *Expr {
	if b == nil || !id.IsValid() || int(id) >= len(b.exprs) {
		return nil
	}
	return &b.exprs[id]
}

// Local returns the local for id, or nil for an invalid id.
func (b *Body) Local(id LocalID) *Local {
	if b == nil || !id.IsValid() || int(id) >= len(b.locals) {
		return nil
	}
	return &b.locals[id]
}

// Locals returns the flat locals table; callers must not modify it.
func (b *Body) Locals() []Local {
	if b == nil {
		return nil
	}
	return b.locals
}

// NumLocals returns the number of locals including parameters.
func (b *Body) NumLocals() int {
	if b == nil {
		return 0
	}
	return len(b.locals)
}

// NumStmts returns the number of statements in the arena.
func (b *Body) NumStmts() int {
	if b == nil {
		return 0
	}
	return len(b.stmts)
}

// NumExprs returns the number of expressions in the arena.
func (b *Body) NumExprs() int {
	if b == nil {
		return 0
	}
	return len(b.exprs)
}

// LocalName returns the name of a local, or "_" if unknown.
func (b *Body) LocalName(id LocalID) string {
	l := b.Local(id)
	if l == nil || l.Name == "" {
		return "_"
	}
	return l.Name
}
