// Package body provides the lowered method/initializer IR consumed by the
// flow analysis core.
//
// A Body is an arena: statements and expressions live in flat tables and
// reference each other through small integer ids. The producer (the syntax
// lowering stage) owns the Body; it is immutable for the duration of an
// analysis call and outlives the control-flow graph built from it, which
// stores StmtID/ExprID references back into the arena rather than copies.
package body

// StmtID identifies a statement within a Body.
type StmtID int32

// ExprID identifies an expression within a Body.
type ExprID int32

// LocalID identifies a local variable or parameter within a Body.
type LocalID int32

// Invalid id constants.
const (
	NoStmtID  StmtID  = -1
	NoExprID  ExprID  = -1
	NoLocalID LocalID = -1
)

func (id StmtID) IsValid() bool  { return id >= 0 }
func (id ExprID) IsValid() bool  { return id >= 0 }
func (id LocalID) IsValid() bool { return id >= 0 }
