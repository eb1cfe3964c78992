package body

import (
	"javelin/internal/source"
)

// ExprKind enumerates expression kinds.
type ExprKind uint8

const (
	// ExprInvalid is the placeholder for malformed or absent expressions.
	ExprInvalid ExprKind = iota
	// ExprNullLit represents the null literal.
	ExprNullLit
	// ExprBoolLit represents true/false.
	ExprBoolLit
	// ExprIntLit represents an integer literal.
	ExprIntLit
	// ExprStringLit represents a string literal.
	ExprStringLit
	// ExprLocalRef represents a read of a local or parameter.
	ExprLocalRef
	// ExprUnary represents unary operators (!, -).
	ExprUnary
	// ExprBinary represents binary operators (&&, ||, ==, !=, arithmetic).
	ExprBinary
	// ExprField represents field access (object.name).
	ExprField
	// ExprCall represents a method call, instance or static.
	ExprCall
	// ExprNew represents object creation (new T(...)).
	ExprNew
)

// String returns a human-readable name for the expression kind.
func (k ExprKind) String() string {
	switch k {
	case ExprInvalid:
		return "Invalid"
	case ExprNullLit:
		return "NullLit"
	case ExprBoolLit:
		return "BoolLit"
	case ExprIntLit:
		return "IntLit"
	case ExprStringLit:
		return "StringLit"
	case ExprLocalRef:
		return "LocalRef"
	case ExprUnary:
		return "Unary"
	case ExprBinary:
		return "Binary"
	case ExprField:
		return "Field"
	case ExprCall:
		return "Call"
	case ExprNew:
		return "New"
	default:
		return "Unknown"
	}
}

// UnaryOp enumerates unary operators.
type UnaryOp uint8

const (
	OpNot UnaryOp = iota
	OpNeg
)

// BinaryOp enumerates binary operators.
type BinaryOp uint8

const (
	OpAnd BinaryOp = iota // short-circuit &&
	OpOr                  // short-circuit ||
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpRem
)

// ShortCircuit reports whether the operator may skip its right operand.
func (op BinaryOp) ShortCircuit() bool {
	return op == OpAnd || op == OpOr
}

// Expr is one expression in the Body arena.
type Expr struct {
	Kind ExprKind
	Span source.Span
	Data ExprData // Kind-specific payload
}

// ExprData is the interface for expression-specific data.
type ExprData interface {
	exprData()
}

// InvalidData holds data for ExprInvalid.
type InvalidData struct{}

func (InvalidData) exprData() {}

// NullLitData holds data for ExprNullLit.
type NullLitData struct{}

func (NullLitData) exprData() {}

// BoolLitData holds data for ExprBoolLit.
type BoolLitData struct {
	Value bool
}

func (BoolLitData) exprData() {}

// IntLitData holds data for ExprIntLit.
type IntLitData struct {
	Value int64
}

func (IntLitData) exprData() {}

// StringLitData holds data for ExprStringLit.
type StringLitData struct {
	Value string
}

func (StringLitData) exprData() {}

// LocalRefData holds data for ExprLocalRef.
type LocalRefData struct {
	Local LocalID
}

func (LocalRefData) exprData() {}

// UnaryData holds data for ExprUnary.
type UnaryData struct {
	Op      UnaryOp
	Operand ExprID
}

func (UnaryData) exprData() {}

// BinaryData holds data for ExprBinary.
type BinaryData struct {
	Op    BinaryOp
	Left  ExprID
	Right ExprID
}

func (BinaryData) exprData() {}

// FieldData holds data for ExprField.
type FieldData struct {
	Object ExprID
	Name   string
}

func (FieldData) exprData() {}

// CallData holds data for ExprCall.
type CallData struct {
	Receiver ExprID // NoExprID for a static call
	Method   string
	Args     []ExprID
}

func (CallData) exprData() {}

// NewData holds data for ExprNew.
type NewData struct {
	Class string
	Args  []ExprID
}

func (NewData) exprData() {}
