// Package fixture serializes lowered method bodies to and from .jfb files,
// the interchange format between the external lowering stage and the flow
// analyzer. Payloads are msgpack-encoded flat tables mirroring the body
// arena, keyed by a schema version for safe invalidation.
package fixture

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"javelin/internal/body"
	"javelin/internal/source"
)

// Ext is the file extension for body fixtures.
const Ext = ".jfb"

// Current schema version - increment when Payload format changes
const schemaVersion uint16 = 1

// ErrSchema is returned when a fixture was written by an incompatible
// version.
var ErrSchema = errors.New("fixture: schema version mismatch")

// Payload is the on-disk shape of one lowered body. Statement and
// expression records are generic: Kind selects which of the numbered slots
// are meaningful.
type Payload struct {
	Schema uint16
	Name   string

	Locals []LocalRec
	Stmts  []StmtRec
	Exprs  []ExprRec
	Root   int32
}

type LocalRec struct {
	Name  string
	Kind  uint8
	Start uint32
	End   uint32
}

// StmtRec slot usage per kind:
//
//	Let: A=local B=init; Assign: A=target B=value; Expr: A=expr
//	Block: Refs=stmts; If: A=cond B=then C=else; While: A=cond B=body
//	DoWhile: A=cond B=body; For: A=init B=cond C=update D=body
//	Switch: A=value Refs=arm bodies Flags=arm flags (1=arrow 2=default)
//	Try: A=body B=finally Refs=catches; Return/Throw: A=value
type StmtRec struct {
	Kind  uint8
	Start uint32
	End   uint32
	A     int32
	B     int32
	C     int32
	D     int32
	Refs  []int32
	Flags []uint8
}

// ExprRec slot usage per kind:
//
//	BoolLit: Bool; IntLit: Int; StringLit: Text; LocalRef: A=local
//	Unary: Op A=operand; Binary: Op A=left B=right
//	Field: A=object Text=name; Call: A=receiver Text=method Refs=args
//	New: Text=class Refs=args
type ExprRec struct {
	Kind  uint8
	Start uint32
	End   uint32
	A     int32
	B     int32
	Op    uint8
	Int   int64
	Bool  bool
	Text  string
	Refs  []int32
}

const (
	armFlagArrow   uint8 = 1 << 0
	armFlagDefault uint8 = 1 << 1
)

// Encode writes b as a msgpack payload.
func Encode(w io.Writer, name string, b *body.Body) error {
	p, err := toPayload(name, b)
	if err != nil {
		return err
	}
	return msgpack.NewEncoder(w).Encode(p)
}

// Decode reads a msgpack payload and rebuilds the body.
func Decode(r io.Reader) (string, *body.Body, error) {
	var p Payload
	if err := msgpack.NewDecoder(r).Decode(&p); err != nil {
		return "", nil, fmt.Errorf("fixture: decode: %w", err)
	}
	if p.Schema != schemaVersion {
		return "", nil, fmt.Errorf("%w: got %d, want %d", ErrSchema, p.Schema, schemaVersion)
	}
	b, err := fromPayload(&p)
	if err != nil {
		return "", nil, err
	}
	return p.Name, b, nil
}

// Save writes a fixture file atomically: encode into a temp file next to the
// destination, then rename.
func Save(path, name string, b *body.Body) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if err := Encode(f, name, b); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// Load reads a fixture file.
func Load(path string) (string, *body.Body, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", nil, err
	}
	defer f.Close()
	name, b, err := Decode(f)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", path, err)
	}
	return name, b, nil
}

func toPayload(name string, b *body.Body) (*Payload, error) {
	if b == nil {
		return nil, errors.New("fixture: nil body")
	}
	p := &Payload{
		Schema: schemaVersion,
		Name:   name,
		Root:   int32(b.Root()),
		Locals: make([]LocalRec, 0, b.NumLocals()),
		Stmts:  make([]StmtRec, 0, b.NumStmts()),
		Exprs:  make([]ExprRec, 0, b.NumExprs()),
	}
	for _, l := range b.Locals() {
		p.Locals = append(p.Locals, LocalRec{
			Name: l.Name, Kind: uint8(l.Kind), Start: l.Span.Start, End: l.Span.End,
		})
	}
	for i := 0; i < b.NumStmts(); i++ {
		rec, err := stmtToRec(b.Stmt(body.StmtID(i)))
		if err != nil {
			return nil, fmt.Errorf("fixture: stmt s%d: %w", i, err)
		}
		p.Stmts = append(p.Stmts, rec)
	}
	for i := 0; i < b.NumExprs(); i++ {
		rec, err := exprToRec(b.Expr(body.ExprID(i)))
		if err != nil {
			return nil, fmt.Errorf("fixture: expr e%d: %w", i, err)
		}
		p.Exprs = append(p.Exprs, rec)
	}
	return p, nil
}

func stmtToRec(st *body.Stmt) (StmtRec, error) {
	rec := StmtRec{Kind: uint8(st.Kind), Start: st.Span.Start, End: st.Span.End}
	switch data := st.Data.(type) {
	case body.NopData, body.BreakData, body.ContinueData:
	case body.LetData:
		rec.A, rec.B = int32(data.Local), int32(data.Init)
	case body.AssignData:
		rec.A, rec.B = int32(data.Target), int32(data.Value)
	case body.ExprStmtData:
		rec.A = int32(data.Expr)
	case body.BlockData:
		rec.Refs = stmtRefs(data.Stmts)
	case body.IfData:
		rec.A, rec.B, rec.C = int32(data.Cond), int32(data.Then), int32(data.Else)
	case body.WhileData:
		rec.A, rec.B = int32(data.Cond), int32(data.Body)
	case body.DoWhileData:
		rec.A, rec.B = int32(data.Cond), int32(data.Body)
	case body.ForData:
		rec.A, rec.B, rec.C, rec.D = int32(data.Init), int32(data.Cond), int32(data.Update), int32(data.Body)
	case body.SwitchData:
		rec.A = int32(data.Value)
		rec.Refs = make([]int32, len(data.Arms))
		rec.Flags = make([]uint8, len(data.Arms))
		for i, arm := range data.Arms {
			rec.Refs[i] = int32(arm.Body)
			if arm.Arrow {
				rec.Flags[i] |= armFlagArrow
			}
			if arm.Default {
				rec.Flags[i] |= armFlagDefault
			}
		}
	case body.TryData:
		rec.A, rec.B = int32(data.Body), int32(data.Finally)
		rec.Refs = stmtRefs(data.Catches)
	case body.ReturnData:
		rec.A = int32(data.Value)
	case body.ThrowData:
		rec.A = int32(data.Value)
	default:
		return rec, fmt.Errorf("unsupported payload %T", st.Data)
	}
	return rec, nil
}

func exprToRec(e *body.Expr) (ExprRec, error) {
	rec := ExprRec{Kind: uint8(e.Kind), Start: e.Span.Start, End: e.Span.End}
	switch data := e.Data.(type) {
	case body.InvalidData, body.NullLitData:
	case body.BoolLitData:
		rec.Bool = data.Value
	case body.IntLitData:
		rec.Int = data.Value
	case body.StringLitData:
		rec.Text = data.Value
	case body.LocalRefData:
		rec.A = int32(data.Local)
	case body.UnaryData:
		rec.Op, rec.A = uint8(data.Op), int32(data.Operand)
	case body.BinaryData:
		rec.Op, rec.A, rec.B = uint8(data.Op), int32(data.Left), int32(data.Right)
	case body.FieldData:
		rec.A, rec.Text = int32(data.Object), data.Name
	case body.CallData:
		rec.A, rec.Text = int32(data.Receiver), data.Method
		rec.Refs = exprRefs(data.Args)
	case body.NewData:
		rec.Text = data.Class
		rec.Refs = exprRefs(data.Args)
	default:
		return rec, fmt.Errorf("unsupported payload %T", e.Data)
	}
	return rec, nil
}

func fromPayload(p *Payload) (*body.Body, error) {
	bd := body.NewBuilder()
	for _, l := range p.Locals {
		bd.AddLocal(l.Name, body.LocalKind(l.Kind), source.Span{Start: l.Start, End: l.End})
	}
	for i, rec := range p.Exprs {
		data, err := recToExprData(rec)
		if err != nil {
			return nil, fmt.Errorf("fixture: expr e%d: %w", i, err)
		}
		bd.AddExpr(body.ExprKind(rec.Kind), source.Span{Start: rec.Start, End: rec.End}, data)
	}
	for i, rec := range p.Stmts {
		data, err := recToStmtData(rec)
		if err != nil {
			return nil, fmt.Errorf("fixture: stmt s%d: %w", i, err)
		}
		bd.AddStmt(body.StmtKind(rec.Kind), source.Span{Start: rec.Start, End: rec.End}, data)
	}
	bd.SetRoot(body.StmtID(p.Root))
	return bd.Finish(), nil
}

func recToStmtData(rec StmtRec) (body.StmtData, error) {
	switch body.StmtKind(rec.Kind) {
	case body.StmtNop:
		return body.NopData{}, nil
	case body.StmtLet:
		return body.LetData{Local: body.LocalID(rec.A), Init: body.ExprID(rec.B)}, nil
	case body.StmtAssign:
		return body.AssignData{Target: body.ExprID(rec.A), Value: body.ExprID(rec.B)}, nil
	case body.StmtExpr:
		return body.ExprStmtData{Expr: body.ExprID(rec.A)}, nil
	case body.StmtBlock:
		return body.BlockData{Stmts: refsToStmts(rec.Refs)}, nil
	case body.StmtIf:
		return body.IfData{Cond: body.ExprID(rec.A), Then: body.StmtID(rec.B), Else: body.StmtID(rec.C)}, nil
	case body.StmtWhile:
		return body.WhileData{Cond: body.ExprID(rec.A), Body: body.StmtID(rec.B)}, nil
	case body.StmtDoWhile:
		return body.DoWhileData{Cond: body.ExprID(rec.A), Body: body.StmtID(rec.B)}, nil
	case body.StmtFor:
		return body.ForData{Init: body.StmtID(rec.A), Cond: body.ExprID(rec.B), Update: body.StmtID(rec.C), Body: body.StmtID(rec.D)}, nil
	case body.StmtSwitch:
		arms := make([]body.SwitchArm, len(rec.Refs))
		for i, ref := range rec.Refs {
			arms[i] = body.SwitchArm{Body: body.StmtID(ref)}
			if i < len(rec.Flags) {
				arms[i].Arrow = rec.Flags[i]&armFlagArrow != 0
				arms[i].Default = rec.Flags[i]&armFlagDefault != 0
			}
		}
		return body.SwitchData{Value: body.ExprID(rec.A), Arms: arms}, nil
	case body.StmtTry:
		return body.TryData{Body: body.StmtID(rec.A), Catches: refsToStmts(rec.Refs), Finally: body.StmtID(rec.B)}, nil
	case body.StmtReturn:
		return body.ReturnData{Value: body.ExprID(rec.A)}, nil
	case body.StmtThrow:
		return body.ThrowData{Value: body.ExprID(rec.A)}, nil
	case body.StmtBreak:
		return body.BreakData{}, nil
	case body.StmtContinue:
		return body.ContinueData{}, nil
	default:
		return nil, fmt.Errorf("unknown kind %d", rec.Kind)
	}
}

func recToExprData(rec ExprRec) (body.ExprData, error) {
	switch body.ExprKind(rec.Kind) {
	case body.ExprInvalid:
		return body.InvalidData{}, nil
	case body.ExprNullLit:
		return body.NullLitData{}, nil
	case body.ExprBoolLit:
		return body.BoolLitData{Value: rec.Bool}, nil
	case body.ExprIntLit:
		return body.IntLitData{Value: rec.Int}, nil
	case body.ExprStringLit:
		return body.StringLitData{Value: rec.Text}, nil
	case body.ExprLocalRef:
		return body.LocalRefData{Local: body.LocalID(rec.A)}, nil
	case body.ExprUnary:
		return body.UnaryData{Op: body.UnaryOp(rec.Op), Operand: body.ExprID(rec.A)}, nil
	case body.ExprBinary:
		return body.BinaryData{Op: body.BinaryOp(rec.Op), Left: body.ExprID(rec.A), Right: body.ExprID(rec.B)}, nil
	case body.ExprField:
		return body.FieldData{Object: body.ExprID(rec.A), Name: rec.Text}, nil
	case body.ExprCall:
		return body.CallData{Receiver: body.ExprID(rec.A), Method: rec.Text, Args: refsToExprs(rec.Refs)}, nil
	case body.ExprNew:
		return body.NewData{Class: rec.Text, Args: refsToExprs(rec.Refs)}, nil
	default:
		return nil, fmt.Errorf("unknown kind %d", rec.Kind)
	}
}

func stmtRefs(ids []body.StmtID) []int32 {
	out := make([]int32, len(ids))
	for i, id := range ids {
		out[i] = int32(id)
	}
	return out
}

func exprRefs(ids []body.ExprID) []int32 {
	out := make([]int32, len(ids))
	for i, id := range ids {
		out[i] = int32(id)
	}
	return out
}

func refsToStmts(refs []int32) []body.StmtID {
	if len(refs) == 0 {
		return nil
	}
	out := make([]body.StmtID, len(refs))
	for i, r := range refs {
		out[i] = body.StmtID(r)
	}
	return out
}

func refsToExprs(refs []int32) []body.ExprID {
	if len(refs) == 0 {
		return nil
	}
	out := make([]body.ExprID, len(refs))
	for i, r := range refs {
		out[i] = body.ExprID(r)
	}
	return out
}
