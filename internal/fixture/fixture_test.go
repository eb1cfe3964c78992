package fixture

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/vmihailenco/msgpack/v5"

	"javelin/internal/body"
	"javelin/internal/source"
)

func sampleBody() *body.Body {
	bd := body.NewBuilder()
	c := bd.AddLocal("c", body.LocalParam, source.Span{Start: 0, End: 1})
	s := bd.AddLocal("s", body.LocalVar, source.Span{Start: 9, End: 10})
	declS := bd.Let(source.Span{Start: 2, End: 18}, s, bd.Null(source.Span{Start: 13, End: 17}))
	call := bd.ExprStmt(source.Span{Start: 30, End: 42},
		bd.Call(source.Span{Start: 30, End: 41}, bd.Ref(source.Span{Start: 30, End: 31}, s), "length"))
	ifS := bd.If(source.Span{Start: 20, End: 44}, bd.Ref(source.Span{Start: 24, End: 25}, c), call, body.NoStmtID)
	try := bd.Try(source.Span{Start: 46, End: 60}, ifS, nil, bd.Nop(source.Span{Start: 56, End: 57}))
	bd.SetRoot(bd.Block(source.None, declS, try))
	return bd.Finish()
}

func TestRoundTrip(t *testing.T) {
	b := sampleBody()

	var buf bytes.Buffer
	if err := Encode(&buf, "Sample.method", b); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	name, got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if name != "Sample.method" {
		t.Errorf("name = %q", name)
	}
	if got.NumLocals() != b.NumLocals() || got.NumStmts() != b.NumStmts() || got.NumExprs() != b.NumExprs() {
		t.Fatalf("arena sizes differ: %d/%d/%d vs %d/%d/%d",
			got.NumLocals(), got.NumStmts(), got.NumExprs(),
			b.NumLocals(), b.NumStmts(), b.NumExprs())
	}
	if got.Root() != b.Root() {
		t.Errorf("root = %d, want %d", got.Root(), b.Root())
	}

	// Spot-check a nested payload survived intact.
	st := got.Stmt(got.Root())
	block, ok := st.Data.(body.BlockData)
	if !ok || len(block.Stmts) != 2 {
		t.Fatalf("root payload = %+v", st.Data)
	}
	try, ok := got.Stmt(block.Stmts[1]).Data.(body.TryData)
	if !ok || !try.Finally.IsValid() || len(try.Catches) != 0 {
		t.Fatalf("try payload = %+v", try)
	}
	if got.LocalName(1) != "s" {
		t.Errorf("local 1 = %q, want s", got.LocalName(1))
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample"+Ext)
	if err := Save(path, "m", sampleBody()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	name, got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if name != "m" || got.NumStmts() == 0 {
		t.Errorf("Load = %q, %d stmts", name, got.NumStmts())
	}
}

func TestSchemaMismatch(t *testing.T) {
	var buf bytes.Buffer
	p := Payload{Schema: schemaVersion + 1}
	if err := msgpack.NewEncoder(&buf).Encode(&p); err != nil {
		t.Fatalf("encode: %v", err)
	}
	_, _, err := Decode(&buf)
	if !errors.Is(err, ErrSchema) {
		t.Errorf("Decode err = %v, want ErrSchema", err)
	}
}
