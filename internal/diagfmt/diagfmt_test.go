package diagfmt

import (
	"encoding/json"
	"strings"
	"testing"

	"javelin/internal/diag"
	"javelin/internal/source"
)

func sampleDiags() []diag.Diagnostic {
	return []diag.Diagnostic{
		diag.NewError(diag.FlowUnassigned, source.Span{Start: 15, End: 16}, "variable 'x' might not have been initialized"),
		diag.NewWarning(diag.FlowNullDeref, source.Span{Start: 17, End: 28}, "'s' is null here").
			WithNote(source.None, "assigned null above"),
		diag.NewWarning(diag.FlowUnreachable, source.None, "unreachable code"),
	}
}

func TestPrettyPlain(t *testing.T) {
	var sb strings.Builder
	Pretty(&sb, sampleDiags(), PrettyOpts{ShowNotes: true})
	out := sb.String()

	for _, want := range []string{
		"error[FLOW_UNASSIGNED] 15..16: variable 'x' might not have been initialized",
		"warning[FLOW_NULL_DEREF] 17..28: 's' is null here",
		"note: assigned null above",
		"warning[FLOW_UNREACHABLE] <no span>: unreachable code",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestJSONShape(t *testing.T) {
	var sb strings.Builder
	if err := JSON(&sb, "Demo.method", sampleDiags(), nil); err != nil {
		t.Fatalf("JSON: %v", err)
	}

	var got FileOutput
	if err := json.Unmarshal([]byte(sb.String()), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Name != "Demo.method" || len(got.Diagnostics) != 3 {
		t.Fatalf("output = %+v", got)
	}
	if got.Diagnostics[0].Severity != "error" || got.Diagnostics[0].Code != "FLOW_UNASSIGNED" {
		t.Errorf("first = %+v", got.Diagnostics[0])
	}
	if got.Diagnostics[0].Span == nil || got.Diagnostics[0].Span.Start != 15 {
		t.Errorf("span = %+v", got.Diagnostics[0].Span)
	}
	if got.Diagnostics[2].Span != nil {
		t.Error("missing span must be omitted")
	}
}
