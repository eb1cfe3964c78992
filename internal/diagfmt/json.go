package diagfmt

import (
	"encoding/json"
	"io"

	"javelin/internal/diag"
	"javelin/internal/observ"
)

// JSONSpan is the serialized byte range; absent for missing spans.
type JSONSpan struct {
	Start uint32 `json:"start"`
	End   uint32 `json:"end"`
}

type JSONDiagnostic struct {
	Severity string    `json:"severity"`
	Code     string    `json:"code"`
	Message  string    `json:"message"`
	Span     *JSONSpan `json:"span,omitempty"`
	Notes    []string  `json:"notes,omitempty"`
}

// FileOutput is the per-file JSON document: diagnostics plus optional
// timing.
type FileOutput struct {
	Name        string           `json:"name,omitempty"`
	Diagnostics []JSONDiagnostic `json:"diagnostics"`
	Timing      *observ.Report   `json:"timing,omitempty"`
}

// BuildOutput converts diagnostics into the serializable document.
func BuildOutput(name string, diags []diag.Diagnostic, timing *observ.Report) FileOutput {
	out := FileOutput{
		Name:        name,
		Diagnostics: make([]JSONDiagnostic, 0, len(diags)),
		Timing:      timing,
	}
	for _, d := range diags {
		jd := JSONDiagnostic{
			Severity: severityName(d.Severity),
			Code:     d.Code.String(),
			Message:  d.Message,
		}
		if d.Primary.Valid() {
			jd.Span = &JSONSpan{Start: d.Primary.Start, End: d.Primary.End}
		}
		for _, n := range d.Notes {
			jd.Notes = append(jd.Notes, n.Msg)
		}
		out.Diagnostics = append(out.Diagnostics, jd)
	}
	return out
}

// JSON writes one file's diagnostics as an indented JSON document.
func JSON(w io.Writer, name string, diags []diag.Diagnostic, timing *observ.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildOutput(name, diags, timing))
}

func severityName(s diag.Severity) string {
	switch s {
	case diag.SevError:
		return "error"
	case diag.SevWarning:
		return "warning"
	default:
		return "info"
	}
}
