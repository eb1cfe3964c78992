// Package diagfmt renders diagnostic lists for the CLI: a colorized
// human-readable form and a machine-readable JSON form.
package diagfmt

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"javelin/internal/diag"
)

// PrettyOpts controls the human-readable renderer.
type PrettyOpts struct {
	Color     bool
	ShowNotes bool
}

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan, color.Bold)
	codeColor    = color.New(color.Bold)
	spanColor    = color.New(color.Faint)
)

// Pretty writes one line per diagnostic:
//
//	warning[FLOW_NULL_DEREF] 17..28: 's' is null here
func Pretty(w io.Writer, diags []diag.Diagnostic, opts PrettyOpts) {
	for _, d := range diags {
		sev, paint := severityLabel(d.Severity)
		if opts.Color {
			paint.Fprint(w, sev)
			fmt.Fprint(w, "[")
			codeColor.Fprint(w, d.Code.String())
			fmt.Fprint(w, "] ")
			spanColor.Fprint(w, formatSpanRef(d))
			fmt.Fprintf(w, ": %s\n", d.Message)
		} else {
			fmt.Fprintf(w, "%s[%s] %s: %s\n", sev, d.Code, formatSpanRef(d), d.Message)
		}
		if opts.ShowNotes {
			for _, n := range d.Notes {
				fmt.Fprintf(w, "  note: %s\n", n.Msg)
			}
		}
	}
}

func severityLabel(s diag.Severity) (string, *color.Color) {
	switch s {
	case diag.SevError:
		return "error", errorColor
	case diag.SevWarning:
		return "warning", warningColor
	default:
		return "info", infoColor
	}
}

func formatSpanRef(d diag.Diagnostic) string {
	if !d.Primary.Valid() {
		return "<no span>"
	}
	return fmt.Sprintf("%d..%d", d.Primary.Start, d.Primary.End)
}
