package diag

import "javelin/internal/source"

// Reporter is the minimal contract through which analysis passes emit
// diagnostics. Implementations: BagReporter (appends to a Bag), NopReporter.
type Reporter interface {
	Report(code Code, sev Severity, primary source.Span, msg string)
}

// BagReporter writes reported diagnostics into a *Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(code Code, sev Severity, primary source.Span, msg string) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(Diagnostic{
		Severity: sev, Code: code, Message: msg, Primary: primary,
	})
}

// NopReporter discards everything. Used during fixpoint iteration where
// transfer functions run repeatedly and must not report.
type NopReporter struct{}

func (NopReporter) Report(Code, Severity, source.Span, string) {}
