package flow

import (
	"javelin/internal/body"
	"javelin/internal/diag"
)

const (
	// DefaultMaxDiagnostics bounds the diagnostic list per body.
	DefaultMaxDiagnostics = 100
	// DefaultCellBudget bounds reachable_blocks x locals; past it the two
	// per-local analyses are skipped to keep pathological generated methods
	// cheap.
	DefaultCellBudget = 5_000_000
)

// Config toggles the optional diagnostic families. Definite-assignment
// reporting is unconditional whenever the cost budget allows it.
type Config struct {
	ReportUnreachable       bool
	ReportPossibleNullDeref bool
	MaxDiagnostics          int
	CellBudget              int
}

// DefaultConfig enables all diagnostic families with default limits.
func DefaultConfig() Config {
	return Config{
		ReportUnreachable:       true,
		ReportPossibleNullDeref: true,
		MaxDiagnostics:          DefaultMaxDiagnostics,
		CellBudget:              DefaultCellBudget,
	}
}

// Result is the full analysis output. Graph and Reachable are usable on
// their own (unreachable-region highlighting reads Reachable directly);
// Diagnostics is deduplicated and sorted.
type Result struct {
	Graph       *Graph
	Reachable   []bool
	Diagnostics []diag.Diagnostic
}

// Analyze builds the CFG for b, computes reachability and, budget
// permitting, runs the definite-assignment and null-state analyses. It
// never fails: malformed input degrades, oversized input narrows the
// diagnostic set.
func Analyze(b *body.Body, cfg Config) Result {
	return AnalyzeWithCheckpoint(b, cfg, nil)
}

// AnalyzeWithCheckpoint is Analyze with a cooperative cancellation
// checkpoint. The checkpoint only observes progress; acting on a raised
// cancellation flag is the caller's business.
func AnalyzeWithCheckpoint(b *body.Body, cfg Config, cp Checkpoint) Result {
	if cfg.MaxDiagnostics <= 0 {
		cfg.MaxDiagnostics = DefaultMaxDiagnostics
	}
	if cfg.CellBudget <= 0 {
		cfg.CellBudget = DefaultCellBudget
	}

	g := BuildWithCheckpoint(b, cp)
	reachable := ReachabilityWithCheckpoint(g, cp)

	bag := diag.NewBag(cfg.MaxDiagnostics)
	rep := diag.BagReporter{Bag: bag}

	if cfg.ReportUnreachable {
		reportUnreachable(b, g, reachable, rep)
	}

	locals := 0
	if b != nil {
		locals = b.NumLocals()
	}
	if b != nil && CountReachable(reachable)*locals <= cfg.CellBudget {
		assignIn := runForward(g, reachable, assignOps(b, g), cp)
		reportUnassigned(b, g, reachable, assignIn, rep, cp)

		if cfg.ReportPossibleNullDeref {
			nullIn := runForward(g, reachable, nullOps(b, g), cp)
			reportNullDerefs(b, g, reachable, nullIn, rep, cp)
		}
	}

	bag.Dedup()
	bag.Sort()
	return Result{Graph: g, Reachable: reachable, Diagnostics: bag.Items()}
}

// reportUnreachable emits one diagnostic per unreachable region: the first
// statement of each unreachable block that does not also occur in some
// reachable block. The occurrence filter matters because a finally body is
// lowered twice with the same statement ids; a dead abrupt copy must not
// flag statements that run fine on the normal path.
func reportUnreachable(b *body.Body, g *Graph, reachable []bool, rep diag.Reporter) {
	if b == nil {
		return
	}
	live := make(map[body.StmtID]bool)
	for i := range g.Blocks {
		if !reachable[i] {
			continue
		}
		for _, sid := range g.Blocks[i].Stmts {
			live[sid] = true
		}
		if t := g.Blocks[i].Term.Stmt; t.IsValid() {
			live[t] = true
		}
	}

	reported := make(map[body.StmtID]bool)
	for i := range g.Blocks {
		if reachable[i] {
			continue
		}
		// Candidates: the block's statements, then the terminator's origin
		// (a dead `return;` lowers into an otherwise empty block).
		candidates := g.Blocks[i].Stmts
		if t := g.Blocks[i].Term.Stmt; t.IsValid() {
			candidates = append(candidates[:len(candidates):len(candidates)], t)
		}
		for _, sid := range candidates {
			if live[sid] {
				continue
			}
			if !reported[sid] {
				reported[sid] = true
				st := b.Stmt(sid)
				if st != nil {
					rep.Report(diag.FlowUnreachable, diag.SevWarning, st.Span, "unreachable code")
				}
			}
			break
		}
	}
}
