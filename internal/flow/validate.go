package flow

import (
	"errors"
	"fmt"
)

// Validate checks structural well-formedness of a built graph: every block
// terminated, every edge in range, the exit block terminal. Used by tests
// and the cfg dump path; the analyses themselves trust the builder.
func Validate(g *Graph) error {
	if g == nil {
		return errors.New("flow: nil graph")
	}
	var errs []error

	if !g.Entry.IsValid() || int(g.Entry) >= len(g.Blocks) {
		errs = append(errs, fmt.Errorf("flow: entry block %d out of range", g.Entry))
	}
	if !g.Exit.IsValid() || int(g.Exit) >= len(g.Blocks) {
		errs = append(errs, fmt.Errorf("flow: exit block %d out of range", g.Exit))
	}

	var buf []BlockID
	for i := range g.Blocks {
		b := &g.Blocks[i]
		if b.ID != BlockID(i) {
			errs = append(errs, fmt.Errorf("flow: block %d stored under index %d", b.ID, i))
		}
		if b.Term.Kind == TermNone {
			errs = append(errs, fmt.Errorf("flow: block %d has no terminator", b.ID))
		}
		buf = b.Term.AppendTargets(buf[:0])
		for _, t := range buf {
			if !t.IsValid() || int(t) >= len(g.Blocks) {
				errs = append(errs, fmt.Errorf("flow: block %d targets out-of-range block %d", b.ID, t))
			}
		}
	}

	if exit := g.Block(g.Exit); exit != nil {
		if exit.Term.Kind != TermExit {
			errs = append(errs, fmt.Errorf("flow: exit block %d terminates with %s", g.Exit, exit.Term.Kind))
		}
		if len(exit.Stmts) != 0 {
			errs = append(errs, fmt.Errorf("flow: exit block %d carries %d statements", g.Exit, len(exit.Stmts)))
		}
	}

	return errors.Join(errs...)
}
