package flow

import (
	"fmt"
	"io"
	"strings"
)

// DumpGraph writes a human-readable listing of the graph, one block per
// paragraph. reachable may be nil. Debug surface for the cfg command and for
// diffing lowering changes in tests.
func DumpGraph(w io.Writer, g *Graph, reachable []bool) error {
	if g == nil {
		_, err := fmt.Fprintln(w, "<nil graph>")
		return err
	}
	for i := range g.Blocks {
		b := &g.Blocks[i]

		var marks []string
		if b.ID == g.Entry {
			marks = append(marks, "entry")
		}
		if b.ID == g.Exit {
			marks = append(marks, "exit")
		}
		if reachable != nil && i < len(reachable) && !reachable[i] {
			marks = append(marks, "unreachable")
		}
		head := fmt.Sprintf("bb%d", b.ID)
		if len(marks) > 0 {
			head += " (" + strings.Join(marks, ", ") + ")"
		}
		if _, err := fmt.Fprintf(w, "%s:\n", head); err != nil {
			return err
		}

		for _, sid := range b.Stmts {
			if _, err := fmt.Fprintf(w, "  s%d\n", sid); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "  %s\n", formatTerm(&b.Term)); err != nil {
			return err
		}
	}
	return nil
}

func formatTerm(t *Terminator) string {
	switch t.Kind {
	case TermGoto:
		return fmt.Sprintf("goto -> bb%d", t.Goto.Target)
	case TermIf:
		return fmt.Sprintf("if e%d -> bb%d else bb%d", t.If.Cond, t.If.Then, t.If.Else)
	case TermSwitch:
		return fmt.Sprintf("switch e%d -> %s", t.Switch.Value, formatTargets(t.Switch.Targets))
	case TermMulti:
		return fmt.Sprintf("multi -> %s", formatTargets(t.Multi.Targets))
	case TermReturn:
		if t.Return.Value.IsValid() {
			return fmt.Sprintf("return e%d", t.Return.Value)
		}
		return "return"
	case TermThrow:
		return fmt.Sprintf("throw e%d", t.Throw.Value)
	case TermExit:
		return "exit"
	default:
		return t.Kind.String()
	}
}

func formatTargets(targets []BlockID) string {
	parts := make([]string, len(targets))
	for i, t := range targets {
		parts[i] = fmt.Sprintf("bb%d", t)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
