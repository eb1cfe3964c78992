package flow

// analysisOps parameterizes the forward worklist engine over a per-block
// state type. All hooks must be pure with respect to their inputs: transfer
// and flowEdge work on a copy that the engine hands back.
type analysisOps[S any] struct {
	// entry produces the state at the entry block.
	entry func() S
	// flowEdge clones the source block's out-state for the edge from pred to
	// succ, applying any edge-specific refinement (branch narrowing).
	flowEdge func(pred, succ BlockID, out S) S
	// clone produces an independent copy of a state.
	clone func(S) S
	// merge combines an incoming state into the accumulated in-state.
	merge func(into *S, in S)
	// transfer runs a block's statements over the state in place.
	transfer func(id BlockID, s *S)
	// equal reports whether two states are indistinguishable, for the
	// fixed-point test.
	equal func(a, b S) bool
}

// runForward runs a forward dataflow analysis to a fixed point over the
// reachable part of g and returns the per-block in-states. Unreachable
// blocks keep the zero state and are never visited. The worklist is FIFO
// with membership dedup; monotone transfer functions over a finite lattice
// make termination structural.
func runForward[S any](g *Graph, reachable []bool, ops analysisOps[S], cp Checkpoint) []S {
	n := g.NumBlocks()
	inStates := make([]S, n)
	outStates := make([]S, n)
	computed := make([]bool, n)

	preds := g.Predecessors()

	inWork := make([]bool, n)
	var queue []BlockID
	push := func(id BlockID) {
		if !inWork[id] {
			inWork[id] = true
			queue = append(queue, id)
		}
	}

	// Seed in reverse-ish topological-friendly order: entry first, then all
	// other reachable blocks by id. Id order is close to lowering order, so
	// most forward edges settle on the first pass.
	if g.Entry.IsValid() && int(g.Entry) < n && reachable[g.Entry] {
		push(g.Entry)
	}
	for i := 0; i < n; i++ {
		if reachable[i] && BlockID(i) != g.Entry {
			push(BlockID(i))
		}
	}

	for len(queue) > 0 {
		if cp != nil {
			cp()
		}
		id := queue[0]
		queue = queue[1:]
		inWork[id] = false

		var in S
		merged := false
		if id == g.Entry {
			in = ops.entry()
			merged = true
		}
		for _, p := range preds[id] {
			if !reachable[p] || !computed[p] {
				continue
			}
			edge := ops.flowEdge(p, id, outStates[p])
			if !merged {
				in = edge
				merged = true
			} else {
				ops.merge(&in, edge)
			}
		}
		if !merged {
			// No processed predecessor yet; wait until one lands.
			continue
		}

		out := ops.clone(in)
		ops.transfer(id, &out)

		if computed[id] && ops.equal(outStates[id], out) && ops.equal(inStates[id], in) {
			continue
		}
		inStates[id] = in
		outStates[id] = out
		computed[id] = true

		for _, s := range g.Successors(id) {
			if s.IsValid() && int(s) < n && reachable[s] {
				push(s)
			}
		}
	}

	return inStates
}
