package flow

// Reachability computes forward reachability from the entry block. The exit
// block counts as reachable only if some path actually arrives there.
func Reachability(g *Graph) []bool {
	return ReachabilityWithCheckpoint(g, nil)
}

// ReachabilityWithCheckpoint is Reachability with a cancellation checkpoint
// invoked once per visited block.
func ReachabilityWithCheckpoint(g *Graph, cp Checkpoint) []bool {
	if g == nil {
		return nil
	}
	reachable := make([]bool, len(g.Blocks))
	if !g.Entry.IsValid() || int(g.Entry) >= len(g.Blocks) {
		return reachable
	}

	queue := []BlockID{g.Entry}
	reachable[g.Entry] = true
	var buf []BlockID
	for len(queue) > 0 {
		if cp != nil {
			cp()
		}
		id := queue[0]
		queue = queue[1:]

		buf = g.Blocks[id].Term.AppendTargets(buf[:0])
		for _, t := range buf {
			if !t.IsValid() || int(t) >= len(g.Blocks) || reachable[t] {
				continue
			}
			reachable[t] = true
			queue = append(queue, t)
		}
	}
	return reachable
}

// CountReachable returns the number of true entries, for the analysis cost
// budget.
func CountReachable(reachable []bool) int {
	n := 0
	for _, r := range reachable {
		if r {
			n++
		}
	}
	return n
}
