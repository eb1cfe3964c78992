// Package flow builds control-flow graphs from lowered method bodies and runs
// fixed-point dataflow analyses over them: reachability, definite assignment
// and null-state tracking. It is a best-effort IDE analysis: it never fails on
// malformed input and degrades (skips the per-local analyses) instead of
// blowing up on pathological methods.
package flow

import (
	"javelin/internal/body"
)

// BlockID identifies a basic block within a Graph.
type BlockID int32

// NoBlockID is the invalid block id.
const NoBlockID BlockID = -1

func (id BlockID) IsValid() bool { return id >= 0 }

// BasicBlock is a straight-line statement sequence ending in one terminator.
// Statements are references into the Body arena, never copies.
type BasicBlock struct {
	ID    BlockID
	Stmts []body.StmtID
	Term  Terminator
}

func (b *BasicBlock) Terminated() bool {
	if b == nil {
		return true
	}
	return b.Term.Kind != TermNone
}

// Graph is the control-flow graph of one method body. Edges exist only inside
// terminators; predecessor queries are derived. Built once per analysis call
// and never mutated afterward.
type Graph struct {
	Blocks []BasicBlock
	Entry  BlockID
	Exit   BlockID
}

// Block returns the block for id, or nil for an invalid id.
func (g *Graph) Block(id BlockID) *BasicBlock {
	if g == nil || !id.IsValid() || int(id) >= len(g.Blocks) {
		return nil
	}
	return &g.Blocks[id]
}

// NumBlocks returns the number of basic blocks.
func (g *Graph) NumBlocks() int {
	if g == nil {
		return 0
	}
	return len(g.Blocks)
}

// Successors returns the successor ids of a block, in terminator order.
func (g *Graph) Successors(id BlockID) []BlockID {
	b := g.Block(id)
	if b == nil {
		return nil
	}
	return b.Term.AppendTargets(nil)
}

// Predecessors derives the full predecessor adjacency from terminator edges.
// Duplicate edges (a Multi naming the same target twice) are kept; consumers
// that need distinct predecessors dedupe themselves.
func (g *Graph) Predecessors() [][]BlockID {
	if g == nil {
		return nil
	}
	preds := make([][]BlockID, len(g.Blocks))
	var buf []BlockID
	for i := range g.Blocks {
		buf = g.Blocks[i].Term.AppendTargets(buf[:0])
		for _, t := range buf {
			if t.IsValid() && int(t) < len(g.Blocks) {
				preds[t] = append(preds[t], BlockID(i))
			}
		}
	}
	return preds
}
