package flow

import (
	"fmt"

	"fortio.org/safecast"

	"javelin/internal/body"
)

// Checkpoint is the cooperative cancellation callback. The builder invokes it
// once per lowered statement, reachability once per visited block, and the
// worklist engine once per processed item. Raising and observing an actual
// cancellation signal is entirely the caller's business.
type Checkpoint func()

// loopCtx is one entry of the break/continue target stack. Switches push an
// entry with continueTarget == NoBlockID so that continue resolves past them
// to the innermost enclosing loop.
type loopCtx struct {
	breakTarget    BlockID
	continueTarget BlockID
}

// finallyCtx is one entry of the finally-context stack. enter is the abrupt
// completion copy of the finally body; scopeStart is the positional scope
// threshold: blocks allocated before it lie outside the try, so a jump to
// them must unwind through this finally.
type finallyCtx struct {
	enter      BlockID
	scopeStart BlockID
	exits      []BlockID
}

func (fc *finallyCtx) recordExit(dest BlockID) {
	for _, e := range fc.exits {
		if e == dest {
			return
		}
	}
	fc.exits = append(fc.exits, dest)
}

type builder struct {
	body *body.Body
	g    *Graph
	cur  BlockID

	loopStack    []loopCtx
	finallyStack []*finallyCtx

	checkpoint Checkpoint
}

// Build lowers a body into a control-flow graph. It never fails: malformed
// or partial input degrades to placeholder statements and blocks.
func Build(b *body.Body) *Graph {
	return BuildWithCheckpoint(b, nil)
}

// BuildWithCheckpoint is Build with a cancellation checkpoint invoked at
// every statement boundary.
func BuildWithCheckpoint(b *body.Body, cp Checkpoint) *Graph {
	bl := &builder{
		body:       b,
		g:          &Graph{Entry: NoBlockID, Exit: NoBlockID},
		checkpoint: cp,
	}

	bl.g.Entry = bl.newBlock()
	bl.g.Exit = bl.newBlock()
	bl.terminate(bl.g.Exit, &Terminator{Kind: TermExit, Stmt: body.NoStmtID})
	bl.cur = bl.g.Entry

	if b != nil {
		bl.lowerStmt(b.Root())
	}

	// Falling off the end of the body is an implicit return.
	if !bl.curBlock().Terminated() {
		bl.setTerm(&Terminator{Kind: TermReturn, Stmt: body.NoStmtID, Return: ReturnTerm{Value: body.NoExprID}})
	}

	// Every remaining unterminated block (dead joins from degraded input)
	// terminates in Exit so the graph stays well formed.
	for i := range bl.g.Blocks {
		if bl.g.Blocks[i].Term.Kind == TermNone {
			bl.g.Blocks[i].Term = Terminator{Kind: TermExit, Stmt: body.NoStmtID}
		}
	}

	return bl.g
}

func (bl *builder) check() {
	if bl.checkpoint != nil {
		bl.checkpoint()
	}
}

func (bl *builder) curBlock() *BasicBlock {
	return bl.g.Block(bl.cur)
}

func (bl *builder) newBlock() BlockID {
	raw, err := safecast.Conv[int32](len(bl.g.Blocks))
	if err != nil {
		panic(fmt.Errorf("flow: block id overflow: %w", err))
	}
	id := BlockID(raw)
	bl.g.Blocks = append(bl.g.Blocks, BasicBlock{ID: id, Term: Terminator{Kind: TermNone, Stmt: body.NoStmtID}})
	return id
}

func (bl *builder) startBlock(id BlockID) {
	bl.cur = id
}

func (bl *builder) terminate(id BlockID, t *Terminator) {
	b := bl.g.Block(id)
	if b == nil || b.Terminated() || t == nil {
		return
	}
	b.Term = *t
}

func (bl *builder) setTerm(t *Terminator) {
	bl.terminate(bl.cur, t)
}

func (bl *builder) emit(id body.StmtID) {
	b := bl.curBlock()
	if b == nil || b.Terminated() {
		return
	}
	b.Stmts = append(b.Stmts, id)
}

func (bl *builder) lowerStmt(id body.StmtID) {
	bl.check()
	st := bl.body.Stmt(id)
	if st == nil {
		return
	}

	// A statement reached after an unconditional terminator still gets
	// lowered, into a fresh block unreachable from entry, so reachability
	// can locate and report it precisely instead of dropping it.
	if bl.curBlock().Terminated() {
		bl.startBlock(bl.newBlock())
	}

	switch st.Kind {
	case body.StmtNop, body.StmtLet, body.StmtAssign, body.StmtExpr:
		bl.emit(id)

	case body.StmtBlock:
		data, ok := st.Data.(body.BlockData)
		if !ok {
			bl.emit(id)
			return
		}
		for _, s := range data.Stmts {
			bl.lowerStmt(s)
		}

	case body.StmtIf:
		bl.lowerIf(id, st)

	case body.StmtWhile:
		bl.lowerWhile(id, st)

	case body.StmtDoWhile:
		bl.lowerDoWhile(id, st)

	case body.StmtFor:
		bl.lowerFor(id, st)

	case body.StmtSwitch:
		bl.lowerSwitch(id, st)

	case body.StmtTry:
		bl.lowerTry(id, st)

	case body.StmtReturn:
		data, ok := st.Data.(body.ReturnData)
		value := body.NoExprID
		if ok {
			value = data.Value
		}
		if len(bl.finallyStack) == 0 {
			bl.setTerm(&Terminator{Kind: TermReturn, Stmt: id, Return: ReturnTerm{Value: value}})
			return
		}
		bl.unwindAll(id)

	case body.StmtThrow:
		data, ok := st.Data.(body.ThrowData)
		value := body.NoExprID
		if ok {
			value = data.Value
		}
		if len(bl.finallyStack) == 0 {
			bl.setTerm(&Terminator{Kind: TermThrow, Stmt: id, Throw: ThrowTerm{Value: value}})
			return
		}
		bl.unwindAll(id)

	case body.StmtBreak:
		target := NoBlockID
		if n := len(bl.loopStack); n > 0 {
			target = bl.loopStack[n-1].breakTarget
		}
		if !target.IsValid() {
			// No enclosing loop or switch: terminate here instead of
			// guessing a target.
			bl.setTerm(&Terminator{Kind: TermExit, Stmt: id})
			return
		}
		bl.abruptJump(id, target)

	case body.StmtContinue:
		target := NoBlockID
		for i := len(bl.loopStack) - 1; i >= 0; i-- {
			if bl.loopStack[i].continueTarget.IsValid() {
				target = bl.loopStack[i].continueTarget
				break
			}
		}
		if !target.IsValid() {
			bl.setTerm(&Terminator{Kind: TermExit, Stmt: id})
			return
		}
		bl.abruptJump(id, target)

	default:
		bl.emit(id)
	}
}

// unwindAll routes a return or throw through every enclosing finally, outer
// to inner: each context records where its abrupt copy eventually continues
// (the exit block, or the next-outer finally), and the statement itself
// jumps to the innermost finally.
func (bl *builder) unwindAll(stmt body.StmtID) {
	dest := bl.g.Exit
	for _, fc := range bl.finallyStack {
		fc.recordExit(dest)
		dest = fc.enter
	}
	bl.setTerm(&Terminator{Kind: TermGoto, Stmt: stmt, Goto: GotoTerm{Target: dest}})
}

// abruptJump routes a break or continue to target, unwinding through the
// finally contexts whose scope lies between the jump and the target. The
// scope test is positional: a finally participates only when the target
// block was allocated before its try was lowered.
func (bl *builder) abruptJump(stmt body.StmtID, target BlockID) {
	dest := target
	for _, fc := range bl.finallyStack {
		if fc.scopeStart <= target {
			continue // target is inside this try, no unwinding needed
		}
		fc.recordExit(dest)
		dest = fc.enter
	}
	bl.setTerm(&Terminator{Kind: TermGoto, Stmt: stmt, Goto: GotoTerm{Target: dest}})
}

func (bl *builder) lowerIf(id body.StmtID, st *body.Stmt) {
	data, ok := st.Data.(body.IfData)
	if !ok {
		bl.emit(id)
		return
	}

	if v, known := literalCond(bl.body, data.Cond); known {
		taken, dead := data.Then, data.Else
		if !v {
			taken, dead = data.Else, data.Then
		}

		takenBB := bl.newBlock()
		afterBB := bl.newBlock()
		bl.setTerm(&Terminator{Kind: TermGoto, Stmt: id, Goto: GotoTerm{Target: takenBB}})

		bl.startBlock(takenBB)
		if taken.IsValid() {
			bl.lowerStmt(taken)
		}
		if !bl.curBlock().Terminated() {
			bl.setTerm(&Terminator{Kind: TermGoto, Stmt: body.NoStmtID, Goto: GotoTerm{Target: afterBB}})
		}

		// The dead branch is still lowered, into a block nothing targets,
		// so its statements surface as unreachable code.
		if dead.IsValid() {
			bl.startBlock(bl.newBlock())
			bl.lowerStmt(dead)
			if !bl.curBlock().Terminated() {
				bl.setTerm(&Terminator{Kind: TermGoto, Stmt: body.NoStmtID, Goto: GotoTerm{Target: afterBB}})
			}
		}

		bl.startBlock(afterBB)
		return
	}

	thenBB := bl.newBlock()
	elseBB := bl.newBlock()
	joinBB := bl.newBlock()

	bl.setTerm(&Terminator{
		Kind: TermIf,
		Stmt: id,
		If:   IfTerm{Cond: data.Cond, Then: thenBB, Else: elseBB},
	})

	bl.startBlock(thenBB)
	if data.Then.IsValid() {
		bl.lowerStmt(data.Then)
	}
	if !bl.curBlock().Terminated() {
		bl.setTerm(&Terminator{Kind: TermGoto, Stmt: body.NoStmtID, Goto: GotoTerm{Target: joinBB}})
	}

	bl.startBlock(elseBB)
	if data.Else.IsValid() {
		bl.lowerStmt(data.Else)
	}
	if !bl.curBlock().Terminated() {
		bl.setTerm(&Terminator{Kind: TermGoto, Stmt: body.NoStmtID, Goto: GotoTerm{Target: joinBB}})
	}

	bl.startBlock(joinBB)
}

func (bl *builder) lowerWhile(id body.StmtID, st *body.Stmt) {
	data, ok := st.Data.(body.WhileData)
	if !ok {
		bl.emit(id)
		return
	}

	headerBB := bl.newBlock()
	bodyBB := bl.newBlock()
	exitBB := bl.newBlock()

	bl.setTerm(&Terminator{Kind: TermGoto, Stmt: body.NoStmtID, Goto: GotoTerm{Target: headerBB}})

	bl.startBlock(headerBB)
	bl.condBranch(id, data.Cond, bodyBB, exitBB)

	bl.startBlock(bodyBB)
	bl.loopStack = append(bl.loopStack, loopCtx{breakTarget: exitBB, continueTarget: headerBB})
	if data.Body.IsValid() {
		bl.lowerStmt(data.Body)
	}
	bl.loopStack = bl.loopStack[:len(bl.loopStack)-1]
	if !bl.curBlock().Terminated() {
		bl.setTerm(&Terminator{Kind: TermGoto, Stmt: body.NoStmtID, Goto: GotoTerm{Target: headerBB}})
	}

	bl.startBlock(exitBB)
}

func (bl *builder) lowerDoWhile(id body.StmtID, st *body.Stmt) {
	data, ok := st.Data.(body.DoWhileData)
	if !ok {
		bl.emit(id)
		return
	}

	bodyBB := bl.newBlock()
	condBB := bl.newBlock()
	exitBB := bl.newBlock()

	bl.setTerm(&Terminator{Kind: TermGoto, Stmt: body.NoStmtID, Goto: GotoTerm{Target: bodyBB}})

	bl.startBlock(bodyBB)
	bl.loopStack = append(bl.loopStack, loopCtx{breakTarget: exitBB, continueTarget: condBB})
	if data.Body.IsValid() {
		bl.lowerStmt(data.Body)
	}
	bl.loopStack = bl.loopStack[:len(bl.loopStack)-1]
	if !bl.curBlock().Terminated() {
		bl.setTerm(&Terminator{Kind: TermGoto, Stmt: body.NoStmtID, Goto: GotoTerm{Target: condBB}})
	}

	bl.startBlock(condBB)
	bl.condBranch(id, data.Cond, bodyBB, exitBB)

	bl.startBlock(exitBB)
}

func (bl *builder) lowerFor(id body.StmtID, st *body.Stmt) {
	data, ok := st.Data.(body.ForData)
	if !ok {
		bl.emit(id)
		return
	}

	if data.Init.IsValid() {
		bl.lowerStmt(data.Init)
	}

	condBB := bl.newBlock()
	bodyBB := bl.newBlock()
	updateBB := bl.newBlock()
	exitBB := bl.newBlock()

	bl.setTerm(&Terminator{Kind: TermGoto, Stmt: body.NoStmtID, Goto: GotoTerm{Target: condBB}})

	bl.startBlock(condBB)
	if !data.Cond.IsValid() {
		// for (;;) loops unconditionally.
		bl.setTerm(&Terminator{Kind: TermGoto, Stmt: id, Goto: GotoTerm{Target: bodyBB}})
	} else {
		bl.condBranch(id, data.Cond, bodyBB, exitBB)
	}

	bl.startBlock(bodyBB)
	bl.loopStack = append(bl.loopStack, loopCtx{breakTarget: exitBB, continueTarget: updateBB})
	if data.Body.IsValid() {
		bl.lowerStmt(data.Body)
	}
	bl.loopStack = bl.loopStack[:len(bl.loopStack)-1]
	if !bl.curBlock().Terminated() {
		bl.setTerm(&Terminator{Kind: TermGoto, Stmt: body.NoStmtID, Goto: GotoTerm{Target: updateBB}})
	}

	bl.startBlock(updateBB)
	if data.Update.IsValid() {
		bl.lowerStmt(data.Update)
	}
	if !bl.curBlock().Terminated() {
		bl.setTerm(&Terminator{Kind: TermGoto, Stmt: body.NoStmtID, Goto: GotoTerm{Target: condBB}})
	}

	bl.startBlock(exitBB)
}

func (bl *builder) lowerSwitch(id body.StmtID, st *body.Stmt) {
	data, ok := st.Data.(body.SwitchData)
	if !ok {
		bl.emit(id)
		return
	}

	armBBs := make([]BlockID, len(data.Arms))
	hasDefault := false
	for i, arm := range data.Arms {
		armBBs[i] = bl.newBlock()
		if arm.Default {
			hasDefault = true
		}
	}
	afterBB := bl.newBlock()

	if len(data.Arms) == 0 {
		bl.setTerm(&Terminator{Kind: TermGoto, Stmt: id, Goto: GotoTerm{Target: afterBB}})
		bl.startBlock(afterBB)
		return
	}

	targets := make([]BlockID, 0, len(armBBs)+1)
	targets = append(targets, armBBs...)
	if !hasDefault {
		// No default arm: the value may match nothing.
		targets = append(targets, afterBB)
	}
	bl.setTerm(&Terminator{
		Kind:   TermSwitch,
		Stmt:   id,
		Switch: SwitchTerm{Value: data.Value, Targets: targets},
	})

	bl.loopStack = append(bl.loopStack, loopCtx{breakTarget: afterBB, continueTarget: NoBlockID})
	for i, arm := range data.Arms {
		bl.startBlock(armBBs[i])
		if arm.Body.IsValid() {
			bl.lowerStmt(arm.Body)
		}
		if bl.curBlock().Terminated() {
			continue
		}
		if arm.Arrow || i == len(data.Arms)-1 {
			bl.setTerm(&Terminator{Kind: TermGoto, Stmt: body.NoStmtID, Goto: GotoTerm{Target: afterBB}})
		} else {
			// Colon-style arms fall through into the next arm.
			bl.setTerm(&Terminator{Kind: TermGoto, Stmt: body.NoStmtID, Goto: GotoTerm{Target: armBBs[i+1]}})
		}
	}
	bl.loopStack = bl.loopStack[:len(bl.loopStack)-1]

	bl.startBlock(afterBB)
}

func (bl *builder) lowerTry(id body.StmtID, st *body.Stmt) {
	data, ok := st.Data.(body.TryData)
	if !ok {
		bl.emit(id)
		return
	}

	scopeStart := BlockID(len(bl.g.Blocks))
	bodyBB := bl.newBlock()
	catchBBs := make([]BlockID, len(data.Catches))
	for i := range data.Catches {
		catchBBs[i] = bl.newBlock()
	}

	hasFinally := data.Finally.IsValid()
	var fc *finallyCtx
	if hasFinally {
		fc = &finallyCtx{enter: bl.newBlock(), scopeStart: scopeStart}
		bl.finallyStack = append(bl.finallyStack, fc)
	}

	// Any statement in the try body may transfer control to any catch
	// clause, so the entry fans out non-deterministically.
	if len(catchBBs) == 0 {
		bl.setTerm(&Terminator{Kind: TermGoto, Stmt: id, Goto: GotoTerm{Target: bodyBB}})
	} else {
		targets := make([]BlockID, 0, 1+len(catchBBs))
		targets = append(targets, bodyBB)
		targets = append(targets, catchBBs...)
		bl.setTerm(&Terminator{Kind: TermMulti, Stmt: id, Multi: MultiTerm{Targets: targets}})
	}

	// Lower body and catches, remembering which of them fall through.
	var fallthroughs []BlockID
	bl.startBlock(bodyBB)
	if data.Body.IsValid() {
		bl.lowerStmt(data.Body)
	}
	if !bl.curBlock().Terminated() {
		fallthroughs = append(fallthroughs, bl.cur)
	}
	for i, c := range data.Catches {
		bl.startBlock(catchBBs[i])
		if c.IsValid() {
			bl.lowerStmt(c)
		}
		if !bl.curBlock().Terminated() {
			fallthroughs = append(fallthroughs, bl.cur)
		}
	}

	if hasFinally {
		bl.finallyStack = bl.finallyStack[:len(bl.finallyStack)-1]

		// Normal-completion copy: body/catches fall into it, then the
		// after block.
		normalBB := bl.newBlock()
		for _, fb := range fallthroughs {
			bl.terminate(fb, &Terminator{Kind: TermGoto, Stmt: body.NoStmtID, Goto: GotoTerm{Target: normalBB}})
		}
		bl.startBlock(normalBB)
		bl.lowerStmt(data.Finally)
		afterBB := bl.newBlock()
		if !bl.curBlock().Terminated() {
			bl.setTerm(&Terminator{Kind: TermGoto, Stmt: body.NoStmtID, Goto: GotoTerm{Target: afterBB}})
		}

		// Abrupt-completion copy: reached only by unwinding jumps. Its
		// terminator depends on the destinations recorded while lowering
		// the body: none (dead copy), one (plain jump) or several
		// (non-deterministic choice).
		bl.startBlock(fc.enter)
		bl.lowerStmt(data.Finally)
		if !bl.curBlock().Terminated() {
			switch len(fc.exits) {
			case 0:
				bl.setTerm(&Terminator{Kind: TermExit, Stmt: body.NoStmtID})
			case 1:
				bl.setTerm(&Terminator{Kind: TermGoto, Stmt: body.NoStmtID, Goto: GotoTerm{Target: fc.exits[0]}})
			default:
				bl.setTerm(&Terminator{Kind: TermMulti, Stmt: body.NoStmtID, Multi: MultiTerm{Targets: fc.exits}})
			}
		}

		bl.startBlock(afterBB)
		return
	}

	afterBB := bl.newBlock()
	for _, fb := range fallthroughs {
		bl.terminate(fb, &Terminator{Kind: TermGoto, Stmt: body.NoStmtID, Goto: GotoTerm{Target: afterBB}})
	}
	bl.startBlock(afterBB)
}

// condBranch ends the current block with a branch on cond. Constant-foldable
// conditions emit a Goto instead of an If so the dead edge never counts as
// reachable by construction.
func (bl *builder) condBranch(stmt body.StmtID, cond body.ExprID, then, els BlockID) {
	if v, known := literalCond(bl.body, cond); known {
		target := then
		if !v {
			target = els
		}
		bl.setTerm(&Terminator{Kind: TermGoto, Stmt: stmt, Goto: GotoTerm{Target: target}})
		return
	}
	bl.setTerm(&Terminator{
		Kind: TermIf,
		Stmt: stmt,
		If:   IfTerm{Cond: cond, Then: then, Else: els},
	})
}

// literalCond folds literal conditions: true/false, negation, and
// short-circuit operators with a literal operand. A missing condition folds
// to true (degraded input keeps the then-edge alive).
func literalCond(b *body.Body, id body.ExprID) (value, known bool) {
	e := b.Expr(id)
	if e == nil {
		return true, true
	}
	switch e.Kind {
	case body.ExprBoolLit:
		data, ok := e.Data.(body.BoolLitData)
		if !ok {
			return false, false
		}
		return data.Value, true

	case body.ExprUnary:
		data, ok := e.Data.(body.UnaryData)
		if !ok || data.Op != body.OpNot {
			return false, false
		}
		v, k := literalCond(b, data.Operand)
		return !v, k

	case body.ExprBinary:
		data, ok := e.Data.(body.BinaryData)
		if !ok || !data.Op.ShortCircuit() {
			return false, false
		}
		lv, lk := literalCond(b, data.Left)
		rv, rk := literalCond(b, data.Right)
		if data.Op == body.OpAnd {
			if lk && !lv || rk && !rv {
				return false, true
			}
			if lk && lv {
				return rv, rk
			}
			return false, false
		}
		// OpOr
		if lk && lv || rk && rv {
			return true, true
		}
		if lk && !lv {
			return rv, rk
		}
		return false, false

	default:
		return false, false
	}
}
