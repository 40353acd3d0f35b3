package core

import (
	"fmt"

	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/cdfg"
	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/config"
	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/fu"
	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/ir"
	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/telemetry"
	"github.com/Josh-Slycord/gem5-SALAM-dev-sub001/timing"
)

type instState uint8

const (
	instIdle instState = iota
	instInFlight
	instDone
)

type inFlightOp struct {
	inst     *ir.Instruction
	class    fu.Class
	doneTick timing.Tick

	result    ir.Value
	hasResult bool

	isStore   bool
	storeAddr uint64
	storeVal  ir.Value

	isBr     bool
	brTarget int

	isRet  bool
	retVal ir.Value
	hasRet bool
}

// scheduler executes one function against the dependence graph: one
// basic block active at a time, instructions issued in ascending ID
// order as their dependences complete and functional units free up.
// Results are evaluated at issue and committed at completion.
type scheduler struct {
	cfg    config.Config
	mod    *ir.Module
	fn     *ir.Function
	graph  *cdfg.Graph
	pool   *fu.Pool
	regs   *regStore
	spm    ir.ByteStore
	ctx    timing.Context
	sink   telemetry.Sink
	interp *ir.Interpreter

	running  bool
	finished bool
	err      error

	curBlock  int
	prevBlock int
	state     []instState
	stalled   []bool
	inflight  []*inFlightOp

	nextBlock   int
	nextDecided bool

	startTick timing.Tick
	endTick   timing.Tick
	retVal    ir.Value
	hasRet    bool

	issuedCount    uint64
	completedCount uint64
	stallCount     uint64
	memBusy        int
}

func newScheduler(
	cfg config.Config,
	mod *ir.Module,
	spm ir.ByteStore,
	ctx timing.Context,
	sink telemetry.Sink,
) (*scheduler, error) {
	fn := mod.Entry()
	if fn == nil {
		return nil, ir.Malformedf(0, "missing entry function @%s", ir.EntryName)
	}

	graph, err := cdfg.Build(fn)
	if err != nil {
		return nil, err
	}

	return &scheduler{
		cfg:     cfg,
		mod:     mod,
		fn:      fn,
		graph:   graph,
		pool:    fu.NewPool(cfg.UnitSpecs()),
		regs:    newRegStore(fn),
		spm:     spm,
		ctx:     ctx,
		sink:    sink,
		interp:  ir.NewInterpreter(mod, spm),
		state:   make([]instState, len(fn.Instrs)),
		stalled: make([]bool, len(fn.Instrs)),
	}, nil
}

// start begins a new invocation with the given arguments.
func (s *scheduler) start(args []ir.Value) error {
	if len(args) != len(s.fn.Params) {
		return fmt.Errorf("@%s expects %d arguments, got %d",
			s.fn.Name, len(s.fn.Params), len(args))
	}

	s.reset()
	for i, p := range s.fn.Params {
		s.regs.write(p.Reg, ir.Value{Ty: p.Ty, Bits: args[i].Bits & p.Ty.Mask()})
	}

	s.running = true
	s.startTick = s.ctx.CurrentTick()
	if err := s.activateBlock(0, -1); err != nil {
		s.fail(err)
		return nil
	}
	s.ctx.TickLater()
	return nil
}

// reset returns the scheduler to idle so it can run again.
func (s *scheduler) reset() {
	s.running = false
	s.finished = false
	s.err = nil
	s.hasRet = false
	s.nextDecided = false
	s.inflight = nil
	s.memBusy = 0
	s.issuedCount = 0
	s.completedCount = 0
	s.stallCount = 0
	s.regs.reset()
	s.pool.Reset()
	for i := range s.state {
		s.state[i] = instIdle
	}
}

// activateBlock makes a block current. All of its phis resolve
// immediately against the previous block's committed values, read
// simultaneously before any is committed.
func (s *scheduler) activateBlock(idx, prev int) error {
	s.curBlock = idx
	s.prevBlock = prev
	s.nextDecided = false

	blk := s.fn.Blocks[idx]
	for _, in := range blk.Instrs {
		s.state[in.ID] = instIdle
		s.stalled[in.ID] = false
	}

	var phis []*ir.Instruction
	var vals []ir.Value
	for _, in := range blk.Instrs {
		if in.Op != ir.OpPhi {
			break
		}
		v, err := s.phiValue(in, prev)
		if err != nil {
			return err
		}
		phis = append(phis, in)
		vals = append(vals, v)
	}
	for i, in := range phis {
		s.regs.write(in.Result, vals[i])
		s.state[in.ID] = instDone
	}
	return nil
}

func (s *scheduler) phiValue(in *ir.Instruction, prev int) (ir.Value, error) {
	for k, blk := range in.Incoming {
		if blk == prev {
			return s.operand(in.Operands[k]), nil
		}
	}
	return ir.Value{}, fmt.Errorf(
		"phi %%%s has no incoming value for predecessor block %d",
		s.fn.RegName(in.Result), prev)
}

func (s *scheduler) operand(o ir.Operand) ir.Value {
	if o.Kind == ir.OperandReg {
		return s.regs.read(o.Reg)
	}
	return o.Const
}

// tick advances the core by one cycle: completions first, then issue,
// then block advance, so a freed unit or committed value can be used
// in the same cycle.
func (s *scheduler) tick() (madeProgress bool) {
	if !s.running {
		return false
	}
	now := s.ctx.CurrentTick()

	madeProgress = s.retire(now) || madeProgress
	if s.running {
		madeProgress = s.issue(now) || madeProgress
		madeProgress = s.advanceBlock() || madeProgress
	}

	if s.running {
		s.ctx.TickLater()
	}
	return madeProgress
}

func (s *scheduler) retire(now timing.Tick) bool {
	madeProgress := false
	for i := len(s.inflight) - 1; i >= 0; i-- {
		op := s.inflight[i]
		if op.doneTick > now || op.isRet {
			continue
		}

		s.pool.Release(op.class)
		if op.inst.Op.IsMemory() {
			s.memBusy--
		}
		if op.hasResult {
			s.regs.write(op.inst.Result, op.result)
		}
		if op.isStore {
			if err := ir.WriteMem(s.spm, op.storeAddr, op.storeVal); err != nil {
				s.fail(err)
				return true
			}
		}
		if op.isBr {
			s.nextBlock = op.brTarget
			s.nextDecided = true
		}

		s.state[op.inst.ID] = instDone
		s.completedCount++
		s.sink.InstructionComplete(now, op.inst.ID)
		s.inflight = append(s.inflight[:i], s.inflight[i+1:]...)
		madeProgress = true
	}
	return s.retireRet(now) || madeProgress
}

// retireRet completes the terminal ret only once it is the last op in
// flight, so a slower store in the exit block still commits its write
// before the invocation ends.
func (s *scheduler) retireRet(now timing.Tick) bool {
	if len(s.inflight) != 1 {
		return false
	}
	op := s.inflight[0]
	if !op.isRet || op.doneTick > now {
		return false
	}

	s.pool.Release(op.class)
	s.inflight = nil
	s.state[op.inst.ID] = instDone
	s.completedCount++
	s.sink.InstructionComplete(now, op.inst.ID)

	s.hasRet = op.hasRet
	s.retVal = op.retVal
	s.endTick = now
	s.running = false
	s.finished = true
	return true
}

func (s *scheduler) issue(now timing.Tick) bool {
	madeProgress := false
	blk := s.fn.Blocks[s.curBlock]

	for _, in := range blk.Instrs {
		if s.state[in.ID] != instIdle {
			continue
		}
		if !s.depsDone(in.ID) {
			continue
		}

		if in.Op.IsMemory() && s.memBusy >= s.cfg.DMA.BufferSize {
			s.stall(now, in, "compute queue full")
			continue
		}

		class := s.cfg.ClassFor(in.Op)
		spec, ok, err := s.pool.TryAcquire(class, in.Op)
		if err != nil {
			s.fail(err)
			return true
		}
		if !ok {
			s.stall(now, in, "unit busy")
			continue
		}

		op, err := s.evaluate(in)
		if err != nil {
			s.pool.Release(class)
			s.fail(err)
			return true
		}
		op.class = class
		op.doneTick = now + timing.Tick(spec.Cycles)

		if in.Op.IsMemory() {
			s.memBusy++
		}
		s.state[in.ID] = instInFlight
		s.stalled[in.ID] = false
		s.inflight = append(s.inflight, op)
		s.issuedCount++
		s.sink.InstructionIssue(now, in.ID, in.Op.String(), string(class))
		madeProgress = true
	}
	return madeProgress
}

func (s *scheduler) depsDone(id int) bool {
	for _, e := range s.graph.Deps(id) {
		if s.state[e.From] != instDone {
			return false
		}
	}
	return true
}

func (s *scheduler) stall(now timing.Tick, in *ir.Instruction, reason string) {
	s.stallCount++
	if !s.stalled[in.ID] {
		s.stalled[in.ID] = true
		s.sink.Stall(now, in.ID, reason)
	}
}

func (s *scheduler) evaluate(in *ir.Instruction) (*inFlightOp, error) {
	op := &inFlightOp{inst: in}

	switch in.Op {
	case ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpUDiv, ir.OpSDiv, ir.OpURem,
		ir.OpSRem, ir.OpAnd, ir.OpOr, ir.OpXor, ir.OpShl, ir.OpLShr,
		ir.OpAShr, ir.OpFAdd, ir.OpFSub, ir.OpFMul, ir.OpFDiv:
		v, err := ir.EvalBinary(in.Op, in.Ty,
			s.operand(in.Operands[0]), s.operand(in.Operands[1]))
		if err != nil {
			return nil, err
		}
		op.result, op.hasResult = v, true

	case ir.OpICmp, ir.OpFCmp:
		v, err := ir.EvalCompare(in.Pred, in.Elem,
			s.operand(in.Operands[0]), s.operand(in.Operands[1]))
		if err != nil {
			return nil, err
		}
		op.result, op.hasResult = v, true

	case ir.OpLoad:
		addr := s.operand(in.Operands[0]).Uint()
		v, err := ir.ReadMem(s.spm, addr, in.Elem)
		if err != nil {
			return nil, err
		}
		op.result, op.hasResult = v, true

	case ir.OpStore:
		op.isStore = true
		op.storeVal = s.operand(in.Operands[0])
		op.storeAddr = s.operand(in.Operands[1]).Uint()

	case ir.OpGEP:
		base := s.operand(in.Operands[0]).Uint()
		var indices []ir.Value
		for _, o := range in.Operands[1:] {
			indices = append(indices, s.operand(o))
		}
		op.result = ir.IntValue(ir.Ptr, ir.GEPAddress(base, in.Elem, indices))
		op.hasResult = true

	case ir.OpCall:
		var args []ir.Value
		for _, o := range in.Operands {
			args = append(args, s.operand(o))
		}
		v, err := s.interp.CallFunction(in.Callee, args...)
		if err != nil {
			return nil, err
		}
		if in.Result != ir.NoReg {
			op.result, op.hasResult = v, true
		}

	case ir.OpBr:
		op.isBr = true
		if len(in.Operands) == 1 {
			op.brTarget = in.Operands[0].Block
		} else if s.operand(in.Operands[0]).IsTrue() {
			op.brTarget = in.Operands[1].Block
		} else {
			op.brTarget = in.Operands[2].Block
		}

	case ir.OpRet:
		op.isRet = true
		if len(in.Operands) == 1 {
			op.retVal = s.operand(in.Operands[0])
			op.hasRet = true
		}

	default:
		return nil, ir.Malformedf(0, "cannot execute %s", in.Op)
	}
	return op, nil
}

// advanceBlock switches to the next block once every instruction of
// the current block has completed and the branch has decided.
func (s *scheduler) advanceBlock() bool {
	if !s.nextDecided {
		return false
	}
	for _, in := range s.fn.Blocks[s.curBlock].Instrs {
		if s.state[in.ID] != instDone {
			return false
		}
	}
	if err := s.activateBlock(s.nextBlock, s.curBlock); err != nil {
		s.fail(err)
	}
	return true
}

func (s *scheduler) fail(err error) {
	s.err = err
	s.running = false
	s.finished = true
	s.endTick = s.ctx.CurrentTick()
}

// totalCycles reports the invocation length: start-write to ret
// completion.
func (s *scheduler) totalCycles() timing.Tick {
	return s.endTick - s.startTick
}

// result returns the entry function's return value, if any.
func (s *scheduler) result() (ir.Value, bool) {
	return s.retVal, s.hasRet
}
