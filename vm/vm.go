package vm

import (
	"math"

	"github.com/dannbuckley/intcode/types"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

type VM struct {
	mem *Memory
	// instruction pointer
	ip int64
	// relative base register, only changed by OpAdjustBase
	rb     int64
	status Status
	// first fatal error. once set the vm refuses to step again
	err error

	input  *types.Queue[int64]
	output *types.Queue[int64]

	insCount  int64
	stepLimit int64
	memOpts   []MemoryOpt
	logger    *zap.Logger
}

type VMOpt func(*VM) *VM

func LoggerOpt(l *zap.Logger) VMOpt {
	return func(vm *VM) *VM {
		vm.logger = l
		return vm
	}
}

// StepLimitOpt bounds the number of instructions a single RunUntilBlocked
// call may execute. Zero means unbounded.
func StepLimitOpt(n int64) VMOpt {
	return func(vm *VM) *VM {
		vm.stepLimit = n
		return vm
	}
}

func MemoryOpts(opts ...MemoryOpt) VMOpt {
	return func(vm *VM) *VM {
		vm.memOpts = append(vm.memOpts, opts...)
		return vm
	}
}

// NewVM creates an instance whose memory is a private copy of program and
// whose input queue holds inputs.
func NewVM(program []int64, inputs []int64, opts ...VMOpt) *VM {
	vm := &VM{
		ip:     0,
		rb:     0,
		status: StatusRunning,
		input:  types.NewQueue(inputs...),
		output: types.NewQueue[int64](),
		logger: zap.L(),
	}

	for _, opt := range opts {
		vm = opt(vm)
	}

	vm.mem = NewMemory(program, vm.memOpts...)
	vm.logger = vm.logger.Named("vm")

	return vm
}

// Step executes exactly one instruction. An input instruction with nothing
// queued does not execute: the vm reports StatusWaitingForInput and retries
// the same instruction on the next call.
func (vm *VM) Step() (Status, error) {
	if vm.err != nil {
		return vm.status, vm.err
	}
	if vm.status == StatusHalted {
		return vm.status, NewHaltedError(vm.ip)
	}

	if err := vm.exec(); err != nil {
		vm.err = errors.Wrapf(err, "step @ip=%d rb=%d", vm.ip, vm.rb)
		vm.logger.Debug("fault",
			zap.Int64("ip", vm.ip),
			zap.Error(err),
		)
		return vm.status, vm.err
	}
	return vm.status, nil
}

// RunUntilBlocked steps until the vm waits for input or halts. It returns
// the outputs queued since they were last drained.
func (vm *VM) RunUntilBlocked() (Status, []int64, error) {
	if vm.err != nil {
		return vm.status, nil, vm.err
	}
	if vm.status == StatusHalted {
		return vm.status, nil, NewHaltedError(vm.ip)
	}

	var steps int64
	for {
		status, err := vm.Step()
		if err != nil {
			return status, vm.output.Drain(), err
		}
		if status.Blocked() {
			return status, vm.output.Drain(), nil
		}

		steps += 1
		if vm.stepLimit > 0 && steps >= vm.stepLimit {
			return status, vm.output.Drain(), errors.Wrapf(ErrStepLimit, "after %d steps @ip=%d", steps, vm.ip)
		}
	}
}

// SupplyInput queues values for the input instruction. A waiting vm becomes
// runnable again. It does not execute anything: the pending input instruction
// consumes the value on the next Step or RunUntilBlocked, so until then ip and
// memory are unchanged.
func (vm *VM) SupplyInput(values ...int64) {
	vm.input.Push(values...)
	if vm.status == StatusWaitingForInput && len(values) > 0 {
		vm.status = StatusRunning
	}
}

func (vm *VM) ReadMemory(addr int64) (int64, error) {
	return vm.mem.Read(addr)
}

// WriteMemory patches a cell from the host, e.g. to set inputs before the
// first step.
func (vm *VM) WriteMemory(addr, value int64) error {
	return vm.mem.Write(addr, value)
}

// DrainOutput removes and returns every queued output.
func (vm *VM) DrainOutput() []int64 {
	return vm.output.Drain()
}

func (vm *VM) Status() Status          { return vm.status }
func (vm *VM) Err() error              { return vm.err }
func (vm *VM) IP() int64               { return vm.ip }
func (vm *VM) RelativeBase() int64     { return vm.rb }
func (vm *VM) InstructionCount() int64 { return vm.insCount }
func (vm *VM) PendingInput() int       { return vm.input.Len() }
func (vm *VM) PendingOutput() int      { return vm.output.Len() }

// Snapshot copies the dense part of memory.
func (vm *VM) Snapshot() []int64 {
	return vm.mem.Snapshot()
}

// exec fetches, decodes and applies the instruction at ip. Every operand and
// the write address are resolved before memory, ip, or the queues change, so
// a failing instruction leaves no side effects.
func (vm *VM) exec() error {
	word, err := vm.mem.Read(vm.ip)
	if err != nil {
		return err
	}
	in, err := Decode(word)
	if err != nil {
		return err
	}

	vm.logger.Debug("exec",
		zap.Int64("ip", vm.ip),
		zap.Int64("word", word),
		zap.Stringer("op", in.Op),
		zap.Int64("rb", vm.rb),
	)

	switch in.Op {
	case OpAdd:
		err = vm.arith(in, func(a, b int64) (int64, error) {
			return checkedAdd("add", a, b)
		})
	case OpMul:
		err = vm.arith(in, checkedMul)
	case OpLess:
		err = vm.arith(in, func(a, b int64) (int64, error) {
			return boolCell(a < b), nil
		})
	case OpEqual:
		err = vm.arith(in, func(a, b int64) (int64, error) {
			return boolCell(a == b), nil
		})
	case OpIn:
		// counts itself, a blocked input is not an executed instruction
		return vm.readInput(in)
	case OpOut:
		err = vm.writeOutput(in)
	case OpJumpTrue, OpJumpFalse:
		err = vm.jump(in)
	case OpAdjustBase:
		err = vm.adjustBase(in)
	case OpHalt:
		vm.status = StatusHalted
		vm.logger.Debug("halted",
			zap.Int64("ip", vm.ip),
			zap.Int64("instructions", vm.insCount+1),
		)
	default:
		return NewInvalidOpcodeError(word)
	}
	if err != nil {
		return err
	}

	vm.insCount += 1
	return nil
}

// arith applies a three parameter operation: dst <- fn(a, b).
func (vm *VM) arith(in Instruction, fn func(a, b int64) (int64, error)) error {
	a, err := vm.param(in, 0)
	if err != nil {
		return err
	}
	b, err := vm.param(in, 1)
	if err != nil {
		return err
	}
	dst, err := vm.dst(in)
	if err != nil {
		return err
	}
	v, err := fn(a, b)
	if err != nil {
		return err
	}
	if err := vm.mem.Write(dst, v); err != nil {
		return err
	}
	vm.ip += in.Len()
	return nil
}

func (vm *VM) readInput(in Instruction) error {
	dst, err := vm.dst(in)
	if err != nil {
		return err
	}
	v, ok := vm.input.Pop()
	if !ok {
		if vm.status != StatusWaitingForInput {
			vm.logger.Debug("waiting for input", zap.Int64("ip", vm.ip))
		}
		vm.status = StatusWaitingForInput
		return nil
	}
	if err := vm.mem.Write(dst, v); err != nil {
		return err
	}
	vm.status = StatusRunning
	vm.ip += in.Len()
	vm.insCount += 1
	return nil
}

func (vm *VM) writeOutput(in Instruction) error {
	v, err := vm.param(in, 0)
	if err != nil {
		return err
	}
	vm.output.Push(v)
	vm.ip += in.Len()
	return nil
}

func (vm *VM) adjustBase(in Instruction) error {
	v, err := vm.param(in, 0)
	if err != nil {
		return err
	}
	rb, err := checkedAdd("relative base", vm.rb, v)
	if err != nil {
		return err
	}
	vm.rb = rb
	vm.ip += in.Len()
	return nil
}

func (vm *VM) jump(in Instruction) error {
	cond, err := vm.param(in, 0)
	if err != nil {
		return err
	}
	target, err := vm.param(in, 1)
	if err != nil {
		return err
	}
	if (in.Op == OpJumpTrue) == (cond != 0) {
		vm.ip = target
		return nil
	}
	vm.ip += in.Len()
	return nil
}

// raw returns the i-th parameter cell of the instruction at ip.
func (vm *VM) raw(i int) (int64, error) {
	return vm.mem.Read(vm.ip + 1 + int64(i))
}

// param resolves the i-th parameter to the value it reads.
func (vm *VM) param(in Instruction, i int) (int64, error) {
	raw, err := vm.raw(i)
	if err != nil {
		return 0, err
	}
	switch in.Modes[i] {
	case ModePosition:
		return vm.mem.Read(raw)
	case ModeImmediate:
		return raw, nil
	case ModeRelative:
		addr, err := checkedAdd("address", vm.rb, raw)
		if err != nil {
			return 0, err
		}
		return vm.mem.Read(addr)
	default:
		return 0, NewInvalidModeError(in.Op, i, in.Modes[i])
	}
}

// dst resolves the write target named by the opcode table.
func (vm *VM) dst(in Instruction) (int64, error) {
	i, ok := in.Op.WriteParam()
	if !ok {
		return 0, errors.Errorf("%s has no write target", in.Op)
	}
	return vm.addr(in, i)
}

// addr resolves the i-th parameter to the address it writes.
func (vm *VM) addr(in Instruction, i int) (int64, error) {
	raw, err := vm.raw(i)
	if err != nil {
		return 0, err
	}
	var addr int64
	switch in.Modes[i] {
	case ModePosition:
		addr = raw
	case ModeRelative:
		addr, err = checkedAdd("address", vm.rb, raw)
		if err != nil {
			return 0, err
		}
	default:
		return 0, NewInvalidModeError(in.Op, i, in.Modes[i])
	}
	if addr < 0 {
		return 0, NewAddressError(addr)
	}
	return addr, nil
}

func checkedAdd(op string, a, b int64) (int64, error) {
	s := a + b
	if (b > 0 && s < a) || (b < 0 && s > a) {
		return 0, NewComputationError(op, a, b)
	}
	return s, nil
}

func checkedMul(a, b int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	p := a * b
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) || p/b != a {
		return 0, NewComputationError("mul", a, b)
	}
	return p, nil
}

func boolCell(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
