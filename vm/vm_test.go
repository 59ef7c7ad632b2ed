package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

var quine = []int64{109, 1, 204, -1, 1001, 100, 1, 100, 1008, 100, 16, 101, 1006, 101, 0, 99}

// compares input with 8, outputs 999 below, 1000 equal, 1001 above
var cmp8 = []int64{
	3, 21, 1008, 21, 8, 20, 1005, 20, 22, 107, 8, 21, 20, 1006, 20, 31,
	1106, 0, 36, 98, 0, 0, 1002, 21, 125, 20, 4, 20, 1105, 1, 46, 104,
	999, 1105, 1, 46, 1101, 1000, 1, 20, 4, 20, 1105, 1, 46, 98, 99,
}

func TestVM_RunUntilBlocked(t *testing.T) {
	type fields struct {
		program []int64
		inputs  []int64
	}
	tests := []struct {
		name        string
		fields      fields
		wantStatus  Status
		wantOutputs []int64
		check       func(*testing.T, *VM)
	}{
		{
			name:       "add and multiply",
			fields:     fields{program: []int64{1, 9, 10, 3, 2, 3, 11, 0, 99, 30, 40, 50}},
			wantStatus: StatusHalted,
			check:      checkCell(0, 3500),
		},
		{
			name:       "immediate multiply",
			fields:     fields{program: []int64{1002, 4, 3, 4, 33}},
			wantStatus: StatusHalted,
			check:      checkCell(4, 99),
		},
		{
			name:       "negative immediate",
			fields:     fields{program: []int64{1101, 100, -1, 4, 0}},
			wantStatus: StatusHalted,
			check:      checkCell(4, 99),
		},
		{
			name:        "echo",
			fields:      fields{program: []int64{3, 0, 4, 0, 99}, inputs: []int64{42}},
			wantStatus:  StatusHalted,
			wantOutputs: []int64{42},
		},
		{
			name:        "quine",
			fields:      fields{program: quine},
			wantStatus:  StatusHalted,
			wantOutputs: quine,
		},
		{
			name:        "16 digit product",
			fields:      fields{program: []int64{1102, 34915192, 34915192, 7, 4, 7, 99, 0}},
			wantStatus:  StatusHalted,
			wantOutputs: []int64{1219070632396864},
		},
		{
			name:        "large immediate",
			fields:      fields{program: []int64{104, 1125899906842624, 99}},
			wantStatus:  StatusHalted,
			wantOutputs: []int64{1125899906842624},
		},
		{
			name:        "relative read uses base plus offset",
			fields:      fields{program: []int64{109, 3, 204, 1, 99}},
			wantStatus:  StatusHalted,
			wantOutputs: []int64{99},
		},
		{
			name:        "relative write grows memory",
			fields:      fields{program: []int64{109, 7, 203, 0, 204, 0, 99}, inputs: []int64{5}},
			wantStatus:  StatusHalted,
			wantOutputs: []int64{5},
			check:       checkCell(7, 5),
		},
		{
			name:        "equal to 8 position mode",
			fields:      fields{program: []int64{3, 9, 8, 9, 10, 9, 4, 9, 99, -1, 8}, inputs: []int64{8}},
			wantStatus:  StatusHalted,
			wantOutputs: []int64{1},
		},
		{
			name:        "not equal to 8 position mode",
			fields:      fields{program: []int64{3, 9, 8, 9, 10, 9, 4, 9, 99, -1, 8}, inputs: []int64{7}},
			wantStatus:  StatusHalted,
			wantOutputs: []int64{0},
		},
		{
			name:        "equal to 8 immediate mode",
			fields:      fields{program: []int64{3, 3, 1108, -1, 8, 3, 4, 3, 99}, inputs: []int64{8}},
			wantStatus:  StatusHalted,
			wantOutputs: []int64{1},
		},
		{
			name:        "less than 8 immediate mode",
			fields:      fields{program: []int64{3, 3, 1107, -1, 8, 3, 4, 3, 99}, inputs: []int64{3}},
			wantStatus:  StatusHalted,
			wantOutputs: []int64{1},
		},
		{
			name:        "jump on zero",
			fields:      fields{program: []int64{3, 12, 6, 12, 15, 1, 13, 14, 13, 4, 13, 99, -1, 0, 1, 9}, inputs: []int64{0}},
			wantStatus:  StatusHalted,
			wantOutputs: []int64{0},
		},
		{
			name:        "jump on non zero",
			fields:      fields{program: []int64{3, 3, 1105, -1, 9, 1101, 0, 0, 12, 4, 12, 99, 1}, inputs: []int64{5}},
			wantStatus:  StatusHalted,
			wantOutputs: []int64{1},
		},
		{
			name:        "below 8",
			fields:      fields{program: cmp8, inputs: []int64{7}},
			wantStatus:  StatusHalted,
			wantOutputs: []int64{999},
		},
		{
			name:        "equal 8",
			fields:      fields{program: cmp8, inputs: []int64{8}},
			wantStatus:  StatusHalted,
			wantOutputs: []int64{1000},
		},
		{
			name:        "above 8",
			fields:      fields{program: cmp8, inputs: []int64{9}},
			wantStatus:  StatusHalted,
			wantOutputs: []int64{1001},
		},
		{
			name:       "waits at input",
			fields:     fields{program: []int64{3, 0, 99}},
			wantStatus: StatusWaitingForInput,
			check: func(t *testing.T, vm *VM) {
				assert.Equal(t, int64(0), vm.IP())
				assert.Equal(t, int64(0), vm.InstructionCount())
			},
		},
		{
			name:       "halt only",
			fields:     fields{program: []int64{99}},
			wantStatus: StatusHalted,
			check: func(t *testing.T, vm *VM) {
				assert.Equal(t, int64(1), vm.InstructionCount())
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := NewVM(tt.fields.program, tt.fields.inputs, LoggerOpt(zaptest.NewLogger(t)))
			status, out, err := vm.RunUntilBlocked()
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, len(tt.wantOutputs), len(out))
			if len(tt.wantOutputs) > 0 {
				assert.Equal(t, tt.wantOutputs, out)
			}
			if tt.check != nil {
				tt.check(t, vm)
			}
		})
	}
}

func checkCell(addr, want int64) func(*testing.T, *VM) {
	return func(t *testing.T, vm *VM) {
		got, err := vm.ReadMemory(addr)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestVM_Faults(t *testing.T) {
	tests := []struct {
		name    string
		program []int64
		inputs  []int64
		check   func(*testing.T, error)
	}{
		{
			name:    "negative read address",
			program: []int64{1, -1, 0, 0, 99},
			check: func(t *testing.T, err error) {
				var target *AddressError
				require.ErrorAs(t, err, &target)
				assert.Equal(t, int64(-1), target.Addr)
			},
		},
		{
			name:    "negative write address",
			program: []int64{1101, 1, 1, -5, 99},
			check: func(t *testing.T, err error) {
				var target *AddressError
				require.ErrorAs(t, err, &target)
				assert.Equal(t, int64(-5), target.Addr)
			},
		},
		{
			name:    "multiply overflow",
			program: []int64{1102, 9223372036854775807, 2, 0, 99},
			check: func(t *testing.T, err error) {
				var target *ComputationError
				require.ErrorAs(t, err, &target)
				assert.Equal(t, "mul", target.Op)
			},
		},
		{
			name:    "add overflow",
			program: []int64{1101, 9223372036854775807, 1, 0, 99},
			check: func(t *testing.T, err error) {
				var target *ComputationError
				require.ErrorAs(t, err, &target)
				assert.Equal(t, "add", target.Op)
			},
		},
		{
			name:    "unknown opcode",
			program: []int64{98, 0, 0, 0},
			check: func(t *testing.T, err error) {
				var target *InvalidOpcodeError
				require.ErrorAs(t, err, &target)
				assert.Equal(t, int64(98), target.Opcode)
			},
		},
		{
			name:    "unknown mode",
			program: []int64{301, 0, 0, 0, 99},
			check: func(t *testing.T, err error) {
				var target *InvalidModeError
				require.ErrorAs(t, err, &target)
				assert.Equal(t, Mode(3), target.Mode)
			},
		},
		{
			name:    "immediate write target",
			program: []int64{11101, 1, 1, 0, 99},
			check: func(t *testing.T, err error) {
				var target *InvalidModeError
				require.ErrorAs(t, err, &target)
				assert.Equal(t, 2, target.Param)
				assert.Equal(t, ModeImmediate, target.Mode)
			},
		},
		{
			name:    "immediate input target",
			program: []int64{103, 0, 99},
			inputs:  []int64{1},
			check: func(t *testing.T, err error) {
				var target *InvalidModeError
				require.ErrorAs(t, err, &target)
			},
		},
		{
			name:    "jump to negative address",
			program: []int64{1105, 1, -2},
			check: func(t *testing.T, err error) {
				var target *AddressError
				require.ErrorAs(t, err, &target)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := NewVM(tt.program, tt.inputs, LoggerOpt(zaptest.NewLogger(t)))
			before := vm.Snapshot()
			pending := vm.PendingInput()

			_, _, err := vm.RunUntilBlocked()
			require.Error(t, err)
			tt.check(t, err)

			// a failed instruction has no side effects
			assert.Equal(t, before, vm.Snapshot())
			assert.Equal(t, pending, vm.PendingInput())

			// and the failure is sticky
			_, again := vm.Step()
			assert.Equal(t, err, again)
			assert.Equal(t, err, vm.Err())
		})
	}
}

func TestVM_Suspension(t *testing.T) {
	vm := NewVM([]int64{3, 0, 99}, nil, LoggerOpt(zaptest.NewLogger(t)))
	before := vm.Snapshot()

	for i := 0; i < 3; i++ {
		status, out, err := vm.RunUntilBlocked()
		require.NoError(t, err)
		assert.Equal(t, StatusWaitingForInput, status)
		assert.Empty(t, out)
		assert.Equal(t, before, vm.Snapshot())
		assert.Equal(t, int64(0), vm.IP())
	}

	vm.SupplyInput(7)
	assert.Equal(t, StatusRunning, vm.Status())

	status, _, err := vm.RunUntilBlocked()
	require.NoError(t, err)
	assert.Equal(t, StatusHalted, status)
	checkCell(0, 7)(t, vm)
}

func TestVM_Interleaved(t *testing.T) {
	// echo forever
	vm := NewVM([]int64{3, 100, 4, 100, 1105, 1, 0}, nil, LoggerOpt(zaptest.NewLogger(t)))

	status, out, err := vm.RunUntilBlocked()
	require.NoError(t, err)
	assert.Equal(t, StatusWaitingForInput, status)
	assert.Empty(t, out)

	vm.SupplyInput(1)
	status, out, err = vm.RunUntilBlocked()
	require.NoError(t, err)
	assert.Equal(t, StatusWaitingForInput, status)
	assert.Equal(t, []int64{1}, out)

	vm.SupplyInput(2, 3)
	status, out, err = vm.RunUntilBlocked()
	require.NoError(t, err)
	assert.Equal(t, StatusWaitingForInput, status)
	assert.Equal(t, []int64{2, 3}, out)
	assert.Equal(t, 0, vm.PendingInput())
	assert.Equal(t, 0, vm.PendingOutput())
}

func TestVM_Step(t *testing.T) {
	vm := NewVM([]int64{104, 5, 99}, nil, LoggerOpt(zaptest.NewLogger(t)))

	status, err := vm.Step()
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, status)
	assert.Equal(t, int64(2), vm.IP())
	assert.Equal(t, 1, vm.PendingOutput())

	status, err = vm.Step()
	require.NoError(t, err)
	assert.Equal(t, StatusHalted, status)
	assert.Equal(t, []int64{5}, vm.DrainOutput())

	_, err = vm.Step()
	var halted *HaltedError
	require.ErrorAs(t, err, &halted)
	assert.Equal(t, int64(2), halted.IP)

	_, _, err = vm.RunUntilBlocked()
	require.ErrorAs(t, err, &halted)
}

func TestVM_StepLimit(t *testing.T) {
	vm := NewVM([]int64{1105, 1, 0}, nil,
		LoggerOpt(zaptest.NewLogger(t, zaptest.Level(zap.InfoLevel))),
		StepLimitOpt(100),
	)
	status, _, err := vm.RunUntilBlocked()
	require.ErrorIs(t, err, ErrStepLimit)
	assert.Equal(t, StatusRunning, status)
	assert.Equal(t, int64(100), vm.InstructionCount())
}

func TestVM_WriteMemory(t *testing.T) {
	program := []int64{1, 0, 0, 0, 99}
	vm := NewVM(program, nil, LoggerOpt(zaptest.NewLogger(t)))
	require.NoError(t, vm.WriteMemory(1, 4))
	require.NoError(t, vm.WriteMemory(2, 4))
	require.Error(t, vm.WriteMemory(-1, 4))

	_, _, err := vm.RunUntilBlocked()
	require.NoError(t, err)
	checkCell(0, 198)(t, vm)

	// the program slice is copied, not aliased
	assert.Equal(t, int64(1), program[0])
}

func TestVM_RelativeBase(t *testing.T) {
	vm := NewVM([]int64{109, 19, 204, -34, 99}, nil, LoggerOpt(zaptest.NewLogger(t)), MemoryOpts(DenseLimit(64)))
	require.NoError(t, vm.WriteMemory(1985, 7))

	_, err := vm.Step()
	require.NoError(t, err)
	assert.Equal(t, int64(19), vm.RelativeBase())

	// 19 - 34 is negative
	_, err = vm.Step()
	var target *AddressError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, int64(-15), target.Addr)
}

func TestVM_WriteTarget(t *testing.T) {
	tests := []struct {
		name      string
		program   []int64
		inputs    []int64
		addr      int64
		want      int64
		wantParam int
		wantErr   bool
	}{
		{name: "add relative", program: []int64{109, 10, 21101, 3, 4, 0, 99}, addr: 10, want: 7},
		{name: "eq relative", program: []int64{109, 10, 21108, 4, 4, 1, 99}, addr: 11, want: 1},
		{name: "input relative", program: []int64{109, 10, 203, -2, 99}, inputs: []int64{5}, addr: 8, want: 5},
		{name: "add immediate", program: []int64{11101, 1, 1, 0, 99}, wantParam: 2, wantErr: true},
		{name: "input immediate", program: []int64{103, 0, 99}, wantParam: 0, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm := NewVM(tt.program, tt.inputs, LoggerOpt(zaptest.NewLogger(t)))
			status, _, err := vm.RunUntilBlocked()
			if tt.wantErr {
				var target *InvalidModeError
				require.ErrorAs(t, err, &target)
				assert.Equal(t, tt.wantParam, target.Param)
				assert.Equal(t, ModeImmediate, target.Mode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StatusHalted, status)
			checkCell(tt.addr, tt.want)(t, vm)
		})
	}
}

func TestVM_SupplyInputDefersExecution(t *testing.T) {
	vm := NewVM([]int64{3, 0, 99}, nil, LoggerOpt(zaptest.NewLogger(t)))
	status, _, err := vm.RunUntilBlocked()
	require.NoError(t, err)
	require.Equal(t, StatusWaitingForInput, status)

	vm.SupplyInput(7)
	assert.Equal(t, StatusRunning, vm.Status())
	assert.Equal(t, int64(0), vm.IP())
	assert.Equal(t, 1, vm.PendingInput())
	checkCell(0, 3)(t, vm)

	status, err = vm.Step()
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, status)
	assert.Equal(t, int64(2), vm.IP())
	assert.Equal(t, 0, vm.PendingInput())
	checkCell(0, 7)(t, vm)
}
