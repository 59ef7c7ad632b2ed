package vm

import "fmt"

// Opcode selects one of the ten Intcode operations. The set is closed: Decode
// rejects every other value, and every switch over Opcode ends in a default
// that reports an InvalidOpcodeError.
type Opcode int64

const (
	OpAdd        Opcode = 1
	OpMul        Opcode = 2
	OpIn         Opcode = 3
	OpOut        Opcode = 4
	OpJumpTrue   Opcode = 5
	OpJumpFalse  Opcode = 6
	OpLess       Opcode = 7
	OpEqual      Opcode = 8
	OpAdjustBase Opcode = 9
	OpHalt       Opcode = 99
)

const maxParams = 3

type opInfo struct {
	name   string
	params int
	// index of the parameter written by the operation, -1 if none
	write int
}

var opcodes = map[Opcode]opInfo{
	OpAdd:        {"add", 3, 2},
	OpMul:        {"mul", 3, 2},
	OpIn:         {"in", 1, 0},
	OpOut:        {"out", 1, -1},
	OpJumpTrue:   {"jnz", 2, -1},
	OpJumpFalse:  {"jz", 2, -1},
	OpLess:       {"lt", 3, 2},
	OpEqual:      {"eq", 3, 2},
	OpAdjustBase: {"arb", 1, -1},
	OpHalt:       {"halt", 0, -1},
}

func (op Opcode) Valid() bool {
	_, ok := opcodes[op]
	return ok
}

func (op Opcode) String() string {
	if info, ok := opcodes[op]; ok {
		return info.name
	}
	return fmt.Sprintf("op(%d)", int64(op))
}

// Params is the number of parameters following the opcode word.
func (op Opcode) Params() int {
	return opcodes[op].params
}

// WriteParam returns the index of the parameter used as a write target.
func (op Opcode) WriteParam() (int, bool) {
	info, ok := opcodes[op]
	if !ok || info.write < 0 {
		return 0, false
	}
	return info.write, true
}

// Mode is the addressing mode of one parameter.
type Mode int64

const (
	ModePosition Mode = iota
	ModeImmediate
	ModeRelative
)

func (m Mode) Valid() bool {
	return m >= ModePosition && m <= ModeRelative
}

func (m Mode) String() string {
	var out string
	switch m {
	case ModePosition:
		out = "position"
	case ModeImmediate:
		out = "immediate"
	case ModeRelative:
		out = "relative"
	default:
		out = "unknown"
	}
	return out
}

// Instruction is a decoded instruction word.
type Instruction struct {
	Op    Opcode
	Modes [maxParams]Mode
}

// Len is the number of memory cells the instruction occupies.
func (in Instruction) Len() int64 {
	return int64(1 + in.Op.Params())
}

// Decode splits an instruction word into its opcode and the modes of the
// parameters that opcode takes. Missing mode digits default to position mode;
// digits beyond the opcode's parameter count are ignored.
func Decode(word int64) (Instruction, error) {
	var in Instruction
	if word < 0 {
		return in, NewInvalidOpcodeError(word)
	}
	in.Op = Opcode(word % 100)
	if !in.Op.Valid() {
		return in, NewInvalidOpcodeError(word)
	}

	modes := word / 100
	for i := 0; i < in.Op.Params(); i++ {
		m := Mode(modes % 10)
		if !m.Valid() {
			return in, NewInvalidModeError(in.Op, i, m)
		}
		in.Modes[i] = m
		modes /= 10
	}
	return in, nil
}
