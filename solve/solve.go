// Package solve runs the common one shot program patterns: noun and verb
// patching, diagnostics, and boost runs.
package solve

import (
	"fmt"

	"github.com/dannbuckley/intcode/vm"
	"github.com/pkg/errors"
)

// NounVerbTarget is the output searched for by NounVerb in the gravity assist
// program.
const NounVerbTarget int64 = 19690720

var (
	ErrNotFound  = errors.New("no noun and verb produce the target")
	ErrNotHalted = errors.New("program did not halt")
)

// DiagnosticError reports a failed self test: a non zero output before the
// diagnostic code.
type DiagnosticError struct {
	Index   int
	Value   int64
	Outputs []int64
}

func NewDiagnosticError(index int, value int64, outputs []int64) *DiagnosticError {
	return &DiagnosticError{
		Index:   index,
		Value:   value,
		Outputs: outputs,
	}
}

func (e *DiagnosticError) Error() string {
	return fmt.Sprintf("diagnostic test %d failed with %d", e.Index, e.Value)
}

// run executes program to completion and returns its outputs.
func run(program []int64, inputs []int64, opts ...vm.VMOpt) (*vm.VM, []int64, error) {
	m := vm.NewVM(program, inputs, opts...)
	status, out, err := m.RunUntilBlocked()
	if err != nil {
		return m, out, err
	}
	if status != vm.StatusHalted {
		return m, out, errors.Wrapf(ErrNotHalted, "%s @ip=%d", status, m.IP())
	}
	return m, out, nil
}

// Gravity patches address 1 with noun and address 2 with verb, runs the
// program and returns address 0.
func Gravity(program []int64, noun, verb int64, opts ...vm.VMOpt) (int64, error) {
	m := vm.NewVM(program, nil, opts...)
	if err := m.WriteMemory(1, noun); err != nil {
		return 0, err
	}
	if err := m.WriteMemory(2, verb); err != nil {
		return 0, err
	}
	status, _, err := m.RunUntilBlocked()
	if err != nil {
		return 0, errors.Wrapf(err, "noun %d verb %d", noun, verb)
	}
	if status != vm.StatusHalted {
		return 0, errors.Wrapf(ErrNotHalted, "noun %d verb %d", noun, verb)
	}
	return m.ReadMemory(0)
}

// NounVerb searches nouns and verbs in 0..99 for the pair that makes Gravity
// return target. Runs that fail are skipped.
func NounVerb(program []int64, target int64, opts ...vm.VMOpt) (noun, verb int64, err error) {
	for noun = 0; noun < 100; noun++ {
		for verb = 0; verb < 100; verb++ {
			got, err := Gravity(program, noun, verb, opts...)
			if err != nil {
				continue
			}
			if got == target {
				return noun, verb, nil
			}
		}
	}
	return 0, 0, errors.Wrapf(ErrNotFound, "target %d", target)
}

// Diagnostic runs the program with systemID as its only input. Every output
// but the last is a test result that must be 0; the last is the diagnostic
// code.
func Diagnostic(program []int64, systemID int64, opts ...vm.VMOpt) (int64, error) {
	_, out, err := run(program, []int64{systemID}, opts...)
	if err != nil {
		return 0, errors.Wrapf(err, "system %d", systemID)
	}
	if len(out) == 0 {
		return 0, errors.Errorf("system %d: no diagnostic code", systemID)
	}
	for i, v := range out[:len(out)-1] {
		if v != 0 {
			return 0, NewDiagnosticError(i, v, out)
		}
	}
	return out[len(out)-1], nil
}

// Boost runs the program with mode as its only input and returns every
// output. A single output is the keycode or coordinates; more than one lists
// the opcodes that malfunctioned.
func Boost(program []int64, mode int64, opts ...vm.VMOpt) ([]int64, error) {
	_, out, err := run(program, []int64{mode}, opts...)
	if err != nil {
		return out, errors.Wrapf(err, "mode %d", mode)
	}
	return out, nil
}
