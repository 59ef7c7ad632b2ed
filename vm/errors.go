package vm

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrStepLimit is returned when a run exceeds the budget set by StepLimitOpt.
var ErrStepLimit = errors.New("step limit exceeded")

// ParseError reports a token of the program text that is not an integer.
type ParseError struct {
	Index int
	Token string
	Err   error
}

func NewParseError(index int, token string, err error) *ParseError {
	return &ParseError{
		Index: index,
		Token: token,
		Err:   err,
	}
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("parse: token %d %q", e.Index, e.Token)
	}
	return fmt.Sprintf("parse: token %d %q: %s", e.Index, e.Token, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// AddressError is returned for any access to a negative address.
type AddressError struct {
	Addr int64
}

func NewAddressError(addr int64) *AddressError {
	return &AddressError{Addr: addr}
}

func (e *AddressError) Error() string {
	return fmt.Sprintf("invalid address %d", e.Addr)
}

type InvalidOpcodeError struct {
	Word   int64
	Opcode int64
}

func NewInvalidOpcodeError(word int64) *InvalidOpcodeError {
	return &InvalidOpcodeError{
		Word:   word,
		Opcode: word % 100,
	}
}

func (e *InvalidOpcodeError) Error() string {
	return fmt.Sprintf("invalid opcode %d in word %d", e.Opcode, e.Word)
}

// InvalidModeError is returned for an unknown mode digit, or for an immediate
// mode write target.
type InvalidModeError struct {
	Op    Opcode
	Param int
	Mode  Mode
}

func NewInvalidModeError(op Opcode, param int, mode Mode) *InvalidModeError {
	return &InvalidModeError{
		Op:    op,
		Param: param,
		Mode:  mode,
	}
}

func (e *InvalidModeError) Error() string {
	if e.Mode.Valid() {
		return fmt.Sprintf("%s: parameter %d cannot be written in %s mode", e.Op, e.Param+1, e.Mode)
	}
	return fmt.Sprintf("%s: parameter %d has unknown mode %d", e.Op, e.Param+1, int64(e.Mode))
}

// ComputationError reports a signed 64 bit overflow. Results are never
// wrapped around.
type ComputationError struct {
	Op   string
	A, B int64
}

func NewComputationError(op string, a, b int64) *ComputationError {
	return &ComputationError{
		Op: op,
		A:  a,
		B:  b,
	}
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("%s overflow: %d, %d", e.Op, e.A, e.B)
}

type HaltedError struct {
	IP int64
}

func NewHaltedError(ip int64) *HaltedError {
	return &HaltedError{IP: ip}
}

func (e *HaltedError) Error() string {
	return fmt.Sprintf("vm halted @ip=%d", e.IP)
}
