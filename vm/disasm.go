package vm

import (
	"fmt"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

// errWriter keeps the first write error so a disassembly can write freely and
// check once at the end.
type errWriter struct {
	w   io.Writer
	Err error
}

func (ew *errWriter) Write(p []byte) (int, error) {
	if ew.Err != nil {
		return 0, ew.Err
	}
	n, err := ew.w.Write(p)
	ew.Err = err
	return n, err
}

// Disassemble writes the instruction at pc to w and returns the position of
// the next instruction and any write error. Words that do not decode, or
// instructions cut short by the end of mem, are written as data.
//
// Operands print as [n] in position mode, n in immediate mode and [rb+n] in
// relative mode. A pc outside mem is an error and writes nothing.
func Disassemble(mem []int64, pc int, w io.Writer) (next int, err error) {
	if pc < 0 || pc >= len(mem) {
		return pc, errors.Errorf("pc %d outside %d cells", pc, len(mem))
	}
	ew, _ := w.(*errWriter)
	if ew == nil {
		ew = &errWriter{w: w}
	}

	word := mem[pc]
	in, derr := Decode(word)
	if derr != nil || pc+int(in.Len()) > len(mem) {
		io.WriteString(ew, "data ")
		io.WriteString(ew, strconv.FormatInt(word, 10))
		return pc + 1, ew.Err
	}

	io.WriteString(ew, in.Op.String())
	for i := 0; i < in.Op.Params(); i++ {
		if i == 0 {
			ew.Write([]byte{' '})
		} else {
			io.WriteString(ew, ", ")
		}
		io.WriteString(ew, operand(in.Modes[i], mem[pc+1+i]))
	}
	return pc + int(in.Len()), ew.Err
}

func operand(m Mode, raw int64) string {
	switch m {
	case ModeImmediate:
		return strconv.FormatInt(raw, 10)
	case ModeRelative:
		if raw < 0 {
			return "[rb" + strconv.FormatInt(raw, 10) + "]"
		}
		return "[rb+" + strconv.FormatInt(raw, 10) + "]"
	default:
		return "[" + strconv.FormatInt(raw, 10) + "]"
	}
}

// DisassembleAll writes a listing of every cell in mem, one instruction per
// line prefixed with its address.
func DisassembleAll(mem []int64, w io.Writer) error {
	ew := &errWriter{w: w}
	for pc := 0; pc < len(mem); {
		fmt.Fprintf(ew, "%6d\t", pc)
		pc, _ = Disassemble(mem, pc, ew)
		ew.Write([]byte{'\n'})
		if ew.Err != nil {
			return ew.Err
		}
	}
	return nil
}
