// Package ascii moves text in and out of programs that speak ASCII one
// character per cell.
package ascii

import (
	"strings"

	"github.com/dannbuckley/intcode/vm"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// MaxChar is the highest cell value decoded as text. Anything above it is a
// plain number the program reports outside of its text, e.g. a final score.
const MaxChar = 127

// Encode turns each line into character cells terminated by a newline.
func Encode(lines ...string) []int64 {
	var out []int64
	for _, line := range lines {
		for i := 0; i < len(line); i++ {
			out = append(out, int64(line[i]))
		}
		out = append(out, '\n')
	}
	return out
}

// Decode splits output cells into text and the values that are not
// characters, keeping the order of each.
func Decode(out []int64) (string, []int64) {
	var b strings.Builder
	var extra []int64
	for _, v := range out {
		if v < 0 || v > MaxChar {
			extra = append(extra, v)
			continue
		}
		b.WriteByte(byte(v))
	}
	return b.String(), extra
}

// Console drives a vm as an interactive terminal: one command line in, the
// text produced until the next prompt out.
type Console struct {
	machine *vm.VM
	values  []int64
	logger  *zap.Logger
}

type ConsoleOpt func(*Console) *Console

func LoggerOpt(l *zap.Logger) ConsoleOpt {
	return func(c *Console) *Console {
		c.logger = l
		return c
	}
}

func NewConsole(machine *vm.VM, opts ...ConsoleOpt) *Console {
	c := &Console{
		machine: machine,
		logger:  zap.L(),
	}
	for _, opt := range opts {
		c = opt(c)
	}
	c.logger = c.logger.Named("console")
	return c
}

// Exec sends command as one line and runs until the program asks for input
// again or halts. An empty command sends nothing, which is how the opening
// text is read.
func (c *Console) Exec(command string) (string, vm.Status, error) {
	if command != "" {
		c.logger.Debug("exec", zap.String("command", command))
		c.machine.SupplyInput(Encode(command)...)
	}
	return c.run()
}

// Script sends every line at once before running, for programs that read a
// whole script and only then produce output.
func (c *Console) Script(lines ...string) (string, vm.Status, error) {
	c.logger.Debug("script", zap.Int("lines", len(lines)))
	c.machine.SupplyInput(Encode(lines...)...)
	return c.run()
}

func (c *Console) run() (string, vm.Status, error) {
	status, out, err := c.machine.RunUntilBlocked()
	text, extra := Decode(out)
	c.values = append(c.values, extra...)
	if err != nil {
		return text, status, errors.Wrap(err, "console")
	}
	return text, status, nil
}

// Values returns the non character outputs seen so far and forgets them.
func (c *Console) Values() []int64 {
	out := c.values
	c.values = nil
	return out
}
