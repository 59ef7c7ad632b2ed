package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dannbuckley/intcode/vm"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const (
	InputKey = "input"
	PatchKey = "patch"
	DumpKey  = "dump"
)

func runCommand(a *app) *cobra.Command {
	c := &cobra.Command{
		Use:   "run <program>",
		Short: "Runs a program until it halts or waits for input",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return a.run(c, args)
		},
	}
	flags := c.Flags()
	flags.Int64SliceP(InputKey, "i", nil, "Values queued as input")
	flags.StringSliceP(PatchKey, "p", nil, "Memory patches as addr=value, applied before the first step")
	flags.Bool(DumpKey, false, "Print memory after the run")
	return c
}

// parsePatches reads addr=value pairs.
func parsePatches(flags *pflag.FlagSet) (map[int64]int64, error) {
	raw, err := flags.GetStringSlice(PatchKey)
	if err != nil {
		return nil, err
	}
	patches := make(map[int64]int64, len(raw))
	for _, p := range raw {
		addr, value, ok := strings.Cut(p, "=")
		if !ok {
			return nil, errors.Errorf("patch %q: want addr=value", p)
		}
		a, err := strconv.ParseInt(strings.TrimSpace(addr), 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "patch %q", p)
		}
		v, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "patch %q", p)
		}
		patches[a] = v
	}
	return patches, nil
}

func (a *app) run(c *cobra.Command, args []string) error {
	flags := c.Flags()
	program, err := loadProgram(args)
	if err != nil {
		return err
	}
	inputs, err := flags.GetInt64Slice(InputKey)
	if err != nil {
		return err
	}
	patches, err := parsePatches(flags)
	if err != nil {
		return err
	}
	dump, err := flags.GetBool(DumpKey)
	if err != nil {
		return err
	}

	m := vm.NewVM(program, inputs, a.vmOpts()...)
	for addr, v := range patches {
		if err := m.WriteMemory(addr, v); err != nil {
			return err
		}
	}

	status, out, err := m.RunUntilBlocked()
	w := c.OutOrStdout()
	for _, v := range out {
		fmt.Fprintln(w, v)
	}
	if err != nil {
		return err
	}
	a.logger.Info("run finished",
		zap.Stringer("status", status),
		zap.Int64("instructions", m.InstructionCount()),
	)

	if dump {
		fmt.Fprintln(w, vm.FormatProgram(m.Snapshot()))
	}
	if status == vm.StatusWaitingForInput {
		fmt.Fprintf(w, "waiting for input @ip=%d\n", m.IP())
	}
	return nil
}
