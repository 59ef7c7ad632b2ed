package cmd

import (
	"github.com/dannbuckley/intcode/vm"
	"github.com/spf13/cobra"
)

func disasmCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "disasm <program>",
		Short: "Prints a listing of the program",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			program, err := loadProgram(args)
			if err != nil {
				return err
			}
			return vm.DisassembleAll(program, c.OutOrStdout())
		},
	}
}
