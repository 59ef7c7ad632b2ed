package cmd

import (
	"fmt"

	"github.com/dannbuckley/intcode/solve"
	"github.com/spf13/cobra"
)

const (
	SystemIDKey = "id"
	ModeKey     = "mode"
	TargetKey   = "target"
	NounKey     = "noun"
	VerbKey     = "verb"
)

func diagnosticCommand(a *app) *cobra.Command {
	c := &cobra.Command{
		Use:   "diagnostic <program>",
		Short: "Runs the diagnostic self tests for a system",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			program, err := loadProgram(args)
			if err != nil {
				return err
			}
			id, err := c.Flags().GetInt64(SystemIDKey)
			if err != nil {
				return err
			}
			code, err := solve.Diagnostic(program, id, a.vmOpts()...)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.OutOrStdout(), code)
			return nil
		},
	}
	c.Flags().Int64(SystemIDKey, 1, "System ID given as the only input")
	return c
}

func boostCommand(a *app) *cobra.Command {
	c := &cobra.Command{
		Use:   "boost <program>",
		Short: "Runs a program with a single mode input and prints every output",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			program, err := loadProgram(args)
			if err != nil {
				return err
			}
			mode, err := c.Flags().GetInt64(ModeKey)
			if err != nil {
				return err
			}
			out, err := solve.Boost(program, mode, a.vmOpts()...)
			for _, v := range out {
				fmt.Fprintln(c.OutOrStdout(), v)
			}
			return err
		},
	}
	c.Flags().Int64(ModeKey, 1, "Mode given as the only input")
	return c
}

func nounVerbCommand(a *app) *cobra.Command {
	c := &cobra.Command{
		Use:   "nounverb <program>",
		Short: "Finds the noun and verb that produce the target",
		Long: "Finds the noun and verb that produce the target in address 0 and prints 100*noun+verb. " +
			"With --noun and --verb, prints address 0 for that pair instead.",
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			flags := c.Flags()
			program, err := loadProgram(args)
			if err != nil {
				return err
			}
			noun, err := flags.GetInt64(NounKey)
			if err != nil {
				return err
			}
			verb, err := flags.GetInt64(VerbKey)
			if err != nil {
				return err
			}
			if flags.Changed(NounKey) || flags.Changed(VerbKey) {
				v, err := solve.Gravity(program, noun, verb, a.vmOpts()...)
				if err != nil {
					return err
				}
				fmt.Fprintln(c.OutOrStdout(), v)
				return nil
			}

			target, err := flags.GetInt64(TargetKey)
			if err != nil {
				return err
			}
			noun, verb, err = solve.NounVerb(program, target, a.vmOpts()...)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.OutOrStdout(), 100*noun+verb)
			return nil
		},
	}
	flags := c.Flags()
	flags.Int64(TargetKey, solve.NounVerbTarget, "Value wanted in address 0")
	flags.Int64(NounKey, 12, "Noun written to address 1")
	flags.Int64(VerbKey, 2, "Verb written to address 2")
	return c
}
