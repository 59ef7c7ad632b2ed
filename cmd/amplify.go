package cmd

import (
	"fmt"

	"github.com/dannbuckley/intcode/amplifier"
	"github.com/spf13/cobra"
)

const (
	PhasesKey   = "phases"
	FeedbackKey = "feedback"
)

func amplifyCommand(a *app) *cobra.Command {
	c := &cobra.Command{
		Use:   "amplify <program>",
		Short: "Finds the phase settings giving the highest thruster signal",
		Args:  cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			flags := c.Flags()
			program, err := loadProgram(args)
			if err != nil {
				return err
			}
			feedback, err := flags.GetBool(FeedbackKey)
			if err != nil {
				return err
			}
			phases, err := flags.GetInt64Slice(PhasesKey)
			if err != nil {
				return err
			}
			if !flags.Changed(PhasesKey) && feedback {
				phases = []int64{5, 6, 7, 8, 9}
			}

			best, err := amplifier.MaxSignal(c.Context(), program, phases,
				amplifier.LoggerOpt(a.logger),
				amplifier.FeedbackOpt(feedback),
				amplifier.VMOpts(a.vmOpts()...),
			)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.OutOrStdout(), "%d %v\n", best.Signal, best.Phases)
			return nil
		},
	}
	flags := c.Flags()
	flags.Int64Slice(PhasesKey, []int64{0, 1, 2, 3, 4}, "Phase settings to permute (default 5..9 with --feedback)")
	flags.Bool(FeedbackKey, false, "Loop the last amplifier back into the first")
	return c
}
