package cmd

import (
	"fmt"

	"github.com/dannbuckley/intcode/network"
	"github.com/spf13/cobra"
)

const (
	SizeKey       = "size"
	NATKey        = "nat"
	IdleRoundsKey = "idle-rounds"
	MaxRoundsKey  = "max-rounds"
)

func networkCommand(a *app) *cobra.Command {
	c := &cobra.Command{
		Use:   "network <program>",
		Short: "Boots a network of hosts running the program",
		Long: "Boots a network of hosts running the program and prints the Y of the first packet sent to " +
			"address 255. With --nat, also prints the first Y the NAT delivers twice in a row.",
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			flags := c.Flags()
			program, err := loadProgram(args)
			if err != nil {
				return err
			}

			cfg := a.cfg.Network
			if flags.Changed(SizeKey) {
				if cfg.Size, err = flags.GetInt(SizeKey); err != nil {
					return err
				}
			}
			if flags.Changed(NATKey) {
				if cfg.NAT, err = flags.GetBool(NATKey); err != nil {
					return err
				}
			}
			if flags.Changed(IdleRoundsKey) {
				if cfg.IdleRounds, err = flags.GetInt(IdleRoundsKey); err != nil {
					return err
				}
			}
			if flags.Changed(MaxRoundsKey) {
				if cfg.MaxRounds, err = flags.GetInt(MaxRoundsKey); err != nil {
					return err
				}
			}

			n, err := network.NewNetwork(program, cfg.Size,
				network.WithLogger(a.logger),
				network.WithNAT(cfg.NAT),
				network.WithIdleRounds(cfg.IdleRounds),
				network.WithMaxRounds(cfg.MaxRounds),
				network.WithVMOpts(a.vmOpts()...),
			)
			if err != nil {
				return err
			}
			report, err := n.Run(c.Context())
			if err != nil {
				return err
			}

			w := c.OutOrStdout()
			if report.First != nil {
				fmt.Fprintf(w, "first nat packet: %d\n", report.First.Y)
			}
			if report.Repeated != nil {
				fmt.Fprintf(w, "repeated nat packet: %d\n", report.Repeated.Y)
			}
			return nil
		},
	}
	flags := c.Flags()
	flags.Int(SizeKey, 50, "Number of hosts, overrides the config file")
	flags.Bool(NATKey, false, "Run the NAT, overrides the config file")
	flags.Int(IdleRoundsKey, 2, "Quiet rounds before the NAT wakes the network, overrides the config file")
	flags.Int(MaxRoundsKey, 0, "Stop after this many rounds, 0 for no limit, overrides the config file")
	return c
}
