// Package cmd holds the intcode command line.
package cmd

import (
	"github.com/dannbuckley/intcode/config"
	"github.com/dannbuckley/intcode/vm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	ConfigKey   = "config"
	LogLevelKey = "log-level"
	DevKey      = "dev"
)

// app is the state shared by every command once flags are parsed.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
}

func (a *app) vmOpts() []vm.VMOpt {
	return []vm.VMOpt{
		vm.LoggerOpt(a.logger),
		vm.StepLimitOpt(a.cfg.VM.StepLimit),
		vm.MemoryOpts(vm.DenseLimit(a.cfg.VM.DenseLimit)),
	}
}

func Command() *cobra.Command {
	a := &app{}
	c := &cobra.Command{
		Use:           "intcode",
		Short:         "Runs Intcode programs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(c *cobra.Command, args []string) error {
			return a.setup(c)
		},
	}
	flags := c.PersistentFlags()
	flags.String(ConfigKey, "", "Path to the config file (default ./"+config.FileName+" if present)")
	flags.String(LogLevelKey, "", "Log level, overrides the config file")
	flags.Bool(DevKey, false, "Use the development logger")

	c.AddCommand(
		runCommand(a),
		diagnosticCommand(a),
		boostCommand(a),
		nounVerbCommand(a),
		amplifyCommand(a),
		networkCommand(a),
		playCommand(a),
		disasmCommand(a),
		serveCommand(a),
	)
	return c
}

func (a *app) setup(c *cobra.Command) error {
	flags := c.Flags()
	path, err := flags.GetString(ConfigKey)
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	level, err := flags.GetString(LogLevelKey)
	if err != nil {
		return err
	}
	if level != "" {
		cfg.Log.Level = level
	}
	dev, err := flags.GetBool(DevKey)
	if err != nil {
		return err
	}
	if dev {
		cfg.Log.Development = true
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := cfg.Logger()
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(logger)

	a.cfg = cfg
	a.logger = logger
	return nil
}

func loadProgram(args []string) ([]int64, error) {
	return vm.LoadFile(args[0])
}
