// Package amplifier runs copies of one program in series, each feeding its
// output to the next, optionally with the last wired back to the first.
package amplifier

import (
	"github.com/dannbuckley/intcode/vm"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Chain is a series of amplifiers, one vm per phase setting.
type Chain struct {
	amps     []*vm.VM
	phases   []int64
	feedback bool
	vmOpts   []vm.VMOpt
	logger   *zap.Logger
}

type ChainOpt func(*Chain) *Chain

func LoggerOpt(l *zap.Logger) ChainOpt {
	return func(c *Chain) *Chain {
		c.logger = l
		return c
	}
}

// FeedbackOpt routes the last amplifier's output back into the first until
// the last amplifier halts.
func FeedbackOpt(feedback bool) ChainOpt {
	return func(c *Chain) *Chain {
		c.feedback = feedback
		return c
	}
}

// VMOpts are applied to every amplifier vm, after the chain's logger.
func VMOpts(opts ...vm.VMOpt) ChainOpt {
	return func(c *Chain) *Chain {
		c.vmOpts = append(c.vmOpts, opts...)
		return c
	}
}

// NewChain boots one vm per phase. Each vm receives its phase setting as its
// first input.
func NewChain(program []int64, phases []int64, opts ...ChainOpt) *Chain {
	c := &Chain{
		phases: append([]int64(nil), phases...),
		logger: zap.L(),
	}
	for _, opt := range opts {
		c = opt(c)
	}
	c.logger = c.logger.Named("amplifier")

	vmOpts := append([]vm.VMOpt{vm.LoggerOpt(c.logger)}, c.vmOpts...)
	c.amps = make([]*vm.VM, len(phases))
	for i, phase := range phases {
		c.amps[i] = vm.NewVM(program, []int64{phase}, vmOpts...)
	}
	return c
}

// Run sends signal into the first amplifier and returns the last signal the
// final amplifier produced.
func (c *Chain) Run(signal int64) (int64, error) {
	if len(c.amps) == 0 {
		return 0, errors.New("empty chain")
	}

	last := len(c.amps) - 1
	for round := 0; ; round++ {
		for i, amp := range c.amps {
			amp.SupplyInput(signal)
			status, out, err := amp.RunUntilBlocked()
			if err != nil {
				return 0, errors.Wrapf(err, "amplifier %d round %d", i, round)
			}
			if len(out) == 0 {
				return 0, errors.Errorf("amplifier %d round %d: no output", i, round)
			}
			signal = out[len(out)-1]

			if i == last && (!c.feedback || status == vm.StatusHalted) {
				c.logger.Debug("chain done",
					zap.Int64s("phases", c.phases),
					zap.Int("rounds", round+1),
					zap.Int64("signal", signal),
				)
				return signal, nil
			}
		}
	}
}
