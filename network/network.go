// Package network simulates many hosts exchanging addressed packets, with an
// optional NAT that wakes the network when it goes idle.
package network

import (
	"context"

	"github.com/dannbuckley/intcode/vm"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const defaultIdleRounds = 2

var (
	ErrAllHalted  = errors.New("every host halted")
	ErrRoundLimit = errors.New("round limit reached")
)

type Network struct {
	nics []*nic
	nat  *NAT

	natEnabled bool
	idleRounds int
	maxRounds  int
	vmOpts     []vm.VMOpt
	logger     *zap.Logger
}

type NetworkOpt func(*Network) *Network

func WithLogger(l *zap.Logger) NetworkOpt {
	return func(n *Network) *Network {
		n.logger = l
		return n
	}
}

// WithNAT keeps the network running past the first packet sent to NATAddr.
// The NAT stores the latest such packet and resends it to address 0 whenever
// the network is idle.
func WithNAT(enabled bool) NetworkOpt {
	return func(n *Network) *Network {
		n.natEnabled = enabled
		return n
	}
}

// WithIdleRounds sets how many consecutive rounds without traffic count as
// idle.
func WithIdleRounds(rounds int) NetworkOpt {
	return func(n *Network) *Network {
		n.idleRounds = rounds
		return n
	}
}

// WithMaxRounds stops Run with ErrRoundLimit after the given number of
// rounds. Zero means no limit.
func WithMaxRounds(rounds int) NetworkOpt {
	return func(n *Network) *Network {
		n.maxRounds = rounds
		return n
	}
}

// WithVMOpts is passed to every vm created by NewNetwork.
func WithVMOpts(opts ...vm.VMOpt) NetworkOpt {
	return func(n *Network) *Network {
		n.vmOpts = append(n.vmOpts, opts...)
		return n
	}
}

// Report summarizes a finished run.
type Report struct {
	// first packet sent to NATAddr
	First *Packet
	// NAT packet whose Y was delivered to address 0 twice in a row, only set
	// with the NAT enabled
	Repeated  *Packet
	Rounds    int
	Delivered int
	Dropped   int
}

// NewNetwork boots size copies of program. Each receives its address as its
// first input.
func NewNetwork(program []int64, size int, opts ...NetworkOpt) (*Network, error) {
	if size <= 0 {
		return nil, errors.Errorf("invalid network size %d", size)
	}
	n := newNetwork(opts...)
	hosts := make([]Host, size)
	for i := range hosts {
		vmOpts := append([]vm.VMOpt{vm.LoggerOpt(n.logger)}, n.vmOpts...)
		hosts[i] = vm.NewVM(program, []int64{int64(i)}, vmOpts...)
	}
	if err := n.attach(hosts); err != nil {
		return nil, err
	}
	return n, nil
}

// New attaches hosts to a network, hosts[i] at address i.
func New(hosts []Host, opts ...NetworkOpt) (*Network, error) {
	n := newNetwork(opts...)
	if err := n.attach(hosts); err != nil {
		return nil, err
	}
	return n, nil
}

func newNetwork(opts ...NetworkOpt) *Network {
	n := &Network{
		idleRounds: defaultIdleRounds,
		logger:     zap.L(),
	}
	for _, opt := range opts {
		n = opt(n)
	}
	if n.idleRounds < 1 {
		n.idleRounds = 1
	}
	n.logger = n.logger.Named("network")
	n.nat = NewNAT(n.logger)
	return n
}

func (n *Network) attach(hosts []Host) error {
	if len(hosts) == 0 || Addr(len(hosts)) > NATAddr {
		return errors.Errorf("invalid network size %d", len(hosts))
	}
	n.nics = make([]*nic, len(hosts))
	for i, h := range hosts {
		n.nics[i] = newNIC(Addr(i), h, n.logger)
	}
	return nil
}

// Size is the number of attached hosts.
func (n *Network) Size() int {
	return len(n.nics)
}

// Run services the hosts round robin until a stop condition holds: without
// the NAT, the first packet sent to NATAddr; with it, the first Y the NAT
// delivers twice in a row.
func (n *Network) Run(ctx context.Context) (*Report, error) {
	n.logger.Info("starting network",
		zap.Int("hosts", len(n.nics)),
		zap.Bool("nat", n.natEnabled),
	)
	report := &Report{}
	idle := 0

	for {
		if err := ctx.Err(); err != nil {
			return report, errors.Wrapf(err, "round %d", report.Rounds)
		}
		if n.maxRounds > 0 && report.Rounds >= n.maxRounds {
			return report, errors.Wrapf(ErrRoundLimit, "after %d rounds", report.Rounds)
		}
		report.Rounds += 1

		quiet := true
		running := 0
		for _, nc := range n.nics {
			if nc.halted() {
				continue
			}
			running += 1

			sent, received, err := nc.run()
			if received {
				quiet = false
			}
			for _, p := range sent {
				quiet = false
				if p.To == NATAddr {
					if report.First == nil {
						first := p
						report.First = &first
					}
					if !n.natEnabled {
						n.logger.Info("first packet to nat", zap.Stringer("packet", p))
						return report, nil
					}
					n.nat.Receive(p)
					continue
				}
				n.route(p, report)
			}
			if err != nil {
				return report, err
			}
		}
		if running == 0 {
			return report, ErrAllHalted
		}

		if quiet {
			idle += 1
		} else {
			idle = 0
		}
		if !n.natEnabled || idle < n.idleRounds {
			continue
		}

		p, ok := n.nat.Wake()
		if !ok {
			continue
		}
		idle = 0
		n.nics[0].deliver(p)
		report.Delivered += 1
		if n.nat.Repeated() {
			n.logger.Info("nat repeated", zap.Stringer("packet", p))
			report.Repeated = &p
			return report, nil
		}
	}
}

func (n *Network) route(p Packet, report *Report) {
	if p.To < 0 || int(p.To) >= len(n.nics) {
		n.logger.Warn("dropping packet to unknown address", zap.Stringer("packet", p))
		report.Dropped += 1
		return
	}
	n.logger.Debug("route", zap.Stringer("packet", p))
	n.nics[p.To].deliver(p)
	report.Delivered += 1
}
