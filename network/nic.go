package network

import (
	"github.com/dannbuckley/intcode/types"
	"github.com/dannbuckley/intcode/vm"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Host is a machine attached to the network. *vm.VM satisfies it.
type Host interface {
	SupplyInput(values ...int64)
	RunUntilBlocked() (vm.Status, []int64, error)
	Status() vm.Status
}

// Idle is fed to a host that has nothing in its inbox.
const Idle int64 = -1

// nic connects one host to the network: it queues packets addressed to the
// host and assembles the host's outputs into packets.
type nic struct {
	addr  Addr
	host  Host
	inbox *types.Queue[Packet]
	// outputs not yet forming a full packet
	partial []int64
	logger  *zap.Logger
}

func newNIC(addr Addr, host Host, logger *zap.Logger) *nic {
	return &nic{
		addr:   addr,
		host:   host,
		inbox:  types.NewQueue[Packet](),
		logger: logger.With(zap.Int64("addr", int64(addr))),
	}
}

func (n *nic) deliver(p Packet) {
	n.inbox.Push(p)
}

func (n *nic) halted() bool {
	return n.host.Status() == vm.StatusHalted
}

// run feeds the inbox, or Idle when it is empty, to the host and returns the
// packets the host sent. received reports whether any packet was fed.
func (n *nic) run() (sent []Packet, received bool, err error) {
	if n.inbox.Len() == 0 {
		n.host.SupplyInput(Idle)
	} else {
		for _, p := range n.inbox.Drain() {
			n.logger.Debug("recv", zap.Stringer("packet", p))
			n.host.SupplyInput(p.X, p.Y)
		}
		received = true
	}

	status, out, err := n.host.RunUntilBlocked()
	n.partial = append(n.partial, out...)
	for len(n.partial) >= 3 {
		sent = append(sent, Packet{
			From: n.addr,
			To:   Addr(n.partial[0]),
			X:    n.partial[1],
			Y:    n.partial[2],
		})
		n.partial = n.partial[3:]
	}
	if err != nil {
		return sent, received, errors.Wrapf(err, "host %d", n.addr)
	}
	if status == vm.StatusHalted {
		n.logger.Info("host halted", zap.Int("unsent", len(n.partial)))
	}
	return sent, received, nil
}
