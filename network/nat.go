package network

import "go.uber.org/zap"

// NAT keeps the last packet sent to NATAddr and replays it to address 0.
type NAT struct {
	last *Packet

	// Y of the previous wake up
	prevY    int64
	woken    bool
	repeated bool

	logger *zap.Logger
}

func NewNAT(logger *zap.Logger) *NAT {
	return &NAT{logger: logger.Named("nat")}
}

// Receive replaces the stored packet.
func (n *NAT) Receive(p Packet) {
	n.logger.Debug("store", zap.Stringer("packet", p))
	n.last = &p
}

// Wake returns the stored packet readdressed to address 0, or false if
// nothing was received yet.
func (n *NAT) Wake() (Packet, bool) {
	if n.last == nil {
		return Packet{}, false
	}
	p := Packet{From: NATAddr, To: 0, X: n.last.X, Y: n.last.Y}
	n.repeated = n.woken && n.prevY == p.Y
	n.prevY = p.Y
	n.woken = true
	return p, true
}

// Repeated reports whether the last two wake ups delivered the same Y.
func (n *NAT) Repeated() bool {
	return n.repeated
}
