package network

import "fmt"

// Addr is a network address. Hosts are numbered from 0.
type Addr int64

// NATAddr is the address of the NAT, which hosts use as the default route.
const NATAddr Addr = 255

// Packet is one addressed X, Y pair. A host sends it as the three output
// values To, X, Y.
type Packet struct {
	From Addr
	To   Addr
	X, Y int64
}

func (p Packet) String() string {
	return fmt.Sprintf("%d->%d (%d, %d)", p.From, p.To, p.X, p.Y)
}
