// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package linktest is a deterministic, in-process double of the Link
// Layer (spec.md §6) for driving the lifecycle state machine in tests
// without real sockets: a Network hub holds every registered Peer and
// delivers link.Events synchronously and in call order, with
// Sever/Remove hooks to simulate the connection failures and
// bootstrap exhaustion spec.md §8's scenarios S5/S6 require.
package linktest

import (
	"errors"
	"sync"

	"github.com/sectioncore/overlay/link"
)

// Network is the shared hub every Peer in a test registers with.
// Not safe for concurrent use from multiple goroutines; the driver
// loop model (spec.md §5) is single-threaded and so is this harness.
type Network struct {
	mu       sync.Mutex
	peers    map[string]*Peer
	severed  map[[2]string]bool
	hardCode []string // addresses every new Peer bootstraps against by default
}

// New returns an empty Network.
func New() *Network {
	return &Network{
		peers:   make(map[string]*Peer),
		severed: make(map[[2]string]bool),
	}
}

// SetHardCodedContacts configures the default bootstrap contact list
// new peers are given unless overridden in NewPeer.
func (n *Network) SetHardCodedContacts(addrs ...string) {
	n.hardCode = addrs
}

// NewPeer registers and returns a new mock Link Layer endpoint at
// addr. hardCoded overrides the network's default contact list for
// this peer only; pass nil to use the network default.
func (n *Network) NewPeer(addr string, hardCoded []string) *Peer {
	n.mu.Lock()
	defer n.mu.Unlock()

	if hardCoded == nil {
		hardCoded = n.hardCode
	}
	p := &Peer{
		net:      n,
		addr:     addr,
		hardCode: hardCoded,
		events:   make(chan link.Event, 256),
	}
	n.peers[addr] = p
	return p
}

// Remove simulates a peer's process dying: it is unregistered, so a
// later ConnectTo to it reports ConnectionFailure, a Send to it
// reports UnsentUserMessage, and Bootstrap skips it.
func (n *Network) Remove(addr string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.peers, addr)
}

// Sever breaks the link between a and b in both directions without
// removing either peer, simulating a transient network partition
// rather than a process death.
func (n *Network) Sever(a, b string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.severed[[2]string{a, b}] = true
	n.severed[[2]string{b, a}] = true
}

// Heal reverses a prior Sever.
func (n *Network) Heal(a, b string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.severed, [2]string{a, b})
	delete(n.severed, [2]string{b, a})
}

func (n *Network) reachable(from, to string) (*Peer, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.severed[[2]string{from, to}] {
		return nil, false
	}
	p, ok := n.peers[to]
	return p, ok
}

// Peer is a deterministic link.Layer implementation bound to a
// Network hub.
type Peer struct {
	net      *Network
	addr     string
	hardCode []string
	events   chan link.Event
}

var _ link.Layer = (*Peer)(nil)

// ConnInfo returns this peer's own address, for handing to others.
func (p *Peer) ConnInfo() link.ConnInfo { return link.ConnInfo{Addr: p.addr} }

// Events implements link.Layer.
func (p *Peer) Events() <-chan link.Event { return p.events }

// Bootstrap implements link.Layer: it tries every hard-coded contact
// in order and stops at the first reachable one, mirroring the "first
// bootstrap connection wins" behavior of the mock transport.
func (p *Peer) Bootstrap() {
	for _, addr := range p.hardCode {
		if target, ok := p.net.reachable(p.addr, addr); ok {
			p.events <- link.BootstrappedTo{Peer: link.ConnInfo{Addr: addr}}
			target.events <- link.ConnectedTo{Peer: p.ConnInfo()}
			return
		}
	}
	p.events <- link.BootstrapFailure{}
}

// ConnectTo implements link.Layer.
func (p *Peer) ConnectTo(peer link.ConnInfo) {
	target, ok := p.net.reachable(p.addr, peer.Addr)
	if !ok {
		p.events <- link.ConnectionFailure{Peer: peer, Err: errors.New("linktest: unreachable")}
		return
	}
	p.events <- link.ConnectedTo{Peer: peer}
	target.events <- link.ConnectedTo{Peer: p.ConnInfo()}
}

// DisconnectFrom implements link.Layer. The mock transport does not
// notify the remote side, mirroring a local-only socket teardown.
func (p *Peer) DisconnectFrom(link.ConnInfo) {}

// Send implements link.Layer.
func (p *Peer) Send(peer link.ConnInfo, payload []byte, token uint64) {
	target, ok := p.net.reachable(p.addr, peer.Addr)
	if !ok {
		p.events <- link.UnsentUserMessage{Peer: peer, Bytes: payload, Token: token}
		return
	}
	target.events <- link.NewMessage{Peer: p.ConnInfo(), Bytes: payload}
	p.events <- link.SentUserMessage{Peer: peer, Bytes: payload, Token: token}
}

// Finish delivers a Finish event to this peer and unregisters it,
// simulating an orderly Link Layer shutdown.
func (p *Peer) Finish() {
	p.events <- link.Finish{}
	p.net.Remove(p.addr)
}
