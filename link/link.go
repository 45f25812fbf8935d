// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package link defines the Link Layer collaborator (spec.md §6): the
// datagram-oriented peer-to-peer transport the lifecycle state
// machine drives through a small event channel. Besides that boundary
// the package holds a WebSocket-backed Layer (transport.go) and its
// leveldb contact cache (contactcache.go); the lifecycle core depends
// only on the Layer interface.
package link

import "fmt"

// ConnInfo identifies a reachable peer endpoint. The core treats it as
// an opaque comparable value; a real Link Layer would embed a network
// address, public key hint, or both.
type ConnInfo struct {
	Addr string
}

func (c ConnInfo) String() string { return c.Addr }

// Event is the closed set of notifications the Link Layer delivers to
// the driver loop (spec.md §6). Sealed the same way event.AccumulatingEvent
// is: an unexported marker method restricts implementations to this
// package.
type Event interface {
	linkEvent()
}

// BootstrappedTo reports a freshly established bootstrap connection.
type BootstrappedTo struct{ Peer ConnInfo }

func (BootstrappedTo) linkEvent() {}

// BootstrapFailure reports that no bootstrap target could be reached.
type BootstrapFailure struct{}

func (BootstrapFailure) linkEvent() {}

// ConnectedTo reports a connection established via ConnectTo.
type ConnectedTo struct{ Peer ConnInfo }

func (ConnectedTo) linkEvent() {}

// ConnectionFailure reports a peer becoming unreachable, either during
// connection or after.
type ConnectionFailure struct {
	Peer ConnInfo
	Err  error
}

func (ConnectionFailure) linkEvent() {}

// NewMessage delivers bytes received from peer.
type NewMessage struct {
	Peer  ConnInfo
	Bytes []byte
}

func (NewMessage) linkEvent() {}

// SentUserMessage confirms a prior Send(peer, bytes, token) went out.
type SentUserMessage struct {
	Peer  ConnInfo
	Bytes []byte
	Token uint64
}

func (SentUserMessage) linkEvent() {}

// UnsentUserMessage reports that a prior Send(peer, bytes, token) could
// not be delivered.
type UnsentUserMessage struct {
	Peer  ConnInfo
	Bytes []byte
	Token uint64
}

func (UnsentUserMessage) linkEvent() {}

// Finish signals the Link Layer has shut down; no further events
// follow.
type Finish struct{}

func (Finish) linkEvent() {}

// Layer is the outbound half of the Link Layer boundary (spec.md §6).
// None of these block; every effect is observed later as an Event.
type Layer interface {
	Bootstrap()
	ConnectTo(peer ConnInfo)
	DisconnectFrom(peer ConnInfo)
	Send(peer ConnInfo, payload []byte, token uint64)
	Events() <-chan Event
}

// ErrNotConnected is returned by implementations that can detect a
// synchronous send-to-unknown-peer condition; spec.md treats Send as
// fire-and-forget, so this is only ever surfaced as an
// UnsentUserMessage event, never returned directly.
type ErrNotConnected struct{ Peer ConnInfo }

func (e ErrNotConnected) Error() string {
	return fmt.Sprintf("link: not connected to %s", e.Peer)
}
