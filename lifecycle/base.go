// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package lifecycle implements the node lifecycle state machine
// (spec.md §4.3, §4.4): the five-state tagged union a node walks
// through from Bootstrapping to an in-section Adult/Elder, including
// relocation to another section. Not thread-safe — owned exclusively
// by the single driver loop that also owns the accumulator, peer map,
// and timers (spec.md §5), the same discipline bft.BFTEngine documents
// for its own single-writer state.
package lifecycle

import (
	"time"

	"github.com/sectioncore/overlay/id"
	"github.com/sectioncore/overlay/link"
)

// Base is the narrowest capability set every lifecycle state needs:
// identity, peer-map, and timer access, plus message dispatch and
// (where applicable) the current section's membership. Spec.md §9
// names this the state-polymorphism boundary: rather than one shared
// mutable struct, each concrete state holds its own fields and
// exposes only this interface to shared driver-loop code.
type Base interface {
	ID() id.PublicId
	PeerMap() *PeerMap
	Timer() *Timer
	Link() link.Layer
	// SectionMembers returns the current section's elder set, or nil
	// for states that do not yet belong to one (Bootstrapping,
	// Joining, Terminated).
	SectionMembers() []id.PublicId
}

// shared holds the resources every state needs but none owns
// exclusively: passing the same pointer forward on every transition
// while discarding the old state value gives the "ownership transfer,
// not sharing" property spec.md §4.4 describes, since nothing keeps
// the old state reachable to mutate it afterwards.
type shared struct {
	self        id.PublicId
	peerMap     *PeerMap
	timer       *Timer
	link        link.Layer
	joinTimeout time.Duration
}

// NewShared constructs the resource bundle every lifecycle state is
// built from: the node's own identity and its Link Layer connection,
// plus a fresh PeerMap and Timer. The returned value is opaque outside
// this package (its fields are unexported) — pass it straight into
// NewBootstrapping or NewRelocating to obtain the first concrete
// State.
func NewShared(self id.PublicId, ln link.Layer) *shared {
	return &shared{self: self, peerMap: NewPeerMap(), timer: NewTimer(), link: ln, joinTimeout: JoinTimeout}
}

// SetJoinTimeout overrides the default JoinTimeout for every Joining
// state built from this bundle. A non-positive d is ignored.
func (s *shared) SetJoinTimeout(d time.Duration) {
	if d > 0 {
		s.joinTimeout = d
	}
}

func (s *shared) ID() id.PublicId   { return s.self }
func (s *shared) PeerMap() *PeerMap { return s.peerMap }
func (s *shared) Timer() *Timer     { return s.timer }
func (s *shared) Link() link.Layer  { return s.link }

// Kind tags which of the five lifecycle states a State value holds.
type Kind uint8

const (
	KindBootstrapping Kind = iota
	KindJoining
	KindAdult
	KindElder
	KindTerminated
)

func (k Kind) String() string {
	switch k {
	case KindBootstrapping:
		return "Bootstrapping"
	case KindJoining:
		return "Joining"
	case KindAdult:
		return "Adult"
	case KindElder:
		return "Elder"
	case KindTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// State is the closed, five-member variant set (spec.md §3, §4.4).
// Sealed the same way event.AccumulatingEvent and link.Event are.
// Every concrete state also handles link events and timer expiries,
// returning the next state to install (or Result{} to stay) plus any
// ExternalEvents to publish.
type State interface {
	Base
	Kind() Kind
	sealed()
	HandleLinkEvent(link.Event) Result
	HandleTimeout(Token) Result
}
