// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lifecycle

import (
	"time"

	"github.com/sectioncore/overlay/event"
	"github.com/sectioncore/overlay/id"
	"github.com/sectioncore/overlay/link"
)

// GossipPokeInterval paces the Agreement Engine's gossip while
// in-section: the driver loop pokes the engine this often so a round
// with no fresh votes of our own still exchanges state with peers.
const GossipPokeInterval = 2 * time.Second

// Adult is the in-section state (spec.md §4.3.3): membership, elder
// status, and signatures are all driven by AccumulatingEvents polled
// from the accumulator rather than by direct message handling of its
// own, plus link-layer connectivity notifications. Adult and Elder
// share this one type, distinguished only by whether our own id is
// currently a member of info.Elders — promotion and demotion are just
// ApplyAccumulated reacting to AddElder/RemoveElder events naming us.
type Adult struct {
	*shared

	info        event.EldersInfo
	filter      *RoutingMessageFilter
	msgBacklog  [][]byte
	opaqueQueue [][]byte
	isElder     bool

	// trustedKeys is our trust table (spec.md §3): the remote sections'
	// public keys we have accepted via TheirKeyInfo, keyed by the
	// section prefix each key belongs to. §4.2's cross-section
	// signature verification reads from this table; TheirKeyInfo is
	// how it is populated.
	trustedKeys map[id.Prefix]event.SectionKeyInfo
}

var _ State = (*Adult)(nil)

// NewAdult constructs the state a Joining node enters on NodeApproval,
// carrying forward its routing message filter and any backlogged
// messages accumulated while joining.
func NewAdult(sh *shared, info event.EldersInfo, filter *RoutingMessageFilter, backlog [][]byte) *Adult {
	a := &Adult{
		shared:      sh,
		info:        info,
		filter:      filter,
		msgBacklog:  backlog,
		trustedKeys: make(map[id.Prefix]event.SectionKeyInfo),
	}
	a.isElder = info.Contains(sh.self)
	a.replayBacklog()
	return a
}

// TrustedKey looks up a remote section's public key by the prefix it
// was accepted for, reporting whether TheirKeyInfo has been applied
// for that prefix yet.
func (a *Adult) TrustedKey(prefix id.Prefix) (event.SectionKeyInfo, bool) {
	info, ok := a.trustedKeys[prefix]
	return info, ok
}

func (a *Adult) Kind() Kind {
	if a.isElder {
		return KindElder
	}
	return KindAdult
}

func (*Adult) sealed() {}

func (a *Adult) SectionMembers() []id.PublicId { return a.info.Elders }

func (a *Adult) replayBacklog() {
	backlog := a.msgBacklog
	a.msgBacklog = nil
	// Joining already recorded these in the shared filter, so they are
	// queued directly instead of being filtered a second time.
	a.opaqueQueue = append(a.opaqueQueue, backlog...)
}

// HandleLinkEvent processes one link.Event from the Link Layer.
func (a *Adult) HandleLinkEvent(ev link.Event) Result {
	switch e := ev.(type) {
	case link.NewMessage:
		a.handleRoutingMessage(e.Bytes)
		return stay()

	case link.ConnectionFailure:
		a.peerMap.Disconnect(e.Peer)
		return stay()

	case link.ConnectedTo:
		a.peerMap.Connect(e.Peer)
		return stay()

	case link.UnsentUserMessage:
		log.Debug("message could not be delivered", "peer", e.Peer, "err", ErrCannotRoute)
		return stay()

	default:
		return stay()
	}
}

// handleRoutingMessage deduplicates an incoming routing message and,
// once deduplicated, queues it as an opaque vote candidate: decoding
// it into a concrete AccumulatingEvent is the Link Layer's concrete
// transport's job (spec.md §1, §4.3 point 3), so here it is carried
// forward wrapped in event.User and left for the driver loop to vote
// into the Agreement Engine (see Machine.driveAdult).
func (a *Adult) handleRoutingMessage(b []byte) {
	hash := routingMsgHash(b)
	if !a.filter.FilterIncoming(hash) {
		return
	}
	log.Debug("received routing message", "bytes", len(b))
	a.opaqueQueue = append(a.opaqueQueue, b)
}

// DrainOpaqueMessages returns and clears the opaque routing messages
// accepted since the last drain, for the driver loop to vote into the
// Agreement Engine as event.User payloads.
func (a *Adult) DrainOpaqueMessages() [][]byte {
	msgs := a.opaqueQueue
	a.opaqueQueue = nil
	return msgs
}

// ApplyAccumulated folds one polled AccumulatingEvent into section
// state, returning external events the application should observe.
func (a *Adult) ApplyAccumulated(ev event.AccumulatingEvent) []ExternalEvent {
	switch e := ev.(type) {
	case event.AddElder:
		if a.info.Contains(e.Id) {
			log.Debug("ignoring agreed elder addition", "id", e.Id, "err", ErrAlreadyExists)
		} else {
			a.info.Elders = append(a.info.Elders, e.Id)
			a.info.Version++
		}
		if e.Id.Equal(a.self) {
			a.isElder = true
		}
		return nil

	case event.RemoveElder:
		if !a.removeElder(e.Id) {
			log.Debug("ignoring agreed elder removal", "id", e.Id, "err", ErrNoSuchPeer)
			return nil
		}
		if e.Id.Equal(a.self) {
			a.isElder = false
		}
		return []ExternalEvent{NodeLost{Name: e.Id.Name()}}

	case event.SectionInfo:
		if e.Info.Version < a.info.Version {
			log.Warn("dropping stale section info",
				"version", e.Info.Version, "current", a.info.Version, "err", ErrInvariantViolation)
			return nil
		}
		a.info = e.Info
		a.isElder = e.Info.Contains(a.self)
		return nil

	case event.Offline:
		return []ExternalEvent{NodeLost{Name: e.Id.Name()}}

	case event.TheirKeyInfo:
		a.trustedKeys[e.Info.Prefix] = e.Info
		return nil

	default:
		return nil
	}
}

func (a *Adult) removeElder(victim id.PublicId) bool {
	if !a.info.Contains(victim) {
		return false
	}
	elders := a.info.Elders[:0]
	for _, e := range a.info.Elders {
		if !e.Equal(victim) {
			elders = append(elders, e)
		}
	}
	a.info.Elders = elders
	a.info.Version++
	return true
}

// HandleTimeout is a no-op for Adult/Elder: no timer tokens are
// scheduled in this state.
func (a *Adult) HandleTimeout(Token) Result { return stay() }
