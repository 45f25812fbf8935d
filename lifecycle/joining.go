// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lifecycle

import (
	"time"

	"github.com/ethereum/go-ethereum/common/mclock"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pborman/uuid"

	"github.com/sectioncore/overlay/event"
	"github.com/sectioncore/overlay/id"
	"github.com/sectioncore/overlay/link"
	"github.com/sectioncore/overlay/telemetry"
)

var metricJoinAttemptCount = telemetry.LazyLoad(func() telemetry.CountMeter {
	return telemetry.Counter("join_attempt_count")()
})

// JoinTimeout is how long Joining waits for NodeApproval before
// retrying the join handshake (spec.md §4.3).
const JoinTimeout = 120 * time.Second

// MaxJoinAttempts bounds how many times Joining retries the handshake
// with the same section before giving up and rebootstrapping entirely.
const MaxJoinAttempts = 3

// Joining is the state between a successful bootstrap and full section
// membership (spec.md §4.3.2): the node has connections into a section
// but has not yet received NodeApproval.
type Joining struct {
	*shared

	routingMsgFilter *RoutingMessageFilter
	msgBacklog       [][]byte
	joinToken        Token
	joinAttempts     int
	connInfos        []link.ConnInfo
	relocatePayload  *event.RelocatePayload
	identities       IdentityGenerator
	correlationID    string
}

var _ State = (*Joining)(nil)

func (*Joining) Kind() Kind                    { return KindJoining }
func (*Joining) sealed()                       {}
func (*Joining) SectionMembers() []id.PublicId { return nil }

// NewJoining constructs Joining and immediately sends a JoinRequest to
// every supplied contact. gen is carried forward only so attempt
// exhaustion (HandleTimeout) can mint a fresh identity before
// rebootstrapping (spec.md §8 invariant 5).
func NewJoining(sh *shared, conns []link.ConnInfo, relocatePayload *event.RelocatePayload, gen IdentityGenerator) *Joining {
	j := &Joining{
		shared:           sh,
		routingMsgFilter: NewRoutingMessageFilter(),
		connInfos:        conns,
		relocatePayload:  relocatePayload,
		identities:       gen,
	}
	j.joinToken = sh.timer.Schedule(mclock.Now(), sh.joinTimeout)
	j.sendJoinRequests()
	return j
}

// sendJoinRequests mints a fresh correlation ID for this attempt so
// the retry and its eventual NodeApproval (or timeout) can be matched
// in logs, then sends the resulting JoinRequest to every contact.
func (j *Joining) sendJoinRequests() {
	j.correlationID = uuid.NewRandom().String()
	msg, err := EncodeMessage(NewJoinRequest(j.correlationID, j.relocatePayload))
	if err != nil {
		log.Warn("failed to encode join request", "err", err)
		return
	}
	for _, dst := range j.connInfos {
		log.Debug("sending join request", "to", dst, "correlationID", j.correlationID)
		j.link.Send(dst, msg, 0)
	}
}

// HandleLinkEvent processes one link.Event from the Link Layer.
func (j *Joining) HandleLinkEvent(ev link.Event) Result {
	switch e := ev.(type) {
	case link.NewMessage:
		return j.handleMessage(e)
	case link.ConnectionFailure:
		j.peerMap.Disconnect(e.Peer)
		return stay()
	case link.UnsentUserMessage:
		log.Debug("join request could not be delivered", "peer", e.Peer, "err", ErrCannotRoute)
		return stay()
	default:
		return stay()
	}
}

func (j *Joining) handleMessage(e link.NewMessage) Result {
	msg, err := DecodeMessage(e.Bytes)
	if approval, ok := msg.(NodeApproval); ok && err == nil {
		return j.handleNodeApproval(approval)
	}
	// Anything that is not a NodeApproval, including bytes that do not
	// decode as a lifecycle Message, is an opaque routing message.
	hash := routingMsgHash(e.Bytes)
	if j.routingMsgFilter.FilterIncoming(hash) {
		j.msgBacklog = append(j.msgBacklog, e.Bytes)
	}
	return stay()
}

func (j *Joining) handleNodeApproval(m NodeApproval) Result {
	info, err := m.Decode()
	if err != nil {
		log.Warn("dropping malformed node approval", "err", err)
		return stay()
	}
	if !info.Prefix.Matches(j.self.Name()) {
		log.Warn("dropping node approval for a section that does not cover us",
			"prefix", info.Prefix, "err", ErrPeerNameUnsuitable)
		return stay()
	}
	log.Info("approved to join section", "prefix", info.Prefix, "correlationID", j.correlationID)
	j.timer.Cancel(j.joinToken)
	return Result{
		Next:     NewAdult(j.shared, info, j.routingMsgFilter, j.msgBacklog),
		External: []ExternalEvent{Approved{}},
	}
}

// HandleTimeout processes one expired timer token.
func (j *Joining) HandleTimeout(tok Token) Result {
	if tok != j.joinToken {
		return stay()
	}
	j.joinAttempts++
	metricJoinAttemptCount().Add(1)
	log.Debug("timed out waiting to join", "attempt", j.joinAttempts, "max", MaxJoinAttempts)
	if j.joinAttempts < MaxJoinAttempts {
		j.joinToken = j.timer.Schedule(mclock.Now(), j.joinTimeout)
		j.sendJoinRequests()
		return stay()
	}
	for _, peer := range j.peerMap.RemoveAll() {
		j.link.DisconnectFrom(peer)
	}
	// Join attempts exhausted: a node never goes back to Bootstrapping
	// with the identity a section just failed to approve (spec.md §8
	// invariant 5), so mint a fresh one before rebootstrapping. The
	// root prefix (length 0) matches every name, i.e. "any identity".
	if j.identities != nil {
		newID, _ := j.identities.GenerateMatching(id.NewPrefix(id.Name{}, 0))
		j.self = newID
	}
	return Result{Next: NewBootstrapping(j.shared, nil, j.identities)}
}

// routingMsgHash identifies a routing message for the dedup filter. A
// content hash rather than the raw bytes keeps the filter's memory
// footprint bounded regardless of message size.
func routingMsgHash(b []byte) [32]byte {
	return [32]byte(crypto.Keccak256Hash(b))
}
