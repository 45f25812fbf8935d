// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lifecycle

import (
	"time"

	"github.com/ethereum/go-ethereum/common/mclock"
	"github.com/inconshreveable/log15"
	"github.com/pborman/uuid"

	"github.com/sectioncore/overlay/event"
	"github.com/sectioncore/overlay/id"
	"github.com/sectioncore/overlay/link"
	"github.com/sectioncore/overlay/proof"
	"github.com/sectioncore/overlay/telemetry"
)

var log = log15.New("pkg", "lifecycle")

var metricBootstrapTimerRestartCount = telemetry.LazyLoad(func() telemetry.CountMeter {
	return telemetry.Counter("bootstrap_timer_restart_count")()
})

// BootstrapTimeout is how long Bootstrapping waits for a bootstrap
// target to accept before giving up and retrying (spec.md §4.3).
const BootstrapTimeout = 20 * time.Second

// IdentityGenerator produces a fresh identity whose Name lies within
// a given section prefix, plus a Signer bound to the private key
// behind it. The core treats key generation as an external
// collaborator (spec.md §1: cryptographic primitives are consumed
// abstractly), so relocation and prefix-mismatch handling call back
// into this rather than generating keys themselves. The Signer keeps
// signing capability paired with every minted identity, so whoever
// holds the current identity can still sign for it after a later
// regeneration replaces it — relocation needs exactly that (spec.md
// §4.3: the payload is signed by the identity being relocated, not
// the fresh one).
type IdentityGenerator interface {
	GenerateMatching(prefix id.Prefix) (id.PublicId, id.Signer)
}

// Bootstrapping is the initial lifecycle state (spec.md §4.3.1): no
// section membership yet, a set of candidate connection targets, and
// at most one actively probed bootstrap peer.
type Bootstrapping struct {
	*shared

	hardCoded       []link.ConnInfo
	nodesToAwait    map[link.ConnInfo]struct{}
	bootstrapPeer   *link.ConnInfo
	bootstrapToken  Token
	relocateDetails *event.SignedRelocateDetails
	// relocateSigner signs for the identity being relocated (the one
	// named in relocateDetails), captured before joinSection replaces
	// it, so RelocatePayload.Sig verifies against the key the sending
	// section already knows.
	relocateSigner id.Signer
	identities     IdentityGenerator
}

var _ State = (*Bootstrapping)(nil)

func (*Bootstrapping) Kind() Kind                    { return KindBootstrapping }
func (*Bootstrapping) sealed()                       {}
func (*Bootstrapping) SectionMembers() []id.PublicId { return nil }

// NewBootstrapping constructs the initial state for a node joining for
// the first time (or rejoining with a fresh identity) and kicks off
// the Link Layer's own bootstrap immediately.
func NewBootstrapping(sh *shared, hardCoded []link.ConnInfo, gen IdentityGenerator) *Bootstrapping {
	b := &Bootstrapping{
		shared:       sh,
		hardCoded:    hardCoded,
		nodesToAwait: make(map[link.ConnInfo]struct{}),
		identities:   gen,
	}
	sh.link.Bootstrap()
	return b
}

// NewRelocating constructs Bootstrapping for a node that already knows
// its destination section (spec.md §4.3 "Relocation"): it connects to
// every supplied contact directly rather than waiting on the Link
// Layer's own bootstrap. signer must sign for the identity currently
// held (the one details names as being relocated); it is what later
// binds the regenerated identity to this one.
func NewRelocating(sh *shared, conns []link.ConnInfo, details event.SignedRelocateDetails, signer id.Signer, gen IdentityGenerator) *Bootstrapping {
	b := &Bootstrapping{
		shared:          sh,
		nodesToAwait:    make(map[link.ConnInfo]struct{}),
		relocateDetails: &details,
		relocateSigner:  signer,
		identities:      gen,
	}
	for _, c := range conns {
		b.nodesToAwait[c] = struct{}{}
	}
	for _, c := range conns {
		b.link.ConnectTo(c)
	}
	return b
}

func (b *Bootstrapping) destination() id.Name {
	if b.relocateDetails != nil {
		return b.relocateDetails.Content.DestinationPrefix.Bits()
	}
	return b.self.Name()
}

func (b *Bootstrapping) sendBootstrapRequest(dst link.ConnInfo) {
	delete(b.nodesToAwait, dst)

	if b.bootstrapPeer != nil {
		if *b.bootstrapPeer != dst {
			b.link.DisconnectFrom(dst)
		}
		return
	}

	b.bootstrapToken = b.timer.Schedule(mclock.Now(), BootstrapTimeout)
	b.bootstrapPeer = &dst
	correlationID := uuid.NewRandom().String()
	msg, err := EncodeMessage(BootstrapRequest{Destination: b.destination(), CorrelationID: correlationID})
	if err != nil {
		log.Warn("failed to encode bootstrap request", "err", err)
		return
	}
	log.Debug("sending bootstrap request", "to", dst, "correlationID", correlationID)
	b.link.Send(dst, msg, uint64(b.bootstrapToken))
	b.peerMap.Connect(dst)
}

func (b *Bootstrapping) disconnectFromProxy() {
	if b.bootstrapPeer == nil {
		return
	}
	peer := *b.bootstrapPeer
	b.bootstrapPeer = nil
	b.link.DisconnectFrom(peer)
}

func (b *Bootstrapping) rebootstrap() {
	if len(b.nodesToAwait) != 0 {
		return
	}
	b.disconnectFromProxy()
	b.link.Bootstrap()
}

// Result is the outcome of feeding one event into a state: the next
// state to install (nil means "stay"), and any external events to
// publish.
type Result struct {
	Next     State
	External []ExternalEvent
}

func stay() Result { return Result{} }

// HandleLinkEvent processes one link.Event from the Link Layer.
func (b *Bootstrapping) HandleLinkEvent(ev link.Event) Result {
	switch e := ev.(type) {
	case link.BootstrappedTo:
		b.peerMap.Connect(e.Peer)
		if b.bootstrapPeer != nil {
			log.Warn("received more than one BootstrappedTo event")
			return stay()
		}
		b.sendBootstrapRequest(e.Peer)
		return Result{External: []ExternalEvent{Connected{}}}

	case link.ConnectedTo:
		adopted := b.bootstrapPeer == nil
		b.sendBootstrapRequest(e.Peer)
		if adopted && b.bootstrapPeer != nil {
			return Result{External: []ExternalEvent{Connected{}}}
		}
		return stay()

	case link.BootstrapFailure:
		log.Info("failed to bootstrap, terminating")
		return Result{Next: NewTerminated(b.shared), External: []ExternalEvent{Terminated{}}}

	case link.ConnectionFailure:
		delete(b.nodesToAwait, e.Peer)
		b.peerMap.Disconnect(e.Peer)
		if b.bootstrapPeer != nil && *b.bootstrapPeer == e.Peer {
			log.Info("lost connection to bootstrap proxy", "peer", e.Peer)
			b.disconnectFromProxy()
			b.rebootstrap()
		}
		return stay()

	case link.NewMessage:
		return b.handleMessage(e)

	default:
		return stay()
	}
}

func (b *Bootstrapping) handleMessage(e link.NewMessage) Result {
	msg, err := DecodeMessage(e.Bytes)
	if err != nil {
		log.Warn("dropping undecodable message", "peer", e.Peer, "err", err)
		return stay()
	}
	switch m := msg.(type) {
	case BootstrapResponseJoin:
		return b.joinSection(m.Prefix(), m.Contacts)
	case BootstrapResponseRebootstrap:
		b.reconnectToNewSection(m.Contacts)
		return stay()
	default:
		return stay()
	}
}

func (b *Bootstrapping) joinSection(prefix id.Prefix, conns []link.ConnInfo) Result {
	if !prefix.Matches(b.self.Name()) && b.identities != nil {
		log.Debug("regenerating identity to fit target section", "prefix", prefix, "err", ErrOwnNameDisallowed)
		newID, _ := b.identities.GenerateMatching(prefix)
		b.self = newID
	}

	var relocatePayload *event.RelocatePayload
	if b.relocateDetails != nil {
		relocatePayload = &event.RelocatePayload{
			Details:     *b.relocateDetails,
			NewPublicId: b.self,
		}
		if b.relocateSigner != nil {
			relocatePayload.Sig = b.signRelocation(b.relocateSigner, *b.relocateDetails)
		} else {
			log.Warn("relocating without the old identity's signer; relocation payload left unsigned")
		}
	}

	return Result{Next: NewJoining(b.shared, conns, relocatePayload, b.identities)}
}

// signRelocation has the identity being relocated sign over the
// relocation details plus the freshly generated identity, so the
// destination section can verify continuity against the key the
// source section already vouches for (spec.md §4.3,
// event.RelocatePayload.Sig). A signing failure leaves Sig at its
// zero value rather than aborting the join: the destination section's
// own verification against its trust table (spec.md §4.2) is what
// actually rejects a bad relocation, so this only logs.
func (b *Bootstrapping) signRelocation(signer id.Signer, details event.SignedRelocateDetails) proof.Signature {
	enc, err := EncodeRelocateDetailsForSigning(details, b.self)
	if err != nil {
		log.Warn("failed to encode relocation payload for signing", "err", err)
		return proof.Signature{}
	}
	sig, err := signer.Sign(enc)
	if err != nil {
		log.Warn("failed to sign relocation payload", "err", err)
		return proof.Signature{}
	}
	return proof.Signature(sig)
}

func (b *Bootstrapping) reconnectToNewSection(conns []link.ConnInfo) {
	b.disconnectFromProxy()
	b.nodesToAwait = make(map[link.ConnInfo]struct{})
	for _, c := range conns {
		b.nodesToAwait[c] = struct{}{}
	}
	for _, c := range conns {
		b.link.ConnectTo(c)
	}
}

// HandleTimeout processes one expired timer token.
func (b *Bootstrapping) HandleTimeout(tok Token) Result {
	if b.bootstrapPeer != nil && b.bootstrapToken == tok {
		log.Debug("timed out waiting to bootstrap", "peer", *b.bootstrapPeer)
		metricBootstrapTimerRestartCount().Add(1)
		b.disconnectFromProxy()
		b.rebootstrap()
	}
	return stay()
}
