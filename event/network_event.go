// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package event

import (
	"github.com/sectioncore/overlay/id"
	"github.com/sectioncore/overlay/proof"
)

// NetworkEvent pairs an AccumulatingEvent with the optional BLS
// signature share required to update cross-section trust (chiefly
// SectionInfo and the Ack/SendAck trust-propagation events).
type NetworkEvent struct {
	Payload   AccumulatingEvent
	Signature *proof.SectionInfoSigPayload
}

// NeedsSignature reports whether Payload's kind is one that must
// carry a section-key signature share when voted (spec.md §4.2).
func NeedsSignature(k Kind) bool {
	switch k {
	case KindSectionInfo, KindAckMessage, KindSendAckMessage:
		return true
	default:
		return false
	}
}

// ObservationKind distinguishes the Agreement Engine's native
// participant-add/remove observations from everything else, which it
// treats as opaque.
type ObservationKind uint8

const (
	ObservationAddPeer ObservationKind = iota
	ObservationRemovePeer
	ObservationOpaque
)

// Observation is the value submitted to, or received from, the
// Agreement Engine as a vote. The engine natively models add/remove
// of participants; every other AccumulatingEvent is opaque to it and
// is only interpreted after consensus (spec.md §4.2).
type Observation struct {
	Kind    ObservationKind
	PeerID  id.PublicId  // set for AddPeer/RemovePeer
	Payload NetworkEvent // set for Opaque; also valid (Payload only) for AddPeer/RemovePeer
}

// IntoObservation converts a NetworkEvent into the Agreement Engine's
// native observation type, per the conversion rules of spec.md §4.2.
func (ne NetworkEvent) IntoObservation() Observation {
	switch p := ne.Payload.(type) {
	case AddElder:
		return Observation{Kind: ObservationAddPeer, PeerID: p.Id, Payload: ne}
	case RemoveElder:
		return Observation{Kind: ObservationRemovePeer, PeerID: p.Id, Payload: ne}
	default:
		return Observation{Kind: ObservationOpaque, Payload: ne}
	}
}

// FromObservation decodes a consensused Observation produced by the
// Agreement Engine back into its (AccumulatingEvent, signature) pair,
// the inverse of IntoObservation.
func FromObservation(o Observation) (AccumulatingEvent, *proof.SectionInfoSigPayload) {
	switch o.Kind {
	case ObservationAddPeer:
		return AddElder{Id: o.PeerID}, nil
	case ObservationRemovePeer:
		return RemoveElder{Id: o.PeerID}, nil
	default:
		return o.Payload.Payload, o.Payload.Signature
	}
}
