// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package agreement models the Byzantine Agreement Engine collaborator
// (spec.md §6): the core submits event.Observations as votes and
// receives consensused Agreements back — each pairing the original
// Observation with the signers the engine itself gathered while
// reaching consensus on it — decoded into (AccumulatingEvent,
// signature) pairs and fed into the accumulator. The engine itself —
// its gossip graph, its Byzantine-fault-tolerance — is out of scope
// (spec.md §1); this package only shapes the two directions of
// traffic across that boundary.
package agreement

import (
	"github.com/sectioncore/overlay/event"
	"github.com/sectioncore/overlay/id"
)

// Agreement is one Observation the engine has finished agreeing on,
// together with every distinct signer whose vote the engine counted
// toward that agreement. The accumulator's quorum bookkeeping
// (spec.md §4.1) is keyed per signer, so the engine — not the core —
// is the source of truth for who actually contributed: it is the
// collaborator that verified and gathered the votes in the first
// place.
type Agreement struct {
	Observation event.Observation
	Signers     []id.PublicId
}

// Engine is the narrow interface the lifecycle driver loop uses to
// talk to the Agreement Engine. Vote submits an Observation derived
// from a NetworkEvent we want to propose, implicitly as this node's
// own vote; Consensused drains Agreements the engine has finished
// agreeing on, in delivery order; Poke nudges the engine's gossip
// round, called at lifecycle.GossipPokeInterval while in-section so
// a quiet engine still exchanges votes with its peers. No method
// blocks (spec.md §5): Vote enqueues, Poke schedules, and Consensused
// is a non-blocking drain — the driver loop calls it once per
// iteration alongside polling the Link Layer.
type Engine interface {
	Vote(o event.Observation)
	Consensused() []Agreement
	Poke()
}
