// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package agreement

import (
	"github.com/sectioncore/overlay/event"
	"github.com/sectioncore/overlay/id"
)

// Mock is a deterministic, in-process Engine double for tests: every
// vote becomes consensused immediately, in submission order, with no
// Byzantine behavior simulated. Not thread-safe, matching every other
// component owned by the single driver loop.
//
// Vote always attaches self as the signer, since that method models
// this node casting its own vote. VoteAs additionally lets a test
// harness simulate the votes of other elders arriving through the
// same local engine instance, the way a real Agreement Engine would
// surface them once its own gossip/consensus gathered them — this is
// what lets a quorum of distinct signers (spec.md §4.1) actually be
// driven through Consensused rather than only through direct
// accumulator injection.
type Mock struct {
	self id.PublicId
	out  []Agreement
}

// NewMock returns an empty Mock engine that votes as self.
func NewMock(self id.PublicId) *Mock {
	return &Mock{self: self}
}

// Vote immediately queues o as consensused with self as its sole
// signer, unconditionally agreeing.
func (m *Mock) Vote(o event.Observation) {
	m.VoteAs(m.self, o)
}

// VoteAs immediately queues o as consensused with signer as its sole
// signer. Exposed beyond the Engine interface for tests that need to
// simulate another elder's vote reaching consensus.
func (m *Mock) VoteAs(signer id.PublicId, o event.Observation) {
	m.out = append(m.out, Agreement{Observation: o, Signers: []id.PublicId{signer}})
}

// Consensused drains and returns every vote submitted so far, in
// submission order.
func (m *Mock) Consensused() []Agreement {
	out := m.out
	m.out = nil
	return out
}

// Poke is a no-op: the mock consensuses every vote instantly, leaving
// no gossip round to nudge.
func (m *Mock) Poke() {}
