// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lifecycle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sectioncore/overlay/event"
	"github.com/sectioncore/overlay/id"
	"github.com/sectioncore/overlay/lifecycle"
	"github.com/sectioncore/overlay/linktest"
)

// TestApplyAccumulatedStoresTheirKeyInfo is spec.md §3: TheirKeyInfo
// records a remote section's public key in our trust table, read back
// later to verify that section's signatures (spec.md §4.2).
func TestApplyAccumulatedStoresTheirKeyInfo(t *testing.T) {
	net := linktest.New()
	self := net.NewPeer("self", nil)
	selfID := id.NewTestPublicId(1)
	sh := lifecycle.NewShared(selfID, self)
	info := event.EldersInfo{Elders: []id.PublicId{selfID}, Version: 1}
	adult := lifecycle.NewAdult(sh, info, lifecycle.NewRoutingMessageFilter(), nil)

	prefix := id.NewPrefix(id.Name{0xf0}, 4)
	_, known := adult.TrustedKey(prefix)
	assert.False(t, known, "no key trusted yet for a prefix we have not heard about")

	keyInfo := event.SectionKeyInfo{Prefix: prefix, Version: 7}
	ext := adult.ApplyAccumulated(event.TheirKeyInfo{Info: keyInfo})
	assert.Empty(t, ext, "storing a trusted key does not itself produce an external event")

	got, known := adult.TrustedKey(prefix)
	assert.True(t, known, "the key must be retrievable after TheirKeyInfo is applied")
	assert.Equal(t, keyInfo, got)
}

// TestApplyAccumulatedDropsStaleSectionInfo is spec.md §7: a section
// snapshot that would move the version backwards is logged and
// ignored rather than applied.
func TestApplyAccumulatedDropsStaleSectionInfo(t *testing.T) {
	net := linktest.New()
	self := net.NewPeer("self", nil)
	selfID := id.NewTestPublicId(1)
	sh := lifecycle.NewShared(selfID, self)
	info := event.EldersInfo{Elders: []id.PublicId{selfID}, Version: 5}
	adult := lifecycle.NewAdult(sh, info, lifecycle.NewRoutingMessageFilter(), nil)

	stale := event.EldersInfo{Elders: []id.PublicId{id.NewTestPublicId(2)}, Version: 3}
	ext := adult.ApplyAccumulated(event.SectionInfo{Info: stale})
	assert.Empty(t, ext)
	assert.Equal(t, 1, len(adult.SectionMembers()), "stale snapshot must not replace the elder set")
	assert.True(t, adult.SectionMembers()[0].Equal(selfID))
}

// TestApplyAccumulatedRemoveUnknownElderIsNoOp is spec.md §7's
// NoSuchPeer case: removal of a member we do not know is ignored and
// produces no NodeLost event.
func TestApplyAccumulatedRemoveUnknownElderIsNoOp(t *testing.T) {
	net := linktest.New()
	self := net.NewPeer("self", nil)
	selfID := id.NewTestPublicId(1)
	sh := lifecycle.NewShared(selfID, self)
	info := event.EldersInfo{Elders: []id.PublicId{selfID}, Version: 1}
	adult := lifecycle.NewAdult(sh, info, lifecycle.NewRoutingMessageFilter(), nil)

	ext := adult.ApplyAccumulated(event.RemoveElder{Id: id.NewTestPublicId(9)})
	assert.Empty(t, ext, "removing an unknown member must not report NodeLost")
	assert.Equal(t, 1, len(adult.SectionMembers()))
}
