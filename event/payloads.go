// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package event

import (
	blst "github.com/supranational/blst/bindings/go"

	"github.com/sectioncore/overlay/id"
	"github.com/sectioncore/overlay/proof"
)

// EldersInfo is a snapshot of a section: its elders, its prefix, and a
// monotonic version number.
type EldersInfo struct {
	Prefix  id.Prefix
	Version uint64
	Elders  []id.PublicId // deduplicated, in the order supplied (not sorted)
}

// Contains reports whether pid is one of this snapshot's elders.
func (e EldersInfo) Contains(pid id.PublicId) bool {
	for _, el := range e.Elders {
		if el.Equal(pid) {
			return true
		}
	}
	return false
}

// Quorum is the minimum number of elder proofs required for ordinary
// (non-unanimous) agreements over this section.
func (e EldersInfo) Quorum() int {
	// simple majority of the elder set, per spec.md §4.2.
	return len(e.Elders)/2 + 1
}

// SectionKeyInfo is a remote section's public key, stored locally so
// inbound messages signed by that section can be verified.
type SectionKeyInfo struct {
	Prefix    id.Prefix
	Version   uint64
	PublicKey blst.P1Affine
}

// RelocateDetails describes a member being moved to another section.
type RelocateDetails struct {
	Pid               id.PublicId
	DestinationPrefix id.Prefix
	Age               uint8
}

// SignedRelocateDetails is RelocateDetails endorsed by the source
// section, carried by the relocating node through bootstrap so the
// destination section can verify it came from a legitimate source.
type SignedRelocateDetails struct {
	Content   RelocateDetails
	SourceSig proof.Signature
}

// Destination returns the section prefix the relocating node should
// bootstrap towards.
func (s SignedRelocateDetails) Destination() id.Prefix {
	return s.Content.DestinationPrefix
}

// RelocatePayload binds a freshly generated identity to the original
// one being relocated, via a signature the destination section can
// verify against the source section's known public key.
type RelocatePayload struct {
	Details     SignedRelocateDetails
	NewPublicId id.PublicId
	// Sig is the relocating identity's signature over Details and
	// NewPublicId. Because it is made with the key the source section
	// already vouches for, the destination section can verify it
	// against that section's known public key — a signature by the
	// new key itself would prove nothing about continuity.
	Sig proof.Signature
}
