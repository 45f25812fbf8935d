// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lifecycle

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sectioncore/overlay/event"
	"github.com/sectioncore/overlay/id"
	"github.com/sectioncore/overlay/link"
	"github.com/sectioncore/overlay/linktest"
	"github.com/sectioncore/overlay/proof"
)

// White-box: drives joinSection and inspects Joining's private
// relocatePayload field directly, mirroring the other tests in this
// package (package lifecycle, not lifecycle_test).

// TestJoinSectionSignsRelocationPayload is spec.md §4.3 "Relocation":
// on accepting into a new section, the relocation payload must be
// signed by the identity being relocated — the key the source section
// already vouches for — over the details plus the freshly generated
// identity (event.RelocatePayload.Sig's own doc comment). Exercises
// the real joinSection path end to end, not just that Sig is non-zero
// but that it actually recovers to the old identity's public key, not
// the new one's.
func TestJoinSectionSignsRelocationPayload(t *testing.T) {
	net := linktest.New()
	self := net.NewPeer("self", nil)
	net.NewPeer("contact", nil)

	gen := id.NewKeyGenerator()
	oldID, oldSigner := id.NewTestIdentity(1)
	sh := NewShared(oldID, self)

	// Flip oldID's top bit so the destination prefix never matches the
	// relocating identity, guaranteeing joinSection actually generates
	// (and signs with) a fresh one rather than keeping oldID.
	destBits := oldID.Name()
	destBits[0] ^= 0x80
	destPrefix := id.NewPrefix(destBits, 1)
	details := event.SignedRelocateDetails{
		Content: event.RelocateDetails{Pid: oldID, DestinationPrefix: destPrefix, Age: 4},
	}
	conn := link.ConnInfo{Addr: "contact"}
	b := NewRelocating(sh, []link.ConnInfo{conn}, details, oldSigner, gen)

	msg, err := EncodeMessage(NewBootstrapResponseJoin(destPrefix, []link.ConnInfo{conn}))
	require.NoError(t, err)

	res := b.HandleLinkEvent(link.NewMessage{Peer: conn, Bytes: msg})
	require.NotNil(t, res.Next, "accepting into the destination section must transition out of Bootstrapping")
	joining, ok := res.Next.(*Joining)
	require.True(t, ok, "relocation must land in Joining, not anywhere else")

	require.NotNil(t, joining.relocatePayload)
	assert.False(t, joining.self.Equal(oldID), "relocation must mint a fresh identity matching the destination prefix")
	assert.NotEqual(t, proof.Signature{}, joining.relocatePayload.Sig, "relocation payload must carry a real signature")

	enc, err := EncodeRelocateDetailsForSigning(details, joining.self)
	require.NoError(t, err)
	pub, err := crypto.SigToPub(crypto.Keccak256(enc), joining.relocatePayload.Sig[:])
	require.NoError(t, err)
	assert.True(t, id.NewPublicId(*pub).Equal(oldID), "signature must recover to the relocating identity's public key")
	assert.False(t, id.NewPublicId(*pub).Equal(joining.self), "a self-signature by the new identity would prove nothing")
}
