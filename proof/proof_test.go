// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package proof_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sectioncore/overlay/id"
	"github.com/sectioncore/overlay/proof"
)

func TestProofSetAddRejectsDuplicateSigner(t *testing.T) {
	alice := id.NewTestPublicId(1)
	ps := proof.NewProofSet()
	assert.True(t, ps.Add(proof.Proof{Signer: alice, Sig: proof.Signature{1}}))
	assert.False(t, ps.Add(proof.Proof{Signer: alice, Sig: proof.Signature{2}}),
		"second contribution from the same signer must be rejected")
	assert.Equal(t, 1, ps.Len())
}

func TestProofSetSignersSortedAndDeduped(t *testing.T) {
	a := id.NewTestPublicId(3)
	b := id.NewTestPublicId(1)
	c := id.NewTestPublicId(2)
	ps := proof.NewProofSet()
	ps.Add(proof.Proof{Signer: a})
	ps.Add(proof.Proof{Signer: b})
	ps.Add(proof.Proof{Signer: c})

	signers := ps.Signers()
	assert.Len(t, signers, 3)
	for i := 1; i < len(signers); i++ {
		assert.True(t, signers[i-1].Less(signers[i]))
	}
}

func TestProofSetCloneIsIndependent(t *testing.T) {
	alice := id.NewTestPublicId(1)
	ps := proof.NewProofSet()
	ps.Add(proof.Proof{Signer: alice})

	clone := ps.Clone()
	bob := id.NewTestPublicId(2)
	clone.Add(proof.Proof{Signer: bob})

	assert.Equal(t, 1, ps.Len())
	assert.Equal(t, 2, clone.Len())
}

func TestAccumulatingProofAddProofReplacementDetection(t *testing.T) {
	alice := id.NewTestPublicId(1)
	ap := proof.NewAccumulatingProof()

	assert.True(t, ap.AddProof(proof.Proof{Signer: alice}, nil))
	assert.False(t, ap.AddProof(proof.Proof{Signer: alice}, nil),
		"same signer contributing twice is a replacement")
}

func TestAccumulatingProofSigShareInvariant(t *testing.T) {
	alice := id.NewTestPublicId(1)
	ap := proof.NewAccumulatingProof()
	share := proof.SectionInfoSigPayload{}

	ap.AddProof(proof.Proof{Signer: alice}, &share)
	assert.True(t, ap.ContainsSigner(alice))
	_, ok := ap.SigShareFor(alice)
	assert.True(t, ok, "a signer contributing a share must also appear in ParsecProofs")
}

func TestAccumulatingProofHasQuorum(t *testing.T) {
	ap := proof.NewAccumulatingProof()
	ap.AddProof(proof.Proof{Signer: id.NewTestPublicId(1)}, nil)
	ap.AddProof(proof.Proof{Signer: id.NewTestPublicId(2)}, nil)

	assert.True(t, ap.HasQuorum(2))
	assert.False(t, ap.HasQuorum(3))
}
