// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package proof holds the per-signer proof types the chain accumulator
// collects: a signer's signature over an implicit payload, the set of
// such signatures gathered for one agreement, and the optional BLS
// threshold-signature share carried alongside section-key events.
package proof

import (
	"github.com/pkg/errors"
	blst "github.com/supranational/blst/bindings/go"

	"github.com/sectioncore/overlay/id"
)

// Signature is an ECDSA signature over an implicit, context-determined
// payload (65-byte recoverable form, matching go-ethereum/crypto.Sign).
type Signature [65]byte

// Proof pairs a signer with a signature.
type Proof struct {
	Signer id.PublicId
	Sig    Signature
}

// ProofSet maps signer to signature with unique keys: the set of
// signatures accumulated for a single agreement.
type ProofSet struct {
	sigs map[id.Name]Signature
	ids  map[id.Name]id.PublicId
}

// NewProofSet returns an empty ProofSet.
func NewProofSet() *ProofSet {
	return &ProofSet{
		sigs: make(map[id.Name]Signature),
		ids:  make(map[id.Name]id.PublicId),
	}
}

// Add inserts proof's signature under its signer. Returns false if the
// signer already had an entry (the newer signature replaces it).
func (ps *ProofSet) Add(p Proof) bool {
	_, existed := ps.sigs[p.Signer.Name()]
	ps.sigs[p.Signer.Name()] = p.Sig
	ps.ids[p.Signer.Name()] = p.Signer
	return !existed
}

// Contains reports whether signer contributed a signature.
func (ps *ProofSet) Contains(signer id.PublicId) bool {
	if ps == nil {
		return false
	}
	_, ok := ps.sigs[signer.Name()]
	return ok
}

// Len returns the number of distinct signers.
func (ps *ProofSet) Len() int {
	if ps == nil {
		return 0
	}
	return len(ps.sigs)
}

// Signers returns the signers in deterministic Name order.
func (ps *ProofSet) Signers() []id.PublicId {
	out := make([]id.PublicId, 0, len(ps.ids))
	for _, pid := range ps.ids {
		out = append(out, pid)
	}
	sortPublicIds(out)
	return out
}

func sortPublicIds(ids []id.PublicId) {
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j].Less(ids[j-1]); j-- {
			ids[j], ids[j-1] = ids[j-1], ids[j]
		}
	}
}

// Clone returns a shallow copy of ps, safe to mutate independently.
func (ps *ProofSet) Clone() *ProofSet {
	out := NewProofSet()
	if ps == nil {
		return out
	}
	for k, v := range ps.sigs {
		out.sigs[k] = v
	}
	for k, v := range ps.ids {
		out.ids[k] = v
	}
	return out
}

// SectionInfoSigPayload carries a BLS12-381 public-key share and the
// corresponding signature share over a SectionInfo (or other
// cross-section trust) agreement, following the threshold scheme used
// throughout the pack's BLS-bearing chains (blst, as in
// prysmaticlabs-prysm and ethereum-go-ethereum's beacon light client).
type SectionInfoSigPayload struct {
	PubKeyShare blst.P1Affine
	SigShare    blst.P2Affine
}

// Verify checks that SigShare is a valid BLS signature by PubKeyShare
// over msg.
func (s SectionInfoSigPayload) Verify(msg []byte) bool {
	pk := s.PubKeyShare
	sig := s.SigShare
	if !sig.SigValidate(false) {
		return false
	}
	return sig.Verify(false, &pk, false, msg, dst)
}

// dst is the BLS domain-separation tag for section-info signature
// shares.
var dst = []byte("SECTION-OVERLAY-BLS-SIG-V1")

// ErrNoSuchSigner is returned when a sig-share map lookup misses.
var ErrNoSuchSigner = errors.New("proof: no signature share for signer")
