// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package proof

import "github.com/sectioncore/overlay/id"

// AccumulatingProof is the proof bundle gathered so far for a single
// pending AccumulatingEvent: the underlying consensus signatures, plus
// any BLS threshold-signature shares contributed alongside them.
//
// Invariant: every key in SigShares also has an entry in ParsecProofs
// — a node cannot contribute a threshold share without also voting.
type AccumulatingProof struct {
	ParsecProofs *ProofSet
	SigShares    map[id.Name]SectionInfoSigPayload
}

// NewAccumulatingProof returns an empty AccumulatingProof.
func NewAccumulatingProof() *AccumulatingProof {
	return &AccumulatingProof{
		ParsecProofs: NewProofSet(),
		SigShares:    make(map[id.Name]SectionInfoSigPayload),
	}
}

// FromProofSet builds an AccumulatingProof from a bulk-inserted
// ProofSet with no signature shares, as insert_with_proof_set does.
func FromProofSet(ps *ProofSet) *AccumulatingProof {
	return &AccumulatingProof{
		ParsecProofs: ps,
		SigShares:    make(map[id.Name]SectionInfoSigPayload),
	}
}

// AddProof records proof's signature and, if present, sigShare, under
// proof.Signer. Returns false if either the signature or the share was
// already present for that signer (the newer one replaces it) —
// callers use this as "this was a replacement".
func (ap *AccumulatingProof) AddProof(p Proof, sigShare *SectionInfoSigPayload) bool {
	newShare := true
	if sigShare != nil {
		if _, exists := ap.SigShares[p.Signer.Name()]; exists {
			newShare = false
		}
		ap.SigShares[p.Signer.Name()] = *sigShare
	}
	newProof := ap.ParsecProofs.Add(p)
	return newShare && newProof
}

// HasQuorum reports whether at least threshold distinct signers have
// contributed a proof (spec.md §4.2: most events need a simple elder
// quorum, SendAckMessage needs all of them — the caller picks
// threshold accordingly, e.g. EldersInfo.Quorum() or len(Elders)).
func (ap *AccumulatingProof) HasQuorum(threshold int) bool {
	return ap.ParsecProofs.Len() >= threshold
}

// ContainsSigner reports whether signer already has a recorded proof.
func (ap *AccumulatingProof) ContainsSigner(signer id.PublicId) bool {
	return ap.ParsecProofs.Contains(signer)
}

// SigShareFor returns the signature share contributed by signer, if
// any.
func (ap *AccumulatingProof) SigShareFor(signer id.PublicId) (SectionInfoSigPayload, bool) {
	s, ok := ap.SigShares[signer.Name()]
	return s, ok
}
