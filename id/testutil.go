// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package id

import (
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// NewTestPublicId deterministically derives a PublicId from seed, for
// use in tests that need distinct, reproducible identities without
// depending on OS entropy.
func NewTestPublicId(seed byte) PublicId {
	pid, _ := NewTestIdentity(seed)
	return pid
}

// NewTestIdentity is NewTestPublicId plus the Signer for the derived
// key, for tests that need to sign as a deterministic identity (e.g.
// a relocating node signing with the identity being replaced).
func NewTestIdentity(seed byte) (PublicId, Signer) {
	var scalar [32]byte
	scalar[31] = seed + 1 // avoid the zero scalar
	priv := secp256k1.PrivKeyFromBytes(scalar[:])
	key := priv.ToECDSA()
	return NewPublicId(key.PublicKey), keySigner{key: key}
}
