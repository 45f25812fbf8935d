// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package id

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/inconshreveable/log15"
)

var genLog = log15.New("pkg", "id")

// maxGenerationAttempts bounds KeyGenerator.GenerateMatching's
// regenerate-until-match loop. A name is a hash of its key, so a
// matching identity can only be searched for, never constructed
// directly; without a cap, an effectively-zero-probability prefix
// (len >= NameSize*8, which never occurs in practice but is not
// rejected by id.Prefix itself) would spin forever.
const maxGenerationAttempts = 1 << 20

// GeneratorStats exposes generation cost for callers that want to
// notice a struggling prefix match (e.g. to log or alert) without
// caring about an error from ordinary use.
type GeneratorStats struct {
	Attempts int
}

// Signer proves control of the private key behind a generated
// identity by signing arbitrary data with it. Relocation (spec.md
// §4.3) needs this: the identity being relocated signs over the
// relocation details and its replacement, so the destination section
// can verify the binding against the key the source section already
// knows. Sign returns a 65-byte recoverable ECDSA signature, matching
// go-ethereum/crypto.Sign's shape — the same shape proof.Signature
// wraps, kept here as a plain array since package id cannot import
// package proof without a cycle (proof already imports id).
type Signer interface {
	Sign(data []byte) ([65]byte, error)
}

// keySigner signs with the private key GenerateMatching just minted.
type keySigner struct{ key *ecdsa.PrivateKey }

func (s keySigner) Sign(data []byte) ([65]byte, error) {
	var out [65]byte
	sig, err := crypto.Sign(crypto.Keccak256(data), s.key)
	if err != nil {
		return out, err
	}
	copy(out[:], sig)
	return out, nil
}

// KeyGenerator implements lifecycle.IdentityGenerator by repeatedly
// minting fresh secp256k1 keys until one derives a Name matching the
// requested prefix (spec.md §4.3, relocation; §8 invariant 5,
// rebootstrap identity regeneration). Structurally satisfies
// lifecycle.IdentityGenerator without importing it, avoiding an
// id <-> lifecycle import cycle.
type KeyGenerator struct{}

// NewKeyGenerator returns a KeyGenerator backed by crypto.GenerateKey's
// OS entropy source.
func NewKeyGenerator() KeyGenerator { return KeyGenerator{} }

// GenerateMatching mints a fresh PublicId whose Name matches prefix,
// plus a Signer bound to the private key behind it, panicking only if
// maxGenerationAttempts is exhausted — a prefix length this large has
// effectively zero match probability and indicates a caller error,
// not a transient condition a retry could fix.
func (KeyGenerator) GenerateMatching(prefix Prefix) (PublicId, Signer) {
	pid, key, attempts, ok := generateMatching(prefix, maxGenerationAttempts)
	if !ok {
		genLog.Crit("identity generation exhausted", "prefix", prefix, "attempts", attempts)
		panic("id: identity generation exhausted")
	}
	return pid, keySigner{key: key}
}

func generateMatching(prefix Prefix, maxAttempts int) (PublicId, *ecdsa.PrivateKey, int, bool) {
	for i := 0; i < maxAttempts; i++ {
		key, err := crypto.GenerateKey()
		if err != nil {
			continue
		}
		pid := NewPublicId(key.PublicKey)
		if prefix.Matches(pid.Name()) {
			return pid, key, i + 1, true
		}
	}
	return PublicId{}, nil, maxAttempts, false
}
