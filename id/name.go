// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package id defines the overlay's cryptographic identity types: the
// stable public identifier every peer carries, its deterministic
// mapping to a fixed-width overlay address, and the variable-length
// prefixes that name sections of that address space.
package id

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
)

// NameSize is the width, in bytes, of an XorName (256 bits).
const NameSize = 32

// Name is a fixed-width overlay address. Two names' distance is the
// bitwise XOR of their bytes, compared as an unsigned big-endian
// integer.
type Name [NameSize]byte

// String renders the name as a hex string, e.g. for logging.
func (n Name) String() string {
	return hex.EncodeToString(n[:])
}

// IsZero reports whether n is the all-zero name.
func (n Name) IsZero() bool {
	return n == Name{}
}

// Bit returns the i-th bit of n, counting from the most significant
// bit of byte 0.
func (n Name) Bit(i uint) bool {
	if i >= NameSize*8 {
		return false
	}
	return n[i/8]&(1<<(7-i%8)) != 0
}

// CommonPrefixLen returns the number of leading bits shared by n and m.
func (n Name) CommonPrefixLen(m Name) uint {
	for i := uint(0); i < NameSize*8; i++ {
		if n.Bit(i) != m.Bit(i) {
			return i
		}
	}
	return NameSize * 8
}

// Closer reports whether n is closer than m to target under XOR
// distance.
func (n Name) Closer(m, target Name) bool {
	for i := range target {
		x := n[i] ^ target[i]
		y := m[i] ^ target[i]
		if x != y {
			return x < y
		}
	}
	return false
}

// PublicId is a stable cryptographic public identity: a secp256k1
// public key plus its deterministic Name mapping, derived from the
// public key via Keccak256 much as thor.Address is.
type PublicId struct {
	pub  ecdsa.PublicKey
	name Name
}

// NewPublicId derives a PublicId from a secp256k1 public key.
func NewPublicId(pub ecdsa.PublicKey) PublicId {
	raw := crypto.FromECDSAPub(&pub)
	h := crypto.Keccak256(raw)
	// Keccak256 applied twice to the uncompressed public key is a stable,
	// practically collision-free mapping into the 256-bit name space.
	h2 := crypto.Keccak256(h)
	var name Name
	copy(name[:], h2)
	return PublicId{pub: pub, name: name}
}

// Name returns the deterministic overlay address of this identity.
func (p PublicId) Name() Name { return p.name }

// PublicKey returns the underlying public key.
func (p PublicId) PublicKey() ecdsa.PublicKey { return p.pub }

// Equal reports whether p and o are the same identity.
func (p PublicId) Equal(o PublicId) bool {
	return p.name == o.name
}

// Less orders PublicIds by Name, giving a total, deterministic order
// usable as a map key substitute and for ProofSet iteration order.
func (p PublicId) Less(o PublicId) bool {
	return bytes.Compare(p.name[:], o.name[:]) < 0
}

func (p PublicId) String() string {
	return fmt.Sprintf("PublicId(%s)", p.name.String()[:8])
}

// Bytes returns the compressed wire form of the public key, suitable
// for canonical encoding.
func (p PublicId) Bytes() []byte {
	return crypto.CompressPubkey(&p.pub)
}

// PublicIdFromBytes parses the compressed wire form produced by Bytes.
func PublicIdFromBytes(b []byte) (PublicId, error) {
	pub, err := crypto.DecompressPubkey(b)
	if err != nil {
		return PublicId{}, err
	}
	return NewPublicId(*pub), nil
}
