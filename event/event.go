// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package event defines the closed set of agreements the overlay can
// reach (AccumulatingEvent), the wire-level NetworkEvent that pairs a
// payload with an optional section-key signature share, and the
// conversion between NetworkEvent and the Agreement Engine's
// observation type.
package event

import (
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/qianbin/drlp"
)

// Kind tags which AccumulatingEvent variant a value holds.
type Kind uint8

// The closed set of AccumulatingEvent variants, numbered so that new
// ones can only ever be appended — never renumbered — keeping the
// encoding forward-compatible the way spec.md §6 requires.
const (
	KindAddElder Kind = iota
	KindRemoveElder
	KindOnline
	KindOffline
	KindOurMerge
	KindNeighbourMerge
	KindSectionInfo
	KindTheirKeyInfo
	KindAckMessage
	KindSendAckMessage
	KindParsecPrune
	KindRelocate
	KindUser
)

func (k Kind) String() string {
	switch k {
	case KindAddElder:
		return "AddElder"
	case KindRemoveElder:
		return "RemoveElder"
	case KindOnline:
		return "Online"
	case KindOffline:
		return "Offline"
	case KindOurMerge:
		return "OurMerge"
	case KindNeighbourMerge:
		return "NeighbourMerge"
	case KindSectionInfo:
		return "SectionInfo"
	case KindTheirKeyInfo:
		return "TheirKeyInfo"
	case KindAckMessage:
		return "AckMessage"
	case KindSendAckMessage:
		return "SendAckMessage"
	case KindParsecPrune:
		return "ParsecPrune"
	case KindRelocate:
		return "Relocate"
	case KindUser:
		return "User"
	default:
		return "Unknown"
	}
}

// CacheKey is a deterministic, fixed-size, comparable digest of an
// AccumulatingEvent, used as the accumulator's map key since several
// variants (Online, SectionInfo, Relocate, ...) carry fields — such
// as a PublicId's embedded ecdsa.PublicKey — that are not themselves
// comparable in Go.
type CacheKey [32]byte

// AccumulatingEvent is the closed variant set of §3: every observable
// agreement the overlay must reach. It is a sealed interface — the
// only implementations live in this package.
type AccumulatingEvent interface {
	Kind() Kind
	CacheKey() CacheKey
	sealed()
}

// canonicalKey encodes payload with deterministic RLP, frames it
// together with the variant number via drlp's append primitives (so a
// payload can never collide across two Kinds, nor a short payload with
// a longer one's prefix), and hashes the result into a fixed-size,
// collision-resistant CacheKey. This is also what recomputes the
// digest NeighbourMerge carries (spec.md §6).
func canonicalKey(kind Kind, payload interface{}) CacheKey {
	enc, err := rlp.EncodeToBytes(payload)
	if err != nil {
		// payload types are all value types under our control; an
		// rlp encode failure here means a programming error, not a
		// runtime condition callers can recover from.
		panic(err)
	}
	var buf []byte
	buf = drlp.AppendUint(buf, uint64(kind))
	buf = drlp.AppendString(buf, enc)
	return CacheKey(crypto.Keccak256Hash(buf))
}
