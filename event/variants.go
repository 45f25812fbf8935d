// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package event

import "github.com/sectioncore/overlay/id"

// AddElder votes to add a new elder once a candidate is agreed upon.
type AddElder struct{ Id id.PublicId }

func (e AddElder) Kind() Kind         { return KindAddElder }
func (e AddElder) CacheKey() CacheKey { return canonicalKey(KindAddElder, e.Id.Bytes()) }
func (AddElder) sealed()              {}

// RemoveElder votes to remove an elder once a peer is agreed gone.
type RemoveElder struct{ Id id.PublicId }

func (e RemoveElder) Kind() Kind         { return KindRemoveElder }
func (e RemoveElder) CacheKey() CacheKey { return canonicalKey(KindRemoveElder, e.Id.Bytes()) }
func (RemoveElder) sealed()              {}

// Online votes that a joining node is live, at the given age.
type Online struct {
	Id  id.PublicId
	Age uint8
}

func (e Online) Kind() Kind { return KindOnline }
func (e Online) CacheKey() CacheKey {
	return canonicalKey(KindOnline, struct {
		Id  []byte
		Age uint8
	}{e.Id.Bytes(), e.Age})
}
func (Online) sealed() {}

// Offline votes that a member is no longer considered live.
type Offline struct{ Id id.PublicId }

func (e Offline) Kind() Kind         { return KindOffline }
func (e Offline) CacheKey() CacheKey { return canonicalKey(KindOffline, e.Id.Bytes()) }
func (Offline) sealed()              {}

// OurMerge signals that our own section has agreed to merge.
type OurMerge struct{}

func (e OurMerge) Kind() Kind         { return KindOurMerge }
func (e OurMerge) CacheKey() CacheKey { return canonicalKey(KindOurMerge, struct{}{}) }
func (OurMerge) sealed()              {}

// NeighbourMerge signals a neighbouring section's merge, identified
// by a digest of its merge details.
type NeighbourMerge struct{ Digest [32]byte }

func (e NeighbourMerge) Kind() Kind         { return KindNeighbourMerge }
func (e NeighbourMerge) CacheKey() CacheKey { return canonicalKey(KindNeighbourMerge, e.Digest) }
func (NeighbourMerge) sealed()              {}

// SectionInfo carries the authoritative new composition of a section.
type SectionInfo struct{ Info EldersInfo }

func (e SectionInfo) Kind() Kind { return KindSectionInfo }
func (e SectionInfo) CacheKey() CacheKey {
	ids := make([][]byte, len(e.Info.Elders))
	for i, el := range e.Info.Elders {
		ids[i] = el.Bytes()
	}
	return canonicalKey(KindSectionInfo, struct {
		Prefix  string
		Version uint64
		Elders  [][]byte
	}{e.Info.Prefix.String(), e.Info.Version, ids})
}
func (SectionInfo) sealed() {}

// TheirKeyInfo stores a remote section's public key in our trust
// table.
type TheirKeyInfo struct{ Info SectionKeyInfo }

func (e TheirKeyInfo) Kind() Kind { return KindTheirKeyInfo }
func (e TheirKeyInfo) CacheKey() CacheKey {
	return canonicalKey(KindTheirKeyInfo, struct {
		Prefix  string
		Version uint64
	}{e.Info.Prefix.String(), e.Info.Version})
}
func (TheirKeyInfo) sealed() {}

// AckMessage acknowledges a neighbouring section's prefix/version.
type AckMessage struct {
	Prefix  id.Prefix
	Version uint64
}

func (e AckMessage) Kind() Kind { return KindAckMessage }
func (e AckMessage) CacheKey() CacheKey {
	return canonicalKey(KindAckMessage, struct {
		Prefix  string
		Version uint64
	}{e.Prefix.String(), e.Version})
}
func (AckMessage) sealed() {}

// SendAckMessage requests that an AckMessage be sent. Per spec.md
// §4.2 this requires unanimous (100%) agreement among elders, a
// threshold stricter than the simple quorum used elsewhere — the
// caller (lifecycle) must enforce this when polling.
type SendAckMessage struct {
	Prefix  id.Prefix
	Version uint64
}

func (e SendAckMessage) Kind() Kind { return KindSendAckMessage }
func (e SendAckMessage) CacheKey() CacheKey {
	return canonicalKey(KindSendAckMessage, struct {
		Prefix  string
		Version uint64
	}{e.Prefix.String(), e.Version})
}
func (SendAckMessage) sealed() {}

// ParsecPrune signals compaction of the underlying gossip graph.
type ParsecPrune struct{}

func (e ParsecPrune) Kind() Kind         { return KindParsecPrune }
func (e ParsecPrune) CacheKey() CacheKey { return canonicalKey(KindParsecPrune, struct{}{}) }
func (ParsecPrune) sealed()              {}

// Relocate votes to move a member to another section.
type Relocate struct{ Details RelocateDetails }

func (e Relocate) Kind() Kind { return KindRelocate }
func (e Relocate) CacheKey() CacheKey {
	return canonicalKey(KindRelocate, struct {
		Id      []byte
		DestPfx string
		Age     uint8
	}{e.Details.Pid.Bytes(), e.Details.DestinationPrefix.String(), e.Details.Age})
}
func (Relocate) sealed() {}

// User carries a caller-defined opaque payload, reserved as an escape
// hatch so future event kinds never need to renumber the variants
// above (spec.md §6).
type User struct{ Payload []byte }

func (e User) Kind() Kind         { return KindUser }
func (e User) CacheKey() CacheKey { return canonicalKey(KindUser, e.Payload) }
func (User) sealed()              {}
