// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lifecycle

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/sectioncore/overlay/event"
	"github.com/sectioncore/overlay/id"
	"github.com/sectioncore/overlay/link"
	"github.com/sectioncore/overlay/proof"
)

// Message is the closed set of direct protocol messages lifecycle
// states exchange over the Link Layer while establishing section
// membership (spec.md §4.3): bootstrap negotiation and the join
// handshake. Anything else arriving over link.NewMessage is an
// opaque routing message, backlogged or dispatched to the accumulator
// rather than decoded here. Payloads that embed a PublicId or a
// Prefix use wire-safe field shapes (compressed key bytes, raw name
// bits) because neither type's unexported fields survive a reflective
// encoder such as rlp — the same reason event.CacheKey encodes
// PublicId as Bytes() rather than the struct itself.
type Message interface {
	tag() msgTag
}

type msgTag uint8

const (
	tagBootstrapRequest msgTag = iota
	tagBootstrapResponseJoin
	tagBootstrapResponseRebootstrap
	tagJoinRequest
	tagNodeApproval
)

// BootstrapRequest asks the receiving contact to place us into the
// section owning Destination (our own name for an ordinary join, or a
// relocation target). CorrelationID lets a retried request be matched
// to its eventual response in logs, the way thor tags peer sessions.
type BootstrapRequest struct {
	Destination   id.Name
	CorrelationID string
}

func (BootstrapRequest) tag() msgTag { return tagBootstrapRequest }

// BootstrapResponseJoin accepts the request, directing the sender to
// join the section identified by (PrefixBits, PrefixLen) via Contacts.
type BootstrapResponseJoin struct {
	PrefixBits id.Name
	PrefixLen  uint32
	Contacts   []link.ConnInfo
}

func (BootstrapResponseJoin) tag() msgTag { return tagBootstrapResponseJoin }

// Prefix reconstructs the id.Prefix this response names.
func (m BootstrapResponseJoin) Prefix() id.Prefix {
	return id.NewPrefix(m.PrefixBits, uint(m.PrefixLen))
}

// NewBootstrapResponseJoin builds a wire response from a live prefix.
func NewBootstrapResponseJoin(p id.Prefix, contacts []link.ConnInfo) BootstrapResponseJoin {
	return BootstrapResponseJoin{PrefixBits: p.Bits(), PrefixLen: uint32(p.Len()), Contacts: contacts}
}

// BootstrapResponseRebootstrap redirects the sender to a different set
// of contacts without granting acceptance.
type BootstrapResponseRebootstrap struct{ Contacts []link.ConnInfo }

func (BootstrapResponseRebootstrap) tag() msgTag { return tagBootstrapResponseRebootstrap }

// wireRelocatePayload is event.RelocatePayload with every PublicId
// replaced by its compressed key bytes.
type wireRelocatePayload struct {
	DestinationPrefixBits id.Name
	DestinationPrefixLen  uint32
	SourcePid             []byte
	Age                   uint8
	SourceSig             proofSig
	NewPublicId           []byte
	Sig                   proofSig
}

type proofSig [65]byte

// wireRelocateDetailsForSigning is the byte-safe encoding the
// relocating identity signs over to produce RelocatePayload.Sig, and
// that the destination section re-derives to verify it: everything a
// JoinRequest's RelocatePayload carries except the signature itself.
type wireRelocateDetailsForSigning struct {
	DestinationPrefixBits id.Name
	DestinationPrefixLen  uint32
	SourcePid             []byte
	Age                   uint8
	SourceSig             proofSig
	NewPublicId           []byte
}

// EncodeRelocateDetailsForSigning returns the deterministic bytes the
// identity named in details signs over (spec.md §4.3), binding
// newPublicId to it in a form the destination section can verify
// against the sending section's known public key.
func EncodeRelocateDetailsForSigning(details event.SignedRelocateDetails, newPublicId id.PublicId) ([]byte, error) {
	w := wireRelocateDetailsForSigning{
		DestinationPrefixBits: details.Content.DestinationPrefix.Bits(),
		DestinationPrefixLen:  uint32(details.Content.DestinationPrefix.Len()),
		SourcePid:             details.Content.Pid.Bytes(),
		Age:                   details.Content.Age,
		SourceSig:             proofSig(details.SourceSig),
		NewPublicId:           newPublicId.Bytes(),
	}
	enc, err := rlp.EncodeToBytes(w)
	if err != nil {
		return nil, errors.Wrap(err, "encode relocation details for signing")
	}
	return enc, nil
}

// JoinRequest asks to be admitted as a member, optionally carrying
// relocation proof when this identity is relocating rather than
// joining fresh. CorrelationID lets a retried request be matched to
// its eventual NodeApproval (or the attempt that provoked a timeout)
// in logs, the way thor tags peer sessions.
type JoinRequest struct {
	CorrelationID      string
	HasRelocatePayload bool
	RelocatePayload    wireRelocatePayload
}

func (JoinRequest) tag() msgTag { return tagJoinRequest }

// NewJoinRequest builds a JoinRequest tagged with correlationID,
// wire-encoding rp if present.
func NewJoinRequest(correlationID string, rp *event.RelocatePayload) JoinRequest {
	if rp == nil {
		return JoinRequest{CorrelationID: correlationID}
	}
	return JoinRequest{
		CorrelationID:      correlationID,
		HasRelocatePayload: true,
		RelocatePayload: wireRelocatePayload{
			DestinationPrefixBits: rp.Details.Content.DestinationPrefix.Bits(),
			DestinationPrefixLen:  uint32(rp.Details.Content.DestinationPrefix.Len()),
			SourcePid:             rp.Details.Content.Pid.Bytes(),
			Age:                   rp.Details.Content.Age,
			SourceSig:             proofSig(rp.Details.SourceSig),
			NewPublicId:           rp.NewPublicId.Bytes(),
			Sig:                   proofSig(rp.Sig),
		},
	}
}

// Decode reconstructs the RelocatePayload this request carries, if
// any.
func (m JoinRequest) Decode() (*event.RelocatePayload, error) {
	if !m.HasRelocatePayload {
		return nil, nil
	}
	w := m.RelocatePayload
	srcPid, err := id.PublicIdFromBytes(w.SourcePid)
	if err != nil {
		return nil, errors.Wrap(err, "decode relocate source id")
	}
	newPid, err := id.PublicIdFromBytes(w.NewPublicId)
	if err != nil {
		return nil, errors.Wrap(err, "decode relocate new id")
	}
	return &event.RelocatePayload{
		Details: event.SignedRelocateDetails{
			Content: event.RelocateDetails{
				Pid:               srcPid,
				DestinationPrefix: id.NewPrefix(w.DestinationPrefixBits, uint(w.DestinationPrefixLen)),
				Age:               w.Age,
			},
			SourceSig: proof.Signature(w.SourceSig),
		},
		NewPublicId: newPid,
		Sig:         proof.Signature(w.Sig),
	}, nil
}

// wireEldersInfo is event.EldersInfo with every PublicId replaced by
// its compressed key bytes.
type wireEldersInfo struct {
	PrefixBits id.Name
	PrefixLen  uint32
	Version    uint64
	Elders     [][]byte
}

// NodeApproval grants membership, carrying the section info the new
// Adult should adopt.
type NodeApproval struct{ Info wireEldersInfo }

func (NodeApproval) tag() msgTag { return tagNodeApproval }

// NewNodeApproval wire-encodes info.
func NewNodeApproval(info event.EldersInfo) NodeApproval {
	elders := make([][]byte, len(info.Elders))
	for i, e := range info.Elders {
		elders[i] = e.Bytes()
	}
	return NodeApproval{Info: wireEldersInfo{
		PrefixBits: info.Prefix.Bits(),
		PrefixLen:  uint32(info.Prefix.Len()),
		Version:    info.Version,
		Elders:     elders,
	}}
}

// Decode reconstructs the EldersInfo this approval carries.
func (m NodeApproval) Decode() (event.EldersInfo, error) {
	elders := make([]id.PublicId, len(m.Info.Elders))
	for i, b := range m.Info.Elders {
		pid, err := id.PublicIdFromBytes(b)
		if err != nil {
			return event.EldersInfo{}, errors.Wrap(err, "decode elder id")
		}
		elders[i] = pid
	}
	return event.EldersInfo{
		Prefix:  id.NewPrefix(m.Info.PrefixBits, uint(m.Info.PrefixLen)),
		Version: m.Info.Version,
		Elders:  elders,
	}, nil
}

// ErrUnknownMessageTag is returned by DecodeMessage for a tag byte
// this version does not recognize.
var ErrUnknownMessageTag = errors.New("lifecycle: unknown message tag")

// EncodeMessage serializes m as a tag byte followed by its
// deterministic RLP encoding.
func EncodeMessage(m Message) ([]byte, error) {
	enc, err := rlp.EncodeToBytes(m)
	if err != nil {
		return nil, errors.Wrap(err, "encode message body")
	}
	out := make([]byte, 1+len(enc))
	out[0] = byte(m.tag())
	copy(out[1:], enc)
	return out, nil
}

// DecodeMessage parses bytes produced by EncodeMessage.
func DecodeMessage(b []byte) (Message, error) {
	if len(b) < 1 {
		return nil, errors.New("lifecycle: empty message")
	}
	body := b[1:]
	switch msgTag(b[0]) {
	case tagBootstrapRequest:
		var m BootstrapRequest
		return m, rlp.DecodeBytes(body, &m)
	case tagBootstrapResponseJoin:
		var m BootstrapResponseJoin
		return m, rlp.DecodeBytes(body, &m)
	case tagBootstrapResponseRebootstrap:
		var m BootstrapResponseRebootstrap
		return m, rlp.DecodeBytes(body, &m)
	case tagJoinRequest:
		var m JoinRequest
		return m, rlp.DecodeBytes(body, &m)
	case tagNodeApproval:
		var m NodeApproval
		return m, rlp.DecodeBytes(body, &m)
	default:
		return nil, ErrUnknownMessageTag
	}
}
