// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accumulator_test

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/mclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sectioncore/overlay/accumulator"
	"github.com/sectioncore/overlay/event"
	"github.com/sectioncore/overlay/id"
	"github.com/sectioncore/overlay/proof"
)

func sigFrom(signer id.PublicId) proof.Proof {
	var sig proof.Signature
	sig[0] = signer.Bytes()[0]
	return proof.Proof{Signer: signer, Sig: sig}
}

func newTestAccumulator() *accumulator.Accumulator {
	return accumulator.New()
}

// S1: insert, poll, re-insert is rejected with ErrAlreadyComplete.
func TestInsertPollReInsert(t *testing.T) {
	a := newTestAccumulator()
	alice := id.NewTestPublicId(1)
	ev := event.AddElder{Id: alice}

	ps := proof.NewProofSet()
	require.True(t, ps.Add(sigFrom(alice)))
	require.NoError(t, a.InsertWithProofSet(ev, ps))
	assert.Equal(t, 1, a.Len())

	got, ok := a.PollEvent(ev)
	require.True(t, ok)
	assert.True(t, got.ContainsSigner(alice))
	assert.Equal(t, 0, a.Len())

	// re-insert after completion is rejected, event stays completed.
	err := a.InsertWithProofSet(ev, ps)
	assert.ErrorIs(t, err, accumulator.ErrAlreadyComplete)

	_, ok = a.PollEvent(ev)
	assert.False(t, ok, "polling an already-completed event must not succeed twice")
}

// S2: a duplicate proof from the same signer does not grow the set and
// is reported as a replacement, not a new contribution.
func TestAddProofDuplicateSigner(t *testing.T) {
	a := newTestAccumulator()
	bob := id.NewTestPublicId(2)
	ev := event.Offline{Id: bob}

	require.NoError(t, a.AddProof(ev, sigFrom(bob), nil))
	entries := a.IncompleteEvents()
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].Proof.ParsecProofs.Len())

	err := a.AddProof(ev, sigFrom(bob), nil)
	assert.ErrorIs(t, err, accumulator.ErrReplacedAlreadyInserted)

	entries = a.IncompleteEvents()
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].Proof.ParsecProofs.Len(), "duplicate signer must not grow the proof set")
}

// S3: resetting preserves our own in-flight vote, dropping every other
// signer's contribution, and the event remains poll-able afterwards.
func TestResetKeepsOwnVote(t *testing.T) {
	a := newTestAccumulator()
	us := id.NewTestPublicId(3)
	other := id.NewTestPublicId(4)
	ev := event.OurMerge{}

	require.NoError(t, a.AddProof(ev, sigFrom(us), nil))
	require.NoError(t, a.AddProof(ev, sigFrom(other), nil))

	remaining := a.ResetAccumulator(us)
	require.Len(t, remaining.CachedEvents, 1)
	assert.Equal(t, ev, remaining.CachedEvents[0].Payload)
	assert.Nil(t, remaining.CachedEvents[0].Signature)

	assert.Equal(t, 0, a.Len(), "reset must drain pending")

	// the carried-forward vote is a fresh single-signer contribution.
	ps := proof.NewProofSet()
	require.True(t, ps.Add(sigFrom(us)))
	require.NoError(t, a.InsertWithProofSet(remaining.CachedEvents[0].Payload, ps))
	entries := a.IncompleteEvents()
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Proof.ContainsSigner(us))
	assert.False(t, entries[0].Proof.ContainsSigner(other))
}

// S4: if we never voted on a pending event, reset drops it entirely —
// nothing is carried forward on our behalf.
func TestResetWithoutOwnVote(t *testing.T) {
	a := newTestAccumulator()
	us := id.NewTestPublicId(5)
	other := id.NewTestPublicId(6)
	ev := event.ParsecPrune{}

	require.NoError(t, a.AddProof(ev, sigFrom(other), nil))

	remaining := a.ResetAccumulator(us)
	assert.Empty(t, remaining.CachedEvents, "we never voted, so nothing should be carried forward")
	assert.Equal(t, 0, a.Len())
}

// Reset also drains and returns completed events, so the caller can
// keep suppressing late duplicates across the boundary.
func TestResetDrainsCompleted(t *testing.T) {
	a := newTestAccumulator()
	alice := id.NewTestPublicId(7)
	ev := event.AddElder{Id: alice}

	ps := proof.NewProofSet()
	require.True(t, ps.Add(sigFrom(alice)))
	require.NoError(t, a.InsertWithProofSet(ev, ps))
	_, ok := a.PollEvent(ev)
	require.True(t, ok)

	remaining := a.ResetAccumulator(alice)
	require.Len(t, remaining.CompletedEvents, 1)
	assert.Equal(t, ev, remaining.CompletedEvents[0])

	// after reset, the same event can be inserted fresh again.
	require.NoError(t, a.InsertWithProofSet(ev, ps.Clone()))
	assert.Equal(t, 1, a.Len())
}

func TestPollEventNotPending(t *testing.T) {
	a := newTestAccumulator()
	_, ok := a.PollEvent(event.ParsecPrune{})
	assert.False(t, ok)
}

func TestPurgeDropsStaleEntriesOnly(t *testing.T) {
	a := newTestAccumulator()
	stale := id.NewTestPublicId(8)
	fresh := id.NewTestPublicId(9)

	require.NoError(t, a.AddProof(event.Offline{Id: stale}, sigFrom(stale), nil))
	time.Sleep(10 * time.Millisecond)
	before := mclock.Now()

	require.NoError(t, a.AddProof(event.Offline{Id: fresh}, sigFrom(fresh), nil))
	assert.Equal(t, 2, a.Len())

	purged := a.Purge(before, 5*time.Millisecond)
	assert.Equal(t, 1, purged)
	assert.Equal(t, 1, a.Len())

	entries := a.IncompleteEvents()
	require.Len(t, entries, 1)
	assert.Equal(t, event.Offline{Id: fresh}.Kind(), entries[0].Event.Kind())
}

func TestIncompleteEventsDeterministicOrder(t *testing.T) {
	a := newTestAccumulator()
	for i := byte(10); i < 20; i++ {
		pid := id.NewTestPublicId(i)
		require.NoError(t, a.AddProof(event.AddElder{Id: pid}, sigFrom(pid), nil))
	}

	first := a.IncompleteEvents()
	second := a.IncompleteEvents()
	require.Len(t, first, 10)
	for i := range first {
		assert.Equal(t, first[i].Event.CacheKey(), second[i].Event.CacheKey())
	}
}
