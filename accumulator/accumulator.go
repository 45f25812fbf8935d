// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package accumulator implements the chain accumulator (spec.md §4.1):
// it holds pending AccumulatingEvent -> AccumulatingProof entries until
// the lifecycle state machine decides a quorum is met and polls them,
// and remembers which events were already delivered so late proofs are
// silently dropped. Not thread-safe — owned exclusively by the single
// driver loop that also owns the lifecycle state machine, peer map,
// and timers (spec.md §5).
package accumulator

import (
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/common/mclock"
	"github.com/inconshreveable/log15"
	"github.com/pkg/errors"

	"github.com/sectioncore/overlay/event"
	"github.com/sectioncore/overlay/id"
	"github.com/sectioncore/overlay/proof"
	"github.com/sectioncore/overlay/telemetry"
)

var log = log15.New("pkg", "accumulator")

var metricPendingGauge = telemetry.LazyLoad(func() telemetry.GaugeMeter {
	return telemetry.Gauge("accumulator_pending_gauge")()
})

// ErrAlreadyComplete is returned when an operation targets an event
// that has already been polled to completion.
var ErrAlreadyComplete = errors.New("accumulator: event already complete")

// ErrReplacedAlreadyInserted is returned when a bulk insert replaces
// an existing pending entry, or when add_proof replaces a signer's own
// prior contribution (signature or signature share). The newer proof
// is retained either way; this error only surfaces the replacement to
// the caller so it can detect equivocation.
var ErrReplacedAlreadyInserted = errors.New("accumulator: replaced an already-inserted entry")

type entry struct {
	event      event.AccumulatingEvent
	proof      *proof.AccumulatingProof
	insertedAt mclock.AbsTime
}

// Accumulator is the chain accumulator described in spec.md §4.1.
type Accumulator struct {
	pending   map[event.CacheKey]*entry
	completed map[event.CacheKey]event.AccumulatingEvent
}

// New returns an empty Accumulator.
func New() *Accumulator {
	return &Accumulator{
		pending:   make(map[event.CacheKey]*entry),
		completed: make(map[event.CacheKey]event.AccumulatingEvent),
	}
}

// InsertWithProofSet bulk-inserts ev with an already-gathered proof
// set (no signature shares — the threshold-share map starts empty).
func (a *Accumulator) InsertWithProofSet(ev event.AccumulatingEvent, ps *proof.ProofSet) error {
	key := ev.CacheKey()
	if _, ok := a.completed[key]; ok {
		return ErrAlreadyComplete
	}

	_, replaced := a.pending[key]
	a.pending[key] = &entry{event: ev, proof: proof.FromProofSet(ps), insertedAt: mclock.Now()}
	metricPendingGauge().Gauge(int64(len(a.pending)))

	if replaced {
		return ErrReplacedAlreadyInserted
	}
	return nil
}

// AddProof incrementally records a single proof (and, for events that
// carry one, a threshold signature share) towards ev.
func (a *Accumulator) AddProof(ev event.AccumulatingEvent, p proof.Proof, sigShare *proof.SectionInfoSigPayload) error {
	key := ev.CacheKey()
	if _, ok := a.completed[key]; ok {
		return ErrAlreadyComplete
	}

	e, ok := a.pending[key]
	if !ok {
		e = &entry{event: ev, proof: proof.NewAccumulatingProof(), insertedAt: mclock.Now()}
		a.pending[key] = e
		metricPendingGauge().Gauge(int64(len(a.pending)))
	}

	if !e.proof.AddProof(p, sigShare) {
		return ErrReplacedAlreadyInserted
	}
	return nil
}

// PollEvent atomically removes ev from pending and marks it complete,
// returning its accumulated proof bundle. Returns (nil, false) if ev
// was not pending — including if it was already completed, which is a
// logic error on the caller's part (logged, not fatal, per spec.md
// §4.1).
func (a *Accumulator) PollEvent(ev event.AccumulatingEvent) (*proof.AccumulatingProof, bool) {
	key := ev.CacheKey()
	e, ok := a.pending[key]
	if !ok {
		if _, already := a.completed[key]; already {
			log.Warn("poll of an already-completed event", "event", ev.Kind())
		}
		return nil, false
	}

	delete(a.pending, key)
	a.completed[key] = ev
	metricPendingGauge().Gauge(int64(len(a.pending)))
	return e.proof, true
}

// PendingEntry is a read-only (event, proof) pair returned by
// IncompleteEvents.
type PendingEntry struct {
	Event event.AccumulatingEvent
	Proof *proof.AccumulatingProof
}

// IncompleteEvents returns a snapshot of all pending (event, proof)
// pairs, ordered by CacheKey for deterministic iteration (spec.md §6).
func (a *Accumulator) IncompleteEvents() []PendingEntry {
	out := make([]PendingEntry, 0, len(a.pending))
	for _, e := range a.pending {
		out = append(out, PendingEntry{Event: e.event, Proof: e.proof})
	}
	sort.Slice(out, func(i, j int) bool {
		ki, kj := out[i].Event.CacheKey(), out[j].Event.CacheKey()
		for b := 0; b < len(ki); b++ {
			if ki[b] != kj[b] {
				return ki[b] < kj[b]
			}
		}
		return false
	})
	return out
}

// RemainingEvents is the outcome of a reset: the caller's own
// in-flight votes, reconstructed as NetworkEvents ready to re-vote
// into the new epoch, plus the drained completion set so the caller
// can continue suppressing late duplicates of events from before the
// reset.
type RemainingEvents struct {
	CachedEvents    []event.NetworkEvent
	CompletedEvents []event.AccumulatingEvent
}

// ResetAccumulator atomically drains both the pending and completed
// sets (section reconfiguration — spec.md §4.1, §9). For every pending
// event ourID had signed, it reconstructs a NetworkEvent preserving
// our own signature share (if any) so it can be re-voted into the new
// epoch; every other signer's contribution is dropped.
func (a *Accumulator) ResetAccumulator(ourID id.PublicId) RemainingEvents {
	var out RemainingEvents

	for _, e := range a.pending {
		if !e.proof.ContainsSigner(ourID) {
			continue
		}
		var share *proof.SectionInfoSigPayload
		if s, ok := e.proof.SigShareFor(ourID); ok {
			share = &s
		}
		out.CachedEvents = append(out.CachedEvents, event.NetworkEvent{
			Payload:   e.event,
			Signature: share,
		})
	}

	for _, ev := range a.completed {
		out.CompletedEvents = append(out.CompletedEvents, ev)
	}

	a.pending = make(map[event.CacheKey]*entry)
	a.completed = make(map[event.CacheKey]event.AccumulatingEvent)
	metricPendingGauge().Gauge(0)

	return out
}

// Purge drops pending entries older than maxAge as of now, addressing
// the open concern in spec.md §9 that pending events which never
// reach quorum would otherwise accumulate indefinitely. It does not
// touch completed and cannot violate at-most-once delivery, since a
// purged event simply becomes un-pending rather than completed — a
// later proof for it starts a fresh entry.
func (a *Accumulator) Purge(now mclock.AbsTime, maxAge time.Duration) (purged int) {
	for key, e := range a.pending {
		if time.Duration(now-e.insertedAt) > maxAge {
			delete(a.pending, key)
			purged++
		}
	}
	if purged > 0 {
		metricPendingGauge().Gauge(int64(len(a.pending)))
	}
	return
}

// Len returns the number of pending (not yet polled) events.
func (a *Accumulator) Len() int { return len(a.pending) }
