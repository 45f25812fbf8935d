// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lifecycle

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common/mclock"
	gethevent "github.com/ethereum/go-ethereum/event"

	"github.com/sectioncore/overlay/accumulator"
	"github.com/sectioncore/overlay/agreement"
	"github.com/sectioncore/overlay/event"
	"github.com/sectioncore/overlay/link"
	"github.com/sectioncore/overlay/proof"
	"github.com/sectioncore/overlay/telemetry"
)

var metricTransitionCount = telemetry.LazyLoad(func() telemetry.CountVecMeter {
	return telemetry.CounterVec("lifecycle_transition_count", []string{"to"})()
})

// pollInterval is how often the driver loop checks for expired timer
// tokens and drains newly consensused observations, since neither the
// Timer nor the Agreement Engine notify on a channel of their own.
const pollInterval = 100 * time.Millisecond

// purgeInterval and purgeMaxAge bound how long an event may sit
// pending without reaching quorum before the accumulator drops it
// (spec.md §9, accumulator.Accumulator.Purge).
const (
	purgeInterval = 30 * time.Second
	purgeMaxAge   = 10 * time.Minute
)

// Machine is the single-threaded driver loop that owns the current
// lifecycle State, the chain accumulator, the Agreement Engine, and
// the Link Layer connection (spec.md §5): exactly one goroutine calls
// Run, and every mutation of the owned components happens from inside
// it. Not thread-safe, same discipline as package lifecycle itself.
type Machine struct {
	state State
	acc   *accumulator.Accumulator
	eng   agreement.Engine
	ln    link.Layer

	feed gethevent.Feed

	quorumFrac uint8

	lastPurge  mclock.AbsTime
	lastGossip mclock.AbsTime
}

// NewMachine wires together an already-constructed initial state (see
// NewBootstrapping/NewRelocating) with its accumulator and Agreement
// Engine collaborators.
func NewMachine(initial State, acc *accumulator.Accumulator, eng agreement.Engine) *Machine {
	return &Machine{state: initial, acc: acc, eng: eng, ln: initial.Link(), lastPurge: mclock.Now()}
}

// State returns the currently active lifecycle state.
func (m *Machine) State() State { return m.state }

// SetQuorumFraction overrides the simple-majority default for
// ordinary agreements with ceil(len(elders) * frac / 256) proofs.
// Zero keeps the default; SendAckMessage's unanimity requirement is
// unaffected either way.
func (m *Machine) SetQuorumFraction(frac uint8) { m.quorumFrac = frac }

// SubscribeExternal registers ch to receive ExternalEvents emitted by
// state transitions (spec.md §6), e.g. for an embedding application's
// own event loop.
func (m *Machine) SubscribeExternal(ch chan<- ExternalEvent) gethevent.Subscription {
	return m.feed.Subscribe(ch)
}

// Run drives the state machine until ctx is cancelled.
func (m *Machine) Run(ctx context.Context) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-m.ln.Events():
			if !ok {
				return
			}
			m.dispatch(m.state.HandleLinkEvent(ev))

		case <-ticker.C:
			m.tick()
		}
	}
}

func (m *Machine) tick() {
	now := mclock.Now()
	for _, tok := range m.state.Timer().Poll(now) {
		m.dispatch(m.state.HandleTimeout(tok))
	}

	if now-m.lastPurge > mclock.AbsTime(purgeInterval) {
		if n := m.acc.Purge(now, purgeMaxAge); n > 0 {
			log.Debug("purged stale pending events", "count", n)
		}
		m.lastPurge = now
	}

	if _, inSection := m.state.(*Adult); inSection && now-m.lastGossip > mclock.AbsTime(GossipPokeInterval) {
		m.eng.Poke()
		m.lastGossip = now
	}

	m.driveAdult()
}

// dispatch installs a state transition and publishes any external
// events it produced, in the order the transition occurred.
func (m *Machine) dispatch(r Result) {
	for _, ext := range r.External {
		m.feed.Send(ext)
	}
	if r.Next != nil {
		m.state = r.Next
		m.ln = r.Next.Link()
		metricTransitionCount().AddWithLabel(1, map[string]string{"to": r.Next.Kind().String()})
	}
}

// driveAdult feeds opaque routing messages accepted by an Adult/Elder
// state into the Agreement Engine as votes, and folds back whatever
// the engine has since consensused. Only meaningful while in
// Adult/Elder; a no-op otherwise (spec.md §4.3 point 3: Adult/Elder's
// operation is driven entirely by accumulator-polled events).
func (m *Machine) driveAdult() {
	adult, ok := m.state.(*Adult)
	if !ok {
		return
	}

	for _, raw := range adult.DrainOpaqueMessages() {
		ne := event.NetworkEvent{Payload: event.User{Payload: raw}}
		m.eng.Vote(ne.IntoObservation())
	}

	for _, ag := range m.eng.Consensused() {
		ev, sig := event.FromObservation(ag.Observation)
		for _, signer := range ag.Signers {
			if err := m.acc.AddProof(ev, proof.Proof{Signer: signer}, sig); err != nil {
				log.Debug("accumulator rejected consensused event", "err", err)
			}
		}
	}

	for _, pe := range m.acc.IncompleteEvents() {
		if !pe.Proof.HasQuorum(quorumFor(pe.Event, adult.info, m.quorumFrac)) {
			continue
		}
		if _, ok := m.acc.PollEvent(pe.Event); !ok {
			continue
		}
		for _, ext := range adult.ApplyAccumulated(pe.Event) {
			m.feed.Send(ext)
		}
	}
}

// quorumFor returns the proof-count threshold ev must clear before
// Adult/Elder treats it as agreed: unanimous for SendAckMessage
// (spec.md §4.2); otherwise a simple majority of the elder set, or
// ceil(len(elders) * frac / 256) when a non-zero fraction override is
// configured.
func quorumFor(ev event.AccumulatingEvent, info event.EldersInfo, frac uint8) int {
	if ev.Kind() == event.KindSendAckMessage {
		return len(info.Elders)
	}
	if frac > 0 {
		q := (len(info.Elders)*int(frac) + 255) / 256
		if q < 1 {
			q = 1
		}
		return q
	}
	return info.Quorum()
}
