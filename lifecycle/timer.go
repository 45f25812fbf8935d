// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lifecycle

import (
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/common/mclock"
)

// Token is a monotonically increasing timer handle (spec.md §5).
type Token uint64

// Timer issues monotonic tokens and reports which have expired as of
// a given instant. It implements the stale-token-safety invariant
// (spec.md §8, invariant 6): a state "cancels" a wait simply by
// overwriting its own stored token with a freshly scheduled one —
// Poll still reports the overwritten token once its deadline passes,
// but the state no longer holds it, so that firing matches nothing
// and is ignored.
type Timer struct {
	next     Token
	deadline map[Token]mclock.AbsTime
}

// NewTimer returns an empty Timer.
func NewTimer() *Timer {
	return &Timer{deadline: make(map[Token]mclock.AbsTime)}
}

// Schedule books a new token expiring d after now.
func (t *Timer) Schedule(now mclock.AbsTime, d time.Duration) Token {
	t.next++
	tok := t.next
	t.deadline[tok] = now + mclock.AbsTime(d)
	return tok
}

// Cancel forgets tok. A no-op if tok already expired or was never
// scheduled; provided so callers can reclaim memory instead of
// relying solely on Poll to reap a stale entry.
func (t *Timer) Cancel(tok Token) {
	delete(t.deadline, tok)
}

// Poll returns every token whose deadline is at or before now, in
// ascending token order, removing them from the timer.
func (t *Timer) Poll(now mclock.AbsTime) []Token {
	var expired []Token
	for tok, dl := range t.deadline {
		if dl <= now {
			expired = append(expired, tok)
		}
	}
	sort.Slice(expired, func(i, j int) bool { return expired[i] < expired[j] })
	for _, tok := range expired {
		delete(t.deadline, tok)
	}
	return expired
}
