// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lifecycle

import lru "github.com/hashicorp/golang-lru"

// routingFilterSize bounds the RoutingMessageFilter's dedup window.
// Sized generously relative to a single section's elder count so
// legitimate gossip retransmissions are not evicted before they'd
// naturally stop arriving.
const routingFilterSize = 4096

// RoutingMessageFilter deduplicates inbound routing messages addressed
// to us, identified by a caller-supplied content hash, so the Joining
// state only dispatches each message once (spec.md §4.3).
type RoutingMessageFilter struct {
	seen *lru.Cache
}

// NewRoutingMessageFilter returns an empty filter.
func NewRoutingMessageFilter() *RoutingMessageFilter {
	c, err := lru.New(routingFilterSize)
	if err != nil {
		// only returns an error for a non-positive size, which
		// routingFilterSize never is.
		panic(err)
	}
	return &RoutingMessageFilter{seen: c}
}

// FilterIncoming reports whether hash has not been seen before,
// recording it either way.
func (f *RoutingMessageFilter) FilterIncoming(hash [32]byte) bool {
	if f.seen.Contains(hash) {
		return false
	}
	f.seen.Add(hash, struct{}{})
	return true
}
