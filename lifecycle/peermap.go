// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lifecycle

import "github.com/sectioncore/overlay/link"

// PeerMap tracks every connection currently open at the Link Layer,
// independent of which lifecycle state owns it.
type PeerMap struct {
	conns map[link.ConnInfo]struct{}
}

// NewPeerMap returns an empty PeerMap.
func NewPeerMap() *PeerMap {
	return &PeerMap{conns: make(map[link.ConnInfo]struct{})}
}

// Connect records peer as connected.
func (m *PeerMap) Connect(peer link.ConnInfo) {
	m.conns[peer] = struct{}{}
}

// Disconnect forgets peer, reporting whether it was present.
func (m *PeerMap) Disconnect(peer link.ConnInfo) bool {
	if _, ok := m.conns[peer]; !ok {
		return false
	}
	delete(m.conns, peer)
	return true
}

// Connected reports whether peer is currently tracked as connected.
func (m *PeerMap) Connected(peer link.ConnInfo) bool {
	_, ok := m.conns[peer]
	return ok
}

// Len returns the number of tracked connections.
func (m *PeerMap) Len() int { return len(m.conns) }

// RemoveAll clears the map and returns every peer that was in it, for
// a bulk disconnect (e.g. Joining's attempt exhaustion, spec.md §4.3).
func (m *PeerMap) RemoveAll() []link.ConnInfo {
	out := make([]link.ConnInfo, 0, len(m.conns))
	for c := range m.conns {
		out = append(out, c)
	}
	m.conns = make(map[link.ConnInfo]struct{})
	return out
}
