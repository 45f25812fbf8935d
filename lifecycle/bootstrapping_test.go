// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lifecycle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sectioncore/overlay/event"
	"github.com/sectioncore/overlay/id"
	"github.com/sectioncore/overlay/lifecycle"
	"github.com/sectioncore/overlay/link"
	"github.com/sectioncore/overlay/linktest"
)

// TestBootstrapLoseProxyThenTerminate is spec.md §8 S5: a node in
// Bootstrapping connects to a proxy, the proxy dies while no other
// contacts remain, and the Link Layer's resulting BootstrapFailure
// drives the node to Terminated.
func TestBootstrapLoseProxyThenTerminate(t *testing.T) {
	net := linktest.New()
	net.SetHardCodedContacts("proxy")
	self := net.NewPeer("self", nil)
	net.NewPeer("proxy", nil)

	sh := lifecycle.NewShared(id.NewTestPublicId(1), self)
	b := lifecycle.NewBootstrapping(sh, nil, nil)

	ev := <-self.Events()
	bootstrapped, ok := ev.(link.BootstrappedTo)
	require.True(t, ok, "expected BootstrappedTo, got %T", ev)

	res := b.HandleLinkEvent(bootstrapped)
	assert.Nil(t, res.Next, "accepting the bootstrap connection does not yet transition")
	require.Len(t, res.External, 1)
	_, isConnected := res.External[0].(lifecycle.Connected)
	assert.True(t, isConnected, "adopting the bootstrap target must emit the external Connected event")

	// The proxy dies. The Link Layer observes this as a ConnectionFailure
	// for our active bootstrap peer; with no other contacts queued,
	// Bootstrapping must retry Bootstrap() against the (now-gone) proxy.
	net.Remove("proxy")
	res = b.HandleLinkEvent(link.ConnectionFailure{Peer: bootstrapped.Peer})
	assert.Nil(t, res.Next, "losing the proxy triggers a rebootstrap, not an immediate transition")

	// The SentUserMessage confirmation for the earlier bootstrap request
	// is still queued ahead of the failure; feed everything through the
	// state until the BootstrapFailure surfaces.
	var ev2 link.Event
	for i := 0; i < 4; i++ {
		ev2 = <-self.Events()
		if _, isFailure := ev2.(link.BootstrapFailure); isFailure {
			break
		}
		require.Nil(t, b.HandleLinkEvent(ev2).Next)
	}
	_, ok = ev2.(link.BootstrapFailure)
	require.True(t, ok, "no contacts left: Link Layer must report BootstrapFailure, got %T", ev2)

	res2 := b.HandleLinkEvent(ev2)
	require.NotNil(t, res2.Next)
	assert.Equal(t, lifecycle.KindTerminated, res2.Next.Kind())
	require.Len(t, res2.External, 1)
	_, ok = res2.External[0].(lifecycle.Terminated)
	assert.True(t, ok, "must emit the external Terminated lifecycle event")
}

// TestBootstrapSecondConnectionDropped checks that once a bootstrap
// target is adopted, a second concurrent connection to a different
// peer is dropped rather than replacing it (spec.md §4.3).
func TestBootstrapSecondConnectionDropped(t *testing.T) {
	net := linktest.New()
	self := net.NewPeer("self", nil)
	net.NewPeer("a", nil)
	net.NewPeer("b", nil)

	sh := lifecycle.NewShared(id.NewTestPublicId(1), self)
	b := lifecycle.NewBootstrapping(sh, nil, nil)

	res := b.HandleLinkEvent(link.ConnectedTo{Peer: link.ConnInfo{Addr: "a"}})
	assert.Nil(t, res.Next)
	assert.Len(t, res.External, 1, "first adopted connection emits Connected")

	// second, different peer: must be dropped, not adopted.
	res = b.HandleLinkEvent(link.ConnectedTo{Peer: link.ConnInfo{Addr: "b"}})
	assert.Nil(t, res.Next)
	assert.Empty(t, res.External, "a dropped connection emits nothing")
}

// TestJoinApprovalTransitionsToAdult covers the happy path: Joining
// receives NodeApproval and moves to Adult, carrying its backlog.
func TestJoinApprovalTransitionsToAdult(t *testing.T) {
	net := linktest.New()
	selfLink := net.NewPeer("self", nil)
	contact := net.NewPeer("contact", nil)

	selfID := id.NewTestPublicId(1)
	sh := lifecycle.NewShared(selfID, selfLink)
	j := lifecycle.NewJoining(sh, []link.ConnInfo{contact.ConnInfo()}, nil, nil)

	info := event.EldersInfo{
		Prefix:  id.NewPrefix(id.Name{}, 0),
		Version: 1,
		Elders:  []id.PublicId{id.NewTestPublicId(2), id.NewTestPublicId(3)},
	}
	approval := lifecycle.NewNodeApproval(info)
	msg, err := lifecycle.EncodeMessage(approval)
	require.NoError(t, err)

	res := j.HandleLinkEvent(link.NewMessage{Peer: contact.ConnInfo(), Bytes: msg})
	require.NotNil(t, res.Next)
	assert.Equal(t, lifecycle.KindAdult, res.Next.Kind())
	require.Len(t, res.External, 1)
	_, ok := res.External[0].(lifecycle.Approved)
	assert.True(t, ok)
}
