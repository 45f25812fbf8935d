// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package link_test

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sectioncore/overlay/link"
)

func addrOf(srv *httptest.Server) link.ConnInfo {
	return link.ConnInfo{Addr: strings.TrimPrefix(srv.URL, "http://")}
}

func TestTransportConnectAndExchangeMessage(t *testing.T) {
	serverSide := link.NewTransport(link.ConnInfo{}, nil)
	srv := httptest.NewServer(serverSide)
	defer srv.Close()

	clientSide := link.NewTransport(link.ConnInfo{}, nil)
	peer := addrOf(srv)
	clientSide.ConnectTo(peer)

	select {
	case ev := <-clientSide.Events():
		_, ok := ev.(link.ConnectedTo)
		require.True(t, ok, "expected ConnectedTo, got %T", ev)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for ConnectedTo")
	}

	var serverPeer link.ConnInfo
	select {
	case ev := <-serverSide.Events():
		ct, ok := ev.(link.ConnectedTo)
		require.True(t, ok, "expected server-side ConnectedTo, got %T", ev)
		serverPeer = ct.Peer
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for server-side ConnectedTo")
	}

	clientSide.Send(peer, []byte("hello"), 7)

	select {
	case ev := <-serverSide.Events():
		msg, ok := ev.(link.NewMessage)
		require.True(t, ok, "expected NewMessage, got %T", ev)
		assert.Equal(t, []byte("hello"), msg.Bytes)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for NewMessage")
	}

	select {
	case ev := <-clientSide.Events():
		sent, ok := ev.(link.SentUserMessage)
		require.True(t, ok, "expected SentUserMessage, got %T", ev)
		assert.Equal(t, uint64(7), sent.Token)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for SentUserMessage")
	}

	_ = serverPeer
}

func TestTransportSendToUnknownPeerIsUnsent(t *testing.T) {
	tr := link.NewTransport(link.ConnInfo{}, nil)
	tr.Send(link.ConnInfo{Addr: "nowhere:1"}, []byte("x"), 1)

	select {
	case ev := <-tr.Events():
		_, ok := ev.(link.UnsentUserMessage)
		assert.True(t, ok, "expected UnsentUserMessage, got %T", ev)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for UnsentUserMessage")
	}
}

func TestTransportBootstrapWithNoContactsFails(t *testing.T) {
	tr := link.NewTransport(link.ConnInfo{}, link.NewMemContactCache())
	tr.Bootstrap()

	select {
	case ev := <-tr.Events():
		_, ok := ev.(link.BootstrapFailure)
		assert.True(t, ok, "expected BootstrapFailure, got %T", ev)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for BootstrapFailure")
	}
}
