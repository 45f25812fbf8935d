// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package link

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/inconshreveable/log15"
)

var log = log15.New("pkg", "link")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// WriteTimeout bounds how long a single Send blocks on the underlying
// socket before it is treated as an UnsentUserMessage.
const WriteTimeout = 10 * time.Second

// Transport is a concrete Layer backed by WebSocket connections
// (spec.md §6 names QUIC/WebSockets as the realistic transport choice
// for a production Link Layer, while keeping the core agnostic to
// which one is used). One Transport serves exactly one node: it
// accepts inbound connections on ListenAndServe's handler and dials
// outbound ones via ConnectTo/Bootstrap.
type Transport struct {
	self     ConnInfo
	contacts *ContactCache

	mu    sync.Mutex
	conns map[ConnInfo]*websocket.Conn

	events chan Event
}

var _ Layer = (*Transport)(nil)

// NewTransport returns a Transport identifying itself as self and
// persisting bootstrap contacts to cache (may be nil to disable
// persistence).
func NewTransport(self ConnInfo, cache *ContactCache) *Transport {
	return &Transport{
		self:     self,
		contacts: cache,
		conns:    make(map[ConnInfo]*websocket.Conn),
		events:   make(chan Event, 256),
	}
}

// Events implements Layer.
func (t *Transport) Events() <-chan Event { return t.events }

// ServeHTTP upgrades an inbound dial into a tracked connection. Mount
// this at the Link Layer's listen address (cmd/sectiond wires it under
// e.g. "/p2p").
func (t *Transport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", "err", err)
		return
	}
	peer := ConnInfo{Addr: r.RemoteAddr}
	t.adopt(peer, conn)
	t.events <- ConnectedTo{Peer: peer}
	go t.readLoop(peer, conn)
}

func (t *Transport) adopt(peer ConnInfo, conn *websocket.Conn) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.conns[peer] = conn
}

func (t *Transport) readLoop(peer ConnInfo, conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.drop(peer)
			t.events <- ConnectionFailure{Peer: peer, Err: err}
			return
		}
		t.events <- NewMessage{Peer: peer, Bytes: data}
	}
}

func (t *Transport) drop(peer ConnInfo) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if conn, ok := t.conns[peer]; ok {
		conn.Close()
		delete(t.conns, peer)
	}
}

// ConnectTo implements Layer: dials peer over WebSocket.
func (t *Transport) ConnectTo(peer ConnInfo) {
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+peer.Addr+"/p2p", nil)
	if err != nil {
		t.events <- ConnectionFailure{Peer: peer, Err: err}
		return
	}
	t.adopt(peer, conn)
	if t.contacts != nil {
		if err := t.contacts.Remember(peer); err != nil {
			log.Warn("failed to persist contact", "peer", peer, "err", err)
		}
	}
	t.events <- ConnectedTo{Peer: peer}
	go t.readLoop(peer, conn)
}

// Bootstrap implements Layer: tries every cached contact in order,
// falling back to BootstrapFailure once the cache is exhausted.
func (t *Transport) Bootstrap() {
	var contacts []ConnInfo
	if t.contacts != nil {
		if c, err := t.contacts.All(); err == nil {
			contacts = c
		}
	}
	for _, c := range contacts {
		conn, _, err := websocket.DefaultDialer.Dial("ws://"+c.Addr+"/p2p", nil)
		if err != nil {
			if t.contacts != nil {
				_ = t.contacts.Forget(c)
			}
			continue
		}
		t.adopt(c, conn)
		t.events <- BootstrappedTo{Peer: c}
		go t.readLoop(c, conn)
		return
	}
	t.events <- BootstrapFailure{}
}

// DisconnectFrom implements Layer.
func (t *Transport) DisconnectFrom(peer ConnInfo) {
	t.drop(peer)
}

// Send implements Layer.
func (t *Transport) Send(peer ConnInfo, payload []byte, token uint64) {
	t.mu.Lock()
	conn, ok := t.conns[peer]
	t.mu.Unlock()
	if !ok {
		t.events <- UnsentUserMessage{Peer: peer, Bytes: payload, Token: token}
		return
	}
	conn.SetWriteDeadline(time.Now().Add(WriteTimeout))
	if err := conn.WriteMessage(websocket.BinaryMessage, payload); err != nil {
		t.events <- UnsentUserMessage{Peer: peer, Bytes: payload, Token: token}
		return
	}
	t.events <- SentUserMessage{Peer: peer, Bytes: payload, Token: token}
}

// Close shuts down every tracked connection and emits Finish.
func (t *Transport) Close() {
	t.mu.Lock()
	for peer, conn := range t.conns {
		conn.Close()
		delete(t.conns, peer)
	}
	t.mu.Unlock()
	t.events <- Finish{}
}
