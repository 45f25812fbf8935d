// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package status is the read-only status/health surface cmd/sectiond
// exposes, adapted from the teacher's api/blocks (Mount-onto-a-
// sub-router idiom) and api/utils (HandlerFunc/WriteJSON helpers).
package status

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/sectioncore/overlay/accumulator"
	"github.com/sectioncore/overlay/api/utils"
	"github.com/sectioncore/overlay/lifecycle"
)

// Status reports the current lifecycle state and accumulator depth of
// the node it is mounted against.
type Status struct {
	machine *lifecycle.Machine
	acc     *accumulator.Accumulator
}

// New builds a Status handler bundle.
func New(m *lifecycle.Machine, acc *accumulator.Accumulator) *Status {
	return &Status{machine: m, acc: acc}
}

type statusResponse struct {
	State          string `json:"state"`
	PendingEvents  int    `json:"pendingEvents"`
	SectionMembers int    `json:"sectionMembers"`
}

func (s *Status) handleStatus(w http.ResponseWriter, _ *http.Request) error {
	state := s.machine.State()
	return utils.WriteJSON(w, statusResponse{
		State:          state.Kind().String(),
		PendingEvents:  s.acc.Len(),
		SectionMembers: len(state.SectionMembers()),
	})
}

// handleHealthz reports 200 as long as the node has not terminated;
// a Terminated node answers 503 so a process supervisor can restart it.
func (s *Status) handleHealthz(w http.ResponseWriter, _ *http.Request) error {
	if s.machine.State().Kind() == lifecycle.KindTerminated {
		return utils.HTTPError(nil, http.StatusServiceUnavailable)
	}
	return utils.WriteJSON(w, utils.M{"ok": true})
}

// Mount registers the status and health endpoints under pathPrefix.
func (s *Status) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()
	sub.Path("/status").Methods("GET").HandlerFunc(
		utils.MetricsWrapHandlerFunc(pathPrefix, "/status", s.handleStatus))
	sub.Path("/healthz").Methods("GET").HandlerFunc(
		utils.MetricsWrapHandlerFunc(pathPrefix, "/healthz", s.handleHealthz))
}
