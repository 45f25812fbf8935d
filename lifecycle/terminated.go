// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lifecycle

import (
	"github.com/sectioncore/overlay/id"
	"github.com/sectioncore/overlay/link"
)

// TerminatedState is the terminal state (spec.md §4.3.4): reached after a
// failed bootstrap or an explicit shutdown, it processes no further
// events. Entering it is announced by the Terminated external event.
type TerminatedState struct {
	*shared
}

var _ State = (*TerminatedState)(nil)

// NewTerminated constructs the terminal state.
func NewTerminated(sh *shared) *TerminatedState { return &TerminatedState{shared: sh} }

func (*TerminatedState) Kind() Kind                    { return KindTerminated }
func (*TerminatedState) sealed()                       {}
func (*TerminatedState) SectionMembers() []id.PublicId { return nil }

// HandleLinkEvent drops every event; Terminated never transitions out.
func (*TerminatedState) HandleLinkEvent(link.Event) Result { return stay() }

// HandleTimeout drops every timeout; Terminated never transitions out.
func (*TerminatedState) HandleTimeout(Token) Result { return stay() }
