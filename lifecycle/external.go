// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lifecycle

import "github.com/sectioncore/overlay/id"

// ExternalEvent is emitted to the embedding application (spec.md §6):
// Terminated, NodeLost, Connected, and approval notifications.
type ExternalEvent interface {
	externalEvent()
}

// Terminated signals the node has reached the Terminated state and
// will process no further events.
type Terminated struct{}

func (Terminated) externalEvent() {}

// NodeLost reports that a previously known member is no longer
// reachable or trusted.
type NodeLost struct{ Name id.Name }

func (NodeLost) externalEvent() {}

// Connected signals the node successfully bootstrapped and
// established its first connection.
type Connected struct{}

func (Connected) externalEvent() {}

// Approved signals NodeApproval was received and the node has
// transitioned from Joining to Adult.
type Approved struct{}

func (Approved) externalEvent() {}
