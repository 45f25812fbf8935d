// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lifecycle

import "github.com/pkg/errors"

// Conditions the state machine detects while maintaining its view of
// the section (spec.md §7). None of these propagate: each is either
// auto-corrected (identity regeneration, rebootstrap) or logged and
// ignored at the site that detects it.
var (
	// ErrOwnNameDisallowed reports that our own name lies outside the
	// section we were directed to join; corrected by regenerating the
	// identity inside the target prefix.
	ErrOwnNameDisallowed = errors.New("lifecycle: own name outside target section")

	// ErrPeerNameUnsuitable reports a peer-supplied section snapshot
	// that does not cover our name.
	ErrPeerNameUnsuitable = errors.New("lifecycle: peer section does not cover our name")

	// ErrAlreadyExists reports an agreed membership addition naming a
	// peer already present.
	ErrAlreadyExists = errors.New("lifecycle: member already present")

	// ErrNoSuchPeer reports an agreed membership removal naming a peer
	// we do not know.
	ErrNoSuchPeer = errors.New("lifecycle: no such member")

	// ErrCannotRoute reports a message the Link Layer could not
	// deliver.
	ErrCannotRoute = errors.New("lifecycle: cannot route message")

	// ErrInvariantViolation reports an agreed section snapshot that
	// would move the section version backwards.
	ErrInvariantViolation = errors.New("lifecycle: section invariant violated")
)
