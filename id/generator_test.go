// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package id

import "testing"

func TestGenerateMatchingRootPrefixAlwaysSucceeds(t *testing.T) {
	root := NewPrefix(Name{}, 0)
	pid, _, attempts, ok := generateMatching(root, 10)
	if !ok {
		t.Fatalf("root prefix must match on the first attempt")
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt against the root prefix, got %d", attempts)
	}
	if !root.Matches(pid.Name()) {
		t.Fatalf("generated identity does not match the requested prefix")
	}
}

func TestGenerateMatchingBoundsAttempts(t *testing.T) {
	var bits Name
	bits[0] = 0xFF
	narrow := NewPrefix(bits, 8)
	if _, _, attempts, ok := generateMatching(narrow, 3); !ok && attempts != 3 {
		t.Fatalf("expected exactly maxAttempts tries on exhaustion, got %d", attempts)
	}
}
