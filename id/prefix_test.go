// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package id_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sectioncore/overlay/id"
)

func TestPrefixMatches(t *testing.T) {
	var name id.Name
	name[0] = 0b11000000
	p := id.NewPrefix(name, 2)
	assert.True(t, p.Matches(name))

	var other id.Name
	other[0] = 0b11100000
	assert.True(t, p.Matches(other), "shares the first 2 bits")

	var mismatch id.Name
	mismatch[0] = 0b00000000
	assert.False(t, p.Matches(mismatch))
}

func TestPrefixRootMatchesEverything(t *testing.T) {
	root := id.NewPrefix(id.Name{}, 0)
	a := id.NewTestPublicId(1).Name()
	b := id.NewTestPublicId(9).Name()
	assert.True(t, root.Matches(a))
	assert.True(t, root.Matches(b))
}

func TestPrefixIsCompatible(t *testing.T) {
	var name id.Name
	name[0] = 0b10100000
	parent := id.NewPrefix(name, 2)
	child := id.NewPrefix(name, 4)
	assert.True(t, parent.IsCompatible(child))
	assert.True(t, child.IsCompatible(parent))

	var unrelatedName id.Name
	unrelatedName[0] = 0b01000000
	unrelated := id.NewPrefix(unrelatedName, 2)
	assert.False(t, parent.IsCompatible(unrelated))
}

func TestPrefixSiblings(t *testing.T) {
	var name id.Name
	name[0] = 0b10100000
	p := id.NewPrefix(name, 3)
	sib := p.Sibling()
	assert.True(t, p.IsSibling(sib))
	assert.False(t, p.IsSibling(p))
	assert.True(t, sib.IsSibling(p))
}

func TestPrefixPushBit(t *testing.T) {
	root := id.NewPrefix(id.Name{}, 0)
	left := root.PushBit(false)
	right := root.PushBit(true)
	assert.Equal(t, uint(1), left.Len())
	assert.True(t, left.IsSibling(right))
}

func TestPrefixEqual(t *testing.T) {
	var name id.Name
	name[0] = 0b11000000
	a := id.NewPrefix(name, 2)
	b := id.NewPrefix(name, 2)
	assert.True(t, a.Equal(b))

	c := id.NewPrefix(name, 3)
	assert.False(t, a.Equal(c))
}
