// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package link_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sectioncore/overlay/link"
)

func TestContactCacheRememberAndAll(t *testing.T) {
	c := link.NewMemContactCache()
	defer c.Close()

	require.NoError(t, c.Remember(link.ConnInfo{Addr: "b.example:1"}))
	require.NoError(t, c.Remember(link.ConnInfo{Addr: "a.example:1"}))

	all, err := c.All()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "a.example:1", all[0].Addr, "contacts come back in key order")
	assert.Equal(t, "b.example:1", all[1].Addr)
}

func TestContactCacheForget(t *testing.T) {
	c := link.NewMemContactCache()
	defer c.Close()

	peer := link.ConnInfo{Addr: "flaky.example:1"}
	require.NoError(t, c.Remember(peer))
	require.NoError(t, c.Forget(peer))

	all, err := c.All()
	require.NoError(t, err)
	assert.Empty(t, all)
}
