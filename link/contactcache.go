// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package link

import (
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// ContactCache persists bootstrap contacts the Link Layer has
// successfully reached before, so a restarting node can bootstrap
// without hard-coded contacts alone (spec.md §6, "bootstrap contacts
// may be cached by the Link Layer"). Adapted from the leveldb engine
// wrapper used throughout the starting tree's storage layer, trimmed
// to the handful of operations a flat contact list needs — no
// snapshots, no batched writes, since contacts are added one at a
// time and read back in bulk on startup.
type ContactCache struct {
	db *leveldb.DB
}

const contactPrefix = "c"

// OpenContactCache opens (creating if absent) a leveldb-backed contact
// cache at dir.
func OpenContactCache(dir string) (*ContactCache, error) {
	db, err := leveldb.OpenFile(dir, &opt.Options{})
	if err != nil {
		return nil, err
	}
	return &ContactCache{db: db}, nil
}

// NewMemContactCache returns a ContactCache backed by an in-memory
// leveldb instance, for tests.
func NewMemContactCache() *ContactCache {
	db, err := leveldb.Open(storage.NewMemStorage(), &opt.Options{})
	if err != nil {
		// leveldb.Open against an in-memory storage never fails.
		panic(err)
	}
	return &ContactCache{db: db}
}

// Remember records peer as a reachable contact.
func (c *ContactCache) Remember(peer ConnInfo) error {
	return c.db.Put(append([]byte(contactPrefix), peer.Addr...), nil, nil)
}

// Forget removes peer from the cache, e.g. after repeated connection
// failures.
func (c *ContactCache) Forget(peer ConnInfo) error {
	return c.db.Delete(append([]byte(contactPrefix), peer.Addr...), nil)
}

// All returns every cached contact, in key (lexical address) order.
func (c *ContactCache) All() ([]ConnInfo, error) {
	iter := c.db.NewIterator(util.BytesPrefix([]byte(contactPrefix)), nil)
	defer iter.Release()

	var out []ConnInfo
	for iter.Next() {
		out = append(out, ConnInfo{Addr: string(iter.Key()[len(contactPrefix):])})
	}
	return out, iter.Error()
}

// Close releases the underlying database handle.
func (c *ContactCache) Close() error {
	return c.db.Close()
}
