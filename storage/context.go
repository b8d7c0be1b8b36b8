// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package storage provides typed maps over a kv store, buffered in an
// overlay that is committed or reverted as a whole.
package storage

import (
	"github.com/pkg/errors"

	"github.com/stakeledger/ledger/cache"
	"github.com/stakeledger/ledger/kv"
	"github.com/stakeledger/ledger/log"
	"github.com/stakeledger/ledger/metrics"
)

var (
	logger = log.WithContext("pkg", "storage")

	metricCommitWrites = metrics.LazyLoadHistogram("storage_commit_writes", metrics.BucketChangeSetSize)
	metricCacheLookups = metrics.LazyLoadCounterVec("storage_cache_lookups_total", []string{"result"})
)

type table interface {
	name() string
	dirtyLen() int
	flush(bulk kv.Bulk) error
	committed(c *cache.LRU)
	reset()
}

// Context is the overlay shared by all mappings of one ledger. Writes made
// through any of its mappings stay pending until Commit.
type Context struct {
	store  kv.Store
	cache  *cache.LRU
	tables []table
}

// NewContext creates a context over store. A cacheSize of 0 disables the read cache.
func NewContext(store kv.Store, cacheSize int) (*Context, error) {
	c := &Context{store: store}
	if cacheSize > 0 {
		lru, err := cache.NewLRU(cacheSize)
		if err != nil {
			return nil, errors.Wrap(err, "create read cache")
		}
		c.cache = lru
	}
	return c, nil
}

func (c *Context) register(t table) {
	for _, existing := range c.tables {
		if existing.name() == t.name() {
			panic("storage: duplicate mapping " + t.name())
		}
	}
	c.tables = append(c.tables, t)
}

// Dirty returns the number of pending entries across all mappings.
func (c *Context) Dirty() int {
	n := 0
	for _, t := range c.tables {
		n += t.dirtyLen()
	}
	return n
}

// Commit writes every pending entry in one batch.
func (c *Context) Commit() error {
	bulk := c.store.Bulk()
	for _, t := range c.tables {
		if err := t.flush(bulk); err != nil {
			return errors.Wrapf(err, "flush %s", t.name())
		}
	}
	writes := bulk.Len()
	if writes > 0 {
		if err := bulk.Write(); err != nil {
			return errors.Wrap(err, "write batch")
		}
	}
	for _, t := range c.tables {
		t.committed(c.cache)
		t.reset()
	}
	metricCommitWrites().Observe(int64(writes))
	logger.Trace("committed storage overlay", "writes", writes)
	return nil
}

// Revert discards every pending entry.
func (c *Context) Revert() {
	for _, t := range c.tables {
		t.reset()
	}
}

// CacheStats returns the read cache counters, nil when caching is off.
func (c *Context) CacheStats() *cache.Stats {
	if c.cache == nil {
		return nil
	}
	return c.cache.Stats()
}

// loadRaw reads the committed value of key, nil if absent.
func (c *Context) loadRaw(getter kv.Getter, cacheKey string, key []byte) ([]byte, error) {
	load := func(string) ([]byte, error) {
		raw, err := getter.Get(key)
		if err != nil {
			if getter.IsNotFound(err) {
				return nil, nil
			}
			return nil, err
		}
		return raw, nil
	}
	if c.cache == nil {
		return load(cacheKey)
	}
	if raw, ok := c.cache.Get(cacheKey); ok {
		metricCacheLookups().AddWithLabel(1, map[string]string{"result": "hit"})
		return raw, nil
	}
	metricCacheLookups().AddWithLabel(1, map[string]string{"result": "miss"})
	raw, err := load(cacheKey)
	if err != nil {
		return nil, err
	}
	c.cache.Add(cacheKey, raw)
	return raw, nil
}
