// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package cache holds the read caches sitting in front of the kv stores.
package cache

import lru "github.com/hashicorp/golang-lru"

// LRU caches encoded store values by key, extending golang-lru.
type LRU struct {
	cache *lru.Cache
	stats Stats
}

// NewLRU create a LRU cache instance.
// maxSize should be > 0, or an error returned.
func NewLRU(maxSize int) (*LRU, error) {
	c, err := lru.New(maxSize)
	if err != nil {
		return nil, err
	}
	return &LRU{cache: c}, nil
}

// Loader loads the raw value of a key on cache miss.
type Loader func(key string) ([]byte, error)

// Get returns the cached value of the key.
func (l *LRU) Get(key string) ([]byte, bool) {
	if v, ok := l.cache.Get(key); ok {
		l.stats.Hit()
		return v.([]byte), true
	}
	l.stats.Miss()
	return nil, false
}

// Add caches the value. A nil value records a known-absent key.
func (l *LRU) Add(key string, val []byte) {
	l.cache.Add(key, val)
}

// Remove evicts the key.
func (l *LRU) Remove(key string) {
	l.cache.Remove(key)
}

// Purge evicts everything.
func (l *LRU) Purge() {
	l.cache.Purge()
}

// Len returns the number of cached keys.
func (l *LRU) Len() int {
	return l.cache.Len()
}

// Stats exposes the hit/miss counters.
func (l *LRU) Stats() *Stats {
	return &l.stats
}

// GetOrLoad first try to get from cache, do load if missed.
func (l *LRU) GetOrLoad(key string, loader Loader) ([]byte, error) {
	if v, ok := l.Get(key); ok {
		return v, nil
	}
	v, err := loader(key)
	if err != nil {
		return nil, err
	}

	l.Add(key, v)
	return v, nil
}
