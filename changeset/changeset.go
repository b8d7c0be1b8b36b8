// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package changeset holds the ordered set of entities touched by one transaction.
package changeset

// Entry is one touched entity: its id, its snapshot before the transaction
// (nil if created by it) and its pending changes.
type Entry[K comparable, E any, D any] struct {
	ID      K
	Entity  E
	Changes D
}

// ChangeSet is ordered and append only: an index, once handed out, always
// refers to the same entry, so it may grow while being iterated.
type ChangeSet[K comparable, E any, D any] struct {
	entries []Entry[K, E, D]
	index   map[K]int
}

// New returns an empty change set with room for capacity entries.
func New[K comparable, E any, D any](capacity int) *ChangeSet[K, E, D] {
	return &ChangeSet[K, E, D]{
		entries: make([]Entry[K, E, D], 0, capacity),
		index:   make(map[K]int, capacity),
	}
}

func (cs *ChangeSet[K, E, D]) Size() int { return len(cs.entries) }

func (cs *ChangeSet[K, E, D]) ID(i int) K { return cs.entries[i].ID }

func (cs *ChangeSet[K, E, D]) Entity(i int) E { return cs.entries[i].Entity }

func (cs *ChangeSet[K, E, D]) Changes(i int) D { return cs.entries[i].Changes }

// Index returns the index of id, if present.
func (cs *ChangeSet[K, E, D]) Index(id K) (int, bool) {
	i, ok := cs.index[id]
	return i, ok
}

// Include appends an entry and returns its index. An id already present
// keeps its original entry and index.
func (cs *ChangeSet[K, E, D]) Include(id K, entity E, changes D) int {
	if i, ok := cs.index[id]; ok {
		return i
	}
	cs.entries = append(cs.entries, Entry[K, E, D]{ID: id, Entity: entity, Changes: changes})
	i := len(cs.entries) - 1
	cs.index[id] = i
	return i
}

// FindOrAdd returns the index of id, appending the entry built by load if absent.
func (cs *ChangeSet[K, E, D]) FindOrAdd(id K, load func(K) (E, D, error)) (int, error) {
	if i, ok := cs.index[id]; ok {
		return i, nil
	}
	entity, changes, err := load(id)
	if err != nil {
		return -1, err
	}
	return cs.Include(id, entity, changes), nil
}

// Clear empties the change set, keeping its capacity.
func (cs *ChangeSet[K, E, D]) Clear() {
	clear(cs.entries)
	cs.entries = cs.entries[:0]
	clear(cs.index)
}
