// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package changeset

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

type diff struct{ delta int }

func TestChangeSet_IncludeAndFind(t *testing.T) {
	cs := New[uint64, string, *diff](2)
	assert.Equal(t, 0, cs.Size())

	assert.Equal(t, 0, cs.Include(10, "ten", &diff{1}))
	assert.Equal(t, 1, cs.Include(20, "twenty", &diff{2}))
	assert.Equal(t, 0, cs.Include(10, "again", &diff{3}))

	assert.Equal(t, 2, cs.Size())
	assert.Equal(t, uint64(20), cs.ID(1))
	assert.Equal(t, "ten", cs.Entity(0))
	assert.Equal(t, 1, cs.Changes(0).delta)

	cs.Changes(1).delta = 5
	assert.Equal(t, 5, cs.Changes(1).delta)

	loads := 0
	load := func(id uint64) (string, *diff, error) {
		loads++
		return "loaded", &diff{}, nil
	}
	i, err := cs.FindOrAdd(20, load)
	require.NoError(t, err)
	assert.Equal(t, 1, i)
	assert.Equal(t, 0, loads)

	i, err = cs.FindOrAdd(30, load)
	require.NoError(t, err)
	assert.Equal(t, 2, i)
	assert.Equal(t, "loaded", cs.Entity(2))

	_, err = cs.FindOrAdd(40, func(uint64) (string, *diff, error) { return "", nil, errors.New("boom") })
	assert.Error(t, err)
	assert.Equal(t, 3, cs.Size())

	cs.Clear()
	assert.Equal(t, 0, cs.Size())
	_, ok := cs.Index(10)
	assert.False(t, ok)
}

func TestChangeSet_GrowWhileIterating(t *testing.T) {
	cs := New[int, int, *diff](1)
	cs.Include(1, 1, &diff{})

	// each entry below 8 enrolls its double
	for i := 0; i < cs.Size(); i++ {
		id := cs.ID(i)
		if id < 8 {
			_, err := cs.FindOrAdd(id*2, func(k int) (int, *diff, error) { return k, &diff{}, nil })
			require.NoError(t, err)
		}
	}
	var ids []int
	for i := 0; i < cs.Size(); i++ {
		ids = append(ids, cs.ID(i))
	}
	assert.Equal(t, []int{1, 2, 4, 8}, ids)
}

func TestChangeSet_AppendOnly(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cs := New[int, int, *diff](0)
		ops := rapid.SliceOf(rapid.IntRange(0, 20)).Draw(t, "ids")

		var order []int
		seen := map[int]bool{}
		for _, id := range ops {
			before := make([]int, cs.Size())
			for i := range before {
				before[i] = cs.ID(i)
			}
			_, err := cs.FindOrAdd(id, func(k int) (int, *diff, error) { return k, &diff{}, nil })
			if err != nil {
				t.Fatal(err)
			}
			for i, prev := range before {
				if cs.ID(i) != prev {
					t.Fatalf("entry %d moved from %d to %d", i, prev, cs.ID(i))
				}
			}
			if !seen[id] {
				seen[id] = true
				order = append(order, id)
			}
		}
		if cs.Size() != len(order) {
			t.Fatalf("size %d, want %d", cs.Size(), len(order))
		}
		for i, id := range order {
			if cs.ID(i) != id {
				t.Fatalf("index %d holds %d, want %d", i, cs.ID(i), id)
			}
		}
	})
}
