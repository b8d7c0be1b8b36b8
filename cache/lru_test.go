// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLRU(t *testing.T) {
	_, err := NewLRU(0)
	assert.Error(t, err)

	c, err := NewLRU(2)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestLRU_GetOrLoad(t *testing.T) {
	c, err := NewLRU(2)
	require.NoError(t, err)

	loads := 0
	loader := func(key string) ([]byte, error) {
		loads++
		return []byte("v-" + key), nil
	}

	v, err := c.GetOrLoad("a", loader)
	require.NoError(t, err)
	assert.Equal(t, []byte("v-a"), v)

	v, err = c.GetOrLoad("a", loader)
	require.NoError(t, err)
	assert.Equal(t, []byte("v-a"), v)
	assert.Equal(t, 1, loads)

	hit, miss := c.Stats().Counts()
	assert.Equal(t, int64(1), hit)
	assert.Equal(t, int64(1), miss)
	assert.Equal(t, 0.5, c.Stats().HitRate())

	_, err = c.GetOrLoad("b", func(string) ([]byte, error) { return nil, errors.New("boom") })
	assert.Error(t, err)
	assert.Equal(t, 1, c.Len())
}

func TestLRU_Evict(t *testing.T) {
	c, err := NewLRU(2)
	require.NoError(t, err)

	c.Add("a", []byte{1})
	c.Add("b", []byte{2})
	c.Add("c", []byte{3})

	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Remove("b")
	_, ok = c.Get("b")
	assert.False(t, ok)

	c.Purge()
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, float64(0), (&Stats{}).HitRate())
}
