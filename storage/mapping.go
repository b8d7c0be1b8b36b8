// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"encoding/binary"
	"sort"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/stakeledger/ledger/cache"
	"github.com/stakeledger/ledger/kv"
)

type Key interface {
	Bytes() []byte
}

type entry[V any] struct {
	key     []byte
	value   *V // nil once deleted
	existed bool
	raw     []byte
}

// Mapping is a typed map stored under its own bucket, with values RLP encoded.
// Values handed out by Get and GetForModify are pointers; GetForModify and Put
// track the pointer so later mutations through it are committed.
type Mapping[K Key, V any] struct {
	ctx    *Context
	label  string
	values kv.Bucket
	meta   []byte
	dirty  map[string]*entry[V]
}

// NewMapping creates the mapping called name in ctx. Names must be unique per context.
func NewMapping[K Key, V any](ctx *Context, name string) *Mapping[K, V] {
	m := &Mapping[K, V]{
		ctx:    ctx,
		label:  name,
		values: kv.Bucket("m/" + name + "/"),
		meta:   []byte("s/" + name),
		dirty:  make(map[string]*entry[V]),
	}
	ctx.register(m)
	return m
}

// Get returns the value of key, nil if absent. The result must be treated as read only.
func (m *Mapping[K, V]) Get(key K) (*V, error) {
	k := key.Bytes()
	if e, ok := m.dirty[string(k)]; ok {
		return e.value, nil
	}
	raw, err := m.loadRaw(k)
	if err != nil {
		return nil, err
	}
	return m.decode(raw)
}

// GetForModify returns a tracked value of key, nil if absent.
func (m *Mapping[K, V]) GetForModify(key K) (*V, error) {
	k := key.Bytes()
	if e, ok := m.dirty[string(k)]; ok {
		return e.value, nil
	}
	raw, err := m.loadRaw(k)
	if err != nil {
		return nil, err
	}
	v, err := m.decode(raw)
	if err != nil || v == nil {
		return nil, err
	}
	m.dirty[string(k)] = &entry[V]{key: k, value: v, existed: true}
	return v, nil
}

// Put tracks value as the new value of key.
func (m *Mapping[K, V]) Put(key K, value *V) error {
	if value == nil {
		return errors.New("nil value, use Delete")
	}
	return m.track(key.Bytes(), value)
}

// Delete removes key.
func (m *Mapping[K, V]) Delete(key K) error {
	return m.track(key.Bytes(), nil)
}

// Has reports whether key has a value.
func (m *Mapping[K, V]) Has(key K) (bool, error) {
	v, err := m.Get(key)
	return v != nil, err
}

// Size returns the number of values, pending changes included.
func (m *Mapping[K, V]) Size() (int, error) {
	n, err := m.committedSize()
	if err != nil {
		return 0, err
	}
	return n + m.pendingDelta(), nil
}

// ForEach calls fn with every value: committed ones in key order first, then
// pending inserts in key order. Pending updates and deletes shadow committed values.
func (m *Mapping[K, V]) ForEach(fn func(*V) error) error {
	iter := m.values.NewStore(m.ctx.store).Iterate(kv.Range{})
	defer iter.Release()

	for iter.Next() {
		if e, ok := m.dirty[string(iter.Key())]; ok {
			if e.value != nil {
				if err := fn(e.value); err != nil {
					return err
				}
			}
			continue
		}
		v, err := m.decode(iter.Value())
		if err != nil {
			return err
		}
		if err := fn(v); err != nil {
			return err
		}
	}
	if err := iter.Error(); err != nil {
		return errors.Wrapf(err, "iterate %s", m.label)
	}

	keys := make([]string, 0, len(m.dirty))
	for k, e := range m.dirty {
		if !e.existed && e.value != nil {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := fn(m.dirty[k].value); err != nil {
			return err
		}
	}
	return nil
}

func (m *Mapping[K, V]) track(k []byte, value *V) error {
	if e, ok := m.dirty[string(k)]; ok {
		e.value = value
		return nil
	}
	raw, err := m.loadRaw(k)
	if err != nil {
		return err
	}
	m.dirty[string(k)] = &entry[V]{key: k, value: value, existed: raw != nil}
	return nil
}

func (m *Mapping[K, V]) loadRaw(k []byte) ([]byte, error) {
	raw, err := m.ctx.loadRaw(m.values.NewGetter(m.ctx.store), string(m.values)+string(k), k)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", m.label)
	}
	return raw, nil
}

func (m *Mapping[K, V]) decode(raw []byte) (*V, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	v := new(V)
	if err := rlp.DecodeBytes(raw, v); err != nil {
		return nil, errors.Wrapf(err, "decode %s value", m.label)
	}
	return v, nil
}

func (m *Mapping[K, V]) committedSize() (int, error) {
	raw, err := m.ctx.store.Get(m.meta)
	if err != nil {
		if m.ctx.store.IsNotFound(err) {
			return 0, nil
		}
		return 0, errors.Wrapf(err, "load %s size", m.label)
	}
	return int(binary.BigEndian.Uint64(raw)), nil
}

func (m *Mapping[K, V]) pendingDelta() int {
	delta := 0
	for _, e := range m.dirty {
		switch {
		case e.existed && e.value == nil:
			delta--
		case !e.existed && e.value != nil:
			delta++
		}
	}
	return delta
}

func (m *Mapping[K, V]) name() string { return m.label }

func (m *Mapping[K, V]) dirtyLen() int { return len(m.dirty) }

func (m *Mapping[K, V]) flush(bulk kv.Bulk) error {
	if len(m.dirty) == 0 {
		return nil
	}
	putter := m.values.NewBulk(bulk)
	for _, e := range m.dirty {
		if e.value == nil {
			if e.existed {
				if err := putter.Delete(e.key); err != nil {
					return err
				}
			}
			continue
		}
		raw, err := rlp.EncodeToBytes(e.value)
		if err != nil {
			return errors.Wrapf(err, "encode %s value", m.label)
		}
		e.raw = raw
		if err := putter.Put(e.key, raw); err != nil {
			return err
		}
	}
	if delta := m.pendingDelta(); delta != 0 {
		n, err := m.committedSize()
		if err != nil {
			return err
		}
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], uint64(n+delta))
		if err := bulk.Put(m.meta, b[:]); err != nil {
			return err
		}
	}
	return nil
}

func (m *Mapping[K, V]) committed(c *cache.LRU) {
	if c == nil {
		return
	}
	for _, e := range m.dirty {
		c.Add(string(m.values)+string(e.key), e.raw)
	}
}

func (m *Mapping[K, V]) reset() {
	clear(m.dirty)
}
