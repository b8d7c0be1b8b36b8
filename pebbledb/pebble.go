// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package pebbledb adapts a pebble database to the kv store contract.
package pebbledb

import (
	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/pkg/errors"

	"github.com/stakeledger/ledger/kv"
)

var _ kv.StoreCloser = (*PebbleDB)(nil)

// PebbleDB wraps a pebble database.
type PebbleDB struct {
	db *pebble.DB
}

// New opens (or creates) a pebble database at path.
func New(path string) (*PebbleDB, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrap(err, "open pebble db")
	}
	return &PebbleDB{db: db}, nil
}

// NewMem creates a pebble database on an in-memory file system.
func NewMem() (*PebbleDB, error) {
	db, err := pebble.Open("", &pebble.Options{FS: vfs.NewMem()})
	if err != nil {
		return nil, errors.Wrap(err, "open in-memory pebble db")
	}
	return &PebbleDB{db: db}, nil
}

func (p *PebbleDB) IsNotFound(err error) bool {
	return errors.Is(err, pebble.ErrNotFound)
}

// Get returns a copy of the value, since pebble only lends it until the closer is closed.
func (p *PebbleDB) Get(key []byte) ([]byte, error) {
	val, closer, err := p.db.Get(key)
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	return append([]byte(nil), val...), nil
}

func (p *PebbleDB) Has(key []byte) (bool, error) {
	_, closer, err := p.db.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, closer.Close()
}

func (p *PebbleDB) Put(key, val []byte) error {
	return p.db.Set(key, val, pebble.Sync)
}

func (p *PebbleDB) Delete(key []byte) error {
	return p.db.Delete(key, pebble.Sync)
}

func (p *PebbleDB) Close() error {
	return p.db.Close()
}

func (p *PebbleDB) Bulk() kv.Bulk {
	return &pebbleBatch{batch: p.db.NewBatch()}
}

func (p *PebbleDB) Iterate(r kv.Range) kv.Iterator {
	iter, err := p.db.NewIter(&pebble.IterOptions{
		LowerBound: r.Start,
		UpperBound: r.Limit,
	})
	return &pebbleIterator{iter: iter, err: err}
}

type pebbleBatch struct {
	batch *pebble.Batch
	n     int
}

func (b *pebbleBatch) Put(key, val []byte) error {
	b.n++
	return b.batch.Set(key, val, nil)
}

func (b *pebbleBatch) Delete(key []byte) error {
	b.n++
	return b.batch.Delete(key, nil)
}

func (b *pebbleBatch) Len() int {
	return b.n
}

func (b *pebbleBatch) Write() error {
	defer b.batch.Close()
	return b.batch.Commit(pebble.Sync)
}

type pebbleIterator struct {
	iter    *pebble.Iterator
	err     error
	started bool
}

func (it *pebbleIterator) Next() bool {
	if it.iter == nil {
		return false
	}
	if !it.started {
		it.started = true
		return it.iter.First()
	}
	return it.iter.Next()
}

func (it *pebbleIterator) Key() []byte {
	return append([]byte(nil), it.iter.Key()...)
}

func (it *pebbleIterator) Value() []byte {
	return append([]byte(nil), it.iter.Value()...)
}

func (it *pebbleIterator) Release() {
	if it.iter != nil {
		if err := it.iter.Close(); err != nil && it.err == nil {
			it.err = err
		}
		it.iter = nil
	}
}

func (it *pebbleIterator) Error() error {
	if it.err != nil {
		return it.err
	}
	if it.iter != nil {
		return it.iter.Error()
	}
	return nil
}
