// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package linkedlist

import (
	"fmt"
	"reflect"

	"github.com/pkg/errors"

	"github.com/stakeledger/ledger/log"
)

var logger = log.WithContext("pkg", "linkedlist")

// ErrBrokenList is returned when a list's links disagree with its recorded head.
var ErrBrokenList = errors.New("linked list broken")

// InsertAtHead stores node under key as the new head of the list headed by
// head, and returns key. headNode is the current head if the caller already
// holds it for modification; otherwise it is fetched when needed.
func InsertAtHead[K comparable, N any](m Mutation[K, N], key K, node N, head K, headNode N) (K, error) {
	if err := LinkAtHead(m, key, node, head, headNode); err != nil {
		return key, err
	}
	return key, m.Put(key, node)
}

// LinkAtHead makes node, already held for modification, the new head of the
// list headed by head.
func LinkAtHead[K comparable, N any](m Mutation[K, N], key K, node N, head K, headNode N) error {
	var none K
	if head == none {
		m.MarkAsTail(node)
		if d, ok := m.(DoublyLinked[K, N]); ok {
			d.MarkAsHead(node)
		}
		return nil
	}
	m.SetNext(node, head)
	d, ok := m.(DoublyLinked[K, N])
	if !ok {
		return nil
	}
	d.MarkAsHead(node)
	if isNil(headNode) {
		var err error
		if headNode, err = m.GetForModify(head); err != nil {
			return err
		}
		if isNil(headNode) {
			return brokenList("head not found", head, key)
		}
	}
	d.SetPrev(headNode, key)
	return nil
}

// RemoveFromAnywhere deletes the node under key from the list headed by head,
// and returns the new head.
func RemoveFromAnywhere[K comparable, N any](m Mutation[K, N], key K, head K) (K, error) {
	node, err := m.GetForModify(key)
	if err != nil {
		return head, err
	}
	if isNil(node) {
		return head, brokenList("node not found", head, key)
	}
	newHead, err := UnlinkFromAnywhere(m, key, node, head)
	if err != nil {
		return head, err
	}
	return newHead, m.Delete(key)
}

// UnlinkFromAnywhere splices node, held for modification, out of the list
// headed by head without deleting it, clears its pointers, and returns the new head.
func UnlinkFromAnywhere[K comparable, N any](m Mutation[K, N], key K, node N, head K) (K, error) {
	if d, ok := m.(DoublyLinked[K, N]); ok {
		return unlinkDoubly(d, key, node, head)
	}
	return unlinkSingly(m, key, node, head)
}

func unlinkDoubly[K comparable, N any](m DoublyLinked[K, N], key K, node N, head K) (K, error) {
	var none K
	prev, next := m.Prev(node), m.Next(node)
	if prev == none && key != head {
		return head, brokenList("node without predecessor is not the head", head, key)
	}
	if next != none {
		nextNode, err := m.GetForModify(next)
		if err != nil {
			return head, err
		}
		if isNil(nextNode) {
			return head, brokenList("successor not found", head, key)
		}
		if prev == none {
			m.MarkAsHead(nextNode)
		} else {
			m.SetPrev(nextNode, prev)
		}
	}
	if prev != none {
		prevNode, err := m.GetForModify(prev)
		if err != nil {
			return head, err
		}
		if isNil(prevNode) {
			return head, brokenList("predecessor not found", head, key)
		}
		if next == none {
			m.MarkAsTail(prevNode)
		} else {
			m.SetNext(prevNode, next)
		}
	}
	m.MarkAsHead(node)
	m.MarkAsTail(node)

	if key == head {
		return next, nil
	}
	return head, nil
}

// unlinkSingly walks from head to the predecessor of key.
func unlinkSingly[K comparable, N any](m Mutation[K, N], key K, node N, head K) (K, error) {
	var none K
	next := m.Next(node)
	if key == head {
		m.MarkAsTail(node)
		return next, nil
	}

	seen := map[K]struct{}{}
	cur := head
	for cur != none {
		if _, dup := seen[cur]; dup {
			return head, brokenList("cycle", head, key)
		}
		seen[cur] = struct{}{}

		curNode, err := m.Get(cur)
		if err != nil {
			return head, err
		}
		if isNil(curNode) {
			return head, brokenList("dangling link", head, key)
		}
		if m.Next(curNode) == key {
			prevNode, err := m.GetForModify(cur)
			if err != nil {
				return head, err
			}
			if next == none {
				m.MarkAsTail(prevNode)
			} else {
				m.SetNext(prevNode, next)
			}
			m.MarkAsTail(node)
			return head, nil
		}
		cur = m.Next(curNode)
	}
	return head, brokenList("node not reachable from head", head, key)
}

// Walk calls fn with every node from head to tail.
func Walk[K comparable, N any](m Mutation[K, N], head K, fn func(K, N) error) error {
	var none K
	seen := map[K]struct{}{}
	for cur := head; cur != none; {
		if _, dup := seen[cur]; dup {
			return brokenList("cycle", head, cur)
		}
		seen[cur] = struct{}{}

		node, err := m.Get(cur)
		if err != nil {
			return err
		}
		if isNil(node) {
			return brokenList("dangling link", head, cur)
		}
		if err := fn(cur, node); err != nil {
			return err
		}
		cur = m.Next(node)
	}
	return nil
}

func brokenList[K any](reason string, head, key K) error {
	logger.Error("invariant failure in linked list", "reason", reason, "head", fmt.Sprint(head), "key", fmt.Sprint(key))
	return errors.Wrapf(ErrBrokenList, "%s: head %v, key %v", reason, head, key)
}

func isNil[N any](n N) bool {
	v := reflect.ValueOf(&n).Elem()
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}
