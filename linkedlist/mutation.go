// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package linkedlist maintains lists whose nodes are values of a flat map,
// linked through pointer fields the nodes carry. The zero key means "none".
package linkedlist

// Mutation gives the list algorithms access to the nodes of one map, without
// them knowing the map's key and value types. N is a pointer-like handle; the
// setters mutate the node it points to.
type Mutation[K comparable, N any] interface {
	// Get returns a node for reading.
	Get(key K) (N, error)
	// GetForModify returns a node whose changes will be persisted.
	GetForModify(key K) (N, error)
	// Put stores a new node.
	Put(key K, node N) error
	// Delete removes a node from the map.
	Delete(key K) error

	Next(node N) K
	SetNext(node N, next K)
	// MarkAsTail clears the node's next pointer.
	MarkAsTail(node N)
}

// DoublyLinked is a Mutation whose nodes also point back to their predecessor.
type DoublyLinked[K comparable, N any] interface {
	Mutation[K, N]

	Prev(node N) K
	SetPrev(node N, prev K)
	// MarkAsHead clears the node's prev pointer.
	MarkAsHead(node N)
}
