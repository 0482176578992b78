// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package linkedlist

import (
	"math/big"

	"github.com/halom-protocol/halom/builtin/solidity"
	"github.com/halom-protocol/halom/halom"
)

// Node is a list element. The zero value marks the absence of a node.
type Node interface {
	comparable
	Bytes() []byte
	IsZero() bool
}

// LinkedList is a doubly linked list kept in contract storage, ordered by insertion.
type LinkedList[N Node] struct {
	head  *solidity.Raw[N]
	tail  *solidity.Raw[N]
	count *solidity.Uint256
	next  *solidity.Mapping[N, N]
	prev  *solidity.Mapping[N, N]
}

// New creates a list whose slots are derived from basePos.
func New[N Node](sctx *solidity.Context, basePos halom.Bytes32) *LinkedList[N] {
	slot := func(name string) halom.Bytes32 {
		return halom.Blake2b(basePos.Bytes(), []byte(name))
	}
	return &LinkedList[N]{
		head:  solidity.NewRaw[N](sctx, slot("head")),
		tail:  solidity.NewRaw[N](sctx, slot("tail")),
		count: solidity.NewUint256(sctx, slot("count")),
		next:  solidity.NewMapping[N, N](sctx, slot("next")),
		prev:  solidity.NewMapping[N, N](sctx, slot("prev")),
	}
}

// Add appends node to the end of the list. Adding a node already present is a no-op.
func (l *LinkedList[N]) Add(node N) error {
	if node.IsZero() {
		return nil
	}
	if in, err := l.Contains(node); err != nil || in {
		return err
	}

	oldTail, err := l.tail.Get()
	if err != nil {
		return err
	}

	if oldTail.IsZero() {
		if err := l.head.Update(node); err != nil {
			return err
		}
	} else {
		if err := l.next.Set(oldTail, node); err != nil {
			return err
		}
		if err := l.prev.Set(node, oldTail); err != nil {
			return err
		}
	}
	if err := l.tail.Update(node); err != nil {
		return err
	}
	return l.count.Add(big.NewInt(1))
}

// Remove unlinks node from anywhere in the list. Removing an absent node is a no-op.
func (l *LinkedList[N]) Remove(node N) error {
	if in, err := l.Contains(node); err != nil || !in {
		return err
	}

	prev, err := l.prev.Get(node)
	if err != nil {
		return err
	}
	next, err := l.next.Get(node)
	if err != nil {
		return err
	}

	if prev.IsZero() {
		err = l.head.Update(next)
	} else {
		err = l.next.Set(prev, next)
	}
	if err != nil {
		return err
	}

	if next.IsZero() {
		err = l.tail.Update(prev)
	} else {
		err = l.prev.Set(next, prev)
	}
	if err != nil {
		return err
	}

	l.next.Delete(node)
	l.prev.Delete(node)
	return l.count.Sub(big.NewInt(1))
}

// Contains reports whether node is linked.
func (l *LinkedList[N]) Contains(node N) (bool, error) {
	if node.IsZero() {
		return false, nil
	}
	prev, err := l.prev.Get(node)
	if err != nil {
		return false, err
	}
	if !prev.IsZero() {
		return true, nil
	}
	head, err := l.head.Get()
	if err != nil {
		return false, err
	}
	return head == node, nil
}

// Head returns the oldest node, zero if the list is empty.
func (l *LinkedList[N]) Head() (N, error) {
	return l.head.Get()
}

// Next returns the successor of node, zero at the end.
func (l *LinkedList[N]) Next(node N) (N, error) {
	return l.next.Get(node)
}

// Len returns the number of nodes.
func (l *LinkedList[N]) Len() (uint64, error) {
	count, err := l.count.Get()
	if err != nil {
		return 0, err
	}
	return count.Uint64(), nil
}

// Iter walks the list from head to tail. The callback may remove the node it is given.
func (l *LinkedList[N]) Iter(callback func(N) error) error {
	ptr, err := l.head.Get()
	if err != nil {
		return err
	}
	for !ptr.IsZero() {
		next, err := l.next.Get(ptr)
		if err != nil {
			return err
		}
		if err := callback(ptr); err != nil {
			return err
		}
		ptr = next
	}
	return nil
}
