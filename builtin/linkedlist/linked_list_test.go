// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package linkedlist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halom-protocol/halom/builtin/solidity"
	"github.com/halom-protocol/halom/halom"
	"github.com/halom-protocol/halom/lvldb"
	"github.com/halom-protocol/halom/state"
)

func newList(t *testing.T) *LinkedList[halom.Address] {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	sctx := solidity.NewContext(halom.BytesToAddress([]byte("list")), state.New(db), nil)
	return New[halom.Address](sctx, halom.BytesToBytes32([]byte("stakers")))
}

func collect(t *testing.T, l *LinkedList[halom.Address]) []halom.Address {
	var out []halom.Address
	require.NoError(t, l.Iter(func(a halom.Address) error {
		out = append(out, a)
		return nil
	}))
	return out
}

func TestLinkedList(t *testing.T) {
	l := newList(t)
	a := halom.BytesToAddress([]byte("a"))
	b := halom.BytesToAddress([]byte("b"))
	c := halom.BytesToAddress([]byte("c"))

	assert.Empty(t, collect(t, l))

	for _, addr := range []halom.Address{a, b, c, b} {
		require.NoError(t, l.Add(addr))
	}
	assert.Equal(t, []halom.Address{a, b, c}, collect(t, l))
	n, err := l.Len()
	assert.NoError(t, err)
	assert.Equal(t, uint64(3), n)

	tests := []struct {
		remove   halom.Address
		expected []halom.Address
	}{
		{b, []halom.Address{a, c}},
		{b, []halom.Address{a, c}},
		{a, []halom.Address{c}},
		{c, nil},
	}
	for _, tt := range tests {
		require.NoError(t, l.Remove(tt.remove))
		assert.Equal(t, tt.expected, collect(t, l))
	}

	n, _ = l.Len()
	assert.Equal(t, uint64(0), n)

	require.NoError(t, l.Add(c))
	head, _ := l.Head()
	assert.Equal(t, c, head)
}

func TestIterRemove(t *testing.T) {
	l := newList(t)
	var addrs []halom.Address
	for i := byte(1); i <= 4; i++ {
		addr := halom.BytesToAddress([]byte{i})
		addrs = append(addrs, addr)
		require.NoError(t, l.Add(addr))
	}

	require.NoError(t, l.Iter(func(a halom.Address) error {
		if a[19]%2 == 0 {
			return l.Remove(a)
		}
		return nil
	}))
	assert.Equal(t, []halom.Address{addrs[0], addrs[2]}, collect(t, l))

	in, err := l.Contains(addrs[1])
	assert.NoError(t, err)
	assert.False(t, in)
	in, _ = l.Contains(addrs[2])
	assert.True(t, in)
}
