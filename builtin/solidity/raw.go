// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/halom-protocol/halom/halom"
)

// Raw stores a single rlp encoded value at a fixed slot.
type Raw[V any] struct {
	context *Context
	pos     halom.Bytes32
}

func NewRaw[V any](context *Context, pos halom.Bytes32) *Raw[V] {
	return &Raw[V]{context: context, pos: pos}
}

// Get decodes the stored value into a fresh V. An empty slot leaves V zero.
func (r *Raw[V]) Get() (value V, err error) {
	err = r.context.state.DecodeStorage(r.context.address, r.pos, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &value)
	})
	return
}

func (r *Raw[V]) Update(value V) error {
	return r.context.state.EncodeStorage(r.context.address, r.pos, func() ([]byte, error) {
		return rlp.EncodeToBytes(value)
	})
}
