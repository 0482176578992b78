// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halom-protocol/halom/builtin/reverts"
	"github.com/halom-protocol/halom/halom"
	"github.com/halom-protocol/halom/lvldb"
	"github.com/halom-protocol/halom/state"
)

type record struct {
	Amount *big.Int
	Since  uint64
	Owner  halom.Address
}

func newTestContext(t *testing.T, emitter EventEmitter) *Context {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewContext(halom.BytesToAddress([]byte("contract")), state.New(db), emitter)
}

func TestMapping(t *testing.T) {
	ctx := newTestContext(t, nil)
	m := NewMapping[halom.Address, *record](ctx, halom.BytesToBytes32([]byte("records")))
	key := halom.BytesToAddress([]byte("k"))

	v, err := m.Get(key)
	assert.NoError(t, err)
	assert.Nil(t, v)

	assert.NoError(t, m.Set(key, &record{Amount: big.NewInt(10), Since: 3, Owner: key}))
	v, err = m.Get(key)
	assert.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, big.NewInt(10), v.Amount)
	assert.Equal(t, uint64(3), v.Since)
	assert.Equal(t, key, v.Owner)

	other := NewMapping[halom.Address, *record](ctx, halom.BytesToBytes32([]byte("others")))
	v, err = other.Get(key)
	assert.NoError(t, err)
	assert.Nil(t, v, "different base positions do not collide")

	m.Delete(key)
	v, err = m.Get(key)
	assert.NoError(t, err)
	assert.Nil(t, v)
}

func TestMappingValueType(t *testing.T) {
	ctx := newTestContext(t, nil)
	m := NewMapping[halom.Bytes32, uint64](ctx, halom.BytesToBytes32([]byte("counts")))
	key := halom.BytesToBytes32([]byte("day"))

	v, err := m.Get(key)
	assert.NoError(t, err)
	assert.Equal(t, uint64(0), v)

	assert.NoError(t, m.Set(key, 5))
	v, err = m.Get(key)
	assert.NoError(t, err)
	assert.Equal(t, uint64(5), v)
}

func TestRaw(t *testing.T) {
	ctx := newTestContext(t, nil)
	r := NewRaw[record](ctx, halom.BytesToBytes32([]byte("raw")))

	v, err := r.Get()
	assert.NoError(t, err)
	assert.Nil(t, v.Amount)

	assert.NoError(t, r.Update(record{Amount: big.NewInt(1), Since: 9}))
	v, err = r.Get()
	assert.NoError(t, err)
	assert.Equal(t, big.NewInt(1), v.Amount)
	assert.Equal(t, uint64(9), v.Since)
}

func TestUint256(t *testing.T) {
	ctx := newTestContext(t, nil)
	u := NewUint256(ctx, halom.BytesToBytes32([]byte("total")))

	v, err := u.Get()
	assert.NoError(t, err)
	assert.Equal(t, 0, v.Sign())

	assert.NoError(t, u.Add(big.NewInt(100)))
	assert.NoError(t, u.Sub(big.NewInt(40)))
	v, _ = u.Get()
	assert.Equal(t, big.NewInt(60), v)

	err = u.Sub(big.NewInt(61))
	assert.True(t, reverts.IsRevertErr(err))
	v, _ = u.Get()
	assert.Equal(t, big.NewInt(60), v)
}

func TestEmit(t *testing.T) {
	var events []*halom.Event
	ctx := newTestContext(t, func(ev *halom.Event) { events = append(events, ev) })

	topic := halom.BytesToBytes32([]byte("t"))
	require.NoError(t, ctx.Emit("Staked", []halom.Bytes32{topic}, map[string]string{"amount": "1"}))
	require.Len(t, events, 1)
	assert.Equal(t, "Staked", events[0].Name)
	assert.Equal(t, ctx.Address(), events[0].Address)
	assert.JSONEq(t, `{"amount":"1"}`, string(events[0].Data))
}
