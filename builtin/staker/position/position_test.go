// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package position

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halom-protocol/halom/builtin/solidity"
	"github.com/halom-protocol/halom/halom"
	"github.com/halom-protocol/halom/lvldb"
	"github.com/halom-protocol/halom/state"
)

func TestAccrual(t *testing.T) {
	p := newPosition()
	p.Principal = big.NewInt(100)

	acc := new(big.Int).Div(halom.Precision, big.NewInt(10)) // 0.1 per share
	assert.Equal(t, big.NewInt(10), p.Accrued(acc))

	p.ResetDebt(acc)
	assert.Equal(t, 0, p.Accrued(acc).Sign())

	acc2 := new(big.Int).Mul(acc, big.NewInt(3))
	assert.Equal(t, big.NewInt(20), p.Accrued(acc2))
}

func TestClampDelegation(t *testing.T) {
	p := newPosition()
	p.Principal = big.NewInt(50)
	p.DelegatedTo = halom.BytesToAddress([]byte("val"))
	p.DelegatedAmount = big.NewInt(80)

	assert.Equal(t, big.NewInt(30), p.ClampDelegation())
	assert.Equal(t, big.NewInt(50), p.DelegatedAmount)
	assert.True(t, p.IsDelegated())

	p.Principal = new(big.Int)
	assert.Equal(t, big.NewInt(50), p.ClampDelegation())
	assert.False(t, p.IsDelegated())
	assert.True(t, p.DelegatedTo.IsZero())
}

func TestService(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()
	svc := New(solidity.NewContext(halom.BytesToAddress([]byte("staker")), state.New(db), nil))

	alice := halom.BytesToAddress([]byte("alice"))
	bob := halom.BytesToAddress([]byte("bob"))

	p, err := svc.Get(alice)
	assert.NoError(t, err)
	assert.Nil(t, p)

	p, err = svc.GetOrNew(alice)
	require.NoError(t, err)
	p.Principal = big.NewInt(5)
	p.LockStart, p.LockDuration = 10, 20
	require.NoError(t, svc.Update(alice, p))

	q, _ := svc.GetOrNew(bob)
	q.Pending = big.NewInt(1)
	require.NoError(t, svc.Update(bob, q))

	var seen []halom.Address
	require.NoError(t, svc.Iter(func(staker halom.Address, _ *Position) error {
		seen = append(seen, staker)
		return nil
	}))
	assert.Equal(t, []halom.Address{alice, bob}, seen)

	got, err := svc.Get(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(30), got.UnlockTime())
	assert.Equal(t, big.NewInt(5), got.Principal)

	q.Pending = new(big.Int)
	require.NoError(t, svc.Update(bob, q))
	n, _ := svc.Count()
	assert.Equal(t, uint64(1), n)
	got, _ = svc.Get(bob)
	assert.Nil(t, got)
}
