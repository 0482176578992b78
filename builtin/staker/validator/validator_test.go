// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package validator

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

func TestCommission(t *testing.T) {
	v := newValidator()
	v.CommissionRateBps = 1500
	assert.Equal(t, big.NewInt(15), v.Commission(big.NewInt(100)))
	assert.Equal(t, big.NewInt(1), v.Commission(big.NewInt(13)))
}

func TestDelegationIndex(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()
	svc := New(solidity.NewContext(halom.BytesToAddress([]byte("staker")), state.New(db), nil))

	val := halom.BytesToAddress([]byte("val"))
	other := halom.BytesToAddress([]byte("other"))
	d1 := halom.BytesToAddress([]byte("d1"))
	d2 := halom.BytesToAddress([]byte("d2"))

	require.NoError(t, svc.AddDelegation(val, d1, big.NewInt(10)))
	require.NoError(t, svc.AddDelegation(val, d2, big.NewInt(5)))
	require.NoError(t, svc.AddDelegation(other, d1, big.NewInt(1)))

	v, err := svc.Get(val)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(15), v.TotalDelegated)

	delegators := func(addr halom.Address) (out []halom.Address) {
		require.NoError(t, svc.IterDelegators(addr, func(d halom.Address) error {
			out = append(out, d)
			return nil
		}))
		return
	}
	assert.Equal(t, []halom.Address{d1, d2}, delegators(val))
	assert.Equal(t, []halom.Address{d1}, delegators(other))

	require.NoError(t, svc.SubDelegation(val, d1, big.NewInt(4), big.NewInt(6)))
	assert.Equal(t, []halom.Address{d1, d2}, delegators(val))
	require.NoError(t, svc.SubDelegation(val, d1, big.NewInt(6), big.NewInt(0)))
	assert.Equal(t, []halom.Address{d2}, delegators(val))

	assert.Error(t, svc.SubDelegation(val, d2, big.NewInt(6), big.NewInt(0)))

	require.NoError(t, svc.SubDelegation(val, d2, big.NewInt(5), big.NewInt(0)))
	v, _ = svc.Get(val)
	assert.Nil(t, v, "empty record is deleted")
}
