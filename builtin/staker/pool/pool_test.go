// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

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

func TestDistribute(t *testing.T) {
	p := newPool()

	p.Distribute(big.NewInt(10))
	assert.Equal(t, big.NewInt(10), p.PendingUnallocated)
	assert.Equal(t, 0, p.AccRewardPerShare.Sign())

	released := p.Increase(big.NewInt(100))
	assert.Equal(t, big.NewInt(10), released)
	assert.Equal(t, 0, p.PendingUnallocated.Sign())

	released = p.Increase(big.NewInt(100))
	assert.Equal(t, 0, released.Sign(), "only the move off zero releases")

	p.Distribute(big.NewInt(3))
	// 3 * 1e18 / 200
	assert.Equal(t, big.NewInt(15_000_000_000_000_000), p.AccRewardPerShare)

	p.Decrease(big.NewInt(500))
	assert.Equal(t, 0, p.TotalStaked.Sign())
}

func TestService(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()
	svc := New(solidity.NewContext(halom.BytesToAddress([]byte("staker")), state.New(db), nil))

	p, err := svc.Get()
	require.NoError(t, err)
	assert.False(t, p.Active)
	assert.Equal(t, 0, p.TotalStaked.Sign())

	p.Active = true
	p.Increase(big.NewInt(7))
	require.NoError(t, svc.Update(p))

	p, err = svc.Get()
	require.NoError(t, err)
	assert.True(t, p.Active)
	assert.Equal(t, big.NewInt(7), p.TotalStaked)
	assert.NotNil(t, p.AccRewardPerShare)
}
