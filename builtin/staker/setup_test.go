// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halom-protocol/halom/builtin/acl"
	"github.com/halom-protocol/halom/builtin/params"
	"github.com/halom-protocol/halom/builtin/solidity"
	"github.com/halom-protocol/halom/builtin/token"
	"github.com/halom-protocol/halom/builtin/votingpower"
	"github.com/halom-protocol/halom/halom"
	"github.com/halom-protocol/halom/lvldb"
	"github.com/halom-protocol/halom/state"
)

var (
	stakerAddr  = halom.BytesToAddress([]byte("staker"))
	tokenAddr   = halom.BytesToAddress([]byte("token"))
	aclAddr     = halom.BytesToAddress([]byte("acl"))
	paramsAddr  = halom.BytesToAddress([]byte("params"))
	admin       = halom.BytesToAddress([]byte("admin"))
	rewarder    = halom.BytesToAddress([]byte("rewarder"))
	slasher     = halom.BytesToAddress([]byte("slasher"))
	lockOneWeek = 7 * halom.Day
)

func tokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), halom.Precision)
}

type testEnv struct {
	staker *Staker
	token  *token.Token
	acl    *acl.ACL
	params *params.Params
	state  *state.State
}

func newTestParams(t *testing.T, p *params.Params) {
	for key, value := range map[halom.Bytes32]*big.Int{
		halom.KeyMinStake:         halom.InitialMinStake,
		halom.KeyMaxStake:         halom.InitialMaxStake,
		halom.KeyMinLockDuration:  halom.InitialMinLockDuration,
		halom.KeyMaxLockDuration:  halom.InitialMaxLockDuration,
		halom.KeySlashBps:         halom.InitialSlashBps,
		halom.KeyMaxCommissionBps: halom.InitialMaxCommissionBps,
		halom.KeyRootExponent:     halom.InitialRootExponent,
		halom.KeyQuadraticFactor:  halom.InitialQuadraticFactor,
		halom.KeyTimeWeightBps:    halom.InitialTimeWeightBps,
		halom.KeyMaxVotingPower:   halom.InitialMaxVotingPower,
	} {
		require.NoError(t, p.Set(key, value))
	}
}

func newTestEnv(t *testing.T, ledger token.Ledger) *testEnv {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := state.New(db)
	env := &testEnv{
		state:  st,
		token:  token.New(solidity.NewContext(tokenAddr, st, nil)),
		acl:    acl.New(solidity.NewContext(aclAddr, st, nil)),
		params: params.New(solidity.NewContext(paramsAddr, st, nil)),
	}
	newTestParams(t, env.params)
	require.NoError(t, env.acl.Set(acl.RoleAdmin, admin, true))
	require.NoError(t, env.acl.Set(acl.RoleRewarder, rewarder, true))
	require.NoError(t, env.acl.Set(acl.RoleSlasher, slasher, true))

	if ledger == nil {
		ledger = env.token
	}
	env.staker = New(solidity.NewContext(stakerAddr, st, nil), env.params, env.acl, ledger, votingpower.New(64))
	require.NoError(t, env.staker.Init())
	return env
}

func (env *testEnv) fund(t *testing.T, addr halom.Address, amount *big.Int) {
	require.NoError(t, env.token.Mint(addr, amount))
}

type TestFunc func(t *testing.T)

// TestSequence runs ledger operations in order, failing the test on the first unexpected outcome.
type TestSequence struct {
	env   *testEnv
	now   uint64
	funcs []TestFunc
}

func NewSequence(env *testEnv) *TestSequence {
	return &TestSequence{env: env, now: 1_000_000}
}

func (st *TestSequence) AddFunc(f TestFunc) *TestSequence {
	st.funcs = append(st.funcs, f)
	return st
}

func (st *TestSequence) Advance(seconds uint64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		st.now += seconds
	})
}

func (st *TestSequence) Stake(addr halom.Address, amount *big.Int, lock uint64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		if err := st.env.staker.Stake(addr, amount, lock, st.now); err != nil {
			t.Fatalf("failed to stake %v for %s: %v", amount, addr, err)
		}
	})
}

func (st *TestSequence) Unstake(addr halom.Address, amount *big.Int) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		if err := st.env.staker.Unstake(addr, amount, st.now); err != nil {
			t.Fatalf("failed to unstake %v for %s: %v", amount, addr, err)
		}
	})
}

func (st *TestSequence) AddRewards(amount *big.Int) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		if err := st.env.staker.AddRewards(rewarder, amount); err != nil {
			t.Fatalf("failed to add rewards %v: %v", amount, err)
		}
	})
}

func (st *TestSequence) Delegate(addr, validator halom.Address, amount *big.Int) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		if err := st.env.staker.DelegateToValidator(addr, validator, amount); err != nil {
			t.Fatalf("failed to delegate %v from %s to %s: %v", amount, addr, validator, err)
		}
	})
}

func (st *TestSequence) SetCommission(validator halom.Address, bps uint64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		if err := st.env.staker.SetCommissionRate(validator, bps); err != nil {
			t.Fatalf("failed to set commission of %s: %v", validator, err)
		}
	})
}

func (st *TestSequence) AssertPending(addr halom.Address, expected *big.Int) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		pending, err := st.env.staker.PendingRewards(addr)
		require.NoError(t, err)
		assert.Equal(t, expected.String(), pending.String(), "pending rewards of %s", addr)
	})
}

func (st *TestSequence) AssertPool(totalStaked, unallocated *big.Int) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		p, err := st.env.staker.Pool()
		require.NoError(t, err)
		assert.Equal(t, totalStaked.String(), p.TotalStaked.String(), "total staked")
		assert.Equal(t, unallocated.String(), p.PendingUnallocated.String(), "pending unallocated")
	})
}

func (st *TestSequence) AssertBalance(addr halom.Address, expected *big.Int) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		bal, err := st.env.token.Balance(addr)
		require.NoError(t, err)
		assert.Equal(t, expected.String(), bal.String(), "balance of %s", addr)
	})
}

func (st *TestSequence) Run(t *testing.T) {
	for _, f := range st.funcs {
		f(t)
	}
}
