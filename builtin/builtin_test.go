// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halom-protocol/halom/builtin"
	"github.com/halom-protocol/halom/builtin/action"
	"github.com/halom-protocol/halom/builtin/governor"
	"github.com/halom-protocol/halom/builtin/reverts"
	"github.com/halom-protocol/halom/builtin/timelock"
	"github.com/halom-protocol/halom/genesis"
	"github.com/halom-protocol/halom/halom"
	"github.com/halom-protocol/halom/lvldb"
	"github.com/halom-protocol/halom/state"
)

func tokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), halom.Precision)
}

func newDevContracts(t *testing.T) (*builtin.Contracts, uint64) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gene := genesis.NewDevnet()
	st := state.New(db)
	_, err = gene.Build(st)
	require.NoError(t, err)

	return builtin.Bind(st, nil), gene.LaunchTime()
}

func invoke(c *builtin.Contracts, caller halom.Address, now uint64, target halom.Address, kind action.Kind, payload any) error {
	return c.Registry.Invoke(&action.Context{Caller: caller, Now: now}, target, action.MustMake(kind, payload))
}

func TestRegistryDispatch(t *testing.T) {
	c, now := newDevContracts(t)
	alice := genesis.DevAccounts()[1]

	require.NoError(t, invoke(c, alice, now, builtin.Staker.Address, action.KindStakerStake, &action.StakePayload{
		Amount:       action.Amount(tokens(100)),
		LockDuration: 7 * halom.Day,
	}))
	pos, err := c.Staker.Position(alice)
	require.NoError(t, err)
	assert.Equal(t, tokens(100), pos.Principal)

	power, err := c.Staker.VotingPower(alice, now)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100_000), power)

	err = invoke(c, alice, now, builtin.Staker.Address, action.KindTimelockCancel, &action.OperationPayload{})
	assert.ErrorIs(t, err, reverts.ErrInvalidPayload, "kind served by another contract")

	err = invoke(c, alice, now, halom.BytesToAddress([]byte("nobody")), action.KindStakerStake, &action.StakePayload{})
	assert.ErrorIs(t, err, reverts.ErrUnknownTarget)

	err = c.Registry.Invoke(&action.Context{Caller: alice, Now: now}, builtin.Staker.Address, []byte("{"))
	assert.ErrorIs(t, err, reverts.ErrInvalidPayload)
}

func TestParamsSetRequiresAdmin(t *testing.T) {
	c, now := newDevContracts(t)
	admin, alice := genesis.DevAccounts()[0], genesis.DevAccounts()[1]

	set := &action.ParamsSetPayload{Key: halom.KeyVoteCooldown, Value: action.Amount(big.NewInt(60))}
	assert.ErrorIs(t, invoke(c, alice, now, builtin.Params.Address, action.KindParamsSet, set), reverts.ErrUnauthorized)
	require.NoError(t, invoke(c, admin, now, builtin.Params.Address, action.KindParamsSet, set))

	v, err := c.Params.Get(halom.KeyVoteCooldown)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(60), v)
}

func TestTransferThroughRegistry(t *testing.T) {
	c, now := newDevContracts(t)
	alice, bob := genesis.DevAccounts()[1], genesis.DevAccounts()[2]
	before, _ := c.Token.Balance(bob)

	require.NoError(t, invoke(c, alice, now, builtin.Token.Address, action.KindTokenTransfer, &action.TransferPayload{
		To:     bob,
		Amount: action.Amount(tokens(5)),
	}))
	after, _ := c.Token.Balance(bob)
	assert.Equal(t, tokens(5), new(big.Int).Sub(after, before))

	err := invoke(c, alice, now, builtin.Token.Address, action.KindTokenTransfer, &action.TransferPayload{To: bob})
	assert.ErrorIs(t, err, reverts.ErrInvalidAmount)
}

func TestGovernanceChangesParams(t *testing.T) {
	c, now := newDevContracts(t)
	alice, bob, carol := genesis.DevAccounts()[1], genesis.DevAccounts()[2], genesis.DevAccounts()[3]

	for who, amount := range map[halom.Address]int64{alice: 1_000_000, bob: 100} {
		require.NoError(t, invoke(c, who, now, builtin.Staker.Address, action.KindStakerStake, &action.StakePayload{
			Amount:       action.Amount(tokens(amount)),
			LockDuration: 365 * halom.Day,
		}))
	}

	call := action.Call{
		Target: builtin.Params.Address,
		Value:  action.Amount(new(big.Int)),
		Payload: action.MustMake(action.KindParamsSet, &action.ParamsSetPayload{
			Key:   halom.KeyQuorumBps,
			Value: action.Amount(big.NewInt(500)),
		}),
	}
	propose := &action.ProposePayload{Calls: []action.Call{call}, Description: "raise quorum to 5%"}

	err := invoke(c, carol, now, builtin.Governor.Address, action.KindGovernorPropose, propose)
	assert.ErrorIs(t, err, reverts.ErrInsufficientProposerVotes)
	require.NoError(t, invoke(c, alice, now, builtin.Governor.Address, action.KindGovernorPropose, propose))

	open, err := c.Governor.OpenProposals()
	require.NoError(t, err)
	require.Len(t, open, 1)
	id := open[0]
	ref := &action.ProposalPayload{ProposalID: id}

	p, err := c.Governor.Proposal(id)
	require.NoError(t, err)
	assert.Equal(t, alice, p.Proposer)

	now = p.VotingStart
	for _, who := range []halom.Address{alice, bob} {
		require.NoError(t, invoke(c, who, now, builtin.Governor.Address, action.KindGovernorCastVote, &action.VotePayload{
			ProposalID: id,
			Support:    uint8(governor.VoteFor),
		}))
	}
	err = invoke(c, bob, now+halom.Day, builtin.Governor.Address, action.KindGovernorCastVote, &action.VotePayload{ProposalID: id})
	assert.ErrorIs(t, err, reverts.ErrAlreadyVoted)

	// not yet succeeded
	assert.ErrorIs(t, invoke(c, carol, now, builtin.Governor.Address, action.KindGovernorQueue, ref), reverts.ErrUnexpectedProposalState)

	now = p.VotingEnd
	got, err := c.Governor.ProposalState(id, now)
	require.NoError(t, err)
	assert.Equal(t, governor.StateSucceeded, got)
	require.NoError(t, invoke(c, carol, now, builtin.Governor.Address, action.KindGovernorQueue, ref))

	p, err = c.Governor.Proposal(id)
	require.NoError(t, err)
	opState, err := c.Timelock.OperationState(p.OperationID, now)
	require.NoError(t, err)
	assert.Equal(t, timelock.StateWaiting, opState)

	assert.ErrorIs(t, invoke(c, carol, now, builtin.Governor.Address, action.KindGovernorExecute, ref), reverts.ErrOperationNotReady)

	now = p.Eta
	require.NoError(t, invoke(c, carol, now, builtin.Governor.Address, action.KindGovernorExecute, ref))

	v, err := c.Params.Get(halom.KeyQuorumBps)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(500), v)

	got, err = c.Governor.ProposalState(id, now)
	require.NoError(t, err)
	assert.Equal(t, governor.StateExecuted, got)
	assert.ErrorIs(t, invoke(c, carol, now, builtin.Governor.Address, action.KindGovernorExecute, ref), reverts.ErrUnexpectedProposalState)
}
