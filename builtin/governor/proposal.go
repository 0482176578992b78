// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package governor

import (
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/halom-protocol/halom/builtin/timelock"
	"github.com/halom-protocol/halom/halom"
)

// State of a proposal as observed at a given time.
type State uint8

const (
	StatePending State = iota
	StateActive
	StateCanceled
	StateDefeated
	StateSucceeded
	StateQueued
	StateExpired
	StateExecuted
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateActive:
		return "active"
	case StateCanceled:
		return "canceled"
	case StateDefeated:
		return "defeated"
	case StateSucceeded:
		return "succeeded"
	case StateQueued:
		return "queued"
	case StateExpired:
		return "expired"
	case StateExecuted:
		return "executed"
	}
	return "unknown"
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// IsFinal reports whether no further transition can leave s.
func (s State) IsFinal() bool {
	switch s {
	case StateCanceled, StateDefeated, StateExpired, StateExecuted:
		return true
	}
	return false
}

// status is the persisted part of the state, the rest derives from time.
type status uint8

const (
	statusOpen status = iota
	statusCanceled
	statusDefeated
	statusSucceeded
	statusQueued
	statusExecuted
	statusExpired
)

// VoteType is the choice of a voter.
type VoteType uint8

const (
	VoteAgainst VoteType = iota
	VoteFor
	VoteAbstain
)

// Proposal is the stored record of a proposal. Proposals are never deleted.
type Proposal struct {
	Proposer        halom.Address
	Targets         []halom.Address
	Values          []*big.Int
	Payloads        [][]byte
	Description     string
	DescriptionHash halom.Bytes32
	CreationTime    uint64
	VotingStart     uint64
	VotingEnd       uint64
	For             *big.Int
	Against         *big.Int
	Abstain         *big.Int
	Status          status
	// Quorum is the turnout required, projected at creation from the total
	// voting power at VotingEnd.
	Quorum *big.Int
	// OperationID and Eta are set once queued in the timelock.
	OperationID halom.Bytes32
	Eta         uint64
}

func (p *Proposal) normalize() *Proposal {
	for _, v := range []**big.Int{&p.For, &p.Against, &p.Abstain, &p.Quorum} {
		if *v == nil {
			*v = new(big.Int)
		}
	}
	return p
}

// Calls returns the actions of the proposal as timelock calls.
func (p *Proposal) Calls() []timelock.Call {
	calls := make([]timelock.Call, 0, len(p.Targets))
	for i := range p.Targets {
		calls = append(calls, timelock.Call{
			Target:  p.Targets[i],
			Value:   p.Values[i],
			Payload: p.Payloads[i],
		})
	}
	return calls
}

// Turnout is the sum of all votes cast.
func (p *Proposal) Turnout() *big.Int {
	total := new(big.Int).Add(p.For, p.Against)
	return total.Add(total, p.Abstain)
}

// Receipt records the vote of one voter on one proposal.
type Receipt struct {
	Support   VoteType
	Weight    *big.Int
	Timestamp uint64
}

// activity tracks recent votes of a voter across proposals.
type activity struct {
	LastVote uint64
	Day      uint64
	Count    uint64
	Voted    bool
}

// HashProposal returns the id of a proposal.
func HashProposal(targets []halom.Address, values []*big.Int, payloads [][]byte, descriptionHash halom.Bytes32) halom.Bytes32 {
	return halom.Blake2bFn(func(w io.Writer) {
		rlp.Encode(w, []any{targets, values, payloads, descriptionHash})
	})
}
