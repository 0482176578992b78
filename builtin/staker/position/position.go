// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package position

import (
	"math/big"

	"github.com/halom-protocol/halom/builtin/votingpower"
	"github.com/halom-protocol/halom/halom"
)

// Position is the stake of a single staker.
type Position struct {
	Principal       *big.Int
	LockStart       uint64
	LockDuration    uint64
	RewardDebt      *big.Int // Principal * AccRewardPerShare / Precision at last settlement
	Pending         *big.Int // settled, unclaimed rewards
	DelegatedTo     halom.Address
	DelegatedAmount *big.Int
}

func newPosition() *Position {
	return &Position{
		Principal:       new(big.Int),
		RewardDebt:      new(big.Int),
		Pending:         new(big.Int),
		DelegatedAmount: new(big.Int),
	}
}

func (p *Position) normalize() *Position {
	for _, v := range []**big.Int{&p.Principal, &p.RewardDebt, &p.Pending, &p.DelegatedAmount} {
		if *v == nil {
			*v = new(big.Int)
		}
	}
	return p
}

// IsEmpty returns whether the entry can be deleted.
func (p *Position) IsEmpty() bool {
	return p.Principal.Sign() == 0 && p.DelegatedAmount.Sign() == 0 && p.Pending.Sign() == 0
}

// IsDelegated returns whether part of the principal is delegated.
func (p *Position) IsDelegated() bool {
	return !p.DelegatedTo.IsZero() && p.DelegatedAmount.Sign() > 0
}

// UnlockTime is the earliest time the principal can be withdrawn.
func (p *Position) UnlockTime() uint64 {
	return p.LockStart + p.LockDuration
}

// Lock returns the voting power input of the position.
func (p *Position) Lock() votingpower.Lock {
	return votingpower.Lock{
		Principal:    new(big.Int).Set(p.Principal),
		LockStart:    p.LockStart,
		LockDuration: p.LockDuration,
	}
}

// Accrued returns the rewards earned since the last settlement under accumulator acc.
func (p *Position) Accrued(acc *big.Int) *big.Int {
	accrued := shares(p.Principal, acc)
	accrued.Sub(accrued, p.RewardDebt)
	if accrued.Sign() < 0 {
		accrued.SetInt64(0)
	}
	return accrued
}

// ResetDebt snapshots the reward debt against acc, to be called after the principal changed.
func (p *Position) ResetDebt(acc *big.Int) {
	p.RewardDebt = shares(p.Principal, acc)
}

// ClampDelegation keeps the delegated amount within the principal and returns the excess removed.
func (p *Position) ClampDelegation() *big.Int {
	excess := new(big.Int)
	if p.DelegatedAmount.Cmp(p.Principal) > 0 {
		excess.Sub(p.DelegatedAmount, p.Principal)
		p.DelegatedAmount = new(big.Int).Set(p.Principal)
	}
	if p.DelegatedAmount.Sign() == 0 {
		p.DelegatedTo = halom.Address{}
	}
	return excess
}

func shares(principal, acc *big.Int) *big.Int {
	v := new(big.Int).Mul(principal, acc)
	return v.Quo(v, halom.Precision)
}
