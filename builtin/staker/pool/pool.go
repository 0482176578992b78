// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math/big"

	"github.com/halom-protocol/halom/halom"
)

// Pool is the shared reward pool aggregate.
type Pool struct {
	TotalStaked        *big.Int
	AccRewardPerShare  *big.Int // scaled by halom.Precision, never decreases
	PendingUnallocated *big.Int // rewards received while nothing was staked
	Active             bool
}

func newPool() *Pool {
	return &Pool{
		TotalStaked:        new(big.Int),
		AccRewardPerShare:  new(big.Int),
		PendingUnallocated: new(big.Int),
	}
}

// normalize replaces nil numbers, which rlp decodes for zero values of older records.
func (p *Pool) normalize() *Pool {
	for _, v := range []**big.Int{&p.TotalStaked, &p.AccRewardPerShare, &p.PendingUnallocated} {
		if *v == nil {
			*v = new(big.Int)
		}
	}
	return p
}

// Distribute credits amount to the pool. With nothing staked the amount is parked in
// PendingUnallocated, otherwise it raises the per-share accumulator by floor(amount * P / totalStaked).
func (p *Pool) Distribute(amount *big.Int) {
	if p.TotalStaked.Sign() == 0 {
		p.PendingUnallocated.Add(p.PendingUnallocated, amount)
		return
	}
	inc := new(big.Int).Mul(amount, halom.Precision)
	inc.Quo(inc, p.TotalStaked)
	p.AccRewardPerShare.Add(p.AccRewardPerShare, inc)
}

// Increase adds amount to the staked total. When this moves the total off zero, the parked
// rewards are released and returned, to be credited to the staker responsible.
func (p *Pool) Increase(amount *big.Int) (released *big.Int) {
	released = new(big.Int)
	if p.TotalStaked.Sign() == 0 && amount.Sign() > 0 && p.PendingUnallocated.Sign() > 0 {
		released.Set(p.PendingUnallocated)
		p.PendingUnallocated.SetInt64(0)
	}
	p.TotalStaked.Add(p.TotalStaked, amount)
	return released
}

// Decrease removes amount from the staked total.
func (p *Pool) Decrease(amount *big.Int) {
	p.TotalStaked.Sub(p.TotalStaked, amount)
	if p.TotalStaked.Sign() < 0 {
		p.TotalStaked.SetInt64(0)
	}
}
