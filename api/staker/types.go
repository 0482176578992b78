// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"

	"github.com/halom-protocol/halom/builtin/staker/pool"
	"github.com/halom-protocol/halom/builtin/staker/position"
	"github.com/halom-protocol/halom/builtin/staker/validator"
	"github.com/halom-protocol/halom/halom"
)

type Pool struct {
	TotalStaked        *math.HexOrDecimal256 `json:"totalStaked"`
	AccRewardPerShare  *math.HexOrDecimal256 `json:"accRewardPerShare"`
	PendingUnallocated *math.HexOrDecimal256 `json:"pendingUnallocated"`
	Active             bool                  `json:"active"`
	StakerCount        uint64                `json:"stakerCount"`
}

type Position struct {
	Principal       *math.HexOrDecimal256 `json:"principal"`
	LockStart       uint64                `json:"lockStart"`
	LockEnd         uint64                `json:"lockEnd"`
	PendingRewards  *math.HexOrDecimal256 `json:"pendingRewards"`
	VotingPower     *math.HexOrDecimal256 `json:"votingPower"`
	DelegatedTo     *halom.Address        `json:"delegatedTo"`
	DelegatedAmount *math.HexOrDecimal256 `json:"delegatedAmount"`
}

type Validator struct {
	TotalDelegated    *math.HexOrDecimal256 `json:"totalDelegated"`
	CommissionRateBps uint64                `json:"commissionRateBps"`
	EarnedCommission  *math.HexOrDecimal256 `json:"earnedCommission"`
	Delegators        []halom.Address       `json:"delegators"`
}

func amount(v *big.Int) *math.HexOrDecimal256 {
	return (*math.HexOrDecimal256)(new(big.Int).Set(v))
}

func convertPool(p *pool.Pool, count uint64) *Pool {
	return &Pool{
		TotalStaked:        amount(p.TotalStaked),
		AccRewardPerShare:  amount(p.AccRewardPerShare),
		PendingUnallocated: amount(p.PendingUnallocated),
		Active:             p.Active,
		StakerCount:        count,
	}
}

func convertPosition(p *position.Position, pending, power *big.Int) *Position {
	pos := &Position{
		Principal:       amount(p.Principal),
		LockStart:       p.LockStart,
		LockEnd:         p.LockStart + p.LockDuration,
		PendingRewards:  amount(pending),
		VotingPower:     amount(power),
		DelegatedAmount: amount(p.DelegatedAmount),
	}
	if !p.DelegatedTo.IsZero() {
		to := p.DelegatedTo
		pos.DelegatedTo = &to
	}
	return pos
}

func convertValidator(v *validator.Validator, delegators []halom.Address) *Validator {
	if delegators == nil {
		delegators = []halom.Address{}
	}
	return &Validator{
		TotalDelegated:    amount(v.TotalDelegated),
		CommissionRateBps: v.CommissionRateBps,
		EarnedCommission:  amount(v.EarnedCommission),
		Delegators:        delegators,
	}
}
