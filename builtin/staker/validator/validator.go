// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package validator

import (
	"math/big"

	"github.com/halom-protocol/halom/halom"
)

// Validator is the record of an address receiving delegations.
type Validator struct {
	TotalDelegated    *big.Int // sum of DelegatedAmount over positions pointing here
	CommissionRateBps uint64
	EarnedCommission  *big.Int
}

func newValidator() *Validator {
	return &Validator{
		TotalDelegated:   new(big.Int),
		EarnedCommission: new(big.Int),
	}
}

func (v *Validator) normalize() *Validator {
	if v.TotalDelegated == nil {
		v.TotalDelegated = new(big.Int)
	}
	if v.EarnedCommission == nil {
		v.EarnedCommission = new(big.Int)
	}
	return v
}

// Commission returns the validator cut of a reward share.
func (v *Validator) Commission(share *big.Int) *big.Int {
	c := new(big.Int).Mul(share, new(big.Int).SetUint64(v.CommissionRateBps))
	return c.Quo(c, new(big.Int).SetUint64(halom.BasisPoints))
}

// IsEmpty returns whether the record can be deleted.
func (v *Validator) IsEmpty() bool {
	return v.TotalDelegated.Sign() == 0 && v.EarnedCommission.Sign() == 0 && v.CommissionRateBps == 0
}
