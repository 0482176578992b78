// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package validator

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/halom-protocol/halom/builtin/linkedlist"
	"github.com/halom-protocol/halom/builtin/solidity"
	"github.com/halom-protocol/halom/halom"
)

var (
	slotValidators = halom.BytesToBytes32([]byte("validators"))
	slotDelegators = halom.BytesToBytes32([]byte("delegators"))
)

type Service struct {
	sctx       *solidity.Context
	validators *solidity.Mapping[halom.Address, *Validator]
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		sctx:       sctx,
		validators: solidity.NewMapping[halom.Address, *Validator](sctx, slotValidators),
	}
}

// Get returns the validator record, nil if there is none.
func (s *Service) Get(addr halom.Address) (*Validator, error) {
	v, err := s.validators.Get(addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get validator")
	}
	if v == nil {
		return nil, nil
	}
	return v.normalize(), nil
}

// GetOrNew returns the validator record, or a new empty one.
func (s *Service) GetOrNew(addr halom.Address) (*Validator, error) {
	v, err := s.Get(addr)
	if err != nil || v != nil {
		return v, err
	}
	return newValidator(), nil
}

func (s *Service) Update(addr halom.Address, v *Validator) error {
	if v.IsEmpty() {
		s.validators.Delete(addr)
		return nil
	}
	if err := s.validators.Set(addr, v); err != nil {
		return errors.Wrap(err, "failed to set validator")
	}
	return nil
}

// delegators returns the index of positions delegating to addr.
func (s *Service) delegators(addr halom.Address) *linkedlist.LinkedList[halom.Address] {
	return linkedlist.New[halom.Address](s.sctx, halom.Blake2b(slotDelegators.Bytes(), addr.Bytes()))
}

// AddDelegation moves amount of delegator onto the validator total and indexes the delegator.
func (s *Service) AddDelegation(addr, delegator halom.Address, amount *big.Int) error {
	v, err := s.GetOrNew(addr)
	if err != nil {
		return err
	}
	v.TotalDelegated.Add(v.TotalDelegated, amount)
	if err := s.Update(addr, v); err != nil {
		return err
	}
	return s.delegators(addr).Add(delegator)
}

// SubDelegation removes amount from the validator total. When the delegator no longer
// delegates anything it leaves the index.
func (s *Service) SubDelegation(addr, delegator halom.Address, amount *big.Int, remaining *big.Int) error {
	v, err := s.GetOrNew(addr)
	if err != nil {
		return err
	}
	v.TotalDelegated.Sub(v.TotalDelegated, amount)
	if v.TotalDelegated.Sign() < 0 {
		return errors.Errorf("validator %s total delegated underflow", addr)
	}
	if err := s.Update(addr, v); err != nil {
		return err
	}
	if remaining.Sign() == 0 {
		return s.delegators(addr).Remove(delegator)
	}
	return nil
}

// IterDelegators visits the delegators of addr.
func (s *Service) IterDelegators(addr halom.Address, cb func(delegator halom.Address) error) error {
	return s.delegators(addr).Iter(cb)
}
