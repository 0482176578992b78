// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package position

import (
	"github.com/pkg/errors"

	"github.com/halom-protocol/halom/builtin/linkedlist"
	"github.com/halom-protocol/halom/builtin/solidity"
	"github.com/halom-protocol/halom/halom"
)

var (
	slotPositions = halom.BytesToBytes32([]byte("positions"))
	slotStakers   = halom.BytesToBytes32([]byte("stakers"))
)

type Service struct {
	positions *solidity.Mapping[halom.Address, *Position]
	stakers   *linkedlist.LinkedList[halom.Address]
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		positions: solidity.NewMapping[halom.Address, *Position](sctx, slotPositions),
		stakers:   linkedlist.New[halom.Address](sctx, slotStakers),
	}
}

// Get returns the position of staker, nil if there is none.
func (s *Service) Get(staker halom.Address) (*Position, error) {
	p, err := s.positions.Get(staker)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get position")
	}
	if p == nil {
		return nil, nil
	}
	return p.normalize(), nil
}

// GetOrNew returns the position of staker, or a new empty one.
func (s *Service) GetOrNew(staker halom.Address) (*Position, error) {
	p, err := s.Get(staker)
	if err != nil || p != nil {
		return p, err
	}
	return newPosition(), nil
}

// Update persists the position and keeps the staker index in sync.
// Empty positions are deleted.
func (s *Service) Update(staker halom.Address, p *Position) error {
	if p.IsEmpty() {
		s.positions.Delete(staker)
		if err := s.stakers.Remove(staker); err != nil {
			return errors.Wrap(err, "failed to remove staker")
		}
		return nil
	}
	if err := s.positions.Set(staker, p); err != nil {
		return errors.Wrap(err, "failed to set position")
	}
	if err := s.stakers.Add(staker); err != nil {
		return errors.Wrap(err, "failed to add staker")
	}
	return nil
}

// Iter visits every staker with a position, in first-stake order.
func (s *Service) Iter(cb func(staker halom.Address, p *Position) error) error {
	return s.stakers.Iter(func(staker halom.Address) error {
		p, err := s.Get(staker)
		if err != nil {
			return err
		}
		if p == nil {
			return nil
		}
		return cb(staker, p)
	})
}

// Count returns the number of positions.
func (s *Service) Count() (uint64, error) {
	return s.stakers.Len()
}
