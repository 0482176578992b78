// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"github.com/pkg/errors"

	"github.com/halom-protocol/halom/builtin/solidity"
	"github.com/halom-protocol/halom/halom"
)

var slotPool = halom.BytesToBytes32([]byte("reward-pool"))

type Service struct {
	pool *solidity.Raw[*Pool]
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		pool: solidity.NewRaw[*Pool](sctx, slotPool),
	}
}

// Get returns the pool, a zeroed inactive one before the first update.
func (s *Service) Get() (*Pool, error) {
	p, err := s.pool.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get pool")
	}
	if p == nil {
		return newPool(), nil
	}
	return p.normalize(), nil
}

func (s *Service) Update(p *Pool) error {
	if err := s.pool.Update(p); err != nil {
		return errors.Wrap(err, "failed to update pool")
	}
	return nil
}
