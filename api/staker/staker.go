// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/halom-protocol/halom/api/restutil"
	"github.com/halom-protocol/halom/builtin"
	"github.com/halom-protocol/halom/runtime"
)

type Staker struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Staker {
	return &Staker{rt}
}

func (s *Staker) handleGetPool(w http.ResponseWriter, _ *http.Request) error {
	var result *Pool
	if err := s.rt.View(func(c *builtin.Contracts, _ uint64) error {
		p, err := c.Staker.Pool()
		if err != nil {
			return err
		}
		count, err := c.Staker.StakerCount()
		if err != nil {
			return err
		}
		result = convertPool(p, count)
		return nil
	}); err != nil {
		return err
	}
	return restutil.WriteJSON(w, result)
}

func (s *Staker) handleGetPosition(w http.ResponseWriter, req *http.Request) error {
	addr, err := restutil.ParseAddress("address", mux.Vars(req)["address"])
	if err != nil {
		return err
	}
	var result *Position
	if err := s.rt.View(func(c *builtin.Contracts, now uint64) error {
		pos, err := c.Staker.Position(addr)
		if err != nil || pos == nil {
			return err
		}
		pending, err := c.Staker.PendingRewards(addr)
		if err != nil {
			return err
		}
		power, err := c.Staker.VotingPower(addr, now)
		if err != nil {
			return err
		}
		result = convertPosition(pos, pending, power)
		return nil
	}); err != nil {
		return err
	}
	if result == nil {
		return restutil.NotFound(errors.New("position not found"))
	}
	return restutil.WriteJSON(w, result)
}

func (s *Staker) handleGetValidator(w http.ResponseWriter, req *http.Request) error {
	addr, err := restutil.ParseAddress("address", mux.Vars(req)["address"])
	if err != nil {
		return err
	}
	var result *Validator
	if err := s.rt.View(func(c *builtin.Contracts, _ uint64) error {
		v, err := c.Staker.Validator(addr)
		if err != nil || v == nil {
			return err
		}
		delegators, err := c.Staker.Delegators(addr)
		if err != nil {
			return err
		}
		result = convertValidator(v, delegators)
		return nil
	}); err != nil {
		return err
	}
	if result == nil {
		return restutil.NotFound(errors.New("validator not found"))
	}
	return restutil.WriteJSON(w, result)
}

func (s *Staker) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/pool").
		Methods(http.MethodGet).
		Name("GET /staker/pool").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetPool))
	sub.Path("/positions/{address}").
		Methods(http.MethodGet).
		Name("GET /staker/positions/{address}").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetPosition))
	sub.Path("/validators/{address}").
		Methods(http.MethodGet).
		Name("GET /staker/validators/{address}").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleGetValidator))
}
