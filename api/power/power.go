// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package power

import (
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"

	"github.com/halom-protocol/halom/api/restutil"
	"github.com/halom-protocol/halom/builtin"
	"github.com/halom-protocol/halom/halom"
	"github.com/halom-protocol/halom/runtime"
)

type VotingPower struct {
	Address halom.Address         `json:"address"`
	Power   *math.HexOrDecimal256 `json:"power"`
	Total   *math.HexOrDecimal256 `json:"total"`
	Time    uint64                `json:"time"`
}

type Power struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Power {
	return &Power{rt}
}

func (p *Power) handleGetPower(w http.ResponseWriter, req *http.Request) error {
	addr, err := restutil.ParseAddress("address", mux.Vars(req)["address"])
	if err != nil {
		return err
	}
	var result *VotingPower
	if err := p.rt.View(func(c *builtin.Contracts, now uint64) error {
		power, err := c.Staker.VotingPower(addr, now)
		if err != nil {
			return err
		}
		total, err := c.Staker.TotalVotingPower(now)
		if err != nil {
			return err
		}
		result = &VotingPower{
			Address: addr,
			Power:   (*math.HexOrDecimal256)(new(big.Int).Set(power)),
			Total:   (*math.HexOrDecimal256)(new(big.Int).Set(total)),
			Time:    now,
		}
		return nil
	}); err != nil {
		return err
	}
	return restutil.WriteJSON(w, result)
}

func (p *Power) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("GET /power/{address}").
		HandlerFunc(restutil.WrapHandlerFunc(p.handleGetPower))
}
