// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package timelock

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/halom-protocol/halom/api/restutil"
	"github.com/halom-protocol/halom/builtin"
	"github.com/halom-protocol/halom/builtin/timelock"
	"github.com/halom-protocol/halom/halom"
	"github.com/halom-protocol/halom/runtime"
)

type Operation struct {
	ID          halom.Bytes32  `json:"id"`
	State       timelock.State `json:"state"`
	ReadyTime   uint64         `json:"readyTime"`
	ScheduledAt uint64         `json:"scheduledAt"`
	Predecessor *halom.Bytes32 `json:"predecessor"`
}

type Settings struct {
	MinDelay    uint64 `json:"minDelay"`
	GracePeriod uint64 `json:"gracePeriod"`
	TestMode    bool   `json:"testMode"`
	Paused      bool   `json:"paused"`
}

type Timelock struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Timelock {
	return &Timelock{rt}
}

func (t *Timelock) handleGetOperation(w http.ResponseWriter, req *http.Request) error {
	id, err := restutil.ParseBytes32("id", mux.Vars(req)["id"])
	if err != nil {
		return err
	}
	var result *Operation
	if err := t.rt.View(func(c *builtin.Contracts, now uint64) error {
		op, err := c.Timelock.Operation(id)
		if err != nil || op == nil {
			return err
		}
		state, err := c.Timelock.OperationState(id, now)
		if err != nil {
			return err
		}
		result = &Operation{
			ID:          id,
			State:       state,
			ReadyTime:   op.ReadyTime,
			ScheduledAt: op.ScheduledAt,
		}
		if !op.Predecessor.IsZero() {
			pred := op.Predecessor
			result.Predecessor = &pred
		}
		return nil
	}); err != nil {
		return err
	}
	if result == nil {
		return restutil.NotFound(errors.New("operation not found"))
	}
	return restutil.WriteJSON(w, result)
}

func (t *Timelock) handleGetSettings(w http.ResponseWriter, _ *http.Request) error {
	var result Settings
	if err := t.rt.View(func(c *builtin.Contracts, _ uint64) (err error) {
		if result.MinDelay, err = c.Timelock.MinDelay(); err != nil {
			return
		}
		if result.GracePeriod, err = c.Timelock.GracePeriod(); err != nil {
			return
		}
		if result.TestMode, err = c.Timelock.TestMode(); err != nil {
			return
		}
		result.Paused, err = c.Timelock.Paused()
		return
	}); err != nil {
		return err
	}
	return restutil.WriteJSON(w, &result)
}

func (t *Timelock) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /timelock").
		HandlerFunc(restutil.WrapHandlerFunc(t.handleGetSettings))
	sub.Path("/operations/{id}").
		Methods(http.MethodGet).
		Name("GET /timelock/operations/{id}").
		HandlerFunc(restutil.WrapHandlerFunc(t.handleGetOperation))
}
