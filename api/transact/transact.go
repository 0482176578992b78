// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package transact

import (
	"encoding/json"
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/halom-protocol/halom/api/restutil"
	"github.com/halom-protocol/halom/builtin/action"
	"github.com/halom-protocol/halom/halom"
	"github.com/halom-protocol/halom/runtime"
)

// Call is an unsigned call executed as Caller. Only served by dev nodes.
type Call struct {
	Caller halom.Address         `json:"caller"`
	Target halom.Address         `json:"target"`
	Value  *math.HexOrDecimal256 `json:"value"`
	Action *action.Action        `json:"action"`
}

type Event struct {
	Address halom.Address   `json:"address"`
	Name    string          `json:"name"`
	Topics  []halom.Bytes32 `json:"topics"`
	Data    json.RawMessage `json:"data"`
}

type Result struct {
	Time   uint64   `json:"time"`
	Events []*Event `json:"events"`
}

type Transact struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Transact {
	return &Transact{rt}
}

func (t *Transact) handleCall(w http.ResponseWriter, req *http.Request) error {
	var call Call
	if err := restutil.ParseJSON(req.Body, &call); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}
	if call.Action == nil {
		return restutil.BadRequest(errors.New("body: missing action"))
	}
	if call.Value != nil && action.Big(call.Value).Sign() < 0 {
		return restutil.BadRequest(errors.New("body: negative value"))
	}
	data, err := json.Marshal(call.Action)
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "body"))
	}

	out, err := t.rt.Call(call.Caller, call.Target, action.Big(call.Value), data)
	if err != nil {
		return err
	}
	result := &Result{Time: out.Time, Events: make([]*Event, 0, len(out.Events))}
	for _, ev := range out.Events {
		result.Events = append(result.Events, &Event{ev.Address, ev.Name, ev.Topics, ev.Data})
	}
	return restutil.WriteJSON(w, result)
}

func (t *Transact) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /transact").
		HandlerFunc(restutil.WrapHandlerFunc(t.handleCall))
}
