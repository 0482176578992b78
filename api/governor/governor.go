// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package governor

import (
	"errors"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"

	"github.com/halom-protocol/halom/api/restutil"
	"github.com/halom-protocol/halom/builtin"
	"github.com/halom-protocol/halom/builtin/governor"
	"github.com/halom-protocol/halom/halom"
	"github.com/halom-protocol/halom/runtime"
)

type Call struct {
	Target  halom.Address         `json:"target"`
	Value   *math.HexOrDecimal256 `json:"value"`
	Payload hexutil.Bytes         `json:"payload"`
}

type Proposal struct {
	ID           halom.Bytes32         `json:"id"`
	Proposer     halom.Address         `json:"proposer"`
	Calls        []Call                `json:"calls"`
	Description  string                `json:"description"`
	State        governor.State        `json:"state"`
	CreationTime uint64                `json:"creationTime"`
	VotingStart  uint64                `json:"votingStart"`
	VotingEnd    uint64                `json:"votingEnd"`
	For          *math.HexOrDecimal256 `json:"for"`
	Against      *math.HexOrDecimal256 `json:"against"`
	Abstain      *math.HexOrDecimal256 `json:"abstain"`
	Quorum       *math.HexOrDecimal256 `json:"quorum"`
	OperationID  *halom.Bytes32        `json:"operationId"`
	Eta          uint64                `json:"eta,omitempty"`
}

type Receipt struct {
	Support   governor.VoteType     `json:"support"`
	Weight    *math.HexOrDecimal256 `json:"weight"`
	Timestamp uint64                `json:"timestamp"`
}

func amount(v *big.Int) *math.HexOrDecimal256 {
	if v == nil {
		return nil
	}
	return (*math.HexOrDecimal256)(new(big.Int).Set(v))
}

func convertProposal(id halom.Bytes32, p *governor.Proposal, state governor.State, quorum *big.Int) *Proposal {
	out := &Proposal{
		ID:           id,
		Proposer:     p.Proposer,
		Description:  p.Description,
		State:        state,
		CreationTime: p.CreationTime,
		VotingStart:  p.VotingStart,
		VotingEnd:    p.VotingEnd,
		For:          amount(p.For),
		Against:      amount(p.Against),
		Abstain:      amount(p.Abstain),
		Quorum:       amount(quorum),
		Eta:          p.Eta,
	}
	for i, target := range p.Targets {
		out.Calls = append(out.Calls, Call{target, amount(p.Values[i]), p.Payloads[i]})
	}
	if !p.OperationID.IsZero() {
		opID := p.OperationID
		out.OperationID = &opID
	}
	return out
}

type Governor struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Governor {
	return &Governor{rt}
}

func (g *Governor) handleGetProposal(w http.ResponseWriter, req *http.Request) error {
	id, err := restutil.ParseBytes32("id", mux.Vars(req)["id"])
	if err != nil {
		return err
	}
	var result *Proposal
	if err := g.rt.View(func(c *builtin.Contracts, now uint64) error {
		p, err := c.Governor.Proposal(id)
		if err != nil || p == nil {
			return err
		}
		state, err := c.Governor.ProposalState(id, now)
		if err != nil {
			return err
		}
		result = convertProposal(id, p, state, p.Quorum)
		return nil
	}); err != nil {
		return err
	}
	if result == nil {
		return restutil.NotFound(errors.New("proposal not found"))
	}
	return restutil.WriteJSON(w, result)
}

func (g *Governor) handleGetReceipt(w http.ResponseWriter, req *http.Request) error {
	id, err := restutil.ParseBytes32("id", mux.Vars(req)["id"])
	if err != nil {
		return err
	}
	voter, err := restutil.ParseAddress("voter", mux.Vars(req)["voter"])
	if err != nil {
		return err
	}
	var result *Receipt
	if err := g.rt.View(func(c *builtin.Contracts, _ uint64) error {
		r, err := c.Governor.Receipt(id, voter)
		if err != nil || r == nil {
			return err
		}
		result = &Receipt{r.Support, amount(r.Weight), r.Timestamp}
		return nil
	}); err != nil {
		return err
	}
	if result == nil {
		return restutil.NotFound(errors.New("receipt not found"))
	}
	return restutil.WriteJSON(w, result)
}

func (g *Governor) handleGetOpenProposals(w http.ResponseWriter, _ *http.Request) error {
	var ids []halom.Bytes32
	if err := g.rt.View(func(c *builtin.Contracts, _ uint64) (err error) {
		ids, err = c.Governor.OpenProposals()
		return
	}); err != nil {
		return err
	}
	if ids == nil {
		ids = []halom.Bytes32{}
	}
	return restutil.WriteJSON(w, ids)
}

func (g *Governor) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/proposals").
		Methods(http.MethodGet).
		Name("GET /governor/proposals").
		HandlerFunc(restutil.WrapHandlerFunc(g.handleGetOpenProposals))
	sub.Path("/proposals/{id}").
		Methods(http.MethodGet).
		Name("GET /governor/proposals/{id}").
		HandlerFunc(restutil.WrapHandlerFunc(g.handleGetProposal))
	sub.Path("/proposals/{id}/receipts/{voter}").
		Methods(http.MethodGet).
		Name("GET /governor/proposals/{id}/receipts/{voter}").
		HandlerFunc(restutil.WrapHandlerFunc(g.handleGetReceipt))
}
