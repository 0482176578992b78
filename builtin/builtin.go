// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"github.com/halom-protocol/halom/builtin/acl"
	"github.com/halom-protocol/halom/builtin/action"
	"github.com/halom-protocol/halom/builtin/governor"
	"github.com/halom-protocol/halom/builtin/params"
	"github.com/halom-protocol/halom/builtin/solidity"
	"github.com/halom-protocol/halom/builtin/staker"
	"github.com/halom-protocol/halom/builtin/timelock"
	"github.com/halom-protocol/halom/builtin/token"
	"github.com/halom-protocol/halom/builtin/votingpower"
	"github.com/halom-protocol/halom/halom"
	"github.com/halom-protocol/halom/state"
)

// Builtin contracts binding.
var (
	Token    = &tokenContract{newContract("Token")}
	ACL      = &aclContract{newContract("ACL")}
	Params   = &paramsContract{newContract("Params")}
	Staker   = &stakerContract{newContract("Staker")}
	Timelock = &timelockContract{newContract("Timelock")}
	Governor = &governorContract{newContract("Governor")}
)

type contract struct {
	Name    string
	Address halom.Address
}

func newContract(name string) *contract {
	return &contract{name, halom.BytesToAddress([]byte(name))}
}

func (c *contract) context(state *state.State, emitter solidity.EventEmitter) *solidity.Context {
	return solidity.NewContext(c.Address, state, emitter)
}

type (
	tokenContract    struct{ *contract }
	aclContract      struct{ *contract }
	paramsContract   struct{ *contract }
	stakerContract   struct{ *contract }
	timelockContract struct{ *contract }
	governorContract struct{ *contract }
)

func (t *tokenContract) WithState(state *state.State, emitter solidity.EventEmitter) *token.Token {
	return token.New(t.context(state, emitter))
}

func (a *aclContract) WithState(state *state.State, emitter solidity.EventEmitter) *acl.ACL {
	return acl.New(a.context(state, emitter))
}

func (p *paramsContract) WithState(state *state.State, emitter solidity.EventEmitter) *params.Params {
	return params.New(p.context(state, emitter))
}

// Contracts is the set of builtin contracts bound to one state, wired to each other.
type Contracts struct {
	Token    *token.Token
	ACL      *acl.ACL
	Params   *params.Params
	Staker   *staker.Staker
	Timelock *timelock.Timelock
	Governor *governor.Governor

	// Registry dispatches call payloads to the contracts above.
	Registry *action.Registry
}

// Bind binds every builtin contract to state. Events go to emitter, which may be nil.
func Bind(state *state.State, emitter solidity.EventEmitter) *Contracts {
	c := &Contracts{
		Token:    Token.WithState(state, emitter),
		ACL:      ACL.WithState(state, emitter),
		Params:   Params.WithState(state, emitter),
		Registry: action.NewRegistry(),
	}
	c.Staker = staker.New(Staker.context(state, emitter), c.Params, c.ACL, c.Token, votingpower.Default())
	c.Timelock = timelock.New(Timelock.context(state, emitter), c.Params, c.ACL, c.Token, c.Registry)
	c.Governor = governor.New(Governor.context(state, emitter), c.Params, c.ACL, c.Staker, c.Timelock)
	c.registerHandlers()
	return c
}
