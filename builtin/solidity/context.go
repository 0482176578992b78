// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/halom-protocol/halom/halom"
	"github.com/halom-protocol/halom/state"
)

// EventEmitter receives events emitted by builtin contracts.
type EventEmitter func(ev *halom.Event)

// Context binds a builtin contract address to the state it reads and writes.
type Context struct {
	address halom.Address
	state   *state.State
	emitter EventEmitter
}

func NewContext(address halom.Address, state *state.State, emitter EventEmitter) *Context {
	return &Context{
		address: address,
		state:   state,
		emitter: emitter,
	}
}

func (c *Context) Address() halom.Address {
	return c.address
}

func (c *Context) State() *state.State {
	return c.state
}

// Emit json-encodes data and hands the event to the emitter, if any.
func (c *Context) Emit(name string, topics []halom.Bytes32, data any) error {
	if c.emitter == nil {
		return nil
	}
	enc, err := json.Marshal(data)
	if err != nil {
		return errors.Wrap(err, "failed to encode event "+name)
	}
	c.emitter(&halom.Event{
		Address: c.address,
		Name:    name,
		Topics:  topics,
		Data:    enc,
	})
	return nil
}
