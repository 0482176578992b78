// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package action

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/halom-protocol/halom/builtin/reverts"
	"github.com/halom-protocol/halom/halom"
)

// Context carries what a target learns about its invocation.
type Context struct {
	Caller halom.Address
	Value  *big.Int
	Now    uint64
}

// Target is a callable contract.
type Target interface {
	Invoke(ctx *Context, a *Action) error
}

// HandlerFunc runs one action kind.
type HandlerFunc func(ctx *Context, a *Action) error

// Handlers is a Target dispatching on the action kind.
type Handlers map[Kind]HandlerFunc

func (h Handlers) Invoke(ctx *Context, a *Action) error {
	fn, ok := h[a.Action]
	if !ok {
		return errors.WithMessagef(reverts.ErrInvalidPayload, "unsupported action %q", a.Action)
	}
	return fn(ctx, a)
}

// Registry maps contract addresses to targets.
type Registry struct {
	targets map[halom.Address]Target
}

func NewRegistry() *Registry {
	return &Registry{targets: make(map[halom.Address]Target)}
}

// Register binds target to addr, replacing any previous binding.
func (r *Registry) Register(addr halom.Address, target Target) {
	r.targets[addr] = target
}

// Lookup returns the target bound to addr.
func (r *Registry) Lookup(addr halom.Address) (Target, bool) {
	t, ok := r.targets[addr]
	return t, ok
}

// Invoke decodes data and runs it on the target bound to addr.
func (r *Registry) Invoke(ctx *Context, addr halom.Address, data []byte) error {
	target, ok := r.targets[addr]
	if !ok {
		return errors.WithMessagef(reverts.ErrUnknownTarget, "no contract at %s", addr)
	}
	a, err := Decode(data)
	if err != nil {
		return err
	}
	return target.Invoke(ctx, a)
}
