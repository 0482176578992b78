// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/pkg/errors"

	"github.com/halom-protocol/halom/builtin"
	"github.com/halom-protocol/halom/builtin/acl"
	"github.com/halom-protocol/halom/builtin/timelock"
	"github.com/halom-protocol/halom/halom"
)

// NewCustomNet create custom network genesis.
func NewCustomNet(gen *CustomGenesis) (*Genesis, error) {
	builder, err := newCustomBuilder(gen)
	if err != nil {
		return nil, err
	}
	return newGenesis(builder, "customnet")
}

func newCustomBuilder(gen *CustomGenesis) (*Builder, error) {
	if gen.Admin.IsZero() && gen.Guardian.IsZero() {
		return nil, errors.New("either admin or guardian must be set")
	}
	for _, a := range gen.Accounts {
		if a.Balance == nil || a.Balance.big().Sign() < 1 {
			return nil, fmt.Errorf("%s: balance must be a positive integer", a.Address)
		}
	}
	var extra []grant
	for _, r := range gen.Roles {
		if !isRole(acl.Role(r.Role)) {
			return nil, fmt.Errorf("unknown role %q", r.Role)
		}
		extra = append(extra, grant{acl.Role(r.Role), r.Account})
	}

	params := DefaultParams()
	for name, value := range gen.Params {
		key := halom.BytesToBytes32([]byte(name))
		if _, ok := params[key]; !ok {
			return nil, fmt.Errorf("unknown param %q", name)
		}
		if value == nil || value.big().Sign() < 0 {
			return nil, fmt.Errorf("param %q must be a non-negative integer", name)
		}
		params[key] = value.big()
	}

	minDelay := gen.MinDelay
	if minDelay == 0 {
		minDelay = timelock.DefaultMinDelay
	}

	builder := new(Builder).
		Timestamp(gen.LaunchTime).
		State(func(c *builtin.Contracts) error {
			// sorted for a stable genesis id
			keys := make([]halom.Bytes32, 0, len(params))
			for key := range params {
				keys = append(keys, key)
			}
			sort.Slice(keys, func(i, j int) bool {
				return bytes.Compare(keys[i][:], keys[j][:]) < 0
			})
			for _, key := range keys {
				if err := c.Params.Set(key, params[key]); err != nil {
					return err
				}
			}
			return nil
		}).
		State(func(c *builtin.Contracts) error {
			return setupRoles(c, gen.Admin, gen.Guardian, extra)
		}).
		State(func(c *builtin.Contracts) error {
			for _, a := range gen.Accounts {
				if err := c.Token.Mint(a.Address, a.Balance.big()); err != nil {
					return errors.Wrapf(err, "fund %s", a.Address)
				}
			}
			if gen.Treasury != nil && gen.Treasury.big().Sign() > 0 {
				if err := c.Token.Mint(builtin.Timelock.Address, gen.Treasury.big()); err != nil {
					return errors.Wrap(err, "fund treasury")
				}
			}
			if err := c.Timelock.Init(minDelay); err != nil {
				return err
			}
			return c.Staker.Init()
		})
	return builder, nil
}

func isRole(role acl.Role) bool {
	for _, r := range acl.Roles {
		if r == role {
			return true
		}
	}
	return false
}
