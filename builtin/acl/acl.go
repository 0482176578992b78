// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package acl

import (
	"github.com/pkg/errors"

	"github.com/halom-protocol/halom/builtin/reverts"
	"github.com/halom-protocol/halom/builtin/solidity"
	"github.com/halom-protocol/halom/halom"
	"github.com/halom-protocol/halom/log"
)

var logger = log.WithContext("pkg", "acl")

// Role names a capability.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleRewarder  Role = "rewarder"
	RoleSlasher   Role = "slasher"
	RoleProposer  Role = "proposer"
	RoleExecutor  Role = "executor"
	RoleCanceller Role = "canceller"
	RoleGuardian  Role = "guardian"
)

// Roles lists every known role.
var Roles = []Role{RoleAdmin, RoleRewarder, RoleSlasher, RoleProposer, RoleExecutor, RoleCanceller, RoleGuardian}

// Checker answers capability questions.
type Checker interface {
	HasRole(role Role, who halom.Address) (bool, error)
}

// Require returns ErrUnauthorized unless who holds role.
func Require(c Checker, role Role, who halom.Address) error {
	ok, err := c.HasRole(role, who)
	if err != nil {
		return err
	}
	if !ok {
		return errors.WithMessagef(reverts.ErrUnauthorized, "%s lacks role %s", who, role)
	}
	return nil
}

var slotRoles = halom.BytesToBytes32([]byte("roles"))

// ACL binder of the capability registry.
type ACL struct {
	sctx  *solidity.Context
	roles *solidity.Mapping[halom.Bytes32, bool]
}

func New(sctx *solidity.Context) *ACL {
	return &ACL{
		sctx:  sctx,
		roles: solidity.NewMapping[halom.Bytes32, bool](sctx, slotRoles),
	}
}

func roleKey(role Role, who halom.Address) halom.Bytes32 {
	return halom.Blake2b([]byte(role), who.Bytes())
}

// HasRole reports whether who holds role. A role granted to the zero address is held by everyone.
func (a *ACL) HasRole(role Role, who halom.Address) (bool, error) {
	ok, err := a.roles.Get(roleKey(role, who))
	if err != nil || ok {
		return ok, err
	}
	return a.roles.Get(roleKey(role, halom.Address{}))
}

// Set writes a role membership without any capability check, used by genesis.
func (a *ACL) Set(role Role, who halom.Address, granted bool) error {
	if granted {
		if err := a.roles.Set(roleKey(role, who), true); err != nil {
			return err
		}
	} else {
		a.roles.Delete(roleKey(role, who))
	}
	return a.sctx.Emit("RoleChanged", []halom.Bytes32{halom.BytesToBytes32([]byte(role)), halom.BytesToBytes32(who.Bytes())}, map[string]any{
		"role":    role,
		"account": who,
		"granted": granted,
	})
}

// Grant gives role to who. Only admins can grant.
func (a *ACL) Grant(caller halom.Address, role Role, who halom.Address) error {
	return a.update(caller, role, who, true)
}

// Revoke takes role from who. Only admins can revoke.
func (a *ACL) Revoke(caller halom.Address, role Role, who halom.Address) error {
	return a.update(caller, role, who, false)
}

func (a *ACL) update(caller halom.Address, role Role, who halom.Address, granted bool) error {
	if !isKnown(role) {
		return errors.WithMessagef(reverts.ErrInvalidPayload, "unknown role %q", role)
	}
	if err := Require(a, RoleAdmin, caller); err != nil {
		logger.Info("role change rejected", "caller", caller, "role", role, "error", err)
		return err
	}
	if err := a.Set(role, who, granted); err != nil {
		return err
	}
	logger.Info("role changed", "role", role, "account", who, "granted", granted)
	return nil
}

func isKnown(role Role) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}
