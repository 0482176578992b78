// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package acl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halom-protocol/halom/builtin/reverts"
	"github.com/halom-protocol/halom/builtin/solidity"
	"github.com/halom-protocol/halom/halom"
	"github.com/halom-protocol/halom/lvldb"
	"github.com/halom-protocol/halom/state"
)

func newACL(t *testing.T) *ACL {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(solidity.NewContext(halom.BytesToAddress([]byte("acl")), state.New(db), nil))
}

func TestGrantRevoke(t *testing.T) {
	a := newACL(t)
	admin := halom.BytesToAddress([]byte("admin"))
	user := halom.BytesToAddress([]byte("user"))
	require.NoError(t, a.Set(RoleAdmin, admin, true))

	assert.ErrorIs(t, a.Grant(user, RoleSlasher, user), reverts.ErrUnauthorized)
	assert.ErrorIs(t, a.Grant(admin, Role("root"), user), reverts.ErrInvalidPayload)

	require.NoError(t, a.Grant(admin, RoleSlasher, user))
	ok, err := a.HasRole(RoleSlasher, user)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, Require(a, RoleSlasher, user))

	require.NoError(t, a.Revoke(admin, RoleSlasher, user))
	ok, _ = a.HasRole(RoleSlasher, user)
	assert.False(t, ok)
	assert.ErrorIs(t, Require(a, RoleSlasher, user), reverts.ErrUnauthorized)
}

func TestOpenRole(t *testing.T) {
	a := newACL(t)
	anyone := halom.BytesToAddress([]byte("anyone"))

	ok, _ := a.HasRole(RoleExecutor, anyone)
	assert.False(t, ok)

	require.NoError(t, a.Set(RoleExecutor, halom.Address{}, true))
	ok, _ = a.HasRole(RoleExecutor, anyone)
	assert.True(t, ok)
	ok, _ = a.HasRole(RoleAdmin, anyone)
	assert.False(t, ok)
}
