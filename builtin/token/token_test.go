// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halom-protocol/halom/builtin/reverts"
	"github.com/halom-protocol/halom/builtin/solidity"
	"github.com/halom-protocol/halom/halom"
	"github.com/halom-protocol/halom/lvldb"
	"github.com/halom-protocol/halom/state"
)

func TestToken(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	var names []string
	tok := New(solidity.NewContext(halom.BytesToAddress([]byte("token")), state.New(db), func(ev *halom.Event) {
		names = append(names, ev.Name)
	}))

	alice := halom.BytesToAddress([]byte("alice"))
	bob := halom.BytesToAddress([]byte("bob"))

	assert.ErrorIs(t, tok.Mint(alice, big.NewInt(0)), reverts.ErrInvalidAmount)
	require.NoError(t, tok.Mint(alice, big.NewInt(100)))

	tests := []struct {
		name    string
		op      func() error
		wantErr error
		alice   int64
		bob     int64
		supply  int64
	}{
		{"transfer", func() error { return tok.Transfer(alice, bob, big.NewInt(30)) }, nil, 70, 30, 100},
		{"overdraw", func() error { return tok.Transfer(bob, alice, big.NewInt(31)) }, reverts.ErrInsufficientBalance, 70, 30, 100},
		{"negative", func() error { return tok.Transfer(alice, bob, big.NewInt(-1)) }, reverts.ErrInvalidAmount, 70, 30, 100},
		{"zero", func() error { return tok.Transfer(alice, bob, big.NewInt(0)) }, nil, 70, 30, 100},
		{"burn", func() error { return tok.Burn(alice, big.NewInt(20)) }, nil, 50, 30, 80},
		{"burn too much", func() error { return tok.Burn(bob, big.NewInt(31)) }, reverts.ErrInsufficientBalance, 50, 30, 80},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.op()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			a, _ := tok.Balance(alice)
			b, _ := tok.Balance(bob)
			s, _ := tok.TotalSupply()
			assert.Equal(t, tt.alice, a.Int64())
			assert.Equal(t, tt.bob, b.Int64())
			assert.Equal(t, tt.supply, s.Int64())
		})
	}
	assert.Equal(t, []string{"Transfer", "Transfer", "Transfer"}, names)
}
