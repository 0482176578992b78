// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package action

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halom-protocol/halom/builtin/reverts"
	"github.com/halom-protocol/halom/halom"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr bool
		kind    Kind
	}{
		{"empty", "", true, ""},
		{"not json", "staker.stake", true, ""},
		{"missing action", `{"payload":{}}`, true, ""},
		{"no payload", `{"action":"staker.claimRewards"}`, false, KindStakerClaimRewards},
		{"with payload", `{"action":"staker.stake","payload":{"amount":"100","lockDuration":604800}}`, false, KindStakerStake},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := Decode([]byte(tt.data))
			if tt.wantErr {
				assert.ErrorIs(t, err, reverts.ErrInvalidPayload)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.kind, a.Action)
		})
	}
}

func TestMakeAndDecodePayload(t *testing.T) {
	data, err := Make(KindStakerStake, &StakePayload{Amount: Amount(big.NewInt(1000)), LockDuration: 60})
	require.NoError(t, err)

	a, err := Decode(data)
	require.NoError(t, err)
	var p StakePayload
	require.NoError(t, DecodePayload(a, &p))
	assert.Equal(t, big.NewInt(1000), Big(p.Amount))
	assert.Equal(t, uint64(60), p.LockDuration)

	// hex amounts are accepted
	a, err = Decode([]byte(`{"action":"staker.stake","payload":{"amount":"0x3e8"}}`))
	require.NoError(t, err)
	require.NoError(t, DecodePayload(a, &p))
	assert.Equal(t, big.NewInt(1000), Big(p.Amount))

	a, err = Decode([]byte(`{"action":"staker.stake","payload":{"amount":true}}`))
	require.NoError(t, err)
	assert.ErrorIs(t, DecodePayload(a, &p), reverts.ErrInvalidPayload)
}

func TestRegistry(t *testing.T) {
	addr := halom.BytesToAddress([]byte("target"))
	caller := halom.BytesToAddress([]byte("caller"))

	var got *Context
	r := NewRegistry()
	r.Register(addr, Handlers{
		KindStakerClaimRewards: func(ctx *Context, a *Action) error {
			got = ctx
			return nil
		},
	})

	ctx := &Context{Caller: caller, Now: 42}
	require.NoError(t, r.Invoke(ctx, addr, MustMake(KindStakerClaimRewards, nil)))
	assert.Equal(t, ctx, got)

	err := r.Invoke(ctx, addr, MustMake(KindStakerStake, nil))
	assert.ErrorIs(t, err, reverts.ErrInvalidPayload)

	err = r.Invoke(ctx, caller, MustMake(KindStakerClaimRewards, nil))
	assert.ErrorIs(t, err, reverts.ErrUnknownTarget)

	_, ok := r.Lookup(addr)
	assert.True(t, ok)
}
