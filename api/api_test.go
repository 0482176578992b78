// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/halom-protocol/halom/api"
	"github.com/halom-protocol/halom/api/events"
	"github.com/halom-protocol/halom/api/middleware"
	"github.com/halom-protocol/halom/api/power"
	"github.com/halom-protocol/halom/api/staker"
	"github.com/halom-protocol/halom/api/timelock"
	"github.com/halom-protocol/halom/api/transact"
	"github.com/halom-protocol/halom/builtin"
	"github.com/halom-protocol/halom/builtin/action"
	"github.com/halom-protocol/halom/eventdb"
	"github.com/halom-protocol/halom/genesis"
	"github.com/halom-protocol/halom/halom"
	"github.com/halom-protocol/halom/lvldb"
	"github.com/halom-protocol/halom/runtime"
)

type testServer struct {
	*httptest.Server
	close func()
}

func newTestServer(t *testing.T, opts api.Options) *testServer {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	events, err := eventdb.NewMem()
	require.NoError(t, err)

	gene := genesis.NewDevnet()
	rt, err := runtime.New(db, events, halom.NewManualClock(gene.LaunchTime()))
	require.NoError(t, err)
	require.NoError(t, rt.InitGenesis(gene))

	ts := httptest.NewServer(api.New(rt, opts))
	return &testServer{ts, func() {
		ts.Close()
		events.Close()
		db.Close()
	}}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) (int, []byte, http.Header) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	res, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer res.Body.Close()
	data, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, data, res.Header
}

func (ts *testServer) get(t *testing.T, path string, out any) int {
	code, data, _ := ts.do(t, http.MethodGet, path, nil)
	if code == http.StatusOK && out != nil {
		require.NoError(t, json.Unmarshal(data, out), string(data))
	}
	return code
}

func hexBig(v *math.HexOrDecimal256) *big.Int {
	return (*big.Int)(v)
}

func TestAPI(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ts := newTestServer(t, api.Options{LogsLimit: 10, EnableTransact: true, EnableMetrics: true})
	defer ts.close()

	alice := genesis.DevAccounts()[1]
	hundred := new(big.Int).Mul(big.NewInt(100), halom.Precision)

	payload, err := json.Marshal(&action.StakePayload{
		Amount:       action.Amount(hundred),
		LockDuration: 7 * halom.Day,
	})
	require.NoError(t, err)
	stake := &transact.Call{
		Caller: alice,
		Target: builtin.Staker.Address,
		Action: &action.Action{Action: action.KindStakerStake, Payload: payload},
	}

	t.Run("transact", func(t *testing.T) {
		code, data, header := ts.do(t, http.MethodPost, "/transact", stake)
		require.Equal(t, http.StatusOK, code, string(data))
		assert.NotEmpty(t, header.Get(middleware.RequestIDHeader))

		var result transact.Result
		require.NoError(t, json.Unmarshal(data, &result))
		require.NotEmpty(t, result.Events)
		assert.Equal(t, "Staked", result.Events[len(result.Events)-1].Name)

		code, data, _ = ts.do(t, http.MethodPost, "/transact", &transact.Call{
			Caller: alice,
			Target: builtin.Staker.Address,
			Action: &action.Action{Action: action.KindStakerStake, Payload: json.RawMessage(`{"amount":"1000000000000000000","lockDuration":1}`)},
		})
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Contains(t, string(data), "invalid lock duration")

		code, _, _ = ts.do(t, http.MethodPost, "/transact", map[string]any{"unknown": 1})
		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("staker", func(t *testing.T) {
		var pool staker.Pool
		require.Equal(t, http.StatusOK, ts.get(t, "/staker/pool", &pool))
		assert.Equal(t, hundred, hexBig(pool.TotalStaked))
		assert.True(t, pool.Active)
		assert.Equal(t, uint64(1), pool.StakerCount)

		var pos staker.Position
		require.Equal(t, http.StatusOK, ts.get(t, "/staker/positions/"+alice.String(), &pos))
		assert.Equal(t, hundred, hexBig(pos.Principal))
		assert.Equal(t, pos.LockStart+7*halom.Day, pos.LockEnd)
		assert.Nil(t, pos.DelegatedTo)

		assert.Equal(t, http.StatusNotFound, ts.get(t, "/staker/positions/"+genesis.DevAccounts()[5].String(), nil))
		assert.Equal(t, http.StatusBadRequest, ts.get(t, "/staker/positions/0x1234", nil))
		assert.Equal(t, http.StatusNotFound, ts.get(t, "/staker/validators/"+alice.String(), nil))
	})

	t.Run("power", func(t *testing.T) {
		var vp power.VotingPower
		require.Equal(t, http.StatusOK, ts.get(t, "/power/"+alice.String(), &vp))
		assert.Equal(t, big.NewInt(100_000), hexBig(vp.Power))
		assert.Equal(t, big.NewInt(100_000), hexBig(vp.Total))
	})

	t.Run("governance", func(t *testing.T) {
		var open []halom.Bytes32
		require.Equal(t, http.StatusOK, ts.get(t, "/governor/proposals", &open))
		assert.Empty(t, open)

		unknown := halom.BytesToBytes32([]byte("unknown")).String()
		assert.Equal(t, http.StatusNotFound, ts.get(t, "/governor/proposals/"+unknown, nil))
		assert.Equal(t, http.StatusBadRequest, ts.get(t, "/governor/proposals/0xzz", nil))
		assert.Equal(t, http.StatusNotFound, ts.get(t, "/timelock/operations/"+unknown, nil))

		var settings timelock.Settings
		require.Equal(t, http.StatusOK, ts.get(t, "/timelock", &settings))
		assert.True(t, settings.TestMode)
		assert.Equal(t, halom.MinDelayFloor, settings.MinDelay)
	})

	t.Run("events", func(t *testing.T) {
		var evs []*events.FilteredEvent
		require.Equal(t, http.StatusOK, ts.get(t, "/events?name=Staked&address="+builtin.Staker.Address.String(), &evs))
		require.Len(t, evs, 1)
		assert.Equal(t, builtin.Staker.Address, evs[0].Address)
		assert.True(t, json.Valid(evs[0].Data))

		assert.Equal(t, http.StatusForbidden, ts.get(t, "/events?limit=1000", nil))
		assert.Equal(t, http.StatusForbidden, ts.get(t, "/events", nil), "genesis emits more than the limit")
		assert.Equal(t, http.StatusOK, ts.get(t, "/events?limit=10&order=desc", &evs))
		assert.Equal(t, "Staked", evs[0].Name)
		assert.Equal(t, http.StatusBadRequest, ts.get(t, "/events?order=sideways", nil))
		assert.Equal(t, http.StatusBadRequest, ts.get(t, "/events?from=10&to=5", nil))
	})

	t.Run("metrics", func(t *testing.T) {
		code, _, _ := ts.do(t, http.MethodGet, "/metrics", nil)
		assert.Less(t, code, 300)
	})
}

func TestTransactDisabled(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ts := newTestServer(t, api.Options{LogsLimit: 10})
	defer ts.close()

	code, _, _ := ts.do(t, http.MethodPost, "/transact", map[string]any{})
	assert.Equal(t, http.StatusNotFound, code)
	code, _, _ = ts.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusNotFound, code)
}
