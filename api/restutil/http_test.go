// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package restutil

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halom-protocol/halom/builtin/reverts"
)

func TestWrapHandlerFunc(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"ok", nil, http.StatusOK},
		{"bad request", BadRequest(errors.New("bad")), http.StatusBadRequest},
		{"not found", NotFound(errors.New("missing")), http.StatusNotFound},
		{"forbidden", Forbidden(errors.New("nope")), http.StatusForbidden},
		{"revert", reverts.ErrUnauthorized, http.StatusBadRequest},
		{"internal", errors.New("disk"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WrapHandlerFunc(func(http.ResponseWriter, *http.Request) error {
				return tt.err
			})(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, tt.status, rec.Code)
			if tt.err != nil {
				assert.Contains(t, rec.Body.String(), tt.err.Error())
			}
		})
	}
}

func TestParseJSON(t *testing.T) {
	var v struct {
		A int `json:"a"`
	}
	require.NoError(t, ParseJSON(strings.NewReader(`{"a":1}`), &v))
	assert.Equal(t, 1, v.A)
	assert.Error(t, ParseJSON(strings.NewReader(`{"b":1}`), &v), "unknown fields are rejected")
}

func TestParseAddress(t *testing.T) {
	_, err := ParseAddress("address", "0x01")
	var he *httpError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, http.StatusBadRequest, he.status)

	addr, err := ParseAddress("address", "0x0000000000000000000000000000000000000001")
	require.NoError(t, err)
	assert.Equal(t, byte(1), addr[19])
}
