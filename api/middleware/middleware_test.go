// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package middleware

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pborman/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halom-protocol/halom/log"
)

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestIDMiddleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = RequestID(r)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotNil(t, uuid.Parse(seen))
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	id := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, id)
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, id, seen, "client id kept")

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "not-a-uuid")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.NotEqual(t, "not-a-uuid", seen)
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewLogger(log.JSONHandler(&buf))
	enabled := &atomic.Bool{}

	var body string
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		body = string(b)
	})
	h := RequestLoggerMiddleware(logger, enabled, 0)(next)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/transact", strings.NewReader("{}")))
	assert.Equal(t, "{}", body)
	assert.Empty(t, buf.String(), "disabled")

	enabled.Store(true)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/transact", strings.NewReader(`{"a":1}`)))
	assert.Equal(t, `{"a":1}`, body, "body still readable downstream")
	assert.Contains(t, buf.String(), "/transact")
	assert.Contains(t, buf.String(), "API Request")

	buf.Reset()
	enabled.Store(false)
	slow := RequestLoggerMiddleware(logger, enabled, time.Nanosecond)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		time.Sleep(time.Millisecond)
	}))
	slow.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/slow", nil))
	assert.Contains(t, buf.String(), "/slow")
}
