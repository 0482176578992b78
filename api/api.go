// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/halom-protocol/halom/api/events"
	"github.com/halom-protocol/halom/api/governor"
	"github.com/halom-protocol/halom/api/middleware"
	"github.com/halom-protocol/halom/api/power"
	"github.com/halom-protocol/halom/api/staker"
	"github.com/halom-protocol/halom/api/timelock"
	"github.com/halom-protocol/halom/api/transact"
	"github.com/halom-protocol/halom/log"
	"github.com/halom-protocol/halom/metrics"
	"github.com/halom-protocol/halom/runtime"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins       string
	EnableReqLogger      *atomic.Bool
	SlowQueriesThreshold time.Duration
	EnableMetrics        bool
	LogsLimit            uint64
	// EnableTransact serves POST /transact, which runs unsigned calls. Dev nodes only.
	EnableTransact bool
}

// New return api router
func New(rt *runtime.Runtime, opts Options) http.HandlerFunc {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()
	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}

	staker.New(rt).
		Mount(router, "/staker")
	power.New(rt).
		Mount(router, "/power")
	governor.New(rt).
		Mount(router, "/governor")
	timelock.New(rt).
		Mount(router, "/timelock")
	events.New(rt.Events(), opts.LogsLimit).
		Mount(router, "/events")
	if opts.EnableTransact {
		transact.New(rt).
			Mount(router, "/transact")
	}
	if opts.EnableMetrics {
		router.Path("/metrics").
			Methods(http.MethodGet).
			Name("GET /metrics").
			Handler(metrics.HTTPHandler())
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type", middleware.RequestIDHeader}),
		handlers.ExposedHeaders([]string{middleware.RequestIDHeader}),
	)(handler)

	enabled := opts.EnableReqLogger
	if enabled == nil {
		enabled = &atomic.Bool{}
	}
	handler = middleware.RequestLoggerMiddleware(logger, enabled, opts.SlowQueriesThreshold)(handler)
	handler = middleware.RequestIDMiddleware(handler)

	return handler.ServeHTTP
}
