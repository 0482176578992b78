// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import "github.com/halom-protocol/halom/metrics"

var (
	metricLastTime     = metrics.LazyLoadGauge("runtime_last_time")
	metricCallCount    = metrics.LazyLoadCounterVec("runtime_calls_count", []string{"result"})
	metricCallDuration = metrics.LazyLoadHistogramVec("runtime_call_duration_ms", []string{"result"}, []int64{
		0, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000,
	})
)
