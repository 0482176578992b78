// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"net/http"
	"sync"
	"sync/atomic"
)

// Metrics defines the interface for metrics service implementations
type Metrics interface {
	GetOrCreateCountMeter(name string) CountMeter
	GetOrCreateCountVecMeter(name string, labels []string) CountVecMeter
	GetOrCreateGaugeMeter(name string) GaugeMeter
	GetOrCreateHistogramVecMeter(name string, labels []string, buckets []int64) HistogramVecMeter
	GetOrCreateHandler() http.Handler
}

type holder struct{ m Metrics }

var current atomic.Pointer[holder]

func init() {
	current.Store(&holder{defaultNoopMetrics()})
}

func service() Metrics { return current.Load().m }

// HTTPHandler returns the http handler for retrieving metrics
func HTTPHandler() http.Handler {
	return service().GetOrCreateHandler()
}

// BucketHTTPReqs are histogram buckets in milliseconds for request durations.
var BucketHTTPReqs = []int64{
	0, 1, 2, 5, 10, 20, 30, 50, 75, 100,
	150, 200, 300, 400, 500, 750, 1000,
	1500, 2000, 3000, 5000, 10000,
}

// HistogramVecMeter aggregates observations per label set.
type HistogramVecMeter interface {
	ObserveWithLabels(int64, map[string]string)
}

// CountMeter is a monotonically increasing counter.
type CountMeter interface {
	Add(int64)
}

// CountVecMeter is a counter with labels.
type CountVecMeter interface {
	AddWithLabel(int64, map[string]string)
}

// GaugeMeter is a single numeric value which can go up and down.
type GaugeMeter interface {
	Add(int64)
	Set(int64)
}

func Counter(name string) CountMeter { return service().GetOrCreateCountMeter(name) }

func CounterVec(name string, labels []string) CountVecMeter {
	return service().GetOrCreateCountVecMeter(name, labels)
}

func Gauge(name string) GaugeMeter { return service().GetOrCreateGaugeMeter(name) }

func HistogramVec(name string, labels []string, buckets []int64) HistogramVecMeter {
	return service().GetOrCreateHistogramVecMeter(name, labels, buckets)
}

// LazyLoad defers the creation of a meter to its first use, so package level
// meters bind to whichever implementation is active at that time.
func LazyLoad[T any](f func() T) func() T {
	var result T
	var once sync.Once
	return func() T {
		once.Do(func() {
			result = f()
		})
		return result
	}
}

func LazyLoadCounter(name string) func() CountMeter {
	return LazyLoad(func() CountMeter { return Counter(name) })
}

func LazyLoadCounterVec(name string, labels []string) func() CountVecMeter {
	return LazyLoad(func() CountVecMeter { return CounterVec(name, labels) })
}

func LazyLoadGauge(name string) func() GaugeMeter {
	return LazyLoad(func() GaugeMeter { return Gauge(name) })
}

func LazyLoadHistogramVec(name string, labels []string, buckets []int64) func() HistogramVecMeter {
	return LazyLoad(func() HistogramVecMeter { return HistogramVec(name, labels, buckets) })
}
