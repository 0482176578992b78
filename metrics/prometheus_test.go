// Copyright (c) 2025 The Halom developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoopMetrics(t *testing.T) {
	m := defaultNoopMetrics()
	m.GetOrCreateCountMeter("c").Add(1)
	m.GetOrCreateCountVecMeter("cv", []string{"op"}).AddWithLabel(1, map[string]string{"op": "x"})
	m.GetOrCreateGaugeMeter("g").Set(3)
	m.GetOrCreateHistogramVecMeter("h", []string{"op"}, BucketHTTPReqs).ObserveWithLabels(4, map[string]string{"op": "x"})

	rec := httptest.NewRecorder()
	m.GetOrCreateHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestPrometheusMetrics(t *testing.T) {
	m := newPrometheusMetrics()

	counter := m.GetOrCreateCountMeter("test_counter")
	counter.Add(2)
	assert.Same(t, counter, m.GetOrCreateCountMeter("test_counter"))

	m.GetOrCreateCountVecMeter("test_counter_vec", []string{"op"}).AddWithLabel(1, map[string]string{"op": "stake"})
	m.GetOrCreateGaugeMeter("test_gauge").Set(11)
	m.GetOrCreateHistogramVecMeter("test_hist", []string{"path"}, []int64{1, 10}).
		ObserveWithLabels(5, map[string]string{"path": "/x"})

	srv := httptest.NewServer(m.GetOrCreateHandler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	assert.Contains(t, text, "halom_test_counter 2")
	assert.Contains(t, text, `halom_test_counter_vec{op="stake"} 1`)
	assert.Contains(t, text, "halom_test_gauge 11")
	assert.Contains(t, text, `halom_test_hist_bucket{path="/x",le="10"} 1`)
}

func TestLazyLoad(t *testing.T) {
	calls := 0
	get := LazyLoad(func() int {
		calls++
		return 7
	})
	assert.Equal(t, 7, get())
	assert.Equal(t, 7, get())
	assert.Equal(t, 1, calls)
}
