// Copyright (c) 2025 The VeChainThor developers
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
	assert.Nil(t, m.GetOrCreateHandler())

	m.GetOrCreateCountMeter("c").Add(1)
	m.GetOrCreateCountVecMeter("cv", []string{"kind"}).AddWithLabel(1, map[string]string{"kind": "x"})
	m.GetOrCreateGaugeMeter("g").Set(1)
	m.GetOrCreateGaugeVecMeter("gv", []string{"node"}).SetWithLabel(1, map[string]string{"node": "0"})
	m.GetOrCreateHistogramMeter("h", BucketChangeSetSize).Observe(3)
}

func TestPrometheusMetrics(t *testing.T) {
	InitializePrometheusMetrics()
	InitializePrometheusMetrics()

	Counter("test_counter").Add(2)
	assert.Same(t, Counter("test_counter"), Counter("test_counter"))
	CounterVec("test_counter_vec", []string{"kind"}).AddWithLabel(1, map[string]string{"kind": "insert"})
	Gauge("test_gauge").Set(7)
	gv := GaugeVec("test_gauge_vec", []string{"node"})
	gv.SetWithLabel(10, map[string]string{"node": "0"})
	gv.AddWithLabel(5, map[string]string{"node": "0"})
	Histogram("test_histogram", BucketChangeSetSize).Observe(4)

	lazy := LazyLoadCounter("test_lazy_counter")
	assert.Same(t, lazy(), lazy())

	server := httptest.NewServer(HTTPHandler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	text := string(body)
	assert.Contains(t, text, "ledger_test_counter 2")
	assert.Contains(t, text, `ledger_test_counter_vec{kind="insert"} 1`)
	assert.Contains(t, text, "ledger_test_gauge 7")
	assert.Contains(t, text, `ledger_test_gauge_vec{node="0"} 15`)
	assert.Contains(t, text, "ledger_test_histogram_count 1")
}
