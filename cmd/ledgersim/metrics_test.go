// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stakeledger/ledger/metrics"
)

func TestMetricsServer(t *testing.T) {
	metrics.InitializePrometheusMetrics()
	metrics.Counter("ledgersim_test_total").Add(1)

	url, closeFunc, err := startMetricsServer("127.0.0.1:0")
	require.NoError(t, err)

	resp, err := http.Get(url)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// a closed server stops without reporting an error
	closeFunc()
	_, err = http.Get(url)
	assert.Error(t, err)

	_, _, err = startMetricsServer("not an address")
	assert.Error(t, err)
}
