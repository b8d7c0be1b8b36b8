// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func runApp(t *testing.T, args ...string) (*Report, error) {
	app := newApp()
	var out bytes.Buffer
	app.Writer = &out
	if err := app.Run(append([]string{"ledgersim", "--verbosity", "0"}, args...)); err != nil {
		return nil, err
	}
	var r Report
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &r))
	return &r, nil
}

func TestApp(t *testing.T) {
	r, err := runApp(t, "--config", "testdata/config.yaml", "--scenario", "testdata/rewards.yaml")
	require.NoError(t, err)

	for _, step := range r.Steps {
		assert.Empty(t, step.Error, "step %d", step.Index)
	}
	assert.True(t, r.RewardsActivated)

	bob := findAccount(t, r, 3)
	assert.Equal(t, int64(-1), bob.StakedID)
	assert.Empty(t, bob.Tokens)
	assert.Empty(t, bob.Nfts)
	assert.Zero(t, findAccount(t, r, 2).StakedToMe)

	require.Len(t, r.Nodes, 1)
	assert.Equal(t, int64(16_000_000_000), r.Nodes[0].StakeToReward)
}

func TestAppWithDataDir(t *testing.T) {
	dir := t.TempDir()
	r, err := runApp(t, "--config", "testdata/config.yaml", "--scenario", "testdata/rewards.yaml", "--datadir", dir, "--json-logs")
	require.NoError(t, err)
	assert.Len(t, r.Accounts, 4)

	// the store survives, so the genesis cannot be applied twice
	_, err = runApp(t, "--config", "testdata/config.yaml", "--scenario", "testdata/rewards.yaml", "--datadir", dir)
	assert.ErrorContains(t, err, "already seeded")
}

func TestAppRequiresScenario(t *testing.T) {
	_, err := runApp(t, "--config", "testdata/config.yaml")
	assert.ErrorContains(t, err, "--scenario required")
}
