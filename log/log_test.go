// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithContext_FollowsDefault(t *testing.T) {
	prev := Root()
	defer SetDefault(prev)

	logger := WithContext("pkg", "test")

	var buf bytes.Buffer
	SetDefault(NewLogger(NewJSONHandler(&buf, LevelInfo)))

	logger.Info("hello", "k", 1)
	logger.Debug("hidden")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "test", rec["pkg"])
	assert.Equal(t, float64(1), rec["k"])
}

func TestWithContext_With(t *testing.T) {
	prev := Root()
	defer SetDefault(prev)

	var buf bytes.Buffer
	SetDefault(NewLogger(NewTerminalHandler(&buf, LevelWarn, false)))

	logger := WithContext("pkg", "a").With("sub", "b")
	logger.Info("dropped")
	assert.Zero(t, buf.Len())

	logger.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
	assert.Contains(t, buf.String(), "sub=b")
}

func TestLevelFromVerbosity(t *testing.T) {
	assert.Equal(t, LevelCrit, LevelFromVerbosity(-3))
	assert.Equal(t, LevelCrit, LevelFromVerbosity(0))
	assert.Equal(t, LevelError, LevelFromVerbosity(1))
	assert.Equal(t, LevelWarn, LevelFromVerbosity(2))
	assert.Equal(t, LevelInfo, LevelFromVerbosity(3))
	assert.Equal(t, LevelDebug, LevelFromVerbosity(4))
	assert.Equal(t, LevelTrace, LevelFromVerbosity(9))
}
